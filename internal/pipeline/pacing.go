// Package pipeline drives address resolution end to end: navigation with
// bounded retry and session restart, the two-phase direct/indirect lookup,
// randomized pacing, and the resumable batch/checkpoint controller.
package pipeline

import (
	"context"
	"math/rand/v2"
	"time"
)

// minPause is the enforced floor preventing degenerate zero delays.
const minPause = 300 * time.Millisecond

// Governor spaces lookups with a randomized delay drawn uniformly from a
// configured window. Purely external-facing rate control: it runs after
// every record attempt, success or not.
type Governor struct {
	min time.Duration
	max time.Duration
}

// NewGovernor builds a governor for the [minSecs, maxSecs] window. The
// lower bound is floored at 0.3s and the window is never inverted.
func NewGovernor(minSecs, maxSecs float64) *Governor {
	min := time.Duration(minSecs * float64(time.Second))
	if min < minPause {
		min = minPause
	}
	max := time.Duration(maxSecs * float64(time.Second))
	if max < min {
		max = min
	}
	return &Governor{min: min, max: max}
}

// Pause sleeps for a random duration within the window, returning early on
// context cancellation.
func (g *Governor) Pause(ctx context.Context) {
	timer := time.NewTimer(g.next())
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (g *Governor) next() time.Duration {
	if g.max <= g.min {
		return g.min
	}
	return g.min + time.Duration(rand.Int64N(int64(g.max-g.min)))
}
