package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/address-cli/internal/browser"
	"github.com/sells-group/address-cli/internal/extract"
)

// SessionDriver is the automation surface the pipeline needs: the Driver
// capability plus the restart escalation.
type SessionDriver interface {
	browser.Driver
	Restart(ctx context.Context) error
}

// NavigateOptions bounds the load loop.
type NavigateOptions struct {
	// BaseURL is the landing page reloaded between failed attempts.
	BaseURL string
	// SearchURL is the search endpoint the query is encoded against.
	SearchURL string
	// MaxLoadRetries bounds attempts per session generation.
	MaxLoadRetries int
	// LoadTimeout bounds each wait for a page-ready signal.
	LoadTimeout time.Duration
}

// loadState is one step of the retry→restart→give-up escalation. Modeled as
// explicit states so the policy is testable on its own.
type loadState int

const (
	loadAttempt loadState = iota
	loadRecover
	loadRestart
	loadGiveUp
)

// Navigator resolves a query to a loaded page. A navigation failure degrades
// one record, never the batch: after retries and one session restart it
// reports failure instead of erroring.
type Navigator struct {
	drv  SessionDriver
	h    *extract.Heuristics
	opts NavigateOptions
	log  *zap.Logger
}

// NewNavigator builds a navigator over the given session driver.
func NewNavigator(drv SessionDriver, h *extract.Heuristics, opts NavigateOptions, log *zap.Logger) *Navigator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.MaxLoadRetries <= 0 {
		opts.MaxLoadRetries = 2
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = 12 * time.Second
	}
	return &Navigator{drv: drv, h: h, opts: opts, log: log}
}

// SearchURL builds the search endpoint URL for a query with forced locale.
func (n *Navigator) SearchURL(query string) string {
	return fmt.Sprintf("%s%s?hl=en&gl=us", n.opts.SearchURL, url.PathEscape(query))
}

// Load drives the escalation state machine until a page-ready signal appears
// or every recovery step is exhausted. Returns false on give-up.
func (n *Navigator) Load(ctx context.Context, query string) bool {
	target := n.SearchURL(query)
	log := n.log.With(zap.String("query", query))

	state := loadAttempt
	attempts := 0
	restarted := false

	for {
		if ctx.Err() != nil {
			return false
		}

		switch state {
		case loadAttempt:
			attempts++
			if err := n.drv.Navigate(ctx, target); err != nil {
				log.Warn("navigation error", zap.Int("attempt", attempts), zap.Error(err))
			}
			if n.drv.WaitAny(ctx, n.h.ReadySelectors, n.opts.LoadTimeout) {
				return true
			}
			log.Warn("page did not load", zap.Int("attempt", attempts))

			switch {
			case attempts < n.opts.MaxLoadRetries:
				state = loadRecover
			case !restarted:
				state = loadRestart
			default:
				state = loadGiveUp
			}

		case loadRecover:
			// Reloading the landing page clears wedged states cheaper than
			// a full restart.
			if err := n.drv.Navigate(ctx, n.opts.BaseURL); err != nil {
				log.Debug("landing page reload failed", zap.Error(err))
			}
			state = loadAttempt

		case loadRestart:
			restarted = true
			attempts = 0
			if err := n.drv.Restart(ctx); err != nil {
				log.Error("session restart failed", zap.Error(err))
				state = loadGiveUp
			} else {
				state = loadAttempt
			}

		case loadGiveUp:
			log.Warn("giving up on query")
			return false
		}
	}
}
