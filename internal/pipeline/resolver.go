package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/address-cli/internal/browser"
	"github.com/sells-group/address-cli/internal/extract"
	"github.com/sells-group/address-cli/internal/table"
)

// ResolveOptions bounds the indirect click-through phase.
type ResolveOptions struct {
	// FeedTimeout bounds the wait for the results feed.
	FeedTimeout time.Duration
	// DetailTimeout bounds the wait for the place detail region after a click.
	DetailTimeout time.Duration
}

// Resolver turns a search query into a standard address via the two-phase
// protocol: read the landing page directly, and only if that fails, open the
// first results-list entry and read again. It always returns a pair and
// never errors outward; every internal failure downgrades to not_found.
type Resolver struct {
	nav   *Navigator
	drv   SessionDriver
	chain *extract.Chain
	h     *extract.Heuristics
	opts  ResolveOptions
	log   *zap.Logger
}

// NewResolver wires the two-phase resolver.
func NewResolver(nav *Navigator, drv SessionDriver, chain *extract.Chain, h *extract.Heuristics, opts ResolveOptions, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.FeedTimeout <= 0 {
		opts.FeedTimeout = 8 * time.Second
	}
	if opts.DetailTimeout <= 0 {
		opts.DetailTimeout = 10 * time.Second
	}
	return &Resolver{nav: nav, drv: drv, chain: chain, h: h, opts: opts, log: log}
}

// Resolve looks up one query. Contract: always returns a result pair, never
// panics outward.
func (r *Resolver) Resolve(ctx context.Context, query string) (address string, lt table.LookupType) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("lookup panicked", zap.String("query", query), zap.Any("panic", p))
			address, lt = table.NotFound, table.LookupUnknown
		}
	}()

	log := r.log.With(zap.String("query", query))
	log.Info("searching")

	if !r.nav.Load(ctx, query) {
		return table.NotFound, table.LookupUnknown
	}

	// Phase direct: Maps may have redirected straight to a place page.
	if addr, ok := r.chain.Extract(ctx, r.drv); ok {
		log.Info("address found directly", zap.String("address", addr))
		return addr, table.LookupDirect
	}

	// Phase indirect: we landed on search results instead.
	log.Info("no direct place page, clicking first search result")
	if r.openFirstResult(ctx) {
		if addr, ok := r.chain.Extract(ctx, r.drv); ok {
			log.Info("address found after click-through", zap.String("address", addr))
			return addr, table.LookupIndirect
		}
	}

	log.Warn("could not extract address")
	return table.NotFound, table.LookupUnknown
}

// openFirstResult locates the first results-list entry, scrolls it into
// view, and clicks it with the fallback ladder. True once the detail region
// appears.
func (r *Resolver) openFirstResult(ctx context.Context) bool {
	if !r.drv.WaitAny(ctx, []string{r.h.Feed}, r.opts.FeedTimeout) {
		r.log.Debug("no search results feed found")
		return false
	}

	sel := r.firstResultSelector(ctx)
	if sel == "" {
		r.log.Warn("could not find first search result")
		return false
	}

	if err := r.drv.ScrollIntoView(ctx, sel); err != nil {
		r.log.Debug("scroll into view failed", zap.Error(err))
	}
	// Give the entry a moment to become interactive after the scroll.
	r.drv.WaitAny(ctx, []string{sel}, 2*time.Second)

	for _, mode := range browser.ClickLadder {
		if err := r.drv.Click(ctx, sel, mode); err != nil {
			r.log.Debug("click failed", zap.String("mode", string(mode)), zap.Error(err))
			continue
		}
		if r.drv.WaitAny(ctx, r.h.DetailReady, r.opts.DetailTimeout) {
			r.log.Info("place details page loaded", zap.String("mode", string(mode)))
			return true
		}
		r.log.Warn("click succeeded but place details did not load", zap.String("mode", string(mode)))
	}
	return false
}

func (r *Resolver) firstResultSelector(ctx context.Context) string {
	for _, sel := range r.h.FirstResult {
		var found bool
		probe := fmt.Sprintf("!!document.querySelector(%q)", sel)
		if err := r.drv.Eval(ctx, probe, &found); err != nil {
			continue
		}
		if found {
			return sel
		}
	}
	return ""
}
