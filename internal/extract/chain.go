package extract

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/address-cli/internal/browser"
)

// strategy is one independent reader of page content. Each evaluates a JS
// snippet returning raw candidate strings; post-processing and validation
// happen in Go.
type strategy struct {
	name string
	js   string
	post func(raw []string) []string
}

// Chain is the ordered fallback of extraction strategies. The page's markup
// differs between a place landing and a search-results landing and drifts
// over time, so no single reader is trusted; the chain short-circuits at the
// first candidate the completeness validator accepts.
type Chain struct {
	strategies []strategy
	log        *zap.Logger
}

// NewChain builds the strategy chain from the heuristic table.
func NewChain(h *Heuristics, log *zap.Logger) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chain{
		log: log,
		strategies: []strategy{
			{
				name: "place_card",
				js:   placeCardJS(h),
				post: func(raw []string) []string { return stripPrefixes(raw, h.LabelPrefixes, 0) },
			},
			{
				name: "aria_labels",
				js:   ariaLabelJS(),
				post: func(raw []string) []string { return stripPrefixes(raw, h.LabelPrefixes, h.MinTextLen) },
			},
			{
				name: "generic_controls",
				js:   genericControlsJS(h),
				post: trimAll,
			},
		},
	}
}

// Extract runs the chain against the current page. A rejected candidate is
// logged and the next strategy tried; strategies are never retried.
func (c *Chain) Extract(ctx context.Context, d browser.Driver) (string, bool) {
	for _, s := range c.strategies {
		var raw []string
		if err := d.Eval(ctx, s.js, &raw); err != nil {
			c.log.Debug("extraction strategy failed", zap.String("strategy", s.name), zap.Error(err))
			continue
		}

		for _, candidate := range s.post(raw) {
			if candidate == "" {
				continue
			}
			if IsComplete(candidate) {
				c.log.Info("complete address found",
					zap.String("strategy", s.name),
					zap.String("address", candidate),
				)
				return candidate, true
			}
			c.log.Warn("incomplete address rejected",
				zap.String("strategy", s.name),
				zap.String("candidate", candidate),
			)
		}
	}
	return "", false
}

// placeCardJS reads the dedicated address control: its structured text node,
// its accessible label, then any nested text of plausible length.
func placeCardJS(h *Heuristics) string {
	return fmt.Sprintf(`(() => {
	const out = [];
	const btn = document.querySelector(%q);
	if (!btn) return out;
	const txt = btn.querySelector(%q);
	if (txt && txt.textContent.trim()) out.push(txt.textContent.trim());
	const label = btn.getAttribute('aria-label');
	if (label) out.push(label.trim());
	for (const div of btn.querySelectorAll('div')) {
		const t = div.textContent.trim();
		if (t.length > %d) out.push(t);
	}
	return out;
})()`, h.AddressButton, h.AddressText, h.MinTextLen)
}

// ariaLabelJS collects every accessible label mentioning an address.
func ariaLabelJS() string {
	return `(() => {
	const out = [];
	for (const el of document.querySelectorAll('[aria-label]')) {
		const label = el.getAttribute('aria-label');
		if (label && (label.includes('Address') || label.includes('address') || label.includes('Located at'))) {
			out.push(label.trim());
		}
	}
	return out;
})()`
}

// genericControlsJS scans interactive controls: any whose identifying
// attribute mentions address, or whose nested text is long enough to be one.
func genericControlsJS(h *Heuristics) string {
	return fmt.Sprintf(`(() => {
	const out = [];
	for (const btn of document.querySelectorAll('button')) {
		const id = btn.getAttribute('data-item-id');
		if (id && id.toLowerCase().includes('address')) {
			const t = btn.textContent.trim();
			if (t.length > %d) out.push(t);
		}
		for (const div of btn.querySelectorAll('div')) {
			const t = div.textContent.trim();
			if (t.length > %d) out.push(t);
		}
	}
	return out;
})()`, h.MinTextLen, h.MinTextLen)
}

// stripPrefixes removes the first matching label prefix from each candidate.
// When minLen > 0, stripped candidates shorter than it are dropped.
func stripPrefixes(raw []string, prefixes []string, minLen int) []string {
	var out []string
	for _, c := range raw {
		c = strings.TrimSpace(c)
		for _, prefix := range prefixes {
			if idx := strings.Index(c, prefix); idx >= 0 {
				c = strings.TrimSpace(c[idx+len(prefix):])
				break
			}
		}
		if minLen > 0 && len(c) <= minLen {
			continue
		}
		out = append(out, c)
	}
	return out
}

func trimAll(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		out = append(out, strings.TrimSpace(c))
	}
	return out
}
