// Package extract reads candidate addresses out of a loaded Maps page and
// decides whether they are complete postal addresses. All selectors and
// heuristics live in one data-declared table so drift in the target page is
// a data change, not a fork of the pipeline.
package extract

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Heuristics is the versionable selector/heuristic table driving page waits,
// the extraction chain, and the click-through phase.
type Heuristics struct {
	// Version tags the table so tuning runs can be told apart in logs.
	Version string `yaml:"version"`

	// ReadySelectors is the disjunction of signals that the page finished
	// loading something usable: the address control, the main content
	// region, the results feed, the search box, or the map canvas.
	ReadySelectors []string `yaml:"ready_selectors"`

	// AddressButton is the dedicated address control on a place page.
	AddressButton string `yaml:"address_button"`

	// AddressText is the structured text node inside the address control.
	AddressText string `yaml:"address_text"`

	// LabelPrefixes are accessible-label prefixes that precede an address,
	// stripped before validation. Order matters: longest first.
	LabelPrefixes []string `yaml:"label_prefixes"`

	// Feed is the results-list region on a search landing.
	Feed string `yaml:"feed"`

	// FirstResult are tried in order to find the first results-list entry.
	FirstResult []string `yaml:"first_result"`

	// DetailReady are the signals that the place detail region appeared
	// after a click-through.
	DetailReady []string `yaml:"detail_ready"`

	// MinTextLen is the shortest nested text accepted as an address
	// candidate by the generic scan.
	MinTextLen int `yaml:"min_text_len"`
}

// DefaultHeuristics returns the compiled-in selector table.
func DefaultHeuristics() *Heuristics {
	return &Heuristics{
		Version: "2026-08",
		ReadySelectors: []string{
			`button[data-item-id="address"]`,
			`[role="main"]`,
			`div[role="feed"]`,
			`#searchboxinput`,
			`canvas[aria-label="Map"]`,
		},
		AddressButton: `button[data-item-id="address"]`,
		AddressText:   `div.Io6YTe.fontBodyMedium`,
		LabelPrefixes: []string{"Address:", "Address", "Located at"},
		Feed:          `div[role="feed"]`,
		FirstResult: []string{
			`div[role="article"] a.hfpxzc`,
			`div.Nv2PK a.hfpxzc`,
			`div[role="article"] a[href*="/maps/place/"]`,
		},
		DetailReady: []string{
			`button[data-item-id="address"]`,
			`[role="main"] [data-item-id]`,
		},
		MinTextLen: 20,
	}
}

// LoadHeuristics returns the default table, overlaid with the YAML file at
// path when one is configured.
func LoadHeuristics(path string) (*Heuristics, error) {
	h := DefaultHeuristics()
	if path == "" {
		return h, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: read heuristics %s", path)
	}
	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, eris.Wrapf(err, "extract: parse heuristics %s", path)
	}
	if h.MinTextLen <= 0 {
		h.MinTextLen = 20
	}
	return h, nil
}
