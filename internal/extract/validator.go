package extract

import "regexp"

var (
	zipRe   = regexp.MustCompile(`\b\d{5}(-\d{4})?\b`)
	stateRe = regexp.MustCompile(`\b[A-Z]{2}\b`)
	cityRe  = regexp.MustCompile(`,\s*[A-Za-z\s]+,\s*[A-Z]{2}`)
)

// minCompleteLen is the shortest text that could plausibly hold a street,
// city, state and ZIP.
const minCompleteLen = 20

// IsComplete reports whether text is a full postal address: a ZIP code
// (optionally +4), a two-letter state token, and either a city-shaped
// ", <city>, <ST>" segment or at least two comma separators. Street-only
// fragments like "804 N State Rd 7" fail.
func IsComplete(text string) bool {
	if len(text) < minCompleteLen {
		return false
	}

	if !zipRe.MatchString(text) || !stateRe.MatchString(text) {
		return false
	}

	if cityRe.MatchString(text) {
		return true
	}

	commas := 0
	for _, c := range text {
		if c == ',' {
			commas++
		}
	}
	return commas >= 2
}
