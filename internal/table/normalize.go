package table

import (
	"fmt"
	"regexp"
	"strings"
)

// Required input columns. Country is carried through but unused for matching.
var requiredColumns = []string{"Street", "Street2", "City", "State", "Zip", "Display Partner"}

// SchemaError reports required input columns missing from the source table.
// It is fatal and raised before any browser work starts.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

var parenRe = regexp.MustCompile(`\s*\([^)]*\)`)

// cleanField trims, drops nan-like sentinels, and strips parenthetical
// annotations.
func cleanField(val string) string {
	text := strings.TrimSpace(val)
	if strings.EqualFold(text, "nan") {
		return ""
	}
	return strings.TrimSpace(parenRe.ReplaceAllString(text, ""))
}

// trimField trims and drops nan-like sentinels without touching parentheses.
func trimField(val string) string {
	text := strings.TrimSpace(val)
	if strings.EqualFold(text, "nan") {
		return ""
	}
	return text
}

// BuildQuery derives the search query from a record's cleaned fields:
// "{Display Partner} in {street_ City State Zip}", the partner prefix
// omitted when blank, empty parts skipped.
func BuildQuery(r *Record) string {
	parts := []string{
		cleanField(r.Get(ColStreet)),
		cleanField(r.Get("City")),
		cleanField(r.Get("State")),
		cleanField(r.Get("Zip")),
	}
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	body := strings.Join(nonEmpty, " ")

	partner := strings.TrimSpace(r.Get("Display Partner"))
	if partner != "" {
		return strings.TrimSpace(partner + " in " + body)
	}
	return body
}

// Normalize derives the helper columns from the source data and returns a new
// table: effective street, unique search query (first occurrence wins on
// duplicates), and the result columns. With keepExisting, previously computed
// results survive and a repair pass reconstructs processed flags missing from
// older checkpoints.
func Normalize(src *Table, keepExisting bool) (*Table, error) {
	var missing []string
	for _, col := range requiredColumns {
		if !src.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	out := New(src.Columns)
	for _, col := range []string{ColStreet, ColQuery, ColAddress, ColLookupType, ColProcessed} {
		out.EnsureColumn(col)
	}

	seen := make(map[string]bool)
	for _, srcRow := range src.Rows {
		r := NewRecord()
		for _, col := range src.Columns {
			if srcRow.Has(col) {
				r.Set(col, srcRow.Get(col))
			}
		}

		street := trimField(r.Get("Street"))
		if street == "" {
			street = trimField(r.Get("Street2"))
		}
		r.Set(ColStreet, street)

		query := BuildQuery(r)
		r.Set(ColQuery, query)

		if seen[query] {
			continue
		}
		seen[query] = true

		if !keepExisting || !srcRow.Has(ColAddress) || strings.TrimSpace(srcRow.Get(ColAddress)) == "" {
			r.Set(ColAddress, NotFound)
		}
		if !keepExisting || !srcRow.Has(ColLookupType) || strings.TrimSpace(srcRow.Get(ColLookupType)) == "" {
			r.Set(ColLookupType, string(LookupUnknown))
		}
		if !keepExisting || !srcRow.Has(ColProcessed) || strings.TrimSpace(srcRow.Get(ColProcessed)) == "" {
			r.SetProcessed(false)
		}

		out.Append(r)
	}

	// Repair pass for checkpoints predating the processed column: a row that
	// already carries a real standard address was attempted.
	repairProcessed(out)

	return out, nil
}

func repairProcessed(t *Table) {
	for _, r := range t.Rows {
		if r.Processed() {
			return
		}
	}
	for _, r := range t.Rows {
		addr := strings.TrimSpace(r.Get(ColAddress))
		if addr != "" && !strings.EqualFold(addr, NotFound) {
			r.SetProcessed(true)
		}
	}
}
