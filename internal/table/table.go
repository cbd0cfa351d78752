// Package table models the working table: ordered records carrying the
// original input columns plus the derived standardization columns. The
// persisted form of this table doubles as the resumable checkpoint and the
// final deliverable.
package table

import (
	"strings"
)

// Derived columns appended to the input schema. The schema is additive-only:
// new runs may add columns but never remove one a checkpoint already carries.
const (
	ColStreet     = "street_"
	ColQuery      = "search_query"
	ColAddress    = "standard_address"
	ColLookupType = "lookup_type"
	ColProcessed  = "processed"
)

// NotFound is the sentinel written when no complete address was resolved.
const NotFound = "N/A"

// LookupType records how a standard address was obtained.
type LookupType string

const (
	LookupUnknown  LookupType = "N/A"
	LookupDirect   LookupType = "direct"
	LookupIndirect LookupType = "indirect"
)

// Record is one address-resolution unit derived from one input row.
type Record struct {
	fields map[string]string
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{fields: make(map[string]string)}
}

// Get returns the value of a column, or "" when absent.
func (r *Record) Get(col string) string {
	return r.fields[col]
}

// Set assigns a column value.
func (r *Record) Set(col, val string) {
	r.fields[col] = val
}

// Has reports whether the record carries a value for col.
func (r *Record) Has(col string) bool {
	_, ok := r.fields[col]
	return ok
}

// Query returns the derived search query.
func (r *Record) Query() string {
	return r.fields[ColQuery]
}

// Processed reports whether resolution has been attempted for this record.
// Accepts the spellings older checkpoints may carry.
func (r *Record) Processed() bool {
	switch strings.ToLower(strings.TrimSpace(r.fields[ColProcessed])) {
	case "true", "1", "yes":
		return true
	}
	return false
}

// SetProcessed flips the processed flag.
func (r *Record) SetProcessed(v bool) {
	if v {
		r.fields[ColProcessed] = "true"
	} else {
		r.fields[ColProcessed] = "false"
	}
}

// SetResult writes the resolution outcome.
func (r *Record) SetResult(address string, lt LookupType) {
	r.fields[ColAddress] = address
	r.fields[ColLookupType] = string(lt)
}

// Table is an ordered sequence of records with an ordered column list.
type Table struct {
	Columns []string
	Rows    []*Record
}

// New creates a table with the given columns.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// HasColumn reports whether the table schema contains col.
func (t *Table) HasColumn(col string) bool {
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// EnsureColumn appends col to the schema if absent.
func (t *Table) EnsureColumn(col string) {
	if !t.HasColumn(col) {
		t.Columns = append(t.Columns, col)
	}
}

// Append adds a record.
func (t *Table) Append(r *Record) {
	t.Rows = append(t.Rows, r)
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Pending returns the indices of unprocessed rows in original order.
func (t *Table) Pending() []int {
	var idx []int
	for i, r := range t.Rows {
		if !r.Processed() {
			idx = append(idx, i)
		}
	}
	return idx
}
