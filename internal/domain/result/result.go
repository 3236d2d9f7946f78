// Package result holds the normalized repository search response.
package result

// Entry is a single document in a search response. IndexValues are positional
// to the owning Result's Columns.
type Entry struct {
	ID          int      `json:"Id"`
	PageCount   int      `json:"PageCount"`
	IndexValues []string `json:"IndexValues"`
}

// Value returns the index value at column position i, if present.
func (e Entry) Value(i int) (string, bool) {
	if i < 0 || i >= len(e.IndexValues) {
		return "", false
	}
	return e.IndexValues[i], true
}

// Result is a normalized search response: the index columns and one entry per document.
type Result struct {
	Columns []string `json:"Columns"`
	Entries []Entry  `json:"Entries"`
}

// ColumnIndex returns the position of the named column, or -1.
func (r Result) ColumnIndex(name string) int {
	for i, c := range r.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the result has no entries.
func (r Result) IsEmpty() bool { return len(r.Entries) == 0 }

// Contains reports whether a document id is among the entries.
func (r Result) Contains(id int) bool {
	for _, e := range r.Entries {
		if e.ID == id {
			return true
		}
	}
	return false
}

// WithPageCounts returns a copy with page counts merged by document id.
// Entries without a count keep 0; an unavailable enrichment leaves every entry at 0.
func (r Result) WithPageCounts(e Enrichment) Result {
	entries := make([]Entry, len(r.Entries))
	for i, entry := range r.Entries {
		entry.PageCount = e.PageCount(entry.ID)
		entries[i] = entry
	}
	return Result{Columns: r.Columns, Entries: entries}
}
