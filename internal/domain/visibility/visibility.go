// Package visibility removes restricted documents from search results.
package visibility

import (
	"strings"

	"github.com/kailas-cloud/archivist/internal/domain/catalog"
	"github.com/kailas-cloud/archivist/internal/domain/result"
)

// Suppress drops every entry whose not-public column is not explicitly false.
// Unparsable, empty and missing values count as not public.
// Categories without a not-public column, or results lacking that column,
// are returned unchanged.
func Suppress(r result.Result, c catalog.Category) result.Result {
	if !c.HasVisibilityField() {
		return r
	}
	col := r.ColumnIndex(c.NotPublicFieldName)
	if col < 0 {
		return r
	}

	kept := make([]result.Entry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if IsPublic(e, col) {
			kept = append(kept, e)
		}
	}
	return result.Result{Columns: r.Columns, Entries: kept}
}

// publicValue is the only not-public value that releases a document.
// Matching is case-insensitive after trimming; "0", "f" and the like are
// not recognized and keep the document restricted.
const publicValue = "false"

// IsPublic reports whether the not-public value at column col reads "false".
func IsPublic(e result.Entry, col int) bool {
	v, ok := e.Value(col)
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(v), publicValue)
}
