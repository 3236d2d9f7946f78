package pagecount

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/archivist/internal/db"
	"github.com/kailas-cloud/archivist/internal/metrics"
)

// DefaultTable holds one row per scanned document: APPID, DOCID, PAGES.
const DefaultTable = "historical"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// store is the consumer interface for page-count lookups (ISP).
type store interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo implements usecase/document.PageCounter.
type Repo struct {
	store store
	query string
}

// New creates a page-count repository reading from table.
// Empty table falls back to DefaultTable.
func New(s store, table string) (*Repo, error) {
	if table == "" {
		table = DefaultTable
	}
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid page count table %q", table)
	}
	return &Repo{
		store: s,
		query: "SELECT DOCID, PAGES FROM " + table + " WHERE APPID = ?",
	}, nil
}

// PageCounts returns document id → page count for one category.
// NULL or non-numeric cells count as 0.
func (r *Repo) PageCounts(ctx context.Context, categoryID int) (_ map[int]int, err error) {
	start := time.Now()
	defer func() { metrics.ObserveUpstream(metrics.TargetMetadata, "page_counts", start, err) }()

	rows, err := r.store.QueryContext(ctx, r.query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("page counts for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var docID, pages sql.NullString
		if err := rows.Scan(&docID, &pages); err != nil {
			return nil, fmt.Errorf("page counts for category %d: %w",
				categoryID, &db.Error{Op: db.OpScan, Err: err})
		}
		counts[toInt(docID)] = toInt(pages)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("page counts for category %d: %w",
			categoryID, &db.Error{Op: db.OpScan, Err: err})
	}
	return counts, nil
}

func toInt(v sql.NullString) int {
	if !v.Valid {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.String))
	if err != nil {
		return 0
	}
	return n
}
