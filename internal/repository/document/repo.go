package document

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/archivist/internal/domain/catalog"
	"github.com/kailas-cloud/archivist/internal/domain/query"
	"github.com/kailas-cloud/archivist/internal/domain/result"
	"github.com/kailas-cloud/archivist/internal/domain/visibility"
	"github.com/kailas-cloud/archivist/internal/metrics"
)

// client is the consumer interface for the repository wire client (ISP).
type client interface {
	Search(ctx context.Context, categoryID int, req *query.Request) (result.Result, error)
	LookupIndexes(ctx context.Context, categoryID int, indexes []query.Index) (result.Result, error)
}

// Repo implements usecase/document.Repository. Every non-empty result leaving
// it has restricted documents removed.
type Repo struct {
	client client
}

// New creates a document repository.
func New(c client) *Repo {
	return &Repo{client: c}
}

// Search runs a compiled query against the category.
func (r *Repo) Search(ctx context.Context, c catalog.Category, req *query.Request) (result.Result, error) {
	res, err := r.client.Search(ctx, c.ID, req)
	if err != nil {
		return result.Result{}, fmt.Errorf("search category %d: %w", c.ID, err)
	}
	return suppress(res, c), nil
}

// ListAll returns every document of the category.
func (r *Repo) ListAll(ctx context.Context, c catalog.Category) (result.Result, error) {
	res, err := r.client.Search(ctx, c.ID, nil)
	if err != nil {
		return result.Result{}, fmt.Errorf("list category %d: %w", c.ID, err)
	}
	return suppress(res, c), nil
}

// LookupIndexes returns the documents whose index values match every pair.
func (r *Repo) LookupIndexes(ctx context.Context, c catalog.Category, indexes []query.Index) (result.Result, error) {
	res, err := r.client.LookupIndexes(ctx, c.ID, indexes)
	if err != nil {
		return result.Result{}, fmt.Errorf("lookup category %d: %w", c.ID, err)
	}
	return suppress(res, c), nil
}

func suppress(res result.Result, c catalog.Category) result.Result {
	if res.IsEmpty() {
		return res
	}
	kept := visibility.Suppress(res, c)
	if dropped := len(res.Entries) - len(kept.Entries); dropped > 0 {
		metrics.SuppressedDocumentsTotal.WithLabelValues(strconv.Itoa(c.ID)).Add(float64(dropped))
	}
	return kept
}
