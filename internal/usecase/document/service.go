package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/archivist/internal/domain"
	"github.com/kailas-cloud/archivist/internal/domain/catalog"
	"github.com/kailas-cloud/archivist/internal/domain/query"
	"github.com/kailas-cloud/archivist/internal/domain/result"
	"github.com/kailas-cloud/archivist/internal/logger"
	"github.com/kailas-cloud/archivist/internal/metrics"
)

// visibleValue is the not-public index value of a releasable document.
const visibleValue = "FALSE"

// Listing is a search result with page counts merged in.
type Listing struct {
	Result     result.Result
	PageCounts result.EnrichmentStatus
}

// ObjectKey names the stored PDF of a document.
func ObjectKey(categoryID, documentID int) string {
	return strconv.Itoa(categoryID) + "-" + strconv.Itoa(documentID) + ".pdf"
}

// Service lists and retrieves archived documents.
type Service struct {
	catalog Catalog
	repo    Repository
	pages   PageCounter
	objects ObjectStore
}

// New creates a document service. pages may be nil, in which case listings
// are never enriched.
func New(cat Catalog, repo Repository, pages PageCounter, objects ObjectStore) *Service {
	return &Service{
		catalog: cat,
		repo:    repo,
		pages:   pages,
		objects: objects,
	}
}

// FilteredList runs the caller's filter selection against its category.
// Only selections are taken from the caller; types and visibility settings
// come from the catalog.
func (s *Service) FilteredList(ctx context.Context, selection catalog.Category) (Listing, error) {
	base, err := s.catalog.CategoryByID(selection.ID)
	if err != nil {
		return Listing{}, fmt.Errorf("resolve category: %w", err)
	}
	if selection.EntityID != 0 && selection.EntityID != base.EntityID {
		return Listing{}, fmt.Errorf("category %d does not belong to entity %d: %w",
			selection.ID, selection.EntityID, domain.ErrNotFound)
	}

	req := query.Compile(query.Overlay(base, selection))
	return s.list(ctx, base, func(ctx context.Context) (result.Result, error) {
		return s.repo.Search(ctx, base, req)
	})
}

// ListAll returns every visible document of a category.
func (s *Service) ListAll(ctx context.Context, entityName, categoryName string) (Listing, error) {
	c, err := s.catalog.Category(entityName, categoryName)
	if err != nil {
		return Listing{}, fmt.Errorf("resolve category: %w", err)
	}
	return s.list(ctx, c, func(ctx context.Context) (result.Result, error) {
		return s.repo.ListAll(ctx, c)
	})
}

// list runs search and page-count lookup concurrently. Only a search failure
// fails the listing.
func (s *Service) list(
	ctx context.Context, c catalog.Category,
	search func(ctx context.Context) (result.Result, error),
) (Listing, error) {
	var (
		found      result.Result
		enrichment result.Enrichment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := search(gctx)
		if err != nil {
			return err
		}
		found = r
		return nil
	})
	g.Go(func() error {
		enrichment = s.enrich(gctx, c)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Listing{}, err //nolint:wrapcheck // repository errors are already wrapped
	}

	return Listing{
		Result:     found.WithPageCounts(enrichment),
		PageCounts: enrichment.Status(),
	}, nil
}

func (s *Service) enrich(ctx context.Context, c catalog.Category) result.Enrichment {
	if s.pages == nil {
		return result.EnrichmentUnavailable()
	}
	counts, err := s.pages.PageCounts(ctx, c.ID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// The listing itself failed or was abandoned.
			return result.EnrichmentUnavailable()
		}
		logger.FromContext(ctx).Warn("page count enrichment unavailable",
			zap.Int("category_id", c.ID),
			zap.Error(err))
		metrics.EnrichmentTotal.WithLabelValues(string(result.StatusUnavailable)).Inc()
		return result.EnrichmentUnavailable()
	}
	metrics.EnrichmentTotal.WithLabelValues(string(result.StatusEnriched)).Inc()
	return result.Enriched(counts)
}

// IsPublic reports whether a document of the category may be released.
// Categories without a not-public field release everything.
func (s *Service) IsPublic(ctx context.Context, c catalog.Category, documentID int) (bool, error) {
	if !c.HasVisibilityField() {
		return true, nil
	}
	visible, err := s.repo.LookupIndexes(ctx, c, []query.Index{
		{Name: c.NotPublicFieldName, Value: visibleValue},
	})
	if err != nil {
		return false, fmt.Errorf("visibility of document %d: %w", documentID, err)
	}
	return visible.Contains(documentID), nil
}

// Retrieve streams a released document. Restricted documents are reported as
// not found. The caller closes the returned body.
func (s *Service) Retrieve(ctx context.Context, entityName, categoryName string, documentID int) (io.ReadCloser, error) {
	c, err := s.catalog.Category(entityName, categoryName)
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	public, err := s.IsPublic(ctx, c, documentID)
	if err != nil {
		return nil, err
	}
	if !public {
		return nil, fmt.Errorf("document %d in category %d: %w", documentID, c.ID, domain.ErrNotFound)
	}

	key := ObjectKey(c.ID, documentID)
	url, err := s.objects.PresignGet(ctx, key)
	if err != nil {
		// Fetch below fails on the empty url and reports the document as unavailable.
		logger.FromContext(ctx).Error("presign document url",
			zap.String("key", key),
			zap.Error(err))
	}

	body, err := s.objects.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", key, err)
	}
	return body, nil
}
