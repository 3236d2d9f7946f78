package document

import (
	"context"
	"io"

	"github.com/kailas-cloud/archivist/internal/domain/catalog"
	"github.com/kailas-cloud/archivist/internal/domain/query"
	"github.com/kailas-cloud/archivist/internal/domain/result"
)

// Catalog resolves categories by name or id.
type Catalog interface {
	Category(entityName, categoryName string) (catalog.Category, error)
	CategoryByID(id int) (catalog.Category, error)
}

// Repository queries the document repository. Results are already stripped of
// restricted documents.
type Repository interface {
	Search(ctx context.Context, c catalog.Category, req *query.Request) (result.Result, error)
	ListAll(ctx context.Context, c catalog.Category) (result.Result, error)
	LookupIndexes(ctx context.Context, c catalog.Category, indexes []query.Index) (result.Result, error)
}

// PageCounter reads per-document page counts for a category.
type PageCounter interface {
	PageCounts(ctx context.Context, categoryID int) (map[int]int, error)
}

// ObjectStore presigns and downloads stored documents.
type ObjectStore interface {
	PresignGet(ctx context.Context, key string) (string, error)
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
