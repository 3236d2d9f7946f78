package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/archivist/internal/domain/catalog"
	"github.com/kailas-cloud/archivist/internal/domain/query"
	"github.com/kailas-cloud/archivist/internal/domain/result"
)

// mockClient implements the consumer interface for tests.
type mockClient struct {
	searchFn        func(ctx context.Context, categoryID int, req *query.Request) (result.Result, error)
	lookupIndexesFn func(ctx context.Context, categoryID int, indexes []query.Index) (result.Result, error)
}

func (m *mockClient) Search(ctx context.Context, categoryID int, req *query.Request) (result.Result, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, categoryID, req)
	}
	return result.Result{}, nil
}

func (m *mockClient) LookupIndexes(ctx context.Context, categoryID int, indexes []query.Index) (result.Result, error) {
	if m.lookupIndexesFn != nil {
		return m.lookupIndexesFn(ctx, categoryID, indexes)
	}
	return result.Result{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockClient) {
	t.Helper()
	mc := &mockClient{}
	return New(mc), mc
}

func permits() catalog.Category {
	return catalog.Category{ID: 4, Name: "PERMITS", NotPublicFieldName: "NOT PUBLIC"}
}

func mixedResult() result.Result {
	return result.Result{
		Columns: []string{"PERMIT #", "NOT PUBLIC"},
		Entries: []result.Entry{
			{ID: 1, IndexValues: []string{"A1", "false"}},
			{ID: 2, IndexValues: []string{"A2", "true"}},
			{ID: 3, IndexValues: []string{"A3", ""}},
		},
	}
}
