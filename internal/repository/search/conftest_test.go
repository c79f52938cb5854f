package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/localdocs/internal/db"
	"github.com/kailas-cloud/localdocs/internal/domain/search/filter"
	"github.com/kailas-cloud/localdocs/internal/repository/hashdoc"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

var testLayout = hashdoc.Layout{Prefix: "localdocs:", Collection: "docs"}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, testLayout, 256)
	return repo, ms
}

func testVector() []float32 {
	return []float32{0.1, 0.1, 0.1, 0.1}
}

func mustFilter(t *testing.T, m map[string]any) filter.Expression {
	t.Helper()
	e, err := filter.FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	return e
}
