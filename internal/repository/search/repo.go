package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/localdocs/internal/db"
	"github.com/kailas-cloud/localdocs/internal/domain/search/filter"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
	"github.com/kailas-cloud/localdocs/internal/repository/hashdoc"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store  store
	layout hashdoc.Layout
	ef     int
}

// New creates a search repository. ef is the HNSW EF_RUNTIME sent with every query.
func New(s store, layout hashdoc.Layout, ef int) *Repo {
	return &Repo{store: s, layout: layout, ef: ef}
}

// Nearest returns up to k passages closest to vector, ordered by descending similarity.
// Passages scoring below minScore are dropped by the store.
func (r *Repo) Nearest(
	ctx context.Context, vector []float32, k int, minScore float64, filters filter.Expression,
) ([]result.Result, error) {
	q := &db.KNNQuery{
		IndexName:    r.layout.IndexName(),
		Filters:      filters,
		Vector:       vector,
		K:            k,
		EF:           r.ef,
		MinScore:     minScore,
		ReturnFields: returnFields(filters),
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.layout.Collection, err)
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		// TAG matching is case-insensitive; payload equality is exact.
		if !matchesAll(filters, entry.Fields) {
			continue
		}
		results = append(results, r.layout.ToResult(entry.Key, entry.Fields, entry.Score))
	}
	return results, nil
}

// returnFields adds filter keys that are not part of the payload so they can be re-checked.
func returnFields(filters filter.Expression) []string {
	fields := append([]string(nil), hashdoc.PayloadFields...)
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		seen[f] = true
	}
	for _, c := range filters.Conditions() {
		if !seen[c.Key()] {
			seen[c.Key()] = true
			fields = append(fields, c.Key())
		}
	}
	return fields
}

func matchesAll(filters filter.Expression, fields map[string]string) bool {
	for _, c := range filters.Conditions() {
		v, ok := fields[c.Key()]
		if !ok || !c.Matches(v) {
			return false
		}
	}
	return true
}
