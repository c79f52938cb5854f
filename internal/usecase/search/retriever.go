package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/filter"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// retriever runs similarity queries against the store.
type retriever struct {
	repo Repository
	// defaultMinScore is the configured threshold; stricter thresholds are re-checked locally.
	defaultMinScore float64
}

// query returns up to limit candidates in store order (descending similarity).
func (r retriever) query(
	ctx context.Context, vector []float32, limit int,
	threshold float64, filters filter.Expression,
) ([]result.Result, error) {
	results, err := r.repo.Nearest(ctx, vector, limit, threshold, filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	if threshold > r.defaultMinScore {
		kept := results[:0]
		for _, res := range results {
			if res.Score() >= threshold {
				kept = append(kept, res)
			}
		}
		results = kept
	}

	return results, nil
}

func truncate(results []result.Result, limit int) []result.Result {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}
