package search

import (
	"slices"

	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// boostThreshold marks near-exact lexical matches eligible for the keyword boost.
const boostThreshold = 0.8

// fuse blends similarity with keyword scores:
// final = w*semantic + (1-w)*min(kw (boosted above 0.8), 1).
// The output is sorted by descending final score; ties keep input order.
func fuse(
	results []result.Result, kwScores map[string]float64,
	semanticWeight, boost float64,
) []result.Result {
	fused := make([]result.Result, 0, len(results))
	for _, res := range results {
		kw := kwScores[res.ID()]
		if kw > boostThreshold {
			kw *= boost
		}
		kw = min(kw, 1)

		final := semanticWeight*res.Score() + (1-semanticWeight)*kw
		fused = append(fused, res.WithScore(final))
	}

	slices.SortStableFunc(fused, func(a, b result.Result) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		default:
			return 0
		}
	})
	return fused
}
