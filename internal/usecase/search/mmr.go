package search

import (
	"math"

	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// rerank greedily picks up to limit candidates maximising
// lambda*relevance - (1-lambda)*max cosine similarity to already picked ones.
// Exact ties go to the earlier candidate.
func rerank(candidates []result.Result, limit int, lambda float64) []result.Result {
	if limit <= 0 {
		return []result.Result{}
	}
	if len(candidates) <= 1 {
		return truncate(candidates, limit)
	}

	remaining := append([]result.Result(nil), candidates...)
	selected := make([]result.Result, 0, min(limit, len(candidates)))

	for len(remaining) > 0 && len(selected) < limit {
		best := 0
		bestScore := math.Inf(-1)
		for i := range remaining {
			c := &remaining[i]
			score := lambda*c.Score() - (1-lambda)*penalty(c.Embedding(), selected)
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		selected = append(selected, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return selected
}

// penalty is the highest similarity between vec and any selected embedding.
func penalty(vec []float32, selected []result.Result) float64 {
	if len(vec) == 0 || len(selected) == 0 {
		return 0
	}
	worst := math.Inf(-1)
	for i := range selected {
		worst = max(worst, cosine(vec, selected[i].Embedding()))
	}
	return worst
}

// cosine compares the overlapping prefix of a and b. Empty or zero-norm vectors give 0.
func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
