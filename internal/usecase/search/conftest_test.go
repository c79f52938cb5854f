package search

import (
	"context"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/filter"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// --- Mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	calls  int
	lastIn string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.lastIn = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, nil
}

// mockRepo returns its candidates in order, honouring k and filename filters.
// It does not enforce minScore, like a store with an inexact threshold.
type mockRepo struct {
	results []result.Result
	err     error

	calls        int
	lastK        int
	lastMinScore float64
	lastFilters  filter.Expression
}

func (m *mockRepo) Nearest(
	_ context.Context, _ []float32, k int, minScore float64, filters filter.Expression,
) ([]result.Result, error) {
	m.calls++
	m.lastK = k
	m.lastMinScore = minScore
	m.lastFilters = filters
	if m.err != nil {
		return nil, m.err
	}

	out := make([]result.Result, 0, len(m.results))
	for _, r := range m.results {
		if !matchesFilename(filters, r) {
			continue
		}
		out = append(out, r)
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func matchesFilename(filters filter.Expression, r result.Result) bool {
	for _, c := range filters.Conditions() {
		if c.Key() == "filename" && !c.Matches(r.Filename()) {
			return false
		}
	}
	return true
}

type mockDocs struct {
	docs map[string]result.Result
	err  error
}

func (m *mockDocs) Get(_ context.Context, id string) (result.Result, error) {
	if m.err != nil {
		return result.Result{}, m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return result.Result{}, domain.ErrNotFound
	}
	return doc, nil
}

type mockColls struct {
	info domain.CollectionInfo
	err  error
}

func (m *mockColls) Info(_ context.Context) (domain.CollectionInfo, error) {
	return m.info, m.err
}

// --- Helpers ---

func res(id string, score float64, emb ...float32) result.Result {
	return result.New(id, id+".md", "text of "+id, score, emb, 0, result.Positions{})
}

func doc(id, filename, text string, score float64, emb ...float32) result.Result {
	return result.New(id, filename, text, score, emb, 0, result.Positions{})
}

func ids(results []result.Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID()
	}
	return out
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func newTestService(emb *mockEmbedder, repo *mockRepo) *Service {
	return New(domain.DefaultSearchConfig(), emb, repo, &mockDocs{}, &mockColls{})
}
