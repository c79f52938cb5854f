package localdocs

import (
	"context"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/request"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/localdocs/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	semanticFn func(ctx context.Context, query string, opts request.Options) ([]result.Result, error)
	hybridFn   func(ctx context.Context, query string, opts request.Options) ([]result.Result, error)
	filteredFn func(ctx context.Context, query string, filters map[string]any, opts request.Options) ([]result.Result, error)
	documentFn func(ctx context.Context, id string) (result.Result, bool, error)
	infoFn     func(ctx context.Context) domain.CollectionInfo
}

func (m *mockSearchUC) Semantic(ctx context.Context, query string, opts request.Options) ([]result.Result, error) {
	return m.semanticFn(ctx, query, opts)
}

func (m *mockSearchUC) Hybrid(ctx context.Context, query string, opts request.Options) ([]result.Result, error) {
	return m.hybridFn(ctx, query, opts)
}

func (m *mockSearchUC) Filtered(
	ctx context.Context, query string, filters map[string]any, opts request.Options,
) ([]result.Result, error) {
	return m.filteredFn(ctx, query, filters, opts)
}

func (m *mockSearchUC) Document(ctx context.Context, id string) (result.Result, bool, error) {
	return m.documentFn(ctx, id)
}

func (m *mockSearchUC) CollectionInfo(ctx context.Context) domain.CollectionInfo {
	return m.infoFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- Embedder stub ---

type stubEmbedder struct {
	vec       []float32
	err       error
	healthErr error
	calls     int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	s.calls++
	if s.err != nil {
		return EmbeddingResult{}, s.err
	}
	return EmbeddingResult{Embedding: s.vec, PromptTokens: 3, TotalTokens: 3}, nil
}

type checkedEmbedder struct {
	stubEmbedder
}

func (c *checkedEmbedder) HealthCheck(_ context.Context) error { return c.healthErr }
