package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/localdocs/internal/domain"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	healthErr error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error {
	return m.healthErr
}

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 4,
	}}
	p := NewInstrumentedEmbedder(inner, "ollama", "test-model", zap.NewNop())

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.calls)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	inner := &mockEmbedder{err: domain.ErrProviderUnavailable}
	p := NewInstrumentedEmbedder(inner, "ollama", "test-model", zap.New(core))

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 error log, got %d", logs.Len())
	}
	entry := logs.All()[0]
	if entry.ContextMap()["provider"] != "ollama" {
		t.Errorf("expected provider field, got %v", entry.ContextMap())
	}
}

func TestInstrumentedEmbedder_RecordsUsage(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{1},
		TotalTokens: 7,
		Cached:      true,
	}}
	p := NewInstrumentedEmbedder(inner, "ollama", "m", nil)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := p.Embed(ctx, "q"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !usage.Used || !usage.Cached || usage.TotalTokens != 7 {
		t.Errorf("unexpected usage: %+v", usage)
	}
}

func TestInstrumentedEmbedder_NoUsageOnError(t *testing.T) {
	p := NewInstrumentedEmbedder(&mockEmbedder{err: errors.New("boom")}, "ollama", "m", nil)

	ctx, usage := domain.NewContextWithUsage(context.Background())
	if _, err := p.Embed(ctx, "q"); err == nil {
		t.Fatal("expected error")
	}
	if usage.Used {
		t.Error("usage must not be recorded on failure")
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	healthy := NewInstrumentedEmbedder(&mockEmbedder{}, "ollama", "m", nil)
	if err := healthy.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}

	sick := NewInstrumentedEmbedder(&mockEmbedder{healthErr: domain.ErrProviderUnavailable}, "ollama", "m", nil)
	if err := sick.HealthCheck(context.Background()); !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}

	plain := NewInstrumentedEmbedder(plainEmbedder{}, "ollama", "m", nil)
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("embedder without health check must report healthy, got %v", err)
	}
}
