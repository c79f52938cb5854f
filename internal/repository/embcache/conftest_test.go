package embcache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/localdocs/internal/domain"
)

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  atomic.Int32
	block  chan struct{} // when set, Embed waits for it to close

	mu      sync.Mutex
	texts   []string
	ctxErrs []error // ctx.Err() seen by each call after unblocking
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.texts = append(m.texts, text)
	m.mu.Unlock()
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	m.mu.Unlock()
	return m.result, m.err
}

func newTestCachedEmbedder(t *testing.T, inner *mockEmbedder, cfg Config) *CachedEmbedder {
	t.Helper()
	if cfg.Dim == 0 {
		cfg.Dim = 4
	}
	ce, err := New(inner, cfg, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ce
}
