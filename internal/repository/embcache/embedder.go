package embcache

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/localdocs/internal/domain"
)

// Config controls the in-process query embedding cache.
type Config struct {
	Dim      int
	Capacity int
	Policy   domain.CachePolicy
}

// CachedEmbedder memoizes query embeddings in process memory.
// Keys are the trimmed query text.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	group      singleflight.Group
	dim        int
	capacity   int
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"/"empty"), passed explicitly.
func New(
	inner domain.Embedder,
	cfg Config,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) (*CachedEmbedder, error) {
	s, err := newStore(cfg.Policy, cfg.Capacity)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		dim:        cfg.Dim,
		capacity:   cfg.Capacity,
		cacheTotal: cacheTotal,
		logger:     logger,
	}, nil
}

// Embed returns a cached embedding or calls the inner embedder once per key.
// Blank text yields a zero vector without a provider call.
// Cache hit: TotalTokens = 0 (no real tokens consumed).
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := strings.TrimSpace(text)
	if key == "" {
		c.incCache("empty")
		return domain.EmbeddingResult{Embedding: domain.ZeroVector(c.dim)}, nil
	}

	if vec, ok := c.store.Get(key); ok {
		c.incCache("hit")
		return domain.EmbeddingResult{Embedding: vec, Cached: true}, nil
	}

	c.incCache("miss")

	// The shared call outlives any single caller: a cancelled caller stops
	// waiting, the others still get the vector. The provider timeout bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		// a call that finished while this one waited may have filled the entry
		if vec, ok := c.store.Get(key); ok {
			return domain.EmbeddingResult{Embedding: vec, Cached: true}, nil
		}
		result, err := c.inner.Embed(shared, key)
		if err != nil {
			return nil, err
		}
		if !c.store.Add(key, result.Embedding) {
			c.logger.Debug("Embedding cache full, entry not stored",
				zap.Int("capacity", c.capacity))
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", r.Err)
		}
		res := r.Val.(domain.EmbeddingResult) //nolint:forcetypeassert // only EmbeddingResult is returned above
		if r.Shared {
			res.Embedding = slices.Clone(res.Embedding)
		}
		return res, nil
	}
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // pass-through decorator
	}
	return nil
}

// Len returns the number of cached entries.
func (c *CachedEmbedder) Len() int {
	return c.store.Len()
}

func (c *CachedEmbedder) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
