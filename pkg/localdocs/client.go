package localdocs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/localdocs/internal/db/redis"
	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/metrics"
	collectionrepo "github.com/kailas-cloud/localdocs/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/localdocs/internal/repository/document"
	"github.com/kailas-cloud/localdocs/internal/repository/embcache"
	"github.com/kailas-cloud/localdocs/internal/repository/hashdoc"
	searchrepo "github.com/kailas-cloud/localdocs/internal/repository/search"
	openaiEmb "github.com/kailas-cloud/localdocs/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/localdocs/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/localdocs/internal/usecase/health"
	searchuc "github.com/kailas-cloud/localdocs/internal/usecase/search"
)

// Client is the localdocs entry point. It is safe for concurrent use.
type Client struct {
	store  *dbRedis.Store
	search searchUseCase
	health healthUseCase
	cfg    domain.SearchConfig
	obs    *observer
}

// New validates the options, connects to the store and waits until it answers.
// The provided context bounds the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := defaultClientConfig()
	for _, o := range opts {
		o.apply(cfg)
	}
	cfg.conf.ApplyDefaults()
	if err := cfg.conf.Validate(); err != nil {
		return nil, fmt.Errorf("localdocs: %w: %w", ErrInvalidArgument, err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg, cfg.conf.Store.Collection)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.conf.Store.Addrs,
		Username:   cfg.conf.Store.Username,
		Password:   cfg.conf.Store.Password,
		ClientName: "localdocs-sdk",
	})
	if err != nil {
		return nil, fmt.Errorf("localdocs: create store: %w", err)
	}

	timeout := time.Duration(cfg.conf.Store.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("localdocs: %w: %w", ErrStoreUnavailable, err)
	}

	c, err := wireClient(store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store *dbRedis.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	searchCfg := cfg.conf.SearchConfig()
	layout := hashdoc.Layout{Prefix: cfg.conf.Store.KeyPrefix, Collection: searchCfg.Collection}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}

	collRepo := collectionrepo.New(store, layout)
	searchSvc := searchuc.New(
		searchCfg,
		embedder,
		searchrepo.New(store, layout, searchCfg.SearchEF),
		documentrepo.New(store, layout),
		collRepo,
	)
	healthSvc := healthuc.New(store, collRepo, embedder, nil)

	return &Client{
		store:  store,
		search: searchSvc,
		health: healthSvc,
		cfg:    searchCfg,
		obs:    obs,
	}, nil
}

// queryEmbedder is what the search and health services need from the chain.
type queryEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction.
func buildEmbedder(cfg *clientConfig) (queryEmbedder, error) {
	e := cfg.conf.Embedding

	var base domain.Embedder
	if cfg.embedder != nil {
		base = &embedderAdapter{inner: cfg.embedder}
	} else {
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:    e.APIKey,
			BaseURL:   e.BaseURL,
			Model:     e.Model,
			ExpectDim: e.Dimensions,
			Timeout:   e.Timeout,
			Provider:  e.Provider,
		})
	}

	cached, err := embcache.New(base, embcache.Config{
		Dim:      e.Dimensions,
		Capacity: cfg.conf.Cache.Capacity,
		Policy:   domain.CachePolicy(cfg.conf.Cache.Policy),
	}, metrics.EmbeddingCacheTotal, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("localdocs: %w: %w", ErrInvalidArgument, err)
	}

	instrumented := embeddinguc.NewInstrumentedEmbedder(cached, e.Provider, e.Model, nil)
	if e.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(instrumented, e.QueryInstruction), nil
	}
	return instrumented, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks store connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(opPing, start, noResults, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
