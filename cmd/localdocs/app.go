package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/localdocs/internal/config"
	"github.com/kailas-cloud/localdocs/pkg/localdocs"
)

// searcher is what the one-shot commands need from a client.
type searcher interface {
	Semantic(ctx context.Context, query string, opts ...localdocs.SearchOption) ([]localdocs.Result, error)
	Hybrid(ctx context.Context, query string, opts ...localdocs.SearchOption) ([]localdocs.Result, error)
	Filtered(
		ctx context.Context, query string, filters map[string]any, opts ...localdocs.SearchOption,
	) ([]localdocs.Result, error)
	Document(ctx context.Context, id string) (localdocs.Result, bool, error)
	CollectionInfo(ctx context.Context) localdocs.CollectionInfo
	Close()
}

type app struct {
	open func(ctx context.Context, cfg config.Config) (searcher, error)
}

func newApp() *app {
	return &app{open: openClient}
}

func openClient(ctx context.Context, cfg config.Config) (searcher, error) {
	c, err := localdocs.New(ctx, clientOptions(cfg)...)
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed by the client
	}
	return c, nil
}

// clientOptions translates a loaded configuration into client options.
func clientOptions(cfg config.Config) []localdocs.Option {
	return []localdocs.Option{
		localdocs.WithStore(cfg.Store.Addrs...),
		localdocs.WithCredentials(cfg.Store.Username, cfg.Store.Password),
		localdocs.WithCollection(cfg.Store.Collection),
		localdocs.WithKeyPrefix(cfg.Store.KeyPrefix),
		localdocs.WithReadinessTimeout(time.Duration(cfg.Store.ReadinessTimeout) * time.Second),
		localdocs.WithEmbedding(cfg.Embedding.BaseURL, cfg.Embedding.Model, cfg.Embedding.Dimensions),
		localdocs.WithAPIKey(cfg.Embedding.APIKey),
		localdocs.WithEmbeddingTimeout(cfg.Embedding.Timeout),
		localdocs.WithQueryInstruction(cfg.Embedding.QueryInstruction),
		localdocs.WithDefaultLimit(cfg.Search.DefaultLimit),
		localdocs.WithMinScore(cfg.Search.SimilarityThreshold),
		localdocs.WithSemanticWeight(cfg.Search.HybridWeight),
		localdocs.WithMMRLambda(cfg.Search.MMRLambda),
		localdocs.WithKeywordBoost(cfg.Search.KeywordBoost),
		localdocs.WithSearchEF(cfg.Search.HNSWEF),
		localdocs.WithCache(cfg.Cache.Capacity, localdocs.CachePolicy(cfg.Cache.Policy)),
	}
}

// withClient loads the configuration, opens a client and runs fn with it.
func (a *app) withClient(
	cmd *cobra.Command, fn func(ctx context.Context, s searcher, cfg config.Config) error,
) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := a.open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer s.Close()

	return fn(ctx, s, cfg)
}
