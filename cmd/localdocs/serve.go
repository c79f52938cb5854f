package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/localdocs/internal/config"
	dbRedis "github.com/kailas-cloud/localdocs/internal/db/redis"
	"github.com/kailas-cloud/localdocs/internal/domain"
	logpkg "github.com/kailas-cloud/localdocs/internal/logger"
	"github.com/kailas-cloud/localdocs/internal/metrics"
	collectionrepo "github.com/kailas-cloud/localdocs/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/localdocs/internal/repository/document"
	"github.com/kailas-cloud/localdocs/internal/repository/embcache"
	"github.com/kailas-cloud/localdocs/internal/repository/hashdoc"
	searchrepo "github.com/kailas-cloud/localdocs/internal/repository/search"
	chiTransport "github.com/kailas-cloud/localdocs/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/localdocs/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/localdocs/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/localdocs/internal/usecase/health"
	searchuc "github.com/kailas-cloud/localdocs/internal/usecase/search"
	"github.com/kailas-cloud/localdocs/internal/version"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP search API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if port, err := intFlag(cmd, "port"); err != nil {
				return err
			} else if port != nil {
				cfg.HTTP.Port = *port
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runServer(ctx, cfg, config.GetEnv())
		},
	}
	cmd.Flags().Int("port", 0, "HTTP port (default from config)")
	return cmd
}

func runServer(ctx context.Context, cfg config.Config, env string) error {
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting localdocs API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("store_addrs", cfg.Store.Addrs),
		zap.String("collection", cfg.Store.Collection),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Store.Addrs,
		Username:   cfg.Store.Username,
		Password:   cfg.Store.Password,
		ClientName: "localdocs",
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Store.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("store not ready: %w", err)
	}
	logger.Info("Connected to store")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterHTTPMetrics()

	embedder, err := buildEmbedder(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	searchCfg := cfg.SearchConfig()
	layout := hashdoc.Layout{Prefix: cfg.Store.KeyPrefix, Collection: searchCfg.Collection}
	collRepo := collectionrepo.New(store, layout)

	searchSvc := searchuc.New(
		searchCfg,
		embedder,
		searchrepo.New(store, layout, searchCfg.SearchEF),
		documentrepo.New(store, layout),
		collRepo,
	)
	healthSvc := healthuc.New(store, collRepo, embedder, logger)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-sigCtx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// serviceEmbedder is what the search and health services need from the chain.
type serviceEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(cfg config.Config, logger *zap.Logger) (serviceEmbedder, error) {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:    cfg.Embedding.APIKey,
		BaseURL:   cfg.Embedding.BaseURL,
		Model:     cfg.Embedding.Model,
		ExpectDim: cfg.Embedding.Dimensions,
		Timeout:   cfg.Embedding.Timeout,
		Provider:  cfg.Embedding.Provider,
		Logger:    logger,
	})

	cached, err := embcache.New(base, embcache.Config{
		Dim:      cfg.Embedding.Dimensions,
		Capacity: cfg.Cache.Capacity,
		Policy:   domain.CachePolicy(cfg.Cache.Policy),
	}, metrics.EmbeddingCacheTotal, logger)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	instrumented := embeddinguc.NewInstrumentedEmbedder(
		cached, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	)

	// Instruction prefix (outermost, so the cache key includes it)
	if cfg.Embedding.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(instrumented, cfg.Embedding.QueryInstruction), nil
	}
	return instrumented, nil
}
