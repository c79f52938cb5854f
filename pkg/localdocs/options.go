package localdocs

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/localdocs/internal/config"
	"github.com/kailas-cloud/localdocs/internal/domain"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// CachePolicy selects what the query embedding cache does once full.
type CachePolicy string

// Cache policies.
const (
	// CacheFill stops inserting once capacity is reached.
	CacheFill CachePolicy = CachePolicy(domain.CachePolicyFill)
	// CacheLRU evicts the least recently used entry.
	CacheLRU CachePolicy = CachePolicy(domain.CachePolicyLRU)
)

type clientConfig struct {
	conf     config.Config
	embedder Embedder

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

func defaultClientConfig() *clientConfig {
	return &clientConfig{conf: config.Default()}
}

// WithStore sets the Redis or Valkey addresses (host:port).
// Defaults to localhost:6379.
func WithStore(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Store.Addrs = append([]string(nil), addrs...)
	})
}

// WithCredentials sets the store ACL user and password.
func WithCredentials(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Store.Username = username
		c.conf.Store.Password = password
	})
}

// WithCollection sets the collection to search.
func WithCollection(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Store.Collection = name
	})
}

// WithKeyPrefix sets the key namespace the ingestion pipeline writes under.
// Defaults to "localdocs:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Store.KeyPrefix = prefix
	})
}

// WithReadinessTimeout bounds the initial wait for the store.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Store.ReadinessTimeout = int(d.Seconds())
	})
}

// WithEmbedding configures the built-in OpenAI-compatible provider
// (Ollama's /v1 endpoint by default).
func WithEmbedding(baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Embedding.BaseURL = baseURL
		c.conf.Embedding.Model = model
		c.conf.Embedding.Dimensions = dimensions
	})
}

// WithAPIKey sets the bearer key sent to the embedding provider.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Embedding.APIKey = key
	})
}

// WithEmbeddingTimeout bounds every embedding request.
func WithEmbeddingTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Embedding.Timeout = d
	})
}

// WithQueryInstruction prepends an instruction to every query before embedding.
// Instruction-tuned models such as Qwen3-Embedding expect one.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Embedding.QueryInstruction = instruction
	})
}

// WithEmbedder replaces the built-in provider. The query cache still applies.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDefaultLimit sets the result count used when a call passes no Limit.
func WithDefaultLimit(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Search.DefaultLimit = n
	})
}

// WithMinScore sets the default similarity threshold.
func WithMinScore(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Search.SimilarityThreshold = v
	})
}

// WithSemanticWeight sets the default hybrid fusion weight.
func WithSemanticWeight(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Search.HybridWeight = v
	})
}

// WithMMRLambda sets the default relevance/diversity tradeoff.
func WithMMRLambda(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Search.MMRLambda = v
	})
}

// WithKeywordBoost sets the default multiplier for strong keyword matches.
func WithKeywordBoost(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Search.KeywordBoost = v
	})
}

// WithSearchEF sets the HNSW EF_RUNTIME used by KNN queries.
func WithSearchEF(ef int) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Search.HNSWEF = ef
	})
}

// WithCache configures the query embedding cache. Capacity 0 disables storage.
func WithCache(capacity int, policy CachePolicy) Option {
	return optionFunc(func(c *clientConfig) {
		c.conf.Cache.Capacity = capacity
		c.conf.Cache.Policy = string(policy)
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
