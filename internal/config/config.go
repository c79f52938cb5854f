package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/localdocs/internal/db"
	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/request"
)

// Config holds the localdocs configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StoreConfig holds vector store (Redis Stack / Valkey Search) settings.
type StoreConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	Collection       string   `yaml:"collection"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider         string        `yaml:"provider"` // label for logs and metrics
	BaseURL          string        `yaml:"base_url"`
	APIKey           string        `yaml:"api_key"`
	Model            string        `yaml:"model"`
	Dimensions       int           `yaml:"dimensions"`
	Timeout          time.Duration `yaml:"timeout"`
	QueryInstruction string        `yaml:"query_instruction"`
}

// SearchConfig holds ranking defaults.
type SearchConfig struct {
	DefaultLimit        int     `yaml:"default_limit"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	HNSWEF              int     `yaml:"hnsw_ef"`
	HybridWeight        float64 `yaml:"hybrid_weight"`
	MMRLambda           float64 `yaml:"mmr_lambda"`
	KeywordBoost        float64 `yaml:"keyword_boost"`
}

// CacheConfig holds query embedding cache settings.
type CacheConfig struct {
	Capacity int    `yaml:"capacity"`
	Policy   string `yaml:"policy"` // fill, lru
}

// Default returns the built-in configuration.
// Float settings live here rather than in ApplyDefaults because zero is a valid value for them.
func Default() Config {
	d := domain.DefaultSearchConfig()
	cfg := Config{
		Store: StoreConfig{
			Addrs:      append([]string(nil), d.StoreAddrs...),
			Collection: d.Collection,
		},
		Embedding: EmbeddingConfig{
			BaseURL:    d.EmbeddingURL,
			Model:      d.EmbeddingModel,
			Dimensions: d.EmbeddingDim,
			Timeout:    d.EmbeddingTimeout,
		},
		Search: SearchConfig{
			DefaultLimit:        d.DefaultLimit,
			SimilarityThreshold: d.MinScore,
			HNSWEF:              d.SearchEF,
			HybridWeight:        d.SemanticWeight,
			MMRLambda:           d.MMRLambda,
			KeywordBoost:        d.KeywordBoost,
		},
		Cache: CacheConfig{
			Capacity: d.CacheCapacity,
			Policy:   string(d.CachePolicy),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads configuration by environment name (local, dev, prod, cli).
// A missing config/<env>.yaml is not an error: defaults and LOCAL_DOCS_* variables apply.
func Load(env string) (Config, error) {
	return load(findConfigPath(env), true)
}

// LoadFile reads configuration from an explicit path, which must exist.
func LoadFile(path string) (Config, error) {
	return load(path, false)
}

func load(path string, optional bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.ApplyDefaults()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, fmt.Errorf("invalid environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields whose zero value is meaningless.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.KeyPrefix == "" {
		c.Store.KeyPrefix = "localdocs:"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "ollama"
	}
	if c.Embedding.APIKey == "" {
		// Ollama ignores the key, but the OpenAI client insists on one.
		c.Embedding.APIKey = "ollama"
	}
	if c.Cache.Policy == "" {
		c.Cache.Policy = string(domain.CachePolicyFill)
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Store.Addrs) == 0 {
		return fmt.Errorf("store.addrs is required")
	}
	if !db.IsValidIdentifier(c.Store.Collection) {
		return fmt.Errorf("store.collection must match [a-zA-Z0-9_:-]+, got %q", c.Store.Collection)
	}
	if c.Embedding.BaseURL == "" {
		return fmt.Errorf("embedding.base_url is required")
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Embedding.Timeout <= 0 {
		return fmt.Errorf("embedding.timeout must be positive, got %s", c.Embedding.Timeout)
	}
	if c.Search.DefaultLimit <= 0 || c.Search.DefaultLimit > request.MaxLimit {
		return fmt.Errorf("search.default_limit must be between 1 and %d, got %d", request.MaxLimit, c.Search.DefaultLimit)
	}
	if c.Search.HNSWEF <= 0 {
		return fmt.Errorf("search.hnsw_ef must be positive, got %d", c.Search.HNSWEF)
	}
	for name, v := range map[string]float64{
		"search.similarity_threshold": c.Search.SimilarityThreshold,
		"search.hybrid_weight":        c.Search.HybridWeight,
		"search.mmr_lambda":           c.Search.MMRLambda,
	} {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, v)
		}
	}
	if !(c.Search.KeywordBoost >= 1) {
		return fmt.Errorf("search.keyword_boost must be at least 1, got %v", c.Search.KeywordBoost)
	}
	if c.Cache.Capacity < 0 {
		return fmt.Errorf("cache.capacity must not be negative, got %d", c.Cache.Capacity)
	}
	if !domain.CachePolicy(c.Cache.Policy).IsValid() {
		return fmt.Errorf("cache.policy must be \"fill\" or \"lru\", got %q", c.Cache.Policy)
	}
	return nil
}

// SearchConfig returns the immutable retrieval snapshot.
func (c *Config) SearchConfig() domain.SearchConfig {
	return domain.SearchConfig{
		StoreAddrs:       append([]string(nil), c.Store.Addrs...),
		Collection:       c.Store.Collection,
		EmbeddingURL:     c.Embedding.BaseURL,
		EmbeddingModel:   c.Embedding.Model,
		EmbeddingDim:     c.Embedding.Dimensions,
		DefaultLimit:     c.Search.DefaultLimit,
		MinScore:         c.Search.SimilarityThreshold,
		SearchEF:         c.Search.HNSWEF,
		SemanticWeight:   c.Search.HybridWeight,
		MMRLambda:        c.Search.MMRLambda,
		KeywordBoost:     c.Search.KeywordBoost,
		EmbeddingTimeout: c.Embedding.Timeout,
		CacheCapacity:    c.Cache.Capacity,
		CachePolicy:      domain.CachePolicy(c.Cache.Policy),
		QueryInstruction: c.Embedding.QueryInstruction,
	}
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
