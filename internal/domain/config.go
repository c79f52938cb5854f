package domain

import "time"

// CachePolicy selects how the embedding cache behaves once it is full.
type CachePolicy string

const (
	// CachePolicyFill inserts until capacity is reached, then stops inserting.
	CachePolicyFill CachePolicy = "fill"
	// CachePolicyLRU evicts the least recently used entry.
	CachePolicyLRU CachePolicy = "lru"
)

// IsValid reports whether the policy is supported.
func (p CachePolicy) IsValid() bool {
	return p == CachePolicyFill || p == CachePolicyLRU
}

// SearchConfig is the immutable snapshot of retrieval parameters.
// It is built once per service instance and passed by value.
type SearchConfig struct {
	StoreAddrs       []string
	Collection       string
	EmbeddingURL     string
	EmbeddingModel   string
	EmbeddingDim     int
	DefaultLimit     int
	MinScore         float64
	SearchEF         int
	SemanticWeight   float64
	MMRLambda        float64
	KeywordBoost     float64
	EmbeddingTimeout time.Duration
	CacheCapacity    int
	CachePolicy      CachePolicy
	QueryInstruction string
}

// DefaultSearchConfig returns the built-in defaults.
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		StoreAddrs:       []string{"localhost:6379"},
		Collection:       "local-docs-collection",
		EmbeddingURL:     "http://localhost:11434/v1",
		EmbeddingModel:   "hf.co/Qwen/Qwen3-Embedding-0.6B-GGUF:F16",
		EmbeddingDim:     1024,
		DefaultLimit:     10,
		MinScore:         0.15,
		SearchEF:         256,
		SemanticWeight:   0.85,
		MMRLambda:        0.75,
		KeywordBoost:     1.5,
		EmbeddingTimeout: 5 * time.Second,
		CacheCapacity:    100,
		CachePolicy:      CachePolicyFill,
	}
}

// Collection status values.
const (
	CollectionStatusGreen   = "green"
	CollectionStatusYellow  = "yellow"
	CollectionStatusUnknown = "unknown"
)

// CollectionInfo describes the searchable collection.
// Error is set instead of the counters when the store could not be inspected.
type CollectionInfo struct {
	Name        string `json:"name"`
	Status      string `json:"status,omitempty"`
	PointCount  int64  `json:"points_count"`
	VectorCount int64  `json:"vectors_count"`
	VectorSize  int    `json:"vector_size,omitempty"`
	Error       string `json:"error,omitempty"`
}
