package config

import "github.com/kailas-cloud/localdocs/internal/domain"

// Overrides are explicit per-invocation settings, typically CLI flags.
// Nil or empty fields leave the loaded value untouched.
type Overrides struct {
	StoreAddrs     []string
	Collection     *string
	EmbeddingURL   *string
	EmbeddingModel *string
	EmbeddingDim   *int
	DefaultLimit   *int
	MinScore       *float64
	SearchEF       *int
	SemanticWeight *float64
	MMRLambda      *float64
	KeywordBoost   *float64
	CacheCapacity  *int
	CachePolicy    *domain.CachePolicy
}

// ApplyOverrides applies o on top of the current values. Call Validate afterwards.
func (c *Config) ApplyOverrides(o Overrides) {
	if len(o.StoreAddrs) > 0 {
		c.Store.Addrs = append([]string(nil), o.StoreAddrs...)
	}
	set(&c.Store.Collection, o.Collection)
	set(&c.Embedding.BaseURL, o.EmbeddingURL)
	set(&c.Embedding.Model, o.EmbeddingModel)
	set(&c.Embedding.Dimensions, o.EmbeddingDim)
	set(&c.Search.DefaultLimit, o.DefaultLimit)
	set(&c.Search.SimilarityThreshold, o.MinScore)
	set(&c.Search.HNSWEF, o.SearchEF)
	set(&c.Search.HybridWeight, o.SemanticWeight)
	set(&c.Search.MMRLambda, o.MMRLambda)
	set(&c.Search.KeywordBoost, o.KeywordBoost)
	set(&c.Cache.Capacity, o.CacheCapacity)
	if o.CachePolicy != nil {
		c.Cache.Policy = string(*o.CachePolicy)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
