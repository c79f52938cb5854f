package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from LOCAL_DOCS_* variables.
// LOCAL_DOCS_QDRANT_URL and LOCAL_DOCS_QDRANT_COLLECTION are accepted as aliases
// of the store variables so existing shell profiles keep working.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	e := envReader{lookup: lookup}

	if v, ok := e.first("LOCAL_DOCS_STORE_ADDRS", "LOCAL_DOCS_QDRANT_URL"); ok {
		c.Store.Addrs = ParseAddrs(v)
	}
	e.str(&c.Store.Password, "LOCAL_DOCS_STORE_PASSWORD")
	if v, ok := e.first("LOCAL_DOCS_COLLECTION", "LOCAL_DOCS_QDRANT_COLLECTION"); ok {
		c.Store.Collection = v
	}
	e.str(&c.Embedding.BaseURL, "LOCAL_DOCS_OLLAMA_URL")
	e.str(&c.Embedding.Model, "LOCAL_DOCS_OLLAMA_MODEL")
	e.str(&c.Embedding.APIKey, "LOCAL_DOCS_EMBEDDING_API_KEY")
	e.integer(&c.Embedding.Dimensions, "LOCAL_DOCS_EMBEDDING_DIMENSION")
	e.duration(&c.Embedding.Timeout, "LOCAL_DOCS_EMBEDDING_TIMEOUT")
	e.integer(&c.Search.DefaultLimit, "LOCAL_DOCS_SEARCH_LIMIT")
	e.float(&c.Search.SimilarityThreshold, "LOCAL_DOCS_SIMILARITY_THRESHOLD")
	e.integer(&c.Search.HNSWEF, "LOCAL_DOCS_SEARCH_HNSW_EF")
	e.float(&c.Search.HybridWeight, "LOCAL_DOCS_HYBRID_WEIGHT")
	e.float(&c.Search.MMRLambda, "LOCAL_DOCS_MMR_LAMBDA")
	e.float(&c.Search.KeywordBoost, "LOCAL_DOCS_KEYWORD_BOOST")
	e.integer(&c.Cache.Capacity, "LOCAL_DOCS_CACHE_CAPACITY")
	e.str(&c.Cache.Policy, "LOCAL_DOCS_CACHE_POLICY")

	return e.err
}

// ParseAddrs splits a comma separated address list.
// URL forms (redis://host:port, http://host:port) are reduced to host:port.
func ParseAddrs(s string) []string {
	var addrs []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "://") {
			if u, err := url.Parse(part); err == nil && u.Host != "" {
				part = u.Host
			}
		}
		addrs = append(addrs, part)
	}
	return addrs
}

// envReader keeps the first parse error so ApplyEnv reads as a flat list.
type envReader struct {
	lookup LookupFunc
	err    error
}

func (e *envReader) first(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := e.lookup(k); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

func (e *envReader) str(dst *string, key string) {
	if v, ok := e.first(key); ok {
		*dst = v
	}
}

func (e *envReader) integer(dst *int, key string) {
	v, ok := e.first(key)
	if !ok || e.err != nil {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = n
}

func (e *envReader) float(dst *float64, key string) {
	v, ok := e.first(key)
	if !ok || e.err != nil {
		return
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = f
}

// duration accepts Go durations ("5s") and bare seconds ("5", "2.5").
func (e *envReader) duration(dst *time.Duration, key string) {
	v, ok := e.first(key)
	if !ok || e.err != nil {
		return
	}
	v = strings.TrimSpace(v)
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		*dst = time.Duration(secs * float64(time.Second))
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = d
}
