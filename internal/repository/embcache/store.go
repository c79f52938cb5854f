package embcache

import (
	"fmt"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/localdocs/internal/domain"
)

// store is the consumer interface for cached vectors (ISP).
// Vectors are copied in and out, so callers own what they get.
type store interface {
	Get(key string) ([]float32, bool)
	// Add reports whether the entry was stored.
	Add(key string, vec []float32) bool
	Len() int
}

// fillStore inserts until capacity is reached and then stops. Nothing is evicted.
type fillStore struct {
	mu       sync.RWMutex
	entries  map[string][]float32
	capacity int
}

func newFillStore(capacity int) *fillStore {
	return &fillStore{entries: make(map[string][]float32), capacity: capacity}
}

func (s *fillStore) Get(key string) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.entries[key]
	return slices.Clone(vec), ok
}

func (s *fillStore) Add(key string, vec []float32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return true
	}
	if len(s.entries) >= s.capacity {
		return false
	}
	s.entries[key] = slices.Clone(vec)
	return true
}

func (s *fillStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// lruStore evicts the least recently used entry once full.
type lruStore struct {
	cache *lru.Cache[string, []float32]
}

func newLRUStore(capacity int) (*lruStore, error) {
	c, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &lruStore{cache: c}, nil
}

func (s *lruStore) Get(key string) ([]float32, bool) {
	vec, ok := s.cache.Get(key)
	return slices.Clone(vec), ok
}

func (s *lruStore) Add(key string, vec []float32) bool {
	s.cache.Add(key, slices.Clone(vec))
	return true
}

func (s *lruStore) Len() int { return s.cache.Len() }

func newStore(policy domain.CachePolicy, capacity int) (store, error) {
	switch policy {
	case domain.CachePolicyLRU:
		if capacity <= 0 {
			// lru rejects a zero size; an empty fill store caches nothing.
			return newFillStore(0), nil
		}
		return newLRUStore(capacity)
	case domain.CachePolicyFill, "":
		return newFillStore(capacity), nil
	default:
		return nil, fmt.Errorf("unknown cache policy %q", policy)
	}
}
