package db

import "github.com/kailas-cloud/localdocs/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	EF           int     // HNSW EF_RUNTIME; 0 keeps the index default
	MinScore     float64 // entries with a lower similarity are dropped
	ReturnFields []string
}

// TagQuery matches documents whose TAG field equals Value exactly.
type TagQuery struct {
	IndexName    string
	Field        string
	Value        string
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
