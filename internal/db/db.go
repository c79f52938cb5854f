package db

import (
	"context"
	"time"
)

// Store is the database facade combining all sub-interfaces.
// Consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	HashStore
	Searcher
	IndexInspector
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides read access to hash documents.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Searcher provides vector similarity search and exact tag lookup over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchTag(ctx context.Context, q *TagQuery) (*SearchResult, error)
}

// IndexInspector provides read-only FT index introspection.
type IndexInspector interface {
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (*IndexInfo, error)
}
