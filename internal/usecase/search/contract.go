package search

import (
	"context"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/filter"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// Repository defines the storage contract for similarity queries.
// Results come back ordered by descending similarity; entries below minScore are dropped.
type Repository interface {
	Nearest(
		ctx context.Context, vector []float32, k int,
		minScore float64, filters filter.Expression,
	) ([]result.Result, error)
}

// DocumentRepository looks passages up by id. Missing ids yield domain.ErrNotFound.
type DocumentRepository interface {
	Get(ctx context.Context, id string) (result.Result, error)
}

// CollectionRepository reports collection statistics.
type CollectionRepository interface {
	Info(ctx context.Context) (domain.CollectionInfo, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
