package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/localdocs/internal/db"
	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/repository/hashdoc"
)

// store is the consumer interface for collection introspection (ISP).
type store interface {
	IndexInfo(ctx context.Context, name string) (*db.IndexInfo, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/search.CollectionRepository.
type Repo struct {
	store  store
	layout hashdoc.Layout
}

// New creates a collection repository.
func New(s store, layout hashdoc.Layout) *Repo {
	return &Repo{store: s, layout: layout}
}

// Info reads index statistics for the collection.
func (r *Repo) Info(ctx context.Context) (domain.CollectionInfo, error) {
	info, err := r.store.IndexInfo(ctx, r.layout.IndexName())
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return domain.CollectionInfo{}, fmt.Errorf("collection %s: %w", r.layout.Collection, domain.ErrNotFound)
		}
		return domain.CollectionInfo{}, fmt.Errorf("index info %s: %w", r.layout.Collection, err)
	}

	return domain.CollectionInfo{
		Name:        r.layout.Collection,
		Status:      status(info),
		PointCount:  info.NumDocs,
		VectorCount: info.NumDocs,
		VectorSize:  info.VectorDim,
	}, nil
}

// Exists reports whether the collection index is present.
func (r *Repo) Exists(ctx context.Context) (bool, error) {
	ok, err := r.store.IndexExists(ctx, r.layout.IndexName())
	if err != nil {
		return false, fmt.Errorf("index exists %s: %w", r.layout.Collection, err)
	}
	return ok, nil
}

// status maps index state onto green (ready) / yellow (indexing).
func status(info *db.IndexInfo) string {
	if info.Indexing {
		return domain.CollectionStatusYellow
	}
	switch info.State {
	case "", "ready":
		return domain.CollectionStatusGreen
	default:
		return domain.CollectionStatusYellow
	}
}
