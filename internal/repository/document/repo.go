package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/localdocs/internal/db"
	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
	"github.com/kailas-cloud/localdocs/internal/repository/hashdoc"
)

// store is the consumer interface for documents (ISP).
type store interface {
	SearchTag(ctx context.Context, q *db.TagQuery) (*db.SearchResult, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements usecase/search.DocumentRepository.
type Repo struct {
	store  store
	layout hashdoc.Layout
}

// New creates a document repository.
func New(s store, layout hashdoc.Layout) *Repo {
	return &Repo{store: s, layout: layout}
}

// Get returns a passage by id, or domain.ErrNotFound.
//
// Search results report the payload id, which ingestion may set independently
// of the key, so the indexed id tag is matched first. Passages without a
// payload id (or a collection without an index) fall back to the key.
func (r *Repo) Get(ctx context.Context, id string) (result.Result, error) {
	res, err := r.store.SearchTag(ctx, &db.TagQuery{
		IndexName:    r.layout.IndexName(),
		Field:        hashdoc.FieldID,
		Value:        id,
		Limit:        1,
		ReturnFields: hashdoc.PayloadFields,
	})
	switch {
	case err == nil && len(res.Entries) > 0:
		e := res.Entries[0]
		return r.layout.ToResult(e.Key, e.Fields, 0), nil
	case err != nil && !errors.Is(err, db.ErrIndexNotFound):
		return result.Result{}, fmt.Errorf("lookup id %q: %w", id, err)
	}

	key := r.layout.DocKey(id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return result.Result{}, domain.ErrNotFound
		}
		return result.Result{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return r.layout.ToResult(key, fields, 0), nil
}
