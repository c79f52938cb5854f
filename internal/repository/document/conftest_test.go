package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/localdocs/internal/db"
	"github.com/kailas-cloud/localdocs/internal/repository/hashdoc"
)

// mockStore implements the consumer interface for tests.
// data is keyed by hash key; the tag lookup scans it for a matching id field.
type mockStore struct {
	data      map[string]map[string]string
	err       error
	searchErr error
	lastKey   string
	lastTag   *db.TagQuery
}

func (m *mockStore) SearchTag(_ context.Context, q *db.TagQuery) (*db.SearchResult, error) {
	m.lastTag = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	res := &db.SearchResult{}
	for key, fields := range m.data {
		if fields[q.Field] == q.Value {
			res.Total++
			res.Entries = append(res.Entries, db.SearchEntry{Key: key, Fields: fields})
		}
	}
	return res, nil
}

func (m *mockStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	m.lastKey = key
	if m.err != nil {
		return nil, m.err
	}
	fields, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return fields, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{data: make(map[string]map[string]string)}
	return New(ms, hashdoc.Layout{Prefix: "localdocs:", Collection: "docs"}), ms
}
