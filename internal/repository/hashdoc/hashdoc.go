// Package hashdoc describes how passages are laid out in the store: one HASH per
// passage under <prefix><collection>:<id>, indexed by <prefix><collection>:idx.
package hashdoc

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/localdocs/internal/db"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// Hash field names written by the ingestion pipeline.
const (
	FieldID         = "id"
	FieldFilename   = "filename"
	FieldText       = "text"
	FieldLocation   = "location"
	FieldTokenCount = "token_count"
	FieldStartIndex = "start_index"
	FieldEndIndex   = "end_index"
	FieldVector     = "vector"
)

// PayloadFields are the fields returned by similarity queries.
var PayloadFields = []string{
	FieldID, FieldFilename, FieldText, FieldLocation,
	FieldTokenCount, FieldStartIndex, FieldEndIndex, FieldVector,
}

// Layout maps a collection onto key and index names.
type Layout struct {
	Prefix     string
	Collection string
}

// IndexName returns the FT index name of the collection.
func (l Layout) IndexName() string {
	return l.Prefix + l.Collection + ":idx"
}

// DocKey returns the hash key of a passage.
func (l Layout) DocKey(id string) string {
	return l.Prefix + l.Collection + ":" + id
}

// DocID extracts the passage id from a hash key.
func (l Layout) DocID(key string) string {
	return strings.TrimPrefix(key, l.Prefix+l.Collection+":")
}

// ToResult converts hash fields into a search result.
// The id field wins over the key suffix when both are present.
func (l Layout) ToResult(key string, fields map[string]string, score float64) result.Result {
	id := fields[FieldID]
	if id == "" {
		id = l.DocID(key)
	}

	var vector []float32
	if blob := fields[FieldVector]; blob != "" {
		vector = db.DecodeVector(blob)
	}

	location, _ := strconv.Atoi(fields[FieldLocation])

	return result.New(
		id, fields[FieldFilename], fields[FieldText], score,
		vector, location,
		result.Positions{
			TokenCount: optionalInt(fields, FieldTokenCount),
			StartIndex: optionalInt(fields, FieldStartIndex),
			EndIndex:   optionalInt(fields, FieldEndIndex),
		},
	)
}

func optionalInt(fields map[string]string, name string) *int {
	v, ok := fields[name]
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
