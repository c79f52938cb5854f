package chi

import (
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeEmbeddingProvider ErrorCode = "embedding_provider_error"
	ErrorCodeStoreUnavailable  ErrorCode = "store_unavailable"
	ErrorCodeInternal          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of every POST /v1/search/* call.
// Filter is only read by the filter endpoint.
type SearchRequest struct {
	Query          string         `json:"query"`
	Limit          *int           `json:"limit,omitempty"`
	MinScore       *float64       `json:"min_score,omitempty"`
	SemanticWeight *float64       `json:"semantic_weight,omitempty"`
	MMRLambda      *float64       `json:"mmr_lambda,omitempty"`
	KeywordBoost   *float64       `json:"keyword_boost,omitempty"`
	Filter         map[string]any `json:"filter,omitempty"`
}

// ResultItem is one passage in a response.
type ResultItem struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	Score      *float64  `json:"score,omitempty"`
	Location   int       `json:"location"`
	TokenCount *int      `json:"token_count"`
	StartIndex *int      `json:"start_index"`
	EndIndex   *int      `json:"end_index"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// SearchResponse wraps the ranked passages of one search call.
type SearchResponse struct {
	Query          string         `json:"query"`
	SearchType     string         `json:"search_type"`
	Results        []ResultItem   `json:"results"`
	TotalResults   int            `json:"total_results"`
	SemanticWeight *float64       `json:"semantic_weight,omitempty"`
	Filter         map[string]any `json:"metadata_filter,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// NewResultItem converts a search result. withScore is false for point lookups,
// whose score carries no ranking meaning; withEmbedding adds the stored vector.
func NewResultItem(r *result.Result, withScore, withEmbedding bool) ResultItem {
	item := ResultItem{
		ID:         r.ID(),
		Filename:   r.Filename(),
		Text:       r.Text(),
		Location:   r.Location(),
		TokenCount: r.TokenCount(),
		StartIndex: r.StartIndex(),
		EndIndex:   r.EndIndex(),
	}
	if withScore {
		score := r.Score()
		item.Score = &score
	}
	if withEmbedding && len(r.Embedding()) > 0 {
		item.Embedding = r.Embedding()
	}
	return item
}

// NewResultItems converts a ranked result list.
func NewResultItems(results []result.Result) []ResultItem {
	items := make([]ResultItem, len(results))
	for i := range results {
		items[i] = NewResultItem(&results[i], true, false)
	}
	return items
}
