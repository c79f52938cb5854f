package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/filter"
	"github.com/kailas-cloud/localdocs/internal/domain/search/mode"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
	MaxLimit       = 50
)

// Options are the per-call overrides. Nil fields fall back to the SearchConfig defaults.
type Options struct {
	Limit          *int
	MinScore       *float64
	SemanticWeight *float64
	MMRLambda      *float64
	KeywordBoost   *float64
}

// Request is a validated search query with every default resolved.
type Request struct {
	query          string
	searchMode     mode.Mode
	filters        filter.Expression
	limit          int
	minScore       float64
	semanticWeight float64
	mmrLambda      float64
	keywordBoost   float64
}

// New validates the call parameters and resolves defaults from cfg.
// A limit of zero or below means the default limit.
func New(
	query string,
	m mode.Mode,
	filters filter.Expression,
	opts Options,
	cfg domain.SearchConfig,
) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("invalid search mode: %q", m)
	}

	r := Request{
		query:          query,
		searchMode:     m,
		filters:        filters,
		limit:          cfg.DefaultLimit,
		minScore:       cfg.MinScore,
		semanticWeight: cfg.SemanticWeight,
		mmrLambda:      cfg.MMRLambda,
		keywordBoost:   cfg.KeywordBoost,
	}

	if opts.Limit != nil && *opts.Limit > 0 {
		if *opts.Limit > MaxLimit {
			return Request{}, fmt.Errorf("limit must be between 1 and %d", MaxLimit)
		}
		r.limit = *opts.Limit
	}
	if opts.MinScore != nil {
		if !unit(*opts.MinScore) {
			return Request{}, fmt.Errorf("min_score must be between 0 and 1")
		}
		r.minScore = *opts.MinScore
	}
	if opts.SemanticWeight != nil {
		if !unit(*opts.SemanticWeight) {
			return Request{}, fmt.Errorf("semantic_weight must be between 0 and 1")
		}
		r.semanticWeight = *opts.SemanticWeight
	}
	if opts.MMRLambda != nil {
		if !unit(*opts.MMRLambda) {
			return Request{}, fmt.Errorf("mmr_lambda must be between 0 and 1")
		}
		r.mmrLambda = *opts.MMRLambda
	}
	if opts.KeywordBoost != nil {
		if *opts.KeywordBoost < 1 {
			return Request{}, fmt.Errorf("keyword_boost must be at least 1")
		}
		r.keywordBoost = *opts.KeywordBoost
	}
	return r, nil
}

// unit also rejects NaN.
func unit(v float64) bool { return v >= 0 && v <= 1 }

// Query returns the trimmed search query text.
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Filters returns the payload filter expression.
func (r *Request) Filters() filter.Expression { return r.filters }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// MinScore returns the minimum similarity threshold.
func (r *Request) MinScore() float64 { return r.minScore }

// SemanticWeight returns the weight of vector similarity in hybrid fusion.
func (r *Request) SemanticWeight() float64 { return r.semanticWeight }

// MMRLambda returns the relevance/diversity trade-off for reranking.
func (r *Request) MMRLambda() float64 { return r.mmrLambda }

// KeywordBoost returns the multiplier for near-exact keyword matches.
func (r *Request) KeywordBoost() float64 { return r.keywordBoost }
