package localdocs

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/request"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
)

// searchUseCase is the internal interface for retrieval, replaced in tests.
type searchUseCase interface {
	Semantic(ctx context.Context, query string, opts request.Options) ([]result.Result, error)
	Hybrid(ctx context.Context, query string, opts request.Options) ([]result.Result, error)
	Filtered(ctx context.Context, query string, filters map[string]any, opts request.Options) ([]result.Result, error)
	Document(ctx context.Context, id string) (result.Result, bool, error)
	CollectionInfo(ctx context.Context) domain.CollectionInfo
}

// Result is one ranked passage. Score only orders results within one call.
type Result struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	Score      float64   `json:"score"`
	Location   int       `json:"location"`
	TokenCount *int      `json:"token_count"`
	StartIndex *int      `json:"start_index"`
	EndIndex   *int      `json:"end_index"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

// CollectionInfo describes the searchable collection.
// Error is set instead of the counters when the store could not be inspected.
type CollectionInfo struct {
	Name        string `json:"name"`
	Status      string `json:"status,omitempty"`
	PointCount  int64  `json:"points_count"`
	VectorCount int64  `json:"vectors_count"`
	VectorSize  int    `json:"vector_size,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SearchOption overrides one configured default for a single call.
type SearchOption func(*request.Options)

// Limit sets the number of results to return (1-50).
func Limit(n int) SearchOption {
	return func(o *request.Options) { o.Limit = &n }
}

// MinScore sets the similarity threshold. Zero is honoured.
func MinScore(v float64) SearchOption {
	return func(o *request.Options) { o.MinScore = &v }
}

// SemanticWeight sets the hybrid fusion weight (0-1).
func SemanticWeight(v float64) SearchOption {
	return func(o *request.Options) { o.SemanticWeight = &v }
}

// MMRLambda sets the relevance/diversity tradeoff (0-1).
func MMRLambda(v float64) SearchOption {
	return func(o *request.Options) { o.MMRLambda = &v }
}

// KeywordBoost sets the multiplier for strong keyword matches (>= 1).
func KeywordBoost(v float64) SearchOption {
	return func(o *request.Options) { o.KeywordBoost = &v }
}

// Semantic returns passages ordered by raw vector similarity.
func (c *Client) Semantic(ctx context.Context, query string, opts ...SearchOption) (res []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opSemantic, start, len(res), err) }()

	results, err := c.search.Semantic(ctx, query, buildOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return toResults(results), nil
}

// Hybrid fuses similarity with keyword overlap and diversifies the result list.
func (c *Client) Hybrid(ctx context.Context, query string, opts ...SearchOption) (res []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opHybrid, start, len(res), err) }()

	results, err := c.search.Hybrid(ctx, query, buildOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("hybrid search: %w", err)
	}
	return toResults(results), nil
}

// Filtered returns passages matching every filter exactly, ordered by similarity.
// Filter values may be strings, integers or booleans.
func (c *Client) Filtered(
	ctx context.Context, query string, filters map[string]any, opts ...SearchOption,
) (res []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe(opFiltered, start, len(res), err) }()

	results, err := c.search.Filtered(ctx, query, filters, buildOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("filtered search: %w", err)
	}
	return toResults(results), nil
}

// Document fetches one passage by id, including its stored vector.
// A missing id is reported as found == false with a nil error.
func (c *Client) Document(ctx context.Context, id string) (doc Result, found bool, err error) {
	start := time.Now()

	r, found, err := c.search.Document(ctx, id)
	if err != nil {
		err = fmt.Errorf("get document: %w", err)
		c.obs.observe(opDocument, start, noResults, err)
		return Result{}, false, err
	}
	if !found {
		c.obs.notFound(start)
		return Result{}, false, nil
	}
	c.obs.observe(opDocument, start, 1, nil)
	return toResult(&r), true, nil
}

// CollectionInfo describes the collection. It never fails: store errors are
// reported in the Error field.
func (c *Client) CollectionInfo(ctx context.Context) CollectionInfo {
	start := time.Now()
	info := c.search.CollectionInfo(ctx)

	var err error
	if info.Error != "" {
		err = fmt.Errorf("%w: %s", ErrStoreUnavailable, info.Error)
	}
	c.obs.observe(opCollectionInfo, start, noResults, err)

	return CollectionInfo{
		Name:        info.Name,
		Status:      info.Status,
		PointCount:  info.PointCount,
		VectorCount: info.VectorCount,
		VectorSize:  info.VectorSize,
		Error:       info.Error,
	}
}

// Collection returns the configured collection name.
func (c *Client) Collection() string { return c.cfg.Collection }

func buildOptions(opts []SearchOption) request.Options {
	var o request.Options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

func toResults(results []result.Result) []Result {
	out := make([]Result, len(results))
	for i := range results {
		out[i] = toResult(&results[i])
	}
	return out
}

func toResult(r *result.Result) Result {
	return Result{
		ID:         r.ID(),
		Filename:   r.Filename(),
		Text:       r.Text(),
		Score:      r.Score(),
		Location:   r.Location(),
		TokenCount: r.TokenCount(),
		StartIndex: r.StartIndex(),
		EndIndex:   r.EndIndex(),
		Embedding:  r.Embedding(),
	}
}
