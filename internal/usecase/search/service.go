package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/filter"
	"github.com/kailas-cloud/localdocs/internal/domain/search/mode"
	"github.com/kailas-cloud/localdocs/internal/domain/search/request"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
	"github.com/kailas-cloud/localdocs/internal/metrics"
)

// candidateFactor is how many more candidates than requested are fetched before trimming.
const candidateFactor = 2

// Service handles passage retrieval: semantic, hybrid and metadata-filtered search,
// plus document lookup and collection introspection.
type Service struct {
	cfg       domain.SearchConfig
	embed     Embedder
	retriever retriever
	docs      DocumentRepository
	colls     CollectionRepository
}

// New creates a search service. cfg is copied and never changes afterwards.
func New(
	cfg domain.SearchConfig, embed Embedder, repo Repository,
	docs DocumentRepository, colls CollectionRepository,
) *Service {
	return &Service{
		cfg:       cfg,
		embed:     embed,
		retriever: retriever{repo: repo, defaultMinScore: cfg.MinScore},
		docs:      docs,
		colls:     colls,
	}
}

// Config returns the configuration snapshot the service was built with.
func (s *Service) Config() domain.SearchConfig { return s.cfg }

// Semantic returns passages ordered by raw similarity.
func (s *Service) Semantic(
	ctx context.Context, query string, opts request.Options,
) (results []result.Result, err error) {
	defer s.observe(mode.Semantic, time.Now(), &results, &err)

	req, err := s.newRequest(query, mode.Semantic, filter.Expression{}, opts)
	if err != nil {
		return nil, err
	}
	return s.semantic(ctx, &req, req.Limit())
}

// Hybrid blends similarity with keyword matching, then diversifies with MMR.
func (s *Service) Hybrid(
	ctx context.Context, query string, opts request.Options,
) (results []result.Result, err error) {
	defer s.observe(mode.Hybrid, time.Now(), &results, &err)

	req, err := s.newRequest(query, mode.Hybrid, filter.Expression{}, opts)
	if err != nil {
		return nil, err
	}

	candidates, err := s.semantic(ctx, &req, req.Limit()*candidateFactor)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []result.Result{}, nil
	}

	terms := extractTerms(req.Query())
	kw := keywordScores(candidates, terms, req.Query())
	fused := fuse(candidates, kw, req.SemanticWeight(), req.KeywordBoost())

	return rerank(fused, req.Limit(), req.MMRLambda()), nil
}

// Filtered returns passages whose payload equals every entry of filters,
// in raw similarity order. Nested objects, arrays and nulls are rejected.
func (s *Service) Filtered(
	ctx context.Context, query string, filters map[string]any, opts request.Options,
) (results []result.Result, err error) {
	defer s.observe(mode.Filtered, time.Now(), &results, &err)

	expr, err := filter.FromMap(filters)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	req, err := s.newRequest(query, mode.Filtered, expr, opts)
	if err != nil {
		return nil, err
	}

	vector, err := s.embedQuery(ctx, req.Query())
	if err != nil {
		return nil, err
	}
	results, err = s.retriever.query(ctx, vector, req.Limit(), req.MinScore(), req.Filters())
	if err != nil {
		return nil, err
	}
	return truncate(results, req.Limit()), nil
}

// Document looks a passage up by id. A missing passage is reported as ok=false, not an error.
func (s *Service) Document(ctx context.Context, id string) (result.Result, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return result.Result{}, false, fmt.Errorf("%w: document id is required", domain.ErrInvalidArgument)
	}

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return result.Result{}, false, nil
		}
		return result.Result{}, false, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return doc, true, nil
}

// CollectionInfo reports collection statistics. Store failures are returned in the
// Error field instead of as an error.
func (s *Service) CollectionInfo(ctx context.Context) domain.CollectionInfo {
	info, err := s.colls.Info(ctx)
	if err != nil {
		return domain.CollectionInfo{
			Name:   s.cfg.Collection,
			Status: domain.CollectionStatusUnknown,
			Error:  err.Error(),
		}
	}
	if info.Name == "" {
		info.Name = s.cfg.Collection
	}
	return info
}

// semantic embeds the query, fetches twice the limit and trims to limit.
func (s *Service) semantic(ctx context.Context, req *request.Request, limit int) ([]result.Result, error) {
	vector, err := s.embedQuery(ctx, req.Query())
	if err != nil {
		return nil, err
	}

	results, err := s.retriever.query(ctx, vector, limit*candidateFactor, req.MinScore(), filter.Expression{})
	if err != nil {
		return nil, err
	}
	return truncate(results, limit), nil
}

func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	res, err := s.embed.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrProviderUnavailable, err)
	}
	return res.Embedding, nil
}

func (s *Service) newRequest(
	query string, m mode.Mode, filters filter.Expression, opts request.Options,
) (request.Request, error) {
	req, err := request.New(query, m, filters, opts, s.cfg)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	return req, nil
}

func (s *Service) observe(m mode.Mode, start time.Time, results *[]result.Result, err *error) {
	metrics.SearchDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())
	metrics.SearchRequestsTotal.WithLabelValues(string(m), statusOf(*err)).Inc()
	if *err == nil {
		metrics.SearchResults.WithLabelValues(string(m)).Observe(float64(len(*results)))
	}
}

func statusOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, domain.ErrProviderUnavailable):
		return "provider_error"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_error"
	default:
		return "error"
	}
}
