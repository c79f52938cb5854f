package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/mode"
	"github.com/kailas-cloud/localdocs/internal/domain/search/request"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
	"github.com/kailas-cloud/localdocs/internal/logger"
	healthuc "github.com/kailas-cloud/localdocs/internal/usecase/health"
)

// maxBodyBytes bounds request bodies; queries are capped far below this.
const maxBodyBytes = 1 << 20

// Searcher is the retrieval facade consumed by the HTTP layer.
type Searcher interface {
	Semantic(ctx context.Context, query string, opts request.Options) ([]result.Result, error)
	Hybrid(ctx context.Context, query string, opts request.Options) ([]result.Result, error)
	Filtered(ctx context.Context, query string, filters map[string]any, opts request.Options) ([]result.Result, error)
	Document(ctx context.Context, id string) (result.Result, bool, error)
	CollectionInfo(ctx context.Context) domain.CollectionInfo
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the localdocs HTTP API.
type Server struct {
	search        Searcher
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		search: search,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeValidationFailed, ""),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound, "not found"),
		sentinelHandler(domain.ErrProviderUnavailable, http.StatusBadGateway, ErrorCodeEmbeddingProvider,
			domain.ErrProviderUnavailable.Error()),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, ErrorCodeStoreUnavailable,
			domain.ErrStoreUnavailable.Error()),
	}
	return s
}

// Routes registers the API endpoints on r.
func (s *Server) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Post("/search/semantic", s.SemanticSearch)
		r.Post("/search/hybrid", s.HybridSearch)
		r.Post("/search/filter", s.FilterSearch)
		r.Get("/documents/{id}", s.GetDocument)
		r.Get("/collection", s.GetCollection)
	})
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SemanticSearch handles POST /v1/search/semantic.
func (s *Server) SemanticSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Semantic(ctx, req.Query, req.options())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:        req.Query,
		SearchType:   string(mode.Semantic),
		Results:      NewResultItems(results),
		TotalResults: len(results),
	})
}

// HybridSearch handles POST /v1/search/hybrid.
func (s *Server) HybridSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Hybrid(ctx, req.Query, req.options())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:          req.Query,
		SearchType:     string(mode.Hybrid),
		Results:        NewResultItems(results),
		TotalResults:   len(results),
		SemanticWeight: req.SemanticWeight,
	})
}

// FilterSearch handles POST /v1/search/filter.
func (s *Server) FilterSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeSearch(w, r)
	if !ok {
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.search.Filtered(ctx, req.Query, req.Filter, req.options())
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{
		Query:        req.Query,
		SearchType:   string(mode.Filtered),
		Results:      NewResultItems(results),
		TotalResults: len(results),
		Filter:       req.Filter,
	})
}

// GetDocument handles GET /v1/documents/{id}.
// ?include_embedding=true adds the stored vector.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, found, err := s.search.Document(r.Context(), id)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "document not found")
		return
	}

	withEmbedding, _ := strconv.ParseBool(r.URL.Query().Get("include_embedding"))
	writeJSON(w, http.StatusOK, NewResultItem(&doc, false, withEmbedding))
}

// GetCollection handles GET /v1/collection. Store failures are reported in the body.
func (s *Server) GetCollection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.search.CollectionInfo(r.Context()))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) decodeSearch(w http.ResponseWriter, r *http.Request) (SearchRequest, bool) {
	var req SearchRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	// Filter numbers stay json.Number so integers keep their exact text.
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

func (req SearchRequest) options() request.Options {
	return request.Options{
		Limit:          req.Limit,
		MinScore:       req.MinScore,
		SemanticWeight: req.SemanticWeight,
		MMRLambda:      req.MMRLambda,
		KeywordBoost:   req.KeywordBoost,
	}
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage == nil || !usage.Used {
		return
	}
	w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	w.Header().Set("X-Embedding-Cached", strconv.FormatBool(usage.Cached))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler matches a single sentinel error. An empty msg exposes the
// error text, which is only safe for validation errors built from caller input.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		text := msg
		if text == "" {
			text = err.Error()
		}
		writeError(w, status, code, text)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContextOr(ctx, s.logger.With(zap.String("request_id", middleware.GetReqID(ctx))))
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}
