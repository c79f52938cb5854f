package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/localdocs/internal/domain"
	"github.com/kailas-cloud/localdocs/internal/domain/search/request"
	"github.com/kailas-cloud/localdocs/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/localdocs/internal/usecase/health"
)

// --- Mocks ---

type mockSearcher struct {
	results []result.Result
	err     error
	doc     result.Result
	found   bool
	info    domain.CollectionInfo
	panics  bool

	lastQuery   string
	lastOpts    request.Options
	lastFilters map[string]any
	lastID      string
}

func (m *mockSearcher) run(ctx context.Context, query string, opts request.Options) ([]result.Result, error) {
	if m.panics {
		panic("boom")
	}
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	domain.UsageFromContext(ctx).Record(domain.EmbeddingResult{TotalTokens: 5, Cached: true})
	return m.results, nil
}

func (m *mockSearcher) Semantic(ctx context.Context, query string, opts request.Options) ([]result.Result, error) {
	return m.run(ctx, query, opts)
}

func (m *mockSearcher) Hybrid(ctx context.Context, query string, opts request.Options) ([]result.Result, error) {
	return m.run(ctx, query, opts)
}

func (m *mockSearcher) Filtered(
	ctx context.Context, query string, filters map[string]any, opts request.Options,
) ([]result.Result, error) {
	m.lastFilters = filters
	return m.run(ctx, query, opts)
}

func (m *mockSearcher) Document(_ context.Context, id string) (result.Result, bool, error) {
	m.lastID = id
	return m.doc, m.found, m.err
}

func (m *mockSearcher) CollectionInfo(_ context.Context) domain.CollectionInfo {
	return m.info
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// --- Helpers ---

func newTestRouter(s *mockSearcher, h *mockHealth, keys ...string) http.Handler {
	if h == nil {
		h = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{}}}
	}
	return NewRouter(NewServer(s, h, nil), keys, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body=%q)", err, rr.Body.String())
	}
	return v
}

func sampleResults() []result.Result {
	tc := 12
	return []result.Result{
		result.New("a", "a.md", "alpha", 0.9, []float32{1, 0}, 0, result.Positions{TokenCount: &tc}),
		result.New("b", "b.md", "beta", 0.7, nil, 2, result.Positions{}),
	}
}

// --- Tests ---

func TestSemanticSearch_OK(t *testing.T) {
	s := &mockSearcher{results: sampleResults()}
	rr := do(t, newTestRouter(s, nil), "POST", "/v1/search/semantic", `{"query":"alpha","limit":2,"min_score":0}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decode[SearchResponse](t, rr)
	if resp.SearchType != "semantic" || resp.TotalResults != 2 || resp.Query != "alpha" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Results[0].Score == nil || *resp.Results[0].Score != 0.9 {
		t.Errorf("score missing: %+v", resp.Results[0])
	}
	if resp.Results[0].TokenCount == nil || *resp.Results[0].TokenCount != 12 {
		t.Errorf("token count missing: %+v", resp.Results[0])
	}
	if resp.Results[0].Embedding != nil {
		t.Error("search responses must not carry embeddings")
	}
	if s.lastOpts.Limit == nil || *s.lastOpts.Limit != 2 {
		t.Errorf("limit not forwarded: %+v", s.lastOpts)
	}
	if s.lastOpts.MinScore == nil || *s.lastOpts.MinScore != 0 {
		t.Errorf("explicit zero min_score not forwarded: %+v", s.lastOpts)
	}
	if rr.Header().Get("X-Embedding-Tokens") != "5" || rr.Header().Get("X-Embedding-Cached") != "true" {
		t.Errorf("embedding headers = %v", rr.Header())
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestHybridSearch_ForwardsTuning(t *testing.T) {
	s := &mockSearcher{results: sampleResults()}
	rr := do(t, newTestRouter(s, nil), "POST", "/v1/search/hybrid",
		`{"query":"database connection","semantic_weight":0.5,"mmr_lambda":0.4,"keyword_boost":2}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	resp := decode[SearchResponse](t, rr)
	if resp.SemanticWeight == nil || *resp.SemanticWeight != 0.5 {
		t.Errorf("semantic_weight not echoed: %+v", resp)
	}
	o := s.lastOpts
	if o.SemanticWeight == nil || o.MMRLambda == nil || o.KeywordBoost == nil ||
		*o.MMRLambda != 0.4 || *o.KeywordBoost != 2 {
		t.Errorf("options not forwarded: %+v", o)
	}
}

func TestFilterSearch_DecodesFilter(t *testing.T) {
	s := &mockSearcher{results: sampleResults()[:1]}
	rr := do(t, newTestRouter(s, nil), "POST", "/v1/search/filter",
		`{"query":"alpha","filter":{"filename":"a.md","location":3,"draft":false}}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if s.lastFilters["filename"] != "a.md" {
		t.Errorf("filename filter = %v", s.lastFilters["filename"])
	}
	if n, ok := s.lastFilters["location"].(json.Number); !ok || n.String() != "3" {
		t.Errorf("location filter = %#v, want json.Number", s.lastFilters["location"])
	}
	if s.lastFilters["draft"] != false {
		t.Errorf("draft filter = %v", s.lastFilters["draft"])
	}
	resp := decode[SearchResponse](t, rr)
	if resp.SearchType != "filtered" || resp.Filter["filename"] != "a.md" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSearch_MalformedBody(t *testing.T) {
	rr := do(t, newTestRouter(&mockSearcher{}, nil), "POST", "/v1/search/semantic", `{"query":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeBadRequest {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
		hidden     string
	}{
		{"invalid argument", fmt.Errorf("%w: query is required", domain.ErrInvalidArgument),
			http.StatusBadRequest, ErrorCodeValidationFailed, ""},
		{"provider", fmt.Errorf("embed query: %w: dial tcp 10.0.0.7:11434", domain.ErrProviderUnavailable),
			http.StatusBadGateway, ErrorCodeEmbeddingProvider, "10.0.0.7"},
		{"store", fmt.Errorf("%w: FT.SEARCH localdocs:idx: READONLY", domain.ErrStoreUnavailable),
			http.StatusServiceUnavailable, ErrorCodeStoreUnavailable, "READONLY"},
		{"unknown", errors.New("secret internals"),
			http.StatusInternalServerError, ErrorCodeInternal, "secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, newTestRouter(&mockSearcher{err: tt.err}, nil), "POST", "/v1/search/hybrid", `{"query":"q"}`)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			resp := decode[ErrorResponse](t, rr)
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
			if tt.hidden != "" && strings.Contains(resp.Message, tt.hidden) {
				t.Errorf("message leaks internals: %q", resp.Message)
			}
		})
	}
}

func TestGetDocument(t *testing.T) {
	s := &mockSearcher{doc: sampleResults()[0], found: true}
	h := newTestRouter(s, nil)

	rr := do(t, h, "GET", "/v1/documents/a", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	item := decode[ResultItem](t, rr)
	if item.ID != "a" || item.Filename != "a.md" || item.Score != nil || item.Embedding != nil {
		t.Errorf("unexpected document: %+v", item)
	}
	if s.lastID != "a" {
		t.Errorf("id = %q", s.lastID)
	}

	rr = do(t, h, "GET", "/v1/documents/a?include_embedding=true", "")
	if item := decode[ResultItem](t, rr); len(item.Embedding) != 2 {
		t.Errorf("embedding = %v", item.Embedding)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	rr := do(t, newTestRouter(&mockSearcher{}, nil), "GET", "/v1/documents/nonexistent-id", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeNotFound {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestGetCollection_ErrorPayload(t *testing.T) {
	s := &mockSearcher{info: domain.CollectionInfo{Name: "docs", Status: "unknown", Error: "store down"}}
	rr := do(t, newTestRouter(s, nil), "GET", "/v1/collection", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	info := decode[domain.CollectionInfo](t, rr)
	if info.Error != "store down" || info.Name != "docs" {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestHealthCheck(t *testing.T) {
	ok := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckOK},
	}}
	rr := do(t, newTestRouter(&mockSearcher{}, ok), "GET", "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[HealthResponse](t, rr); resp.Status != "ok" || resp.Checks["store"] != "ok" {
		t.Errorf("unexpected health: %+v", resp)
	}

	degraded := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckError},
	}}
	rr = do(t, newTestRouter(&mockSearcher{}, degraded), "GET", "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d", rr.Code)
	}
}

func TestRouter_PanicRecovered(t *testing.T) {
	rr := do(t, newTestRouter(&mockSearcher{panics: true}, nil), "POST", "/v1/search/semantic", `{"query":"q"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if resp := decode[ErrorResponse](t, rr); resp.Code != ErrorCodeInternal {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	rr := do(t, newTestRouter(&mockSearcher{}, nil), "GET", "/v1/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestRouter_Auth(t *testing.T) {
	h := newTestRouter(&mockSearcher{info: domain.CollectionInfo{Name: "docs"}}, nil, "secret")

	if rr := do(t, h, "GET", "/v1/collection", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d", rr.Code)
	}
	if rr := do(t, h, "GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("health must stay public, status = %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "/v1/collection", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("authenticated status = %d", rr.Code)
	}
}
