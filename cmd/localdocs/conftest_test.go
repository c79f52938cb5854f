package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kailas-cloud/localdocs/internal/config"
	"github.com/kailas-cloud/localdocs/internal/domain/search/request"
	"github.com/kailas-cloud/localdocs/pkg/localdocs"
)

type fakeSearcher struct {
	results []localdocs.Result
	doc     localdocs.Result
	found   bool
	info    localdocs.CollectionInfo
	err     error

	lastMethod  string
	lastQuery   string
	lastOpts    request.Options
	lastFilters map[string]any
	closed      bool
}

func (f *fakeSearcher) record(method, query string, opts []localdocs.SearchOption) {
	f.lastMethod = method
	f.lastQuery = query
	f.lastOpts = request.Options{}
	for _, o := range opts {
		o(&f.lastOpts)
	}
}

func (f *fakeSearcher) Semantic(_ context.Context, q string, opts ...localdocs.SearchOption) ([]localdocs.Result, error) {
	f.record("semantic", q, opts)
	return f.results, f.err
}

func (f *fakeSearcher) Hybrid(_ context.Context, q string, opts ...localdocs.SearchOption) ([]localdocs.Result, error) {
	f.record("hybrid", q, opts)
	return f.results, f.err
}

func (f *fakeSearcher) Filtered(
	_ context.Context, q string, filters map[string]any, opts ...localdocs.SearchOption,
) ([]localdocs.Result, error) {
	f.record("filtered", q, opts)
	f.lastFilters = filters
	return f.results, f.err
}

func (f *fakeSearcher) Document(_ context.Context, id string) (localdocs.Result, bool, error) {
	f.lastMethod = "document"
	f.lastQuery = id
	return f.doc, f.found, f.err
}

func (f *fakeSearcher) CollectionInfo(_ context.Context) localdocs.CollectionInfo {
	f.lastMethod = "info"
	return f.info
}

func (f *fakeSearcher) Close() { f.closed = true }

// harness runs the root command against a fake client and a temp config file.
type harness struct {
	fake    *fakeSearcher
	opened  bool
	cfg     config.Config
	cfgPath string
}

func newHarness(t *testing.T, fake *fakeSearcher) *harness {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.yaml")
	body := "store:\n  collection: docs\nsearch:\n  hybrid_weight: 0.7\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &harness{fake: fake, cfgPath: path}
}

func (h *harness) run(args ...string) (string, error) {
	a := &app{open: func(_ context.Context, cfg config.Config) (searcher, error) {
		h.opened = true
		h.cfg = cfg
		return h.fake, nil
	}}
	cmd := NewRootCmd("test", a)
	cmd.SetArgs(append([]string{"--config", h.cfgPath}, args...))

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func intPtr(i int) *int { return &i }
