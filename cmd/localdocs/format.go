package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/kailas-cloud/localdocs/pkg/localdocs"
)

const (
	snippetLength  = 180
	documentLength = 240
)

// searchPayload is the JSON shape of one search command.
type searchPayload struct {
	Query          string             `json:"query"`
	SearchType     string             `json:"search_type"`
	Results        []localdocs.Result `json:"results"`
	TotalResults   int                `json:"total_results"`
	SemanticWeight *float64           `json:"semantic_weight,omitempty"`
	MetadataFilter map[string]any     `json:"metadata_filter,omitempty"`
}

func newSearchPayload(query, searchType string, results []localdocs.Result) searchPayload {
	out := make([]localdocs.Result, len(results))
	for i, r := range results {
		r.Embedding = nil
		out[i] = r
	}
	return searchPayload{
		Query:        query,
		SearchType:   searchType,
		Results:      out,
		TotalResults: len(out),
	}
}

// documentView is the JSON shape of a fetched document. Point lookups carry no score.
type documentView struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Text       string    `json:"text"`
	Location   int       `json:"location"`
	TokenCount *int      `json:"token_count"`
	StartIndex *int      `json:"start_index"`
	EndIndex   *int      `json:"end_index"`
	Embedding  []float32 `json:"embedding,omitempty"`
}

func newDocumentView(r *localdocs.Result, withEmbedding bool) documentView {
	v := documentView{
		ID:         r.ID,
		Filename:   r.Filename,
		Text:       r.Text,
		Location:   r.Location,
		TokenCount: r.TokenCount,
		StartIndex: r.StartIndex,
		EndIndex:   r.EndIndex,
	}
	if withEmbedding {
		v.Embedding = r.Embedding
	}
	return v
}

// truncate collapses whitespace and cuts s to limit runes, ending in "...".
func truncate(s string, limit int) string {
	normalized := strings.Join(strings.Fields(s), " ")
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func formatSearchResults(p *searchPayload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s results for query: %s (showing %d)", p.SearchType, p.Query, len(p.Results))
	for i, r := range p.Results {
		fmt.Fprintf(&b, "\n%d. [%.3f] %s @ %d (id=%s)", i+1, r.Score, r.Filename, r.Location, r.ID)
		if snippet := truncate(r.Text, snippetLength); snippet != "" {
			fmt.Fprintf(&b, "\n    %s", snippet)
		}
	}
	return b.String()
}

func formatDocument(d *documentView) string {
	lines := []string{
		"Document ID: " + d.ID,
		"Filename: " + d.Filename,
		fmt.Sprintf("Location: %d", d.Location),
	}
	if d.TokenCount != nil {
		lines = append(lines, fmt.Sprintf("Tokens: %d", *d.TokenCount))
	}
	if snippet := truncate(d.Text, documentLength); snippet != "" {
		lines = append(lines, "Content: "+snippet)
	}
	return strings.Join(lines, "\n")
}

// formatCollection lists the JSON fields of info in key order.
func formatCollection(info localdocs.CollectionInfo) (string, error) {
	raw, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("encode collection info: %w", err)
	}
	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return "", fmt.Errorf("decode collection info: %w", err)
	}

	lines := []string{"Collection info:"}
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		lines = append(lines, fmt.Sprintf("- %s: %v", k, fields[k]))
	}
	return strings.Join(lines, "\n"), nil
}

// parseMetadataFilter decodes the --filter JSON object. Numbers keep their exact text.
func parseMetadataFilter(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var parsed any
	if err := dec.Decode(&parsed); err != nil {
		return nil, fmt.Errorf("invalid metadata filter JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("invalid metadata filter JSON: trailing data")
	}
	m, ok := parsed.(map[string]any)
	if !ok {
		return nil, errors.New("metadata filter must be a JSON object")
	}
	return m, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v) //nolint:wrapcheck // terminal output
}
