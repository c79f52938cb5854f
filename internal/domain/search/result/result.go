package result

// Positions carries optional chunk position metadata.
type Positions struct {
	TokenCount *int
	StartIndex *int
	EndIndex   *int
}

// Result is a single ranked passage.
// Score is an ordering key within one result set only.
type Result struct {
	id        string
	filename  string
	text      string
	score     float64
	embedding []float32
	location  int
	positions Positions
}

// New creates a search result.
func New(
	id, filename, text string, score float64,
	embedding []float32, location int, positions Positions,
) Result {
	return Result{
		id: id, filename: filename, text: text, score: score,
		embedding: embedding, location: location, positions: positions,
	}
}

// ID returns the passage identifier.
func (r *Result) ID() string { return r.id }

// Filename returns the source file name.
func (r *Result) Filename() string { return r.filename }

// Text returns the passage text.
func (r *Result) Text() string { return r.text }

// Score returns the ranking score.
func (r *Result) Score() float64 { return r.score }

// Embedding returns the passage vector. May be empty.
func (r *Result) Embedding() []float32 { return r.embedding }

// Location returns the chunk ordinal within the source document.
func (r *Result) Location() int { return r.location }

// TokenCount returns the chunk token count, nil when unknown.
func (r *Result) TokenCount() *int { return r.positions.TokenCount }

// StartIndex returns the chunk start offset, nil when unknown.
func (r *Result) StartIndex() *int { return r.positions.StartIndex }

// EndIndex returns the chunk end offset, nil when unknown.
func (r *Result) EndIndex() *int { return r.positions.EndIndex }

// WithScore returns a copy with the score replaced.
func (r Result) WithScore(score float64) Result {
	r.score = score
	return r
}
