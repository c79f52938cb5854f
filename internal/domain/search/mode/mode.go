package mode

// Mode is the retrieval strategy of a search call.
type Mode string

// Search mode constants.
const (
	// Semantic ranks by raw vector similarity.
	Semantic Mode = "semantic"
	// Hybrid fuses vector similarity with keyword scores and diversifies with MMR.
	Hybrid Mode = "hybrid"
	// Filtered is a semantic search constrained by payload equality filters.
	Filtered Mode = "filtered"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Semantic || m == Hybrid || m == Filtered
}
