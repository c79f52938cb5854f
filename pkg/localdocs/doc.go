// Package localdocs is a Go client for local document retrieval over a
// Redis or Valkey vector index populated by an ingestion pipeline.
//
// Three ranking modes are offered:
//   - Semantic: raw vector similarity
//   - Hybrid: similarity fused with keyword overlap, then diversified (MMR)
//   - Filtered: similarity restricted by exact-match metadata filters
//
// Example:
//
//	client, err := localdocs.New(ctx,
//	    localdocs.WithStore("localhost:6379"),
//	    localdocs.WithCollection("local-docs-collection"),
//	    localdocs.WithEmbedding("http://localhost:11434/v1", "nomic-embed-text", 768),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	results, err := client.Hybrid(ctx, "database connection", localdocs.Limit(5))
//
// Query embeddings are cached in process memory, so repeated queries skip
// the embedding provider.
package localdocs
