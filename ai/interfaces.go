package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns ErrEncoding if the text cannot be encoded (e.g. empty after
	// normalization), or an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// OracleCandidate is one option presented to the disambiguation oracle.
type OracleCandidate struct {
	// RecordId identifies the canonical record being offered.
	RecordId uint64

	// DisplayName is the human-readable name shown to the oracle.
	DisplayName string
}

// OracleDecision is the oracle's verdict on a disambiguation request.
type OracleDecision struct {
	// RecordId is the chosen record. Only meaningful when Matched is true.
	RecordId uint64

	// Matched is false when the oracle declares that none of the offered
	// candidates match the query.
	Matched bool
}

// Oracle picks the best candidate for an ambiguous query, or declares that
// none of them match. Implementations must be thread-safe for concurrent use.
type Oracle interface {
	// Disambiguate asks the oracle to choose among the candidates.
	// Exactly one upstream call is made per invocation; implementations do
	// not retry. Returns ErrOracleTimeout when the context deadline expires
	// and ErrOracleFailed for any other upstream failure. Callers are
	// expected to absorb both and degrade rather than fail the request.
	Disambiguate(ctx context.Context, query string, candidates []OracleCandidate) (OracleDecision, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and Oracle instances,
// ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Oracle returns the disambiguation service.
	// The returned Oracle is safe for concurrent use.
	Oracle() Oracle

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
