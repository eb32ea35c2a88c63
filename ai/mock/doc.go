// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.Oracle,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vector, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	oracle := mock.NewMockOracle()
//	oracle.DisambiguateFunc = func(ctx context.Context, query string, candidates []ai.OracleCandidate) (ai.OracleDecision, error) {
//	    return ai.OracleDecision{RecordId: candidates[0].RecordId, Matched: true}, nil
//	}
//
//	// Check call counts
//	count := oracle.CallCount()
//
// # Default Behavior
//
// The mock embedder produces unit-length vectors derived from token hashes,
// so texts that share tokens really do land closer in cosine space. The mock
// oracle declares no-match for every query until a DisambiguateFunc is
// injected.
package mock
