package mock

import (
	"context"

	"github.com/poiesic/resolvit/ai"
)

// MockOracle is a test double for ai.Oracle.
// It allows custom behavior injection via a function field.
type MockOracle struct {
	// DisambiguateFunc is called by Disambiguate if set.
	// If nil, the oracle declares no-match for every query.
	DisambiguateFunc func(ctx context.Context, query string, candidates []ai.OracleCandidate) (ai.OracleDecision, error)

	callCount int
}

// NewMockOracle creates a mock oracle that declares no-match by default.
func NewMockOracle() *MockOracle {
	return &MockOracle{}
}

// Disambiguate returns the injected behavior, or a no-match decision.
func (m *MockOracle) Disambiguate(ctx context.Context, query string, candidates []ai.OracleCandidate) (ai.OracleDecision, error) {
	m.callCount++

	if m.DisambiguateFunc != nil {
		return m.DisambiguateFunc(ctx, query, candidates)
	}

	if len(candidates) == 0 {
		return ai.OracleDecision{}, ai.ErrNoCandidates
	}
	return ai.OracleDecision{Matched: false}, nil
}

// CallCount returns the number of times Disambiguate was called.
func (m *MockOracle) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockOracle) Reset() {
	m.callCount = 0
	m.DisambiguateFunc = nil
}
