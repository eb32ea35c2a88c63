// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import "github.com/poiesic/resolvit/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock embedder and oracle instances.
type MockProvider struct {
	embedder *MockEmbedder
	oracle   *MockOracle
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use NewMockProviderWithServices to keep concrete handles for assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder: NewMockEmbedder(),
		oracle:   NewMockOracle(),
	}
}

// NewMockProviderWithServices creates a mock provider with custom mock services.
// This allows full control over the behavior of each service.
func NewMockProviderWithServices(embedder *MockEmbedder, oracle *MockOracle) ai.Provider {
	return &MockProvider{
		embedder: embedder,
		oracle:   oracle,
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Oracle returns the mock oracle.
func (p *MockProvider) Oracle() ai.Oracle {
	return p.oracle
}

// Close is a no-op.
func (p *MockProvider) Close() error {
	return nil
}
