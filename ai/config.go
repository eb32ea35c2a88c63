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


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// OracleHost is the base URL for the disambiguation oracle chat API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	OracleHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// OracleModel is the model identifier to use for disambiguation.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	OracleModel string

	// MaxOracleTokens bounds the oracle's response length. The prompt asks
	// for a single small JSON object, so this stays low.
	// Default: 128
	MaxOracleTokens int

	// MaxInputRunes is the rune budget for a single text reaching the
	// embedder. Longer texts are truncated before encoding.
	// Default: 2048
	MaxInputRunes int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithOracleHost sets the oracle service host URL.
func WithOracleHost(host string) ConfigOption {
	return func(c *Config) {
		c.OracleHost = host
	}
}

// WithHost sets both embedding and oracle hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.OracleHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithOracleModel sets the oracle model identifier.
func WithOracleModel(model string) ConfigOption {
	return func(c *Config) {
		c.OracleModel = model
	}
}

// WithMaxOracleTokens sets the oracle response token cap.
func WithMaxOracleTokens(max int) ConfigOption {
	return func(c *Config) {
		c.MaxOracleTokens = max
	}
}

// WithMaxInputRunes sets the rune budget for embedder input.
func WithMaxInputRunes(max int) ConfigOption {
	return func(c *Config) {
		c.MaxInputRunes = max
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and oracle use the same host.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:   defaultHost,
		OracleHost:      defaultHost,
		EmbeddingModel:  "embeddinggemma",
		OracleModel:     "qwen2.5:3b",
		MaxOracleTokens: 128,
		MaxInputRunes:   2048,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//   cfg := NewConfig(
//       WithHost("http://localhost:11434/v1"),
//       WithEmbeddingModel("text-embedding-3-small"),
//   )
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/")
		c.EmbeddingHost = c.EmbeddingHost + "/v1"
	}
	if c.OracleHost != "" && !strings.HasSuffix(c.OracleHost, "/v1") {
		c.OracleHost = strings.TrimSuffix(c.OracleHost, "/")
		c.OracleHost = c.OracleHost + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.OracleHost == "" {
		return errors.New("ai config: OracleHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.OracleModel == "" {
		return errors.New("ai config: OracleModel is required")
	}
	if c.MaxOracleTokens < 1 {
		return errors.New("ai config: MaxOracleTokens must be positive")
	}
	if c.MaxInputRunes < 1 {
		return errors.New("ai config: MaxInputRunes must be positive")
	}
	return nil
}
