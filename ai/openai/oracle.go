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


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/resolvit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Oracle implements ai.Oracle using OpenAI-compatible chat APIs.
type Oracle struct {
	client    llms.Model
	maxTokens int
	logger    *slog.Logger
}

// verdict is an internal type used for JSON unmarshaling.
// It matches the structure requested from the LLM.
type verdict struct {
	RecordId *uint64 `json:"record_id"`
}

// newOracle is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newOracle(config *ai.Config) (*Oracle, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for chat/disambiguation
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.OracleHost),
		openai.WithToken("none"),
		openai.WithModel(config.OracleModel),
	)
	if err != nil {
		return nil, err
	}

	return &Oracle{
		client:    client,
		maxTokens: config.MaxOracleTokens,
		logger:    slog.Default().With("component", "openai-oracle"),
	}, nil
}

// NewOracle creates a new disambiguation oracle using the provided configuration.
//
// Returns ai.Oracle interface to enforce abstraction.
func NewOracle(config *ai.Config) (ai.Oracle, error) {
	return newOracle(config)
}

// Disambiguate asks the LLM to pick among the candidates.
// Exactly one upstream call is made; a malformed response is an
// ai.ErrOracleFailed, not a retry.
func (o *Oracle) Disambiguate(ctx context.Context, query string, candidates []ai.OracleCandidate) (ai.OracleDecision, error) {
	if len(candidates) == 0 {
		return ai.OracleDecision{}, ai.ErrNoCandidates
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt(candidates)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(query),
			},
		},
	}

	response, err := o.client.GenerateContent(ctx, content,
		llms.WithTemperature(0.0),
		llms.WithJSONMode(),
		llms.WithMaxTokens(o.maxTokens))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			o.logger.Warn("oracle deadline exceeded", "err", err)
			return ai.OracleDecision{}, fmt.Errorf("%w: %w", ai.ErrOracleTimeout, err)
		}
		o.logger.Error("failed to generate content", "err", err)
		return ai.OracleDecision{}, fmt.Errorf("%w: %w", ai.ErrOracleFailed, err)
	}

	if len(response.Choices) < 1 {
		o.logger.Debug("no choices returned from model")
		return ai.OracleDecision{}, fmt.Errorf("%w: empty response", ai.ErrOracleFailed)
	}

	decision, err := parseVerdict(response.Choices[0].Content, candidates)
	if err != nil {
		o.logger.Warn("error parsing oracle response", "response", response.Choices[0].Content, "err", err)
		return ai.OracleDecision{}, err
	}

	o.logger.Debug("oracle decision", "matched", decision.Matched, "recordId", decision.RecordId)
	return decision, nil
}

// parseVerdict extracts the chosen record from the raw model output.
// The chosen id must be one of the offered candidates; anything else is
// treated as a declared no-match rather than trusted.
func parseVerdict(raw string, candidates []ai.OracleCandidate) (ai.OracleDecision, error) {
	// Strip markdown code fences if present
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var v verdict
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return ai.OracleDecision{}, fmt.Errorf("%w: %w", ai.ErrOracleFailed, err)
	}

	if v.RecordId == nil {
		return ai.OracleDecision{Matched: false}, nil
	}

	for _, c := range candidates {
		if c.RecordId == *v.RecordId {
			return ai.OracleDecision{RecordId: *v.RecordId, Matched: true}, nil
		}
	}

	// Hallucinated id: none of the offered candidates.
	return ai.OracleDecision{Matched: false}, nil
}
