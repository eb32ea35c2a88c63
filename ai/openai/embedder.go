package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/resolvit/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder      embeddings.Embedder
	maxInputRunes int
	logger        *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken("none"),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder
	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder:      embedder,
		maxInputRunes: config.MaxInputRunes,
		logger:        slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
// Returns ai.ErrEncoding for input that is empty after trimming.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text, err := e.prepare(text)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("generating embedding for single text", "length", len(text))

	vectors, err := e.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(vectors) == 0 {
		e.logger.Warn("embedder returned empty result")
		return []float32{}, nil
	}

	return vectors[0], nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	prepared := make([]string, len(texts))
	for i, text := range texts {
		p, err := e.prepare(text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		prepared[i] = p
	}

	e.logger.Debug("generating embeddings for texts", "count", len(prepared))

	vectors, err := e.embedder.EmbedDocuments(ctx, prepared)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(prepared), "err", err)
		return nil, err
	}

	return vectors, nil
}

// prepare enforces the encoder's input contract: no empty texts, and a hard
// rune budget so requests never exceed the model's context window.
func (e *Embedder) prepare(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ai.ErrEncoding
	}
	runes := []rune(text)
	if len(runes) > e.maxInputRunes {
		e.logger.Debug("truncating oversized input", "runes", len(runes), "budget", e.maxInputRunes)
		text = string(runes[:e.maxInputRunes])
	}
	return text, nil
}
