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


// Package resolvit matches free-form entity mentions against a canonical
// record set, blending fuzzy lexical retrieval with embedding similarity
// and falling back to an LLM disambiguator for ambiguous queries.
package resolvit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/ai/openai"
	"github.com/poiesic/resolvit/cache"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/index"
	"github.com/poiesic/resolvit/match"
	"github.com/poiesic/resolvit/rank"
	"github.com/poiesic/resolvit/refresh"
	"github.com/poiesic/resolvit/store"
)

// ErrSourceRequired is returned when a record source is not provided.
var ErrSourceRequired = errors.New("record source required")

// ErrEmbeddingModelRequired is returned when a vector cache is attached but
// no embedding model name is available to key its entries.
var ErrEmbeddingModelRequired = errors.New("embedding model name required for the vector cache")

// Config holds the engine's tuning knobs. Zero values mean "use default";
// start from DefaultConfig and override fields as needed.
type Config struct {
	// Threshold is the fused score a top candidate must reach to resolve
	// directly without the oracle.
	Threshold float64

	// ShortlistSize caps the blended retrieval shortlist.
	ShortlistSize int

	// TopKFallback caps how many candidates the oracle sees.
	TopKFallback int

	// CacheSize bounds the result cache; CacheTTL bounds entry age.
	CacheSize int
	CacheTTL  time.Duration

	// QueryTimeout is the overall per-query budget; FallbackTimeout is the
	// additional budget granted to the oracle.
	QueryTimeout    time.Duration
	FallbackTimeout time.Duration

	// FallbackPolicy controls behavior when the oracle cannot decide.
	FallbackPolicy match.FallbackPolicy

	// BatchSize, MaxRetries, and RetryBaseDelay tune refresh encoding.
	BatchSize      int
	MaxRetries     int
	RetryBaseDelay time.Duration

	// ModelPath optionally names an XGBoost dump for the ranker. When
	// empty, the deterministic weighted model is used.
	ModelPath string

	// MetadataFeatures selects record metadata keys fed to the ranker, in
	// feature-vector order.
	MetadataFeatures []string
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	return &Config{
		Threshold:       0.75,
		ShortlistSize:   50,
		TopKFallback:    5,
		CacheSize:       1024,
		CacheTTL:        10 * time.Minute,
		QueryTimeout:    2 * time.Second,
		FallbackTimeout: 5 * time.Second,
		BatchSize:       32,
		MaxRetries:      3,
		RetryBaseDelay:  500 * time.Millisecond,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > 1 {
		return errors.New("config: Threshold must be in [0,1]")
	}
	if c.ShortlistSize <= 0 {
		return errors.New("config: ShortlistSize must be positive")
	}
	if c.TopKFallback <= 0 {
		return errors.New("config: TopKFallback must be positive")
	}
	if c.CacheSize <= 0 {
		return errors.New("config: CacheSize must be positive")
	}
	if c.QueryTimeout <= 0 || c.FallbackTimeout <= 0 {
		return errors.New("config: timeouts must be positive")
	}
	if c.MaxRetries <= 0 {
		return errors.New("config: MaxRetries must be positive")
	}
	return nil
}

// Resolver wires the full engine: source, AI provider, index, cache,
// matcher, and refresher behind one handle.
type Resolver struct {
	source    store.Source
	provider  ai.Provider
	idx       *index.Index
	results   *cache.Cache
	matcher   *match.Matcher
	refresher *refresh.Refresher
	logger    *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	provider   ai.Provider
	aiConfig   *ai.Config
	vectors    store.VectorCache
	embedModel string
	model      rank.Model
	progress   *refresh.ProgressTracker
}

// WithProvider supplies a pre-built AI provider (e.g. a mock in tests).
// Takes precedence over WithAIConfig.
func WithProvider(provider ai.Provider) ResolverOption {
	return func(o *resolverOptions) {
		o.provider = provider
	}
}

// WithAIConfig configures the default OpenAI-compatible provider.
func WithAIConfig(config *ai.Config) ResolverOption {
	return func(o *resolverOptions) {
		o.aiConfig = config
	}
}

// WithVectorCache attaches a durable embedding cache used during refresh.
// embedModel names the model the cached vectors belong to; it may be empty
// when WithAIConfig (or the default provider) supplies one.
func WithVectorCache(vectors store.VectorCache, embedModel string) ResolverOption {
	return func(o *resolverOptions) {
		o.vectors = vectors
		o.embedModel = embedModel
	}
}

// WithModel overrides the ranking model. Takes precedence over
// Config.ModelPath.
func WithModel(model rank.Model) ResolverOption {
	return func(o *resolverOptions) {
		o.model = model
	}
}

// WithProgress attaches a progress tracker to refresh runs.
func WithProgress(progress *refresh.ProgressTracker) ResolverOption {
	return func(o *resolverOptions) {
		o.progress = progress
	}
}

// NewResolver builds a resolver over the record source. The index starts
// empty; call Refresh (or Run) before resolving queries.
func NewResolver(source store.Source, config *Config, opts ...ResolverOption) (*Resolver, error) {
	if source == nil {
		return nil, ErrSourceRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	options := &resolverOptions{}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		aiConfig := options.aiConfig
		if aiConfig == nil {
			aiConfig = ai.DefaultConfig()
		}
		var err error
		provider, err = openai.NewProvider(aiConfig)
		if err != nil {
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
	}

	model := options.model
	if model == nil {
		if config.ModelPath != "" {
			var err error
			model, err = rank.NewGBDTModel(config.ModelPath)
			if err != nil {
				provider.Close()
				return nil, err
			}
		} else {
			model = rank.NewWeightedModel()
		}
	}

	idx := index.New()
	results := cache.New(config.CacheSize, config.CacheTTL)
	ranker := rank.NewRanker(model, config.MetadataFeatures)

	matcher, err := match.NewMatcher(idx, results, provider, ranker,
		match.WithThreshold(config.Threshold),
		match.WithShortlistSize(config.ShortlistSize),
		match.WithTopKFallback(config.TopKFallback),
		match.WithTimeouts(config.QueryTimeout, config.FallbackTimeout),
		match.WithFallbackPolicy(config.FallbackPolicy),
	)
	if err != nil {
		provider.Close()
		return nil, err
	}

	refreshOpts := []refresh.Option{
		refresh.WithBatchSize(config.BatchSize),
		refresh.WithRetry(config.MaxRetries, config.RetryBaseDelay),
	}
	if options.vectors != nil {
		embedModel := options.embedModel
		if embedModel == "" {
			if options.aiConfig != nil {
				embedModel = options.aiConfig.EmbeddingModel
			} else if options.provider == nil {
				embedModel = ai.DefaultConfig().EmbeddingModel
			}
		}
		// A custom provider carries no model name; cached vectors must not
		// be keyed under an empty one.
		if embedModel == "" {
			provider.Close()
			return nil, ErrEmbeddingModelRequired
		}
		refreshOpts = append(refreshOpts, refresh.WithVectorCache(options.vectors, embedModel))
	}
	if options.progress != nil {
		refreshOpts = append(refreshOpts, refresh.WithProgress(options.progress))
	}

	refresher, err := refresh.New(source, provider.Embedder(), idx, results, refreshOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	return &Resolver{
		source:    source,
		provider:  provider,
		idx:       idx,
		results:   results,
		matcher:   matcher,
		refresher: refresher,
		logger:    slog.Default().With("component", "resolver"),
	}, nil
}

// Resolve matches rawText against the current snapshot.
func (r *Resolver) Resolve(ctx context.Context, rawText string) (*core.MatchResult, error) {
	return r.matcher.Resolve(ctx, rawText)
}

// ResolveWithMonitor matches rawText with pipeline observation hooks.
func (r *Resolver) ResolveWithMonitor(ctx context.Context, rawText string, monitor match.MatchMonitor) (*core.MatchResult, error) {
	return r.matcher.ResolveWithMonitor(ctx, rawText, monitor)
}

// Refresh rebuilds the index snapshot from the source.
func (r *Resolver) Refresh(ctx context.Context) error {
	return r.refresher.Refresh(ctx)
}

// Run refreshes periodically until the context is cancelled.
func (r *Resolver) Run(ctx context.Context, interval time.Duration) error {
	return r.refresher.Run(ctx, interval)
}

// CacheStats reports result-cache effectiveness.
func (r *Resolver) CacheStats() cache.Stats {
	return r.results.Stats()
}

// Snapshot returns the currently installed index snapshot, or nil before
// the first refresh.
func (r *Resolver) Snapshot() *index.Snapshot {
	return r.idx.Load()
}

// Close releases the refresher pool and the AI provider.
func (r *Resolver) Close() error {
	r.refresher.Release()
	if err := r.provider.Close(); err != nil {
		r.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}
