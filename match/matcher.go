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

package match

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/cache"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/index"
	"github.com/poiesic/resolvit/normalize"
	"github.com/poiesic/resolvit/rank"
)

// FallbackPolicy controls what happens when the disambiguation oracle
// fails or times out.
type FallbackPolicy int

const (
	// FallbackBestEffort returns the best ranked candidate flagged
	// low-confidence when the oracle cannot decide.
	FallbackBestEffort FallbackPolicy = iota

	// FallbackStrict returns an explicit no-match when the oracle cannot
	// decide.
	FallbackStrict
)

// Matcher resolves free-form query text against the current index snapshot.
type Matcher struct {
	idx             *index.Index
	results         *cache.Cache
	embedder        ai.Embedder
	oracle          ai.Oracle
	ranker          *rank.Ranker
	threshold       float64
	shortlistSize   int
	topKFallback    int
	queryTimeout    time.Duration
	fallbackTimeout time.Duration
	policy          FallbackPolicy
	logger          *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithThreshold sets the acceptance threshold for direct resolution.
// Default 0.75.
func WithThreshold(threshold float64) Option {
	return func(m *Matcher) error {
		m.threshold = threshold
		return nil
	}
}

// WithShortlistSize caps the blended retrieval shortlist. Default 50.
func WithShortlistSize(size int) Option {
	return func(m *Matcher) error {
		if size > 0 {
			m.shortlistSize = size
		}
		return nil
	}
}

// WithTopKFallback caps how many candidates are shown to the oracle.
// Default 5.
func WithTopKFallback(k int) Option {
	return func(m *Matcher) error {
		if k > 0 {
			m.topKFallback = k
		}
		return nil
	}
}

// WithTimeouts sets the overall query budget and the additional fallback
// budget. Defaults: 2s query, 5s fallback.
func WithTimeouts(query, fallback time.Duration) Option {
	return func(m *Matcher) error {
		if query > 0 {
			m.queryTimeout = query
		}
		if fallback > 0 {
			m.fallbackTimeout = fallback
		}
		return nil
	}
}

// WithFallbackPolicy sets the behavior when the oracle cannot decide.
// Default FallbackBestEffort.
func WithFallbackPolicy(policy FallbackPolicy) Option {
	return func(m *Matcher) error {
		m.policy = policy
		return nil
	}
}

// NewMatcher creates a matcher. results may be nil to disable caching.
func NewMatcher(idx *index.Index, results *cache.Cache, provider ai.Provider, ranker *rank.Ranker, opts ...Option) (*Matcher, error) {
	if idx == nil {
		return nil, ErrIndexRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}

	m := &Matcher{
		idx:             idx,
		results:         results,
		embedder:        provider.Embedder(),
		oracle:          provider.Oracle(),
		ranker:          ranker,
		threshold:       0.75,
		shortlistSize:   50,
		topKFallback:    5,
		queryTimeout:    2 * time.Second,
		fallbackTimeout: 5 * time.Second,
		logger:          slog.Default().With("component", "match"),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Resolve matches rawText against the current snapshot.
func (m *Matcher) Resolve(ctx context.Context, rawText string) (*core.MatchResult, error) {
	return m.ResolveWithMonitor(ctx, rawText, nil)
}

// ResolveWithMonitor matches rawText with pipeline observation hooks.
// The monitor receives callbacks at each stage of the resolution process.
func (m *Matcher) ResolveWithMonitor(ctx context.Context, rawText string, monitor MatchMonitor) (*core.MatchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query := &core.Query{
		RequestId: uuid.NewString(),
		RawText:   rawText,
	}
	monitor.Start(query)

	query.NormalizedText = normalize.Normalize(rawText)
	if query.NormalizedText == "" {
		return nil, ErrEmptyQuery
	}
	monitor.AfterNormalize(query.NormalizedText)

	snapshot := m.idx.Load()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}

	if m.results != nil {
		// Entries stamped with a retired snapshot are misses: a slow query
		// can write its result after the swap's purge has already run.
		if cached, ok := m.results.Get(query.NormalizedText); ok && cached.SnapshotVersion == snapshot.Version() {
			hit := *cached
			hit.Resolved = core.ResolvedViaCache
			monitor.CacheHit(&hit)
			monitor.Finish(&hit)
			return &hit, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, m.queryTimeout)
	defer cancel()

	// Encode concurrently with the lexical scan; both sides read the same
	// immutable snapshot.
	type encoding struct {
		vector []float32
		err    error
	}
	encoded := make(chan encoding, 1)
	go func() {
		vector, err := m.embedder.EmbedText(ctx, query.NormalizedText)
		encoded <- encoding{vector: vector, err: err}
	}()

	fuzzyHits := snapshot.TopFuzzy(query.NormalizedText, m.shortlistSize)

	enc := <-encoded
	if enc.err != nil {
		if deadlineExpired(ctx, enc.err) {
			result := m.timedOut(query, nil)
			monitor.Finish(result)
			return result, nil
		}
		// Lexical-only degrade: the encoder is down but fuzzy retrieval
		// can still serve.
		m.logger.Warn("encoder unavailable, lexical-only retrieval",
			"requestId", query.RequestId, "err", enc.err)
		monitor.EncodingDegraded(enc.err)
	} else {
		query.Vector = enc.vector
		monitor.AfterEncoding(enc.vector)
	}

	cosineHits := snapshot.TopCosine(query.Vector, m.shortlistSize)
	hits := snapshot.Merge(cosineHits, fuzzyHits, query.Vector, query.NormalizedText, m.shortlistSize)
	monitor.AfterShortlist(hits)

	candidates := m.ranker.Rank(hits)
	monitor.AfterRank(candidates)

	if err := ctx.Err(); err != nil {
		result := m.timedOut(query, candidates)
		monitor.Finish(result)
		return result, nil
	}

	var result *core.MatchResult
	if rank.Confident(candidates, m.threshold) {
		result = &core.MatchResult{
			QueryText:  query.NormalizedText,
			Candidates: candidates,
			Confidence: candidates[0].FusedScore,
			Resolved:   core.ResolvedViaDirect,
			Timestamp:  time.Now().UTC(),
		}
	} else {
		result = m.disambiguate(ctx, query, candidates, monitor)
	}
	result.SnapshotVersion = snapshot.Version()

	// Cache only results produced against the live snapshot; a swap during
	// the query would otherwise let this write outlive the purge.
	if m.results != nil && !result.TimedOut {
		if current := m.idx.Load(); current != nil && current.Version() == result.SnapshotVersion {
			m.results.Put(query.NormalizedText, result)
		}
	}

	monitor.Finish(result)
	return result, nil
}

// disambiguate consults the oracle over the top ranked candidates. Oracle
// failure degrades per the fallback policy instead of failing the request.
func (m *Matcher) disambiguate(ctx context.Context, query *core.Query, candidates []core.Candidate, monitor MatchMonitor) *core.MatchResult {
	result := &core.MatchResult{
		QueryText:  query.NormalizedText,
		Candidates: candidates,
		Resolved:   core.ResolvedViaFallback,
		Timestamp:  time.Now().UTC(),
	}
	if len(candidates) == 0 {
		return result
	}

	topK := candidates
	if len(topK) > m.topKFallback {
		topK = topK[:m.topKFallback]
	}
	oracleCandidates := make([]ai.OracleCandidate, len(topK))
	for i, candidate := range topK {
		oracleCandidates[i] = ai.OracleCandidate{
			RecordId:    uint64(candidate.RecordId),
			DisplayName: candidate.DisplayName,
		}
	}
	monitor.FallbackInvoked(oracleCandidates)

	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.fallbackTimeout)
	defer cancel()

	decision, err := m.oracle.Disambiguate(fctx, query.RawText, oracleCandidates)
	monitor.FallbackDecision(decision, err)
	if err != nil {
		m.logger.Warn("oracle unavailable", "requestId", query.RequestId, "err", err)
		if m.policy == FallbackStrict {
			result.Candidates = nil
			return result
		}
		result.Confidence = candidates[0].FusedScore
		result.LowConfidence = true
		return result
	}

	if !decision.Matched {
		result.Candidates = nil
		return result
	}

	// Promote the chosen candidate to the front.
	for i, candidate := range result.Candidates {
		if uint64(candidate.RecordId) == decision.RecordId {
			chosen := result.Candidates[i]
			result.Candidates = append([]core.Candidate{chosen},
				append(append([]core.Candidate{}, result.Candidates[:i]...), result.Candidates[i+1:]...)...)
			result.Confidence = chosen.FusedScore
			return result
		}
	}

	// The oracle named a record outside the shortlist; treat as undecided.
	m.logger.Warn("oracle chose unknown candidate",
		"requestId", query.RequestId, "recordId", decision.RecordId)
	if m.policy == FallbackStrict {
		result.Candidates = nil
		return result
	}
	result.Confidence = candidates[0].FusedScore
	result.LowConfidence = true
	return result
}

func (m *Matcher) timedOut(query *core.Query, candidates []core.Candidate) *core.MatchResult {
	m.logger.Warn("query budget exhausted", "requestId", query.RequestId)
	result := &core.MatchResult{
		QueryText:     query.NormalizedText,
		Candidates:    candidates,
		TimedOut:      true,
		LowConfidence: true,
		Resolved:      core.ResolvedViaDirect,
		Timestamp:     time.Now().UTC(),
	}
	if len(candidates) > 0 {
		result.Confidence = candidates[0].FusedScore
	}
	return result
}

func deadlineExpired(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil
}
