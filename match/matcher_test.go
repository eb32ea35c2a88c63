package match

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/resolvit/ai"
	"github.com/poiesic/resolvit/ai/mock"
	"github.com/poiesic/resolvit/cache"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/index"
	"github.com/poiesic/resolvit/rank"
)

const testDim = 16

func snapshotRecord(display, norm string) *core.CanonicalRecord {
	return &core.CanonicalRecord{
		Id:             core.IDFromContent(norm),
		DisplayName:    display,
		NormalizedName: norm,
		Vector:         mock.DeterministicVector(norm, testDim),
	}
}

type fixture struct {
	matcher  *Matcher
	idx      *index.Index
	results  *cache.Cache
	embedder *mock.MockEmbedder
	oracle   *mock.MockOracle
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	snapshot, err := index.NewSnapshot([]*core.CanonicalRecord{
		snapshotRecord("John Smith", "john smith"),
		snapshotRecord("Jane Smith", "jane smith"),
		snapshotRecord("Ada Lovelace", "ada lovelace"),
	})
	require.NoError(t, err)

	idx := index.New()
	idx.Swap(snapshot)

	embedder := mock.NewMockEmbedder()
	embedder.Dim = testDim
	oracle := mock.NewMockOracle()
	results := cache.New(64, time.Minute)

	matcher, err := NewMatcher(idx, results,
		mock.NewMockProviderWithServices(embedder, oracle),
		rank.NewRanker(rank.NewWeightedModel(), nil), opts...)
	require.NoError(t, err)

	return &fixture{matcher: matcher, idx: idx, results: results, embedder: embedder, oracle: oracle}
}

func TestNewMatcher_RequiredArgs(t *testing.T) {
	provider := mock.NewMockProvider()
	ranker := rank.NewRanker(rank.NewWeightedModel(), nil)

	_, err := NewMatcher(nil, nil, provider, ranker)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewMatcher(index.New(), nil, nil, ranker)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	_, err = NewMatcher(index.New(), nil, provider, nil)
	assert.ErrorIs(t, err, ErrRankerRequired)
}

func TestResolve_Direct(t *testing.T) {
	f := newFixture(t)

	result, err := f.matcher.Resolve(context.Background(), "John Smith")
	require.NoError(t, err)

	assert.Equal(t, core.ResolvedViaDirect, result.Resolved)
	require.NotNil(t, result.Top())
	assert.Equal(t, "John Smith", result.Top().DisplayName)
	assert.GreaterOrEqual(t, result.Confidence, 0.75)
	assert.False(t, result.LowConfidence)
	assert.Zero(t, f.oracle.CallCount())
}

func TestResolve_NormalizesInput(t *testing.T) {
	f := newFixture(t)

	result, err := f.matcher.Resolve(context.Background(), "  JOHN   SMITH!  ")
	require.NoError(t, err)

	assert.Equal(t, "john smith", result.QueryText)
	assert.Equal(t, core.ResolvedViaDirect, result.Resolved)
	assert.Equal(t, "John Smith", result.Top().DisplayName)
}

func TestResolve_EmptyQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.matcher.Resolve(context.Background(), "   !!!  ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestResolve_NoSnapshot(t *testing.T) {
	matcher, err := NewMatcher(index.New(), nil, mock.NewMockProvider(),
		rank.NewRanker(rank.NewWeightedModel(), nil))
	require.NoError(t, err)

	_, err = matcher.Resolve(context.Background(), "john smith")
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestResolve_CacheHit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.matcher.Resolve(ctx, "John Smith")
	require.NoError(t, err)
	assert.Equal(t, core.ResolvedViaDirect, first.Resolved)
	callsAfterFirst := f.embedder.CallCount()

	second, err := f.matcher.Resolve(ctx, "john SMITH")
	require.NoError(t, err)
	assert.Equal(t, core.ResolvedViaCache, second.Resolved)
	assert.Equal(t, first.Top().RecordId, second.Top().RecordId)
	assert.Equal(t, callsAfterFirst, f.embedder.CallCount())
}

func TestResolve_FallbackPromotesOracleChoice(t *testing.T) {
	// A high threshold forces the fallback path even for close matches.
	f := newFixture(t, WithThreshold(0.99))
	chosen := core.IDFromContent("john smith")
	f.oracle.DisambiguateFunc = func(ctx context.Context, query string, candidates []ai.OracleCandidate) (ai.OracleDecision, error) {
		require.NotEmpty(t, candidates)
		assert.LessOrEqual(t, len(candidates), 5)
		return ai.OracleDecision{RecordId: uint64(chosen), Matched: true}, nil
	}

	result, err := f.matcher.Resolve(context.Background(), "Jon Smyth")
	require.NoError(t, err)

	assert.Equal(t, core.ResolvedViaFallback, result.Resolved)
	require.NotNil(t, result.Top())
	assert.Equal(t, chosen, result.Top().RecordId)
	assert.False(t, result.LowConfidence)
	assert.Equal(t, 1, f.oracle.CallCount())
}

func TestResolve_FallbackNoMatch(t *testing.T) {
	f := newFixture(t)
	// Default oracle declares no match.

	result, err := f.matcher.Resolve(context.Background(), "Xyzzy Unmatched")
	require.NoError(t, err)

	assert.Equal(t, core.ResolvedViaFallback, result.Resolved)
	assert.True(t, result.NoMatch())
}

func TestResolve_OracleFailureBestEffort(t *testing.T) {
	f := newFixture(t)
	f.oracle.DisambiguateFunc = func(ctx context.Context, query string, candidates []ai.OracleCandidate) (ai.OracleDecision, error) {
		return ai.OracleDecision{}, ai.ErrOracleFailed
	}

	result, err := f.matcher.Resolve(context.Background(), "Xyzzy Unmatched")
	require.NoError(t, err)

	assert.Equal(t, core.ResolvedViaFallback, result.Resolved)
	assert.True(t, result.LowConfidence)
	assert.NotNil(t, result.Top())
}

func TestResolve_OracleFailureStrict(t *testing.T) {
	f := newFixture(t, WithFallbackPolicy(FallbackStrict))
	f.oracle.DisambiguateFunc = func(ctx context.Context, query string, candidates []ai.OracleCandidate) (ai.OracleDecision, error) {
		return ai.OracleDecision{}, ai.ErrOracleTimeout
	}

	result, err := f.matcher.Resolve(context.Background(), "Xyzzy Unmatched")
	require.NoError(t, err)

	assert.Equal(t, core.ResolvedViaFallback, result.Resolved)
	assert.True(t, result.NoMatch())
}

func TestResolve_EncoderOutageDegradesToLexical(t *testing.T) {
	f := newFixture(t)
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("encoder down")
	}

	// Exact lexical match still clears the threshold without embeddings.
	result, err := f.matcher.Resolve(context.Background(), "John Smith")
	require.NoError(t, err)

	assert.Equal(t, core.ResolvedViaDirect, result.Resolved)
	assert.Equal(t, "John Smith", result.Top().DisplayName)
	assert.Zero(t, result.Top().EmbeddingScore)
}

func TestResolve_BudgetExhausted(t *testing.T) {
	f := newFixture(t, WithTimeouts(time.Nanosecond, time.Second))
	f.embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	result, err := f.matcher.Resolve(context.Background(), "John Smith")
	require.NoError(t, err)

	assert.True(t, result.TimedOut)
	assert.True(t, result.LowConfidence)

	// Timed-out results are never cached.
	assert.Equal(t, 0, f.results.Stats().Entries)
}

func TestResolve_SwapMidFlightUsesLoadedSnapshot(t *testing.T) {
	f := newFixture(t)

	// Swap in a snapshot without John Smith, then resolve: the new snapshot
	// serves because each query loads the current pointer once.
	replacement, err := index.NewSnapshot([]*core.CanonicalRecord{
		snapshotRecord("Grace Hopper", "grace hopper"),
	})
	require.NoError(t, err)
	f.idx.Swap(replacement)
	f.results.Purge()

	result, err := f.matcher.Resolve(context.Background(), "Grace Hopper")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", result.Top().DisplayName)
}

type swapOnRankMonitor struct {
	noopMonitor
	swap func()
}

func (s *swapOnRankMonitor) AfterRank(_ []core.Candidate) { s.swap() }

func TestResolve_SwapDuringQueryDoesNotPoisonCache(t *testing.T) {
	f := newFixture(t)

	replacement, err := index.NewSnapshot([]*core.CanonicalRecord{
		snapshotRecord("Grace Hopper", "grace hopper"),
	})
	require.NoError(t, err)

	// Install a new snapshot after ranking but before the in-flight result
	// is written back, mimicking a refresh landing mid-query.
	monitor := &swapOnRankMonitor{swap: func() {
		f.idx.Swap(replacement)
		f.results.Purge()
	}}

	first, err := f.matcher.ResolveWithMonitor(context.Background(), "John Smith", monitor)
	require.NoError(t, err)
	assert.Equal(t, core.ResolvedViaDirect, first.Resolved)

	// The retired-snapshot result must not outlive the purge.
	assert.Equal(t, 0, f.results.Stats().Entries)

	second, err := f.matcher.Resolve(context.Background(), "John Smith")
	require.NoError(t, err)
	assert.NotEqual(t, core.ResolvedViaCache, second.Resolved)
	assert.True(t, second.NoMatch())
}

type recordingMonitor struct {
	noopMonitor
	stages []string
}

func (r *recordingMonitor) Start(_ *core.Query)            { r.stages = append(r.stages, "start") }
func (r *recordingMonitor) AfterNormalize(_ string)        { r.stages = append(r.stages, "normalize") }
func (r *recordingMonitor) AfterEncoding(_ []float32)      { r.stages = append(r.stages, "encode") }
func (r *recordingMonitor) AfterShortlist(_ []index.Hit)   { r.stages = append(r.stages, "shortlist") }
func (r *recordingMonitor) AfterRank(_ []core.Candidate)   { r.stages = append(r.stages, "rank") }
func (r *recordingMonitor) Finish(_ *core.MatchResult)     { r.stages = append(r.stages, "finish") }

func TestResolveWithMonitor_StageOrder(t *testing.T) {
	f := newFixture(t)
	monitor := &recordingMonitor{}

	_, err := f.matcher.ResolveWithMonitor(context.Background(), "John Smith", monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "normalize", "encode", "shortlist", "rank", "finish"}, monitor.stages)
}
