package resolvit

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/resolvit/ai/mock"
	"github.com/poiesic/resolvit/core"
	"github.com/poiesic/resolvit/store"
)

func fixtureSource(t *testing.T) *store.FileSource {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.yaml")
	content := `
records:
  - display_name: "John Smith"
    metadata:
      popularity: 0.9
  - display_name: "Jane Smith"
  - display_name: "Ada Lovelace"
  - display_name: "José Müller"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return store.NewFileSource(path)
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()
	resolver, err := NewResolver(fixtureSource(t), nil, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { resolver.Close() })
	return resolver
}

func TestNewResolver_RequiresSource(t *testing.T) {
	_, err := NewResolver(nil, nil, WithProvider(mock.NewMockProvider()))
	assert.ErrorIs(t, err, ErrSourceRequired)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Threshold = 1.5
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.ShortlistSize = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.QueryTimeout = 0
	assert.Error(t, bad.Validate())
}

func TestResolver_EndToEnd(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()

	require.NoError(t, resolver.Refresh(ctx))
	require.NotNil(t, resolver.Snapshot())
	assert.Equal(t, 4, resolver.Snapshot().Len())

	result, err := resolver.Resolve(ctx, "John Smith")
	require.NoError(t, err)
	assert.Equal(t, core.ResolvedViaDirect, result.Resolved)
	assert.Equal(t, "John Smith", result.Top().DisplayName)

	// Accented input resolves through normalization.
	result, err = resolver.Resolve(ctx, "jose muller")
	require.NoError(t, err)
	assert.Equal(t, "José Müller", result.Top().DisplayName)
}

func TestResolver_CacheRoundTrip(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()
	require.NoError(t, resolver.Refresh(ctx))

	_, err := resolver.Resolve(ctx, "Ada Lovelace")
	require.NoError(t, err)

	cached, err := resolver.Resolve(ctx, "ada lovelace")
	require.NoError(t, err)
	assert.Equal(t, core.ResolvedViaCache, cached.Resolved)

	stats := resolver.CacheStats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, 1, stats.Entries)
}

func TestResolver_RefreshPurgesCache(t *testing.T) {
	resolver := newTestResolver(t)
	ctx := context.Background()
	require.NoError(t, resolver.Refresh(ctx))

	_, err := resolver.Resolve(ctx, "Ada Lovelace")
	require.NoError(t, err)
	require.Equal(t, 1, resolver.CacheStats().Entries)

	require.NoError(t, resolver.Refresh(ctx))
	assert.Equal(t, 0, resolver.CacheStats().Entries)
}

func TestResolver_ResolveBeforeRefresh(t *testing.T) {
	resolver := newTestResolver(t)

	_, err := resolver.Resolve(context.Background(), "John Smith")
	assert.Error(t, err)
}

type stubVectorCache struct {
	entries map[string][]float32
}

func newStubVectorCache() *stubVectorCache {
	return &stubVectorCache{entries: make(map[string][]float32)}
}

func (c *stubVectorCache) GetVector(_ context.Context, model, normText string) ([]float32, bool, error) {
	v, ok := c.entries[model+"|"+normText]
	return v, ok, nil
}

func (c *stubVectorCache) PutVector(_ context.Context, model, normText string, vector []float32) error {
	c.entries[model+"|"+normText] = vector
	return nil
}

var _ store.VectorCache = (*stubVectorCache)(nil)

func TestNewResolver_VectorCacheRequiresModel(t *testing.T) {
	// A custom provider carries no model name, so the cache key must come
	// from the option itself.
	_, err := NewResolver(fixtureSource(t), nil,
		WithProvider(mock.NewMockProvider()),
		WithVectorCache(newStubVectorCache(), ""))
	assert.ErrorIs(t, err, ErrEmbeddingModelRequired)
}

func TestResolver_VectorCacheKeyedByModel(t *testing.T) {
	vectors := newStubVectorCache()
	resolver, err := NewResolver(fixtureSource(t), nil,
		WithProvider(mock.NewMockProvider()),
		WithVectorCache(vectors, "test-embed"))
	require.NoError(t, err)
	defer resolver.Close()

	require.NoError(t, resolver.Refresh(context.Background()))

	require.Len(t, vectors.entries, 4)
	for key := range vectors.entries {
		assert.True(t, strings.HasPrefix(key, "test-embed|"), "key %q", key)
	}
}

func TestResolver_SourceOutageKeepsServing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte("records:\n  - display_name: \"John Smith\"\n"), 0644))

	config := DefaultConfig()
	config.MaxRetries = 1
	config.RetryBaseDelay = time.Millisecond
	resolver, err := NewResolver(store.NewFileSource(path), config, WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer resolver.Close()

	ctx := context.Background()
	require.NoError(t, resolver.Refresh(ctx))

	// Store disappears; refresh fails but the installed snapshot serves on.
	require.NoError(t, os.Remove(path))
	require.Error(t, resolver.Refresh(ctx))

	result, err := resolver.Resolve(ctx, "John Smith")
	require.NoError(t, err)
	assert.Equal(t, "John Smith", result.Top().DisplayName)
}
