package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/resolvit/core"
)

func result(query string) *core.MatchResult {
	return &core.MatchResult{
		QueryText:  query,
		Candidates: []core.Candidate{{RecordId: 1, DisplayName: "John Smith", FusedScore: 0.9}},
		Confidence: 0.9,
		Resolved:   core.ResolvedViaDirect,
	}
}

func TestCache_PutGet(t *testing.T) {
	c := New(64, time.Minute)

	_, ok := c.Get("john smith")
	assert.False(t, ok)

	c.Put("john smith", result("john smith"))
	got, ok := c.Get("john smith")
	require.True(t, ok)
	assert.Equal(t, "john smith", got.QueryText)
	assert.Equal(t, core.ResolvedViaDirect, got.Resolved)
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New(64, 20*time.Millisecond)

	c.Put("john smith", result("john smith"))
	_, ok := c.Get("john smith")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("john smith")
	assert.False(t, ok)
}

func TestCache_Purge(t *testing.T) {
	c := New(64, time.Minute)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("query %d", i)
		c.Put(key, result(key))
	}
	assert.Equal(t, 20, c.Stats().Entries)

	c.Purge()
	assert.Equal(t, 0, c.Stats().Entries)

	_, ok := c.Get("query 3")
	assert.False(t, ok)
}

func TestCache_Stats(t *testing.T) {
	c := New(64, time.Minute)

	c.Put("john smith", result("john smith"))
	c.Get("john smith")
	c.Get("john smith")
	c.Get("nobody")

	stats := c.Stats()
	assert.Equal(t, uint64(2), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Entries)
	assert.InDelta(t, 2.0/3.0, stats.HitRate(), 1e-9)
}

func TestCache_StatsSurvivePurge(t *testing.T) {
	c := New(64, time.Minute)

	c.Put("john smith", result("john smith"))
	c.Get("john smith")
	c.Purge()

	assert.Equal(t, uint64(1), c.Stats().Hits)
}

func TestCache_HitRateEmpty(t *testing.T) {
	assert.Equal(t, 0.0, New(16, time.Minute).Stats().HitRate())
}

func TestCache_SizeBound(t *testing.T) {
	// 16 entries across 16 shards: one per shard. Inserting many keys keeps
	// the total at or below capacity.
	c := New(16, time.Minute)

	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("query %d", i)
		c.Put(key, result(key))
	}
	assert.LessOrEqual(t, c.Stats().Entries, 16)
}
