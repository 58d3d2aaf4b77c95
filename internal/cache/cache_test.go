package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUZeroCapacityRejected(t *testing.T) {
	_, err := NewLRU[string, int](0)
	assert.ErrorIs(t, err, ErrZeroCapacity)
}

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := NewLRU[string, int](2)
	require.NoError(t, err)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most-recently-used; b is the LRU victim
	c.Put("c", 3)

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"), "b was the least-recently-used and should have been evicted")
	assert.True(t, c.Contains("c"))
	assert.LessOrEqual(t, c.Len(), 2, "cache bound: len must never exceed capacity")
}

func TestCacheHitRateScenario(t *testing.T) {
	// spec §8 scenario 5: LRU capacity 3, put A,B,C,A,D -> hit_rate 1/5,
	// B evicted, len=3, contents {A,C,D}.
	lru, err := NewLRU[string, int](3)
	require.NoError(t, err)
	wrapped := NewStatsWrapper[string, int](lru)

	ops := []string{"A", "B", "C", "A", "D"}
	for _, k := range ops {
		if _, ok := wrapped.Get(k); !ok {
			wrapped.Put(k, 0)
		}
	}

	assert.InDelta(t, 0.2, wrapped.Stats().HitRate(), 1e-9)
	assert.Equal(t, 3, wrapped.Len())
	assert.False(t, wrapped.Contains("B"), "B must have been evicted")
	assert.True(t, wrapped.Contains("A"))
	assert.True(t, wrapped.Contains("C"))
	assert.True(t, wrapped.Contains("D"))
}

func TestStatsDisabledWrapperIsTransparent(t *testing.T) {
	direct, err := NewLRU[string, int](2)
	require.NoError(t, err)
	wrappedBacking, err := NewLRU[string, int](2)
	require.NoError(t, err)
	wrapped := NewPassthroughWrapper[string, int](wrappedBacking)

	ops := []struct {
		key string
		put bool
		val int
	}{{"a", true, 1}, {"b", true, 2}, {"a", false, 0}, {"c", true, 3}, {"a", false, 0}}

	for _, op := range ops {
		if op.put {
			direct.Put(op.key, op.val)
			wrapped.Put(op.key, op.val)
		} else {
			dv, dok := direct.Get(op.key)
			wv, wok := wrapped.Get(op.key)
			assert.Equal(t, dok, wok)
			assert.Equal(t, dv, wv)
		}
	}
	assert.Equal(t, direct.Len(), wrapped.Len())
	assert.Equal(t, uint64(0), wrapped.Stats().Hits(), "disabled wrapper records nothing")
}

func TestTTLZeroRejected(t *testing.T) {
	_, err := NewTTL[string, int](0)
	assert.ErrorIs(t, err, ErrZeroTTL)
}

func TestTTLExpiry(t *testing.T) {
	c, err := NewTTL[string, int](10 * time.Millisecond)
	require.NoError(t, err)
	c.Put("a", 1)
	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	time.Sleep(20 * time.Millisecond)
	_, ok = c.Get("a")
	assert.False(t, ok, "entry must expire after its ttl")
}

func TestFIFOEvictsInInsertionOrder(t *testing.T) {
	c, err := NewFIFO[string, int](2)
	require.NoError(t, err)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // access does not protect FIFO entries
	c.Put("c", 3)
	assert.False(t, c.Contains("a"), "FIFO evicts oldest inserted regardless of access")
	assert.True(t, c.Contains("b"))
	assert.True(t, c.Contains("c"))
}

func TestLFUEvictsLeastFrequentlyUsed(t *testing.T) {
	c, err := NewLFU[string, int](2)
	require.NoError(t, err)
	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Get("a")
	c.Put("c", 3)
	assert.False(t, c.Contains("b"), "b has the lowest access frequency")
	assert.True(t, c.Contains("a"))
	assert.True(t, c.Contains("c"))
}

func TestAdaptiveHybridLenDoubleCounts(t *testing.T) {
	a, err := NewAdaptive[string, int](10, ModeHybrid)
	require.NoError(t, err)
	a.Put("x", 1)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, a.lru.Len())
	assert.Equal(t, 1, a.lfu.Len())
}

func TestAdaptiveModeSwitching(t *testing.T) {
	a, err := NewAdaptive[string, int](10, ModeLRUOnly)
	require.NoError(t, err)
	a.Put("x", 1)
	assert.True(t, a.lru.Contains("x"))
	assert.False(t, a.lfu.Contains("x"), "LRU-only mode must not write through to LFU")

	a.SetMode(ModeLFUOnly)
	a.Put("y", 2)
	assert.True(t, a.lfu.Contains("y"))
}

func TestGlobalCacheManagerRegistryUniqueness(t *testing.T) {
	m, err := InitGlobalCacheManager()
	if err != nil {
		t.Skip("global cache manager already initialized by another test in this run")
	}
	require.NoError(t, m.Registry.Register(Metadata{Name: "keywords", Strategy: "lru", Capacity: 128}))
	err = m.Registry.Register(Metadata{Name: "keywords", Strategy: "lru", Capacity: 128})
	assert.Error(t, err, "duplicate registry name must be rejected")

	err = m.Registry.Register(Metadata{Name: "", Strategy: "lru", Capacity: 1})
	assert.Error(t, err, "empty name must be rejected")
}

func TestParserCachePresets(t *testing.T) {
	set, err := NewParserCacheSet(ParserCachePreset(PresetTesting))
	require.NoError(t, err)
	set.Keywords.Put("MATCH", true)
	v, ok := set.Keywords.Get("MATCH")
	require.True(t, ok)
	assert.True(t, v)
}
