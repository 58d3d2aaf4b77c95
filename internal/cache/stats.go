package cache

import "sync/atomic"

// StatsMode is the compile-time marker selecting whether a
// StatsCacheWrapper records anything (spec §4.7 "compile-time statistics
// toggle"). Go has no type-level generic specialization the way the
// source language's marker-trait + monomorphization does, so the two
// variants are modeled as distinct wrapper constructors
// (NewStatsWrapper / NewPassthroughWrapper) over the same generic type;
// the disabled constructor's returned wrapper never touches the stats
// struct, which is the closest a non-specializing generics system gets to
// "eliminated entirely" — see DESIGN.md.
type StatsMode int

const (
	StatsDisabled StatsMode = iota
	StatsEnabled
)

// Stats holds hit/miss/eviction counters recorded by an enabled
// StatsCacheWrapper.
type Stats struct {
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

func (s *Stats) HitRate() float64 {
	h := s.hits.Load()
	m := s.misses.Load()
	total := h + m
	if total == 0 {
		return 0
	}
	return float64(h) / float64(total)
}

func (s *Stats) Reset() {
	s.hits.Store(0)
	s.misses.Store(0)
	s.evictions.Store(0)
}

func (s *Stats) Hits() uint64      { return s.hits.Load() }
func (s *Stats) Misses() uint64    { return s.misses.Load() }
func (s *Stats) Evictions() uint64 { return s.evictions.Load() }

// StatsCacheWrapper wraps any Cache[K,V] and, when mode is StatsEnabled,
// records hits/misses. When mode is StatsDisabled every call delegates
// straight through to inner with zero added bookkeeping, satisfying spec
// §8's "Stats wrapper transparency" property: a StatsDisabled wrapper
// returns results identical to the underlying cache.
type StatsCacheWrapper[K comparable, V any] struct {
	inner Cache[K, V]
	mode  StatsMode
	stats Stats
}

// NewStatsWrapper returns a wrapper that records hit/miss/eviction stats.
func NewStatsWrapper[K comparable, V any](inner Cache[K, V]) *StatsCacheWrapper[K, V] {
	return &StatsCacheWrapper[K, V]{inner: inner, mode: StatsEnabled}
}

// NewPassthroughWrapper returns a wrapper that records nothing and is
// behaviorally identical to inner.
func NewPassthroughWrapper[K comparable, V any](inner Cache[K, V]) *StatsCacheWrapper[K, V] {
	return &StatsCacheWrapper[K, V]{inner: inner, mode: StatsDisabled}
}

func (w *StatsCacheWrapper[K, V]) Get(key K) (V, bool) {
	v, ok := w.inner.Get(key)
	if w.mode == StatsEnabled {
		if ok {
			w.stats.hits.Add(1)
		} else {
			w.stats.misses.Add(1)
		}
	}
	return v, ok
}

func (w *StatsCacheWrapper[K, V]) Put(key K, value V) {
	if w.mode != StatsEnabled {
		w.inner.Put(key, value)
		return
	}
	isNewKey := !w.inner.Contains(key)
	before := w.inner.Len()
	w.inner.Put(key, value)
	after := w.inner.Len()
	// A new key that did not grow the cache means an existing entry was
	// evicted to make room.
	if isNewKey && after <= before {
		w.stats.evictions.Add(1)
	}
}

func (w *StatsCacheWrapper[K, V]) Contains(key K) bool { return w.inner.Contains(key) }
func (w *StatsCacheWrapper[K, V]) Remove(key K) bool   { return w.inner.Remove(key) }
func (w *StatsCacheWrapper[K, V]) Clear() {
	w.inner.Clear()
	if w.mode == StatsEnabled {
		w.stats.Reset()
	}
}
func (w *StatsCacheWrapper[K, V]) Len() int      { return w.inner.Len() }
func (w *StatsCacheWrapper[K, V]) IsEmpty() bool { return w.inner.IsEmpty() }

// Stats returns the recorded statistics. For a StatsDisabled wrapper this
// is always the zero value.
func (w *StatsCacheWrapper[K, V]) Stats() *Stats { return &w.stats }

func (w *StatsCacheWrapper[K, V]) Mode() StatsMode { return w.mode }
