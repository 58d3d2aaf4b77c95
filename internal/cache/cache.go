// Package cache implements the strategy-polymorphic cache library of spec
// §4.7: a single Cache[K,V] contract with LRU/LFU/FIFO/TTL/Unbounded/
// Adaptive strategies, a compile-time statistics toggle, and a
// process-wide registry. Grounded on straga-Mimir_lite's QueryCache
// (pkg/cache/query_cache.go) for the LRU+TTL+stats shape, generalized to
// a generic Cache[K,V] contract with multiple interchangeable strategies
// instead of one fixed cache type.
package cache

import "errors"

// ErrZeroCapacity is returned by constructors that require a positive
// bounded capacity (spec §8 "Zero-sized cache capacity is rejected").
var ErrZeroCapacity = errors.New("cache: capacity must be positive")

// ErrZeroTTL is returned when a zero TTL is supplied where a positive one
// is required (spec §8 "Zero-sized TTL is rejected").
var ErrZeroTTL = errors.New("cache: ttl must be positive")

// Cache is the strategy-polymorphic contract every concrete cache
// implements (spec §4.7). Implementations guard their mutable state under
// a single internal lock and are safe to share across goroutines.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Contains(key K) bool
	Remove(key K) bool
	Clear()
	Len() int
	IsEmpty() bool
}
