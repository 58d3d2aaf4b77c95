package cache

import (
	"fmt"
	"sync"
)

// Metadata describes one cache registered in the GlobalCacheManager.
type Metadata struct {
	Name     string
	Strategy string
	Capacity int
}

// Collector is the process-level hit/miss/eviction counter aggregated
// across every registered cache (spec §4.7 "CacheStatsCollector").
type Collector struct {
	mu   sync.Mutex
	totalHits, totalMisses, totalEvictions uint64
}

func (c *Collector) Record(hits, misses, evictions uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalHits += hits
	c.totalMisses += misses
	c.totalEvictions += evictions
}

func (c *Collector) Totals() (hits, misses, evictions uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalHits, c.totalMisses, c.totalEvictions
}

// Registry is a name -> Metadata table guarded by a single reader-writer
// lock (spec §5 "the schema catalog, index catalog, and cache registry
// use a single reader-writer lock each").
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Metadata
}

func newRegistry() *Registry {
	return &Registry{entries: make(map[string]Metadata)}
}

// Register adds metadata under name. Names must be non-empty and unique
// (spec §4.7 "Names are non-empty strings and unique within the
// registry").
func (r *Registry) Register(meta Metadata) error {
	if meta.Name == "" {
		return fmt.Errorf("cache: registry name must be non-empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[meta.Name]; exists {
		return fmt.Errorf("cache: %q is already registered", meta.Name)
	}
	r.entries[meta.Name] = meta
	return nil
}

func (r *Registry) Lookup(name string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.entries[name]
	return m, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	return names
}

// GlobalCacheManager is the process-wide registry + stats collector (spec
// §4.7 "Global registry"; one of spec §5's four permitted global
// singletons). Initialization is once-only; a second Init call fails.
type GlobalCacheManager struct {
	Registry  *Registry
	Collector *Collector
}

var (
	globalManager   *GlobalCacheManager
	globalManagerMu sync.Mutex
)

// InitGlobalCacheManager performs the one-time initialization. A second
// call returns an error rather than silently reinitializing (spec §4.7
// "reinitialization attempts fail with a clear error").
func InitGlobalCacheManager() (*GlobalCacheManager, error) {
	globalManagerMu.Lock()
	defer globalManagerMu.Unlock()
	if globalManager != nil {
		return nil, fmt.Errorf("cache: global cache manager already initialized")
	}
	globalManager = &GlobalCacheManager{Registry: newRegistry(), Collector: &Collector{}}
	return globalManager, nil
}

// Global returns the process-wide manager, lazily initializing it on
// first use if InitGlobalCacheManager was never called explicitly.
func Global() *GlobalCacheManager {
	globalManagerMu.Lock()
	defer globalManagerMu.Unlock()
	if globalManager == nil {
		globalManager = &GlobalCacheManager{Registry: newRegistry(), Collector: &Collector{}}
	}
	return globalManager
}
