package cache

import "sync"

// AdaptiveMode is the internal switch position of an Adaptive cache (spec
// §4.7 "Adaptive strategy").
type AdaptiveMode int

const (
	ModeLRUOnly AdaptiveMode = iota
	ModeLFUOnly
	ModeHybrid
)

// Adaptive holds both an LRU and an LFU instance and switches between
// three modes. In Hybrid mode, reads and writes go to both instances.
//
// Len() in Hybrid mode returns max(lru.Len(), lfu.Len()), which
// double-counts entries present in both backing caches. This is the
// documented behavior preserved from the source design (see DESIGN.md
// Open Question decisions) — not fixed here.
type Adaptive[K comparable, V any] struct {
	mu   sync.Mutex
	mode AdaptiveMode
	lru  *LRU[K, V]
	lfu  *LFU[K, V]
}

func NewAdaptive[K comparable, V any](capacity int, mode AdaptiveMode) (*Adaptive[K, V], error) {
	lru, err := NewLRU[K, V](capacity)
	if err != nil {
		return nil, err
	}
	lfu, err := NewLFU[K, V](capacity)
	if err != nil {
		return nil, err
	}
	return &Adaptive[K, V]{mode: mode, lru: lru, lfu: lfu}, nil
}

// SetMode switches the active strategy; existing entries in the
// now-inactive backing cache(s) are left in place so a later switch back
// sees them again.
func (c *Adaptive[K, V]) SetMode(mode AdaptiveMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mode = mode
}

func (c *Adaptive[K, V]) Mode() AdaptiveMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *Adaptive[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()

	switch mode {
	case ModeLRUOnly:
		return c.lru.Get(key)
	case ModeLFUOnly:
		return c.lfu.Get(key)
	default: // Hybrid: read from both, prefer LRU's hit
		if v, ok := c.lru.Get(key); ok {
			c.lfu.Get(key)
			return v, true
		}
		return c.lfu.Get(key)
	}
}

func (c *Adaptive[K, V]) Put(key K, value V) {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()

	switch mode {
	case ModeLRUOnly:
		c.lru.Put(key, value)
	case ModeLFUOnly:
		c.lfu.Put(key, value)
	default:
		c.lru.Put(key, value)
		c.lfu.Put(key, value)
	}
}

func (c *Adaptive[K, V]) Contains(key K) bool {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	switch mode {
	case ModeLRUOnly:
		return c.lru.Contains(key)
	case ModeLFUOnly:
		return c.lfu.Contains(key)
	default:
		return c.lru.Contains(key) || c.lfu.Contains(key)
	}
}

func (c *Adaptive[K, V]) Remove(key K) bool {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	switch mode {
	case ModeLRUOnly:
		return c.lru.Remove(key)
	case ModeLFUOnly:
		return c.lfu.Remove(key)
	default:
		removedLRU := c.lru.Remove(key)
		removedLFU := c.lfu.Remove(key)
		return removedLRU || removedLFU
	}
}

func (c *Adaptive[K, V]) Clear() {
	c.lru.Clear()
	c.lfu.Clear()
}

// Len follows the mode: single-strategy modes report that backing
// cache's length; Hybrid mode reports max(lru.Len(), lfu.Len()),
// preserved as a known double-counting quirk (see type doc comment).
func (c *Adaptive[K, V]) Len() int {
	c.mu.Lock()
	mode := c.mode
	c.mu.Unlock()
	switch mode {
	case ModeLRUOnly:
		return c.lru.Len()
	case ModeLFUOnly:
		return c.lfu.Len()
	default:
		l, f := c.lru.Len(), c.lfu.Len()
		if l > f {
			return l
		}
		return f
	}
}

func (c *Adaptive[K, V]) IsEmpty() bool { return c.Len() == 0 }
