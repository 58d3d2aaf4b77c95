package kv

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory, single-writer Store used by tests and by
// Durability-None bulk-load scenarios. It mirrors the shape of
// BadgerStore so internal/txn can be exercised without a real database
// file, the way the teacher keeps a MemoryEngine alongside BadgerEngine
// (straga-Mimir_lite pkg/storage/types.go, pkg/storage/badger.go).
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) NewTxn(_ context.Context, update bool) (Txn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, ErrClosed
	}
	snapshot := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		snapshot[k] = v
	}
	return &memoryTxn{store: m, snapshot: snapshot, writes: make(map[string][]byte), deletes: make(map[string]bool), update: update}, nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

type memoryTxn struct {
	store    *MemoryStore
	snapshot map[string][]byte
	writes   map[string][]byte
	deletes  map[string]bool
	update   bool
	done     bool
}

func (t *memoryTxn) Get(key []byte) ([]byte, error) {
	k := string(key)
	if t.deletes[k] {
		return nil, ErrNotFound
	}
	if v, ok := t.writes[k]; ok {
		return v, nil
	}
	if v, ok := t.snapshot[k]; ok {
		return v, nil
	}
	return nil, ErrNotFound
}

func (t *memoryTxn) Set(key, value []byte) error {
	if !t.update {
		return ErrReadOnly
	}
	k := string(key)
	delete(t.deletes, k)
	t.writes[k] = append([]byte(nil), value...)
	return nil
}

func (t *memoryTxn) Delete(key []byte) error {
	if !t.update {
		return ErrReadOnly
	}
	k := string(key)
	delete(t.writes, k)
	t.deletes[k] = true
	return nil
}

func (t *memoryTxn) merged() map[string][]byte {
	out := make(map[string][]byte, len(t.snapshot))
	for k, v := range t.snapshot {
		out[k] = v
	}
	for k, v := range t.writes {
		out[k] = v
	}
	for k := range t.deletes {
		delete(out, k)
	}
	return out
}

func (t *memoryTxn) Scan(prefix []byte) Iterator {
	return t.ScanRange(prefix, PrefixUpperBound(prefix))
}

func (t *memoryTxn) ScanRange(start, end []byte) Iterator {
	all := t.merged()
	keys := make([]string, 0, len(all))
	for k := range all {
		kb := []byte(k)
		if cmp(kb, start) < 0 {
			continue
		}
		if end != nil && cmp(kb, end) >= 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	items := make([]Item, len(keys))
	for i, k := range keys {
		items[i] = Item{Key: []byte(k), Value: all[k]}
	}
	return &sliceIterator{items: items, idx: -1}
}

func (t *memoryTxn) Commit() error {
	if t.done {
		return nil
	}
	if !t.update {
		t.done = true
		return nil
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	// Optimistic conflict check: if a key this txn writes was present in
	// its read snapshot and the store's current value differs, fail. Keys
	// absent from the snapshot, keys removed from the store since, and
	// this txn's deletes are not checked.
	for k := range t.writes {
		if cur, ok := t.store.data[k]; ok {
			if snap, had := t.snapshot[k]; !had || string(snap) != string(cur) {
				if _, wasSeen := t.snapshot[k]; wasSeen {
					return ErrConflict
				}
			}
		}
	}
	for k, v := range t.writes {
		t.store.data[k] = v
	}
	for k := range t.deletes {
		delete(t.store.data, k)
	}
	t.done = true
	return nil
}

func (t *memoryTxn) Discard() { t.done = true }
func (t *memoryTxn) ReadOnly() bool { return !t.update }

type sliceIterator struct {
	items []Item
	idx   int
}

func (s *sliceIterator) Next() bool {
	s.idx++
	return s.idx < len(s.items)
}

func (s *sliceIterator) Item() Item { return s.items[s.idx] }
func (s *sliceIterator) Close()     {}
