// Package arena implements the short-lived bump allocator of spec §2
// ("Arena + MurmurHash"): bulk allocation for parsing/planning that never
// exposes raw pointers across subsystem boundaries, only typed handles
// (spec §9 "Arena allocator with pointer-returning API" → "Bump allocator
// yielding typed indices/handles").
package arena

import "github.com/kkkqkx123/graphdb/internal/ids"

// Handle is an opaque reference into an Arena's backing slice. It is
// valid only for the Arena that produced it and only until that Arena is
// Reset.
type Handle int32

const invalidHandle Handle = -1

// Arena is a bump allocator for values of type T: Alloc appends and
// returns a Handle; Get dereferences a Handle; Reset drops every
// allocation at once by truncating the backing slice, the canonical
// bump-allocator reset.
type Arena[T any] struct {
	items []T
}

func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// NewWithCapacity pre-sizes the backing slice to avoid reallocation
// during a known-size parse/plan pass.
func NewWithCapacity[T any](capacity int) *Arena[T] {
	return &Arena[T]{items: make([]T, 0, capacity)}
}

func (a *Arena[T]) Alloc(value T) Handle {
	a.items = append(a.items, value)
	return Handle(len(a.items) - 1)
}

func (a *Arena[T]) Get(h Handle) (T, bool) {
	var zero T
	if h < 0 || int(h) >= len(a.items) {
		return zero, false
	}
	return a.items[h], true
}

// Set overwrites the value at an existing handle; it does not allocate.
func (a *Arena[T]) Set(h Handle, value T) bool {
	if h < 0 || int(h) >= len(a.items) {
		return false
	}
	a.items[h] = value
	return true
}

func (a *Arena[T]) Len() int { return len(a.items) }

// Reset discards every allocation, retaining the backing array's
// capacity for reuse by the next parse/plan pass.
func (a *Arena[T]) Reset() {
	a.items = a.items[:0]
}

// InternTable is a specialization used to intern strings to stable
// IDs during parsing/planning (e.g. identifier names), backed by
// MurmurHash2 for the hash-bucket key, matching the Arena+MurmurHash
// pairing in spec §2.
type InternTable struct {
	byHash map[uint32][]string
	ids    map[string]int32
	names  []string
}

func NewInternTable() *InternTable {
	return &InternTable{byHash: make(map[uint32][]string), ids: make(map[string]int32)}
}

// Intern returns a stable small integer id for s, allocating a new one on
// first occurrence. The id is an index into the table's name slice and is
// stable for the table's lifetime (it is not a VertexId/EdgeId — those
// use ids.MurmurHash2 directly via ids.VertexIdFromString).
func (t *InternTable) Intern(s string) int32 {
	if id, ok := t.ids[s]; ok {
		return id
	}
	h := ids.MurmurHash2String(s, 0)
	t.byHash[h] = append(t.byHash[h], s)
	id := int32(len(t.names))
	t.names = append(t.names, s)
	t.ids[s] = id
	return id
}

func (t *InternTable) Lookup(id int32) (string, bool) {
	if id < 0 || int(id) >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

func (t *InternTable) Len() int { return len(t.names) }
