package planner

import "sync"

// SymbolTable tracks the type/arity of every bound pattern variable during
// lowering. Grounded on the source's SharedSymbolTable; spec §9's Open
// Question explicitly preserves its "clone-the-whole-map-under-the-read-
// lock" Snapshot behavior rather than optimizing it, since contention is
// negligible at query-plan cardinality (DESIGN.md Open Question decision 1).
type SymbolTable struct {
	mu      sync.RWMutex
	symbols map[string]string // variable -> a description of its bound kind ("vertex", "edge", "scalar", ...)
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]string)}
}

func (t *SymbolTable) Bind(variable, kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.symbols[variable] = kind
}

func (t *SymbolTable) Lookup(variable string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	kind, ok := t.symbols[variable]
	return kind, ok
}

// Snapshot clones the entire symbol map under the read lock — preserved
// verbatim per the Open Question above; do not replace with a
// copy-on-write or reference-counted scheme without first measuring
// contention.
func (t *SymbolTable) Snapshot() map[string]string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cp := make(map[string]string, len(t.symbols))
	for k, v := range t.symbols {
		cp[k] = v
	}
	return cp
}
