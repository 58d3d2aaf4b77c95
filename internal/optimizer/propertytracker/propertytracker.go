// Package propertytracker implements spec.md §4.5's property tracker: "a
// map variable -> set<property> aggregated top-down; any property not
// used by any upstream node is eligible for pruning at the scan level.
// This feeds both projection pushdown (rewrite) and covering-index
// selection (CBO)." Grounded on original_source's
// src/query/optimizer/property_tracker.rs, carried over "verbatim in
// spirit" per SPEC_FULL.md's supplemented-features note — same
// accumulate-top-down algorithm, expressed with Go maps/sets instead of a
// Rust HashMap<String, HashSet<String>>.
package propertytracker

import (
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
)

// Tracker accumulates, per variable, the set of properties some node
// upstream in the plan actually reads.
type Tracker struct {
	used map[string]map[string]bool
}

func New() *Tracker {
	return &Tracker{used: make(map[string]map[string]bool)}
}

// Mark records that variable.property is read somewhere in the plan.
func (t *Tracker) Mark(variable, property string) {
	set, ok := t.used[variable]
	if !ok {
		set = make(map[string]bool)
		t.used[variable] = set
	}
	set[property] = true
}

// Used reports whether variable.property was marked as read.
func (t *Tracker) Used(variable, property string) bool {
	set, ok := t.used[variable]
	if !ok {
		return false
	}
	return set[property]
}

// Properties returns the accumulated property set for variable, in no
// particular order.
func (t *Tracker) Properties(variable string) []string {
	set, ok := t.used[variable]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	return out
}

// Track walks n top-down, aggregating every property any node's Attrs
// expressions reference via expr.KindProperty, and returns the populated
// Tracker. Top-down here means a node's own reads are recorded before its
// children are visited, matching the Rust original's traversal order;
// since the result is a set accumulation, the traversal order doesn't
// change the final contents, only matches the original's code shape.
func Track(n *plan.Node) *Tracker {
	t := New()
	var walk func(*plan.Node)
	walk = func(node *plan.Node) {
		if node == nil {
			return
		}
		markAttrs(t, node.Attrs)
		for _, c := range node.Children {
			walk(c)
		}
	}
	walk(n)
	return t
}

func markAttrs(t *Tracker, attrs any) {
	switch a := attrs.(type) {
	case plan.FilterAttrs:
		markExpr(t, a.Predicate)
	case plan.ProjectAttrs:
		for _, it := range a.Items {
			markExpr(t, it.Expr)
		}
	case plan.JoinAttrs:
		markExpr(t, a.On)
	case plan.AggregateAttrs:
		for _, call := range a.Aggs {
			markExpr(t, call.Arg)
		}
	case plan.UnwindAttrs:
		markExpr(t, a.Source)
	}
}

func markExpr(t *Tracker, e *expr.Expr) {
	if e == nil {
		return
	}
	switch e.Kind {
	case expr.KindProperty:
		t.Mark(e.PropBase, e.PropName)
	case expr.KindBinary:
		markExpr(t, e.Left)
		markExpr(t, e.Right)
	case expr.KindUnary:
		markExpr(t, e.Operand)
	case expr.KindCall:
		for _, arg := range e.Args {
			markExpr(t, arg)
		}
	}
}

// PrunableProperties reports which of allProperties on variable were never
// marked as used anywhere in the tracked plan — the set §4.5 calls
// "eligible for pruning at the scan level".
func (t *Tracker) PrunableProperties(variable string, allProperties []string) []string {
	var prunable []string
	for _, p := range allProperties {
		if !t.Used(variable, p) {
			prunable = append(prunable, p)
		}
	}
	return prunable
}
