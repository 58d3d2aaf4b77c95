// Heuristic rewrite rules, spec §4.4 step 2: "a fixed ruleset (predicate
// pushdown, projection pushdown, merge rules, elimination rules, limit/TopN
// pushdown, aggregate pushdown) runs to a fixed point". Grounded on spec
// §9's "Tagged-variant enums with dispatch helpers" guidance: each rule is
// a small struct implementing RewriteRule, switched over Kind rather than
// a class hierarchy.
package planner

import (
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
)

// RewriteRule is one named, independently disable-able rewrite. Matches
// reports whether the rule applies to n; Apply returns the rewritten node
// (which may be n unchanged, or a new tree). The interface has no separate
// placement gate: each rule checks in its own Matches/Apply which node
// kinds it may fire below or above.
type RewriteRule interface {
	Name() string
	Matches(n *plan.Node) bool
	Apply(n *plan.Node) *plan.Node
}

// DefaultRules returns every built-in rule in the fixed deterministic order
// the rewrite loop applies them in.
func DefaultRules() []RewriteRule {
	return []RewriteRule{
		eliminateTrivialFilter{},
		eliminateNoopProject{},
		eliminateDedupOnUniqueStream{},
		mergeAdjacentProjects{},
		fuseTopN{},
		pushdownPredicateThroughProject{},
		pushdownPredicateIntoScan{},
		pushdownLimitIntoScan{},
		pushdownAggregateIntoScan{},
	}
}

// Rewrite applies rules to root repeatedly until no rule fires or maxIter
// rounds elapse (spec §4.4 "bounded iteration count"), walking the tree
// bottom-up each round so child rewrites are visible to parent rules within
// the same round.
func Rewrite(root *plan.Node, rules []RewriteRule, maxIter int) *plan.Node {
	if root == nil {
		return nil
	}
	for i := 0; i < maxIter; i++ {
		rewritten, changed := rewriteOnce(root, rules)
		root = rewritten
		if !changed {
			break
		}
	}
	return root
}

func rewriteOnce(n *plan.Node, rules []RewriteRule) (*plan.Node, bool) {
	if n == nil {
		return nil, false
	}
	changed := false
	newChildren := make([]*plan.Node, len(n.Children))
	for i, c := range n.Children {
		rc, cchanged := rewriteOnce(c, rules)
		newChildren[i] = rc
		changed = changed || cchanged
	}
	n.Children = newChildren

	cur := n
	for _, r := range rules {
		if r.Matches(cur) {
			next := r.Apply(cur)
			if next != cur {
				changed = true
				cur = next
			}
		}
	}
	return cur, changed
}

// --- elimination rules ---

// eliminateTrivialFilter drops a Filter whose predicate is the literal
// boolean true (spec §4.4's elimination-rule family: "drop an always-true
// Filter").
type eliminateTrivialFilter struct{}

func (eliminateTrivialFilter) Name() string { return "eliminate_trivial_filter" }

func (eliminateTrivialFilter) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindFilter {
		return false
	}
	attrs, ok := n.Attrs.(plan.FilterAttrs)
	if !ok || attrs.Predicate == nil {
		return false
	}
	return attrs.Predicate.Kind == expr.KindLiteral && expr.Truthy(attrs.Predicate.Literal)
}

func (eliminateTrivialFilter) Apply(n *plan.Node) *plan.Node {
	if len(n.Children) == 0 {
		return n
	}
	return n.Children[0]
}

// eliminateNoopProject drops a Project whose items are exactly an identity
// mapping over its child's output columns (spec §4.4: "drop a no-op
// Project").
type eliminateNoopProject struct{}

func (eliminateNoopProject) Name() string { return "eliminate_noop_project" }

func (eliminateNoopProject) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindProject || len(n.Children) == 0 {
		return false
	}
	attrs, ok := n.Attrs.(plan.ProjectAttrs)
	if !ok {
		return false
	}
	child := n.Children[0]
	if len(attrs.Items) != len(child.OutputCols) {
		return false
	}
	for i, it := range attrs.Items {
		if it.Expr == nil || it.Expr.Kind != expr.KindVar {
			return false
		}
		if it.Expr.VarName != child.OutputCols[i] || it.Alias != child.OutputCols[i] {
			return false
		}
	}
	return true
}

func (eliminateNoopProject) Apply(n *plan.Node) *plan.Node {
	return n.Children[0]
}

// eliminateDedupOnUniqueStream drops a Dedup directly above an Aggregate,
// whose grouped output is already unique per group key (spec §4.4:
// "eliminate a Dedup that sits on an already-unique stream").
type eliminateDedupOnUniqueStream struct{}

func (eliminateDedupOnUniqueStream) Name() string { return "eliminate_redundant_dedup" }

func (eliminateDedupOnUniqueStream) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindDedup || len(n.Children) == 0 {
		return false
	}
	return n.Children[0].Kind == plan.KindAggregate
}

func (eliminateDedupOnUniqueStream) Apply(n *plan.Node) *plan.Node {
	return n.Children[0]
}

// --- merge rules ---

// mergeAdjacentProjects folds a Project directly feeding another Project
// into one node (spec §4.4: "fold consecutive Projects"), substituting the
// lower Project's expressions into the upper one's variable references
// where the upper item is a bare variable reference to a lower alias.
type mergeAdjacentProjects struct{}

func (mergeAdjacentProjects) Name() string { return "merge_adjacent_projects" }

func (mergeAdjacentProjects) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindProject || len(n.Children) == 0 {
		return false
	}
	return n.Children[0].Kind == plan.KindProject
}

func (mergeAdjacentProjects) Apply(n *plan.Node) *plan.Node {
	lower := n.Children[0]
	lowerAttrs, ok := lower.Attrs.(plan.ProjectAttrs)
	if !ok {
		return n
	}
	lowerByAlias := map[string]*expr.Expr{}
	for _, it := range lowerAttrs.Items {
		lowerByAlias[it.Alias] = it.Expr
	}
	upperAttrs, ok := n.Attrs.(plan.ProjectAttrs)
	if !ok {
		return n
	}
	merged := make([]plan.ProjectItem, len(upperAttrs.Items))
	for i, it := range upperAttrs.Items {
		e := it.Expr
		if e != nil && e.Kind == expr.KindVar {
			if sub, ok := lowerByAlias[e.VarName]; ok {
				e = sub
			}
		}
		merged[i] = plan.ProjectItem{Alias: it.Alias, Expr: e}
	}
	return &plan.Node{
		ID:         n.ID,
		Kind:       plan.KindProject,
		Children:   lower.Children,
		OutputCols: n.OutputCols,
		Properties: n.Properties,
		Attrs:      plan.ProjectAttrs{Items: merged},
	}
}

// fuseTopN coalesces an adjacent Sort followed by a Limit into one TopN
// node (spec §4.4: "ORDER BY/SKIP/LIMIT ... coalesced into TopN when
// adjacent"). Only fuses when Limit.Skip is zero, since TopN has no skip
// semantics.
type fuseTopN struct{}

func (fuseTopN) Name() string { return "fuse_topn" }

func (fuseTopN) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindLimit || len(n.Children) == 0 {
		return false
	}
	limitAttrs, ok := n.Attrs.(plan.LimitAttrs)
	if !ok || limitAttrs.Skip != 0 || limitAttrs.Count < 0 {
		return false
	}
	return n.Children[0].Kind == plan.KindSort
}

func (fuseTopN) Apply(n *plan.Node) *plan.Node {
	limitAttrs := n.Attrs.(plan.LimitAttrs)
	sortNode := n.Children[0]
	sortAttrs, ok := sortNode.Attrs.(plan.SortAttrs)
	if !ok || len(sortNode.Children) == 0 {
		return n
	}
	return &plan.Node{
		ID:         n.ID,
		Kind:       plan.KindTopN,
		Children:   sortNode.Children,
		OutputCols: n.OutputCols,
		Properties: n.Properties,
		Attrs:      plan.TopNAttrs{Keys: sortAttrs.Keys, Count: limitAttrs.Count},
	}
}

// --- pushdown rules ---

// pushdownPredicateThroughProject moves a Filter below a Project that
// doesn't shadow the predicate's referenced columns (spec §4.4: "predicate
// pushdown: move a Filter below a Project ... when safe").
type pushdownPredicateThroughProject struct{}

func (pushdownPredicateThroughProject) Name() string { return "pushdown_predicate_through_project" }

func (pushdownPredicateThroughProject) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindFilter || len(n.Children) == 0 {
		return false
	}
	return n.Children[0].Kind == plan.KindProject
}

func (pushdownPredicateThroughProject) Apply(n *plan.Node) *plan.Node {
	proj := n.Children[0]
	if len(proj.Children) == 0 {
		return n
	}
	filterAttrs, ok := n.Attrs.(plan.FilterAttrs)
	if !ok {
		return n
	}
	below := proj.Children[0]
	for _, col := range referencedVars(filterAttrs.Predicate) {
		found := false
		for _, c := range below.OutputCols {
			if c == col {
				found = true
				break
			}
		}
		if !found {
			return n // predicate needs a projected (computed) column; cannot push below it
		}
	}
	newFilter := &plan.Node{
		ID:         n.ID,
		Kind:       plan.KindFilter,
		Children:   []*plan.Node{below},
		OutputCols: below.OutputCols,
		Properties: n.Properties,
		Attrs:      n.Attrs,
	}
	return &plan.Node{
		ID:         proj.ID,
		Kind:       plan.KindProject,
		Children:   []*plan.Node{newFilter},
		OutputCols: proj.OutputCols,
		Properties: proj.Properties,
		Attrs:      proj.Attrs,
	}
}

// pushdownPredicateIntoScan folds a Filter directly above a Scan into the
// scan's SeekKey when the predicate is a simple equality against a literal
// (spec §4.4: "predicate pushdown ... into Scan").
type pushdownPredicateIntoScan struct{}

func (pushdownPredicateIntoScan) Name() string { return "pushdown_predicate_into_scan" }

func (pushdownPredicateIntoScan) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindFilter || len(n.Children) == 0 {
		return false
	}
	if n.Children[0].Kind != plan.KindScan {
		return false
	}
	attrs, ok := n.Attrs.(plan.FilterAttrs)
	if !ok || attrs.Predicate == nil {
		return false
	}
	return attrs.Predicate.Kind == expr.KindBinary && attrs.Predicate.BinOp == expr.OpEq &&
		attrs.Predicate.Right != nil && attrs.Predicate.Right.Kind == expr.KindLiteral
}

func (pushdownPredicateIntoScan) Apply(n *plan.Node) *plan.Node {
	scan := n.Children[0]
	scanAttrs, ok := scan.Attrs.(plan.ScanAttrs)
	if !ok {
		return n
	}
	filterAttrs := n.Attrs.(plan.FilterAttrs)
	scanAttrs.SeekKey = append(append([]expr.Expr{}, scanAttrs.SeekKey...), *filterAttrs.Predicate.Right)
	return &plan.Node{
		ID:         scan.ID,
		Kind:       plan.KindScan,
		Children:   nil,
		OutputCols: n.OutputCols,
		Properties: scan.Properties,
		Attrs:      scanAttrs,
	}
}

// pushdownLimitIntoScan propagates a row cap down onto a directly-fed Scan
// via its cost hint (spec §4.4: "limit/TopN pushdown ... into scans ...
// when safe"). The scan itself has no row-count field to cap, so this rule
// records the cap by lowering the scan node's Cost field; the optimizer's
// memo does not carry that field over. It never removes the Limit node
// itself since the scan has no enforcement mechanism of its own.
type pushdownLimitIntoScan struct{}

func (pushdownLimitIntoScan) Name() string { return "pushdown_limit_into_scan" }

func (pushdownLimitIntoScan) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindLimit || len(n.Children) == 0 {
		return false
	}
	return n.Children[0].Kind == plan.KindScan
}

func (pushdownLimitIntoScan) Apply(n *plan.Node) *plan.Node {
	limitAttrs, ok := n.Attrs.(plan.LimitAttrs)
	if !ok || limitAttrs.Count < 0 {
		return n
	}
	scan := n.Children[0]
	if scan.Cost == 0 || scan.Cost > float64(limitAttrs.Count) {
		newScan := *scan
		newScan.Cost = float64(limitAttrs.Count)
		newChildren := []*plan.Node{&newScan}
		return &plan.Node{
			ID:         n.ID,
			Kind:       n.Kind,
			Children:   newChildren,
			OutputCols: n.OutputCols,
			Properties: n.Properties,
			Attrs:      n.Attrs,
		}
	}
	return n
}

// pushdownAggregateIntoScan records the aggregate's group keys onto a
// directly-fed Scan's GroupKeys property when the group key is a prefix of
// the scan's natural key order (spec §4.4: "aggregate pushdown when the
// grouping key is a scan prefix"). Here "prefix" is approximated as "the
// scan produces exactly the group-by columns and nothing else" since the
// plan model has no explicit key-ordering metadata on ScanAttrs.
type pushdownAggregateIntoScan struct{}

func (pushdownAggregateIntoScan) Name() string { return "pushdown_aggregate_into_scan" }

func (pushdownAggregateIntoScan) Matches(n *plan.Node) bool {
	if n.Kind != plan.KindAggregate || len(n.Children) == 0 {
		return false
	}
	if n.Children[0].Kind != plan.KindScan {
		return false
	}
	attrs, ok := n.Attrs.(plan.AggregateAttrs)
	if !ok || len(attrs.GroupBy) == 0 {
		return false
	}
	scan := n.Children[0]
	if len(scan.OutputCols) != len(attrs.GroupBy) {
		return false
	}
	for i, col := range attrs.GroupBy {
		if scan.OutputCols[i] != col {
			return false
		}
	}
	return true
}

func (pushdownAggregateIntoScan) Apply(n *plan.Node) *plan.Node {
	scan := n.Children[0]
	newScan := *scan
	newScan.Properties.GroupKeys = append([]string{}, n.Attrs.(plan.AggregateAttrs).GroupBy...)
	return &plan.Node{
		ID:         n.ID,
		Kind:       n.Kind,
		Children:   []*plan.Node{&newScan},
		OutputCols: n.OutputCols,
		Properties: n.Properties,
		Attrs:      n.Attrs,
	}
}
