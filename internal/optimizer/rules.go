// CBO rule set of spec §4.5, every bullet the spec enumerates: index
// selection (IndexScan/IndexFullScan vs SequentialScan, IndexCoveringScan,
// OptimizeEdgeIndexScanByFilter, UnionAll{Tag,Edge}IndexScan), join
// algorithm/side selection and small-first reordering, TopN recognition
// and index-order pushdown, and set-op input reordering. Each rule
// produces additional OptGroupNode alternatives within the same Group
// rather than mutating the logical plan in place, per spec §4.5's Group
// model.
package optimizer

import (
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
)

// CBORule is one named, cost-oblivious alternative generator: given a
// Group and one of its existing expressions, it proposes zero or more new
// OptGroupNodes for the same Group. The optimizer's exploration loop costs
// every alternative afterward and keeps the cheapest.
type CBORule interface {
	Name() string
	Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode
}

// DefaultCBORules returns every built-in CBO rule.
func DefaultCBORules() []CBORule {
	return []CBORule{
		indexSelectionRule{},
		edgeIndexScanByFilterRule{},
		unionAllIndexScanRule{},
		joinAlgorithmRule{},
		joinSmallSideFirstRule{},
		topNIndexOrderRule{},
		setOpSmallSideFirstRule{},
	}
}

// indexSelectionRule implements spec §4.5's "IndexScan, IndexFullScan vs
// SequentialScan, IndexCoveringScan" bullet: a logical Scan with an Index
// assigned may be executed as a SequentialScan (ignore the index), an
// IndexScan (use SeekKey), an IndexFullScan (use the index for ordering
// only, no SeekKey), or an IndexCoveringScan (index alone satisfies every
// required column, no base-row fetch).
type indexSelectionRule struct{}

func (indexSelectionRule) Name() string { return "index_selection" }

func (indexSelectionRule) Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode {
	if node.Kind != plan.KindScan {
		return nil
	}
	attrs, ok := node.Attrs.(plan.ScanAttrs)
	if !ok {
		return nil
	}
	var alts []*OptGroupNode
	seq := *node
	seq.Kind = plan.KindSequentialScan
	seqAttrs := attrs
	seqAttrs.Index = 0
	seqAttrs.SeekKey = nil
	seq.Attrs = seqAttrs
	alts = append(alts, &seq)

	if attrs.Index != 0 {
		if len(attrs.SeekKey) > 0 {
			idxScan := *node
			idxScan.Kind = plan.KindIndexScan
			alts = append(alts, &idxScan)
		} else {
			fullScan := *node
			fullScan.Kind = plan.KindIndexFullScan
			ordered := attrs
			ordered.Sorted = true
			fullScan.Attrs = ordered
			alts = append(alts, &fullScan)
		}

		covering := *node
		covering.Kind = plan.KindIndexCoveringScan
		coveringAttrs := attrs
		coveringAttrs.Covering = true
		covering.Attrs = coveringAttrs
		alts = append(alts, &covering)
	}
	return alts
}

// edgeIndexScanByFilterRule implements spec §4.5's
// "OptimizeEdgeIndexScanByFilter (push SARGable predicates into the index
// range)": a Filter directly above an edge-typed Scan/IndexScan with an
// equality predicate against a literal becomes an index-seeking scan with
// the predicate folded into SeekKey, eliminating the Filter node.
type edgeIndexScanByFilterRule struct{}

func (edgeIndexScanByFilterRule) Name() string { return "optimize_edge_index_scan_by_filter" }

func (edgeIndexScanByFilterRule) Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode {
	if node.Kind != plan.KindFilter || len(node.Inputs) == 0 {
		return nil
	}
	filterAttrs, ok := node.Attrs.(plan.FilterAttrs)
	if !ok || filterAttrs.Predicate == nil {
		return nil
	}
	if filterAttrs.Predicate.Kind != expr.KindBinary || filterAttrs.Predicate.BinOp != expr.OpEq {
		return nil
	}
	if filterAttrs.Predicate.Right == nil || filterAttrs.Predicate.Right.Kind != expr.KindLiteral {
		return nil
	}
	childGroup := m.Group(node.Inputs[0])
	if childGroup == nil || len(childGroup.Exprs) == 0 {
		return nil
	}
	childExpr := childGroup.Exprs[0]
	scanAttrs, ok := childExpr.Attrs.(plan.ScanAttrs)
	if !ok || scanAttrs.EdgeType == 0 {
		return nil
	}
	newAttrs := scanAttrs
	newAttrs.SeekKey = append(append([]expr.Expr{}, scanAttrs.SeekKey...), *filterAttrs.Predicate.Right)
	return []*OptGroupNode{{
		Kind:       plan.KindIndexScan,
		Attrs:      newAttrs,
		Inputs:     nil,
		OutputCols: node.OutputCols,
		Properties: node.Properties,
	}}
}

// unionAllIndexScanRule implements spec §4.5's "UnionAll{Tag,Edge}
// IndexScan (combine per-value index seeks)": a Filter whose predicate is
// a disjunction of equalities against the same scan directly below
// becomes a single UnionAllIndexScan scan whose SeekKey lists every
// disjunct's literal, one per-value seek unioned together.
type unionAllIndexScanRule struct{}

func (unionAllIndexScanRule) Name() string { return "union_all_index_scan" }

func (unionAllIndexScanRule) Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode {
	if node.Kind != plan.KindFilter || len(node.Inputs) == 0 {
		return nil
	}
	filterAttrs, ok := node.Attrs.(plan.FilterAttrs)
	if !ok || filterAttrs.Predicate == nil {
		return nil
	}
	literals := collectOrEqualityLiterals(filterAttrs.Predicate)
	if len(literals) < 2 {
		return nil
	}
	childGroup := m.Group(node.Inputs[0])
	if childGroup == nil || len(childGroup.Exprs) == 0 {
		return nil
	}
	childExpr := childGroup.Exprs[0]
	scanAttrs, ok := childExpr.Attrs.(plan.ScanAttrs)
	if !ok || scanAttrs.Index == 0 {
		return nil
	}
	newAttrs := scanAttrs
	newAttrs.SeekKey = literals
	return []*OptGroupNode{{
		Kind:       plan.KindUnionAllIndexScan,
		Attrs:      newAttrs,
		Inputs:     nil,
		OutputCols: node.OutputCols,
		Properties: node.Properties,
	}}
}

// collectOrEqualityLiterals flattens a tree of OR(a=1, OR(a=2, a=3), ...)
// into its equality literals, returning nil if any disjunct isn't a
// literal-equality comparison.
func collectOrEqualityLiterals(e *expr.Expr) []expr.Expr {
	if e == nil {
		return nil
	}
	if e.Kind == expr.KindBinary && e.BinOp == expr.OpOr {
		left := collectOrEqualityLiterals(e.Left)
		right := collectOrEqualityLiterals(e.Right)
		if left == nil || right == nil {
			return nil
		}
		return append(left, right...)
	}
	if e.Kind == expr.KindBinary && e.BinOp == expr.OpEq && e.Right != nil && e.Right.Kind == expr.KindLiteral {
		return []expr.Expr{*e.Right}
	}
	return nil
}

// joinAlgorithmRule implements spec §4.5's "choose algorithm (hash vs
// nested-loop) ... by estimated row counts and presence of equijoin keys".
// A join with an equijoin key (JoinAttrs.On set to an equality) may run as
// a HashJoin; any join may run as a NestedLoopJoin.
type joinAlgorithmRule struct{}

func (joinAlgorithmRule) Name() string { return "join_algorithm_selection" }

func (joinAlgorithmRule) Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode {
	if !isJoinKind(node.Kind) {
		return nil
	}
	attrs, ok := node.Attrs.(plan.JoinAttrs)
	if !ok {
		return nil
	}
	var alts []*OptGroupNode
	nestedLoop := *node
	nestedLoop.Kind = plan.KindNestedLoopJoin
	nlAttrs := attrs
	nlAttrs.Algorithm = plan.JoinAlgoNestedLoop
	nestedLoop.Attrs = nlAttrs
	alts = append(alts, &nestedLoop)

	if attrs.On != nil && attrs.On.Kind == expr.KindBinary && attrs.On.BinOp == expr.OpEq {
		hash := *node
		hash.Kind = plan.KindHashJoin
		hashAttrs := attrs
		hashAttrs.Algorithm = plan.JoinAlgoHash
		hashAttrs.BuildSide = smallerSide(m, node.Inputs)
		hash.Attrs = hashAttrs
		alts = append(alts, &hash)
	}
	return alts
}

// smallerSide returns 0 if inputs[0]'s estimated rows are no larger than
// inputs[1]'s, else 1 — the hash join build side per spec §4.5's "choose
// ... inner/outer side by estimated row counts".
func smallerSide(m *Memo, inputs []GroupID) int {
	if len(inputs) != 2 {
		return 0
	}
	left := bestRows(m.Group(inputs[0]))
	right := bestRows(m.Group(inputs[1]))
	if right < left {
		return 1
	}
	return 0
}

func isJoinKind(k plan.Kind) bool {
	switch k {
	case plan.KindInnerJoin, plan.KindLeftJoin, plan.KindCrossJoin, plan.KindHashJoin,
		plan.KindNestedLoopJoin, plan.KindFullOuterJoin:
		return true
	default:
		return false
	}
}

// joinSmallSideFirstRule implements spec §4.5's "reorder small-first
// under left-deep constraints" for joins without a fixed outer/inner
// semantic (CrossJoin, InnerJoin): if the right input's estimated row
// count is currently lower than the left's, propose the swapped form with
// BuildSide pointed at the now-smaller side.
type joinSmallSideFirstRule struct{}

func (joinSmallSideFirstRule) Name() string { return "join_small_side_first" }

func (joinSmallSideFirstRule) Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode {
	if node.Kind != plan.KindInnerJoin && node.Kind != plan.KindCrossJoin {
		return nil
	}
	if len(node.Inputs) != 2 {
		return nil
	}
	left := m.Group(node.Inputs[0])
	right := m.Group(node.Inputs[1])
	if left == nil || right == nil {
		return nil
	}
	leftRows := bestRows(left)
	rightRows := bestRows(right)
	if rightRows >= leftRows {
		return nil
	}
	swapped := *node
	swapped.Inputs = []GroupID{node.Inputs[1], node.Inputs[0]}
	swapped.OutputCols = append(append([]string{}, right.OutputCols...), left.OutputCols...)
	if attrs, ok := node.Attrs.(plan.JoinAttrs); ok {
		newAttrs := attrs
		newAttrs.BuildSide = 0
		swapped.Attrs = newAttrs
	}
	return []*OptGroupNode{&swapped}
}

func bestRows(g *Group) float64 {
	if g.Winner != nil {
		return g.Winner.Rows
	}
	if len(g.Exprs) > 0 {
		return g.Exprs[0].Rows
	}
	return defaultRowCountEstimate
}

// topNIndexOrderRule implements spec §4.5's "TopN: recognize Sort → Limit
// and fuse; push into scans when order matches an index." Fusion itself
// happens in internal/planner's rewrite pass (fuse_topn); this rule covers
// the remaining half: when a TopN's single child is a Scan/IndexScan whose
// leading sorted column matches TopN's first (ascending) sort key, the
// scan already delivers rows in the needed order and the sort component of
// cost can be dropped entirely. The cost pass recognizes the match itself
// for any TopN (estimateCost's TopN case, via topNChildAlreadySorted), so
// the equivalent TopN alternative returned here costs the same as the
// original.
type topNIndexOrderRule struct{}

func (topNIndexOrderRule) Name() string { return "topn_index_order_pushdown" }

func (topNIndexOrderRule) Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode {
	if node.Kind != plan.KindTopN || len(node.Inputs) != 1 {
		return nil
	}
	attrs, ok := node.Attrs.(plan.TopNAttrs)
	if !ok || len(attrs.Keys) == 0 || attrs.Keys[0].Descending {
		return nil
	}
	childGroup := m.Group(node.Inputs[0])
	if childGroup == nil || len(childGroup.Exprs) == 0 {
		return nil
	}
	childExpr := childGroup.Exprs[0]
	scanAttrs, ok := childExpr.Attrs.(plan.ScanAttrs)
	if !ok || !scanAttrs.Sorted || scanAttrs.IndexColumn != attrs.Keys[0].Column {
		return nil
	}
	alt := *node
	alt.Rule = "topn_index_order_pushdown"
	return []*OptGroupNode{&alt}
}

// setOpSmallSideFirstRule implements spec §4.5's "Set-op input order:
// place the smaller side first when commutative" for Union/Intersect
// (Minus is not commutative and is excluded).
type setOpSmallSideFirstRule struct{}

func (setOpSmallSideFirstRule) Name() string { return "set_op_small_side_first" }

func (setOpSmallSideFirstRule) Apply(m *Memo, g *Group, node *OptGroupNode) []*OptGroupNode {
	if node.Kind != plan.KindUnion && node.Kind != plan.KindIntersect {
		return nil
	}
	if len(node.Inputs) != 2 {
		return nil
	}
	left := m.Group(node.Inputs[0])
	right := m.Group(node.Inputs[1])
	if left == nil || right == nil {
		return nil
	}
	if bestRows(right) >= bestRows(left) {
		return nil
	}
	swapped := *node
	swapped.Inputs = []GroupID{node.Inputs[1], node.Inputs[0]}
	return []*OptGroupNode{&swapped}
}
