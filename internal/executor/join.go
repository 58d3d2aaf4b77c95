// Join family (spec §4.6): InnerJoin/LeftJoin/CrossJoin/FullOuterJoin as
// logical variants, and HashJoin/NestedLoopJoin as the physical algorithms
// the optimizer's join_algorithm_selection rule (internal/optimizer/rules.go)
// chooses between by rewriting Kind while preserving JoinAttrs.Type — see
// plan.JoinAttrs' doc comment for why Type exists alongside Kind.
//
// Both algorithms materialize their full output on Open rather than
// streaming row-at-a-time: a nested-loop/hash join's row count isn't known
// until every match (and, for Left/FullOuter, every non-match) has been
// found, so there is no simpler correct streaming formulation here.
package executor

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
)

// joinType resolves the logical join semantics for node n: directly from
// its Kind when n is a logical join node, or from JoinAttrs.Type when n is
// a physical HashJoin/NestedLoopJoin node.
func joinType(n *plan.Node, a plan.JoinAttrs) plan.JoinType {
	switch n.Kind {
	case plan.KindInnerJoin:
		return plan.JoinTypeInner
	case plan.KindLeftJoin:
		return plan.JoinTypeLeft
	case plan.KindFullOuterJoin:
		return plan.JoinTypeFullOuter
	case plan.KindCrossJoin:
		return plan.JoinTypeCross
	default:
		if a.Type != "" {
			return a.Type
		}
		return plan.JoinTypeInner
	}
}

type joinOperator struct {
	baseStats
	left, right Operator
	on          *expr.Expr
	typ         plan.JoinType
	algorithm   plan.JoinAlgorithm
	buildSide   int
	functions   expr.Functions

	leftCols, rightCols []string
	out                 []Row
	pos                 int
}

func newJoinOperator(ec *Context, n *plan.Node, children []Operator) (*joinOperator, error) {
	if len(children) != 2 {
		return nil, badAttrs(n, "two join children")
	}
	a, ok := n.Attrs.(plan.JoinAttrs)
	if !ok {
		return nil, badAttrs(n, "JoinAttrs")
	}
	leftCols, rightCols := n.Children[0].OutputCols, n.Children[1].OutputCols
	return &joinOperator{
		left:      children[0],
		right:     children[1],
		on:        a.On,
		typ:       joinType(n, a),
		algorithm: a.Algorithm,
		buildSide: a.BuildSide,
		functions: ec.Functions,
		leftCols:  leftCols,
		rightCols: rightCols,
	}, nil
}

func (j *joinOperator) Open(ctx context.Context) error {
	j.onOpen()
	if err := j.left.Open(ctx); err != nil {
		return err
	}
	if err := j.right.Open(ctx); err != nil {
		return err
	}
	leftRows, err := drain(ctx, j.left)
	if err != nil {
		return err
	}
	rightRows, err := drain(ctx, j.right)
	if err != nil {
		return err
	}

	equalityKey := j.equalityKeyExprs()
	var out []Row
	if j.algorithm == plan.JoinAlgoHash && equalityKey != nil {
		out, err = j.hashJoin(leftRows, rightRows, equalityKey)
	} else {
		out, err = j.nestedLoopJoin(leftRows, rightRows)
	}
	if err != nil {
		return err
	}
	j.out = out
	j.pos = 0
	return nil
}

// equalityKeyExprs returns (leftExpr, rightExpr) when On is a simple
// equijoin predicate comparing a left-side expression to a right-side one,
// or nil when On is absent or not of that shape.
func (j *joinOperator) equalityKeyExprs() *[2]*expr.Expr {
	if j.on == nil || j.on.Kind != expr.KindBinary || j.on.BinOp != expr.OpEq {
		return nil
	}
	return &[2]*expr.Expr{j.on.Left, j.on.Right}
}

func (j *joinOperator) nestedLoopJoin(leftRows, rightRows []Row) ([]Row, error) {
	leftMatched := make([]bool, len(leftRows))
	rightMatched := make([]bool, len(rightRows))
	var out []Row

	for li, lr := range leftRows {
		for ri, rr := range rightRows {
			combined := merge(lr, rr)
			admit := j.typ == plan.JoinTypeCross
			if !admit {
				v, err := expr.Eval(j.on, combined, j.functions)
				if err != nil {
					return nil, err
				}
				admit = expr.Truthy(v)
			}
			if admit {
				leftMatched[li] = true
				rightMatched[ri] = true
				out = append(out, combined)
			}
		}
	}

	if j.typ == plan.JoinTypeLeft || j.typ == plan.JoinTypeFullOuter {
		for li, lr := range leftRows {
			if !leftMatched[li] {
				out = append(out, merge(lr, nullRow(j.rightCols)))
			}
		}
	}
	if j.typ == plan.JoinTypeFullOuter {
		for ri, rr := range rightRows {
			if !rightMatched[ri] {
				out = append(out, merge(nullRow(j.leftCols), rr))
			}
		}
	}
	return out, nil
}

func (j *joinOperator) hashJoin(leftRows, rightRows []Row, keys *[2]*expr.Expr) ([]Row, error) {
	buildRows, probeRows := leftRows, rightRows
	buildKeyExpr, probeKeyExpr := keys[0], keys[1]
	buildIsLeft := true
	if j.buildSide == 1 {
		buildRows, probeRows = rightRows, leftRows
		buildKeyExpr, probeKeyExpr = keys[1], keys[0]
		buildIsLeft = false
	}

	table := map[string][]int{}
	for i, r := range buildRows {
		v, err := expr.Eval(buildKeyExpr, r, j.functions)
		if err != nil {
			return nil, err
		}
		k := valueKey(v)
		table[k] = append(table[k], i)
	}

	buildMatched := make([]bool, len(buildRows))
	var out []Row
	for _, pr := range probeRows {
		v, err := expr.Eval(probeKeyExpr, pr, j.functions)
		if err != nil {
			return nil, err
		}
		idxs := table[valueKey(v)]
		if len(idxs) == 0 {
			if (j.typ == plan.JoinTypeLeft && !buildIsLeft) || j.typ == plan.JoinTypeFullOuter {
				out = append(out, j.combine(buildIsLeft, nullRow(colsOf(buildIsLeft, j.leftCols, j.rightCols)), pr))
			}
			continue
		}
		for _, bi := range idxs {
			buildMatched[bi] = true
			out = append(out, j.combine(buildIsLeft, buildRows[bi], pr))
		}
	}

	if (j.typ == plan.JoinTypeLeft && buildIsLeft) || j.typ == plan.JoinTypeFullOuter {
		probeCols := colsOf(!buildIsLeft, j.leftCols, j.rightCols)
		for bi, br := range buildRows {
			if !buildMatched[bi] {
				out = append(out, j.combine(buildIsLeft, br, nullRow(probeCols)))
			}
		}
	}
	return out, nil
}

// combine orders (buildRow, probeRow) back into (left, right) merge order.
func (j *joinOperator) combine(buildIsLeft bool, buildRow, probeRow Row) Row {
	if buildIsLeft {
		return merge(buildRow, probeRow)
	}
	return merge(probeRow, buildRow)
}

func colsOf(left bool, leftCols, rightCols []string) []string {
	if left {
		return leftCols
	}
	return rightCols
}

func (j *joinOperator) Next(ctx context.Context) (Row, error) {
	if j.pos >= len(j.out) {
		return nil, nil
	}
	r := j.out[j.pos]
	j.pos++
	j.onRow()
	return r, nil
}

func (j *joinOperator) Close() error {
	j.onClose()
	lerr := j.left.Close()
	rerr := j.right.Close()
	if lerr != nil {
		return lerr
	}
	return rerr
}

func (j *joinOperator) Stats() Stats { return j.stats() }

func merge(left, right Row) Row {
	out := make(Row, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out
}

// nullRow builds a row with every named column bound to NULL, for the
// unmatched side of a Left/FullOuter join.
func nullRow(cols []string) Row {
	r := make(Row, len(cols))
	for _, c := range cols {
		r[c] = nullValue
	}
	return r
}
