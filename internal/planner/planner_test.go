package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

func simpleMatchReturn() ast.Query {
	return ast.Query{
		Clauses: []ast.Clause{
			{Kind: ast.ClauseMatch, Match: &ast.MatchClause{
				Patterns: []ast.Pattern{{Nodes: []ast.NodePattern{{Variable: "n"}}}},
			}},
			{Kind: ast.ClauseWhere, Where: &ast.WhereClause{
				Predicate: expr.Binary(expr.OpGt, expr.Var("n"), expr.Lit(value.Int(0))),
			}},
			{Kind: ast.ClauseReturn, Return: &ast.ReturnClause{
				Items: []ast.ReturnItem{{Expr: expr.Var("n"), Alias: "n"}},
			}},
		},
	}
}

func TestLowerProducesScanFilterProjectChain(t *testing.T) {
	p := NewPlanner(plan.NewIDGenerator(), 10, nil)
	root, err := p.Lower(simpleMatchReturn())
	require.NoError(t, err)
	require.Equal(t, plan.KindProject, root.Kind)
	require.Len(t, root.Children, 1)
	require.Equal(t, plan.KindFilter, root.Children[0].Kind)
	require.Equal(t, plan.KindScan, root.Children[0].Children[0].Kind)
}

func TestPlanValidatesRequiredCols(t *testing.T) {
	p := NewPlanner(plan.NewIDGenerator(), 10, nil)
	root, err := p.Plan(simpleMatchReturn())
	require.NoError(t, err)
	assert.NoError(t, plan.ValidateRequiredCols(root))
}

func TestRewriteIsIdempotent(t *testing.T) {
	p := NewPlanner(plan.NewIDGenerator(), 10, nil)
	root, err := p.Plan(simpleMatchReturn())
	require.NoError(t, err)
	first := plan.Fingerprint(root)
	again := Rewrite(root, DefaultRules(), 10)
	assert.Equal(t, first, plan.Fingerprint(again))
}

func TestEliminateTrivialFilterDropsAlwaysTrue(t *testing.T) {
	scan := &plan.Node{ID: 1, Kind: plan.KindScan, OutputCols: []string{"n"}}
	filter := &plan.Node{ID: 2, Kind: plan.KindFilter, Children: []*plan.Node{scan}, OutputCols: []string{"n"},
		Attrs: plan.FilterAttrs{Predicate: expr.Lit(value.Bool(true))}}
	rewritten := Rewrite(filter, DefaultRules(), 10)
	assert.Equal(t, plan.KindScan, rewritten.Kind)
}

func TestMergeAdjacentProjectsFoldsIntoOne(t *testing.T) {
	scan := &plan.Node{ID: 1, Kind: plan.KindScan, OutputCols: []string{"n"}}
	lower := &plan.Node{ID: 2, Kind: plan.KindProject, Children: []*plan.Node{scan}, OutputCols: []string{"x"},
		Attrs: plan.ProjectAttrs{Items: []plan.ProjectItem{{Alias: "x", Expr: expr.Binary(expr.OpAdd, expr.Var("n"), expr.Lit(value.Int(1)))}}}}
	upper := &plan.Node{ID: 3, Kind: plan.KindProject, Children: []*plan.Node{lower}, OutputCols: []string{"y"},
		Attrs: plan.ProjectAttrs{Items: []plan.ProjectItem{{Alias: "y", Expr: expr.Var("x")}}}}

	rewritten, changed := rewriteOnce(upper, []RewriteRule{mergeAdjacentProjects{}})
	require.True(t, changed)
	require.Equal(t, plan.KindProject, rewritten.Kind)
	require.Len(t, rewritten.Children, 1)
	assert.Equal(t, plan.KindScan, rewritten.Children[0].Kind)
	attrs := rewritten.Attrs.(plan.ProjectAttrs)
	require.Len(t, attrs.Items, 1)
	assert.Equal(t, expr.KindBinary, attrs.Items[0].Expr.Kind)
}

func TestFuseTopNCoalescesSortAndLimit(t *testing.T) {
	scan := &plan.Node{ID: 1, Kind: plan.KindScan, OutputCols: []string{"n"}}
	sort := &plan.Node{ID: 2, Kind: plan.KindSort, Children: []*plan.Node{scan}, OutputCols: []string{"n"},
		Attrs: plan.SortAttrs{Keys: []plan.SortKey{{Column: "n"}}}}
	limit := &plan.Node{ID: 3, Kind: plan.KindLimit, Children: []*plan.Node{sort}, OutputCols: []string{"n"},
		Attrs: plan.LimitAttrs{Skip: 0, Count: 10}}

	rewritten := Rewrite(limit, DefaultRules(), 10)
	require.Equal(t, plan.KindTopN, rewritten.Kind)
	attrs := rewritten.Attrs.(plan.TopNAttrs)
	assert.Equal(t, int64(10), attrs.Count)
	assert.Equal(t, plan.KindScan, rewritten.Children[0].Kind)
}

func TestPushdownPredicateIntoScanFoldsEqualityIntoSeekKey(t *testing.T) {
	scan := &plan.Node{ID: 1, Kind: plan.KindScan, OutputCols: []string{"n"}, Attrs: plan.ScanAttrs{}}
	filter := &plan.Node{ID: 2, Kind: plan.KindFilter, Children: []*plan.Node{scan}, OutputCols: []string{"n"},
		Attrs: plan.FilterAttrs{Predicate: expr.Binary(expr.OpEq, expr.Var("n"), expr.Lit(value.Int(5)))}}

	rewritten, changed := rewriteOnce(filter, []RewriteRule{pushdownPredicateIntoScan{}})
	require.True(t, changed)
	assert.Equal(t, plan.KindScan, rewritten.Kind)
	attrs := rewritten.Attrs.(plan.ScanAttrs)
	require.Len(t, attrs.SeekKey, 1)
}

func TestDisabledRuleIsNotApplied(t *testing.T) {
	p := NewPlanner(plan.NewIDGenerator(), 10, []string{"eliminate_trivial_filter"})
	scan := &plan.Node{ID: 1, Kind: plan.KindScan, OutputCols: []string{"n"}}
	filter := &plan.Node{ID: 2, Kind: plan.KindFilter, Children: []*plan.Node{scan}, OutputCols: []string{"n"},
		Attrs: plan.FilterAttrs{Predicate: expr.Lit(value.Bool(true))}}
	rewritten := Rewrite(filter, p.rules, p.maxIter)
	assert.Equal(t, plan.KindFilter, rewritten.Kind)
}

func TestLowerExpandCarriesMinHops(t *testing.T) {
	p := NewPlanner(plan.NewIDGenerator(), 10, nil)
	scan := p.lowerScanVertices(ast.NodePattern{Variable: "a"})
	ep := ast.EdgePattern{Variable: "e", Direction: ast.DirOutgoing, MinHops: 2, MaxHops: 2}
	expand := p.lowerExpand(scan, ep, ast.NodePattern{Variable: "b"})

	require.Equal(t, plan.KindAppendVertices, expand.Kind)
	require.Len(t, expand.Children, 1)
	traverse := expand.Children[0]
	require.Equal(t, plan.KindExpand, traverse.Kind)
	attrs, ok := traverse.Attrs.(plan.TraverseAttrs)
	require.True(t, ok)
	assert.Equal(t, 2, attrs.MinDepth, "MinHops must survive lowering into TraverseAttrs.MinDepth")
	assert.Equal(t, 2, attrs.MaxDepth)
}

func TestLowerExpandPassesThroughExplicitZeroMaxHops(t *testing.T) {
	p := NewPlanner(plan.NewIDGenerator(), 10, nil)
	scan := p.lowerScanVertices(ast.NodePattern{Variable: "a"})
	ep := ast.EdgePattern{Variable: "e", Direction: ast.DirOutgoing, MinHops: 0, MaxHops: 0}
	expand := p.lowerExpand(scan, ep, ast.NodePattern{Variable: "b"})

	traverse := expand.Children[0]
	attrs, ok := traverse.Attrs.(plan.TraverseAttrs)
	require.True(t, ok)
	assert.Equal(t, 0, attrs.MaxDepth, "an explicit `*0` pattern's MaxHops must not be coerced to 1")
}
