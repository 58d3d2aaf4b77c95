// Lowering step of spec §4.4: maps a validated AST into an initial
// logical plan tree. Grounded on the pattern-to-plan mapping spec §4.4
// names explicitly (MATCH -> Scan/Expand/AppendVertices chain joined per
// ConnectionStrategy; WHERE -> Filter; WITH/RETURN -> Project(+Aggregate);
// ORDER BY/SKIP/LIMIT -> Sort+Limit, coalesced to TopN when adjacent).
package planner

import (
	"fmt"
	"sort"

	"github.com/kkkqkx123/graphdb/internal/ast"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/plan"
)

// Resolver looks up the schema the catalog assigned to a tag/edge-type
// name, so lowering can fill plan.ScanAttrs.Tag/plan.TraverseAttrs.
// EdgeTypes from the names a MATCH pattern names instead of leaving them
// unfiltered. internal/catalog.Catalog satisfies this directly (its
// TagByName/EdgeTypeByName signatures).
type Resolver interface {
	TagByName(space ids.SpaceId, name string) (*graph.TagSchema, bool)
	EdgeTypeByName(space ids.SpaceId, name string) (*graph.EdgeTypeSchema, bool)
}

// ConnectionStrategy chooses how two pattern fragments are joined, per
// spec §4.4 "connected by joins chosen by the ConnectionStrategy".
type ConnectionStrategy string

const (
	StrategyCartesian    ConnectionStrategy = "Cartesian"
	StrategySequential   ConnectionStrategy = "Sequential"
	StrategyInnerJoin    ConnectionStrategy = "InnerJoin"
	StrategyLeftJoin     ConnectionStrategy = "LeftJoin"
	StrategyPatternApply ConnectionStrategy = "PatternApply"
	StrategyRollUpApply  ConnectionStrategy = "RollUpApply"
)

var aggregateFuncs = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true, "STD": true,
	"BIT_AND": true, "BIT_OR": true, "BIT_XOR": true, "COLLECT": true, "COLLECT_SET": true,
}

// Planner lowers a validated ast.Query into an initial plan.Node tree and
// then runs the heuristic rewrite pipeline to a fixed point.
type Planner struct {
	ids     *plan.IDGenerator
	symbols *SymbolTable
	rules   []RewriteRule
	maxIter int

	resolver Resolver
	space    ids.SpaceId
}

// WithResolver binds the catalog (or a test double) a Lower/Plan call
// resolves tag and edge-type names against, and the space those names are
// scoped to. A Planner with no resolver bound still lowers correctly — it
// simply leaves ScanAttrs.Tag/TraverseAttrs.EdgeTypes empty (pattern
// property constraints still become Filter nodes) — which is what every pre-existing
// planner test exercises without needing a catalog fixture.
func (p *Planner) WithResolver(r Resolver, space ids.SpaceId) *Planner {
	p.resolver = r
	p.space = space
	return p
}

// NewPlanner builds a Planner with the default deterministic rule order
// (spec §4.4 "the planner runs rules in a deterministic order").
// disabledRules names rules to skip (the "configurable disable-set"
// public knob spec §4.4 names).
func NewPlanner(idGen *plan.IDGenerator, maxIter int, disabledRules []string) *Planner {
	if maxIter <= 0 {
		maxIter = 10
	}
	disabled := make(map[string]bool, len(disabledRules))
	for _, name := range disabledRules {
		disabled[name] = true
	}
	all := DefaultRules()
	rules := make([]RewriteRule, 0, len(all))
	for _, r := range all {
		if !disabled[r.Name()] {
			rules = append(rules, r)
		}
	}
	return &Planner{ids: idGen, symbols: NewSymbolTable(), rules: rules, maxIter: maxIter}
}

// Plan lowers q and applies the rewrite pipeline, returning the rewritten
// logical plan.
func (p *Planner) Plan(q ast.Query) (*plan.Node, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	root, err := p.Lower(q)
	if err != nil {
		return nil, err
	}
	return Rewrite(root, p.rules, p.maxIter), nil
}

// Lower performs step 1 (spec §4.4) without rewriting.
func (p *Planner) Lower(q ast.Query) (*plan.Node, error) {
	var root *plan.Node
	var orderBy *ast.OrderByClause
	var limit *int64
	var skip int64

	for _, c := range q.Clauses {
		switch c.Kind {
		case ast.ClauseMatch:
			matchPlan, err := p.lowerMatch(c.Match)
			if err != nil {
				return nil, err
			}
			root = p.joinFragment(root, matchPlan, StrategyCartesian)
		case ast.ClauseWhere:
			root = p.lowerFilter(root, c.Where.Predicate)
		case ast.ClauseWith:
			root = p.lowerProject(root, c.With.Items, false)
		case ast.ClauseReturn:
			root = p.lowerProject(root, c.Return.Items, c.Return.Distinct)
		case ast.ClauseOrderBy:
			orderBy = c.OrderBy
		case ast.ClauseLimit:
			v := c.Limit.Count
			limit = &v
		case ast.ClauseSkip:
			skip = c.Skip.Count
		case ast.ClauseUnwind:
			root = p.lowerUnwind(root, c.Unwind)
		default:
			return nil, fmt.Errorf("planner: unsupported clause kind %s", c.Kind)
		}
	}

	if orderBy != nil {
		root = p.lowerSort(root, orderBy)
	}
	if limit != nil || skip != 0 {
		count := int64(-1)
		if limit != nil {
			count = *limit
		}
		root = p.newNode(plan.KindLimit, []*plan.Node{root}, root.OutputCols, plan.LimitAttrs{Skip: skip, Count: count})
	}
	return root, nil
}

func (p *Planner) lowerMatch(m *ast.MatchClause) (*plan.Node, error) {
	var fragment *plan.Node
	for _, pattern := range m.Patterns {
		pf, err := p.lowerPattern(pattern)
		if err != nil {
			return nil, err
		}
		strategy := StrategyCartesian
		if m.Optional {
			strategy = StrategyLeftJoin
		}
		fragment = p.joinFragment(fragment, pf, strategy)
	}
	return fragment, nil
}

func (p *Planner) lowerPattern(pattern ast.Pattern) (*plan.Node, error) {
	first := pattern.Nodes[0]
	cur := p.lowerScanVertices(first)
	for i, edgePattern := range pattern.Edges {
		p.symbols.Bind(edgePattern.Variable, "edge")
		next := pattern.Nodes[i+1]
		p.symbols.Bind(next.Variable, "vertex")
		cur = p.lowerExpand(cur, edgePattern, next)
	}
	return cur, nil
}

func (p *Planner) lowerScanVertices(np ast.NodePattern) *plan.Node {
	p.symbols.Bind(np.Variable, "vertex")
	cols := []string{}
	if np.Variable != "" {
		cols = append(cols, np.Variable)
	}
	attrs := plan.ScanAttrs{Space: p.space}
	if p.resolver != nil && len(np.Tags) > 0 {
		if schema, ok := p.resolver.TagByName(p.space, np.Tags[0]); ok {
			attrs.Tag = schema.ID
		}
	}
	scan := p.newNode(plan.KindScan, nil, cols, attrs)
	if pred := p.propertyEqualityPredicate(np.Variable, np.Properties); pred != nil {
		return p.lowerFilter(scan, pred)
	}
	return scan
}

func (p *Planner) lowerExpand(child *plan.Node, ep ast.EdgePattern, dst ast.NodePattern) *plan.Node {
	cols := append(append([]string{}, child.OutputCols...), ep.Variable, dst.Variable)
	dir := plan.DirOutgoing
	switch ep.Direction {
	case ast.DirIncoming:
		dir = plan.DirIncoming
	case ast.DirBoth:
		dir = plan.DirBoth
	}
	// ep.MaxHops == 0 only arises from an explicit `*0` pattern (the
	// parser otherwise always initializes both hop bounds to 1); that is
	// the spec §8 boundary "max-depth traversal of 0 returns the start
	// set", which internal/executor/traverse.go's Open implements
	// directly, so it must not be coerced to 1 here.
	maxDepth := ep.MaxHops
	var edgeTypes []ids.EdgeType
	if p.resolver != nil {
		for _, name := range ep.EdgeTypes {
			if schema, ok := p.resolver.EdgeTypeByName(p.space, name); ok {
				edgeTypes = append(edgeTypes, schema.ID)
			}
		}
	}
	expand := p.newNode(plan.KindExpand, []*plan.Node{child}, cols, plan.TraverseAttrs{
		EdgeTypes: edgeTypes,
		Direction: dir,
		MinDepth:  ep.MinHops,
		MaxDepth:  maxDepth,
	})
	appended := p.newNode(plan.KindAppendVertices, []*plan.Node{expand}, cols, nil)
	if pred := p.propertyEqualityPredicate(dst.Variable, dst.Properties); pred != nil {
		return p.lowerFilter(appended, pred)
	}
	return appended
}

// propertyEqualityPredicate AND-combines the inline `{prop: value}` equality
// constraints carried on a node pattern into a single predicate evaluated
// against that pattern's bound variable. Returns nil when the pattern
// carries no inline properties.
func (p *Planner) propertyEqualityPredicate(variable string, props map[string]expr.Expr) *expr.Expr {
	if len(props) == 0 {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	var pred *expr.Expr
	for _, name := range names {
		val := props[name]
		eq := expr.Binary(expr.OpEq, expr.Prop(variable, name), &val)
		if pred == nil {
			pred = eq
		} else {
			pred = expr.Binary(expr.OpAnd, pred, eq)
		}
	}
	return pred
}

func (p *Planner) lowerFilter(child *plan.Node, predicate *expr.Expr) *plan.Node {
	if child == nil {
		child = p.newNode(plan.KindStart, nil, nil, nil)
	}
	n := p.newNode(plan.KindFilter, []*plan.Node{child}, child.OutputCols, plan.FilterAttrs{Predicate: predicate})
	n.Properties.RequiredCols = referencedVars(predicate)
	return n
}

func (p *Planner) lowerProject(child *plan.Node, items []ast.ReturnItem, distinct bool) *plan.Node {
	if child == nil {
		child = p.newNode(plan.KindStart, nil, nil, nil)
	}
	projItems := make([]plan.ProjectItem, len(items))
	cols := make([]string, len(items))
	aggregating := false
	var aggCalls []plan.AggCall
	for i, it := range items {
		projItems[i] = plan.ProjectItem{Alias: it.Alias, Expr: it.Expr}
		cols[i] = it.Alias
		if it.Expr != nil && it.Expr.Kind == expr.KindCall && aggregateFuncs[it.Expr.FuncName] {
			aggregating = true
			var arg *expr.Expr
			if len(it.Expr.Args) > 0 {
				arg = it.Expr.Args[0]
			}
			aggCalls = append(aggCalls, plan.AggCall{Func: it.Expr.FuncName, Arg: arg, Alias: it.Alias})
		}
	}

	if aggregating {
		agg := p.newNode(plan.KindAggregate, []*plan.Node{child}, cols, plan.AggregateAttrs{Aggs: aggCalls})
		agg.Properties.Aggregating = true
		return agg
	}

	proj := p.newNode(plan.KindProject, []*plan.Node{child}, cols, plan.ProjectAttrs{Items: projItems})
	var required []string
	for _, it := range projItems {
		required = append(required, referencedVars(it.Expr)...)
	}
	proj.Properties.RequiredCols = required
	if distinct {
		return p.newNode(plan.KindDedup, []*plan.Node{proj}, cols, plan.DedupAttrs{})
	}
	return proj
}

func (p *Planner) lowerSort(child *plan.Node, ob *ast.OrderByClause) *plan.Node {
	keys := make([]plan.SortKey, len(ob.Items))
	for i, it := range ob.Items {
		keys[i] = plan.SortKey{Column: it.Column, Descending: it.Descending}
	}
	return p.newNode(plan.KindSort, []*plan.Node{child}, child.OutputCols, plan.SortAttrs{Keys: keys})
}

func (p *Planner) lowerUnwind(child *plan.Node, u *ast.UnwindClause) *plan.Node {
	if child == nil {
		child = p.newNode(plan.KindStart, nil, nil, nil)
	}
	cols := append(append([]string{}, child.OutputCols...), u.Alias)
	return p.newNode(plan.KindUnwind, []*plan.Node{child}, cols, plan.UnwindAttrs{Source: u.Source, Alias: u.Alias})
}

func (p *Planner) newNode(kind plan.Kind, children []*plan.Node, cols []string, attrs any) *plan.Node {
	return &plan.Node{ID: p.ids.Next(), Kind: kind, Children: children, OutputCols: cols, Attrs: attrs}
}

// joinFragment combines two pattern fragments under the given strategy,
// or returns the non-nil one if only one side is present.
func (p *Planner) joinFragment(left, right *plan.Node, strategy ConnectionStrategy) *plan.Node {
	if left == nil {
		return right
	}
	if right == nil {
		return left
	}
	cols := append(append([]string{}, left.OutputCols...), right.OutputCols...)
	kind := plan.KindCrossJoin
	joinType := plan.JoinTypeCross
	switch strategy {
	case StrategyInnerJoin:
		kind = plan.KindInnerJoin
		joinType = plan.JoinTypeInner
	case StrategyLeftJoin:
		kind = plan.KindLeftJoin
		joinType = plan.JoinTypeLeft
	}
	return p.newNode(kind, []*plan.Node{left, right}, cols, plan.JoinAttrs{Type: joinType})
}

// referencedVars collects the distinct KindVar/KindProperty base names an
// expression reads, used to populate RequiredCols.
func referencedVars(e *expr.Expr) []string {
	if e == nil {
		return nil
	}
	seen := map[string]bool{}
	var walk func(*expr.Expr)
	walk = func(n *expr.Expr) {
		if n == nil {
			return
		}
		switch n.Kind {
		case expr.KindVar:
			seen[n.VarName] = true
		case expr.KindProperty:
			seen[n.PropBase] = true
		case expr.KindBinary:
			walk(n.Left)
			walk(n.Right)
		case expr.KindUnary:
			walk(n.Operand)
		case expr.KindCall:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(e)
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	return out
}
