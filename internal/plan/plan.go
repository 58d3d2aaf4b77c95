// Package plan implements the logical/physical plan node model of spec §3
// ("Plan node") and §4.4/§4.6. Grounded on straga-Mimir_lite's
// pkg/cypher query-representation structs (ASTClause's tagged-type-plus-
// payload shape) and on spec §9's explicit strategy for a closed node
// variant set: "Tagged-variant enums with dispatch helpers" rather than
// trait objects, since the operator set is closed and known up front.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/ids"
)

// Kind enumerates every plan node category named in spec §3.
type Kind string

const (
	KindScan         Kind = "Scan"
	KindFilter       Kind = "Filter"
	KindProject      Kind = "Project"
	KindSort         Kind = "Sort"
	KindLimit        Kind = "Limit"
	KindTopN         Kind = "TopN"
	KindSample       Kind = "Sample"
	KindDedup        Kind = "Dedup"
	KindAggregate    Kind = "Aggregate"
	KindUnwind       Kind = "Unwind"
	KindAssign       Kind = "Assign"
	KindPatternApply Kind = "PatternApply"
	KindRollUpApply  Kind = "RollUpApply"
	KindTraverse     Kind = "Traverse"
	KindInnerJoin    Kind = "InnerJoin"
	KindLeftJoin     Kind = "LeftJoin"
	KindCrossJoin    Kind = "CrossJoin"
	KindHashJoin     Kind = "HashJoin"
	KindNestedLoopJoin Kind = "NestedLoopJoin"
	KindFullOuterJoin Kind = "FullOuterJoin"
	KindUnion        Kind = "Union"
	KindMinus        Kind = "Minus"
	KindIntersect    Kind = "Intersect"
	KindExpand       Kind = "Expand"
	KindAppendVertices Kind = "AppendVertices"
	KindStart        Kind = "Start"
	KindArgument     Kind = "Argument"
	KindLoop         Kind = "Loop"
	KindPassThrough  Kind = "PassThrough"
	KindSelect       Kind = "Select"
	// Path family (spec §4.6): multi-source BFS and its specializations.
	KindShortestPath      Kind = "ShortestPath"
	KindAllPaths          Kind = "AllPaths"
	KindBFSShortest       Kind = "BFSShortest"
	KindMultiShortestPath Kind = "MultiShortestPath"
	KindSubgraph          Kind = "Subgraph"
	// Physical scan variants chosen by the optimizer's index-selection CBO
	// rules (spec §4.5); the logical planner only ever emits KindScan.
	KindSequentialScan     Kind = "SequentialScan"
	KindIndexScan          Kind = "IndexScan"
	KindIndexFullScan      Kind = "IndexFullScan"
	KindIndexCoveringScan  Kind = "IndexCoveringScan"
	KindUnionAllIndexScan  Kind = "UnionAllIndexScan"
	// DDL/DML leaves.
	KindInsertVertices Kind = "InsertVertices"
	KindInsertEdges    Kind = "InsertEdges"
	KindDelete         Kind = "Delete"
	KindUpdate         Kind = "Update"
	KindCreateSpace    Kind = "CreateSpace"
	KindDropSpace      Kind = "DropSpace"
	KindCreateTag      Kind = "CreateTag"
	KindAlterTag       Kind = "AlterTag"
	KindDropTag        Kind = "DropTag"
	KindCreateEdgeType Kind = "CreateEdgeType"
	KindAlterEdgeType  Kind = "AlterEdgeType"
	KindDropEdgeType   Kind = "DropEdgeType"
	KindCreateIndex    Kind = "CreateIndex"
	KindDropIndex      Kind = "DropIndex"
	KindDescSpace      Kind = "DescSpace"
	KindShowSpaces     Kind = "ShowSpaces"
	KindDescTag        Kind = "DescTag"
	KindShowTags       Kind = "ShowTags"
	KindDescEdgeType   Kind = "DescEdgeType"
	KindShowEdgeTypes  Kind = "ShowEdgeTypes"
	KindDescIndex      Kind = "DescIndex"
	KindShowIndexes    Kind = "ShowIndexes"
	KindRebuildTagIndex  Kind = "RebuildTagIndex"
	KindRebuildEdgeIndex Kind = "RebuildEdgeIndex"
)

// NodeProperties are the node-local properties spec §3 requires: the
// columns a node produces, the columns it requires from its children,
// whether it aggregates, and its grouping keys.
type NodeProperties struct {
	RequiredCols []string
	Aggregating  bool
	GroupKeys    []string
}

// Node is one plan-tree node: a dense id, child references, an output
// column list, a cost estimate, node-local properties, and a kind-specific
// Attrs payload (ScanAttrs, FilterAttrs, ...; see attrs.go).
type Node struct {
	ID         int64
	Kind       Kind
	Children   []*Node
	OutputCols []string
	Cost       float64
	Properties NodeProperties
	Attrs      any
}

// IDGenerator is the single monotonic plan-node id counter — one of spec
// §5's four permitted global singletons.
type IDGenerator struct {
	next int64
}

func NewIDGenerator() *IDGenerator { return &IDGenerator{} }

func (g *IDGenerator) Next() int64 {
	g.next++
	return g.next
}

// ValidateRequiredCols checks spec §8's invariant
// "required_cols ⊆ ⋃(child.output_cols)" for n and every descendant.
func ValidateRequiredCols(n *Node) error {
	if n == nil {
		return nil
	}
	available := map[string]bool{}
	for _, c := range n.Children {
		for _, col := range c.OutputCols {
			available[col] = true
		}
	}
	for _, req := range n.Properties.RequiredCols {
		if !available[req] && len(n.Children) > 0 {
			return fmt.Errorf("plan: node %d (%s) requires column %q not produced by any child", n.ID, n.Kind, req)
		}
	}
	for _, c := range n.Children {
		if err := ValidateRequiredCols(c); err != nil {
			return err
		}
	}
	return nil
}

// Fingerprint produces spec §4.5's stable structural hash: a deterministic
// tree walk over Kind, OutputCols, and Attrs-derived signature text,
// explicitly excluding ids and costs so that logically identical plans
// fingerprint identically regardless of allocation order.
func Fingerprint(n *Node) uint64 {
	var sb strings.Builder
	writeFingerprint(&sb, n)
	lo := ids.MurmurHash2String(sb.String(), 0)
	hi := ids.MurmurHash2String(sb.String(), 1)
	return uint64(hi)<<32 | uint64(lo)
}

func writeFingerprint(sb *strings.Builder, n *Node) {
	if n == nil {
		sb.WriteString("()")
		return
	}
	sb.WriteString(string(n.Kind))
	sb.WriteByte('[')
	cols := append([]string(nil), n.OutputCols...)
	sort.Strings(cols)
	sb.WriteString(strings.Join(cols, ","))
	sb.WriteByte(']')
	sb.WriteString(attrsSignature(n.Attrs))
	sb.WriteByte('{')
	for _, c := range n.Children {
		writeFingerprint(sb, c)
	}
	sb.WriteByte('}')
}

func attrsSignature(attrs any) string {
	switch a := attrs.(type) {
	case ScanAttrs:
		return fmt.Sprintf("scan:space=%d,tag=%d,edge=%d,index=%d,covering=%v,branches=%v,sorted=%v,indexcol=%s", a.Space, a.Tag, a.EdgeType, a.Index, a.Covering, a.Branches, a.Sorted, a.IndexColumn)
	case FilterAttrs:
		return "filter:" + exprSig(a.Predicate)
	case ProjectAttrs:
		parts := make([]string, len(a.Items))
		for i, it := range a.Items {
			parts[i] = it.Alias + "=" + exprSig(it.Expr)
		}
		return "project:" + strings.Join(parts, ",")
	case SortAttrs:
		parts := make([]string, len(a.Keys))
		for i, k := range a.Keys {
			parts[i] = fmt.Sprintf("%s:%v", k.Column, k.Descending)
		}
		return "sort:" + strings.Join(parts, ",")
	case LimitAttrs:
		return fmt.Sprintf("limit:%d,%d", a.Skip, a.Count)
	case JoinAttrs:
		return fmt.Sprintf("join:%s,algo=%s,build=%d", exprSig(a.On), a.Algorithm, a.BuildSide)
	case AggregateAttrs:
		parts := make([]string, len(a.Aggs))
		for i, call := range a.Aggs {
			parts[i] = fmt.Sprintf("%s(%s)=%s", call.Func, exprSig(call.Arg), call.Alias)
		}
		return fmt.Sprintf("agg:group=%s,calls=%s", strings.Join(a.GroupBy, ","), strings.Join(parts, ","))
	case TraverseAttrs:
		return fmt.Sprintf("traverse:depth=%d,noloop=%v,dir=%s", a.MaxDepth, a.NoLoop, a.Direction)
	case PathAttrs:
		return fmt.Sprintf("path:src=%v,dst=%v,types=%v,dir=%s,depth=%d,limit=%d,weight=%s",
			a.Sources, a.Targets, a.EdgeTypes, a.Direction, a.MaxDepth, a.RowLimit, a.WeightProperty)
	default:
		return ""
	}
}

func exprSig(e any) string {
	x, _ := e.(*expr.Expr)
	if x == nil {
		return "()"
	}
	node := *x
	node.Left, node.Right, node.Operand, node.Args = nil, nil, nil, nil
	sig := fmt.Sprintf("%v(", node)
	for _, c := range append([]*expr.Expr{x.Left, x.Right, x.Operand}, x.Args...) {
		sig += exprSig(c)
	}
	return sig + ")"
}
