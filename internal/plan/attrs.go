package plan

import (
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/ids"
)

// Direction filters traversal/expand by edge orientation.
type Direction string

const (
	DirOutgoing Direction = "outgoing"
	DirIncoming Direction = "incoming"
	DirBoth     Direction = "both"
)

// ScanAttrs parameterizes IndexScan/ScanVertices/ScanEdges/GetVertices/
// GetEdges/GetNeighbors leaves. Tag/EdgeType/Index are zero when not
// applicable to the concrete scan kind.
type ScanAttrs struct {
	Space    ids.SpaceId
	Tag      ids.TagId
	EdgeType ids.EdgeType
	Index    ids.IndexId
	SeekKey  []expr.Expr // values bound to index columns, for IndexScan
	VertexIDs []ids.VertexId // for GetVertices/GetNeighbors batch lookups
	Covering  bool            // true for IndexCoveringScan: no base-row fetch needed
	Branches  []ids.IndexId   // per-value index ids unioned by UnionAllIndexScan
	Sorted      bool   // true when Index delivers rows pre-sorted by IndexColumn
	IndexColumn string // leading column Index is sorted by, when Sorted
}

type FilterAttrs struct {
	Predicate *expr.Expr
}

type ProjectItem struct {
	Alias string
	Expr  *expr.Expr
}

type ProjectAttrs struct {
	Items []ProjectItem
}

type SortKey struct {
	Column     string
	Descending bool
}

type SortAttrs struct {
	Keys []SortKey
}

// LimitAttrs parameterizes Limit. A fused TopN node carries TopNAttrs
// instead, built by the planner's fuseTopN rewrite rule.
type LimitAttrs struct {
	Skip  int64
	Count int64
}

// JoinAlgorithm names the physical join strategy the optimizer chose
// between two algebraically equivalent join expressions (spec §4.5's
// "choose algorithm (hash vs nested-loop) ... by estimated row counts and
// presence of equijoin keys").
type JoinAlgorithm string

const (
	JoinAlgoUnset      JoinAlgorithm = ""
	JoinAlgoHash       JoinAlgorithm = "hash"
	JoinAlgoNestedLoop JoinAlgorithm = "nested_loop"
)

// JoinType records the logical join semantics (inner/left/full-outer/cross)
// independent of Kind, so that a Kind rewritten to the physical
// KindHashJoin/KindNestedLoopJoin by the optimizer's algorithm-selection
// rule (which only changes Kind and Algorithm/BuildSide, copying the rest
// of JoinAttrs unchanged) still carries the outer-join semantics the
// executor must honor.
type JoinType string

const (
	JoinTypeInner     JoinType = "inner"
	JoinTypeLeft      JoinType = "left"
	JoinTypeFullOuter JoinType = "full_outer"
	JoinTypeCross     JoinType = "cross"
)

type JoinAttrs struct {
	On        *expr.Expr // nil for CrossJoin
	Type      JoinType
	Algorithm JoinAlgorithm
	BuildSide int // 0 = left child is the build/outer side, 1 = right
}

type AggCall struct {
	Func  string // COUNT, SUM, AVG, MIN, MAX, STD, BIT_AND, BIT_OR, BIT_XOR, COLLECT, COLLECT_SET
	Arg   *expr.Expr // nil for COUNT(*)
	Alias string
}

type AggregateAttrs struct {
	GroupBy []string
	Aggs    []AggCall
}

type TraverseAttrs struct {
	EdgeTypes []ids.EdgeType
	Direction Direction
	MinDepth  int // hops required before a row is emitted; <= 0 means 1 (the default, exactly-or-more-than-one-hop)
	MaxDepth  int
	NoLoop    bool
}

// TopNAttrs fuses a Sort immediately followed by a Limit (spec §4.4
// "ORDER BY/SKIP/LIMIT become Sort+Limit (coalesced into TopN when
// adjacent)").
type TopNAttrs struct {
	Keys  []SortKey
	Count int64
}

// SampleAttrs bounds the Sample operator (spec §4.6's ordering family) to a
// uniform random subset of at most Count rows from its child.
type SampleAttrs struct {
	Count int64
}

// DedupAttrs names the columns whose combined value must be unique; empty
// means "dedup on the whole row".
type DedupAttrs struct {
	Columns []string
}

// UnwindAttrs expands a list-valued expression into one row per element,
// binding element values to Alias.
type UnwindAttrs struct {
	Source *expr.Expr
	Alias  string
}

// PathAttrs parameterizes the Path family (ShortestPath/AllPaths/
// BFSShortest/MultiShortestPath/Subgraph): multi-source BFS with a
// configurable edge-direction filter, edge-type whitelist, and row limit
// (spec §4.6 "Path" row). Sources/Targets hold literal vertex ids bound at
// plan time; WeightProperty names the edge property ShortestPath minimizes
// when non-empty (unweighted hop-count BFS otherwise).
type PathAttrs struct {
	Sources       []ids.VertexId
	Targets       []ids.VertexId
	EdgeTypes     []ids.EdgeType
	Direction     Direction
	MaxDepth      int
	RowLimit      int64
	WeightProperty string
}
