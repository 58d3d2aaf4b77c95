// Package executor implements the operator library of spec §4.6
// ("Executors"): a volcano-style open/next/close operator per plan.Kind,
// driven by a top-level Build dispatcher over a physical plan.Node tree.
//
// No single teacher file provides this contract — straga-Mimir_lite's
// cypher.StorageExecutor.Execute dispatches on a parsed-query string/AST
// tree directly against storage rather than exposing a uniform
// open/next/close operator interface over a separate physical-plan
// representation. This package is therefore built directly from spec
// §4.6's operator-family table and uniform-contract text; each file's
// header names the exact family it implements. DDL/DML leaves are the one
// place the teacher's shape carries over directly: they bypass the
// plan/optimizer path and dispatch straight against storage, the way
// StorageExecutor.Execute does for CREATE/DELETE/SET/REMOVE.
package executor

import (
	"context"
	"time"

	"github.com/kkkqkx123/graphdb/internal/catalog"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/index"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/txn"
)

// Row is one evaluation/output row, keyed by column/variable name.
type Row = expr.Row

// Stats is the per-operator runtime profile spec §4.6 requires be
// collectible for EXPLAIN ANALYZE: actual_time_ms, actual_rows,
// actual_loops, cache_hits, cache_misses.
type Stats struct {
	ActualTimeMs float64
	ActualRows   int64
	ActualLoops  int64
	CacheHits    int64
	CacheMisses  int64
}

// Operator is the uniform volcano-style contract every plan.Kind compiles
// to (spec §4.6 "every operator exposes open/next/close"). Next returns
// (nil, nil) at end of input.
type Operator interface {
	Open(ctx context.Context) error
	Next(ctx context.Context) (Row, error)
	Close() error
	Stats() Stats
}

// Context wires one statement execution to the live transaction, schema
// catalog, index service, and function table it runs against (spec §2's
// component list, bound to one in-flight transaction and space).
type Context struct {
	Txn       *txn.Manager
	TxnID     txn.Id
	Catalog   *catalog.Catalog
	Index     *index.Service
	Space     ids.SpaceId
	Functions expr.Functions
}

// baseStats is embedded by every concrete operator: it tracks Open-to-Close
// wall time and the per-Next row count so Stats() needs no bespoke
// bookkeeping in each operator.
type baseStats struct {
	opened   time.Time
	closed   time.Time
	rows     int64
	loops    int64
	cacheHit int64
	cacheMis int64
}

func (b *baseStats) onOpen()     { b.opened = time.Now() }
func (b *baseStats) onRow()      { b.rows++ }
func (b *baseStats) onLoop()     { b.loops++ }
func (b *baseStats) onCacheHit() { b.cacheHit++ }
func (b *baseStats) onCacheMiss(){ b.cacheMis++ }
func (b *baseStats) onClose()    { b.closed = time.Now() }

func (b *baseStats) stats() Stats {
	end := b.closed
	if end.IsZero() {
		end = time.Now()
	}
	return Stats{
		ActualTimeMs: end.Sub(b.opened).Seconds() * 1000,
		ActualRows:   b.rows,
		ActualLoops:  b.loops,
		CacheHits:    b.cacheHit,
		CacheMisses:  b.cacheMis,
	}
}

// Build compiles a physical plan.Node into its Operator, recursively
// building children first (spec §4.6 operators are driven bottom-up by
// their parent's Next calls).
func Build(ec *Context, n *plan.Node) (Operator, error) {
	if n == nil {
		return nil, grapherr.New(grapherr.KindInternal, grapherr.CodeInternalError, "executor: nil plan node")
	}

	children := make([]Operator, 0, len(n.Children))
	for _, c := range n.Children {
		op, err := Build(ec, c)
		if err != nil {
			return nil, err
		}
		children = append(children, op)
	}

	switch n.Kind {
	case plan.KindStart:
		return newStartOperator(), nil
	case plan.KindArgument:
		return newArgumentOperator(n), nil
	case plan.KindPassThrough:
		return newPassThroughOperator(child1(children)), nil
	case plan.KindSelect:
		return newSelectOperator(ec, n, child1(children))
	case plan.KindLoop:
		return newLoopOperator(ec, n, child1(children))

	case plan.KindScan, plan.KindSequentialScan, plan.KindIndexScan, plan.KindIndexFullScan,
		plan.KindIndexCoveringScan, plan.KindUnionAllIndexScan:
		return newScanOperator(ec, n)

	case plan.KindFilter:
		return newFilterOperator(ec, n, child1(children))
	case plan.KindProject:
		return newProjectOperator(ec, n, child1(children))

	case plan.KindSort:
		return newSortOperator(n, child1(children))
	case plan.KindLimit:
		return newLimitOperator(n, child1(children))
	case plan.KindTopN:
		return newTopNOperator(n, child1(children))
	case plan.KindSample:
		return newSampleOperator(n, child1(children))
	case plan.KindDedup:
		return newDedupOperator(n, child1(children))

	case plan.KindAggregate:
		return newAggregateOperator(ec, n, child1(children))

	case plan.KindInnerJoin, plan.KindLeftJoin, plan.KindFullOuterJoin, plan.KindCrossJoin,
		plan.KindHashJoin, plan.KindNestedLoopJoin:
		return newJoinOperator(ec, n, children)

	case plan.KindUnion:
		return newUnionOperator(children)
	case plan.KindIntersect:
		return newIntersectOperator(children)
	case plan.KindMinus:
		return newMinusOperator(children)

	case plan.KindTraverse, plan.KindExpand, plan.KindAppendVertices:
		return newTraverseOperator(ec, n, child1(children))

	case plan.KindShortestPath, plan.KindAllPaths, plan.KindBFSShortest,
		plan.KindMultiShortestPath, plan.KindSubgraph:
		return newPathOperator(ec, n)

	case plan.KindUnwind:
		return newUnwindOperator(ec, n, child1(children))

	case plan.KindInsertVertices, plan.KindInsertEdges, plan.KindDelete, plan.KindUpdate,
		plan.KindCreateSpace, plan.KindDropSpace,
		plan.KindCreateTag, plan.KindAlterTag, plan.KindDropTag,
		plan.KindCreateEdgeType, plan.KindAlterEdgeType, plan.KindDropEdgeType,
		plan.KindCreateIndex, plan.KindDropIndex,
		plan.KindDescSpace, plan.KindShowSpaces, plan.KindDescTag, plan.KindShowTags,
		plan.KindDescEdgeType, plan.KindShowEdgeTypes, plan.KindDescIndex, plan.KindShowIndexes,
		plan.KindRebuildTagIndex, plan.KindRebuildEdgeIndex:
		return newDDLOperator(ec, n, child1(children))

	default:
		return nil, grapherr.New(grapherr.KindInternal, grapherr.CodeInternalError, "executor: unsupported plan kind "+string(n.Kind))
	}
}

// child1 returns the sole child operator, or nil for a leaf.
func child1(children []Operator) Operator {
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

// drain pulls every remaining row from op — used by operators (Sort,
// Aggregate, hash-join build side, ...) that must materialize their input
// before producing their first output row.
func drain(ctx context.Context, op Operator) ([]Row, error) {
	var rows []Row
	for {
		r, err := op.Next(ctx)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return rows, nil
		}
		rows = append(rows, r)
	}
}
