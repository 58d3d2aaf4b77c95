package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/catalog"
	"github.com/kkkqkx123/graphdb/internal/codec"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/index"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/txn"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// testFixture wires a Context to an in-memory store, mirroring the
// teacher/internal-package tests' newTestManager-style helper so each
// operator test can Begin a txn, write fixture data, then Build/Open the
// operator under it without a real database file.
type testFixture struct {
	t      *testing.T
	store  kv.Store
	mgr    *txn.Manager
	cat    *catalog.Catalog
	idxSvc *index.Service
	space  ids.SpaceId
	txnID  txn.Id
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	store := kv.NewMemoryStore()
	mgr := txn.NewManager(store, txn.DefaultManagerConfig())
	cat := catalog.New()
	idxSvc, err := index.NewService(store, 16)
	require.NoError(t, err)
	space, err := cat.CreateSpace("test")
	require.NoError(t, err)

	id, err := mgr.Begin(context.Background(), txn.Options{})
	require.NoError(t, err)

	return &testFixture{t: t, store: store, mgr: mgr, cat: cat, idxSvc: idxSvc, space: space, txnID: id}
}

func (f *testFixture) ctx() *Context {
	return &Context{Txn: f.mgr, TxnID: f.txnID, Catalog: f.cat, Index: f.idxSvc, Space: f.space}
}

func (f *testFixture) putVertex(v *graph.Vertex) {
	f.t.Helper()
	data, err := codec.EncodeVertex(v)
	require.NoError(f.t, err)
	require.NoError(f.t, f.mgr.Put(f.txnID, codec.VertexKey(f.space, v.ID), data))
}

func (f *testFixture) putEdge(e *graph.Edge) {
	f.t.Helper()
	data, err := codec.EncodeEdge(e)
	require.NoError(f.t, err)
	require.NoError(f.t, f.mgr.Put(f.txnID, codec.EdgeOutKey(f.space, e.Src, e.Type, e.Ranking, e.Dst), data))
	require.NoError(f.t, f.mgr.Put(f.txnID, codec.EdgeInKey(f.space, e.Dst, e.Type, e.Ranking, e.Src), data))
}

// drainOp runs the full Open/Next/Close sequence and returns every row.
func drainOp(t *testing.T, op Operator) []Row {
	t.Helper()
	require.NoError(t, op.Open(context.Background()))
	rows, err := drain(context.Background(), op)
	require.NoError(t, err)
	require.NoError(t, op.Close())
	return rows
}

func personTag(f *testFixture) ids.TagId {
	f.t.Helper()
	tag, err := f.cat.CreateTag(f.space, &graph.TagSchema{Name: "Person", Properties: []graph.PropertyDef{
		{Name: "name", Type: graph.TypeString},
		{Name: "age", Type: graph.TypeInt},
	}})
	require.NoError(f.t, err)
	return tag
}

func knowsType(f *testFixture) ids.EdgeType {
	f.t.Helper()
	et, err := f.cat.CreateEdgeType(f.space, &graph.EdgeTypeSchema{Name: "knows", Properties: []graph.PropertyDef{
		{Name: "since", Type: graph.TypeInt},
	}})
	require.NoError(f.t, err)
	return et
}

func vertex(id ids.VertexId, tag ids.TagId, name string, age int64) *graph.Vertex {
	return &graph.Vertex{
		ID: id,
		Tags: []graph.TagInstance{
			{Tag: tag, Properties: map[string]value.Value{"name": value.String(name), "age": value.Int(age)}},
		},
	}
}

// --- Scan family ---

func TestScanVerticesFiltersByTag(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))

	n := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"v"}, Attrs: plan.ScanAttrs{Tag: person}}
	op, err := newScanOperator(f.ctx(), n)
	require.NoError(t, err)

	rows := drainOp(t, op)
	require.Len(t, rows, 2)
	names := map[string]bool{}
	for _, r := range rows {
		vx := r["v"].GraphPayload().(*graph.Vertex)
		names[vx.TagProperties(person)["name"].Str()] = true
	}
	assert.True(t, names["alice"])
	assert.True(t, names["bob"])
}

func TestGetVerticesSkipsMissingIds(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	f.putVertex(vertex(1, person, "alice", 30))

	n := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"v"}, Attrs: plan.ScanAttrs{VertexIDs: []ids.VertexId{1, 999}}}
	op, err := newScanOperator(f.ctx(), n)
	require.NoError(t, err)

	rows := drainOp(t, op)
	require.Len(t, rows, 1, "a nonexistent vertex id must be silently dropped, not errored")
}

func TestScanEdgesFiltersByType(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Ranking: 0, Properties: map[string]value.Value{"since": value.Int(2020)}})

	n := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"e"}, Attrs: plan.ScanAttrs{EdgeType: knows}}
	op, err := newScanOperator(f.ctx(), n)
	require.NoError(t, err)

	rows := drainOp(t, op)
	require.Len(t, rows, 1)
	e := rows[0]["e"].GraphPayload().(*graph.Edge)
	assert.Equal(t, ids.VertexId(1), e.Src)
	assert.Equal(t, ids.VertexId(2), e.Dst)
}

func TestGetNeighborsBindsDestinationVertex(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Properties: map[string]value.Value{}})

	n := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"e", "dst"}, Attrs: plan.ScanAttrs{VertexIDs: []ids.VertexId{1}, EdgeType: knows}}
	op, err := newScanOperator(f.ctx(), n)
	require.NoError(t, err)

	rows := drainOp(t, op)
	require.Len(t, rows, 1)
	dst := rows[0]["dst"].GraphPayload().(*graph.Vertex)
	assert.Equal(t, ids.VertexId(2), dst.ID)
}

func TestIndexScanLooksUpByTagIndex(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 30))
	f.putVertex(vertex(3, person, "carol", 40))

	idxID, err := f.cat.CreateIndex(f.space, &graph.IndexSchema{Name: "age_idx", Kind: graph.IndexKindTag, Tag: person, Columns: []string{"age"}})
	require.NoError(t, err)
	idx, _ := f.cat.IndexByID(f.space, idxID)

	rawTxn, err := f.mgr.RawTxn(f.txnID)
	require.NoError(t, err)
	require.NoError(t, f.idxSvc.InsertTagEntry(context.Background(), rawTxn, f.space, idx, 1, []value.Value{value.Int(30)}))
	require.NoError(t, f.idxSvc.InsertTagEntry(context.Background(), rawTxn, f.space, idx, 2, []value.Value{value.Int(30)}))
	require.NoError(t, f.idxSvc.InsertTagEntry(context.Background(), rawTxn, f.space, idx, 3, []value.Value{value.Int(40)}))

	n := &plan.Node{Kind: plan.KindIndexScan, OutputCols: []string{"v"}, Attrs: plan.ScanAttrs{
		Index:   idxID,
		SeekKey: []expr.Expr{*expr.Lit(value.Int(30))},
	}}
	op, err := newScanOperator(f.ctx(), n)
	require.NoError(t, err)

	rows := drainOp(t, op)
	require.Len(t, rows, 2, "only the two age=30 vertices should be returned")
}

// --- Filter / Project ---

func TestFilterAdmitsOnlyTruthyRows(t *testing.T) {
	rows := []Row{{"n": value.Int(1)}, {"n": value.Int(2)}, {"n": value.Int(3)}}
	child := &staticOperator{rows: rows}
	n := &plan.Node{Attrs: plan.FilterAttrs{Predicate: expr.Binary(expr.OpGte, expr.Var("n"), expr.Lit(value.Int(2)))}}
	op, err := newFilterOperator(&Context{}, n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 2)
	assert.Equal(t, int64(2), out[0]["n"].Int())
	assert.Equal(t, int64(3), out[1]["n"].Int())
}

func TestProjectEvaluatesItems(t *testing.T) {
	rows := []Row{{"n": value.Int(5)}}
	child := &staticOperator{rows: rows}
	n := &plan.Node{Attrs: plan.ProjectAttrs{Items: []plan.ProjectItem{
		{Alias: "doubled", Expr: expr.Binary(expr.OpMul, expr.Var("n"), expr.Lit(value.Int(2)))},
	}}}
	op, err := newProjectOperator(&Context{}, n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 1)
	assert.Equal(t, int64(10), out[0]["doubled"].Int())
}

// --- Join family ---

func TestInnerJoinHashAlgorithm(t *testing.T) {
	left := &staticOperator{rows: []Row{{"a": value.Int(1)}, {"a": value.Int(2)}}}
	right := &staticOperator{rows: []Row{{"b": value.Int(2)}, {"b": value.Int(3)}}}
	n := &plan.Node{
		Kind:     plan.KindInnerJoin,
		Children: []*plan.Node{{OutputCols: []string{"a"}}, {OutputCols: []string{"b"}}},
		Attrs: plan.JoinAttrs{
			On:        expr.Binary(expr.OpEq, expr.Var("a"), expr.Var("b")),
			Algorithm: plan.JoinAlgoHash,
		},
	}
	op, err := newJoinOperator(&Context{}, n, []Operator{left, right})
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0]["a"].Int())
	assert.Equal(t, int64(2), out[0]["b"].Int())
}

func TestLeftJoinPadsUnmatchedWithNull(t *testing.T) {
	left := &staticOperator{rows: []Row{{"a": value.Int(1)}, {"a": value.Int(2)}}}
	right := &staticOperator{rows: []Row{{"b": value.Int(2)}}}
	n := &plan.Node{
		Kind:     plan.KindLeftJoin,
		Children: []*plan.Node{{OutputCols: []string{"a"}}, {OutputCols: []string{"b"}}},
		Attrs:    plan.JoinAttrs{On: expr.Binary(expr.OpEq, expr.Var("a"), expr.Var("b"))},
	}
	op, err := newJoinOperator(&Context{}, n, []Operator{left, right})
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 2)
	var sawNull bool
	for _, r := range out {
		if r["b"].IsNull() {
			sawNull = true
		}
	}
	assert.True(t, sawNull, "unmatched left row must still appear with NULL on the right side")
}

// --- Set operations ---

func TestUnionDeduplicates(t *testing.T) {
	left := &staticOperator{rows: []Row{{"n": value.Int(1)}, {"n": value.Int(2)}}}
	right := &staticOperator{rows: []Row{{"n": value.Int(2)}, {"n": value.Int(3)}}}
	op, err := newUnionOperator([]Operator{left, right})
	require.NoError(t, err)

	out := drainOp(t, op)
	assert.Len(t, out, 3, "Union removes the duplicate n=2 row")
}

func TestIntersectKeepsOnlyCommonRows(t *testing.T) {
	left := &staticOperator{rows: []Row{{"n": value.Int(1)}, {"n": value.Int(2)}}}
	right := &staticOperator{rows: []Row{{"n": value.Int(2)}, {"n": value.Int(3)}}}
	op, err := newIntersectOperator([]Operator{left, right})
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0]["n"].Int())
}

func TestMinusRemovesRightRows(t *testing.T) {
	left := &staticOperator{rows: []Row{{"n": value.Int(1)}, {"n": value.Int(2)}}}
	right := &staticOperator{rows: []Row{{"n": value.Int(2)}}}
	op, err := newMinusOperator([]Operator{left, right})
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0]["n"].Int())
}

// --- Ordering family ---

func TestSortOrdersByKeyDescending(t *testing.T) {
	child := &staticOperator{rows: []Row{{"n": value.Int(1)}, {"n": value.Int(3)}, {"n": value.Int(2)}}}
	n := &plan.Node{Attrs: plan.SortAttrs{Keys: []plan.SortKey{{Column: "n", Descending: true}}}}
	op, err := newSortOperator(n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 3)
	assert.Equal(t, int64(3), out[0]["n"].Int())
	assert.Equal(t, int64(2), out[1]["n"].Int())
	assert.Equal(t, int64(1), out[2]["n"].Int())
}

func TestLimitSkipsThenBounds(t *testing.T) {
	child := &staticOperator{rows: []Row{{"n": value.Int(1)}, {"n": value.Int(2)}, {"n": value.Int(3)}}}
	n := &plan.Node{Attrs: plan.LimitAttrs{Skip: 1, Count: 1}}
	op, err := newLimitOperator(n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0]["n"].Int())
}

func TestDedupRemovesDuplicateRows(t *testing.T) {
	child := &staticOperator{rows: []Row{{"n": value.Int(1)}, {"n": value.Int(1)}, {"n": value.Int(2)}}}
	n := &plan.Node{Attrs: plan.DedupAttrs{}}
	op, err := newDedupOperator(n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	assert.Len(t, out, 2)
}

// --- Aggregate ---

func TestAggregateCountAndSumPerGroup(t *testing.T) {
	child := &staticOperator{rows: []Row{
		{"grp": value.String("a"), "n": value.Int(1)},
		{"grp": value.String("a"), "n": value.Int(2)},
		{"grp": value.String("b"), "n": value.Int(5)},
	}}
	n := &plan.Node{Attrs: plan.AggregateAttrs{
		GroupBy: []string{"grp"},
		Aggs: []plan.AggCall{
			{Func: "COUNT", Alias: "cnt"},
			{Func: "SUM", Arg: expr.Var("n"), Alias: "total"},
		},
	}}
	op, err := newAggregateOperator(&Context{}, n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 2)
	byGroup := map[string]Row{}
	for _, r := range out {
		byGroup[r["grp"].Str()] = r
	}
	assert.Equal(t, int64(2), byGroup["a"]["cnt"].Int())
	assert.Equal(t, float64(3), byGroup["a"]["total"].Float())
	assert.Equal(t, int64(1), byGroup["b"]["cnt"].Int())
	assert.Equal(t, float64(5), byGroup["b"]["total"].Float())
}

// --- Traverse family ---

func TestTraverseOneHopBindsEdgeAndDestination(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Properties: map[string]value.Value{}})

	seedRow := Row{"src": vertex(1, person, "alice", 30).AsValue()}
	child := &staticOperator{rows: []Row{seedRow}}
	n := &plan.Node{
		Children:   []*plan.Node{{OutputCols: []string{"src"}}},
		OutputCols: []string{"src", "e", "dst"},
		Attrs:      plan.TraverseAttrs{MaxDepth: 1, Direction: plan.DirOutgoing},
	}
	op, err := newTraverseOperator(f.ctx(), n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 1)
	dst := out[0]["dst"].GraphPayload().(*graph.Vertex)
	assert.Equal(t, ids.VertexId(2), dst.ID)
}

func TestTraverseMinDepthExcludesShallowerHops(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))
	f.putVertex(vertex(3, person, "carol", 35))
	f.putVertex(vertex(4, person, "dan", 28))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Properties: map[string]value.Value{}})
	f.putEdge(&graph.Edge{Src: 1, Dst: 3, Type: knows, Properties: map[string]value.Value{}})
	f.putEdge(&graph.Edge{Src: 2, Dst: 3, Type: knows, Properties: map[string]value.Value{}})
	f.putEdge(&graph.Edge{Src: 3, Dst: 4, Type: knows, Properties: map[string]value.Value{}})

	seedRow := Row{"src": vertex(1, person, "alice", 30).AsValue()}
	child := &staticOperator{rows: []Row{seedRow}}
	n := &plan.Node{
		Children:   []*plan.Node{{OutputCols: []string{"src"}}},
		OutputCols: []string{"src", "e", "dst"},
		Attrs:      plan.TraverseAttrs{MinDepth: 2, MaxDepth: 2, Direction: plan.DirOutgoing},
	}
	op, err := newTraverseOperator(f.ctx(), n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	got := map[ids.VertexId]bool{}
	for _, r := range out {
		got[r["dst"].GraphPayload().(*graph.Vertex).ID] = true
	}
	assert.Equal(t, map[ids.VertexId]bool{3: true, 4: true}, got, "an exactly-2-hops pattern must return only depth-2 destinations; 2 is reached only at depth 1")
}

func TestTraverseMaxDepthZeroReturnsStartSet(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Properties: map[string]value.Value{}})

	seedRow := Row{"src": vertex(1, person, "alice", 30).AsValue()}
	child := &staticOperator{rows: []Row{seedRow}}
	n := &plan.Node{
		Children:   []*plan.Node{{OutputCols: []string{"src"}}},
		OutputCols: []string{"src", "e", "dst"},
		Attrs:      plan.TraverseAttrs{MaxDepth: 0, Direction: plan.DirOutgoing},
	}
	op, err := newTraverseOperator(f.ctx(), n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Equal(t, []Row{seedRow}, out, "MaxDepth 0 must return the start set unchanged")
}

// --- Path family ---

func TestShortestPathUnweightedBFS(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "a", 1))
	f.putVertex(vertex(2, person, "b", 2))
	f.putVertex(vertex(3, person, "c", 3))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Properties: map[string]value.Value{}})
	f.putEdge(&graph.Edge{Src: 2, Dst: 3, Type: knows, Properties: map[string]value.Value{}})

	n := &plan.Node{
		Kind:       plan.KindBFSShortest,
		OutputCols: []string{"p"},
		Attrs:      plan.PathAttrs{Sources: []ids.VertexId{1}, Targets: []ids.VertexId{3}, MaxDepth: 5},
	}
	op, err := newPathOperator(f.ctx(), n)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 1)
	path := out[0]["p"].GraphPayload().(*graph.Path)
	assert.Equal(t, ids.VertexId(1), path.Src.ID)
	require.Len(t, path.Steps, 2)
	assert.Equal(t, ids.VertexId(3), path.Steps[1].Dst.ID)
}

func TestMultiShortestPathReturnsDistances(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "a", 1))
	f.putVertex(vertex(2, person, "b", 2))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Properties: map[string]value.Value{}})

	n := &plan.Node{
		Kind:       plan.KindMultiShortestPath,
		OutputCols: []string{"v", "dist"},
		Attrs:      plan.PathAttrs{Sources: []ids.VertexId{1}, MaxDepth: 5, RowLimit: 100},
	}
	op, err := newPathOperator(f.ctx(), n)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 2, "source and its one neighbor should both be reachable")
}

// --- Unwind ---

func TestUnwindExpandsListIntoRows(t *testing.T) {
	rows := []Row{{"xs": value.List([]value.Value{value.Int(1), value.Int(2), value.Int(3)})}}
	child := &staticOperator{rows: rows}
	n := &plan.Node{Attrs: plan.UnwindAttrs{Source: expr.Var("xs"), Alias: "x"}}
	op, err := newUnwindOperator(&Context{}, n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	require.Len(t, out, 3)
	assert.Equal(t, int64(1), out[0]["x"].Int())
	assert.Equal(t, int64(2), out[1]["x"].Int())
	assert.Equal(t, int64(3), out[2]["x"].Int())
}

func TestUnwindOfNonListYieldsNoRows(t *testing.T) {
	rows := []Row{{"xs": value.Int(7)}}
	child := &staticOperator{rows: rows}
	n := &plan.Node{Attrs: plan.UnwindAttrs{Source: expr.Var("xs"), Alias: "x"}}
	op, err := newUnwindOperator(&Context{}, n, child)
	require.NoError(t, err)

	out := drainOp(t, op)
	assert.Empty(t, out)
}

// --- DDL/DML ---

func TestInsertVerticesThenGetVertices(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)

	insertN := &plan.Node{Kind: plan.KindInsertVertices, Attrs: plan.InsertVerticesAttrs{
		Vertices: []plan.VertexSpec{
			{ID: 1, Tags: []plan.TagValue{{Tag: person, Properties: map[string]*expr.Expr{
				"name": expr.Lit(value.String("alice")),
				"age":  expr.Lit(value.Int(30)),
			}}}},
		},
	}}
	insertOp, err := newDDLOperator(f.ctx(), insertN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, insertOp))

	scanN := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"v"}, Attrs: plan.ScanAttrs{VertexIDs: []ids.VertexId{1}}}
	scanOp, err := newScanOperator(f.ctx(), scanN)
	require.NoError(t, err)
	rows := drainOp(t, scanOp)
	require.Len(t, rows, 1)
	v := rows[0]["v"].GraphPayload().(*graph.Vertex)
	assert.Equal(t, "alice", v.TagProperties(person)["name"].Str())
}

func TestInsertEdgesThenScanEdges(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))

	insertN := &plan.Node{Kind: plan.KindInsertEdges, Attrs: plan.InsertEdgesAttrs{
		Edges: []plan.EdgeSpec{
			{Src: 1, Dst: 2, Type: knows, Properties: map[string]*expr.Expr{"since": expr.Lit(value.Int(2021))}},
		},
	}}
	insertOp, err := newDDLOperator(f.ctx(), insertN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, insertOp))

	scanN := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"e"}, Attrs: plan.ScanAttrs{EdgeType: knows}}
	scanOp, err := newScanOperator(f.ctx(), scanN)
	require.NoError(t, err)
	rows := drainOp(t, scanOp)
	require.Len(t, rows, 1)
	e := rows[0]["e"].GraphPayload().(*graph.Edge)
	assert.Equal(t, int64(2021), e.Properties["since"].Int())
}

func TestUpdateVertexSeesPriorValueInSetExpression(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	f.putVertex(vertex(1, person, "alice", 30))

	// SET keys bind to the tag's prior property row directly, so the
	// expression reads the old value via a plain Var.
	updateN := &plan.Node{Kind: plan.KindUpdate, Attrs: plan.UpdateAttrs{
		Vertices: []ids.VertexId{1},
		Tag:      person,
		Set:      map[string]*expr.Expr{"age": expr.Binary(expr.OpAdd, expr.Var("age"), expr.Lit(value.Int(1)))},
	}}
	updateOp, err := newDDLOperator(f.ctx(), updateN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, updateOp))

	data, err := f.mgr.Get(f.txnID, codec.VertexKey(f.space, 1))
	require.NoError(t, err)
	v, err := codec.DecodeVertex(data)
	require.NoError(t, err)
	assert.Equal(t, int64(31), v.TagProperties(person)["age"].Int())
}

func TestDeleteVertexCascadesIncidentEdges(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	knows := knowsType(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 25))
	f.putEdge(&graph.Edge{Src: 1, Dst: 2, Type: knows, Properties: map[string]value.Value{}})

	deleteN := &plan.Node{Kind: plan.KindDelete, Attrs: plan.DeleteAttrs{Vertices: []ids.VertexId{1}}}
	deleteOp, err := newDDLOperator(f.ctx(), deleteN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, deleteOp))

	_, err = f.mgr.Get(f.txnID, codec.VertexKey(f.space, 1))
	assert.Error(t, err, "deleted vertex must no longer be readable")

	scanN := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"e"}, Attrs: plan.ScanAttrs{EdgeType: knows}}
	scanOp, err := newScanOperator(f.ctx(), scanN)
	require.NoError(t, err)
	rows := drainOp(t, scanOp)
	assert.Empty(t, rows, "incident edge must be removed along with its vertex")
}

func TestCreateAndDropSpace(t *testing.T) {
	f := newFixture(t)

	createN := &plan.Node{Kind: plan.KindCreateSpace, Attrs: plan.CreateSpaceAttrs{Name: "other"}}
	createOp, err := newDDLOperator(f.ctx(), createN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, createOp))

	_, ok := f.cat.SpaceByName("other")
	assert.True(t, ok)

	dropN := &plan.Node{Kind: plan.KindDropSpace, Attrs: plan.DropSpaceAttrs{Name: "other"}}
	dropOp, err := newDDLOperator(f.ctx(), dropN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, dropOp))

	_, ok = f.cat.SpaceByName("other")
	assert.False(t, ok)
}

func TestCreateTagThenDescTag(t *testing.T) {
	f := newFixture(t)

	createN := &plan.Node{Kind: plan.KindCreateTag, Attrs: plan.CreateTagAttrs{
		Name: "City",
		Properties: []graph.PropertyDef{
			{Name: "name", Type: graph.TypeString},
			{Name: "population", Type: graph.TypeInt, Nullable: true},
		},
	}}
	createOp, err := newDDLOperator(f.ctx(), createN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, createOp))

	descN := &plan.Node{Kind: plan.KindDescTag, OutputCols: []string{"name", "type", "nullable"}, Attrs: plan.DescTagAttrs{Name: "City"}}
	descOp, err := newDDLOperator(f.ctx(), descN, nil)
	require.NoError(t, err)
	rows := drainOp(t, descOp)
	require.Len(t, rows, 2)
	assert.Equal(t, "name", rows[0]["name"].Str())
	assert.Equal(t, "population", rows[1]["name"].Str())
}

func TestCreateIndexThenRebuild(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	f.putVertex(vertex(1, person, "alice", 30))
	f.putVertex(vertex(2, person, "bob", 30))

	createN := &plan.Node{Kind: plan.KindCreateIndex, Attrs: plan.CreateIndexAttrs{
		Name: "age_idx", Kind: graph.IndexKindTag, Tag: person, Columns: []string{"age"},
	}}
	createOp, err := newDDLOperator(f.ctx(), createN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, createOp))

	rebuildN := &plan.Node{Kind: plan.KindRebuildTagIndex, Attrs: plan.RebuildTagIndexAttrs{Name: "age_idx"}}
	rebuildOp, err := newDDLOperator(f.ctx(), rebuildN, nil)
	require.NoError(t, err)
	require.Empty(t, drainOp(t, rebuildOp))

	idxID, ok := f.cat.IndexByName(f.space, "age_idx")
	require.True(t, ok)

	scanN := &plan.Node{Kind: plan.KindIndexScan, OutputCols: []string{"v"}, Attrs: plan.ScanAttrs{
		Index:   idxID.ID,
		SeekKey: []expr.Expr{*expr.Lit(value.Int(30))},
	}}
	scanOp, err := newScanOperator(f.ctx(), scanN)
	require.NoError(t, err)
	rows := drainOp(t, scanOp)
	assert.Len(t, rows, 2, "rebuild must have repopulated the index from base vertex data")
}

// --- Build dispatcher ---

func TestBuildDispatchesScanKind(t *testing.T) {
	f := newFixture(t)
	person := personTag(f)
	f.putVertex(vertex(1, person, "alice", 30))

	n := &plan.Node{Kind: plan.KindScan, OutputCols: []string{"v"}, Attrs: plan.ScanAttrs{Tag: person}}
	op, err := Build(f.ctx(), n)
	require.NoError(t, err)
	rows := drainOp(t, op)
	assert.Len(t, rows, 1)
}

func TestBuildRejectsNilNode(t *testing.T) {
	_, err := Build(&Context{}, nil)
	assert.Error(t, err)
}

// staticOperator is a minimal Operator backed by a fixed row slice, used
// where a test needs a stand-in child rather than a real scan.
type staticOperator struct {
	baseStats
	rows []Row
	pos  int
}

func (s *staticOperator) Open(ctx context.Context) error { s.onOpen(); s.pos = 0; return nil }

func (s *staticOperator) Next(ctx context.Context) (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	r := s.rows[s.pos]
	s.pos++
	s.onRow()
	return r, nil
}

func (s *staticOperator) Close() error { s.onClose(); return nil }
func (s *staticOperator) Stats() Stats { return s.stats() }
