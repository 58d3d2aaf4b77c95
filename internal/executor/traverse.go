// Traverse family (spec §4.6): Traverse, Expand, AppendVertices — one-or-
//-more-hop expansion from the vertex bound in each input row's last
// column. Expand (MinDepth/MaxDepth fixed per the pattern's hop bounds —
// planner.lowerExpand) and Traverse (variable-length patterns) share one
// implementation: a bounded BFS per input row that walks every depth from
// 1 through MaxDepth but only emits a row once its depth reaches MinDepth,
// each emitted row binding the traversed edge and destination vertex to
// the node's trailing two output columns. MaxDepth == 0 is the spec §8
// boundary case and short-circuits to the input rows unchanged, with no
// hop attempted at all.
//
// AppendVertices carries no TraverseAttrs (planner.lowerExpand passes nil)
// because Expand already resolves and binds the full destination vertex
// itself; AppendVertices is therefore a pure pass-through here.
package executor

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/codec"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

type traverseOperator struct {
	baseStats
	ec       *Context
	n        *plan.Node
	child    Operator
	attrs    plan.TraverseAttrs
	hasAttrs bool
	fromCol  string
	edgeCol  string
	dstCol   string
	out      []Row
	pos      int
}

func newTraverseOperator(ec *Context, n *plan.Node, child Operator) (*traverseOperator, error) {
	t := &traverseOperator{ec: ec, n: n, child: child}
	if n.Kind == plan.KindAppendVertices {
		return t, nil
	}
	a, ok := n.Attrs.(plan.TraverseAttrs)
	if !ok {
		return nil, badAttrs(n, "TraverseAttrs")
	}
	t.attrs = a
	t.hasAttrs = true
	if len(n.Children) == 1 {
		childCols := n.Children[0].OutputCols
		if len(childCols) > 0 {
			t.fromCol = childCols[len(childCols)-1]
		}
	}
	if len(n.OutputCols) >= 2 {
		t.edgeCol = n.OutputCols[len(n.OutputCols)-2]
		t.dstCol = n.OutputCols[len(n.OutputCols)-1]
	}
	return t, nil
}

func (t *traverseOperator) Open(ctx context.Context) error {
	t.onOpen()
	if err := t.child.Open(ctx); err != nil {
		return err
	}
	rows, err := drain(ctx, t.child)
	if err != nil {
		return err
	}
	if !t.hasAttrs {
		t.out = rows
		t.pos = 0
		return nil
	}

	maxDepth := t.attrs.MaxDepth
	if maxDepth < 0 {
		maxDepth = 1
	} else if maxDepth == 0 {
		// spec §8 boundary: "Max-depth traversal of 0 returns the start
		// set" — the input rows themselves, with no edge/dst hop
		// attempted at all.
		t.out = rows
		t.pos = 0
		return nil
	}
	minDepth := t.attrs.MinDepth
	if minDepth <= 0 {
		minDepth = 1
	}

	type frame struct {
		row     Row
		vid     ids.VertexId
		depth   int
		visited map[ids.VertexId]bool
	}

	var out []Row
	var queue []frame
	for _, r := range rows {
		vid, ok := vertexIDOf(r[t.fromCol])
		if !ok {
			continue
		}
		visited := map[ids.VertexId]bool{vid: true}
		queue = append(queue, frame{row: r, vid: vid, depth: 0, visited: visited})
	}

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		if f.depth >= maxDepth {
			continue
		}
		neighbors, err := t.neighbors(ctx, f.vid)
		if err != nil {
			return err
		}
		for _, nb := range neighbors {
			if t.attrs.NoLoop && f.visited[nb.dst] {
				continue
			}
			dv, err := t.fetchVertex(ctx, nb.dst)
			if err != nil {
				return err
			}
			if dv == nil {
				continue
			}
			newRow := make(Row, len(f.row)+2)
			for k, v := range f.row {
				newRow[k] = v
			}
			newRow[t.edgeCol] = nb.edge.AsValue()
			newRow[t.dstCol] = dv.AsValue()
			newDepth := f.depth + 1
			if newDepth >= minDepth {
				out = append(out, newRow)
			}

			newVisited := make(map[ids.VertexId]bool, len(f.visited)+1)
			for k := range f.visited {
				newVisited[k] = true
			}
			newVisited[nb.dst] = true
			queue = append(queue, frame{row: newRow, vid: nb.dst, depth: newDepth, visited: newVisited})
		}
	}

	t.out = out
	t.pos = 0
	return nil
}

type neighborEdge struct {
	edge graph.Edge
	dst  ids.VertexId
}

// neighbors lists every edge leaving (or, for DirIncoming, arriving at) vid
// matching attrs.EdgeTypes (any type, when empty), merging both directions
// for DirBoth.
func (t *traverseOperator) neighbors(ctx context.Context, vid ids.VertexId) ([]neighborEdge, error) {
	var out []neighborEdge
	if t.attrs.Direction == plan.DirOutgoing || t.attrs.Direction == plan.DirBoth || t.attrs.Direction == "" {
		es, err := t.scanOut(ctx, vid)
		if err != nil {
			return nil, err
		}
		out = append(out, es...)
	}
	if t.attrs.Direction == plan.DirIncoming || t.attrs.Direction == plan.DirBoth {
		es, err := t.scanIn(ctx, vid)
		if err != nil {
			return nil, err
		}
		out = append(out, es...)
	}
	return out, nil
}

func (t *traverseOperator) scanOut(ctx context.Context, vid ids.VertexId) ([]neighborEdge, error) {
	var out []neighborEdge
	etFilter := t.edgeTypeFilter()
	prefixes := t.edgeTypePrefixes(vid, true)
	for _, prefix := range prefixes {
		it, err := t.ec.Txn.Scan(t.ec.TxnID, prefix)
		if err != nil {
			return nil, err
		}
		for it.Next() {
			_, src, et, rank, dst, ok := codec.DecodeEdgeOutKey(it.Item().Key)
			if !ok || (etFilter != nil && !etFilter[et]) {
				continue
			}
			e, err := codec.DecodeEdge(it.Item().Value)
			if err != nil {
				it.Close()
				return nil, err
			}
			e.Src, e.Dst, e.Type, e.Ranking = src, dst, et, rank
			out = append(out, neighborEdge{edge: e, dst: dst})
		}
		it.Close()
	}
	return out, nil
}

func (t *traverseOperator) scanIn(ctx context.Context, vid ids.VertexId) ([]neighborEdge, error) {
	var out []neighborEdge
	etFilter := t.edgeTypeFilter()
	prefixes := t.edgeTypePrefixes(vid, false)
	for _, prefix := range prefixes {
		it, err := t.ec.Txn.Scan(t.ec.TxnID, prefix)
		if err != nil {
			return nil, err
		}
		for it.Next() {
			_, dst, et, rank, src, ok := codec.DecodeEdgeInKey(it.Item().Key)
			if !ok || (etFilter != nil && !etFilter[et]) {
				continue
			}
			e, err := codec.DecodeEdge(it.Item().Value)
			if err != nil {
				it.Close()
				return nil, err
			}
			e.Src, e.Dst, e.Type, e.Ranking = src, dst, et, rank
			out = append(out, neighborEdge{edge: e, dst: src})
		}
		it.Close()
	}
	return out, nil
}

func (t *traverseOperator) edgeTypeFilter() map[ids.EdgeType]bool {
	if len(t.attrs.EdgeTypes) == 0 {
		return nil
	}
	m := make(map[ids.EdgeType]bool, len(t.attrs.EdgeTypes))
	for _, et := range t.attrs.EdgeTypes {
		m[et] = true
	}
	return m
}

// edgeTypePrefixes returns one prefix per whitelisted edge type (or a
// single type-agnostic prefix when EdgeTypes is empty), since the key
// layout only supports a single-type prefix scan at a time (spec §4.1).
func (t *traverseOperator) edgeTypePrefixes(vid ids.VertexId, outgoing bool) [][]byte {
	space := t.ec.Space
	if len(t.attrs.EdgeTypes) == 0 {
		if outgoing {
			return [][]byte{codec.EdgeOutPrefix(space, vid, 0)}
		}
		return [][]byte{codec.EdgeInPrefix(space, vid, 0)}
	}
	out := make([][]byte, 0, len(t.attrs.EdgeTypes))
	for _, et := range t.attrs.EdgeTypes {
		if outgoing {
			out = append(out, codec.EdgeOutPrefix(space, vid, et))
		} else {
			out = append(out, codec.EdgeInPrefix(space, vid, et))
		}
	}
	return out
}

func (t *traverseOperator) fetchVertex(ctx context.Context, vid ids.VertexId) (*graph.Vertex, error) {
	data, err := t.ec.Txn.Get(t.ec.TxnID, codec.VertexKey(t.ec.Space, vid))
	if err != nil {
		return nil, nil
	}
	return codec.DecodeVertex(data)
}

// vertexIDOf extracts the VertexId from a row value previously bound by
// AsValue(), for resuming a traversal from an already-materialized vertex.
func vertexIDOf(v value.Value) (ids.VertexId, bool) {
	vx, ok := v.GraphPayload().(*graph.Vertex)
	if !ok {
		return 0, false
	}
	return vx.ID, true
}

func (t *traverseOperator) Next(ctx context.Context) (Row, error) {
	if t.pos >= len(t.out) {
		return nil, nil
	}
	r := t.out[t.pos]
	t.pos++
	t.onRow()
	return r, nil
}

func (t *traverseOperator) Close() error { t.onClose(); return t.child.Close() }
func (t *traverseOperator) Stats() Stats { return t.stats() }
