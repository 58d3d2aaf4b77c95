// Path family (spec §4.6): ShortestPath, AllPaths, BFSShortest,
// MultiShortestPath, Subgraph — all driven by internal/graphalgo's
// Neighbors-callback algorithms rather than a volcano-style pull loop,
// since each is a whole-graph-shaped query that has to search before it
// can produce its first row; this operator runs that search once on Open
// and streams the resulting rows out.
package executor

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/codec"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/graphalgo"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

type pathOperator struct {
	baseStats
	ec    *Context
	n     *plan.Node
	attrs plan.PathAttrs
	out   []Row
	pos   int
}

func newPathOperator(ec *Context, n *plan.Node) (*pathOperator, error) {
	a, ok := n.Attrs.(plan.PathAttrs)
	if !ok {
		return nil, badAttrs(n, "PathAttrs")
	}
	return &pathOperator{ec: ec, n: n, attrs: a}, nil
}

func (p *pathOperator) col(i int) string {
	if i < len(p.n.OutputCols) {
		return p.n.OutputCols[i]
	}
	return ""
}

func (p *pathOperator) Open(ctx context.Context) error {
	p.onOpen()
	var out []Row
	var err error
	switch p.n.Kind {
	case plan.KindShortestPath:
		out, err = p.shortestPath(ctx, p.attrs.WeightProperty != "")
	case plan.KindBFSShortest:
		out, err = p.shortestPath(ctx, false)
	case plan.KindAllPaths:
		out, err = p.allPaths(ctx)
	case plan.KindMultiShortestPath:
		out, err = p.multiShortestPath(ctx)
	case plan.KindSubgraph:
		out, err = p.subgraph(ctx)
	default:
		err = badAttrs(p.n, "a known Path kind")
	}
	if err != nil {
		return err
	}
	p.out = out
	p.pos = 0
	return nil
}

func (p *pathOperator) neighborsFn() graphalgo.Neighbors {
	return func(v ids.VertexId) ([]graphalgo.WeightedNeighbor, error) {
		return p.outNeighbors(v)
	}
}

func (p *pathOperator) reverseNeighborsFn() graphalgo.Neighbors {
	return func(v ids.VertexId) ([]graphalgo.WeightedNeighbor, error) {
		return p.inNeighbors(v)
	}
}

func (p *pathOperator) outNeighbors(v ids.VertexId) ([]graphalgo.WeightedNeighbor, error) {
	var out []graphalgo.WeightedNeighbor
	prefixes := p.edgeTypePrefixes(v, true)
	for _, prefix := range prefixes {
		it, err := p.ec.Txn.Scan(p.ec.TxnID, prefix)
		if err != nil {
			return nil, err
		}
		for it.Next() {
			_, _, _, _, dst, ok := codec.DecodeEdgeOutKey(it.Item().Key)
			if !ok {
				continue
			}
			w, err := p.weightOf(it.Item().Value)
			if err != nil {
				it.Close()
				return nil, err
			}
			out = append(out, graphalgo.WeightedNeighbor{Vertex: dst, Weight: w})
		}
		it.Close()
	}
	return out, nil
}

func (p *pathOperator) inNeighbors(v ids.VertexId) ([]graphalgo.WeightedNeighbor, error) {
	var out []graphalgo.WeightedNeighbor
	prefixes := p.edgeTypePrefixes(v, false)
	for _, prefix := range prefixes {
		it, err := p.ec.Txn.Scan(p.ec.TxnID, prefix)
		if err != nil {
			return nil, err
		}
		for it.Next() {
			_, _, _, _, src, ok := codec.DecodeEdgeInKey(it.Item().Key)
			if !ok {
				continue
			}
			w, err := p.weightOf(it.Item().Value)
			if err != nil {
				it.Close()
				return nil, err
			}
			out = append(out, graphalgo.WeightedNeighbor{Vertex: src, Weight: w})
		}
		it.Close()
	}
	return out, nil
}

func (p *pathOperator) edgeTypePrefixes(v ids.VertexId, outgoing bool) [][]byte {
	space := p.ec.Space
	if len(p.attrs.EdgeTypes) == 0 {
		if outgoing {
			return [][]byte{codec.EdgeOutPrefix(space, v, 0)}
		}
		return [][]byte{codec.EdgeInPrefix(space, v, 0)}
	}
	out := make([][]byte, 0, len(p.attrs.EdgeTypes))
	for _, et := range p.attrs.EdgeTypes {
		if outgoing {
			out = append(out, codec.EdgeOutPrefix(space, v, et))
		} else {
			out = append(out, codec.EdgeInPrefix(space, v, et))
		}
	}
	return out
}

func (p *pathOperator) weightOf(edgeData []byte) (float64, error) {
	if p.attrs.WeightProperty == "" {
		return 1, nil
	}
	e, err := codec.DecodeEdge(edgeData)
	if err != nil {
		return 0, err
	}
	v, ok := e.Properties[p.attrs.WeightProperty]
	if !ok || v.IsNull() {
		return 1, nil
	}
	if v.Kind == value.KindInt {
		return float64(v.Int()), nil
	}
	return v.Float(), nil
}

func (p *pathOperator) fetchVertex(vid ids.VertexId) (*graph.Vertex, error) {
	data, err := p.ec.Txn.Get(p.ec.TxnID, codec.VertexKey(p.ec.Space, vid))
	if err != nil {
		return nil, nil
	}
	return codec.DecodeVertex(data)
}

// edgeBetween finds any edge from -> to (ignoring rank/type ties; the first
// matching physical record found is used to build the path's Step).
func (p *pathOperator) edgeBetween(from, to ids.VertexId) (*graph.Edge, error) {
	it, err := p.ec.Txn.Scan(p.ec.TxnID, codec.EdgeOutPrefix(p.ec.Space, from, 0))
	if err != nil {
		return nil, err
	}
	defer it.Close()
	for it.Next() {
		_, src, et, rank, dst, ok := codec.DecodeEdgeOutKey(it.Item().Key)
		if !ok || dst != to {
			continue
		}
		e, err := codec.DecodeEdge(it.Item().Value)
		if err != nil {
			return nil, err
		}
		e.Src, e.Dst, e.Type, e.Ranking = src, dst, et, rank
		return e, nil
	}
	return nil, nil
}

// buildPath resolves a vid sequence into a graph.Path, fetching the source
// vertex and the connecting edge/destination vertex for each hop.
func (p *pathOperator) buildPath(vids []ids.VertexId) (*graph.Path, error) {
	if len(vids) == 0 {
		return nil, nil
	}
	src, err := p.fetchVertex(vids[0])
	if err != nil || src == nil {
		return nil, err
	}
	path := &graph.Path{Src: src}
	for i := 0; i+1 < len(vids); i++ {
		e, err := p.edgeBetween(vids[i], vids[i+1])
		if err != nil {
			return nil, err
		}
		if e == nil {
			continue
		}
		dst, err := p.fetchVertex(vids[i+1])
		if err != nil {
			return nil, err
		}
		path.Steps = append(path.Steps, graph.Step{Edge: *e, Dst: dst})
	}
	return path, nil
}

func (p *pathOperator) shortestPath(ctx context.Context, weighted bool) ([]Row, error) {
	if len(p.attrs.Sources) == 0 || len(p.attrs.Targets) == 0 {
		return nil, nil
	}
	start, target := p.attrs.Sources[0], p.attrs.Targets[0]
	var vids []ids.VertexId
	var found bool
	var err error
	if weighted {
		vids, _, found, err = graphalgo.DijkstraShortestPath(p.neighborsFn(), start, target)
	} else {
		vids, found, err = graphalgo.BFSShortestPath(p.neighborsFn(), start, target, p.attrs.MaxDepth)
	}
	if err != nil || !found {
		return nil, err
	}
	path, err := p.buildPath(vids)
	if err != nil || path == nil {
		return nil, err
	}
	return []Row{{p.col(0): path.AsValue()}}, nil
}

func (p *pathOperator) allPaths(ctx context.Context) ([]Row, error) {
	if len(p.attrs.Sources) == 0 || len(p.attrs.Targets) == 0 {
		return nil, nil
	}
	start, target := p.attrs.Sources[0], p.attrs.Targets[0]
	vidPaths, err := graphalgo.AllSimplePaths(p.neighborsFn(), start, target, p.attrs.MaxDepth, p.attrs.RowLimit)
	if err != nil {
		return nil, err
	}
	col := p.col(0)
	var out []Row
	for _, vids := range vidPaths {
		path, err := p.buildPath(vids)
		if err != nil {
			return nil, err
		}
		if path != nil {
			out = append(out, Row{col: path.AsValue()})
		}
	}
	return out, nil
}

func (p *pathOperator) multiShortestPath(ctx context.Context) ([]Row, error) {
	distances, err := graphalgo.MultiSourceBFS(p.neighborsFn(), p.attrs.Sources, p.attrs.MaxDepth, p.attrs.RowLimit)
	if err != nil {
		return nil, err
	}
	vertexCol, distCol := p.col(0), p.col(1)
	var out []Row
	for vid, dist := range distances {
		v, err := p.fetchVertex(vid)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		row := Row{vertexCol: v.AsValue()}
		if distCol != "" {
			row[distCol] = value.Int(int64(dist))
		}
		out = append(out, row)
	}
	return out, nil
}

func (p *pathOperator) subgraph(ctx context.Context) ([]Row, error) {
	distances, err := graphalgo.MultiSourceBFS(p.neighborsFn(), p.attrs.Sources, p.attrs.MaxDepth, p.attrs.RowLimit)
	if err != nil {
		return nil, err
	}
	col := p.col(0)
	var out []Row
	for vid := range distances {
		v, err := p.fetchVertex(vid)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out = append(out, Row{col: v.AsValue()})
		}
	}
	return out, nil
}

func (p *pathOperator) Next(ctx context.Context) (Row, error) {
	if p.pos >= len(p.out) {
		return nil, nil
	}
	r := p.out[p.pos]
	p.pos++
	p.onRow()
	return r, nil
}

func (p *pathOperator) Close() error { p.onClose(); return nil }
func (p *pathOperator) Stats() Stats { return p.stats() }
