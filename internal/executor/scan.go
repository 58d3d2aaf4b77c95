// Scan family (spec §4.6): ScanVertices, ScanEdges, GetVertices, GetEdges,
// GetNeighbors, IndexScan, IndexFullScan, IndexCoveringScan,
// UnionAllIndexScan. All dispatch from the single ScanAttrs payload by
// field combination, since every Scan-family plan.Kind shares the same
// Attrs type (attrs.go's doc comment on ScanAttrs): VertexIDs non-empty
// selects a batch point lookup (GetVertices/GetNeighbors), Index non-zero
// selects an index-backed path, otherwise it's a full prefix scan
// (ScanVertices/ScanEdges), optionally narrowed by Tag/EdgeType.
package executor

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/codec"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

type scanOperator struct {
	baseStats
	ec   *Context
	n    *plan.Node
	attrs plan.ScanAttrs
	rows []Row
	pos  int
}

func newScanOperator(ec *Context, n *plan.Node) (*scanOperator, error) {
	a, ok := n.Attrs.(plan.ScanAttrs)
	if !ok {
		return nil, badAttrs(n, "ScanAttrs")
	}
	return &scanOperator{ec: ec, n: n, attrs: a}, nil
}

func (s *scanOperator) Open(ctx context.Context) error {
	s.onOpen()
	var rows []Row
	var err error
	switch {
	case s.attrs.Index.Valid():
		rows, err = s.indexScan(ctx)
	case len(s.attrs.VertexIDs) > 0 && s.attrs.EdgeType.Valid():
		rows, err = s.getNeighbors(ctx)
	case len(s.attrs.VertexIDs) > 0:
		rows, err = s.getVertices(ctx)
	case s.attrs.EdgeType.Valid():
		rows, err = s.scanEdges(ctx)
	default:
		rows, err = s.scanVertices(ctx)
	}
	if err != nil {
		return err
	}
	s.rows = rows
	s.pos = 0
	return nil
}

func (s *scanOperator) space() ids.SpaceId { return s.ec.Space }

func (s *scanOperator) outCol(i int) string {
	if i < len(s.n.OutputCols) {
		return s.n.OutputCols[i]
	}
	return ""
}

func (s *scanOperator) getVertices(ctx context.Context) ([]Row, error) {
	col := s.outCol(0)
	var out []Row
	for _, vid := range s.attrs.VertexIDs {
		data, err := s.ec.Txn.Get(s.ec.TxnID, codec.VertexKey(s.space(), vid))
		if err != nil {
			continue // a deleted/nonexistent id is simply absent from the result
		}
		v, err := codec.DecodeVertex(data)
		if err != nil {
			return nil, err
		}
		if s.attrs.Tag.Valid() && !v.HasTag(s.attrs.Tag) {
			continue
		}
		out = append(out, Row{col: v.AsValue()})
	}
	return out, nil
}

func (s *scanOperator) scanVertices(ctx context.Context) ([]Row, error) {
	col := s.outCol(0)
	it, err := s.ec.Txn.Scan(s.ec.TxnID, codec.VertexPrefix(s.space()))
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []Row
	for it.Next() {
		v, err := codec.DecodeVertex(it.Item().Value)
		if err != nil {
			return nil, err
		}
		if s.attrs.Tag.Valid() && !v.HasTag(s.attrs.Tag) {
			continue
		}
		out = append(out, Row{col: v.AsValue()})
	}
	return out, nil
}

func (s *scanOperator) scanEdges(ctx context.Context) ([]Row, error) {
	col := s.outCol(0)
	it, err := s.ec.Txn.Scan(s.ec.TxnID, codec.EdgeOutSpacePrefix(s.space()))
	if err != nil {
		return nil, err
	}
	defer it.Close()
	var out []Row
	for it.Next() {
		_, src, et, rank, dst, ok := codec.DecodeEdgeOutKey(it.Item().Key)
		if !ok || et != s.attrs.EdgeType {
			continue
		}
		e, err := codec.DecodeEdge(it.Item().Value)
		if err != nil {
			return nil, err
		}
		e.Src, e.Dst, e.Type, e.Ranking = src, dst, et, rank
		out = append(out, Row{col: e.AsValue()})
	}
	return out, nil
}

// getNeighbors scans outgoing edges of each VertexIDs source of the given
// EdgeType, binding the first output column to the edge and the second
// (when present) to the fetched destination vertex.
func (s *scanOperator) getNeighbors(ctx context.Context) ([]Row, error) {
	edgeCol, dstCol := s.outCol(0), s.outCol(1)
	var out []Row
	for _, src := range s.attrs.VertexIDs {
		// ScanAttrs carries no Direction field (only TraverseAttrs does);
		// bidirectional/incoming neighbor retrieval goes through
		// Traverse/Expand instead, so GetNeighbors here is outgoing-only.
		prefix := codec.EdgeOutPrefix(s.space(), src, s.attrs.EdgeType)
		it, err := s.ec.Txn.Scan(s.ec.TxnID, prefix)
		if err != nil {
			return nil, err
		}
		for it.Next() {
			_, from, et, rank, to, ok := codec.DecodeEdgeOutKey(it.Item().Key)
			if !ok {
				continue
			}
			e, err := codec.DecodeEdge(it.Item().Value)
			if err != nil {
				it.Close()
				return nil, err
			}
			e.Src, e.Dst, e.Type, e.Ranking = from, to, et, rank
			row := Row{edgeCol: e.AsValue()}
			if dstCol != "" {
				dv, err := s.fetchVertex(ctx, to)
				if err != nil {
					it.Close()
					return nil, err
				}
				if dv != nil {
					row[dstCol] = dv.AsValue()
				}
			}
			out = append(out, row)
		}
		it.Close()
	}
	return out, nil
}

func (s *scanOperator) fetchVertex(ctx context.Context, vid ids.VertexId) (*graph.Vertex, error) {
	data, err := s.ec.Txn.Get(s.ec.TxnID, codec.VertexKey(s.space(), vid))
	if err != nil {
		return nil, nil
	}
	return codec.DecodeVertex(data)
}

// indexScan covers IndexScan/IndexFullScan/IndexCoveringScan/
// UnionAllIndexScan: all four read through the index service rather than a
// base-table prefix scan.
func (s *scanOperator) indexScan(ctx context.Context) ([]Row, error) {
	idx, ok := s.ec.Catalog.IndexByID(s.space(), s.attrs.Index)
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "executor: unknown index")
	}
	branches := s.attrs.Branches
	if len(branches) == 0 {
		branches = []ids.IndexId{s.attrs.Index}
	}

	rawTxn, err := s.ec.Txn.RawTxn(s.ec.TxnID)
	if err != nil {
		return nil, err
	}

	seek, err := s.evalSeekKey()
	if err != nil {
		return nil, err
	}

	col := s.outCol(0)
	seen := map[string]bool{}
	var out []Row
	for _, branchID := range branches {
		branchIdx := idx
		if branchID != s.attrs.Index {
			bi, ok := s.ec.Catalog.IndexByID(s.space(), branchID)
			if !ok {
				continue
			}
			branchIdx = bi
		}
		switch branchIdx.Kind {
		case graph.IndexKindTag:
			vids, err := s.ec.Index.LookupTagExact(ctx, rawTxn, s.space(), branchIdx, seek)
			if err != nil {
				return nil, err
			}
			for _, vid := range vids {
				key := vid.String()
				if seen[key] {
					continue
				}
				seen[key] = true
				if s.attrs.Covering {
					out = append(out, Row{col: value.Int(int64(vid))})
					continue
				}
				v, err := s.fetchVertex(ctx, vid)
				if err != nil {
					return nil, err
				}
				if v != nil {
					out = append(out, Row{col: v.AsValue()})
				}
			}
		case graph.IndexKindEdge:
			entries, err := s.ec.Index.LookupEdgeExact(ctx, rawTxn, s.space(), branchIdx, seek)
			if err != nil {
				return nil, err
			}
			for _, en := range entries {
				data, err := s.ec.Txn.Get(s.ec.TxnID, codec.EdgeOutKey(s.space(), en.Src, branchIdx.Edge, en.Rank, en.Dst))
				if err != nil {
					continue
				}
				e, err := codec.DecodeEdge(data)
				if err != nil {
					return nil, err
				}
				e.Src, e.Dst, e.Type, e.Ranking = en.Src, en.Dst, branchIdx.Edge, en.Rank
				out = append(out, Row{col: e.AsValue()})
			}
		}
	}
	return out, nil
}

func (s *scanOperator) evalSeekKey() ([]value.Value, error) {
	vals := make([]value.Value, len(s.attrs.SeekKey))
	for i := range s.attrs.SeekKey {
		v, err := expr.Eval(&s.attrs.SeekKey[i], Row{}, s.ec.Functions)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

func (s *scanOperator) Next(ctx context.Context) (Row, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	r := s.rows[s.pos]
	s.pos++
	s.onRow()
	return r, nil
}

func (s *scanOperator) Close() error { s.onClose(); return nil }
func (s *scanOperator) Stats() Stats { return s.stats() }
