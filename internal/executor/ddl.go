// DDL/DML (spec §4.6 "DDL/DML" row): InsertVertices, InsertEdges,
// DeleteExecutor, UpdateExecutor, and the space/tag/edge-type/index
// Create/Drop/Alter/Desc/Show family, plus RebuildTagIndex/
// RebuildEdgeIndex. This is the one operator family that bypasses the
// plan/optimizer path and dispatches straight against the catalog and
// storage, the way straga-Mimir_lite's cypher.StorageExecutor.Execute
// handles CREATE/DELETE/SET/REMOVE directly against its storage engine
// rather than through a cost-based plan. Every case here materializes
// its full effect (and, for Desc/Show, its full result set) in Open.
package executor

import (
	"context"
	"fmt"

	"github.com/kkkqkx123/graphdb/internal/codec"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// kvTxn is the raw kv.Txn handle index-maintenance calls require — the
// same handle the transaction's Manager.RawTxn exposes.
type kvTxn = kv.Txn

type ddlOperator struct {
	baseStats
	ec    *Context
	n     *plan.Node
	child Operator
	out   []Row
	pos   int
}

func newDDLOperator(ec *Context, n *plan.Node, child Operator) (*ddlOperator, error) {
	return &ddlOperator{ec: ec, n: n, child: child}, nil
}

func (d *ddlOperator) Open(ctx context.Context) error {
	d.onOpen()
	if d.child != nil {
		if err := d.child.Open(ctx); err != nil {
			return err
		}
	}
	var out []Row
	var err error
	switch d.n.Kind {
	case plan.KindInsertVertices:
		err = d.insertVertices(ctx)
	case plan.KindInsertEdges:
		err = d.insertEdges(ctx)
	case plan.KindDelete:
		err = d.delete(ctx)
	case plan.KindUpdate:
		err = d.update(ctx)

	case plan.KindCreateSpace:
		err = d.createSpace()
	case plan.KindDropSpace:
		err = d.dropSpace()
	case plan.KindCreateTag:
		err = d.createTag()
	case plan.KindAlterTag:
		err = d.alterTag()
	case plan.KindDropTag:
		err = d.dropTag()
	case plan.KindCreateEdgeType:
		err = d.createEdgeType()
	case plan.KindAlterEdgeType:
		err = d.alterEdgeType()
	case plan.KindDropEdgeType:
		err = d.dropEdgeType()
	case plan.KindCreateIndex:
		err = d.createIndex()
	case plan.KindDropIndex:
		err = d.dropIndex()

	case plan.KindDescSpace:
		out, err = d.descSpace()
	case plan.KindShowSpaces:
		out, err = d.showSpaces()
	case plan.KindDescTag:
		out, err = d.descTag()
	case plan.KindShowTags:
		out, err = d.showTags()
	case plan.KindDescEdgeType:
		out, err = d.descEdgeType()
	case plan.KindShowEdgeTypes:
		out, err = d.showEdgeTypes()
	case plan.KindDescIndex:
		out, err = d.descIndex()
	case plan.KindShowIndexes:
		out, err = d.showIndexes()

	case plan.KindRebuildTagIndex:
		err = d.rebuildTagIndex(ctx)
	case plan.KindRebuildEdgeIndex:
		err = d.rebuildEdgeIndex(ctx)

	default:
		err = badAttrs(d.n, "a known DDL/DML kind")
	}
	if err != nil {
		return err
	}
	d.out = out
	d.pos = 0
	return nil
}

func (d *ddlOperator) space() ids.SpaceId { return d.ec.Space }

func evalProperties(props map[string]*expr.Expr, row Row, fns expr.Functions) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(props))
	for k, e := range props {
		v, err := expr.Eval(e, row, fns)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// columnValues extracts idx.Columns, in order, from a property map,
// defaulting to NULL for a column the map doesn't carry.
func columnValues(idx *graph.IndexSchema, props map[string]value.Value) []value.Value {
	vals := make([]value.Value, len(idx.Columns))
	for i, col := range idx.Columns {
		if v, ok := props[col]; ok {
			vals[i] = v
		} else {
			vals[i] = value.Null()
		}
	}
	return vals
}

func (d *ddlOperator) insertVertices(ctx context.Context) error {
	for _, spec := range d.n.Attrs.(plan.InsertVerticesAttrs).Vertices {
		v := &graph.Vertex{ID: spec.ID}
		for _, tv := range spec.Tags {
			props, err := evalProperties(tv.Properties, Row{}, d.ec.Functions)
			if err != nil {
				return err
			}
			v.Tags = append(v.Tags, graph.TagInstance{Tag: tv.Tag, Properties: props})
		}
		data, err := codec.EncodeVertex(v)
		if err != nil {
			return err
		}
		if err := d.ec.Txn.Put(d.ec.TxnID, codec.VertexKey(d.space(), v.ID), data); err != nil {
			return err
		}
		rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
		if err != nil {
			return err
		}
		for _, tv := range spec.Tags {
			props, _ := evalProperties(tv.Properties, Row{}, d.ec.Functions)
			for _, idx := range d.ec.Catalog.IndexesForTag(d.space(), tv.Tag) {
				if err := d.ec.Index.InsertTagEntry(ctx, rawTxn, d.space(), idx, v.ID, columnValues(idx, props)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (d *ddlOperator) insertEdges(ctx context.Context) error {
	rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
	if err != nil {
		return err
	}
	for _, spec := range d.n.Attrs.(plan.InsertEdgesAttrs).Edges {
		props, err := evalProperties(spec.Properties, Row{}, d.ec.Functions)
		if err != nil {
			return err
		}
		e := &graph.Edge{Src: spec.Src, Dst: spec.Dst, Type: spec.Type, Ranking: spec.Ranking, Properties: props}
		data, err := codec.EncodeEdge(e)
		if err != nil {
			return err
		}
		if err := d.ec.Txn.Put(d.ec.TxnID, codec.EdgeOutKey(d.space(), e.Src, e.Type, e.Ranking, e.Dst), data); err != nil {
			return err
		}
		if err := d.ec.Txn.Put(d.ec.TxnID, codec.EdgeInKey(d.space(), e.Dst, e.Type, e.Ranking, e.Src), data); err != nil {
			return err
		}
		for _, idx := range d.ec.Catalog.IndexesForEdgeType(d.space(), spec.Type) {
			if err := d.ec.Index.InsertEdgeEntry(ctx, rawTxn, d.space(), idx, e.Src, e.Ranking, e.Dst, columnValues(idx, props)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *ddlOperator) delete(ctx context.Context) error {
	a := d.n.Attrs.(plan.DeleteAttrs)
	rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
	if err != nil {
		return err
	}
	for _, vid := range a.Vertices {
		if err := d.deleteVertex(ctx, rawTxn, vid); err != nil {
			return err
		}
	}
	for _, spec := range a.Edges {
		if err := d.deleteEdge(ctx, rawTxn, spec.Src, spec.Type, spec.Ranking, spec.Dst); err != nil {
			return err
		}
	}
	return nil
}

// deleteVertex removes the vertex record, every tag-index entry it seeded,
// and cascades to every edge incident to it in either direction (spec §8
// "deleting a vertex removes its incident edges").
func (d *ddlOperator) deleteVertex(ctx context.Context, rawTxn kvTxn, vid ids.VertexId) error {
	data, err := d.ec.Txn.Get(d.ec.TxnID, codec.VertexKey(d.space(), vid))
	if err != nil {
		return nil // already gone: delete is idempotent
	}
	v, err := codec.DecodeVertex(data)
	if err != nil {
		return err
	}
	for _, ti := range v.Tags {
		for _, idx := range d.ec.Catalog.IndexesForTag(d.space(), ti.Tag) {
			if err := d.ec.Index.DeleteTagEntry(ctx, rawTxn, d.space(), idx, vid, columnValues(idx, ti.Properties)); err != nil {
				return err
			}
		}
	}
	if err := d.ec.Txn.Delete(d.ec.TxnID, codec.VertexKey(d.space(), vid)); err != nil {
		return err
	}

	type incident struct {
		src, dst ids.VertexId
		et       ids.EdgeType
		rank     int64
	}
	var toDelete []incident

	outIt, err := d.ec.Txn.Scan(d.ec.TxnID, codec.EdgeOutPrefix(d.space(), vid, 0))
	if err != nil {
		return err
	}
	for outIt.Next() {
		_, src, et, rank, dst, ok := codec.DecodeEdgeOutKey(outIt.Item().Key)
		if ok {
			toDelete = append(toDelete, incident{src: src, dst: dst, et: et, rank: rank})
		}
	}
	outIt.Close()

	inIt, err := d.ec.Txn.Scan(d.ec.TxnID, codec.EdgeInPrefix(d.space(), vid, 0))
	if err != nil {
		return err
	}
	for inIt.Next() {
		_, dst, et, rank, src, ok := codec.DecodeEdgeInKey(inIt.Item().Key)
		if ok {
			toDelete = append(toDelete, incident{src: src, dst: dst, et: et, rank: rank})
		}
	}
	inIt.Close()

	for _, e := range toDelete {
		if err := d.deleteEdge(ctx, rawTxn, e.src, e.et, e.rank, e.dst); err != nil {
			return err
		}
	}
	return nil
}

func (d *ddlOperator) update(ctx context.Context) error {
	a := d.n.Attrs.(plan.UpdateAttrs)
	for _, vid := range a.Vertices {
		if err := d.updateVertex(ctx, vid, a.Tag, a.Set); err != nil {
			return err
		}
	}
	rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
	if err != nil {
		return err
	}
	for _, spec := range a.Edges {
		if err := d.updateEdge(ctx, rawTxn, spec, a.Set); err != nil {
			return err
		}
	}
	return nil
}

func (d *ddlOperator) updateVertex(ctx context.Context, vid ids.VertexId, tag ids.TagId, set map[string]*expr.Expr) error {
	data, err := d.ec.Txn.Get(d.ec.TxnID, codec.VertexKey(d.space(), vid))
	if err != nil {
		return grapherr.New(grapherr.KindQuery, grapherr.CodeResourceNotFound, "executor: vertex not found")
	}
	v, err := codec.DecodeVertex(data)
	if err != nil {
		return err
	}
	var oldProps map[string]value.Value
	tagIdx := -1
	for i, ti := range v.Tags {
		if ti.Tag == tag {
			tagIdx = i
			oldProps = ti.Properties
			break
		}
	}
	if tagIdx < 0 {
		return grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "executor: vertex does not carry the target tag")
	}
	row := make(Row, len(oldProps))
	for k, val := range oldProps {
		row[k] = val
	}
	newProps := make(map[string]value.Value, len(oldProps))
	for k, val := range oldProps {
		newProps[k] = val
	}
	for k, e := range set {
		val, err := expr.Eval(e, row, d.ec.Functions)
		if err != nil {
			return err
		}
		newProps[k] = val
	}
	rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
	if err != nil {
		return err
	}
	for _, idx := range d.ec.Catalog.IndexesForTag(d.space(), tag) {
		if err := d.ec.Index.DeleteTagEntry(ctx, rawTxn, d.space(), idx, vid, columnValues(idx, oldProps)); err != nil {
			return err
		}
	}
	v.Tags[tagIdx].Properties = newProps
	newData, err := codec.EncodeVertex(v)
	if err != nil {
		return err
	}
	if err := d.ec.Txn.Put(d.ec.TxnID, codec.VertexKey(d.space(), vid), newData); err != nil {
		return err
	}
	for _, idx := range d.ec.Catalog.IndexesForTag(d.space(), tag) {
		if err := d.ec.Index.InsertTagEntry(ctx, rawTxn, d.space(), idx, vid, columnValues(idx, newProps)); err != nil {
			return err
		}
	}
	return nil
}

func (d *ddlOperator) updateEdge(ctx context.Context, _ kvTxn, spec plan.EdgeSpec, set map[string]*expr.Expr) error {
	outKey := codec.EdgeOutKey(d.space(), spec.Src, spec.Type, spec.Ranking, spec.Dst)
	data, err := d.ec.Txn.Get(d.ec.TxnID, outKey)
	if err != nil {
		return grapherr.New(grapherr.KindQuery, grapherr.CodeResourceNotFound, "executor: edge not found")
	}
	e, err := codec.DecodeEdge(data)
	if err != nil {
		return err
	}
	row := make(Row, len(e.Properties))
	for k, val := range e.Properties {
		row[k] = val
	}
	newProps := make(map[string]value.Value, len(e.Properties))
	for k, val := range e.Properties {
		newProps[k] = val
	}
	for k, ex := range set {
		val, err := expr.Eval(ex, row, d.ec.Functions)
		if err != nil {
			return err
		}
		newProps[k] = val
	}
	idxSvc := d.ec.Index
	rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
	if err != nil {
		return err
	}
	for _, idx := range d.ec.Catalog.IndexesForEdgeType(d.space(), spec.Type) {
		if err := idxSvc.DeleteEdgeEntry(ctx, rawTxn, d.space(), idx, spec.Src, spec.Ranking, spec.Dst, columnValues(idx, e.Properties)); err != nil {
			return err
		}
	}
	e.Properties = newProps
	newData, err := codec.EncodeEdge(e)
	if err != nil {
		return err
	}
	if err := d.ec.Txn.Put(d.ec.TxnID, outKey, newData); err != nil {
		return err
	}
	if err := d.ec.Txn.Put(d.ec.TxnID, codec.EdgeInKey(d.space(), spec.Dst, spec.Type, spec.Ranking, spec.Src), newData); err != nil {
		return err
	}
	for _, idx := range d.ec.Catalog.IndexesForEdgeType(d.space(), spec.Type) {
		if err := idxSvc.InsertEdgeEntry(ctx, rawTxn, d.space(), idx, spec.Src, spec.Ranking, spec.Dst, columnValues(idx, newProps)); err != nil {
			return err
		}
	}
	return nil
}

func (d *ddlOperator) deleteEdge(ctx context.Context, _ kvTxn, src ids.VertexId, et ids.EdgeType, rank int64, dst ids.VertexId) error {
	outKey := codec.EdgeOutKey(d.space(), src, et, rank, dst)
	data, err := d.ec.Txn.Get(d.ec.TxnID, outKey)
	if err == nil {
		e, derr := codec.DecodeEdge(data)
		if derr == nil {
			idxSvc := d.ec.Index
			rawTxn, terr := d.ec.Txn.RawTxn(d.ec.TxnID)
			if terr == nil {
				for _, idx := range d.ec.Catalog.IndexesForEdgeType(d.space(), et) {
					_ = idxSvc.DeleteEdgeEntry(ctx, rawTxn, d.space(), idx, src, rank, dst, columnValues(idx, e.Properties))
				}
			}
		}
	}
	_ = d.ec.Txn.Delete(d.ec.TxnID, outKey)
	_ = d.ec.Txn.Delete(d.ec.TxnID, codec.EdgeInKey(d.space(), dst, et, rank, src))
	return nil
}

func (d *ddlOperator) createSpace() error {
	_, err := d.ec.Catalog.CreateSpace(d.n.Attrs.(plan.CreateSpaceAttrs).Name)
	return err
}

func (d *ddlOperator) dropSpace() error {
	return d.ec.Catalog.DropSpace(d.n.Attrs.(plan.DropSpaceAttrs).Name)
}

func (d *ddlOperator) createTag() error {
	a := d.n.Attrs.(plan.CreateTagAttrs)
	_, err := d.ec.Catalog.CreateTag(d.space(), &graph.TagSchema{Name: a.Name, Properties: a.Properties, TTL: a.TTL})
	return err
}

func (d *ddlOperator) alterTag() error {
	a := d.n.Attrs.(plan.AlterTagAttrs)
	return d.ec.Catalog.AlterTag(d.space(), a.Name, a.Properties)
}

func (d *ddlOperator) dropTag() error {
	return d.ec.Catalog.DropTag(d.space(), d.n.Attrs.(plan.DropTagAttrs).Name)
}

func (d *ddlOperator) createEdgeType() error {
	a := d.n.Attrs.(plan.CreateEdgeTypeAttrs)
	_, err := d.ec.Catalog.CreateEdgeType(d.space(), &graph.EdgeTypeSchema{Name: a.Name, Properties: a.Properties, TTL: a.TTL})
	return err
}

func (d *ddlOperator) alterEdgeType() error {
	a := d.n.Attrs.(plan.AlterEdgeTypeAttrs)
	return d.ec.Catalog.AlterEdgeType(d.space(), a.Name, a.Properties)
}

func (d *ddlOperator) dropEdgeType() error {
	return d.ec.Catalog.DropEdgeType(d.space(), d.n.Attrs.(plan.DropEdgeTypeAttrs).Name)
}

func (d *ddlOperator) createIndex() error {
	a := d.n.Attrs.(plan.CreateIndexAttrs)
	_, err := d.ec.Catalog.CreateIndex(d.space(), &graph.IndexSchema{
		Name: a.Name, Kind: a.Kind, Tag: a.Tag, Edge: a.Edge, Columns: a.Columns, Unique: a.Unique,
	})
	return err
}

func (d *ddlOperator) dropIndex() error {
	return d.ec.Catalog.DropIndex(d.space(), d.n.Attrs.(plan.DropIndexAttrs).Name)
}

func (d *ddlOperator) outCol(i int) string {
	if i < len(d.n.OutputCols) {
		return d.n.OutputCols[i]
	}
	return ""
}

func (d *ddlOperator) descSpace() ([]Row, error) {
	a := d.n.Attrs.(plan.DescSpaceAttrs)
	id, ok := d.ec.Catalog.SpaceByName(a.Name)
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "executor: unknown space")
	}
	return []Row{{d.outCol(0): value.String(a.Name), d.outCol(1): value.Int(int64(id))}}, nil
}

func (d *ddlOperator) showSpaces() ([]Row, error) {
	col := d.outCol(0)
	var out []Row
	for _, name := range d.ec.Catalog.SpaceNames() {
		out = append(out, Row{col: value.String(name)})
	}
	return out, nil
}

func dataTypeName(t graph.DataType) string {
	switch t {
	case graph.TypeBool:
		return "bool"
	case graph.TypeInt:
		return "int"
	case graph.TypeFloat:
		return "float"
	case graph.TypeString:
		return "string"
	case graph.TypeDate:
		return "date"
	case graph.TypeTime:
		return "time"
	case graph.TypeDateTime:
		return "datetime"
	case graph.TypeList:
		return "list"
	case graph.TypeSet:
		return "set"
	case graph.TypeMap:
		return "map"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

func (d *ddlOperator) descTag() ([]Row, error) {
	a := d.n.Attrs.(plan.DescTagAttrs)
	schema, ok := d.ec.Catalog.TagByName(d.space(), a.Name)
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "executor: unknown tag")
	}
	fieldCol, typeCol, nullCol := d.outCol(0), d.outCol(1), d.outCol(2)
	var out []Row
	for _, p := range schema.Properties {
		out = append(out, Row{fieldCol: value.String(p.Name), typeCol: value.String(dataTypeName(p.Type)), nullCol: value.Bool(p.Nullable)})
	}
	return out, nil
}

func (d *ddlOperator) showTags() ([]Row, error) {
	names, err := d.ec.Catalog.TagNames(d.space())
	if err != nil {
		return nil, err
	}
	col := d.outCol(0)
	var out []Row
	for _, name := range names {
		out = append(out, Row{col: value.String(name)})
	}
	return out, nil
}

func (d *ddlOperator) descEdgeType() ([]Row, error) {
	a := d.n.Attrs.(plan.DescEdgeTypeAttrs)
	schema, ok := d.ec.Catalog.EdgeTypeByName(d.space(), a.Name)
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "executor: unknown edge type")
	}
	fieldCol, typeCol, nullCol := d.outCol(0), d.outCol(1), d.outCol(2)
	var out []Row
	for _, p := range schema.Properties {
		out = append(out, Row{fieldCol: value.String(p.Name), typeCol: value.String(dataTypeName(p.Type)), nullCol: value.Bool(p.Nullable)})
	}
	return out, nil
}

func (d *ddlOperator) showEdgeTypes() ([]Row, error) {
	names, err := d.ec.Catalog.EdgeTypeNames(d.space())
	if err != nil {
		return nil, err
	}
	col := d.outCol(0)
	var out []Row
	for _, name := range names {
		out = append(out, Row{col: value.String(name)})
	}
	return out, nil
}

func (d *ddlOperator) descIndex() ([]Row, error) {
	a := d.n.Attrs.(plan.DescIndexAttrs)
	idx, ok := d.ec.Catalog.IndexByName(d.space(), a.Name)
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "executor: unknown index")
	}
	colCol, uniqueCol := d.outCol(0), d.outCol(1)
	var out []Row
	for _, c := range idx.Columns {
		out = append(out, Row{colCol: value.String(c), uniqueCol: value.Bool(idx.Unique)})
	}
	return out, nil
}

func (d *ddlOperator) showIndexes() ([]Row, error) {
	names, err := d.ec.Catalog.IndexNames(d.space())
	if err != nil {
		return nil, err
	}
	col := d.outCol(0)
	var out []Row
	for _, name := range names {
		out = append(out, Row{col: value.String(name)})
	}
	return out, nil
}

func (d *ddlOperator) rebuildTagIndex(ctx context.Context) error {
	a := d.n.Attrs.(plan.RebuildTagIndexAttrs)
	idx, ok := d.ec.Catalog.IndexByName(d.space(), a.Name)
	if !ok || idx.Kind != graph.IndexKindTag {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "executor: unknown tag index")
	}
	rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
	if err != nil {
		return err
	}
	it, err := d.ec.Txn.Scan(d.ec.TxnID, codec.VertexPrefix(d.space()))
	if err != nil {
		return err
	}
	defer it.Close()
	for it.Next() {
		v, err := codec.DecodeVertex(it.Item().Value)
		if err != nil {
			return err
		}
		if !v.HasTag(idx.Tag) {
			continue
		}
		props := v.TagProperties(idx.Tag)
		if err := d.ec.Index.InsertTagEntry(ctx, rawTxn, d.space(), idx, v.ID, columnValues(idx, props)); err != nil {
			return err
		}
	}
	return nil
}

func (d *ddlOperator) rebuildEdgeIndex(ctx context.Context) error {
	a := d.n.Attrs.(plan.RebuildEdgeIndexAttrs)
	idx, ok := d.ec.Catalog.IndexByName(d.space(), a.Name)
	if !ok || idx.Kind != graph.IndexKindEdge {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "executor: unknown edge index")
	}
	rawTxn, err := d.ec.Txn.RawTxn(d.ec.TxnID)
	if err != nil {
		return err
	}
	it, err := d.ec.Txn.Scan(d.ec.TxnID, codec.EdgeOutSpacePrefix(d.space()))
	if err != nil {
		return err
	}
	defer it.Close()
	for it.Next() {
		_, src, et, rank, dst, ok := codec.DecodeEdgeOutKey(it.Item().Key)
		if !ok || et != idx.Edge {
			continue
		}
		e, err := codec.DecodeEdge(it.Item().Value)
		if err != nil {
			return err
		}
		if err := d.ec.Index.InsertEdgeEntry(ctx, rawTxn, d.space(), idx, src, rank, dst, columnValues(idx, e.Properties)); err != nil {
			return err
		}
	}
	return nil
}

func (d *ddlOperator) Next(ctx context.Context) (Row, error) {
	if d.pos >= len(d.out) {
		return nil, nil
	}
	r := d.out[d.pos]
	d.pos++
	d.onRow()
	return r, nil
}

func (d *ddlOperator) Close() error {
	d.onClose()
	if d.child != nil {
		return d.child.Close()
	}
	return nil
}
func (d *ddlOperator) Stats() Stats { return d.stats() }
