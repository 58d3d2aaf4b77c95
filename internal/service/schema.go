package service

import (
	"context"
	"fmt"

	"github.com/kkkqkx123/graphdb/internal/catalog"
	"github.com/kkkqkx123/graphdb/internal/executor"
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/plan"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// This file is the direct Go-typed schema/data surface spec §6's `POST/GET
// /spaces`, `/tags`, `/edges` endpoints drive, grounded on straga-
// Mimir_lite's pkg/nornicdb.DB.CreateNode/UpdateNode/DeleteNode/ListNodes/
// CreateEdge/CreateIndex method family: internal/ast has no CREATE/SET/
// DELETE clause kinds, so these operations never go through Parser/Planner
// at all. Space/Tag/EdgeType/Index DDL calls the catalog directly, exactly
// the one-line delegation internal/executor/ddl.go's own
// createSpace/createTag/... do — there is no transaction or index
// maintenance involved in registering schema, so building a throwaway
// plan.Node to reach the same catalog call would only add indirection.
// Vertex/edge data operations do need the transaction and secondary-index
// maintenance internal/executor/ddl.go's insertVertices/insertEdges/
// delete/update already implement, so those run a bare DDL plan.Node
// through executor.Build inside an auto-commit transaction instead of
// duplicating that logic here.

// CreateSpace registers a new graph space.
func (g *GraphService) CreateSpace(name string) (ids.SpaceId, error) {
	id, err := g.catalog.CreateSpace(name)
	return id, internalErr(err)
}

// DropSpace removes a graph space and its schema.
func (g *GraphService) DropSpace(name string) error {
	return internalErr(g.catalog.DropSpace(name))
}

// ListSpaces names every registered space.
func (g *GraphService) ListSpaces() []string {
	return g.catalog.SpaceNames()
}

// ExportSpace snapshots name's full schema (every tag, edge type, and
// index definition) for spec §6's admin export surface.
func (g *GraphService) ExportSpace(name string) (*catalog.SpaceSnapshot, error) {
	snap, err := g.catalog.Snapshot(name)
	return snap, internalErr(err)
}

// CreateTag registers a new tag schema in space.
func (g *GraphService) CreateTag(space ids.SpaceId, name string, props []graph.PropertyDef, ttl *graph.TTLSpec) (ids.TagId, error) {
	id, err := g.catalog.CreateTag(space, &graph.TagSchema{Name: name, Properties: props, TTL: ttl})
	return id, internalErr(err)
}

// AlterTag replaces a tag's property-definition list.
func (g *GraphService) AlterTag(space ids.SpaceId, name string, props []graph.PropertyDef) error {
	return internalErr(g.catalog.AlterTag(space, name, props))
}

// DropTag removes a tag schema from space.
func (g *GraphService) DropTag(space ids.SpaceId, name string) error {
	return internalErr(g.catalog.DropTag(space, name))
}

// ListTags names every tag registered in space.
func (g *GraphService) ListTags(space ids.SpaceId) ([]string, error) {
	names, err := g.catalog.TagNames(space)
	return names, internalErr(err)
}

// CreateEdgeType registers a new edge-type schema in space.
func (g *GraphService) CreateEdgeType(space ids.SpaceId, name string, props []graph.PropertyDef, ttl *graph.TTLSpec) (ids.EdgeType, error) {
	id, err := g.catalog.CreateEdgeType(space, &graph.EdgeTypeSchema{Name: name, Properties: props, TTL: ttl})
	return id, internalErr(err)
}

// AlterEdgeType replaces an edge type's property-definition list.
func (g *GraphService) AlterEdgeType(space ids.SpaceId, name string, props []graph.PropertyDef) error {
	return internalErr(g.catalog.AlterEdgeType(space, name, props))
}

// DropEdgeType removes an edge-type schema from space.
func (g *GraphService) DropEdgeType(space ids.SpaceId, name string) error {
	return internalErr(g.catalog.DropEdgeType(space, name))
}

// ListEdgeTypes names every edge type registered in space.
func (g *GraphService) ListEdgeTypes(space ids.SpaceId) ([]string, error) {
	names, err := g.catalog.EdgeTypeNames(space)
	return names, internalErr(err)
}

// CreateIndex registers a secondary index over a tag's or edge type's
// properties.
func (g *GraphService) CreateIndex(space ids.SpaceId, name string, kind graph.IndexKind, tag ids.TagId, edgeType ids.EdgeType, columns []string, unique bool) (ids.IndexId, error) {
	id, err := g.catalog.CreateIndex(space, &graph.IndexSchema{
		Name: name, Kind: kind, Tag: tag, Edge: edgeType, Columns: columns, Unique: unique,
	})
	return id, internalErr(err)
}

// DropIndex removes a secondary index from space.
func (g *GraphService) DropIndex(space ids.SpaceId, name string) error {
	return internalErr(g.catalog.DropIndex(space, name))
}

// ListIndexes names every index registered in space.
func (g *GraphService) ListIndexes(space ids.SpaceId) ([]string, error) {
	names, err := g.catalog.IndexNames(space)
	return names, internalErr(err)
}

// literalProps wraps an already-evaluated property map in literal
// expressions, the shape plan.TagValue/plan.EdgeSpec's Properties field
// expects — insertVertices/insertEdges evaluate these against an empty
// Row (internal/executor/ddl.go), so only constant expr.Lit values make
// sense for data supplied directly through this Go-typed surface (text
// queries may additionally supply parameters/functions; those still go
// through Parser/Planner).
func literalProps(props map[string]value.Value) map[string]*expr.Expr {
	out := make(map[string]*expr.Expr, len(props))
	for k, v := range props {
		out[k] = expr.Lit(v)
	}
	return out
}

// validateProps checks props against schema's declared PropertyDefs: every
// non-nullable property must be present and non-null, and a present
// property's value.Kind must match its declared DataType.
// internal/executor/ddl.go's insertVertices/insertEdges do no such
// schema check; this one runs before a plan.Node ever reaches the executor so a
// malformed write is rejected up front rather than partially applied.
func validateProps(kind string, schemaName string, defs []graph.PropertyDef, props map[string]value.Value) error {
	for _, def := range defs {
		v, present := props[def.Name]
		if !present || v.IsNull() {
			if !def.Nullable && def.Default == nil {
				return grapherr.New(grapherr.KindValidation, grapherr.CodeConstraintViolation,
					fmt.Sprintf("%s %q: property %q is required", kind, schemaName, def.Name))
			}
			continue
		}
		if !valueMatchesType(v, def.Type) {
			return grapherr.New(grapherr.KindValidation, grapherr.CodeTypeError,
				fmt.Sprintf("%s %q: property %q expects %v, got %v", kind, schemaName, def.Name, def.Type, v.Kind))
		}
	}
	return nil
}

// validatePropTypes checks only the type of whatever properties are
// present in props against schema's declared PropertyDefs, skipping the
// required-property check validateProps applies — appropriate for a
// partial SET update, where an unset property simply keeps its prior
// value rather than needing to satisfy a not-null constraint here.
func validatePropTypes(kind string, schemaName string, defs []graph.PropertyDef, props map[string]value.Value) error {
	byName := make(map[string]graph.PropertyDef, len(defs))
	for _, def := range defs {
		byName[def.Name] = def
	}
	for name, v := range props {
		def, ok := byName[name]
		if !ok || v.IsNull() {
			continue
		}
		if !valueMatchesType(v, def.Type) {
			return grapherr.New(grapherr.KindValidation, grapherr.CodeTypeError,
				fmt.Sprintf("%s %q: property %q expects %v, got %v", kind, schemaName, name, def.Type, v.Kind))
		}
	}
	return nil
}

func valueMatchesType(v value.Value, t graph.DataType) bool {
	switch t {
	case graph.TypeBool:
		return v.Kind == value.KindBool
	case graph.TypeInt:
		return v.Kind == value.KindInt
	case graph.TypeFloat:
		return v.Kind == value.KindFloat || v.Kind == value.KindInt
	case graph.TypeString:
		return v.Kind == value.KindString
	case graph.TypeDate:
		return v.Kind == value.KindDate
	case graph.TypeTime:
		return v.Kind == value.KindTime
	case graph.TypeDateTime:
		return v.Kind == value.KindDateTime
	case graph.TypeList:
		return v.Kind == value.KindList
	case graph.TypeSet:
		return v.Kind == value.KindSet
	case graph.TypeMap:
		return v.Kind == value.KindMap
	default:
		return false
	}
}

// execDDL runs one bare DDL/DML plan.Node through the executor inside its
// own auto-commit transaction, draining any rows it produces.
func (g *GraphService) execDDL(ctx context.Context, space ids.SpaceId, readOnly bool, node *plan.Node) ([]executor.Row, error) {
	txnID, err := g.beginAuto(ctx, readOnly)
	if err != nil {
		return nil, internalErr(err)
	}
	ec := &executor.Context{
		Txn:       g.txns,
		TxnID:     txnID,
		Catalog:   g.catalog,
		Index:     g.index,
		Space:     space,
		Functions: g.fns,
	}
	rows, execErr := func() ([]executor.Row, error) {
		op, err := executor.Build(ec, node)
		if err != nil {
			return nil, err
		}
		if err := op.Open(ctx); err != nil {
			return nil, err
		}
		defer op.Close()
		var out []executor.Row
		for {
			row, err := op.Next(ctx)
			if err != nil {
				return nil, err
			}
			if row == nil {
				break
			}
			out = append(out, row)
		}
		return out, nil
	}()
	if finishErr := g.finishAuto(txnID, execErr != nil); finishErr != nil && execErr == nil {
		execErr = finishErr
	}
	if execErr != nil {
		return nil, internalErr(execErr)
	}
	return rows, nil
}

// InsertVertex creates or overwrites a single vertex, carrying one tag
// instance's already-evaluated properties.
func (g *GraphService) InsertVertex(ctx context.Context, space ids.SpaceId, id ids.VertexId, tag ids.TagId, props map[string]value.Value) error {
	schema, ok := g.catalog.TagByID(space, tag)
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "tag not found")
	}
	if err := validateProps("tag", schema.Name, schema.Properties, props); err != nil {
		return err
	}
	node := &plan.Node{
		Kind: plan.KindInsertVertices,
		Attrs: plan.InsertVerticesAttrs{Vertices: []plan.VertexSpec{{
			ID:   id,
			Tags: []plan.TagValue{{Tag: tag, Properties: literalProps(props)}},
		}}},
	}
	_, err := g.execDDL(ctx, space, false, node)
	return err
}

// InsertEdge creates or overwrites a single edge.
func (g *GraphService) InsertEdge(ctx context.Context, space ids.SpaceId, src, dst ids.VertexId, edgeType ids.EdgeType, ranking int64, props map[string]value.Value) error {
	schema, ok := g.catalog.EdgeTypeByID(space, edgeType)
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "edge type not found")
	}
	if err := validateProps("edge type", schema.Name, schema.Properties, props); err != nil {
		return err
	}
	node := &plan.Node{
		Kind: plan.KindInsertEdges,
		Attrs: plan.InsertEdgesAttrs{Edges: []plan.EdgeSpec{{
			Src: src, Dst: dst, Type: edgeType, Ranking: ranking, Properties: literalProps(props),
		}}},
	}
	_, err := g.execDDL(ctx, space, false, node)
	return err
}

// DeleteVertex removes a vertex and every edge incident to it.
func (g *GraphService) DeleteVertex(ctx context.Context, space ids.SpaceId, id ids.VertexId) error {
	node := &plan.Node{Kind: plan.KindDelete, Attrs: plan.DeleteAttrs{Vertices: []ids.VertexId{id}}}
	_, err := g.execDDL(ctx, space, false, node)
	return err
}

// DeleteEdge removes a single edge.
func (g *GraphService) DeleteEdge(ctx context.Context, space ids.SpaceId, src, dst ids.VertexId, edgeType ids.EdgeType, ranking int64) error {
	node := &plan.Node{Kind: plan.KindDelete, Attrs: plan.DeleteAttrs{
		Edges: []plan.EdgeSpec{{Src: src, Dst: dst, Type: edgeType, Ranking: ranking}},
	}}
	_, err := g.execDDL(ctx, space, false, node)
	return err
}

// UpdateVertex merges set into one tag instance's properties.
func (g *GraphService) UpdateVertex(ctx context.Context, space ids.SpaceId, id ids.VertexId, tag ids.TagId, set map[string]value.Value) error {
	schema, ok := g.catalog.TagByID(space, tag)
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "tag not found")
	}
	if err := validatePropTypes("tag", schema.Name, schema.Properties, set); err != nil {
		return err
	}
	node := &plan.Node{Kind: plan.KindUpdate, Attrs: plan.UpdateAttrs{
		Vertices: []ids.VertexId{id}, Tag: tag, Set: literalProps(set),
	}}
	_, err := g.execDDL(ctx, space, false, node)
	return err
}

// UpdateEdge merges set into a single edge's properties.
func (g *GraphService) UpdateEdge(ctx context.Context, space ids.SpaceId, src, dst ids.VertexId, edgeType ids.EdgeType, ranking int64, set map[string]value.Value) error {
	schema, ok := g.catalog.EdgeTypeByID(space, edgeType)
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "edge type not found")
	}
	if err := validatePropTypes("edge type", schema.Name, schema.Properties, set); err != nil {
		return err
	}
	node := &plan.Node{Kind: plan.KindUpdate, Attrs: plan.UpdateAttrs{
		Edges: []plan.EdgeSpec{{Src: src, Dst: dst, Type: edgeType, Ranking: ranking}}, Set: literalProps(set),
	}}
	_, err := g.execDDL(ctx, space, false, node)
	return err
}
