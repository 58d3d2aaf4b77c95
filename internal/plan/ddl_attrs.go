package plan

import (
	"github.com/kkkqkx123/graphdb/internal/expr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
)

// VertexSpec is one vertex of an InsertVertices statement: a resolved id
// plus the tag instances to attach, each tag's properties still unevaluated
// expressions (literals, in the common case, but parameters/functions are
// legal too).
type VertexSpec struct {
	ID   ids.VertexId
	Tags []TagValue
}

// TagValue binds one TagId to the property expressions an InsertVertices
// statement supplies for it.
type TagValue struct {
	Tag        ids.TagId
	Properties map[string]*expr.Expr
}

// InsertVerticesAttrs parameterizes InsertVertices (spec §4.6 DDL/DML row).
type InsertVerticesAttrs struct {
	Vertices []VertexSpec
}

// EdgeSpec is one edge of an InsertEdges statement, or one edge identity of
// a Delete/Update statement (Properties is nil in the latter case).
type EdgeSpec struct {
	Src        ids.VertexId
	Dst        ids.VertexId
	Type       ids.EdgeType
	Ranking    int64
	Properties map[string]*expr.Expr
}

// InsertEdgesAttrs parameterizes InsertEdges.
type InsertEdgesAttrs struct {
	Edges []EdgeSpec
}

// DeleteAttrs parameterizes DeleteExecutor: a batch of vertex ids and/or
// edge identities to remove, along with every index entry and adjacent
// reverse-edge record their removal implies.
type DeleteAttrs struct {
	Vertices []ids.VertexId
	Edges    []EdgeSpec
}

// UpdateAttrs parameterizes UpdateExecutor: SET expressions applied either
// to one tag's properties of each vertex in Vertices, or to the properties
// of each edge in Edges (whichever list is non-empty).
type UpdateAttrs struct {
	Vertices []ids.VertexId
	Tag      ids.TagId
	Edges    []EdgeSpec
	Set      map[string]*expr.Expr
}

// CreateSpaceAttrs/DropSpaceAttrs parameterize space DDL.
type CreateSpaceAttrs struct{ Name string }
type DropSpaceAttrs struct{ Name string }

// CreateTagAttrs/AlterTagAttrs/DropTagAttrs parameterize tag-schema DDL.
type CreateTagAttrs struct {
	Name       string
	Properties []graph.PropertyDef
	TTL        *graph.TTLSpec
}
type AlterTagAttrs struct {
	Name       string
	Properties []graph.PropertyDef
}
type DropTagAttrs struct{ Name string }

// CreateEdgeTypeAttrs/AlterEdgeTypeAttrs/DropEdgeTypeAttrs mirror the tag
// DDL triple for edge-type schemas.
type CreateEdgeTypeAttrs struct {
	Name       string
	Properties []graph.PropertyDef
	TTL        *graph.TTLSpec
}
type AlterEdgeTypeAttrs struct {
	Name       string
	Properties []graph.PropertyDef
}
type DropEdgeTypeAttrs struct{ Name string }

// CreateIndexAttrs/DropIndexAttrs parameterize secondary-index DDL.
type CreateIndexAttrs struct {
	Name    string
	Kind    graph.IndexKind
	Tag     ids.TagId
	Edge    ids.EdgeType
	Columns []string
	Unique  bool
}
type DropIndexAttrs struct{ Name string }

// DescSpaceAttrs/DescTagAttrs/DescEdgeTypeAttrs/DescIndexAttrs name the one
// schema object a DESC statement reports on. ShowSpacesAttrs/ShowTagsAttrs/
// ShowEdgeTypesAttrs/ShowIndexesAttrs carry nothing — they list everything
// registered in the current space.
type DescSpaceAttrs struct{ Name string }
type ShowSpacesAttrs struct{}
type DescTagAttrs struct{ Name string }
type ShowTagsAttrs struct{}
type DescEdgeTypeAttrs struct{ Name string }
type ShowEdgeTypesAttrs struct{}
type DescIndexAttrs struct{ Name string }
type ShowIndexesAttrs struct{}

// RebuildTagIndexAttrs/RebuildEdgeIndexAttrs name the index a rebuild
// scans base data and repopulates the secondary table for.
type RebuildTagIndexAttrs struct{ Name string }
type RebuildEdgeIndexAttrs struct{ Name string }
