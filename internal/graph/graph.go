// Package graph defines the property-graph data model: vertices with
// multiple typed tag instances, directed typed edges with rankings, paths,
// and the tag/edge-type/index schema objects the catalog manages.
//
// This is the Go-native descendant of the teacher's storage.Node/Edge
// (straga-Mimir_lite pkg/storage/types.go), generalized from a single
// flat label+property-map model to the spec's multi-tag, schema-checked
// model (spec §3 "Vertex", "Edge").
package graph

import (
	"fmt"

	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// TagInstance binds one TagId to the property values a vertex carries for
// that tag. The same TagId must not appear twice on one vertex.
type TagInstance struct {
	Tag        ids.TagId
	Properties map[string]value.Value
}

// Vertex owns an ID and an ordered, insertion-order sequence of tag
// instances plus an optional vertex-level (untagged) property map.
//
// Invariants (enforced by the catalog/codec boundary, not by this type
// itself — Vertex is a plain data holder):
//  1. the same TagId appears at most once;
//  2. every property key in a tag instance is declared by that tag's schema;
//  3. Tags order is observable and is insertion order.
type Vertex struct {
	ID         ids.VertexId
	Tags       []TagInstance
	Properties map[string]value.Value
}

// HasTag reports whether the vertex carries an instance of tag t.
func (v *Vertex) HasTag(t ids.TagId) bool {
	for _, ti := range v.Tags {
		if ti.Tag == t {
			return true
		}
	}
	return false
}

// TagProperties returns the property map for the given tag, or nil if the
// vertex does not carry that tag.
func (v *Vertex) TagProperties(t ids.TagId) map[string]value.Value {
	for _, ti := range v.Tags {
		if ti.Tag == t {
			return ti.Properties
		}
	}
	return nil
}

// AsValue wraps the vertex as a value.Value of kind KindVertex.
func (v *Vertex) AsValue() value.Value {
	return value.Graph(value.KindVertex, v)
}

// Edge owns Src, Dst, a typed EdgeType, a Ranking distinguishing parallel
// edges, and a property map. The tuple (space, src, edge_type, ranking, dst)
// is the primary identity (spec §3 "Edge").
type Edge struct {
	Src        ids.VertexId
	Dst        ids.VertexId
	Type       ids.EdgeType
	Ranking    int64
	Properties map[string]value.Value
}

// Reverse returns the logical reverse of e: same identity components, but
// Src/Dst swapped, matching the second physical record stored for
// in-neighbor scans (spec §3 "Edge", §4.1 key encoding).
func (e Edge) Reverse() Edge {
	return Edge{Src: e.Dst, Dst: e.Src, Type: e.Type, Ranking: e.Ranking, Properties: e.Properties}
}

func (e *Edge) AsValue() value.Value {
	return value.Graph(value.KindEdge, e)
}

func (e Edge) String() string {
	return fmt.Sprintf("%s-[%s@%d]->%s", e.Src, e.Type, e.Ranking, e.Dst)
}

// Step is one hop of a Path: the edge traversed and the vertex landed on.
type Step struct {
	Edge Edge
	Dst  *Vertex
}

// Path is a source vertex plus an ordered sequence of Steps. Under the
// no-loop traversal option a path never revisits its source vertex.
type Path struct {
	Src   *Vertex
	Steps []Step
}

func (p *Path) AsValue() value.Value {
	return value.Graph(value.KindPath, p)
}

// Length returns the number of hops (edges) in the path.
func (p *Path) Length() int { return len(p.Steps) }

// Visits reports whether vid appears anywhere in the path, including the
// source — used to enforce the no-loop traversal option.
func (p *Path) Visits(vid ids.VertexId) bool {
	if p.Src != nil && p.Src.ID == vid {
		return true
	}
	for _, s := range p.Steps {
		if s.Dst != nil && s.Dst.ID == vid {
			return true
		}
	}
	return false
}
