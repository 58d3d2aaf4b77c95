package graph

import (
	"time"

	"github.com/kkkqkx123/graphdb/internal/ids"
)

// DataType enumerates the scalar/compound types a PropertyDef may declare.
type DataType uint8

const (
	TypeBool DataType = iota
	TypeInt
	TypeFloat
	TypeString
	TypeDate
	TypeTime
	TypeDateTime
	TypeList
	TypeSet
	TypeMap
)

// PropertyDef describes one property slot of a tag or edge-type schema.
type PropertyDef struct {
	Name     string
	Type     DataType
	Nullable bool
	Default  any // nil when there is no default
}

// TTLSpec declares that rows of a tag/edge-type schema expire TTLDuration
// after the value of the named TTL column, and are eligible for background
// reclamation.
type TTLSpec struct {
	Column   string
	Duration time.Duration
}

// TagSchema is a named list of PropertyDefs for vertex tags.
type TagSchema struct {
	ID         ids.TagId
	Name       string
	Properties []PropertyDef
	TTL        *TTLSpec
}

// EdgeTypeSchema is a named list of PropertyDefs for edge types.
type EdgeTypeSchema struct {
	ID         ids.EdgeType
	Name       string
	Properties []PropertyDef
	TTL        *TTLSpec
}

func (s *TagSchema) PropertyDef(name string) (PropertyDef, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDef{}, false
}

func (s *EdgeTypeSchema) PropertyDef(name string) (PropertyDef, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyDef{}, false
}

// IndexKind distinguishes a tag index from an edge-type index.
type IndexKind uint8

const (
	IndexKindTag IndexKind = iota
	IndexKindEdge
)

// IndexSchema binds an ordered set of columns of one tag or edge type to a
// secondary ordered table.
type IndexSchema struct {
	ID      ids.IndexId
	Name    string
	Kind    IndexKind
	Tag     ids.TagId   // valid when Kind == IndexKindTag
	Edge    ids.EdgeType // valid when Kind == IndexKindEdge
	Columns []string
	Unique  bool
}
