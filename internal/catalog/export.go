package catalog

import (
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/graph"
)

// PropertySnapshot is the YAML-serializable shape of a graph.PropertyDef.
type PropertySnapshot struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

// TTLSnapshot is the YAML-serializable shape of a graph.TTLSpec.
type TTLSnapshot struct {
	Column   string        `yaml:"column"`
	Duration time.Duration `yaml:"duration"`
}

// SchemaSnapshot is one tag or edge type's exported definition.
type SchemaSnapshot struct {
	Name       string             `yaml:"name"`
	Properties []PropertySnapshot `yaml:"properties"`
	TTL        *TTLSnapshot       `yaml:"ttl,omitempty"`
}

// IndexSnapshot is one index's exported definition.
type IndexSnapshot struct {
	Name    string   `yaml:"name"`
	On      string   `yaml:"on"` // the tag or edge type name this index is built on
	Kind    string   `yaml:"kind"`
	Columns []string `yaml:"columns"`
	Unique  bool     `yaml:"unique"`
}

// SpaceSnapshot is the full exported schema of one space (spec §6's admin
// "DESC SPACE"/"SHOW" export surface): every tag, edge type, and index
// definition, plus the version this snapshot was taken at.
type SpaceSnapshot struct {
	Space      string           `yaml:"space"`
	Version    uint64           `yaml:"version"`
	Tags       []SchemaSnapshot `yaml:"tags"`
	EdgeTypes  []SchemaSnapshot `yaml:"edge_types"`
	Indexes    []IndexSnapshot  `yaml:"indexes"`
	ExportedAt time.Time        `yaml:"exported_at"`
}

var dataTypeNames = map[graph.DataType]string{
	graph.TypeBool:     "bool",
	graph.TypeInt:      "int",
	graph.TypeFloat:    "float",
	graph.TypeString:   "string",
	graph.TypeDate:     "date",
	graph.TypeTime:     "time",
	graph.TypeDateTime: "datetime",
	graph.TypeList:     "list",
	graph.TypeSet:      "set",
	graph.TypeMap:      "map",
}

func propertySnapshots(props []graph.PropertyDef) []PropertySnapshot {
	out := make([]PropertySnapshot, len(props))
	for i, p := range props {
		out[i] = PropertySnapshot{Name: p.Name, Type: dataTypeNames[p.Type], Nullable: p.Nullable}
	}
	return out
}

func ttlSnapshot(ttl *graph.TTLSpec) *TTLSnapshot {
	if ttl == nil {
		return nil
	}
	return &TTLSnapshot{Column: ttl.Column, Duration: ttl.Duration}
}

// Snapshot builds a SpaceSnapshot of every tag, edge type, and index
// currently registered in space, for export via internal/httpapi's
// schema-export endpoint (through service.GraphService.ExportSpace).
func (c *Catalog) Snapshot(space_ string) (*SpaceSnapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	se, ok := c.spacesByName[space_]
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "unknown space: "+space_)
	}

	snap := &SpaceSnapshot{Space: space_, Version: se.currentVersion, ExportedAt: time.Now()}
	for name, id := range se.tagsByName {
		schema := se.tagsById[id]
		snap.Tags = append(snap.Tags, SchemaSnapshot{
			Name:       name,
			Properties: propertySnapshots(schema.Properties),
			TTL:        ttlSnapshot(schema.TTL),
		})
	}
	for name, id := range se.edgeTypesByName {
		schema := se.edgeTypesById[id]
		snap.EdgeTypes = append(snap.EdgeTypes, SchemaSnapshot{
			Name:       name,
			Properties: propertySnapshots(schema.Properties),
			TTL:        ttlSnapshot(schema.TTL),
		})
	}
	for name, id := range se.indexesByName {
		idx := se.indexesById[id]
		on := ""
		kind := "tag"
		if idx.Kind == graph.IndexKindEdge {
			kind = "edge"
		}
		// Resolve the owning tag/edge type name for readability; falls back
		// to empty if the owner was since dropped (the index itself would
		// have been dropped too, but defends against any future skew).
		if idx.Kind == graph.IndexKindTag {
			if owner, ok := se.tagsById[idx.Tag]; ok {
				on = owner.Name
			}
		} else if owner, ok := se.edgeTypesById[idx.Edge]; ok {
			on = owner.Name
		}
		snap.Indexes = append(snap.Indexes, IndexSnapshot{
			Name: name, On: on, Kind: kind, Columns: idx.Columns, Unique: idx.Unique,
		})
	}
	return snap, nil
}

// ToYAML renders a SpaceSnapshot as the exported document itself (spec §6's
// export format) rather than requiring callers to know about
// gopkg.in/yaml.v3 at the call site.
func (s *SpaceSnapshot) ToYAML() ([]byte, error) {
	return yaml.Marshal(s)
}
