// Package catalog implements the schema catalog of spec §2 ("Schema
// catalog"): spaces -> (tags, edge types, indexes) with auto-assigned
// dense IDs and bidirectional name<->ID maps, plus the schema-versioning
// write path spec §9's Open Questions section requires be implemented
// (schema_versions / schema_changes / current_versions). Grounded on
// straga-Mimir_lite's schema bookkeeping (pkg/storage) for the
// name<->id map shape, generalized to the spec's explicit version-history
// tables.
package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
)

// ChangeType discriminates the kind of schema mutation recorded in
// schema_changes (spec §9 "a change type, target, and timestamp").
type ChangeType string

const (
	ChangeCreateSpace    ChangeType = "create_space"
	ChangeDropSpace      ChangeType = "drop_space"
	ChangeCreateTag      ChangeType = "create_tag"
	ChangeAlterTag       ChangeType = "alter_tag"
	ChangeDropTag        ChangeType = "drop_tag"
	ChangeCreateEdgeType ChangeType = "create_edge_type"
	ChangeAlterEdgeType  ChangeType = "alter_edge_type"
	ChangeDropEdgeType   ChangeType = "drop_edge_type"
	ChangeCreateIndex    ChangeType = "create_index"
	ChangeDropIndex      ChangeType = "drop_index"
)

// ChangeRecord is one entry in the schema_changes table.
type ChangeRecord struct {
	Space     ids.SpaceId
	Version   uint64
	Type      ChangeType
	Target    string
	Timestamp time.Time
}

// spaceEntry is the catalog's per-space bookkeeping.
type spaceEntry struct {
	id   ids.SpaceId
	name string

	nextTagId      int32
	nextEdgeTypeId int32
	nextIndexId    int32

	tagsByName      map[string]ids.TagId
	tagsById        map[ids.TagId]*graph.TagSchema
	edgeTypesByName map[string]ids.EdgeType
	edgeTypesById   map[ids.EdgeType]*graph.EdgeTypeSchema
	indexesByName   map[string]ids.IndexId
	indexesById     map[ids.IndexId]*graph.IndexSchema

	currentVersion uint64
}

// Catalog is the process-wide schema catalog. A single reader-writer lock
// guards all tables (spec §5 "the schema catalog ... use a single
// reader-writer lock each; readers dominate").
type Catalog struct {
	mu sync.RWMutex

	spacesByName map[string]*spaceEntry
	spacesById   map[ids.SpaceId]*spaceEntry
	nextSpaceId  int32

	changes []ChangeRecord
}

func New() *Catalog {
	return &Catalog{
		spacesByName: make(map[string]*spaceEntry),
		spacesById:   make(map[ids.SpaceId]*spaceEntry),
	}
}

func (c *Catalog) recordChangeLocked(space ids.SpaceId, version uint64, typ ChangeType, target string) {
	c.changes = append(c.changes, ChangeRecord{Space: space, Version: version, Type: typ, Target: target, Timestamp: time.Now()})
}

func (c *Catalog) bumpVersionLocked(se *spaceEntry) uint64 {
	se.currentVersion++
	return se.currentVersion
}

// CreateSpace registers a new space and assigns it a dense SpaceId.
func (c *Catalog) CreateSpace(name string) (ids.SpaceId, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.spacesByName[name]; exists {
		return 0, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceAlreadyExists, fmt.Sprintf("space %q already exists", name))
	}
	c.nextSpaceId++
	se := &spaceEntry{
		id:              ids.SpaceId(c.nextSpaceId),
		name:            name,
		tagsByName:      make(map[string]ids.TagId),
		tagsById:        make(map[ids.TagId]*graph.TagSchema),
		edgeTypesByName: make(map[string]ids.EdgeType),
		edgeTypesById:   make(map[ids.EdgeType]*graph.EdgeTypeSchema),
		indexesByName:   make(map[string]ids.IndexId),
		indexesById:     make(map[ids.IndexId]*graph.IndexSchema),
	}
	c.spacesByName[name] = se
	c.spacesById[se.id] = se
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(se.id, v, ChangeCreateSpace, name)
	return se.id, nil
}

func (c *Catalog) DropSpace(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, ok := c.spacesByName[name]
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, fmt.Sprintf("space %q not found", name))
	}
	delete(c.spacesByName, name)
	delete(c.spacesById, se.id)
	v := se.currentVersion + 1
	c.recordChangeLocked(se.id, v, ChangeDropSpace, name)
	return nil
}

func (c *Catalog) SpaceByName(name string) (ids.SpaceId, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesByName[name]
	if !ok {
		return 0, false
	}
	return se.id, true
}

func (c *Catalog) SpaceNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.spacesByName))
	for n := range c.spacesByName {
		names = append(names, n)
	}
	return names
}

func (c *Catalog) spaceLocked(id ids.SpaceId) (*spaceEntry, error) {
	se, ok := c.spacesById[id]
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "space not found")
	}
	return se, nil
}

// CreateTag registers schema for a new tag within space, assigning the
// next dense TagId for that space.
func (c *Catalog) CreateTag(space ids.SpaceId, schema *graph.TagSchema) (ids.TagId, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return 0, err
	}
	if _, exists := se.tagsByName[schema.Name]; exists {
		return 0, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceAlreadyExists, fmt.Sprintf("tag %q already exists", schema.Name))
	}
	se.nextTagId++
	tagId := ids.TagId(se.nextTagId)
	schema.ID = tagId
	se.tagsByName[schema.Name] = tagId
	se.tagsById[tagId] = schema
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeCreateTag, schema.Name)
	return tagId, nil
}

func (c *Catalog) TagByName(space ids.SpaceId, name string) (*graph.TagSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, false
	}
	tagId, ok := se.tagsByName[name]
	if !ok {
		return nil, false
	}
	return se.tagsById[tagId], true
}

func (c *Catalog) TagByID(space ids.SpaceId, id ids.TagId) (*graph.TagSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, false
	}
	schema, ok := se.tagsById[id]
	return schema, ok
}

func (c *Catalog) DropTag(space ids.SpaceId, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return err
	}
	tagId, ok := se.tagsByName[name]
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, fmt.Sprintf("tag %q not found", name))
	}
	delete(se.tagsByName, name)
	delete(se.tagsById, tagId)
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeDropTag, name)
	return nil
}

// AlterTag replaces the property list of an existing tag schema (adding,
// dropping or changing PropertyDefs), bumping the space's schema version.
func (c *Catalog) AlterTag(space ids.SpaceId, name string, properties []graph.PropertyDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return err
	}
	tagId, ok := se.tagsByName[name]
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, fmt.Sprintf("tag %q not found", name))
	}
	se.tagsById[tagId].Properties = properties
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeAlterTag, name)
	return nil
}

// TagNames lists every tag name registered in space, for SHOW TAGS.
func (c *Catalog) TagNames(space ids.SpaceId) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "space not found")
	}
	names := make([]string, 0, len(se.tagsByName))
	for n := range se.tagsByName {
		names = append(names, n)
	}
	return names, nil
}

// CreateEdgeType mirrors CreateTag for edge-type schemas.
func (c *Catalog) CreateEdgeType(space ids.SpaceId, schema *graph.EdgeTypeSchema) (ids.EdgeType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return 0, err
	}
	if _, exists := se.edgeTypesByName[schema.Name]; exists {
		return 0, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceAlreadyExists, fmt.Sprintf("edge type %q already exists", schema.Name))
	}
	se.nextEdgeTypeId++
	etId := ids.EdgeType(se.nextEdgeTypeId)
	schema.ID = etId
	se.edgeTypesByName[schema.Name] = etId
	se.edgeTypesById[etId] = schema
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeCreateEdgeType, schema.Name)
	return etId, nil
}

func (c *Catalog) EdgeTypeByName(space ids.SpaceId, name string) (*graph.EdgeTypeSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, false
	}
	etId, ok := se.edgeTypesByName[name]
	if !ok {
		return nil, false
	}
	return se.edgeTypesById[etId], true
}

func (c *Catalog) EdgeTypeByID(space ids.SpaceId, id ids.EdgeType) (*graph.EdgeTypeSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, false
	}
	schema, ok := se.edgeTypesById[id]
	return schema, ok
}

// AlterEdgeType mirrors AlterTag for edge-type schemas.
func (c *Catalog) AlterEdgeType(space ids.SpaceId, name string, properties []graph.PropertyDef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return err
	}
	etId, ok := se.edgeTypesByName[name]
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, fmt.Sprintf("edge type %q not found", name))
	}
	se.edgeTypesById[etId].Properties = properties
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeAlterEdgeType, name)
	return nil
}

// DropEdgeType removes an edge-type schema by name.
func (c *Catalog) DropEdgeType(space ids.SpaceId, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return err
	}
	etId, ok := se.edgeTypesByName[name]
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, fmt.Sprintf("edge type %q not found", name))
	}
	delete(se.edgeTypesByName, name)
	delete(se.edgeTypesById, etId)
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeDropEdgeType, name)
	return nil
}

// EdgeTypeNames lists every edge-type name registered in space.
func (c *Catalog) EdgeTypeNames(space ids.SpaceId) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "space not found")
	}
	names := make([]string, 0, len(se.edgeTypesByName))
	for n := range se.edgeTypesByName {
		names = append(names, n)
	}
	return names, nil
}

// CreateIndex registers a secondary index schema, assigning a dense
// IndexId within the space.
func (c *Catalog) CreateIndex(space ids.SpaceId, schema *graph.IndexSchema) (ids.IndexId, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return 0, err
	}
	if _, exists := se.indexesByName[schema.Name]; exists {
		return 0, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceAlreadyExists, fmt.Sprintf("index %q already exists", schema.Name))
	}
	se.nextIndexId++
	idxId := ids.IndexId(se.nextIndexId)
	schema.ID = idxId
	se.indexesByName[schema.Name] = idxId
	se.indexesById[idxId] = schema
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeCreateIndex, schema.Name)
	return idxId, nil
}

func (c *Catalog) IndexByName(space ids.SpaceId, name string) (*graph.IndexSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, false
	}
	idxId, ok := se.indexesByName[name]
	if !ok {
		return nil, false
	}
	return se.indexesById[idxId], true
}

// IndexByID resolves an index schema by its dense id, for executors (scan
// operators, index-maintenance DDL) that carry an ids.IndexId rather than
// a name (plan.ScanAttrs.Index).
func (c *Catalog) IndexByID(space ids.SpaceId, id ids.IndexId) (*graph.IndexSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, false
	}
	idx, ok := se.indexesById[id]
	return idx, ok
}

func (c *Catalog) IndexesForTag(space ids.SpaceId, tag ids.TagId) []*graph.IndexSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil
	}
	var out []*graph.IndexSchema
	for _, idx := range se.indexesById {
		if idx.Kind == graph.IndexKindTag && idx.Tag == tag {
			out = append(out, idx)
		}
	}
	return out
}

func (c *Catalog) IndexesForEdgeType(space ids.SpaceId, edgeType ids.EdgeType) []*graph.IndexSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil
	}
	var out []*graph.IndexSchema
	for _, idx := range se.indexesById {
		if idx.Kind == graph.IndexKindEdge && idx.Edge == edgeType {
			out = append(out, idx)
		}
	}
	return out
}

// DropIndex removes a secondary index schema by name.
func (c *Catalog) DropIndex(space ids.SpaceId, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	se, err := c.spaceLocked(space)
	if err != nil {
		return err
	}
	idxId, ok := se.indexesByName[name]
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, fmt.Sprintf("index %q not found", name))
	}
	delete(se.indexesByName, name)
	delete(se.indexesById, idxId)
	v := c.bumpVersionLocked(se)
	c.recordChangeLocked(space, v, ChangeDropIndex, name)
	return nil
}

// IndexNames lists every index name registered in space.
func (c *Catalog) IndexNames(space ids.SpaceId) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return nil, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "space not found")
	}
	names := make([]string, 0, len(se.indexesByName))
	for n := range se.indexesByName {
		names = append(names, n)
	}
	return names, nil
}

// CurrentVersion returns the current_versions entry for a space.
func (c *Catalog) CurrentVersion(space ids.SpaceId) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	se, ok := c.spacesById[space]
	if !ok {
		return 0, grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "space not found")
	}
	return se.currentVersion, nil
}

// Changes returns the full schema_changes history, oldest first. Callers
// wanting only one space's history should filter by ChangeRecord.Space.
func (c *Catalog) Changes() []ChangeRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ChangeRecord, len(c.changes))
	copy(out, c.changes)
	return out
}
