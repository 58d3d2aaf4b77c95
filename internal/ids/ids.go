// Package ids defines the distinguished identifier newtypes used throughout
// the graph engine (vertices, edges, tags, edge types, spaces, indexes) and
// the MurmurHash2 implementation used to derive stable fingerprints from
// strings and to order-encode keys.
//
// All IDs are non-zero when valid; the zero value means "unset".
package ids

import "fmt"

// VertexId uniquely identifies a vertex within a space.
type VertexId int64

// EdgeId uniquely identifies an edge within a space.
type EdgeId int64

// TagId uniquely identifies a tag schema within a space.
type TagId int32

// EdgeType uniquely identifies an edge-type schema within a space.
type EdgeType int32

// SpaceId uniquely identifies a graph space.
type SpaceId int32

// IndexId uniquely identifies a secondary index within a space.
type IndexId int32

func (v VertexId) Valid() bool   { return v != 0 }
func (e EdgeId) Valid() bool     { return e != 0 }
func (t TagId) Valid() bool      { return t != 0 }
func (e EdgeType) Valid() bool   { return e != 0 }
func (s SpaceId) Valid() bool    { return s != 0 }
func (i IndexId) Valid() bool    { return i != 0 }

func (v VertexId) String() string { return fmt.Sprintf("v%d", int64(v)) }
func (e EdgeId) String() string   { return fmt.Sprintf("e%d", int64(e)) }
func (t TagId) String() string    { return fmt.Sprintf("tag%d", int32(t)) }
func (e EdgeType) String() string { return fmt.Sprintf("edge_type%d", int32(e)) }
func (s SpaceId) String() string  { return fmt.Sprintf("space%d", int32(s)) }
func (i IndexId) String() string  { return fmt.Sprintf("index%d", int32(i)) }

// VertexIdFromString derives a 64-bit vertex ID from an external string key
// by a stable hash (murmur2Signed64: MurmurHash2 over the UTF-8 bytes with
// seeds 0 and 1), so that the same
// external key always maps to the same internal VertexId.
func VertexIdFromString(s string) VertexId {
	return VertexId(murmur2Signed64(s))
}

// EdgeIdFromString derives a 64-bit edge ID from a string key the same way
// VertexIdFromString does for vertices.
func EdgeIdFromString(s string) EdgeId {
	return EdgeId(murmur2Signed64(s))
}

// murmur2Signed64 hashes s with MurmurHash2 twice (seed 0 and seed 1) and
// packs the two 32-bit halves into a 64-bit signed integer so that the
// result space is dense enough to make collisions practically irrelevant
// for the expected cardinalities of a single space.
func murmur2Signed64(s string) int64 {
	hi := MurmurHash2([]byte(s), 0)
	lo := MurmurHash2([]byte(s), 1)
	return int64(uint64(hi)<<32 | uint64(lo))
}
