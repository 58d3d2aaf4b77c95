// Package codec encodes vertices, edges, index entries and schema
// identifiers to and from the byte keys and values stored in the KV layer,
// following the fixed prefix layout of spec §4.1. All multi-byte integers
// are big-endian so that lexicographic byte order equals numeric order,
// which is what lets "all edges out of v of type t" be a single prefix
// range scan (spec §4.1).
//
// The prefix scheme generalizes the teacher's single-byte BadgerEngine
// prefixes (straga-Mimir_lite pkg/storage/badger.go: prefixNode,
// prefixEdge, prefixLabelIndex, prefixOutgoingIndex, prefixIncomingIndex)
// to the richer, space-scoped key families spec §4.1 requires.
package codec

import (
	"encoding/binary"
	"math"

	"github.com/kkkqkx123/graphdb/internal/ids"
)

// Key prefixes. Single byte, matching the teacher's convention of compact
// prefixes for efficient range scans.
const (
	PrefixVertex     = byte(0x01) // V|space|vid
	PrefixEdgeOut    = byte(0x02) // E+|space|src|type|rank|dst
	PrefixEdgeIn     = byte(0x03) // E-|space|dst|type|rank|src
	PrefixTagIndex   = byte(0x04) // TI|space|index|col-bytes|vid
	PrefixEdgeIndex  = byte(0x05) // EI|space|index|col-bytes|src|rank|dst
	PrefixSpaceMeta  = byte(0x10)
	PrefixTagMeta    = byte(0x11)
	PrefixEdgeMeta   = byte(0x12)
	PrefixIndexMeta  = byte(0x13)
	PrefixSchemaVer  = byte(0x14)
	PrefixSchemaLog  = byte(0x15)
	PrefixCounter    = byte(0x16)
	PrefixNameIndex  = byte(0x17)
	PrefixPassword   = byte(0x18)
)

func putBE32(b []byte, v int32)  { binary.BigEndian.PutUint32(b, uint32(v)) }
func putBE64(b []byte, v int64)  { binary.BigEndian.PutUint64(b, uint64(v)) }
func getBE32(b []byte) int32     { return int32(binary.BigEndian.Uint32(b)) }
func getBE64(b []byte) int64     { return int64(binary.BigEndian.Uint64(b)) }

// VertexKey builds the key for a vertex record: V|space|vid.
func VertexKey(space ids.SpaceId, vid ids.VertexId) []byte {
	buf := make([]byte, 1+4+8)
	buf[0] = PrefixVertex
	putBE32(buf[1:5], int32(space))
	putBE64(buf[5:13], int64(vid))
	return buf
}

// VertexPrefix builds the prefix for scanning all vertices of a space.
func VertexPrefix(space ids.SpaceId) []byte {
	buf := make([]byte, 1+4)
	buf[0] = PrefixVertex
	putBE32(buf[1:5], int32(space))
	return buf
}

// EdgeOutKey builds the outgoing-edge key E+|space|src|type|rank|dst.
func EdgeOutKey(space ids.SpaceId, src ids.VertexId, et ids.EdgeType, rank int64, dst ids.VertexId) []byte {
	return edgeKey(PrefixEdgeOut, space, src, et, rank, dst)
}

// EdgeInKey builds the incoming-edge (reverse) key E-|space|dst|type|rank|src.
func EdgeInKey(space ids.SpaceId, dst ids.VertexId, et ids.EdgeType, rank int64, src ids.VertexId) []byte {
	return edgeKey(PrefixEdgeIn, space, dst, et, rank, src)
}

func edgeKey(prefix byte, space ids.SpaceId, first ids.VertexId, et ids.EdgeType, rank int64, second ids.VertexId) []byte {
	buf := make([]byte, 1+4+8+4+8+8)
	buf[0] = prefix
	off := 1
	putBE32(buf[off:off+4], int32(space))
	off += 4
	putBE64(buf[off:off+8], int64(first))
	off += 8
	putBE32(buf[off:off+4], int32(et))
	off += 4
	putBE64(buf[off:off+8], rank)
	off += 8
	putBE64(buf[off:off+8], int64(second))
	return buf
}

// EdgeOutPrefix builds a prefix matching all outgoing edges of src (any
// type), or of src+type when et is non-zero — a single prefix scan per
// spec §4.1's example.
func EdgeOutPrefix(space ids.SpaceId, src ids.VertexId, et ids.EdgeType) []byte {
	return edgePrefix(PrefixEdgeOut, space, src, et)
}

func EdgeInPrefix(space ids.SpaceId, dst ids.VertexId, et ids.EdgeType) []byte {
	return edgePrefix(PrefixEdgeIn, space, dst, et)
}

func edgePrefix(prefix byte, space ids.SpaceId, first ids.VertexId, et ids.EdgeType) []byte {
	if et == 0 {
		buf := make([]byte, 1+4+8)
		buf[0] = prefix
		putBE32(buf[1:5], int32(space))
		putBE64(buf[5:13], int64(first))
		return buf
	}
	buf := make([]byte, 1+4+8+4)
	buf[0] = prefix
	putBE32(buf[1:5], int32(space))
	putBE64(buf[5:13], int64(first))
	putBE32(buf[13:17], int32(et))
	return buf
}

// DecodeEdgeInKey extracts the components of a key built by EdgeInKey: the
// "first" field stored is the in-edge's dst, the "second" is its src.
func DecodeEdgeInKey(k []byte) (space ids.SpaceId, dst ids.VertexId, et ids.EdgeType, rank int64, src ids.VertexId, ok bool) {
	if len(k) != 1+4+8+4+8+8 || k[0] != PrefixEdgeIn {
		return 0, 0, 0, 0, 0, false
	}
	off := 1
	space = ids.SpaceId(getBE32(k[off : off+4]))
	off += 4
	dst = ids.VertexId(getBE64(k[off : off+8]))
	off += 8
	et = ids.EdgeType(getBE32(k[off : off+4]))
	off += 4
	rank = getBE64(k[off : off+8])
	off += 8
	src = ids.VertexId(getBE64(k[off : off+8]))
	return space, dst, et, rank, src, true
}

// EdgeOutSpacePrefix builds a prefix matching every outgoing edge in space,
// for a full ScanEdges/IndexFullScan-style table scan with no known source
// vertex to range from.
func EdgeOutSpacePrefix(space ids.SpaceId) []byte {
	buf := make([]byte, 1+4)
	buf[0] = PrefixEdgeOut
	putBE32(buf[1:5], int32(space))
	return buf
}

// DecodeEdgeOutKey extracts the components of a key built by EdgeOutKey.
func DecodeEdgeOutKey(k []byte) (space ids.SpaceId, src ids.VertexId, et ids.EdgeType, rank int64, dst ids.VertexId, ok bool) {
	if len(k) != 1+4+8+4+8+8 || k[0] != PrefixEdgeOut {
		return 0, 0, 0, 0, 0, false
	}
	off := 1
	space = ids.SpaceId(getBE32(k[off : off+4]))
	off += 4
	src = ids.VertexId(getBE64(k[off : off+8]))
	off += 8
	et = ids.EdgeType(getBE32(k[off : off+4]))
	off += 4
	rank = getBE64(k[off : off+8])
	off += 8
	dst = ids.VertexId(getBE64(k[off : off+8]))
	return space, src, et, rank, dst, true
}

// TagIndexKey builds a secondary tag-index entry key
// TI|space|index|col-bytes|vid. colBytes must already be order-preserving
// encoded (see EncodeOrdered).
func TagIndexKey(space ids.SpaceId, index ids.IndexId, colBytes []byte, vid ids.VertexId) []byte {
	buf := make([]byte, 0, 1+4+4+len(colBytes)+8)
	buf = append(buf, PrefixTagIndex)
	buf = appendBE32(buf, int32(space))
	buf = appendBE32(buf, int32(index))
	buf = append(buf, colBytes...)
	buf = appendBE64(buf, int64(vid))
	return buf
}

// TagIndexPrefix builds the prefix for scanning a tag index, optionally
// restricted to a column-value prefix (pass nil colBytes for a full-index
// scan).
func TagIndexPrefix(space ids.SpaceId, index ids.IndexId, colBytes []byte) []byte {
	buf := make([]byte, 0, 1+4+4+len(colBytes))
	buf = append(buf, PrefixTagIndex)
	buf = appendBE32(buf, int32(space))
	buf = appendBE32(buf, int32(index))
	buf = append(buf, colBytes...)
	return buf
}

// DecodeTagIndexVertexId extracts the trailing VertexId from a key built
// by TagIndexKey, given the prefix (space+index+colBytes) that was
// scanned to find it.
func DecodeTagIndexVertexId(key, prefix []byte) (int64, bool) {
	if len(key) != len(prefix)+8 {
		return 0, false
	}
	return getBE64(key[len(prefix):]), true
}

// DecodeEdgeIndexEntry extracts the trailing src|rank|dst from a key built
// by EdgeIndexKey, given the prefix (space+index+colBytes) that was
// scanned to find it.
func DecodeEdgeIndexEntry(key, prefix []byte) (src ids.VertexId, rank int64, dst ids.VertexId, ok bool) {
	if len(key) != len(prefix)+8+8+8 {
		return 0, 0, 0, false
	}
	off := len(prefix)
	src = ids.VertexId(getBE64(key[off : off+8]))
	off += 8
	rank = getBE64(key[off : off+8])
	off += 8
	dst = ids.VertexId(getBE64(key[off : off+8]))
	return src, rank, dst, true
}

// EdgeIndexKey builds a secondary edge-index entry key
// EI|space|index|col-bytes|src|rank|dst.
func EdgeIndexKey(space ids.SpaceId, index ids.IndexId, colBytes []byte, src ids.VertexId, rank int64, dst ids.VertexId) []byte {
	buf := make([]byte, 0, 1+4+4+len(colBytes)+8+8+8)
	buf = append(buf, PrefixEdgeIndex)
	buf = appendBE32(buf, int32(space))
	buf = appendBE32(buf, int32(index))
	buf = append(buf, colBytes...)
	buf = appendBE64(buf, int64(src))
	buf = appendBE64(buf, rank)
	buf = appendBE64(buf, int64(dst))
	return buf
}

func EdgeIndexPrefix(space ids.SpaceId, index ids.IndexId, colBytes []byte) []byte {
	buf := make([]byte, 0, 1+4+4+len(colBytes))
	buf = append(buf, PrefixEdgeIndex)
	buf = appendBE32(buf, int32(space))
	buf = appendBE32(buf, int32(index))
	buf = append(buf, colBytes...)
	return buf
}

func appendBE32(b []byte, v int32) []byte {
	var tmp [4]byte
	putBE32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendBE64(b []byte, v int64) []byte {
	var tmp [8]byte
	putBE64(tmp[:], v)
	return append(b, tmp[:]...)
}

// EncodeOrderedInt64 order-preserving-encodes a signed 64-bit integer: flip
// the sign bit so that two's-complement ordering becomes unsigned-lexical
// ordering (spec §4.1 "integer property components ... signed ints via
// sign-flip").
func EncodeOrderedInt64(v int64) []byte {
	u := uint64(v) ^ (1 << 63)
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, u)
	return buf
}

func DecodeOrderedInt64(b []byte) int64 {
	u := binary.BigEndian.Uint64(b) ^ (1 << 63)
	return int64(u)
}

// EncodeOrderedFloat64 order-preserving-encodes an IEEE-754 float using the
// standard transform: for non-negative floats flip the sign bit; for
// negative floats flip all bits. This maps float ordering to unsigned
// big-endian byte ordering (spec §4.1).
func EncodeOrderedFloat64(f float64) []byte {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		bits = ^bits
	} else {
		bits |= 1 << 63
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bits)
	return buf
}

func DecodeOrderedFloat64(b []byte) float64 {
	bits := binary.BigEndian.Uint64(b)
	if bits&(1<<63) != 0 {
		bits &^= 1 << 63
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits)
}

// EncodeOrderedString nul-terminates s so that a shorter string that is a
// prefix of a longer one still sorts first (spec §4.1: "strings
// nul-terminated").
func EncodeOrderedString(s string) []byte {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0x00
	return buf
}

// EncodeOrderedBool encodes a bool as a single ordered byte (false < true).
func EncodeOrderedBool(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}
