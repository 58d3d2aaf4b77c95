// Package index implements the secondary index service of spec §2
// ("Index service"): maintains tag/edge-type secondary indexes over the
// KV store's ordered key space and fronts exact-value lookups with a
// small cache. Grounded on the codec key layout (internal/codec) for the
// physical index key format and on internal/cache's LRU for the
// exact-lookup cache (spec §4.7's reuse across subsystems).
package index

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/cache"
	"github.com/kkkqkx123/graphdb/internal/codec"
	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/value"
)

// lookupKey identifies one exact-value index lookup for caching purposes.
type lookupKey struct {
	space ids.SpaceId
	index ids.IndexId
	cols  string // the concatenated order-preserving column encoding, as a string
}

// EdgeIndexEntry identifies one edge by its (space, src, edge_type, rank,
// dst) identity tuple, as returned by LookupEdgeExact.
type EdgeIndexEntry struct {
	Src  ids.VertexId
	Rank int64
	Dst  ids.VertexId
}

// Service maintains secondary indexes and answers exact-lookup and range
// queries against them.
type Service struct {
	store     kv.Store
	cache     cache.Cache[lookupKey, []ids.VertexId]
	edgeCache cache.Cache[lookupKey, []EdgeIndexEntry]
}

// NewService builds an index Service. lookupCacheCapacity must be
// positive; pass a small value (e.g. 256) in tests.
func NewService(store kv.Store, lookupCacheCapacity int) (*Service, error) {
	c, err := cache.NewLRU[lookupKey, []ids.VertexId](lookupCacheCapacity)
	if err != nil {
		return nil, err
	}
	ec, err := cache.NewLRU[lookupKey, []EdgeIndexEntry](lookupCacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Service{store: store, cache: c, edgeCache: ec}, nil
}

// InsertTagEntry writes one tag-index entry for vertex vid's column
// values (spec §8 "Index consistency": after inserting vertex v tagged T,
// for every index on T a corresponding entry exists).
func (s *Service) InsertTagEntry(ctx context.Context, txn kv.Txn, space ids.SpaceId, idx *graph.IndexSchema, vid ids.VertexId, columnValues []value.Value) error {
	if idx.Kind != graph.IndexKindTag {
		return grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "InsertTagEntry requires a tag index")
	}
	colBytes := codec.EncodeIndexColumns(columnValues)
	key := codec.TagIndexKey(space, idx.ID, colBytes, vid)
	if idx.Unique {
		prefix := codec.TagIndexPrefix(space, idx.ID, colBytes)
		it := txn.Scan(prefix)
		defer it.Close()
		if it.Next() {
			return grapherr.New(grapherr.KindSchema, grapherr.CodeConstraintViolation, "unique index violation")
		}
	}
	s.invalidate(space, idx.ID, colBytes)
	return txn.Set(key, []byte{})
}

// DeleteTagEntry removes a previously-inserted tag-index entry.
func (s *Service) DeleteTagEntry(ctx context.Context, txn kv.Txn, space ids.SpaceId, idx *graph.IndexSchema, vid ids.VertexId, columnValues []value.Value) error {
	colBytes := codec.EncodeIndexColumns(columnValues)
	key := codec.TagIndexKey(space, idx.ID, colBytes, vid)
	s.invalidate(space, idx.ID, colBytes)
	return txn.Delete(key)
}

// LookupTagExact returns every VertexId indexed under exactly
// columnValues, using the lookup cache when possible.
func (s *Service) LookupTagExact(ctx context.Context, txn kv.Txn, space ids.SpaceId, idx *graph.IndexSchema, columnValues []value.Value) ([]ids.VertexId, error) {
	colBytes := codec.EncodeIndexColumns(columnValues)
	lk := lookupKey{space: space, index: idx.ID, cols: string(colBytes)}
	if cached, ok := s.cache.Get(lk); ok {
		return cached, nil
	}

	prefix := codec.TagIndexPrefix(space, idx.ID, colBytes)
	it := txn.Scan(prefix)
	defer it.Close()

	var out []ids.VertexId
	for it.Next() {
		vid, ok := codec.DecodeTagIndexVertexId(it.Item().Key, prefix)
		if !ok {
			continue
		}
		out = append(out, ids.VertexId(vid))
	}
	s.cache.Put(lk, out)
	return out, nil
}

// InsertEdgeEntry writes one edge-index entry for the edge (src,type,rank,
// dst)'s column values, mirroring InsertTagEntry for IndexKindEdge indexes.
func (s *Service) InsertEdgeEntry(ctx context.Context, txn kv.Txn, space ids.SpaceId, idx *graph.IndexSchema, src ids.VertexId, rank int64, dst ids.VertexId, columnValues []value.Value) error {
	if idx.Kind != graph.IndexKindEdge {
		return grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "InsertEdgeEntry requires an edge index")
	}
	colBytes := codec.EncodeIndexColumns(columnValues)
	key := codec.EdgeIndexKey(space, idx.ID, colBytes, src, rank, dst)
	if idx.Unique {
		prefix := codec.EdgeIndexPrefix(space, idx.ID, colBytes)
		it := txn.Scan(prefix)
		defer it.Close()
		if it.Next() {
			return grapherr.New(grapherr.KindSchema, grapherr.CodeConstraintViolation, "unique index violation")
		}
	}
	s.invalidateEdge(space, idx.ID, colBytes)
	return txn.Set(key, []byte{})
}

// DeleteEdgeEntry removes a previously-inserted edge-index entry.
func (s *Service) DeleteEdgeEntry(ctx context.Context, txn kv.Txn, space ids.SpaceId, idx *graph.IndexSchema, src ids.VertexId, rank int64, dst ids.VertexId, columnValues []value.Value) error {
	colBytes := codec.EncodeIndexColumns(columnValues)
	key := codec.EdgeIndexKey(space, idx.ID, colBytes, src, rank, dst)
	s.invalidateEdge(space, idx.ID, colBytes)
	return txn.Delete(key)
}

// LookupEdgeExact returns every (src,rank,dst) triple indexed under exactly
// columnValues.
func (s *Service) LookupEdgeExact(ctx context.Context, txn kv.Txn, space ids.SpaceId, idx *graph.IndexSchema, columnValues []value.Value) ([]EdgeIndexEntry, error) {
	colBytes := codec.EncodeIndexColumns(columnValues)
	lk := lookupKey{space: space, index: idx.ID, cols: "edge:" + string(colBytes)}
	if cached, ok := s.edgeCache.Get(lk); ok {
		return cached, nil
	}

	prefix := codec.EdgeIndexPrefix(space, idx.ID, colBytes)
	it := txn.Scan(prefix)
	defer it.Close()

	var out []EdgeIndexEntry
	for it.Next() {
		src, rank, dst, ok := codec.DecodeEdgeIndexEntry(it.Item().Key, prefix)
		if !ok {
			continue
		}
		out = append(out, EdgeIndexEntry{Src: src, Rank: rank, Dst: dst})
	}
	s.edgeCache.Put(lk, out)
	return out, nil
}

func (s *Service) invalidateEdge(space ids.SpaceId, index ids.IndexId, colBytes []byte) {
	s.edgeCache.Remove(lookupKey{space: space, index: index, cols: "edge:" + string(colBytes)})
}

func (s *Service) invalidate(space ids.SpaceId, index ids.IndexId, colBytes []byte) {
	s.cache.Remove(lookupKey{space: space, index: index, cols: string(colBytes)})
}

// CacheLen reports the current lookup-cache size (diagnostics/tests).
func (s *Service) CacheLen() int { return s.cache.Len() }
