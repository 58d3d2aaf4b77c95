package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/graph"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/value"
)

func TestInsertAndLookupTagIndex(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc, err := NewService(store, 16)
	require.NoError(t, err)

	idx := &graph.IndexSchema{ID: 1, Name: "age_idx", Kind: graph.IndexKindTag, Tag: 1, Columns: []string{"age"}}

	txn, err := store.NewTxn(ctx, true)
	require.NoError(t, err)
	require.NoError(t, svc.InsertTagEntry(ctx, txn, 1, idx, ids.VertexId(100), []value.Value{value.Int(42)}))
	require.NoError(t, svc.InsertTagEntry(ctx, txn, 1, idx, ids.VertexId(200), []value.Value{value.Int(42)}))
	require.NoError(t, svc.InsertTagEntry(ctx, txn, 1, idx, ids.VertexId(300), []value.Value{value.Int(43)}))
	require.NoError(t, txn.Commit())

	read, err := store.NewTxn(ctx, false)
	require.NoError(t, err)
	got, err := svc.LookupTagExact(ctx, read, 1, idx, []value.Value{value.Int(42)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []ids.VertexId{100, 200}, got)
}

func TestUniqueIndexRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc, err := NewService(store, 16)
	require.NoError(t, err)

	idx := &graph.IndexSchema{ID: 1, Name: "email_idx", Kind: graph.IndexKindTag, Tag: 1, Columns: []string{"email"}, Unique: true}

	txn, _ := store.NewTxn(ctx, true)
	require.NoError(t, svc.InsertTagEntry(ctx, txn, 1, idx, ids.VertexId(1), []value.Value{value.String("a@example.com")}))
	err = svc.InsertTagEntry(ctx, txn, 1, idx, ids.VertexId(2), []value.Value{value.String("a@example.com")})
	assert.Error(t, err, "unique index must reject a second vertex with the same value")
}

func TestDeleteTagEntryRemovesIndexRow(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	svc, err := NewService(store, 16)
	require.NoError(t, err)

	idx := &graph.IndexSchema{ID: 1, Name: "age_idx", Kind: graph.IndexKindTag, Tag: 1, Columns: []string{"age"}}

	txn, _ := store.NewTxn(ctx, true)
	require.NoError(t, svc.InsertTagEntry(ctx, txn, 1, idx, ids.VertexId(1), []value.Value{value.Int(10)}))
	require.NoError(t, txn.Commit())

	txn2, _ := store.NewTxn(ctx, true)
	require.NoError(t, svc.DeleteTagEntry(ctx, txn2, 1, idx, ids.VertexId(1), []value.Value{value.Int(10)}))
	require.NoError(t, txn2.Commit())

	read, _ := store.NewTxn(ctx, false)
	got, err := svc.LookupTagExact(ctx, read, 1, idx, []value.Value{value.Int(10)})
	require.NoError(t, err)
	assert.Empty(t, got, "index consistency: deletion must leave no entry behind")
}
