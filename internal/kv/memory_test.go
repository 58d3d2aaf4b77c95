package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreSetGetCommit(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	txn, err := store.NewTxn(ctx, true)
	require.NoError(t, err)
	require.NoError(t, txn.Set([]byte("a"), []byte("1")))
	v, err := txn.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v), "read-your-own-writes within a txn")
	require.NoError(t, txn.Commit())

	read, err := store.NewTxn(ctx, false)
	require.NoError(t, err)
	v2, err := read.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v2))
}

func TestMemoryStoreScanPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	txn, _ := store.NewTxn(ctx, true)
	_ = txn.Set([]byte("a/1"), []byte("x"))
	_ = txn.Set([]byte("a/2"), []byte("y"))
	_ = txn.Set([]byte("b/1"), []byte("z"))
	require.NoError(t, txn.Commit())

	read, _ := store.NewTxn(ctx, false)
	it := read.Scan([]byte("a/"))
	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Item().Key))
	}
	it.Close()
	assert.ElementsMatch(t, []string{"a/1", "a/2"}, keys)
}

func TestMemoryStoreWriteWriteConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seed, _ := store.NewTxn(ctx, true)
	require.NoError(t, seed.Set([]byte("k"), []byte("v0")))
	require.NoError(t, seed.Commit())

	t1, _ := store.NewTxn(ctx, true)
	t2, _ := store.NewTxn(ctx, true)
	require.NoError(t, t1.Set([]byte("k"), []byte("v1")))
	require.NoError(t, t2.Set([]byte("k"), []byte("v2")))

	require.NoError(t, t1.Commit())
	err := t2.Commit()
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPrefixUpperBound(t *testing.T) {
	assert.Equal(t, []byte{0x01, 0x03}, PrefixUpperBound([]byte{0x01, 0x02}))
	assert.Nil(t, PrefixUpperBound([]byte{0xFF}))
}
