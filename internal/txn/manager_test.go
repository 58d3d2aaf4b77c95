package txn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/kv"
)

func newTestManager(t *testing.T) (*Manager, kv.Store) {
	t.Helper()
	store := kv.NewMemoryStore()
	cfg := DefaultManagerConfig()
	cfg.CleanupInterval = 10 * time.Millisecond
	return NewManager(store, cfg), store
}

func TestBeginCommitLifecycle(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	id, err := m.Begin(ctx, Options{})
	require.NoError(t, err)

	require.NoError(t, m.Put(id, []byte("a"), []byte("1")))
	v, err := m.Get(id, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v))

	require.NoError(t, m.Commit(id))
	assert.Equal(t, 0, m.ActiveCount())

	_, err = m.State(id)
	assert.Error(t, err, "committed transaction context should be removed")
}

func TestAbortDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	seed, err := m.Begin(ctx, Options{})
	require.NoError(t, err)
	require.NoError(t, m.Put(seed, []byte("k"), []byte("v0")))
	require.NoError(t, m.Commit(seed))

	id, err := m.Begin(ctx, Options{})
	require.NoError(t, err)
	require.NoError(t, m.Put(id, []byte("k"), []byte("v1")))
	require.NoError(t, m.Abort(id))

	read, err := m.Begin(ctx, Options{ReadOnly: true})
	require.NoError(t, err)
	v, err := m.Get(read, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "v0", string(v), "aborted write must not be visible")
	require.NoError(t, m.Commit(read))
}

func TestAbortIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id, err := m.Begin(ctx, Options{})
	require.NoError(t, err)
	require.NoError(t, m.Abort(id))
	assert.NoError(t, m.Abort(id), "abort of an already-aborted (gone) id must not be an error the caller has to special-case")
}

func TestTwoPhaseCommitRequiresPrepare(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id, err := m.Begin(ctx, Options{TwoPhaseCommit: true})
	require.NoError(t, err)
	require.NoError(t, m.Put(id, []byte("a"), []byte("1")))

	err = m.Commit(id)
	assert.Error(t, err, "commit without prepare must be rejected under 2PC")

	require.NoError(t, m.Prepare(id))
	require.NoError(t, m.Commit(id))
}

func TestWriteWriteConflictSurfacesAsGraphConflict(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	seed, _ := m.Begin(ctx, Options{})
	require.NoError(t, m.Put(seed, []byte("k"), []byte("v0")))
	require.NoError(t, m.Commit(seed))

	t1, _ := m.Begin(ctx, Options{})
	t2, _ := m.Begin(ctx, Options{})
	require.NoError(t, m.Put(t1, []byte("k"), []byte("v1")))
	require.NoError(t, m.Put(t2, []byte("k"), []byte("v2")))

	require.NoError(t, m.Commit(t1))
	err := m.Commit(t2)
	require.Error(t, err)
}

func TestSweeperAbortsExpiredTransactions(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	m.StartSweeper()
	defer m.StopSweeper()

	id, err := m.Begin(ctx, Options{Timeout: 5 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, m.Put(id, []byte("a"), []byte("1")))

	assert.Eventually(t, func() bool {
		_, err := m.State(id)
		return err != nil
	}, time.Second, 5*time.Millisecond, "sweeper should reap the expired transaction")
}

func TestSingleWriterModeRejectsConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	cfg := DefaultManagerConfig()
	cfg.SingleWriter = true
	m := NewManager(store, cfg)

	id1, err := m.Begin(ctx, Options{})
	require.NoError(t, err)

	_, err = m.Begin(ctx, Options{})
	assert.Error(t, err, "a second concurrent writer must be rejected in single-writer mode")

	require.NoError(t, m.Commit(id1))

	id2, err := m.Begin(ctx, Options{})
	require.NoError(t, err, "writer slot should be released after commit")
	require.NoError(t, m.Abort(id2))
}

func TestMaxTransactionsBound(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	cfg := DefaultManagerConfig()
	cfg.MaxTransactions = 1
	m := NewManager(store, cfg)

	id, err := m.Begin(ctx, Options{})
	require.NoError(t, err)

	_, err = m.Begin(ctx, Options{})
	assert.Error(t, err)

	require.NoError(t, m.Abort(id))
}
