package txn

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavepointRollbackUndoesSubsequentWrites(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	id, err := m.Begin(ctx, Options{})
	require.NoError(t, err)
	require.NoError(t, m.Put(id, []byte("a"), []byte("1")))

	sp, err := m.Savepoint(id, "before-b")
	require.NoError(t, err)

	require.NoError(t, m.Put(id, []byte("b"), []byte("2")))
	require.NoError(t, m.Put(id, []byte("a"), []byte("overwritten")))

	require.NoError(t, m.RollbackTo(id, sp))

	v, err := m.Get(id, []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(v), "rollback must restore a's pre-savepoint value")

	_, err = m.Get(id, []byte("b"))
	assert.Error(t, err, "b did not exist before the savepoint and must be gone after rollback")

	require.NoError(t, m.Commit(id))
}

func TestSavepointRollbackInvalidatesLaterSavepoints(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	id, err := m.Begin(ctx, Options{})
	require.NoError(t, err)

	sp1, err := m.Savepoint(id, "sp1")
	require.NoError(t, err)
	require.NoError(t, m.Put(id, []byte("a"), []byte("1")))
	sp2, err := m.Savepoint(id, "sp2")
	require.NoError(t, err)

	require.NoError(t, m.RollbackTo(id, sp1))

	err = m.RollbackTo(id, sp2)
	assert.Error(t, err, "a savepoint created after a rolled-back savepoint must itself be invalidated")

	require.NoError(t, m.Abort(id))
}

func TestSavepointRelease(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	id, err := m.Begin(ctx, Options{})
	require.NoError(t, err)
	sp, err := m.Savepoint(id, "sp")
	require.NoError(t, err)

	require.NoError(t, m.Release(id, sp))

	err = m.RollbackTo(id, sp)
	assert.Error(t, err, "a released savepoint can no longer be rolled back to")

	require.NoError(t, m.Abort(id))
}
