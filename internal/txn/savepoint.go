package txn

import (
	"time"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
)

// Savepoint records a named position in txn id's operation log (spec §4.2
// "savepoint(name)"). Creating a savepoint with a name already in use
// replaces the old one, matching SQL SAVEPOINT semantics.
func (m *Manager) Savepoint(id Id, name string) (SavepointId, error) {
	tc, err := m.get(id)
	if err != nil {
		return 0, err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return 0, grapherr.ErrInvalidTransition
	}

	for i, old := range tc.savepoints {
		if old.Name == name {
			old.State = SavepointReleased
			tc.savepoints = append(tc.savepoints[:i], tc.savepoints[i+1:]...)
			break
		}
	}

	tc.nextSpId++
	sp := &Savepoint{
		ID:        SavepointId(tc.nextSpId),
		Name:      name,
		CreatedAt: time.Now(),
		LogIndex:  len(tc.operationLog),
		State:     SavepointActive,
	}
	tc.savepoints = append(tc.savepoints, sp)
	return sp.ID, nil
}

func (tc *Context) findSavepointLocked(spID SavepointId) (*Savepoint, int, error) {
	for i, sp := range tc.savepoints {
		if sp.ID == spID {
			if sp.State != SavepointActive {
				return nil, -1, grapherr.New(grapherr.KindTransaction, grapherr.CodeExecutionError, "savepoint is not active")
			}
			return sp, i, nil
		}
	}
	return nil, -1, grapherr.New(grapherr.KindTransaction, grapherr.CodeResourceNotFound, "no such savepoint")
}

// RollbackTo undoes every write recorded after the named savepoint by
// replaying the operation log in reverse, restoring prior values and
// deleting keys that did not exist before the savepoint (spec §4.2
// "rollback_to(savepoint)"). Savepoints created after spID are invalidated,
// matching the SQL convention that rolling back also discards later
// savepoints.
func (m *Manager) RollbackTo(id Id, spID SavepointId) error {
	tc, err := m.get(id)
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return grapherr.ErrInvalidTransition
	}

	sp, spIdx, err := tc.findSavepointLocked(spID)
	if err != nil {
		return err
	}

	for i := len(tc.operationLog) - 1; i >= sp.LogIndex; i-- {
		op := tc.operationLog[i]
		var undoErr error
		switch {
		case op.hadOld:
			undoErr = tc.kvTxn.Set(op.key, op.oldValue)
		default:
			undoErr = tc.kvTxn.Delete(op.key)
		}
		if undoErr != nil {
			return grapherr.Wrap(grapherr.KindStorage, grapherr.CodeInternalError, "rollback to savepoint failed", undoErr)
		}
	}
	tc.operationLog = tc.operationLog[:sp.LogIndex]

	for i := spIdx; i < len(tc.savepoints); i++ {
		if tc.savepoints[i].ID == spID {
			tc.savepoints[i].State = SavepointRolledBack
			continue
		}
		tc.savepoints[i].State = SavepointRolledBack
	}
	tc.savepoints = tc.savepoints[:spIdx]
	return nil
}

// Release discards a savepoint without undoing its writes, freeing the
// Manager to forget it (spec §4.2 "release(savepoint)").
func (m *Manager) Release(id Id, spID SavepointId) error {
	tc, err := m.get(id)
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return grapherr.ErrInvalidTransition
	}
	_, idx, err := tc.findSavepointLocked(spID)
	if err != nil {
		return err
	}
	tc.savepoints[idx].State = SavepointReleased
	tc.savepoints = append(tc.savepoints[:idx], tc.savepoints[idx+1:]...)
	return nil
}
