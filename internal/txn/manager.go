package txn

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/kv"
)

// Context is the live, in-memory record of one transaction: identity,
// state, the underlying kv.Txn, its operation log (for savepoint
// rollback), and its savepoints. It corresponds to spec §3's "Transaction
// record".
type Context struct {
	mu sync.Mutex

	ID             Id
	State          State
	StartTime      time.Time
	Timeout        time.Duration
	ReadOnly       bool
	Durability     Durability
	TwoPhaseCommit bool

	kvTxn        kv.Txn
	operationLog []operation
	savepoints   []*Savepoint
	nextSpId     uint64
}

// ManagerConfig bounds resource usage and sweep cadence (spec §4.2).
type ManagerConfig struct {
	MaxTransactions  int
	CleanupInterval  time.Duration
	DefaultTimeout   time.Duration
	SingleWriter     bool // when true, only one write transaction may be active
}

func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxTransactions: 10000,
		CleanupInterval: 5 * time.Second,
		DefaultTimeout:  30 * time.Second,
		SingleWriter:    false,
	}
}

// Manager is the TransactionManager of spec §4.2. All calls are safe for
// concurrent use.
type Manager struct {
	store  kv.Store
	config ManagerConfig

	mu       sync.RWMutex
	contexts map[Id]*Context
	nextId   atomic.Uint64

	writerActive atomic.Bool

	sweepStop chan struct{}
	sweepWG   sync.WaitGroup
}

func NewManager(store kv.Store, config ManagerConfig) *Manager {
	return &Manager{
		store:    store,
		config:   config,
		contexts: make(map[Id]*Context),
	}
}

// Begin allocates a new transaction and its underlying kv.Txn (spec §4.2
// "begin(options)").
func (m *Manager) Begin(ctx context.Context, opts Options) (Id, error) {
	m.mu.Lock()
	if len(m.contexts) >= m.config.MaxTransactions {
		m.mu.Unlock()
		return 0, grapherr.ErrTooManyTransactions
	}
	m.mu.Unlock()

	if opts.Timeout == 0 {
		opts.Timeout = m.config.DefaultTimeout
	}
	if opts.Timeout <= 0 {
		return 0, grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "transaction timeout must be positive")
	}

	if !opts.ReadOnly && m.config.SingleWriter {
		if !m.writerActive.CompareAndSwap(false, true) {
			return 0, grapherr.ErrWriteConflict
		}
	}

	kvTxn, err := m.store.NewTxn(ctx, !opts.ReadOnly)
	if err != nil {
		if !opts.ReadOnly && m.config.SingleWriter {
			m.writerActive.Store(false)
		}
		return 0, grapherr.Wrap(grapherr.KindStorage, grapherr.CodeInternalError, "opening storage transaction failed", err)
	}

	id := Id(m.nextId.Add(1))
	tc := &Context{
		ID:             id,
		State:          StateActive,
		StartTime:      time.Now(),
		Timeout:        opts.Timeout,
		ReadOnly:       opts.ReadOnly,
		Durability:     opts.Durability,
		TwoPhaseCommit: opts.TwoPhaseCommit,
		kvTxn:          kvTxn,
	}

	m.mu.Lock()
	m.contexts[id] = tc
	m.mu.Unlock()

	return id, nil
}

func (m *Manager) get(id Id) (*Context, error) {
	m.mu.RLock()
	tc, ok := m.contexts[id]
	m.mu.RUnlock()
	if !ok {
		return nil, grapherr.New(grapherr.KindTransaction, grapherr.CodeResourceNotFound, "no such transaction")
	}
	return tc, nil
}

func (m *Manager) remove(id Id, wasWriter bool) {
	m.mu.Lock()
	delete(m.contexts, id)
	m.mu.Unlock()
	if wasWriter && m.config.SingleWriter {
		m.writerActive.Store(false)
	}
}

// expired reports whether tc has outlived its timeout. Caller must hold
// tc.mu.
func (tc *Context) expired() bool {
	return time.Since(tc.StartTime) > tc.Timeout
}

// Get returns the current value of key as seen within txn id (spec §5
// "reads observe that transaction's own prior writes").
func (m *Manager) Get(id Id, key []byte) ([]byte, error) {
	tc, err := m.get(id)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return nil, grapherr.ErrInvalidTransition
	}
	v, err := tc.kvTxn.Get(key)
	if err == kv.ErrNotFound {
		return nil, grapherr.ErrNotFound
	}
	return v, err
}

// Put buffers a write within txn id, recording the prior value (if any) so
// a later rollback-to-savepoint can undo it.
func (m *Manager) Put(id Id, key, value []byte) error {
	tc, err := m.get(id)
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return grapherr.ErrInvalidTransition
	}
	old, getErr := tc.kvTxn.Get(key)
	op := operation{kind: opSet, key: append([]byte(nil), key...)}
	if getErr == nil {
		op.hadOld = true
		op.oldValue = old
	}
	if err := tc.kvTxn.Set(key, value); err != nil {
		return grapherr.Wrap(grapherr.KindStorage, grapherr.CodeInternalError, "write failed", err)
	}
	tc.operationLog = append(tc.operationLog, op)
	return nil
}

// Delete buffers a delete within txn id.
func (m *Manager) Delete(id Id, key []byte) error {
	tc, err := m.get(id)
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return grapherr.ErrInvalidTransition
	}
	old, getErr := tc.kvTxn.Get(key)
	op := operation{kind: opDelete, key: append([]byte(nil), key...)}
	if getErr == nil {
		op.hadOld = true
		op.oldValue = old
	}
	if err := tc.kvTxn.Delete(key); err != nil {
		return grapherr.Wrap(grapherr.KindStorage, grapherr.CodeInternalError, "delete failed", err)
	}
	tc.operationLog = append(tc.operationLog, op)
	return nil
}

// Scan exposes a read-range over the transaction's view of the store.
func (m *Manager) Scan(id Id, prefix []byte) (kv.Iterator, error) {
	tc, err := m.get(id)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return nil, grapherr.ErrInvalidTransition
	}
	return tc.kvTxn.Scan(prefix), nil
}

// RawTxn exposes the underlying kv.Txn for subsystems (internal/index)
// that operate directly on it rather than through Get/Put/Delete/Scan —
// the index service buffers its own key scheme on the same transaction
// and must observe exactly the writes the executor has made within it.
func (m *Manager) RawTxn(id Id) (kv.Txn, error) {
	tc, err := m.get(id)
	if err != nil {
		return nil, err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.State != StateActive {
		return nil, grapherr.ErrInvalidTransition
	}
	return tc.kvTxn, nil
}

// Prepare transitions Active -> Prepared; required before Commit when the
// transaction was begun with TwoPhaseCommit (spec §4.2).
func (m *Manager) Prepare(id Id) error {
	tc, err := m.get(id)
	if err != nil {
		return err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if tc.expired() {
		return grapherr.ErrTransactionExpired
	}
	if !canTransition(tc.State, StatePrepared) {
		return grapherr.ErrInvalidTransition
	}
	tc.State = StatePrepared
	return nil
}

// Commit validates state, commits the underlying kv transaction atomically,
// and removes the context. If the transaction requires 2PC, Prepare must
// have been called first (spec §4.2).
func (m *Manager) Commit(id Id) error {
	tc, err := m.get(id)
	if err != nil {
		return err
	}
	tc.mu.Lock()

	if tc.expired() {
		tc.mu.Unlock()
		_ = m.Abort(id)
		return grapherr.ErrTransactionExpired
	}

	if tc.TwoPhaseCommit && tc.State != StatePrepared {
		tc.mu.Unlock()
		return grapherr.New(grapherr.KindTransaction, grapherr.CodeExecutionError, "two-phase commit requires prepare before commit")
	}
	if !canTransition(tc.State, StateCommitting) {
		tc.mu.Unlock()
		return grapherr.ErrInvalidTransition
	}
	tc.State = StateCommitting

	err = tc.kvTxn.Commit()
	if err != nil {
		tc.State = StateAborting
		tc.mu.Unlock()
		_ = m.finishAbort(tc)
		if err == kv.ErrConflict {
			return grapherr.ErrConflict
		}
		return grapherr.Wrap(grapherr.KindStorage, grapherr.CodeInternalError, "commit failed", err)
	}
	tc.State = StateCommitted
	wasWriter := !tc.ReadOnly
	tc.mu.Unlock()

	m.remove(id, wasWriter)
	return nil
}

// Abort transitions the transaction to Aborted and discards its pending
// writes. Abort is idempotent (spec §4.2 "Failure semantics"): an id with
// no live context (already aborted and removed) is a no-op.
func (m *Manager) Abort(id Id) error {
	tc, err := m.get(id)
	if err != nil {
		return nil
	}
	tc.mu.Lock()
	if tc.State == StateAborted {
		tc.mu.Unlock()
		return nil
	}
	if canTransition(tc.State, StateAborting) {
		tc.State = StateAborting
	} else if tc.State != StateAborting {
		tc.mu.Unlock()
		return grapherr.ErrInvalidTransition
	}
	tc.mu.Unlock()
	return m.finishAbort(tc)
}

func (m *Manager) finishAbort(tc *Context) error {
	tc.mu.Lock()
	tc.kvTxn.Discard()
	tc.State = StateAborted
	wasWriter := !tc.ReadOnly
	tc.mu.Unlock()
	m.remove(tc.ID, wasWriter)
	return nil
}

// StartSweeper launches the background goroutine that aborts transactions
// whose timeout has elapsed (spec §4.2 "Background sweeper").
func (m *Manager) StartSweeper() {
	m.sweepStop = make(chan struct{})
	m.sweepWG.Add(1)
	go func() {
		defer m.sweepWG.Done()
		ticker := time.NewTicker(m.config.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-m.sweepStop:
				return
			case <-ticker.C:
				m.sweepOnce()
			}
		}
	}()
}

func (m *Manager) StopSweeper() {
	if m.sweepStop == nil {
		return
	}
	close(m.sweepStop)
	m.sweepWG.Wait()
}

func (m *Manager) sweepOnce() {
	m.mu.RLock()
	var expired []Id
	for id, tc := range m.contexts {
		tc.mu.Lock()
		isExpired := tc.expired() && tc.State != StateCommitted && tc.State != StateAborted
		tc.mu.Unlock()
		if isExpired {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range expired {
		_ = m.Abort(id)
	}
}

// ActiveCount returns the number of live transaction contexts.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contexts)
}

// State returns the current state of a transaction (for tests/diagnostics).
func (m *Manager) State(id Id) (State, error) {
	tc, err := m.get(id)
	if err != nil {
		return 0, err
	}
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.State, nil
}
