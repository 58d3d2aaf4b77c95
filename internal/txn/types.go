// Package txn implements the transaction manager of spec §4.2: transaction
// lifecycle (begin/commit/abort), savepoints, optional two-phase commit,
// and the background sweeper that times out stale transactions. It is the
// Go-native descendant of the teacher's storage.Transaction
// (straga-Mimir_lite pkg/storage/transaction.go), generalized from the
// teacher's single in-process buffer-then-apply model to run against the
// kv.Store abstraction and to support savepoints and 2PC as spec §3/§4.2
// require.
package txn

import (
	"time"
)

// State is the transaction lifecycle state (spec §3 "Transaction record").
type State int

const (
	StateActive State = iota
	StatePrepared
	StateCommitting
	StateCommitted
	StateAborting
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StatePrepared:
		return "Prepared"
	case StateCommitting:
		return "Committing"
	case StateCommitted:
		return "Committed"
	case StateAborting:
		return "Aborting"
	case StateAborted:
		return "Aborted"
	default:
		return "Unknown"
	}
}

// legalTransitions encodes spec §3's state machine: "Active→{Prepared,
// Committing, Aborting}; Prepared→{Committing, Aborting}; Committing→
// Committed; Aborting→Aborted. All other transitions are rejected."
var legalTransitions = map[State]map[State]bool{
	StateActive:     {StatePrepared: true, StateCommitting: true, StateAborting: true},
	StatePrepared:   {StateCommitting: true, StateAborting: true},
	StateCommitting: {StateCommitted: true},
	StateAborting:   {StateAborted: true},
}

func canTransition(from, to State) bool {
	allowed, ok := legalTransitions[from]
	if !ok {
		return false
	}
	return allowed[to]
}

// Durability labels a transaction as Immediate or None (a fast path for
// bulk loads). Manager records it on the transaction Context but Commit
// does not consult it: both levels commit the same way, and whether a
// commit is synced to disk depends only on the store (BadgerOptions.
// SyncWrites in internal/kv).
type Durability int

const (
	DurabilityImmediate Durability = iota
	DurabilityNone
)

// Id identifies a transaction; monotonically increasing, allocated by the
// Manager's single counter (spec §5 "the transaction-id generator is a
// single monotonic counter").
type Id uint64

// SavepointId identifies a savepoint within its owning transaction.
type SavepointId uint64

// SavepointState tracks a savepoint's own lifecycle (spec §3 "Savepoint").
type SavepointState int

const (
	SavepointActive SavepointState = iota
	SavepointRolledBack
	SavepointReleased
)

// Savepoint is a named position within a transaction's operation log that
// the transaction's writes may later be rolled back to.
type Savepoint struct {
	ID          SavepointId
	Name        string
	CreatedAt   time.Time
	LogIndex    int
	State       SavepointState
}

// opType discriminates the two kinds of buffered write the operation log
// records, which is exactly what SavepointRollback needs to undo.
type opType int

const (
	opSet opType = iota
	opDelete
)

// operation is one buffered write, carrying enough state to be undone:
// the key and the prior value if the key already existed. The new value
// is not kept, since writes go straight to the kv txn.
type operation struct {
	kind     opType
	key      []byte
	hadOld   bool
	oldValue []byte
}

// Options configures a new transaction (spec §4.2 "begin(options)").
type Options struct {
	ReadOnly        bool
	Timeout         time.Duration
	Durability      Durability
	TwoPhaseCommit  bool
}
