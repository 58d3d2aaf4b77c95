// Badger-backed Store, adapted from the teacher's BadgerEngine
// (straga-Mimir_lite pkg/storage/badger.go) — same option surface
// (InMemory/SyncWrites/LowMemory/Logger) and the same low-memory tuning
// defaults, but wrapping the generic Store/Txn contract of this package
// instead of exposing graph operations directly.
package kv

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerOptions configures the BadgerDB-backed store.
type BadgerOptions struct {
	DataDir    string
	InMemory   bool
	SyncWrites bool
	LowMemory  bool
	Logger     badger.Logger
}

type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB-backed Store at dataDir.
func NewBadgerStore(dataDir string) (*BadgerStore, error) {
	return NewBadgerStoreWithOptions(BadgerOptions{DataDir: dataDir})
}

// NewBadgerStoreWithOptions opens a BadgerDB-backed Store with explicit
// tuning, mirroring the teacher's low-memory defaults for containerized
// deployments.
func NewBadgerStoreWithOptions(opts BadgerOptions) (*BadgerStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	if opts.Logger != nil {
		badgerOpts = badgerOpts.WithLogger(opts.Logger)
	} else {
		badgerOpts = badgerOpts.WithLogger(nil)
	}

	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithValueThreshold(1024).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	if opts.LowMemory {
		badgerOpts = badgerOpts.WithMemTableSize(8 << 20).WithBlockCacheSize(8 << 20)
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("kv: opening badger store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) NewTxn(_ context.Context, update bool) (Txn, error) {
	return &badgerTxn{txn: s.db.NewTransaction(update), update: update}, nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

type badgerTxn struct {
	txn    *badger.Txn
	update bool
}

func (t *badgerTxn) Get(key []byte) ([]byte, error) {
	item, err := t.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (t *badgerTxn) Set(key, value []byte) error {
	if !t.update {
		return ErrReadOnly
	}
	return t.txn.Set(key, value)
}

func (t *badgerTxn) Delete(key []byte) error {
	if !t.update {
		return ErrReadOnly
	}
	return t.txn.Delete(key)
}

func (t *badgerTxn) Scan(prefix []byte) Iterator {
	return t.ScanRange(prefix, PrefixUpperBound(prefix))
}

func (t *badgerTxn) ScanRange(start, end []byte) Iterator {
	opts := badger.DefaultIteratorOptions
	it := t.txn.NewIterator(opts)
	it.Seek(start)
	return &badgerIterator{it: it, end: end, started: false}
}

func (t *badgerTxn) Commit() error {
	err := t.txn.Commit()
	if err == badger.ErrConflict {
		return ErrConflict
	}
	return err
}

func (t *badgerTxn) Discard()      { t.txn.Discard() }
func (t *badgerTxn) ReadOnly() bool { return !t.update }

type badgerIterator struct {
	it      *badger.Iterator
	end     []byte
	started bool
	closed  bool
	item    Item
}

func (b *badgerIterator) Next() bool {
	if b.closed {
		return false
	}
	if b.started {
		b.it.Next()
	}
	b.started = true
	if !b.it.Valid() {
		b.Close()
		return false
	}
	key := b.it.Item().KeyCopy(nil)
	if b.end != nil && cmp(key, b.end) >= 0 {
		b.Close()
		return false
	}
	val, err := b.it.Item().ValueCopy(nil)
	if err != nil {
		b.Close()
		return false
	}
	b.item = Item{Key: key, Value: val}
	return true
}

func (b *badgerIterator) Item() Item { return b.item }

func (b *badgerIterator) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.it.Close()
}
