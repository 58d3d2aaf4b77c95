package service

import (
	"context"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/txn"
)

// BeginTransaction opens an explicit transaction (spec §6 `POST
// /tx/begin`) and binds it to sessionID, so subsequent Query calls on that
// session run inside it rather than each auto-committing their own.
func (g *GraphService) BeginTransaction(ctx context.Context, sessionID string, readOnly bool) error {
	g.mu.Lock()
	sess, ok := g.sessions[sessionID]
	g.mu.Unlock()
	if !ok {
		return grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "unknown session")
	}
	if sess.ActiveTxn != nil {
		return grapherr.New(grapherr.KindTransaction, grapherr.CodeExecutionError, "session already has an open transaction")
	}

	opts := g.cfg.TxnDefaultOpts
	opts.ReadOnly = readOnly
	id, err := g.txns.Begin(ctx, opts)
	if err != nil {
		return internalErr(err)
	}

	g.mu.Lock()
	sess.ActiveTxn = &id
	g.mu.Unlock()
	return nil
}

// CommitTransaction commits sessionID's open explicit transaction (spec §6
// `POST /tx/commit`) and clears it from the session.
func (g *GraphService) CommitTransaction(sessionID string) error {
	id, err := g.takeActiveTxn(sessionID)
	if err != nil {
		return err
	}
	if err := g.txns.Commit(id); err != nil {
		return internalErr(err)
	}
	return nil
}

// RollbackTransaction aborts sessionID's open explicit transaction (spec §6
// `POST /tx/rollback`) and clears it from the session.
func (g *GraphService) RollbackTransaction(sessionID string) error {
	id, err := g.takeActiveTxn(sessionID)
	if err != nil {
		return err
	}
	if err := g.txns.Abort(id); err != nil {
		return internalErr(err)
	}
	return nil
}

// takeActiveTxn looks up and clears sessionID's bound transaction id,
// erroring if the session has none open.
func (g *GraphService) takeActiveTxn(sessionID string) (txn.Id, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.sessions[sessionID]
	if !ok {
		return 0, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "unknown session")
	}
	if sess.ActiveTxn == nil {
		return 0, grapherr.New(grapherr.KindTransaction, grapherr.CodeExecutionError, "session has no open transaction")
	}
	id := *sess.ActiveTxn
	sess.ActiveTxn = nil
	return id, nil
}
