package service

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/ids"
	"github.com/kkkqkx123/graphdb/internal/txn"
)

// Session is spec §6's "session bound to the authenticated user"
// (`POST /sessions`): an authenticated user plus the graph space it is
// currently bound to. Space is ids.SpaceId(0) (invalid) until UseSpace
// binds one; Query/the data methods reject an unbound session.
//
// ActiveTxn is non-nil once BeginTransaction has opened an explicit
// transaction (spec §6 `POST /tx/begin`) and is cleared by Commit/
// RollbackTransaction; while set, Query runs statements inside it instead
// of auto-committing a fresh transaction per statement.
type Session struct {
	ID        string
	Username  string
	Space     ids.SpaceId
	SpaceName string
	CreatedAt time.Time
	ActiveTxn *txn.Id
}

func newSessionID() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// CreateSession validates authSessionID against the Authenticator (the
// token `POST /auth/login` returned) and creates a new, space-unbound
// GraphService session for that user.
func (g *GraphService) CreateSession(authSessionID string) (*Session, error) {
	user, err := g.auth.ValidateSession(authSessionID)
	if err != nil {
		return nil, grapherr.Wrap(grapherr.KindAuth, grapherr.CodeUnauthorized, "invalid or expired auth session", err)
	}
	id, err := newSessionID()
	if err != nil {
		return nil, grapherr.Wrap(grapherr.KindInternal, grapherr.CodeInternalError, "session: generating id", err)
	}
	sess := &Session{ID: id, Username: user.Username, CreatedAt: time.Now()}

	g.mu.Lock()
	g.sessions[id] = sess
	g.mu.Unlock()
	return sess, nil
}

// Session looks up a live session by id.
func (g *GraphService) Session(id string) (*Session, error) {
	g.mu.RLock()
	sess, ok := g.sessions[id]
	g.mu.RUnlock()
	if !ok {
		return nil, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "unknown session")
	}
	return sess, nil
}

// CloseSession ends a GraphService session. Idempotent.
func (g *GraphService) CloseSession(id string) {
	g.mu.Lock()
	delete(g.sessions, id)
	g.mu.Unlock()
}

// UseSpace binds sessionID's active space to the named space, looking it
// up in the catalog. Every subsequent Query/data call on this session
// targets that space until UseSpace is called again.
func (g *GraphService) UseSpace(sessionID, spaceName string) error {
	spaceID, ok := g.catalog.SpaceByName(spaceName)
	if !ok {
		return grapherr.New(grapherr.KindSchema, grapherr.CodeResourceNotFound, "space not found: "+spaceName)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	sess, ok := g.sessions[sessionID]
	if !ok {
		return grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "unknown session")
	}
	sess.Space = spaceID
	sess.SpaceName = spaceName
	return nil
}

// SessionSpace exposes boundSpace to external collaborators (internal/
// httpapi's schema handlers resolve a session's active space the same way
// Query does, rather than threading a separate space argument through the
// wire contract).
func (g *GraphService) SessionSpace(sessionID string) (ids.SpaceId, error) {
	return g.boundSpace(sessionID)
}

// boundSpace returns the space a session is bound to, or an error if the
// session is unknown or has never called UseSpace.
func (g *GraphService) boundSpace(sessionID string) (ids.SpaceId, error) {
	g.mu.RLock()
	sess, ok := g.sessions[sessionID]
	g.mu.RUnlock()
	if !ok {
		return 0, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "unknown session")
	}
	if sess.Space == 0 {
		return 0, grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "session has not selected a space")
	}
	return sess.Space, nil
}
