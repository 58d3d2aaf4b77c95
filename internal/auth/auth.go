// Package auth implements password authentication, role-based permission
// checks, and session bookkeeping for the HTTP surface of spec §6
// (`POST /auth/login` -> `{session_id}`). Grounded on straga-Mimir_lite's
// Authenticator (pkg/auth/auth.go) for the Role/Permission/User/bcrypt/
// account-lockout shape; the teacher issues JWTs, but spec §6's wire
// contract is an opaque `session_id`, so sessions here are server-side
// state (a random token -> user mapping) rather than a signed token.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
)

// Role is a named permission bundle, following the teacher's
// admin/editor/viewer/none RBAC model.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleNone   Role = "none"
)

type Permission string

const (
	PermRead       Permission = "read"
	PermWrite      Permission = "write"
	PermCreate     Permission = "create"
	PermDelete     Permission = "delete"
	PermAdmin      Permission = "admin"
	PermSchema     Permission = "schema"
	PermUserManage Permission = "user_manage"
)

// RolePermissions maps a role to the permissions it grants.
var RolePermissions = map[Role][]Permission{
	RoleAdmin:  {PermRead, PermWrite, PermCreate, PermDelete, PermAdmin, PermSchema, PermUserManage},
	RoleEditor: {PermRead, PermWrite, PermCreate, PermDelete},
	RoleViewer: {PermRead},
	RoleNone:   {},
}

// User is an authenticated account.
type User struct {
	Username     string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
	Disabled     bool
}

func (u *User) HasRole(role Role) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u *User) HasPermission(perm Permission) bool {
	for _, role := range u.Roles {
		for _, p := range RolePermissions[role] {
			if p == perm {
				return true
			}
		}
	}
	return false
}

// Config configures the Authenticator (spec §6's HTTP auth surface).
type Config struct {
	MinPasswordLength int
	BcryptCost        int
	MaxFailedLogins   int
	LockoutDuration   time.Duration
	SessionTTL        time.Duration // 0 = sessions never expire

	// SeedDefaultUsers, when true, creates root/root and nebula/nebula on
	// NewAuthenticator (DESIGN.md Open Question decision 3): the
	// teacher's hard-coded dev seed is preserved as an opt-in, never
	// auto-enabled in a production config.
	SeedDefaultUsers bool
}

func DefaultConfig() Config {
	return Config{
		MinPasswordLength: 8,
		BcryptCost:        bcrypt.DefaultCost,
		MaxFailedLogins:   5,
		LockoutDuration:   15 * time.Minute,
		SessionTTL:        0,
	}
}

type session struct {
	username  string
	createdAt time.Time
	expiresAt time.Time // zero means never
}

// Authenticator holds (user -> role-set) under a single reader-writer
// lock (spec §5 "Authenticator and permission manager hold (user ->
// role-set) under a reader-writer lock").
type Authenticator struct {
	config Config

	mu    sync.RWMutex
	users map[string]*User

	sessMu   sync.RWMutex
	sessions map[string]*session
}

func NewAuthenticator(config Config) (*Authenticator, error) {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	a := &Authenticator{
		config:   config,
		users:    make(map[string]*User),
		sessions: make(map[string]*session),
	}
	if config.SeedDefaultUsers {
		// The seed passwords are shorter than the usual minimum, so the
		// length check is lifted while they are created.
		minLen := a.config.MinPasswordLength
		a.config.MinPasswordLength = 0
		defer func() { a.config.MinPasswordLength = minLen }()
		if _, err := a.CreateUser("root", "root", []Role{RoleAdmin}); err != nil {
			return nil, err
		}
		if _, err := a.CreateUser("nebula", "nebula", []Role{RoleAdmin}); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Authenticator) CreateUser(username, password string, roles []Role) (*User, error) {
	if len(password) < a.config.MinPasswordLength {
		return nil, grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "password does not meet minimum length")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.users[username]; exists {
		return nil, grapherr.New(grapherr.KindAuth, grapherr.CodeResourceAlreadyExists, "user already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.config.BcryptCost)
	if err != nil {
		return nil, grapherr.Wrap(grapherr.KindAuth, grapherr.CodeInternalError, "hashing password failed", err)
	}
	if len(roles) == 0 {
		roles = []Role{RoleViewer}
	}
	u := &User{Username: username, PasswordHash: string(hash), Roles: roles, CreatedAt: time.Now()}
	a.users[username] = u
	return u, nil
}

// Authenticate verifies credentials and, on success, mints a session id
// (spec §6 "POST /auth/login ... -> {session_id}").
func (a *Authenticator) Authenticate(username, password string) (string, *User, error) {
	a.mu.Lock()
	u, ok := a.users[username]
	if !ok {
		a.mu.Unlock()
		return "", nil, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "unknown user")
	}
	if u.Disabled {
		a.mu.Unlock()
		return "", nil, grapherr.New(grapherr.KindAuth, grapherr.CodeForbidden, "account disabled")
	}
	if !u.LockedUntil.IsZero() && time.Now().Before(u.LockedUntil) {
		a.mu.Unlock()
		return "", nil, grapherr.New(grapherr.KindAuth, grapherr.CodeForbidden, "account locked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		u.FailedLogins++
		if a.config.MaxFailedLogins > 0 && u.FailedLogins >= a.config.MaxFailedLogins {
			u.LockedUntil = time.Now().Add(a.config.LockoutDuration)
		}
		a.mu.Unlock()
		return "", nil, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "bad password")
	}
	u.FailedLogins = 0
	u.LockedUntil = time.Time{}
	a.mu.Unlock()

	id, err := newSessionId()
	if err != nil {
		return "", nil, grapherr.Wrap(grapherr.KindAuth, grapherr.CodeInternalError, "generating session id failed", err)
	}
	sess := &session{username: username, createdAt: time.Now()}
	if a.config.SessionTTL > 0 {
		sess.expiresAt = sess.createdAt.Add(a.config.SessionTTL)
	}
	a.sessMu.Lock()
	a.sessions[id] = sess
	a.sessMu.Unlock()
	return id, u, nil
}

// ValidateSession resolves a session id to its user, rejecting expired or
// unknown sessions.
func (a *Authenticator) ValidateSession(sessionId string) (*User, error) {
	a.sessMu.RLock()
	sess, ok := a.sessions[sessionId]
	a.sessMu.RUnlock()
	if !ok {
		return nil, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "unknown session")
	}
	if !sess.expiresAt.IsZero() && time.Now().After(sess.expiresAt) {
		a.Logout(sessionId)
		return nil, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "session expired")
	}
	a.mu.RLock()
	u, ok := a.users[sess.username]
	a.mu.RUnlock()
	if !ok || u.Disabled {
		return nil, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "session user no longer valid")
	}
	return u, nil
}

func (a *Authenticator) Logout(sessionId string) {
	a.sessMu.Lock()
	delete(a.sessions, sessionId)
	a.sessMu.Unlock()
}

func (a *Authenticator) GetUser(username string) (*User, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	u, ok := a.users[username]
	return u, ok
}

func (a *Authenticator) ChangePassword(username, oldPassword, newPassword string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[username]
	if !ok {
		return grapherr.New(grapherr.KindAuth, grapherr.CodeResourceNotFound, "unknown user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(oldPassword)); err != nil {
		return grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "bad password")
	}
	if len(newPassword) < a.config.MinPasswordLength {
		return grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "password does not meet minimum length")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), a.config.BcryptCost)
	if err != nil {
		return grapherr.Wrap(grapherr.KindAuth, grapherr.CodeInternalError, "hashing password failed", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

func (a *Authenticator) DisableUser(username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[username]
	if !ok {
		return grapherr.New(grapherr.KindAuth, grapherr.CodeResourceNotFound, "unknown user")
	}
	u.Disabled = true
	return nil
}

func (a *Authenticator) EnableUser(username string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	u, ok := a.users[username]
	if !ok {
		return grapherr.New(grapherr.KindAuth, grapherr.CodeResourceNotFound, "unknown user")
	}
	u.Disabled = false
	return nil
}

func (a *Authenticator) UserCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.users)
}

func newSessionId() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
