package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	cfg := DefaultConfig()
	a, err := NewAuthenticator(cfg)
	require.NoError(t, err)
	return a
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.CreateUser("alice", "short", nil)
	assert.Error(t, err)
}

func TestCreateUserDefaultsToViewerRole(t *testing.T) {
	a := newTestAuthenticator(t)
	u, err := a.CreateUser("alice", "correct-horse", nil)
	require.NoError(t, err)
	assert.True(t, u.HasRole(RoleViewer))
	assert.False(t, u.HasPermission(PermWrite))
}

func TestAuthenticateIssuesSessionId(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.CreateUser("alice", "correct-horse", []Role{RoleEditor})
	require.NoError(t, err)

	sessionId, u, err := a.Authenticate("alice", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, sessionId)
	assert.Equal(t, "alice", u.Username)

	resolved, err := a.ValidateSession(sessionId)
	require.NoError(t, err)
	assert.Equal(t, "alice", resolved.Username)
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.CreateUser("alice", "correct-horse", nil)
	require.NoError(t, err)

	_, _, err = a.Authenticate("alice", "wrong-password")
	assert.Error(t, err)
}

func TestAccountLocksAfterMaxFailedLogins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFailedLogins = 3
	cfg.LockoutDuration = time.Hour
	a, err := NewAuthenticator(cfg)
	require.NoError(t, err)
	_, err = a.CreateUser("alice", "correct-horse", nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err = a.Authenticate("alice", "wrong-password")
		assert.Error(t, err)
	}

	// Even the correct password must now be rejected: the account is locked.
	_, _, err = a.Authenticate("alice", "correct-horse")
	assert.Error(t, err)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.CreateUser("alice", "correct-horse", nil)
	require.NoError(t, err)
	sessionId, _, err := a.Authenticate("alice", "correct-horse")
	require.NoError(t, err)

	a.Logout(sessionId)
	_, err = a.ValidateSession(sessionId)
	assert.Error(t, err)
}

func TestSessionExpiresAfterTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SessionTTL = time.Millisecond
	a, err := NewAuthenticator(cfg)
	require.NoError(t, err)
	_, err = a.CreateUser("alice", "correct-horse", nil)
	require.NoError(t, err)
	sessionId, _, err := a.Authenticate("alice", "correct-horse")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = a.ValidateSession(sessionId)
	assert.Error(t, err, "expired session must be rejected")
}

func TestDisabledUserCannotAuthenticate(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.CreateUser("alice", "correct-horse", nil)
	require.NoError(t, err)
	require.NoError(t, a.DisableUser("alice"))

	_, _, err = a.Authenticate("alice", "correct-horse")
	assert.Error(t, err)

	require.NoError(t, a.EnableUser("alice"))
	_, _, err = a.Authenticate("alice", "correct-horse")
	assert.NoError(t, err)
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.CreateUser("alice", "correct-horse", nil)
	require.NoError(t, err)

	err = a.ChangePassword("alice", "wrong-old", "new-password-1")
	assert.Error(t, err)

	err = a.ChangePassword("alice", "correct-horse", "new-password-1")
	require.NoError(t, err)

	_, _, err = a.Authenticate("alice", "new-password-1")
	assert.NoError(t, err)
}

func TestSeedDefaultUsersGatedByConfig(t *testing.T) {
	a := newTestAuthenticator(t)
	assert.Equal(t, 0, a.UserCount())

	cfg := DefaultConfig()
	cfg.SeedDefaultUsers = true
	seeded, err := NewAuthenticator(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, seeded.UserCount())

	_, u, err := seeded.Authenticate("root", "root")
	require.NoError(t, err)
	assert.True(t, u.HasRole(RoleAdmin))
}

func TestRolePermissionsGrantExpectedAccess(t *testing.T) {
	admin := &User{Roles: []Role{RoleAdmin}}
	assert.True(t, admin.HasPermission(PermUserManage))

	viewer := &User{Roles: []Role{RoleViewer}}
	assert.True(t, viewer.HasPermission(PermRead))
	assert.False(t, viewer.HasPermission(PermWrite))

	none := &User{Roles: []Role{RoleNone}}
	assert.False(t, none.HasPermission(PermRead))
}
