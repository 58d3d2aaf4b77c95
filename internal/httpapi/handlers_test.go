package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kkkqkx123/graphdb/internal/auth"
	"github.com/kkkqkx123/graphdb/internal/catalog"
	"github.com/kkkqkx123/graphdb/internal/index"
	"github.com/kkkqkx123/graphdb/internal/kv"
	"github.com/kkkqkx123/graphdb/internal/logging"
	"github.com/kkkqkx123/graphdb/internal/queryparser"
	"github.com/kkkqkx123/graphdb/internal/service"
	"github.com/kkkqkx123/graphdb/internal/txn"
)

// newTestServer wires a Server over a fresh in-memory GraphService/
// Authenticator pair, mirroring internal/service/service_test.go's
// newFixture but exercised over HTTP via httptest instead of direct
// method calls.
func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	store := kv.NewMemoryStore()
	mgr := txn.NewManager(store, txn.DefaultManagerConfig())
	cat := catalog.New()
	idxSvc, err := index.NewService(store, 16)
	require.NoError(t, err)

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost
	authn, err := auth.NewAuthenticator(authCfg)
	require.NoError(t, err)

	svc := service.New(store, mgr, cat, idxSvc, authn, queryparser.NewParser(), service.DefaultConfig())

	_, err = authn.CreateUser("alice", "hunter22", []auth.Role{auth.RoleAdmin})
	require.NoError(t, err)

	srv := New(svc, authn, true, logging.New(logging.LevelError), DefaultConfig())
	return srv, srv.buildRouter()
}

func doJSON(t *testing.T, handler http.Handler, method, path, bearer string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func login(t *testing.T, handler http.Handler) string {
	t.Helper()
	rec, out := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID, _ := out["session_id"].(string)
	require.NotEmpty(t, sessionID)
	return sessionID
}

func TestHealthEndpoint(t *testing.T) {
	_, handler := newTestServer(t)
	rec, out := doJSON(t, handler, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", out["status"])
}

func TestLoginRejectsBadPassword(t *testing.T) {
	_, handler := newTestServer(t)
	rec, out := doJSON(t, handler, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.EqualValues(t, 401, out["error_code"])
}

func TestQueryWithoutTokenIsUnauthorized(t *testing.T) {
	_, handler := newTestServer(t)
	rec, _ := doJSON(t, handler, http.MethodPost, "/query", "", map[string]string{
		"session_id": "whatever",
		"statement":  "RETURN 1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionsRoundTripBindsSpace(t *testing.T) {
	_, handler := newTestServer(t)
	authToken := login(t, handler)

	rec, _ := doJSON(t, handler, http.MethodPost, "/spaces", authToken, map[string]string{"name": "galaxy"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := doJSON(t, handler, http.MethodPost, "/sessions", authToken, map[string]string{"space_name": "galaxy"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["session_id"])
}

func TestSpacesCreateListAndDelete(t *testing.T) {
	_, handler := newTestServer(t)
	authToken := login(t, handler)

	rec, _ := doJSON(t, handler, http.MethodPost, "/spaces", authToken, map[string]string{"name": "orbit"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := doJSON(t, handler, http.MethodGet, "/spaces", authToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	spaces, _ := out["spaces"].([]any)
	assert.Contains(t, spaces, "orbit")

	rec, _ = doJSON(t, handler, http.MethodDelete, "/spaces/orbit", authToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, out = doJSON(t, handler, http.MethodGet, "/spaces", authToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	spaces, _ = out["spaces"].([]any)
	assert.NotContains(t, spaces, "orbit")
}

func TestTagsCreateAndList(t *testing.T) {
	_, handler := newTestServer(t)
	authToken := login(t, handler)

	rec, _ := doJSON(t, handler, http.MethodPost, "/spaces", authToken, map[string]string{"name": "graph1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out := doJSON(t, handler, http.MethodPost, "/sessions", authToken, map[string]string{"space_name": "graph1"})
	require.Equal(t, http.StatusOK, rec.Code)
	gsSessionID, _ := out["session_id"].(string)
	require.NotEmpty(t, gsSessionID)

	rec, _ = doJSON(t, handler, http.MethodPost, "/tags", authToken, map[string]any{
		"session_id": gsSessionID,
		"name":       "Person",
		"properties": []map[string]any{
			{"name": "name", "type": "string"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/tags?session_id="+gsSessionID, nil)
	req.Header.Set("Authorization", "Bearer "+authToken)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	var out2 map[string]any
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &out2))
	tags, _ := out2["tags"].([]any)
	assert.Contains(t, tags, "Person")
}

func TestExportSpaceReturnsYAML(t *testing.T) {
	_, handler := newTestServer(t)
	authToken := login(t, handler)

	rec, _ := doJSON(t, handler, http.MethodPost, "/spaces", authToken, map[string]string{"name": "graph2"})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/spaces/graph2/export", nil)
	req.Header.Set("Authorization", "Bearer "+authToken)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)

	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "space: graph2")
}

func TestQueryRejectsUnboundSpace(t *testing.T) {
	_, handler := newTestServer(t)
	authToken := login(t, handler)

	rec, out := doJSON(t, handler, http.MethodPost, "/sessions", authToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	gsSessionID, _ := out["session_id"].(string)

	rec, _ = doJSON(t, handler, http.MethodPost, "/query", authToken, map[string]string{
		"session_id": gsSessionID,
		"statement":  "RETURN 1",
	})
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
