package httpapi

import (
	"net/http"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
)

// handleLogin implements `POST /auth/login` body {username, password} ->
// {session_id}.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if s.authn == nil {
		s.writeErrorMessage(w, http.StatusServiceUnavailable, "authentication not configured")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID, _, err := s.authn.Authenticate(req.Username, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"session_id": sessionID})
}

// handleLogout implements `POST /auth/logout`, invalidating the auth
// session named by the Bearer token/session_id query param.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if s.authn == nil {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
		return
	}
	token := bearerToken(r)
	if token == "" {
		s.writeError(w, grapherr.New(grapherr.KindAuth, grapherr.CodeUnauthorized, "no session to log out"))
		return
	}
	s.authn.Logout(token)
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
