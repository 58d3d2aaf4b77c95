package httpapi

import "net/http"

// handleTxBegin implements `POST /tx/begin` body {session_id,
// read_only?}: opens an explicit transaction on the session so subsequent
// `POST /query` calls on it share one transaction until commit/rollback.
func (s *Server) handleTxBegin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
		ReadOnly  bool   `json:"read_only"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.BeginTransaction(r.Context(), req.SessionID, req.ReadOnly); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "began"})
}

// handleTxCommit implements `POST /tx/commit` body {session_id}.
func (s *Server) handleTxCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.CommitTransaction(req.SessionID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "committed"})
}

// handleTxRollback implements `POST /tx/rollback` body {session_id}.
func (s *Server) handleTxRollback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.svc.RollbackTransaction(req.SessionID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "rolled back"})
}
