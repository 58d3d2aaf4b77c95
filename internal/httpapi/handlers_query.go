package httpapi

import "net/http"

// handleQuery implements `POST /query` body {session_id, statement} ->
// {columns, rows, stats} or the error envelope (spec §6).
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Statement string `json:"statement"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.svc.Query(r.Context(), req.SessionID, req.Statement)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// handleValidateQuery implements `POST /query/validate`: the same
// envelope as handleQuery but without executing anything.
func (s *Server) handleValidateQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req struct {
		SessionID string `json:"session_id"`
		Statement string `json:"statement"`
	}
	if err := s.readJSON(r, &req); err != nil {
		s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.svc.ValidateQuery(req.SessionID, req.Statement); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}
