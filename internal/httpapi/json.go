package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
)

func (s *Server) readJSON(r *http.Request, v any) error {
	limit := s.cfg.MaxRequestSize
	if limit <= 0 {
		limit = DefaultConfig().MaxRequestSize
	}
	body := io.LimitReader(r.Body, limit)
	return json.NewDecoder(body).Decode(v)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError renders err through spec §6/§7's stable {error_code,
// message} envelope, deriving the HTTP status from the error's Code
// (grapherr.Code.HTTPStatus) rather than from caller-chosen status codes,
// so every layer's errors land on the wire the same way.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.errorCount.Add(1)
	ge := grapherr.AsGraphError(err)
	code, message := ge.Public()
	s.writeJSON(w, code.HTTPStatus(), map[string]any{
		"error_code": int(code),
		"message":    message,
	})
}

// writeErrorMessage is writeError for auth/transport failures that never
// passed through a *grapherr.Error (e.g. withAuth rejecting a missing
// token) — status is given directly since there is no Code to derive it
// from.
func (s *Server) writeErrorMessage(w http.ResponseWriter, status int, message string) {
	s.errorCount.Add(1)
	s.writeJSON(w, status, map[string]any{
		"error_code": status,
		"message":    message,
	})
}
