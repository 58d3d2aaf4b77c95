package httpapi

import "net/http"

// handleCreateSession implements `POST /sessions`: creates a GraphService
// session bound to the caller's already-authenticated user (the Bearer
// token withAuth validated), space-unbound until a later UseSpace call.
//
// There is no separate `UseSpace` HTTP endpoint in spec §6's wire
// contract, so a space_name field here is accepted and, when present,
// bound immediately — letting a client open a session already pointed at
// a space in one round trip.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req struct {
		SpaceName string `json:"space_name"`
	}
	_ = s.readJSON(r, &req) // body is optional

	authToken := bearerToken(r)
	sess, err := s.svc.CreateSession(authToken)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if req.SpaceName != "" {
		if err := s.svc.UseSpace(sess.ID, req.SpaceName); err != nil {
			s.writeError(w, err)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"session_id": sess.ID})
}
