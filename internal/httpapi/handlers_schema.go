package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/kkkqkx123/graphdb/internal/grapherr"
	"github.com/kkkqkx123/graphdb/internal/graph"
)

// handleSpaces implements `POST /spaces` body {name} -> {id} and
// `GET /spaces` -> {spaces: [name, ...]}.
func (s *Server) handleSpaces(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := s.readJSON(r, &req); err != nil {
			s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		id, err := s.svc.CreateSpace(req.Name)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"id": uint32(id)})
	case http.MethodGet:
		s.writeJSON(w, http.StatusOK, map[string]any{"spaces": s.svc.ListSpaces()})
	default:
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "GET or POST required")
	}
}

// handleSpaceByName implements `DELETE /spaces/{name}` and
// `GET /spaces/{name}/export` (spec §6's admin schema-export surface,
// rendered as YAML per internal/catalog.SpaceSnapshot.ToYAML).
func (s *Server) handleSpaceByName(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/spaces/")
	if name, ok := strings.CutSuffix(rest, "/export"); ok {
		if r.Method != http.MethodGet {
			s.writeErrorMessage(w, http.StatusMethodNotAllowed, "GET required")
			return
		}
		s.handleExportSpace(w, name)
		return
	}

	if r.Method != http.MethodDelete {
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "DELETE required")
		return
	}
	if rest == "" {
		s.writeErrorMessage(w, http.StatusBadRequest, "space name required")
		return
	}
	if err := s.svc.DropSpace(rest); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "dropped"})
}

func (s *Server) handleExportSpace(w http.ResponseWriter, name string) {
	if name == "" {
		s.writeErrorMessage(w, http.StatusBadRequest, "space name required")
		return
	}
	snap, err := s.svc.ExportSpace(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	body, err := snap.ToYAML()
	if err != nil {
		s.writeErrorMessage(w, http.StatusInternalServerError, "rendering export: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// propertyRequest is the wire shape of one PropertyDef in a tag/edge-type
// creation request.
type propertyRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

var propertyTypes = map[string]graph.DataType{
	"bool":     graph.TypeBool,
	"int":      graph.TypeInt,
	"float":    graph.TypeFloat,
	"string":   graph.TypeString,
	"date":     graph.TypeDate,
	"time":     graph.TypeTime,
	"datetime": graph.TypeDateTime,
	"list":     graph.TypeList,
	"set":      graph.TypeSet,
	"map":      graph.TypeMap,
}

func toPropertyDefs(reqs []propertyRequest) ([]graph.PropertyDef, error) {
	defs := make([]graph.PropertyDef, len(reqs))
	for i, p := range reqs {
		typ, ok := propertyTypes[strings.ToLower(p.Type)]
		if !ok {
			return nil, grapherr.New(grapherr.KindValidation, grapherr.CodeInvalidInput, "unknown property type: "+p.Type)
		}
		defs[i] = graph.PropertyDef{Name: p.Name, Type: typ, Nullable: p.Nullable}
	}
	return defs, nil
}

// handleTags implements `POST /tags` body {session_id, name, properties,
// ttl_column?, ttl_seconds?} and `GET /tags?session_id=...`.
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			SessionID  string            `json:"session_id"`
			Name       string            `json:"name"`
			Properties []propertyRequest `json:"properties"`
			TTLColumn  string            `json:"ttl_column"`
			TTLSeconds int64             `json:"ttl_seconds"`
		}
		if err := s.readJSON(r, &req); err != nil {
			s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		space, err := s.svc.SessionSpace(req.SessionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		props, err := toPropertyDefs(req.Properties)
		if err != nil {
			s.writeError(w, err)
			return
		}
		ttl := ttlSpec(req.TTLColumn, req.TTLSeconds)
		id, err := s.svc.CreateTag(space, req.Name, props, ttl)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"id": uint32(id)})
	case http.MethodGet:
		space, err := s.svc.SessionSpace(r.URL.Query().Get("session_id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		tags, err := s.svc.ListTags(space)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
	default:
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "GET or POST required")
	}
}

// handleEdges implements `POST /edges` body {session_id, name, properties,
// ttl_column?, ttl_seconds?} and `GET /edges?session_id=...` over edge
// types (spec §6 names the endpoint `/edges`; the schema object it creates
// is an edge *type*, the same distinction internal/service.schema.go
// draws between CreateEdgeType and InsertEdge).
func (s *Server) handleEdges(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req struct {
			SessionID  string            `json:"session_id"`
			Name       string            `json:"name"`
			Properties []propertyRequest `json:"properties"`
			TTLColumn  string            `json:"ttl_column"`
			TTLSeconds int64             `json:"ttl_seconds"`
		}
		if err := s.readJSON(r, &req); err != nil {
			s.writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		space, err := s.svc.SessionSpace(req.SessionID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		props, err := toPropertyDefs(req.Properties)
		if err != nil {
			s.writeError(w, err)
			return
		}
		ttl := ttlSpec(req.TTLColumn, req.TTLSeconds)
		id, err := s.svc.CreateEdgeType(space, req.Name, props, ttl)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"id": uint32(id)})
	case http.MethodGet:
		space, err := s.svc.SessionSpace(r.URL.Query().Get("session_id"))
		if err != nil {
			s.writeError(w, err)
			return
		}
		edgeTypes, err := s.svc.ListEdgeTypes(space)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"edges": edgeTypes})
	default:
		s.writeErrorMessage(w, http.StatusMethodNotAllowed, "GET or POST required")
	}
}

func ttlSpec(column string, seconds int64) *graph.TTLSpec {
	if column == "" || seconds <= 0 {
		return nil
	}
	return &graph.TTLSpec{Column: column, Duration: time.Duration(seconds) * time.Second}
}
