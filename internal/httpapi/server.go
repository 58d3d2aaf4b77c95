// Package httpapi implements spec §6's "HTTP API" — the external
// collaborator spec.md §1 names but leaves unspecified beyond its wire
// contract: the JSON endpoints a caller drives GraphService/Authenticator
// through. Grounded on straga-Mimir_lite's pkg/server/server.go for the
// stdlib net/http + http.ServeMux + middleware-chain shape (buildRouter,
// withAuth, loggingMiddleware, recoveryMiddleware, readJSON/writeJSON/
// writeError) — generalized from the teacher's Neo4j-Bolt-compatible
// surface to spec §6's session/query/tx/schema endpoint set, and from the
// teacher's JWT claims to the opaque session_id spec §6 specifies
// (internal/auth's Authenticator already made that substitution; httpapi
// just carries it through to the wire).
package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kkkqkx123/graphdb/internal/auth"
	"github.com/kkkqkx123/graphdb/internal/logging"
	"github.com/kkkqkx123/graphdb/internal/service"
)

// Config bundles the listen address and request-handling knobs Server
// needs, independent of internal/config.HTTPConfig's on-disk shape so
// this package stays free of a TOML dependency.
type Config struct {
	BindAddress    string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
}

// DefaultConfig mirrors internal/config.Default()'s HTTP section plus
// straga-Mimir_lite's Config request-size/timeout defaults.
func DefaultConfig() Config {
	return Config{
		BindAddress:    "0.0.0.0",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxRequestSize: 10 << 20,
	}
}

// Server is the HTTP front end for one GraphService/Authenticator pair.
type Server struct {
	cfg        Config
	svc        *service.GraphService
	authn      *auth.Authenticator
	authOn     bool
	log        *logging.Logger
	httpServer *http.Server
	listener   net.Listener

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// New builds a Server. authEnabled mirrors internal/config.AuthConfig's
// Enabled flag: when false, withAuth lets every request through regardless
// of session_id, matching the teacher's dev-mode "auth disabled" path.
func New(svc *service.GraphService, authn *auth.Authenticator, authEnabled bool, log *logging.Logger, cfg Config) *Server {
	if log == nil {
		log = logging.Default()
	}
	return &Server{cfg: cfg, svc: svc, authn: authn, authOn: authEnabled, log: log}
}

// Start binds the listener and begins serving in the background. It
// returns once the listener is open; Serve errors after that surface only
// through the server's own log.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpapi: listen on %s: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:      s.buildRouter(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("httpapi: serve failed: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down, waiting up to ctx's deadline for
// in-flight requests to finish.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the bound listen address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) buildRouter() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)

	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/logout", s.handleLogout)

	mux.HandleFunc("/sessions", s.withAuth(s.handleCreateSession, auth.PermRead))

	mux.HandleFunc("/query", s.withAuth(s.handleQuery, auth.PermRead))
	mux.HandleFunc("/query/validate", s.withAuth(s.handleValidateQuery, auth.PermRead))

	mux.HandleFunc("/tx/begin", s.withAuth(s.handleTxBegin, auth.PermRead))
	mux.HandleFunc("/tx/commit", s.withAuth(s.handleTxCommit, auth.PermRead))
	mux.HandleFunc("/tx/rollback", s.withAuth(s.handleTxRollback, auth.PermRead))

	mux.HandleFunc("/spaces", s.withAuth(s.handleSpaces, auth.PermSchema))
	mux.HandleFunc("/spaces/", s.withAuth(s.handleSpaceByName, auth.PermSchema))
	mux.HandleFunc("/tags", s.withAuth(s.handleTags, auth.PermSchema))
	mux.HandleFunc("/edges", s.withAuth(s.handleEdges, auth.PermSchema))

	return s.recoveryMiddleware(s.loggingMiddleware(s.metricsMiddleware(mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
