// Package api is the REST and SSE surface of the migration engine: event
// history and streaming, extraction and migration runs, plan generation,
// and connection health.
package api

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/s4bridge/s4bridge/internal/engine"
	"github.com/s4bridge/s4bridge/internal/ws"
)

// Server is the HTTP API server for the dashboard and automation clients.
type Server struct {
	engine   *engine.Engine
	hub      *ws.Hub
	logger   *slog.Logger
	port     int
	server   *http.Server
	staticFS fs.FS
	devMode  bool
}

// Option configures the API server.
type Option func(*Server)

// WithStaticFS sets the embedded filesystem for serving the dashboard app.
func WithStaticFS(fsys fs.FS) Option {
	return func(s *Server) {
		s.staticFS = fsys
	}
}

// WithDevMode enables CORS for development.
func WithDevMode(dev bool) Option {
	return func(s *Server) {
		s.devMode = dev
	}
}

// WithHub sets the WebSocket hub.
func WithHub(hub *ws.Hub) Option {
	return func(s *Server) {
		s.hub = hub
	}
}

// New creates a new API server.
func New(eng *engine.Engine, logger *slog.Logger, port int, opts ...Option) *Server {
	s := &Server{
		engine: eng,
		logger: logger,
		port:   port,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the fully routed HTTP handler without starting a
// listener, for tests and embedding.
func Handler(eng *engine.Engine, logger *slog.Logger, opts ...Option) http.Handler {
	s := New(eng, logger, 0, opts...)
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return requestLogger(logger, mux)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := requestLogger(s.logger, mux)
	if s.devMode {
		handler = s.corsMiddleware(handler)
	}

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: handler,
	}

	s.logger.Info("starting api server", "port", s.port, "dev_mode", s.devMode)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", s.handleHealth)

	// Progress events
	mux.HandleFunc("GET /api/events/history", s.handleEventHistory)
	mux.HandleFunc("GET /api/events", s.handleEventStream)

	// Extraction runs
	mux.HandleFunc("GET /api/extractors", s.handleListExtractors)
	mux.HandleFunc("POST /api/extract/run", s.handleExtractRun)
	mux.HandleFunc("POST /api/extract/abort", s.handleExtractAbort)
	mux.HandleFunc("GET /api/extract/status", s.handleExtractStatus)
	mux.HandleFunc("GET /api/coverage/latest", s.handleCoverageLatest)

	// Migration objects and runs
	mux.HandleFunc("GET /api/objects", s.handleListObjects)
	mux.HandleFunc("POST /api/migrate/run", s.handleMigrateRun)
	mux.HandleFunc("POST /api/migration/plan", s.handleBuildPlan)
	mux.HandleFunc("GET /api/migration/plan/latest", s.handleLatestPlan)
	mux.HandleFunc("GET /api/migration/plan/state", s.handlePlanState)

	// Connections and safety
	mux.HandleFunc("GET /api/connections/health", s.handleConnectionsHealth)
	mux.HandleFunc("POST /api/operations/check", s.handleOperationCheck)

	// WebSocket
	if s.hub != nil {
		mux.HandleFunc("/api/ws", s.hub.HandleWebSocket)
	}

	// SPA static file serving
	if s.staticFS != nil {
		mux.Handle("/", s.spaHandler())
	}
}

// spaHandler serves the dashboard SPA. For any non-API, non-asset request,
// it returns index.html so client-side routing works.
func (s *Server) spaHandler() http.Handler {
	fileServer := http.FileServer(http.FS(s.staticFS))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			path = "index.html"
		} else {
			path = strings.TrimPrefix(path, "/")
		}

		// Try to serve the file directly
		f, err := s.staticFS.Open(path)
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}

		// File not found — serve index.html for SPA routing
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
