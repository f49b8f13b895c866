// Package server exposes layout sessions over HTTP.
//
// Each client creates a session from a dataset document and then drives it
// with collision counts, optimizer runs and manual saves. All state lives in
// a [session.Store]; handlers load the session, act on it through a
// [pipeline.Runner] and write it back, so a Redis-backed store lets several
// server instances share sessions.
//
// Routes:
//
//	GET    /healthz
//	POST   /v1/swaps
//	POST   /v1/sessions
//	GET    /v1/sessions/{id}
//	DELETE /v1/sessions/{id}
//	POST   /v1/sessions/{id}/reset
//	PUT    /v1/sessions/{id}/layout
//	POST   /v1/sessions/{id}/collisions
//	POST   /v1/sessions/{id}/optimize
//	GET    /v1/sessions/{id}/solutions
//	POST   /v1/sessions/{id}/solutions
//
// Errors are returned as {"code": ..., "message": ...} with the status
// given by [errors.HTTPStatus].
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/synvisio/pkg/pipeline"
	"github.com/matzehuels/synvisio/pkg/session"
	"github.com/matzehuels/synvisio/pkg/solutions"
)

const (
	// DefaultMaxBody limits request bodies (datasets can be large).
	DefaultMaxBody = 32 << 20

	// DefaultOptimizeTimeout bounds a single optimizer request.
	DefaultOptimizeTimeout = 5 * time.Minute

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server. Only Sessions is required.
type Config struct {
	Sessions session.Store

	// Runner executes pipeline work. Nil creates an uncached runner.
	Runner *pipeline.Runner

	// Archive persists solution stores across sessions, keyed by dataset
	// name. Nil disables archiving.
	Archive solutions.Archive

	// SessionTTL is the lifetime of new sessions. Zero means
	// session.DefaultTTL.
	SessionTTL time.Duration

	// OptimizeTimeout bounds optimizer requests. Zero means
	// DefaultOptimizeTimeout.
	OptimizeTimeout time.Duration

	MaxBody int64
	Logger  *log.Logger
}

// Server is the HTTP API.
type Server struct {
	sessions        session.Store
	runner          *pipeline.Runner
	archive         solutions.Archive
	ttl             time.Duration
	optimizeTimeout time.Duration
	maxBody         int64
	logger          *log.Logger
	router          chi.Router
}

// New creates a server from cfg.
func New(cfg Config) *Server {
	s := &Server{
		sessions:        cfg.Sessions,
		runner:          cfg.Runner,
		archive:         cfg.Archive,
		ttl:             cfg.SessionTTL,
		optimizeTimeout: cfg.OptimizeTimeout,
		maxBody:         cfg.MaxBody,
		logger:          cfg.Logger,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.ttl == 0 {
		s.ttl = session.DefaultTTL
	}
	if s.optimizeTimeout == 0 {
		s.optimizeTimeout = DefaultOptimizeTimeout
	}
	if s.maxBody == 0 {
		s.maxBody = DefaultMaxBody
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.limitBody)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/swaps", s.handleSwaps)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/reset", s.handleReset)
			r.Put("/layout", s.handleLayout)
			r.Post("/collisions", s.handleCollisions)
			r.Post("/optimize", s.handleOptimize)
			r.Get("/solutions", s.handleListSolutions)
			r.Post("/solutions", s.handleSaveSolution)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errNotFound(r.URL.Path))
	})
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
