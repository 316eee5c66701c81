// Package server serves a built graph and stored snapshots over HTTP.
//
// The API is read-mostly and meant for a browser visualization client:
//
//	GET    /healthz                          build info
//	GET    /api/graph                        graph wire format
//	GET    /api/stats                        build statistics
//	GET    /api/report                       validation report
//	GET    /api/graph.dot                    Graphviz DOT
//	GET    /api/graph.svg                    rendered SVG
//	POST   /api/build                        rebuild from a JSON array of records
//	GET    /api/snapshots                    stored snapshots, newest first
//	POST   /api/snapshots?name=...           save the current build
//	GET    /api/snapshots/{id}               one snapshot
//	DELETE /api/snapshots/{id}               remove a snapshot
//	GET    /api/snapshots/{id}/graph.svg     rendered snapshot
//
// The DOT and SVG endpoints accept ?detailed=1, ?clusters=1, ?rankdir=LR and
// ?highlight=cycles|paths. Rendered SVGs are kept in an LRU cache.
//
// Errors are JSON objects {"error": "...", "code": "..."} with the HTTP
// status derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/classgraph/pkg/pipeline"
	"github.com/matzehuels/classgraph/pkg/store"
)

// DefaultSVGCacheSize is the number of rendered SVGs kept in memory.
const DefaultSVGCacheSize = 64

// Config configures a Server.
type Config struct {
	// Result is the build served under /api. It may be nil until a build
	// is posted.
	Result *pipeline.Result

	// Runner executes POST /api/build. Nil disables the endpoint.
	Runner *pipeline.Runner

	// Options are the pipeline options used for posted builds.
	Options pipeline.Options

	// Store holds snapshots. Nil disables the snapshot endpoints.
	Store store.Store

	Logger       *log.Logger
	SVGCacheSize int
}

// Server is the HTTP front end. It is safe for concurrent use.
type Server struct {
	runner  *pipeline.Runner
	opts    pipeline.Options
	store   store.Store
	logger  *log.Logger
	svgs    *lru.Cache[string, []byte]
	renders singleflight.Group

	mu     sync.RWMutex
	result *pipeline.Result
}

// New creates a Server.
func New(cfg Config) (*Server, error) {
	size := cfg.SVGCacheSize
	if size <= 0 {
		size = DefaultSVGCacheSize
	}
	svgs, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		runner: cfg.Runner,
		opts:   cfg.Options,
		store:  cfg.Store,
		logger: logger,
		svgs:   svgs,
		result: cfg.Result,
	}, nil
}

// SetResult replaces the served build.
func (s *Server) SetResult(r *pipeline.Result) {
	s.mu.Lock()
	s.result = r
	s.mu.Unlock()
}

// Result returns the served build, or nil.
func (s *Server) Result() *pipeline.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(cors)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/stats", s.handleStats)
		r.Get("/report", s.handleReport)
		r.Get("/graph.dot", s.handleDOT)
		r.Get("/graph.svg", s.handleSVG)
		r.Post("/build", s.handleBuild)

		r.Route("/snapshots", func(r chi.Router) {
			r.Get("/", s.handleListSnapshots)
			r.Post("/", s.handleSaveSnapshot)
			r.Get("/{id}", s.handleGetSnapshot)
			r.Delete("/{id}", s.handleDeleteSnapshot)
			r.Get("/{id}/graph.svg", s.handleSnapshotSVG)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
