// Package server exposes the layout engine over HTTP.
//
// Routes:
//
//	GET  /healthz      liveness probe
//	POST /v1/layout    lay out a feed at a given width
//	GET  /v1/demo      lay out a generated demo feed
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/masonry/pkg/buildinfo"
	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/feed"
)

const (
	// DefaultMaxItems caps the number of items per request.
	DefaultMaxItems = 5000
	// maxBodyBytes caps request bodies.
	maxBodyBytes = 8 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Grid holds the defaults requests may override.
	Grid     feed.GridConfig
	Logger   *log.Logger
	MaxItems int

	// Cache holds computed layouts. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration
}

// Server is the layout HTTP service.
type Server struct {
	grid     feed.GridConfig
	logger   *log.Logger
	maxItems int
	cache    cache.Cache
	cacheTTL time.Duration
	router   chi.Router
}

// New creates a server with its routes mounted.
func New(cfg Config) *Server {
	s := &Server{
		grid:     cfg.Grid,
		logger:   cfg.Logger,
		maxItems: cfg.MaxItems,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxItems <= 0 {
		s.maxItems = DefaultMaxItems
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/layout", s.handleLayout)
		r.Get("/demo", s.handleDemo)
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "version", buildinfo.Short())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}
