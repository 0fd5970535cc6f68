// Package docserver is the HTTP document service a storefront deployment
// points at. It exposes collections of JSON documents over a small REST API.
package docserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/marcus/storefront/internal/docstore"
)

// Backend is the document storage behind the server.
type Backend interface {
	docstore.Store
	Ping(ctx context.Context) error
	Stats(ctx context.Context) ([]docstore.CollectionStat, error)
}

// Server is the HTTP API server for the document service.
type Server struct {
	config      Config
	http        *http.Server
	store       Backend
	keys        *KeySet
	metrics     *Metrics
	rateLimiter *RateLimiter
	cancel      context.CancelFunc
}

// NewServer creates a new Server with the given config and backend.
func NewServer(cfg Config, store Backend) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("nil backend")
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 600
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:      cfg,
		store:       store,
		keys:        NewKeySet(cfg.APIKeys),
		metrics:     NewMetrics(),
		rateLimiter: NewRateLimiter(ctx, cfg.RateLimit),
		cancel:      cancel,
	}
	if !s.keys.Enabled() {
		slog.Warn("no api keys configured, document API is open")
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the server and its background work.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.http.Shutdown(ctx)
}

// Metrics returns the server's metrics.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler builds the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health & metrics
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /metricz", s.handleMetrics)

	// Documents
	mux.HandleFunc("GET /v1/collections/{collection}/documents", s.requireAuth(s.withRateLimit(s.handleListDocuments)))
	mux.HandleFunc("POST /v1/collections/{collection}/documents", s.requireAuth(s.withRateLimit(s.handleAddDocument)))
	mux.HandleFunc("GET /v1/collections/{collection}/documents/{id}", s.requireAuth(s.withRateLimit(s.handleGetDocument)))
	mux.HandleFunc("PUT /v1/collections/{collection}/documents/{id}", s.requireAuth(s.withRateLimit(s.handleSetDocument)))
	mux.HandleFunc("PATCH /v1/collections/{collection}/documents/{id}", s.requireAuth(s.withRateLimit(s.handleUpdateDocument)))
	mux.HandleFunc("DELETE /v1/collections/{collection}/documents/{id}", s.requireAuth(s.withRateLimit(s.handleDeleteDocument)))

	// Stats
	mux.HandleFunc("GET /v1/stats", s.requireAuth(s.withRateLimit(s.handleStats)))

	return chain(mux, withScope, observe(s.metrics), recoveryMiddleware, limitBody(s.config.MaxBodyBytes))
}

// handleHealth returns a health check response, pinging the backend.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics returns a snapshot of server metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// handleStats returns per-collection document counts.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		logFor(r.Context()).Error("collection stats", "err", err)
		writeError(w, http.StatusInternalServerError, ErrCodeInternal, "failed to read stats")
		return
	}
	if stats == nil {
		stats = []docstore.CollectionStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}
