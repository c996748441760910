// Package status exposes the run's HTTP observability surface: liveness,
// a JSON view of the run counters, and the Prometheus registry.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/r-uben/baltic-shipping/internal/runner"
)

// SnapshotSource provides the live run state; the runner implements it.
type SnapshotSource interface {
	Snapshot() runner.Snapshot
}

// Server serves the status endpoints on its own listener so scraping never
// competes with the crawl itself.
type Server struct {
	addr   string
	source SnapshotSource
	logger *zap.Logger
	httpd  *http.Server
}

// NewServer builds the server; Start must be called to serve.
func NewServer(addr string, source SnapshotSource, logger *zap.Logger) *Server {
	s := &Server{addr: addr, source: source, logger: logger}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Get("/statusz", s.statusz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	s.httpd = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start serves in a goroutine until Shutdown.
func (s *Server) Start() {
	go func() {
		if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("status server failed", zap.String("addr", s.addr), zap.Error(err))
		}
	}()
	s.logger.Info("status server listening", zap.String("addr", s.addr))
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpd.Shutdown(ctx)
}

// Handler exposes the router, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.httpd.Handler
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) statusz(w http.ResponseWriter, _ *http.Request) {
	if s.source == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no run in progress"})
		return
	}
	writeJSON(w, http.StatusOK, s.source.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
