package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/pipeline"
	"github.com/couchcryptid/quake-map/internal/selection"
)

// Service is the read side of the pipeline the HTTP API needs.
type Service interface {
	sharedobs.ReadinessChecker
	Current() (*pipeline.Snapshot, *selection.Controller)
	Boundaries() []domain.Boundary
	Locate(loc domain.Location) (string, bool)
}

// Server exposes health, readiness, metrics, and the quake map API.
type Server struct {
	httpServer *http.Server
	svc        Service
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the probe, metrics, and API routes.
func NewServer(addr string, svc Service, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		metrics: metrics,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /cities", s.handleCities)
	mux.HandleFunc("GET /locate", s.handleLocate)
	mux.HandleFunc("POST /session/move", s.handleMove)
	mux.HandleFunc("POST /session/click", s.handleClick)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
