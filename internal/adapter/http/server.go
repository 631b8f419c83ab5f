package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/traffic-insights/internal/domain"
)

// ReportSource returns the finished report, or nil while the run is in progress.
type ReportSource interface {
	Report() *domain.Report
}

// Server exposes health, readiness, metrics, and report HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /report, and /report/matrix routes.
func NewServer(addr string, reports ReportSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(reports))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /report", handleReport(reports, func(r *domain.Report) any { return r }))
	mux.HandleFunc("GET /report/matrix", handleReport(reports, func(r *domain.Report) any { return r.Matrix }))

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

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

var errNoReport = errors.New("report not available yet")

// handleReady reports ready once the run has published its report.
func handleReady(reports ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		report := reports.Report()
		if report == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  errNoReport.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"status":       "ready",
			"generated_at": report.GeneratedAt.UTC().Format(time.RFC3339),
		})
	}
}

// handleReport serves a projection of the finished report, or 503 while the
// run is still in progress.
func handleReport(reports ReportSource, project func(*domain.Report) any) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		report := reports.Report()
		if report == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": errNoReport.Error()})
			return
		}
		writeJSON(w, http.StatusOK, project(report))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
