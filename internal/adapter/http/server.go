package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/inmet-scraper/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchStatus reports the progress of a running batch.
type BatchStatus interface {
	CheckReadiness(ctx context.Context) error
	Outcomes() []domain.Outcome
}

// Server exposes health, readiness, progress, and metrics HTTP endpoints
// while a batch runs.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /outcomes, and /metrics routes.
func NewServer(addr string, status BatchStatus, logger *slog.Logger) *Server {
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
	mux.HandleFunc("GET /readyz", handleReady(status))
	mux.HandleFunc("GET /outcomes", handleOutcomes(status))
	mux.Handle("GET /metrics", promhttp.Handler())

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

func handleReady(checker BatchStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type outcomesResponse struct {
	Processed  int                  `json:"processed"`
	Successful []string             `json:"successful"`
	Failed     []domain.YearFailure `json:"failed"`
	Outcomes   []domain.Outcome     `json:"outcomes"`
}

func handleOutcomes(status BatchStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		outcomes := status.Outcomes()
		failed := domain.FailedYears(outcomes)
		if failed == nil {
			failed = []domain.YearFailure{}
		}
		writeJSON(w, http.StatusOK, outcomesResponse{
			Processed:  len(outcomes),
			Successful: domain.SuccessfulPaths(outcomes),
			Failed:     failed,
			Outcomes:   outcomes,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort status response
}
