// Package httpapi exposes the running simulation over HTTP: health, live
// status, aggregated metrics and the Prometheus scrape endpoint.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/whatsacomputertho/elevator-optimization/internal/observability"
	"github.com/whatsacomputertho/elevator-optimization/internal/runner"
)

type Server struct {
	run *runner.Runner
	obs *observability.Metrics
	log *slog.Logger
}

func NewServer(run *runner.Runner, obs *observability.Metrics, log *slog.Logger) *Server {
	return &Server{run: run, obs: obs, log: log.With("component", "httpapi")}
}

// Router wires the API routes behind a request-logging wrapper.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.healthHandler).Methods("GET")
	r.HandleFunc("/status", s.statusHandler).Methods("GET")
	r.HandleFunc("/metrics/summary", s.metricsSummaryHandler).Methods("GET")
	r.Handle("/metrics", s.obs.Handler()).Methods("GET")

	return handlers.LoggingHandler(os.Stdout, r)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "ts": time.Now().UTC()})
}

func (s *Server) statusHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.run.Status())
}

func (s *Server) metricsSummaryHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.run.MetricsSummary())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
