// Package api provides fairsim's HTTP server: submitting runs and
// SLA searches, inspecting their results, and exporting Prometheus metrics —
// mirroring the teacher's chi router, middleware stack, and writeJSON/
// writeError/corsMiddleware helper style (internal/api/server.go).
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fairsim/fairsim/internal/experiment"
	"github.com/fairsim/fairsim/internal/metrics"
	"github.com/fairsim/fairsim/internal/persistence"
)

// Server is fairsim's HTTP API server.
type Server struct {
	runner   *experiment.Runner
	store    *persistence.DB // nil if persistence is disabled
	logger   *slog.Logger
	registry *prometheus.Registry         // nil disables /metrics
	promColl *metrics.PrometheusCollector // nil if registry is nil

	mu   sync.Mutex
	runs map[string]*RunRecord
}

// NewServer creates a fairsim API server. store and registry may be nil to
// disable persistence and the /metrics endpoint respectively. When registry
// is non-nil, every submitted run's latencies are additionally recorded
// against it via a single process-lifetime PrometheusCollector (one per
// server instance, registered once, to avoid the duplicate-registration
// panic promauto-style globals would hit across concurrent runs).
func NewServer(runner *experiment.Runner, store *persistence.DB, registry *prometheus.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		runner:   runner,
		store:    store,
		registry: registry,
		logger:   logger,
		runs:     make(map[string]*RunRecord),
	}
	if registry != nil {
		s.promColl = metrics.NewPrometheusCollector(registry)
	}
	return s
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"version": "0.1.0"})
	})

	r.Route("/api/runs", func(r chi.Router) {
		r.Post("/", s.handleSubmitRun)
		r.Get("/{runID}", s.handleGetRun)
	})

	r.Post("/api/search", s.handleSearch)

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
