package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fairsim/fairsim/internal/arrival"
	"github.com/fairsim/fairsim/internal/dag"
	"github.com/fairsim/fairsim/internal/experiment"
	"github.com/fairsim/fairsim/internal/metrics"
)

func (req RunRequest) toWorkload() (experiment.Workload, error) {
	cat, err := dag.LoadTOML(req.CatalogTOML)
	if err != nil {
		return experiment.Workload{}, err
	}
	classes := make([]arrival.ClassRate, len(req.Classes))
	for i, c := range req.Classes {
		classes[i] = arrival.ClassRate{RequestType: c.RequestType, Rate: c.Rate}
	}
	return experiment.Workload{
		Capacities: cat.Capacities(),
		Catalog:    cat,
		Classes:    classes,
	}, nil
}

func summariesFrom(collector *metrics.MemoryCollector) []PercentileSummary {
	var out []PercentileSummary
	for _, reqType := range collector.RequestTypes() {
		p50, _ := collector.Percentile(reqType, 50)
		p90, _ := collector.Percentile(reqType, 90)
		p95, _ := collector.Percentile(reqType, 95)
		p99, _ := collector.Percentile(reqType, 99)
		out = append(out, PercentileSummary{
			RequestType: reqType,
			SampleCount: collector.Count(reqType),
			P50:         p50, P90: p90, P95: p95, P99: p99,
		})
	}
	return out
}

// handleSubmitRun runs a workload to completion and returns its latency
// summary. fairsim replicas finish in milliseconds to low seconds for
// reasonable horizons, so this runs synchronously rather than returning a
// pending/poll handle.
func (s *Server) handleSubmitRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	wl, err := req.toWorkload()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid catalog: "+err.Error())
		return
	}

	runCfg := experiment.Config{Replicas: req.Replicas, MaxConcurrent: req.MaxConcurrent, Horizon: req.Horizon}
	runner := experiment.NewRunner(runCfg)
	collector := metrics.NewMemoryCollector()

	var sink metrics.Collector = collector
	if s.promColl != nil {
		sink = metrics.NewMultiCollector(collector, s.promColl)
	}
	results := runner.Run(r.Context(), wl, sink, req.Seed)

	record := &RunRecord{
		ID:          uuid.NewString(),
		SubmittedAt: time.Now(),
		Replicas:    len(results),
		Summaries:   summariesFrom(collector),
	}
	for _, res := range results {
		if res.Err != nil {
			record.Err = res.Err.Error()
			break
		}
	}

	s.mu.Lock()
	s.runs[record.ID] = record
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveResults(record.ID, collector); err != nil {
			s.logger.Error("persisting experiment results", "run_id", record.ID, "error", err)
		}
	}

	status := http.StatusOK
	if record.Err != "" {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, record)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	s.mu.Lock()
	record, ok := s.runs[runID]
	s.mu.Unlock()
	if ok {
		writeJSON(w, http.StatusOK, record)
		return
	}

	if s.store != nil {
		rows, err := s.store.LoadResults(runID)
		if err == nil && len(rows) > 0 {
			summaries := make([]PercentileSummary, len(rows))
			for i, row := range rows {
				summaries[i] = PercentileSummary{
					RequestType: row.RequestType, SampleCount: row.SampleCount,
					P50: row.P50, P90: row.P90, P95: row.P95, P99: row.P99,
				}
			}
			writeJSON(w, http.StatusOK, RunRecord{ID: runID, Summaries: summaries})
			return
		}
	}

	writeError(w, http.StatusNotFound, "run not found: "+runID)
}

// handleSearch runs experiment.BinarySearch for the submitted SLA and
// returns the maximum sustainable rate.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	wl, err := req.RunRequest.toWorkload()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid catalog: "+err.Error())
		return
	}

	runCfg := experiment.Config{Replicas: req.Replicas, MaxConcurrent: req.MaxConcurrent, Horizon: req.Horizon}
	runner := experiment.NewRunner(runCfg)

	sla := experiment.SLA{RequestType: req.SLARequestType, Percentile: req.SLAPercentile, MaxLatency: req.SLAMaxLatency}
	searchCfg := experiment.SearchConfig{MinRate: req.MinRate, MaxRate: req.MaxRate, Tolerance: req.Tolerance, BaseSeed: req.Seed}

	result, err := experiment.BinarySearch(r.Context(), runner, wl, sla, searchCfg)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		MaxSustainableRate: result.MaxSustainableRate,
		Iterations:         result.Iterations,
		Feasible:           result.Feasible,
	})
}
