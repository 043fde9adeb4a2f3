package api

import "time"

// RunRequest is the POST /api/runs request body: a TOML workload catalog
// (internal/dag's document format) plus arrival rates and run parameters.
type RunRequest struct {
	CatalogTOML   string      `json:"catalog_toml"`
	Classes       []ClassRate `json:"classes"`
	Horizon       float64     `json:"horizon"`
	Replicas      int         `json:"replicas"`
	MaxConcurrent int         `json:"max_concurrent"`
	Seed          uint64      `json:"seed"`
}

// ClassRate is one request type's arrival rate, as submitted over HTTP.
type ClassRate struct {
	RequestType string  `json:"request_type"`
	Rate        float64 `json:"rate"`
}

// SearchRequest is the POST /api/search request body.
type SearchRequest struct {
	RunRequest
	SLARequestType string  `json:"sla_request_type"`
	SLAPercentile  float64 `json:"sla_percentile"`
	SLAMaxLatency  float64 `json:"sla_max_latency"`
	MinRate        float64 `json:"min_rate"`
	MaxRate        float64 `json:"max_rate"`
	Tolerance      float64 `json:"tolerance"`
}

// PercentileSummary is one request type's latency distribution summary.
type PercentileSummary struct {
	RequestType string  `json:"request_type"`
	SampleCount int     `json:"sample_count"`
	P50         float64 `json:"p50"`
	P90         float64 `json:"p90"`
	P95         float64 `json:"p95"`
	P99         float64 `json:"p99"`
}

// RunRecord is the stored outcome of a submitted run, looked up by ID.
type RunRecord struct {
	ID          string              `json:"id"`
	SubmittedAt time.Time           `json:"submitted_at"`
	Replicas    int                 `json:"replicas"`
	Summaries   []PercentileSummary `json:"summaries"`
	Err         string              `json:"error,omitempty"`
}

// SearchResponse is the POST /api/search response body.
type SearchResponse struct {
	MaxSustainableRate float64 `json:"max_sustainable_rate"`
	Iterations         int     `json:"iterations"`
	Feasible           bool    `json:"feasible"`
}
