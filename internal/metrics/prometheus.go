package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fairsim/fairsim/internal/simcore"
)

// PrometheusCollector exports request latencies and per-resource utilization
// through github.com/prometheus/client_golang, the teacher's own metrics
// stack (internal/infra/observability.go, internal/api/server.go mounting
// promhttp.Handler). Unlike the teacher's package-level promauto vars, these
// are instance fields registered against a caller-owned prometheus.Registry:
// internal/api.Server builds one PrometheusCollector for its lifetime and
// shares it, through MultiCollector, across every replica of every submitted
// run. The underlying vectors are safe for concurrent use.
type PrometheusCollector struct {
	latency     *prometheus.HistogramVec
	utilization *prometheus.GaugeVec
	active      prometheus.Gauge
}

// NewPrometheusCollector registers its metrics against reg and returns the
// collector. It panics if reg already holds these metrics, so call it once
// per registry.
func NewPrometheusCollector(reg *prometheus.Registry) *PrometheusCollector {
	c := &PrometheusCollector{
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fairsim",
			Subsystem: "request",
			Name:      "latency_seconds",
			Help:      "End-to-end request latency (finish - arrival), in simulated time units.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"request_type"}),
		utilization: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "fairsim",
			Subsystem: "resource",
			Name:      "utilization",
			Help:      "Per-resource utilization in {0, 1} at the last recorded snapshot.",
		}, []string{"resource"}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fairsim",
			Subsystem: "engine",
			Name:      "active_tools",
			Help:      "Number of tool instances in the active set at the last recorded snapshot.",
		}),
	}
	reg.MustRegister(c.latency, c.utilization, c.active)
	return c
}

// RecordLatency implements simcore.Collector.
func (c *PrometheusCollector) RecordLatency(requestType string, arrival, finish, latency float64) {
	c.latency.WithLabelValues(requestType).Observe(latency)
}

// Snapshot implements simcore.Collector.
func (c *PrometheusCollector) Snapshot(t float64, activeCount int, utilization map[simcore.ResourceKind]float64) {
	c.active.Set(float64(activeCount))
	for kind, v := range utilization {
		c.utilization.WithLabelValues(kind.String()).Set(v)
	}
}
