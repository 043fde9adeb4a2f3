package metrics

import "github.com/fairsim/fairsim/internal/simcore"

// MultiCollector fans a single engine's output out to several collectors —
// e.g. a per-request MemoryCollector (for an API response) alongside a
// process-lifetime PrometheusCollector (for /metrics scraping), since
// simcore.EngineConfig accepts exactly one Collector.
type MultiCollector struct {
	collectors []simcore.Collector
}

// NewMultiCollector fans out to every non-nil collector given.
func NewMultiCollector(collectors ...simcore.Collector) *MultiCollector {
	filtered := make([]simcore.Collector, 0, len(collectors))
	for _, c := range collectors {
		if c != nil {
			filtered = append(filtered, c)
		}
	}
	return &MultiCollector{collectors: filtered}
}

func (m *MultiCollector) RecordLatency(requestType string, arrival, finish, latency float64) {
	for _, c := range m.collectors {
		c.RecordLatency(requestType, arrival, finish, latency)
	}
}

func (m *MultiCollector) Snapshot(t float64, activeCount int, utilization map[simcore.ResourceKind]float64) {
	for _, c := range m.collectors {
		c.Snapshot(t, activeCount, utilization)
	}
}
