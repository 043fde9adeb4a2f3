package simcore

// TemplateProvider is a pure lookup from tool-template name to its
// per-resource loads. Implemented by internal/dag; simcore only consumes
// the interface (spec.md §6, "Inputs consumed").
type TemplateProvider interface {
	Template(name string) (ToolTemplate, error)
}

// DAGProvider is a pure lookup from request type to its DAG shape.
// Implemented by internal/dag; simcore only consumes the interface.
type DAGProvider interface {
	DAG(requestType string) (DAGSpec, error)
}

// Collector receives the engine's two output streams (spec.md §6, "Outputs
// produced"): a per-completed-request latency sample, and an optional
// per-step utilization snapshot. Implemented by internal/metrics; simcore
// never logs or aggregates on its own.
type Collector interface {
	// RecordLatency reports one finished request: its type, arrival time,
	// finish time, and the resulting (finish - arrival) latency.
	RecordLatency(requestType string, arrival, finish, latency float64)

	// Snapshot reports engine state at a point in simulated time: the
	// number of active tools, and per-resource utilization in {0, 1} (spec
	// §6: fair-share always allocates all capacity when a consumer exists,
	// so the 0/1 formulation is exact for this design).
	Snapshot(t float64, activeCount int, utilization map[ResourceKind]float64)
}

// NopCollector discards everything. Useful as a default or in tests that
// only care about engine termination, not reported metrics.
type NopCollector struct{}

func (NopCollector) RecordLatency(string, float64, float64, float64)       {}
func (NopCollector) Snapshot(float64, int, map[ResourceKind]float64) {}
