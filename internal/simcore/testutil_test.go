package simcore

import (
	"context"
	"fmt"
	"testing"
)

// mapTemplates is a minimal TemplateProvider for tests.
type mapTemplates map[string]ToolTemplate

func (m mapTemplates) Template(name string) (ToolTemplate, error) {
	tmpl, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no such template %q", name)
	}
	return tmpl, nil
}

// mapDAGs is a minimal DAGProvider for tests.
type mapDAGs map[string]DAGSpec

func (m mapDAGs) DAG(requestType string) (DAGSpec, error) {
	spec, ok := m[requestType]
	if !ok {
		return DAGSpec{}, fmt.Errorf("no such DAG %q", requestType)
	}
	return spec, nil
}

// sample is one recorded completed-request latency.
type sample struct {
	requestType       string
	arrival, finish   float64
	latency           float64
}

// recordingCollector captures every RecordLatency call for assertions.
type recordingCollector struct {
	samples []sample
}

func (c *recordingCollector) RecordLatency(requestType string, arrival, finish, latency float64) {
	c.samples = append(c.samples, sample{requestType, arrival, finish, latency})
}

func (c *recordingCollector) Snapshot(float64, int, map[ResourceKind]float64) {}

// sequentialIDs returns a deterministic NewID generator for test
// reproducibility: id-0, id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		id := fmt.Sprintf("id-%d", n)
		n++
		return id
	}
}

func mustEngine(t *testing.T, cfg EngineConfig) *Engine {
	t.Helper()
	if cfg.NewID == nil {
		cfg.NewID = sequentialIDs()
	}
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine() error: %v", err)
	}
	return e
}

func approxEqual(a, b, tolerance float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func runUntilDone(t *testing.T, e *Engine, until float64) RunResult {
	t.Helper()
	res, err := e.Run(context.Background(), until)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	return res
}
