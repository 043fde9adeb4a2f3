package simcore

import (
	"context"
	"fmt"
	"testing"
)

func TestNewEngine_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewEngine(EngineConfig{
		Capacities: ResourceTable{CPU: 0},
		Templates:  mapTemplates{},
		DAGs:       mapDAGs{},
		NewID:      sequentialIDs(),
	})
	if err == nil {
		t.Fatal("expected an InvalidConfigError")
	}
	if _, ok := err.(*InvalidConfigError); !ok {
		t.Fatalf("error = %T, want *InvalidConfigError", err)
	}
}

func TestNewEngine_RequiresProviders(t *testing.T) {
	_, err := NewEngine(EngineConfig{Capacities: ResourceTable{CPU: 1}, NewID: sequentialIDs()})
	if err == nil {
		t.Fatal("expected an InvalidConfigError for missing providers")
	}
}

func TestDAGSpec_RejectsCycle(t *testing.T) {
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{"x": {CPU: 1}},
		DAGs: mapDAGs{"cyclic": {
			NodeTemplate: map[string]string{"a": "x", "b": "x"},
			Predecessors: map[string][]string{"a": {"b"}, "b": {"a"}},
		}},
	})
	err := e.Schedule("cyclic", 0)
	if err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	_, err = e.Run(context.Background(), 100)
	if err == nil {
		t.Fatal("expected a cycle to be rejected as InvalidConfig")
	}
	if _, ok := err.(*InvalidConfigError); !ok {
		t.Fatalf("error = %T, want *InvalidConfigError", err)
	}
}

func TestDAGSpec_RejectsUnknownPredecessor(t *testing.T) {
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{"x": {CPU: 1}},
		DAGs: mapDAGs{"bad": {
			NodeTemplate: map[string]string{"a": "x"},
			Predecessors: map[string][]string{"a": {"ghost"}},
		}},
	})
	if err := e.Schedule("bad", 0); err != nil {
		t.Fatal(err)
	}
	_, err := e.Run(context.Background(), 100)
	if _, ok := err.(*InvalidConfigError); !ok {
		t.Fatalf("error = %v (%T), want *InvalidConfigError", err, err)
	}
}

func TestDAGSpec_RejectsMissingTemplate(t *testing.T) {
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{},
		DAGs: mapDAGs{"bad": {
			NodeTemplate: map[string]string{"a": "ghost-template"},
			Predecessors: map[string][]string{},
		}},
	})
	if err := e.Schedule("bad", 0); err != nil {
		t.Fatal(err)
	}
	_, err := e.Run(context.Background(), 100)
	if _, ok := err.(*InvalidConfigError); !ok {
		t.Fatalf("error = %v (%T), want *InvalidConfigError", err, err)
	}
}

func TestZeroLoadTool_CompletesInstantly(t *testing.T) {
	col := &recordingCollector{}
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{"noop": {CPU: 0}},
		DAGs: mapDAGs{"noop": {
			NodeTemplate: map[string]string{"n": "noop"},
			Predecessors: map[string][]string{},
		}},
		Metrics: col,
	})
	if err := e.Schedule("noop", 3); err != nil {
		t.Fatal(err)
	}
	runUntilDone(t, e, 100)

	s := findSample(t, col.samples, "noop")
	if !approxEqual(s.latency, 0, 1e-9) {
		t.Errorf("latency = %v, want 0", s.latency)
	}
	if !approxEqual(s.arrival, s.finish, 1e-9) {
		t.Errorf("arrival %v != finish %v for a zero-load tool", s.arrival, s.finish)
	}
}

func TestDeepSequentialDAG_NoContention(t *testing.T) {
	const n = 6
	const load = 25.0
	const capacity = 100.0

	templates := mapTemplates{}
	nodeTemplate := map[string]string{}
	preds := map[string][]string{}
	var prev string
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("t%d", i)
		templates[name] = ToolTemplate{CPU: load}
		nodeTemplate[name] = name
		if prev != "" {
			preds[name] = []string{prev}
		}
		prev = name
	}

	col := &recordingCollector{}
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: capacity},
		Templates:  templates,
		DAGs:       mapDAGs{"chain": {NodeTemplate: nodeTemplate, Predecessors: preds}},
		Metrics:    col,
	})
	if err := e.Schedule("chain", 0); err != nil {
		t.Fatal(err)
	}
	runUntilDone(t, e, 1000)

	s := findSample(t, col.samples, "chain")
	want := float64(n) * load / capacity
	if !approxEqual(s.latency, want, 1e-9) {
		t.Errorf("latency = %v, want %v", s.latency, want)
	}
}

func TestToolStart_InvariantViolationOnUncompletedPredecessor(t *testing.T) {
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{"x": {CPU: 10}},
		DAGs: mapDAGs{"seq": {
			NodeTemplate: map[string]string{"a": "x", "b": "x"},
			Predecessors: map[string][]string{"b": {"a"}},
		}},
	})
	if err := e.Schedule("seq", 0); err != nil {
		t.Fatal(err)
	}
	// Manually smuggle in a premature tool-start for "b" before "a" finishes.
	if err := e.handleArrival(Event{Kind: EventArrival, RequestID: "forced", RequestType: "seq", Time: 0}); err != nil {
		t.Fatal(err)
	}
	err := e.handleToolStart(Event{Kind: EventToolStart, RequestID: "forced", NodeName: "b", Time: 0})
	if err == nil {
		t.Fatal("expected an invariant violation for starting a tool with an uncompleted predecessor")
	}
	if _, ok := err.(*InvariantViolationError); !ok {
		t.Fatalf("error = %T, want *InvariantViolationError", err)
	}
}

func TestRun_IdempotentOnEmptyQueue(t *testing.T) {
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{},
		DAGs:       mapDAGs{},
	})
	res, err := e.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Reason != ReasonExhausted {
		t.Errorf("Reason = %v, want ReasonExhausted", res.Reason)
	}
	if e.Now() != 0 {
		t.Errorf("Now() = %v, want 0 after a no-op run", e.Now())
	}

	// Running again changes nothing further.
	res2, err := e.Run(context.Background(), 100)
	if err != nil {
		t.Fatalf("second Run() error: %v", err)
	}
	if res2 != res {
		t.Errorf("second Run() = %+v, want %+v (idempotent)", res2, res)
	}
}

func TestRun_StopsAtDeadline(t *testing.T) {
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{"slow": {CPU: 100}},
		DAGs: mapDAGs{"slow": {
			NodeTemplate: map[string]string{"n": "slow"},
			Predecessors: map[string][]string{},
		}},
	})
	if err := e.Schedule("slow", 0); err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background(), 0.5)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if res.Reason != ReasonDeadline {
		t.Errorf("Reason = %v, want ReasonDeadline", res.Reason)
	}
	if !approxEqual(e.Now(), 0.5, 1e-9) {
		t.Errorf("Now() = %v, want 0.5", e.Now())
	}
}

func TestDeterminism_SameInputsSameLatencies(t *testing.T) {
	build := func() (*Engine, *recordingCollector) {
		col := &recordingCollector{}
		e := mustEngine(t, EngineConfig{
			Capacities: ResourceTable{CPU: 100, Network: 100},
			Templates: mapTemplates{
				"A": {CPU: 100, Network: 50},
				"B": {CPU: 80},
			},
			DAGs: mapDAGs{
				"A": {NodeTemplate: map[string]string{"n": "A"}, Predecessors: map[string][]string{}},
				"B": {NodeTemplate: map[string]string{"n": "B"}, Predecessors: map[string][]string{}},
			},
			Metrics: col,
		})
		return e, col
	}

	e1, c1 := build()
	_ = e1.Schedule("A", 0)
	_ = e1.Schedule("B", 0)
	runUntilDone(t, e1, 100)

	e2, c2 := build()
	_ = e2.Schedule("A", 0)
	_ = e2.Schedule("B", 0)
	runUntilDone(t, e2, 100)

	if len(c1.samples) != len(c2.samples) {
		t.Fatalf("sample counts differ: %d vs %d", len(c1.samples), len(c2.samples))
	}
	for i := range c1.samples {
		if !approxEqual(c1.samples[i].latency, c2.samples[i].latency, 1e-9) {
			t.Errorf("sample %d latency differs: %v vs %v", i, c1.samples[i].latency, c2.samples[i].latency)
		}
	}
}

func TestSnapshotResume_YieldsIdenticalLatencies(t *testing.T) {
	buildConfig := func(col Collector) EngineConfig {
		return EngineConfig{
			Capacities: ResourceTable{CPU: 100},
			Templates: mapTemplates{
				"R": {CPU: 10}, "L": {CPU: 40}, "M": {CPU: 40}, "F": {CPU: 10},
			},
			DAGs: mapDAGs{"diamond": {
				NodeTemplate: map[string]string{"R": "R", "L": "L", "M": "M", "F": "F"},
				Predecessors: map[string][]string{"L": {"R"}, "M": {"R"}, "F": {"L", "M"}},
			}},
			Metrics: col,
			NewID:   sequentialIDs(),
		}
	}

	// Baseline: uninterrupted run.
	baseline := &recordingCollector{}
	e := mustEngine(t, buildConfig(baseline))
	_ = e.Schedule("diamond", 0)
	runUntilDone(t, e, 100)

	// Split: run to t=0.5 (mid-flight on L/M), snapshot, resume on a fresh
	// engine, finish the run.
	split := &recordingCollector{}
	e1 := mustEngine(t, buildConfig(split))
	_ = e1.Schedule("diamond", 0)
	if _, err := e1.Run(context.Background(), 0.5); err != nil {
		t.Fatalf("Run() to split point error: %v", err)
	}
	snap := e1.Snapshot()

	e2 := mustEngine(t, buildConfig(split))
	e2.Restore(snap)
	if _, err := e2.Run(context.Background(), 100); err != nil {
		t.Fatalf("Run() after restore error: %v", err)
	}

	if len(baseline.samples) != 1 || len(split.samples) != 1 {
		t.Fatalf("expected 1 sample each, got baseline=%d split=%d", len(baseline.samples), len(split.samples))
	}
	if !approxEqual(baseline.samples[0].latency, split.samples[0].latency, 1e-9) {
		t.Errorf("split-run latency = %v, want %v (uninterrupted)", split.samples[0].latency, baseline.samples[0].latency)
	}
}
