package simcore

import (
	"testing"
)

// These mirror the six concrete end-to-end scenarios in spec.md §8 verbatim.

func findSample(t *testing.T, samples []sample, requestType string) sample {
	t.Helper()
	for _, s := range samples {
		if s.requestType == requestType {
			return s
		}
	}
	t.Fatalf("no sample recorded for request type %q", requestType)
	return sample{}
}

func TestScenario1_SoloTool(t *testing.T) {
	col := &recordingCollector{}
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{"solo": {CPU: 100}},
		DAGs: mapDAGs{"solo": {
			NodeTemplate: map[string]string{"n": "solo"},
			Predecessors: map[string][]string{},
		}},
		Metrics: col,
	})
	if err := e.Schedule("solo", 0); err != nil {
		t.Fatalf("Schedule() error: %v", err)
	}
	runUntilDone(t, e, 100)

	s := findSample(t, col.samples, "solo")
	if !approxEqual(s.latency, 1.0, 1e-9) {
		t.Errorf("latency = %v, want 1.0", s.latency)
	}
}

func TestScenario2_SequentialAB(t *testing.T) {
	col := &recordingCollector{}
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates: mapTemplates{
			"A": {CPU: 50},
			"B": {CPU: 30},
		},
		DAGs: mapDAGs{"seq": {
			NodeTemplate: map[string]string{"A": "A", "B": "B"},
			Predecessors: map[string][]string{"B": {"A"}},
		}},
		Metrics: col,
	})
	if err := e.Schedule("seq", 0); err != nil {
		t.Fatal(err)
	}
	runUntilDone(t, e, 100)

	s := findSample(t, col.samples, "seq")
	if !approxEqual(s.latency, 0.8, 1e-9) {
		t.Errorf("latency = %v, want 0.8", s.latency)
	}
}

func TestScenario3_TwoParallelRequestsSharingCPU(t *testing.T) {
	col := &recordingCollector{}
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates:  mapTemplates{"solo": {CPU: 100}},
		DAGs: mapDAGs{"solo": {
			NodeTemplate: map[string]string{"n": "solo"},
			Predecessors: map[string][]string{},
		}},
		Metrics: col,
	})
	if err := e.Schedule("solo", 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Schedule("solo", 0); err != nil {
		t.Fatal(err)
	}
	runUntilDone(t, e, 100)

	if len(col.samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(col.samples))
	}
	for _, s := range col.samples {
		if !approxEqual(s.latency, 2.0, 1e-9) {
			t.Errorf("latency = %v, want 2.0", s.latency)
		}
	}
}

func TestScenario4_MixedResourceContention(t *testing.T) {
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
	if err := e.Schedule("A", 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Schedule("B", 0); err != nil {
		t.Fatal(err)
	}
	runUntilDone(t, e, 100)

	a := findSample(t, col.samples, "A")
	b := findSample(t, col.samples, "B")
	if !approxEqual(a.latency, 1.8, 1e-9) {
		t.Errorf("A latency = %v, want 1.8", a.latency)
	}
	if !approxEqual(b.latency, 1.6, 1e-9) {
		t.Errorf("B latency = %v, want 1.6", b.latency)
	}
}

func TestScenario5_DiamondDAG(t *testing.T) {
	col := &recordingCollector{}
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates: mapTemplates{
			"R": {CPU: 10},
			"L": {CPU: 40},
			"M": {CPU: 40},
			"F": {CPU: 10},
		},
		DAGs: mapDAGs{"diamond": {
			NodeTemplate: map[string]string{"R": "R", "L": "L", "M": "M", "F": "F"},
			Predecessors: map[string][]string{
				"L": {"R"},
				"M": {"R"},
				"F": {"L", "M"},
			},
		}},
		Metrics: col,
	})
	if err := e.Schedule("diamond", 0); err != nil {
		t.Fatal(err)
	}
	runUntilDone(t, e, 100)

	s := findSample(t, col.samples, "diamond")
	if !approxEqual(s.latency, 1.0, 1e-9) {
		t.Errorf("latency = %v, want 1.0", s.latency)
	}
}

func TestScenario6_ArrivalDuringContention(t *testing.T) {
	col := &recordingCollector{}
	e := mustEngine(t, EngineConfig{
		Capacities: ResourceTable{CPU: 100},
		Templates: mapTemplates{
			"X": {CPU: 100},
			"Y": {CPU: 50},
		},
		DAGs: mapDAGs{
			"X": {NodeTemplate: map[string]string{"n": "X"}, Predecessors: map[string][]string{}},
			"Y": {NodeTemplate: map[string]string{"n": "Y"}, Predecessors: map[string][]string{}},
		},
		Metrics: col,
	})
	if err := e.Schedule("X", 0); err != nil {
		t.Fatal(err)
	}
	if err := e.Schedule("Y", 0.5); err != nil {
		t.Fatal(err)
	}
	runUntilDone(t, e, 100)

	x := findSample(t, col.samples, "X")
	y := findSample(t, col.samples, "Y")
	if !approxEqual(x.latency, 1.5, 1e-9) {
		t.Errorf("X latency = %v, want 1.5", x.latency)
	}
	if !approxEqual(y.latency, 1.0, 1e-9) {
		t.Errorf("Y latency = %v, want 1.0", y.latency)
	}
}
