package simcore

// Snapshot captures everything needed to resume a run byte-for-byte: the
// active set and remaining-work vectors, the event queue, and the request
// registry (spec.md §8, "splitting a run at any instant and resuming from
// persisted state... yields identical final latencies"). Persistence
// (JSON stored in SQLite) lives in internal/persistence; simcore only
// produces and consumes this in-memory structure.
type Snapshot struct {
	Now      float64
	Events   []Event
	Requests []RequestSnapshot
}

// RequestSnapshot captures one request's tool instances. Predecessor edges
// are not duplicated here — they are re-derived from the DAGProvider the
// resuming engine is constructed with, which must be the same provider (or
// an equivalent one) used by the original run.
type RequestSnapshot struct {
	ID       string
	Type     string
	Arrival  float64
	Finished bool
	Finish   float64
	Tools    []ToolSnapshot
}

// ToolSnapshot captures one tool instance's mutable state.
type ToolSnapshot struct {
	ID           string
	NodeName     string
	TemplateName string
	Status       ToolStatus
	Started      bool
	StartTime    float64
	Finished     bool
	FinishTime   float64
	Remaining    map[ResourceKind]float64
}

// Snapshot returns a deep copy of the engine's current state.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{Now: e.now}

	// EventQueue exposes no raw iteration; drain a scratch copy instead of
	// the live queue.
	scratch := *e.queue
	scratchHeap := make([]Event, len(scratch.heap))
	copy(scratchHeap, scratch.heap)
	scratch.heap = scratchHeap
	for {
		ev, ok := scratch.Pop()
		if !ok {
			break
		}
		snap.Events = append(snap.Events, ev)
	}

	for _, req := range e.requests {
		rs := RequestSnapshot{
			ID:       req.ID,
			Type:     req.Type,
			Arrival:  req.Arrival,
			Finished: req.Finished,
			Finish:   req.Finish,
		}
		for _, tool := range req.Tools {
			remaining := make(map[ResourceKind]float64, len(tool.Remaining))
			for k, v := range tool.Remaining {
				remaining[k] = v
			}
			rs.Tools = append(rs.Tools, ToolSnapshot{
				ID:           tool.ID,
				NodeName:     tool.NodeName,
				TemplateName: tool.TemplateName,
				Status:       tool.Status,
				Started:      tool.Started,
				StartTime:    tool.StartTime,
				Finished:     tool.Finished,
				FinishTime:   tool.FinishTime,
				Remaining:    remaining,
			})
		}
		snap.Requests = append(snap.Requests, rs)
	}
	return snap
}

// Restore replaces the engine's state with a previously captured Snapshot.
// The engine must be freshly constructed with NewEngine (empty queue, empty
// active set, empty registry) before calling Restore.
func (e *Engine) Restore(snap Snapshot) {
	e.now = snap.Now
	e.queue = NewEventQueue()
	for _, ev := range snap.Events {
		// Re-push preserving original relative order; EventQueue reassigns
		// Seq, but since events are pushed back in ascending (Time, Seq)
		// order (Snapshot drained them that way), the reassigned sequence
		// reproduces the same total order.
		e.queue.Push(ev)
	}

	e.requests = make(map[string]*Request, len(snap.Requests))
	e.active = make(map[string]*ToolInstance)
	for _, rs := range snap.Requests {
		req := &Request{
			ID:       rs.ID,
			Type:     rs.Type,
			Arrival:  rs.Arrival,
			Finished: rs.Finished,
			Finish:   rs.Finish,
			Tools:    make(map[string]*ToolInstance, len(rs.Tools)),
		}
		if dagSpec, err := e.dags.DAG(rs.Type); err == nil {
			req.successors = dagSpec.successors()
		}
		for _, ts := range rs.Tools {
			remaining := make(map[ResourceKind]float64, len(ts.Remaining))
			for k, v := range ts.Remaining {
				remaining[k] = v
			}
			tool := &ToolInstance{
				ID:           ts.ID,
				RequestID:    rs.ID,
				NodeName:     ts.NodeName,
				TemplateName: ts.TemplateName,
				Status:       ts.Status,
				Started:      ts.Started,
				StartTime:    ts.StartTime,
				Finished:     ts.Finished,
				FinishTime:   ts.FinishTime,
				Remaining:    remaining,
			}
			req.Tools[ts.NodeName] = tool
			if tool.Status == Running {
				e.active[tool.ID] = tool
			}
		}
		e.requests[req.ID] = req
	}
}
