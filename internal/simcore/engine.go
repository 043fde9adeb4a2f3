package simcore

import (
	"context"
	"fmt"
)

// EngineConfig configures a simulation engine instance.
type EngineConfig struct {
	Capacities ResourceTable
	Templates  TemplateProvider
	DAGs       DAGProvider
	Metrics    Collector // defaults to NopCollector if nil

	// Tolerance is the absolute tolerance below which remaining work is
	// treated as zero (spec.md §4.4). Defaults to DefaultTolerance.
	Tolerance float64

	// NewID generates unique entity identifiers (request IDs, tool instance
	// IDs). It is required: NewEngine rejects a nil NewID, and there is no
	// built-in default (kept injectable so tests are deterministic without
	// pulling a UUID dependency into the pure core).
	NewID func() string

	// SnapshotEvery, if > 0, invokes Metrics.Snapshot every time simulated
	// time advances by at least this much since the last snapshot (spec.md
	// §6, "optional snapshot hook"). Zero disables per-step snapshots.
	SnapshotEvery float64
}

// Engine is the discrete-event simulation engine: the event queue, request
// registry, active set, and fair-share scheduler described in spec.md §2-§5.
// One Engine instance owns one run's state single-threadedly; it is not
// safe for concurrent use from multiple goroutines (spec.md §5).
type Engine struct {
	capacities ResourceTable
	templates  TemplateProvider
	dags       DAGProvider
	metrics    Collector
	tolerance  float64
	newID      func() string

	queue    *EventQueue
	requests map[string]*Request
	active   map[string]*ToolInstance

	now float64

	snapshotEvery float64
	lastSnapshot  float64
}

// TerminationReason explains why Run returned without error.
type TerminationReason int

const (
	// ReasonDeadline means simulated time reached the run's "until" bound.
	ReasonDeadline TerminationReason = iota
	// ReasonExhausted means the queue and active set both drained before
	// "until" — a benign termination, not an error (spec.md §7).
	ReasonExhausted
)

// RunResult reports how a Run call terminated.
type RunResult struct {
	Reason  TerminationReason
	EndTime float64
}

// NewEngine validates the configuration and constructs an Engine. Returns an
// *InvalidConfigError for the configuration faults it can see (spec.md §7):
// non-positive capacity, a missing Templates/DAGs provider, or a missing
// NewID generator. DAG shapes and template references are not checked here;
// Run returns an *InvalidConfigError for them when it handles an arrival of
// the offending request type.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Capacities.Validate(); err != nil {
		return nil, err
	}
	if cfg.Templates == nil {
		return nil, &InvalidConfigError{Reason: "no TemplateProvider configured"}
	}
	if cfg.DAGs == nil {
		return nil, &InvalidConfigError{Reason: "no DAGProvider configured"}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NopCollector{}
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	if cfg.NewID == nil {
		return nil, &InvalidConfigError{Reason: "no NewID generator configured"}
	}

	return &Engine{
		capacities:    cfg.Capacities,
		templates:     cfg.Templates,
		dags:          cfg.DAGs,
		metrics:       cfg.Metrics,
		tolerance:     cfg.Tolerance,
		newID:         cfg.NewID,
		queue:         NewEventQueue(),
		requests:      make(map[string]*Request),
		active:        make(map[string]*ToolInstance),
		snapshotEvery: cfg.SnapshotEvery,
	}, nil
}

// Now returns the engine's current simulated time.
func (e *Engine) Now() float64 { return e.now }

// Schedule pushes a request-arrival start event into the queue. Arrival
// events supplied by an external producer must have timestamps
// monotonically non-decreasing within that producer (spec.md §6); Schedule
// additionally rejects an event timestamped strictly before the engine's
// current time, an invariant violation per spec.md §7.
func (e *Engine) Schedule(requestType string, at float64) error {
	if at < e.now {
		return invariant("arrival("+requestType+")", at, "event timestamp is before current simulated time")
	}
	e.queue.Push(Event{
		Kind:        EventArrival,
		Time:        at,
		RequestID:   e.newID(),
		RequestType: requestType,
	})
	return nil
}

// Run drives the loop (spec.md §4.5) until the queue and active set both
// drain, or the next event would fall after "until"; in that case progress
// is accounted up to "until" and simulated time stops there, so a later Run
// (or a Snapshot taken now) resumes from exactly that instant. It returns a non-nil error
// only for invariant violations — exhaustion and reaching the deadline are
// both benign and reported via RunResult.
func (e *Engine) Run(ctx context.Context, until float64) (RunResult, error) {
	for {
		if err := ctx.Err(); err != nil {
			return RunResult{Reason: ReasonDeadline, EndTime: e.now}, err
		}

		tStart := posInf
		hasStart := !e.queue.Empty()
		if hasStart {
			peeked, _ := e.queue.Peek()
			tStart = peeked.Time
		}

		cand, hasCompletion := completionSearch(e.capacities, e.active, e.now, e.tolerance)
		tComplete := posInf
		if hasCompletion {
			tComplete = cand.at
		}

		// An active tool with nothing left on any resource (e.g. one that
		// reached zero at the same instant as the tool just completed) is due
		// to complete now; completionSearch never reports it.
		var exhausted *ToolInstance
		for _, id := range sortedToolIDs(e.active) {
			if e.active[id].isExhausted(e.tolerance) {
				exhausted = e.active[id]
				break
			}
		}
		if exhausted != nil {
			hasCompletion = true
			tComplete = e.now
		}

		if !hasCompletion && anyActiveHasPositiveRemaining(e.active, e.tolerance) {
			// Active tools exist, every one of them still has work left
			// (none is merely awaiting removal after exhaustion), and yet
			// none has a reachable exhaustion time — e.g. a resource's
			// capacity collapsed to zero. The design names this an
			// invariant violation (spec.md §7): "completion search returns
			// +Inf while the active set is non-empty and all have positive
			// remaining".
			return RunResult{Reason: ReasonDeadline, EndTime: e.now}, invariant("engine", e.now, "completion search found no reachable exhaustion with a non-empty active set")
		}

		tNext := tStart
		if tComplete < tNext {
			tNext = tComplete
		}

		if !hasStart && !hasCompletion {
			return RunResult{Reason: ReasonExhausted, EndTime: e.now}, nil
		}
		if tNext > until {
			if until > e.now {
				if err := accountProgress(e.capacities, e.active, until-e.now, e.now, e.tolerance); err != nil {
					return RunResult{Reason: ReasonDeadline, EndTime: e.now}, err
				}
				e.now = until
			}
			return RunResult{Reason: ReasonDeadline, EndTime: e.now}, nil
		}

		if tNext < e.now {
			return RunResult{Reason: ReasonDeadline, EndTime: e.now}, invariant("engine", tNext, "next event precedes current simulated time")
		}

		delta := tNext - e.now
		if err := accountProgress(e.capacities, e.active, delta, e.now, e.tolerance); err != nil {
			return RunResult{Reason: ReasonDeadline, EndTime: e.now}, err
		}
		e.now = tNext

		// Tie rule: start wins (spec.md §4.5). An instantaneous arrival
		// sharing this instant with a completion is processed first.
		if hasStart && tStart <= tComplete {
			ev, _ := e.queue.Pop()
			if err := e.dispatch(ev); err != nil {
				return RunResult{Reason: ReasonDeadline, EndTime: e.now}, err
			}
		} else if exhausted != nil {
			if err := e.completeTool(exhausted); err != nil {
				return RunResult{Reason: ReasonDeadline, EndTime: e.now}, err
			}
		} else {
			if err := e.applyCompletion(cand.tool, cand.res); err != nil {
				return RunResult{Reason: ReasonDeadline, EndTime: e.now}, err
			}
		}

		e.maybeSnapshot()
	}
}

// anyActiveHasPositiveRemaining reports whether at least one active tool
// still has remaining work on some resource. A tool that is already
// exhausted is awaiting removal via completeTool, not evidence of a stuck
// completion search.
func anyActiveHasPositiveRemaining(active map[string]*ToolInstance, tolerance float64) bool {
	for _, tool := range active {
		if !tool.isExhausted(tolerance) {
			return true
		}
	}
	return false
}

func (e *Engine) maybeSnapshot() {
	if e.snapshotEvery <= 0 {
		return
	}
	if e.now-e.lastSnapshot < e.snapshotEvery {
		return
	}
	e.lastSnapshot = e.now
	e.metrics.Snapshot(e.now, len(e.active), utilizationSnapshot(e.active, e.tolerance))
}

func (e *Engine) dispatch(ev Event) error {
	switch ev.Kind {
	case EventArrival:
		return e.handleArrival(ev)
	case EventToolStart:
		return e.handleToolStart(ev)
	default:
		return invariant("event", ev.Time, fmt.Sprintf("unknown event kind %d", ev.Kind))
	}
}

// handleArrival materializes a request's DAG as pending tool instances and
// enqueues a tool-start event for every root (spec.md §4.6).
func (e *Engine) handleArrival(ev Event) error {
	dagSpec, err := e.dags.DAG(ev.RequestType)
	if err != nil {
		return &InvalidConfigError{Reason: "no DAG for request type " + ev.RequestType + ": " + err.Error()}
	}
	if err := dagSpec.validate(e.templates); err != nil {
		return err
	}

	req := &Request{
		ID:         ev.RequestID,
		Type:       ev.RequestType,
		Arrival:    ev.Time,
		Tools:      make(map[string]*ToolInstance, len(dagSpec.NodeTemplate)),
		successors: dagSpec.successors(),
	}

	for node, tmplName := range dagSpec.NodeTemplate {
		tmpl, err := e.templates.Template(tmplName)
		if err != nil {
			return &InvalidConfigError{Reason: "missing template " + tmplName + " for node " + node}
		}
		req.Tools[node] = newToolInstance(e.newID(), req.ID, node, tmplName, tmpl)
	}

	e.requests[req.ID] = req

	for _, root := range dagSpec.roots() {
		e.queue.Push(Event{
			Kind:      EventToolStart,
			Time:      e.now,
			RequestID: req.ID,
			NodeName:  root,
		})
	}
	return nil
}

// handleToolStart transitions a pending, predecessor-complete tool instance
// to running (spec.md §4.7).
func (e *Engine) handleToolStart(ev Event) error {
	req, ok := e.requests[ev.RequestID]
	if !ok {
		return invariant(ev.RequestID, ev.Time, "tool-start for unknown request")
	}
	tool, ok := req.Tools[ev.NodeName]
	if !ok {
		return invariant(ev.NodeName, ev.Time, "tool-start for unknown DAG node")
	}
	if tool.Status != Pending {
		return invariant(tool.ID, ev.Time, "tool-start dispatched for a tool not in pending status")
	}

	dagSpec, err := e.dags.DAG(req.Type)
	if err != nil {
		return &InvalidConfigError{Reason: "DAG for request type " + req.Type + " became unavailable mid-run"}
	}
	for _, pred := range dagSpec.Predecessors[ev.NodeName] {
		if req.Tools[pred].Status != Completed {
			return invariant(tool.ID, ev.Time, "tool-start dispatched with an uncompleted predecessor "+pred)
		}
	}

	tool.Status = Running
	tool.Started = true
	tool.StartTime = ev.Time
	e.active[tool.ID] = tool

	if tool.isExhausted(e.tolerance) {
		// Zero-load tool (spec.md §8): every resource is already within
		// tolerance of zero at start, so completionSearch will never
		// produce a candidate for it. Complete it now, at the same
		// instant it started.
		return e.completeTool(tool)
	}
	return nil
}

// completeTool finishes tool at the current simulated time (spec.md §4.8):
// marks it Completed, removes it from the active set, walks the DAG for
// newly eligible successors, and — if the request is now fully done —
// records a latency sample through the metrics collaborator.
func (e *Engine) completeTool(tool *ToolInstance) error {
	tool.Status = Completed
	tool.Finished = true
	tool.FinishTime = e.now
	delete(e.active, tool.ID)

	req, ok := e.requests[tool.RequestID]
	if !ok {
		return invariant(tool.RequestID, e.now, "completed tool references unknown request")
	}

	dagSpec, err := e.dags.DAG(req.Type)
	if err != nil {
		return &InvalidConfigError{Reason: "DAG for request type " + req.Type + " became unavailable mid-run"}
	}
	for _, succ := range req.eligibleSuccessors(dagSpec, tool.NodeName) {
		e.queue.Push(Event{
			Kind:      EventToolStart,
			Time:      e.now,
			RequestID: req.ID,
			NodeName:  succ,
		})
	}

	if req.allCompleted() {
		req.Finished = true
		req.Finish = e.now
		latency := req.Finish - req.Arrival
		e.metrics.RecordLatency(req.Type, req.Arrival, req.Finish, latency)
	}
	return nil
}

// applyCompletion handles the synthesized exhaustion of one (tool, resource)
// pair (spec.md §4.8): zeroes the resource exactly, and if every resource is
// now exhausted, completes the tool.
func (e *Engine) applyCompletion(tool *ToolInstance, res ResourceKind) error {
	tool.Remaining[res] = 0

	if !tool.isExhausted(e.tolerance) {
		// Only one resource became zero; the tool stays active and simply
		// contributes to fewer denominators going forward. No event is
		// emitted — the next completion search picks the new next instant.
		return nil
	}

	return e.completeTool(tool)
}
