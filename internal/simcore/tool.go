package simcore

// ToolTemplate describes, for each resource kind, the total work units a
// tool must complete on that resource before it is done. Zero (or an
// absent entry) means the tool does not touch that resource. Templates are
// supplied by the external TemplateProvider collaborator (provider.go) and
// are never mutated by the engine.
type ToolTemplate map[ResourceKind]float64

// Validate checks that no load is negative.
func (tt ToolTemplate) Validate() error {
	for k, v := range tt {
		if v < 0 {
			return &InvalidConfigError{Reason: "template load for " + k.String() + " is negative"}
		}
	}
	return nil
}

// clone returns an independent copy, used to initialize a ToolInstance's
// remaining-work vector from a shared template without aliasing it.
func (tt ToolTemplate) clone() map[ResourceKind]float64 {
	out := make(map[ResourceKind]float64, len(tt))
	for k, v := range tt {
		out[k] = v
	}
	return out
}

// ToolStatus is the lifecycle stage of one ToolInstance.
type ToolStatus int

const (
	Pending ToolStatus = iota
	Running
	Completed
)

func (s ToolStatus) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// ToolInstance is the per-request runtime state of one DAG node. Tools hold
// their owning request's identity, not a pointer to the Request itself —
// the request arena resolves that identity through the engine's request
// registry, which avoids the request->tool->request ownership cycle (see
// SPEC_FULL.md §11, "Request→tool back-reference avoidance").
type ToolInstance struct {
	ID           string
	RequestID    string
	NodeName     string
	TemplateName string

	Status ToolStatus

	Started    bool
	StartTime  float64
	Finished   bool
	FinishTime float64

	Remaining map[ResourceKind]float64
}

// newToolInstance materializes a pending tool instance from its template.
// While pending, remaining work equals the template's load for every
// resource, per the tool-instance invariants in spec.md §3.
func newToolInstance(id, requestID, nodeName, templateName string, tmpl ToolTemplate) *ToolInstance {
	return &ToolInstance{
		ID:           id,
		RequestID:    requestID,
		NodeName:     nodeName,
		TemplateName: templateName,
		Status:       Pending,
		Remaining:    tmpl.clone(),
	}
}

// isExhausted reports whether every resource's remaining work is within
// tolerance of zero — the condition for the tool to transition to Completed.
func (t *ToolInstance) isExhausted(tolerance float64) bool {
	for _, rem := range t.Remaining {
		if rem > tolerance {
			return false
		}
	}
	return true
}
