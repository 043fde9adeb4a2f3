package simcore

import "fmt"

// InvalidConfigError reports a configuration fault detected at engine
// construction or first use (spec.md §7): non-positive capacity, negative
// load, a DAG cycle, a missing template reference, or an unknown
// predecessor node name.
type InvalidConfigError struct {
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return "invalid config: " + e.Reason
}

// InvariantViolationError reports a logic-invariant violation (spec.md §7):
// a programming defect, never a condition the engine attempts to recover
// from. It identifies the offending entity and the simulated timestamp at
// which the violation was detected.
type InvariantViolationError struct {
	Entity string
	Time   float64
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation at t=%.9f on %s: %s", e.Time, e.Entity, e.Reason)
}

func invariant(entity string, t float64, reason string) error {
	return &InvariantViolationError{Entity: entity, Time: t, Reason: reason}
}
