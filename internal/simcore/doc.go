// Package simcore implements the discrete-event, fair-share simulation
// engine for multi-agent DAG workloads.
//
// The package has ZERO infrastructure imports — no config parsing, no
// persistence, no HTTP, no CLI — mirroring the "innermost ring" discipline
// the rest of this repository borrows from internal/domain in the teacher
// codebase this project grew out of. Everything simcore needs from the
// outside world (tool templates, DAG shapes, metrics reporting) arrives
// through the small interfaces in provider.go.
//
// The core idea: at every scheduling event, the set of running tools and
// therefore each tool's share of every resource it touches can change. The
// engine never pre-schedules a completion; it recomputes the next
// resource-exhaustion instant from live state at every step (see
// fairshare.go), then advances simulated time in closed form since
// remaining-work trajectories are piecewise linear between events.
package simcore
