// Package observability sets up fairsim's structured logging: internal/cli
// builds the logger for `fairsim serve` and hands it to internal/api's
// Server; internal/experiment does no logging. simcore stays
// a pure core (spec.md §7) and never imports this package directly — the
// engine's collector interface is how it reports outward instead.
//
// The context-propagated request ID follows the teacher's
// internal/infra/observability WithTraceID/traceIDFromContext pattern,
// adapted to carry a request ID through log/slog fields rather than through
// an in-memory span tracer (internal/metrics.Histogram already reuses that
// tracer's ring-buffer idea for latency sampling).
package observability

import (
	"context"
	"log/slog"
	"os"
)

type contextKey string

const requestIDKey contextKey = "fairsim-request-id"

// NewLogger builds the process-wide structured logger. Text handler for
// interactive CLI use, JSON for anything piped or run under a service
// manager — selected by jsonOutput rather than guessing from a TTY check,
// so the caller decides explicitly.
func NewLogger(jsonOutput bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// WithRequestID returns a context carrying requestID for later retrieval by
// RequestIDFromContext, and for attaching to log records via WithContext.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext returns the request ID stored by WithRequestID, or
// "" if none was set.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithContext returns a logger with the context's request ID (if any)
// attached as a field, for call sites that log from inside a handler or
// replica goroutine and want correlation without threading a request ID
// parameter everywhere explicitly.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := RequestIDFromContext(ctx); id != "" {
		return logger.With("request_id", id)
	}
	return logger
}

// ReplicaFields builds the replica-index and seed field pair for a
// per-replica log line.
func ReplicaFields(replicaIndex int, seed uint64) []any {
	return []any{"replica", replicaIndex, "seed", seed}
}

// SimTimeField builds the field for logging about a point in simulated
// time, distinguishing it from wall-clock log timestamps.
func SimTimeField(simTime float64) any {
	return slog.Float64("sim_time", simTime)
}
