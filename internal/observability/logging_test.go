package observability

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestWithRequestID_RoundTrips(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromContext(ctx); got != "req-123" {
		t.Errorf("RequestIDFromContext() = %q, want req-123", got)
	}
}

func TestRequestIDFromContext_EmptyWhenUnset(t *testing.T) {
	if got := RequestIDFromContext(context.Background()); got != "" {
		t.Errorf("RequestIDFromContext() = %q, want empty", got)
	}
}

func TestWithContext_AttachesRequestIDField(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := WithRequestID(context.Background(), "req-abc")
	WithContext(ctx, logger).Info("starting replica")

	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-abc"`) {
		t.Errorf("log output missing request_id field: %s", out)
	}
}

func TestWithContext_NoFieldWhenNoRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithContext(context.Background(), logger).Info("no request id here")

	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("log output should not contain request_id field: %s", buf.String())
	}
}

func TestReplicaFields_PairsReplicaAndSeed(t *testing.T) {
	fields := ReplicaFields(3, 42)
	if len(fields) != 4 || fields[0] != "replica" || fields[1] != 3 || fields[2] != "seed" || fields[3] != uint64(42) {
		t.Errorf("ReplicaFields(3, 42) = %v, want [replica 3 seed 42]", fields)
	}
}

func TestNewLogger_JSONAndText(t *testing.T) {
	jsonLogger := NewLogger(true, slog.LevelInfo)
	if jsonLogger == nil {
		t.Fatal("NewLogger(json) returned nil")
	}
	textLogger := NewLogger(false, slog.LevelDebug)
	if textLogger == nil {
		t.Fatal("NewLogger(text) returned nil")
	}
}
