package metrics

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fairsim/fairsim/internal/simcore"
)

// Sample is the wire format appended to the Redis stream: enough to rebuild
// a Histogram entry on the reading side without replaying the whole
// simulation.
type Sample struct {
	RequestType string  `json:"request_type"`
	Arrival     float64 `json:"arrival"`
	Finish      float64 `json:"finish"`
	Latency     float64 `json:"latency"`
}

// RedisCollector appends every recorded latency sample to a Redis stream,
// for aggregating percentiles across many parallel experiment.Runner worker
// processes instead of one process's in-memory Histogram. Grounded in
// goadesign-goa-ai/registry/result_stream.go's use of
// github.com/redis/go-redis/v9 as the cross-process coordination substrate.
type RedisCollector struct {
	rdb    *redis.Client
	stream string
	ctx    context.Context

	// errs collects publish failures instead of panicking from inside a
	// simcore.Collector callback, which the engine's hot loop invokes
	// synchronously and cannot itself recover from a broken network call.
	errs []error
}

// NewRedisCollector constructs a collector that publishes to stream on rdb.
// ctx bounds every XAdd call issued from RecordLatency; callers typically
// pass a context scoped to the run, not context.Background(), so a stuck
// replica doesn't leak a blocked network call.
func NewRedisCollector(ctx context.Context, rdb *redis.Client, stream string) *RedisCollector {
	return &RedisCollector{rdb: rdb, stream: stream, ctx: ctx}
}

// RecordLatency implements simcore.Collector.
func (c *RedisCollector) RecordLatency(requestType string, arrival, finish, latency float64) {
	msg := Sample{RequestType: requestType, Arrival: arrival, Finish: finish, Latency: latency}
	data, err := json.Marshal(msg)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("metrics: marshal sample: %w", err))
		return
	}
	if err := c.rdb.XAdd(c.ctx, &redis.XAddArgs{
		Stream: c.stream,
		Values: map[string]interface{}{"sample": string(data)},
	}).Err(); err != nil {
		c.errs = append(c.errs, fmt.Errorf("metrics: publish sample: %w", err))
	}
}

// Snapshot implements simcore.Collector. Utilization snapshots are not
// published to the stream — only completed-request latencies are
// cross-worker-aggregated; per-step utilization stays process-local via
// MemoryCollector or PrometheusCollector.
func (c *RedisCollector) Snapshot(float64, int, map[simcore.ResourceKind]float64) {}

// Errs returns every publish error accumulated so far. Callers should check
// this after a run completes, since RecordLatency cannot itself return an
// error through the simcore.Collector interface.
func (c *RedisCollector) Errs() []error { return c.errs }

// ReadSamples reads up to count messages from the stream after lastID ("0"
// to read from the beginning), returning the samples and the new cursor, for
// an aggregator process merging cross-worker results into one Histogram.
func ReadSamples(ctx context.Context, rdb *redis.Client, stream, lastID string, count int64) ([]Sample, string, error) {
	entries, err := rdb.XRangeN(ctx, stream, "("+lastID, "+", count).Result()
	if err != nil {
		return nil, lastID, fmt.Errorf("metrics: read samples: %w", err)
	}
	out := make([]Sample, 0, len(entries))
	newLastID := lastID
	for _, e := range entries {
		raw, ok := e.Values["sample"].(string)
		if !ok {
			continue
		}
		var msg Sample
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		out = append(out, msg)
		newLastID = e.ID
	}
	return out, newLastID, nil
}

// MergeSamples replays a batch of cross-worker samples into a set of
// Histograms keyed by request type, for an aggregator process reconciling
// ReadSamples output from several RedisCollector writers.
func MergeSamples(dst map[string]*Histogram, batch []Sample) {
	for _, m := range batch {
		h, ok := dst[m.RequestType]
		if !ok {
			h = NewHistogram()
			dst[m.RequestType] = h
		}
		h.Observe(m.Latency)
	}
}
