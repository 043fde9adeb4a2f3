package persistence

import (
	"fmt"

	"github.com/fairsim/fairsim/internal/metrics"
)

// ResultRow is one archived request-type percentile summary.
type ResultRow struct {
	RequestType string
	SampleCount int
	P50, P90, P95, P99 float64
}

// SaveResults archives one row per request type the collector recorded
// against runID. Unlike snapshots, results are append-only history, not an
// upsert target: a run recorded twice (e.g. re-analyzed with a wider
// percentile set) gets a second set of rows rather than overwriting the
// first.
func (db *DB) SaveResults(runID string, collector *metrics.MemoryCollector) error {
	for _, reqType := range collector.RequestTypes() {
		p50, _ := collector.Percentile(reqType, 50)
		p90, _ := collector.Percentile(reqType, 90)
		p95, _ := collector.Percentile(reqType, 95)
		p99, _ := collector.Percentile(reqType, 99)
		_, err := db.db.Exec(`
			INSERT INTO experiment_results
				(run_id, request_type, sample_count, p50, p90, p95, p99)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, runID, reqType, collector.Count(reqType), p50, p90, p95, p99)
		if err != nil {
			return fmt.Errorf("persistence: save results %s/%s: %w", runID, reqType, err)
		}
	}
	return nil
}

// LoadResults returns every archived row for runID, most recent first.
func (db *DB) LoadResults(runID string) ([]ResultRow, error) {
	rows, err := db.db.Query(`
		SELECT request_type, sample_count, p50, p90, p95, p99
		FROM experiment_results
		WHERE run_id = ?
		ORDER BY id DESC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("persistence: load results %s: %w", runID, err)
	}
	defer rows.Close()

	var out []ResultRow
	for rows.Next() {
		var r ResultRow
		if err := rows.Scan(&r.RequestType, &r.SampleCount, &r.P50, &r.P90, &r.P95, &r.P99); err != nil {
			return nil, fmt.Errorf("persistence: scan result row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
