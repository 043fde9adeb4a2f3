package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fairsim/fairsim/internal/simcore"
)

// ErrNotFound is returned when a lookup finds no matching row.
var ErrNotFound = errors.New("persistence: not found")

// SaveSnapshot upserts runID's snapshot, replacing any prior snapshot saved
// under the same ID, following phase3.go's ON CONFLICT DO UPDATE idiom.
func (db *DB) SaveSnapshot(runID string, snap simcore.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("persistence: marshal snapshot: %w", err)
	}
	_, err = db.db.Exec(`
		INSERT INTO run_snapshots (run_id, sim_time, payload_json, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(run_id) DO UPDATE SET
			sim_time = excluded.sim_time,
			payload_json = excluded.payload_json,
			updated_at = excluded.updated_at
	`, runID, snap.Now, string(payload))
	if err != nil {
		return fmt.Errorf("persistence: save snapshot %s: %w", runID, err)
	}
	return nil
}

// LoadSnapshot retrieves runID's last saved snapshot. Returns ErrNotFound if
// no snapshot was ever saved under that ID.
func (db *DB) LoadSnapshot(runID string) (simcore.Snapshot, error) {
	var payload string
	err := db.db.QueryRow(`SELECT payload_json FROM run_snapshots WHERE run_id = ?`, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return simcore.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return simcore.Snapshot{}, fmt.Errorf("persistence: load snapshot %s: %w", runID, err)
	}
	var snap simcore.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return simcore.Snapshot{}, fmt.Errorf("persistence: unmarshal snapshot %s: %w", runID, err)
	}
	return snap, nil
}

// DeleteSnapshot removes runID's snapshot, if any. Deleting a nonexistent
// snapshot is not an error.
func (db *DB) DeleteSnapshot(runID string) error {
	if _, err := db.db.Exec(`DELETE FROM run_snapshots WHERE run_id = ?`, runID); err != nil {
		return fmt.Errorf("persistence: delete snapshot %s: %w", runID, err)
	}
	return nil
}
