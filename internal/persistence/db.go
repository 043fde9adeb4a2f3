// Package persistence stores simulation snapshots and experiment results in
// SQLite, mirroring the teacher's internal/infra/sqlite migration-list and
// Upsert-method conventions (only the Phase 3 file was retrieved into this
// codebase's reference pack; the DB/Open wrapper itself is authored fresh
// here in the same idiom).
package persistence

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection and owns schema migration.
type DB struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and applies
// every migration returned by Migrations().
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("persistence: open %s: %w", path, err)
	}
	// A discrete-event simulation drives the engine's event loop on a single
	// goroutine; the persistence layer only ever sees snapshot writes from
	// that same goroutine plus occasional reads, so one connection is enough.
	sqlDB.SetMaxOpenConns(1)

	db := &DB{db: sqlDB}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying connection.
func (db *DB) Close() error { return db.db.Close() }

// Migrations returns the schema migration statements, one SQL statement per
// entry (SQLite executes one at a time), following phase3.go's
// CREATE-TABLE-IF-NOT-EXISTS convention.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS run_snapshots (
			run_id       TEXT PRIMARY KEY,
			sim_time     REAL NOT NULL,
			payload_json TEXT NOT NULL,
			updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		`CREATE TABLE IF NOT EXISTS experiment_results (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			request_type    TEXT NOT NULL,
			sample_count    INTEGER NOT NULL DEFAULT 0,
			p50             REAL NOT NULL DEFAULT 0,
			p90             REAL NOT NULL DEFAULT 0,
			p95             REAL NOT NULL DEFAULT 0,
			p99             REAL NOT NULL DEFAULT 0,
			created_at      TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_experiment_results_run ON experiment_results(run_id)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("persistence: migrate: %w", err)
		}
	}
	return nil
}
