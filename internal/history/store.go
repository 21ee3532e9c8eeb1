// Package history keeps a SQLite record of past suite runs.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gotrs-io/ui-smoke/internal/suite"
)

const schema = `
CREATE TABLE IF NOT EXISTS suite_run (
    run_id      TEXT PRIMARY KEY,
    base_url    TEXT NOT NULL,
    policy      TEXT NOT NULL,
    started_at  TIMESTAMP NOT NULL,
    elapsed_ms  INTEGER NOT NULL,
    passed      INTEGER NOT NULL,
    failed      INTEGER NOT NULL,
    errored     INTEGER NOT NULL,
    skipped     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS scenario_result (
    run_id       TEXT NOT NULL REFERENCES suite_run(run_id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    scenario_id  TEXT NOT NULL,
    status       TEXT NOT NULL,
    failed_step  INTEGER NOT NULL,
    failure_kind TEXT NOT NULL DEFAULT '',
    reason       TEXT NOT NULL DEFAULT '',
    elapsed_ms   INTEGER NOT NULL,
    PRIMARY KEY (run_id, position)
);
CREATE INDEX IF NOT EXISTS idx_suite_run_started ON suite_run(started_at);
`

// Run is one stored suite run.
type Run struct {
	RunID     string    `db:"run_id"`
	BaseURL   string    `db:"base_url"`
	Policy    string    `db:"policy"`
	StartedAt time.Time `db:"started_at"`
	ElapsedMS int64     `db:"elapsed_ms"`
	Passed    int       `db:"passed"`
	Failed    int       `db:"failed"`
	Errored   int       `db:"errored"`
	Skipped   int       `db:"skipped"`
}

// ScenarioRow is one stored scenario result.
type ScenarioRow struct {
	RunID       string `db:"run_id"`
	Position    int    `db:"position"`
	ScenarioID  string `db:"scenario_id"`
	Status      string `db:"status"`
	FailedStep  int    `db:"failed_step"`
	FailureKind string `db:"failure_kind"`
	Reason      string `db:"reason"`
	ElapsedMS   int64  `db:"elapsed_ms"`
}

// Store persists suite reports.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path. ":memory:" gives a
// private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save stores a report and its scenario results in one transaction.
func (s *Store) Save(ctx context.Context, r *suite.Report) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	run := Run{
		RunID:     r.RunID,
		BaseURL:   r.BaseURL,
		Policy:    string(r.Policy),
		StartedAt: r.Started.UTC(),
		ElapsedMS: r.Elapsed.Milliseconds(),
		Passed:    r.Passed,
		Failed:    r.Failed,
		Errored:   r.Errored,
		Skipped:   r.Skipped,
	}
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO suite_run (run_id, base_url, policy, started_at, elapsed_ms, passed, failed, errored, skipped)
		VALUES (:run_id, :base_url, :policy, :started_at, :elapsed_ms, :passed, :failed, :errored, :skipped)`, run); err != nil {
		return fmt.Errorf("failed to insert suite run: %w", err)
	}

	for i, res := range r.Results {
		row := ScenarioRow{
			RunID:       r.RunID,
			Position:    i,
			ScenarioID:  res.ScenarioID,
			Status:      string(res.Status),
			FailedStep:  res.FailedStep,
			FailureKind: res.Failure,
			Reason:      res.Reason,
			ElapsedMS:   res.Elapsed.Milliseconds(),
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO scenario_result (run_id, position, scenario_id, status, failed_step, failure_kind, reason, elapsed_ms)
			VALUES (:run_id, :position, :scenario_id, :status, :failed_step, :failure_kind, :reason, :elapsed_ms)`, row); err != nil {
			return fmt.Errorf("failed to insert scenario result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit suite run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []Run
	if err := s.db.SelectContext(ctx, &runs,
		`SELECT run_id, base_url, policy, started_at, elapsed_ms, passed, failed, errored, skipped
		 FROM suite_run ORDER BY started_at DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("failed to list suite runs: %w", err)
	}
	return runs, nil
}

// Results returns the scenario rows of one run in execution order.
func (s *Store) Results(ctx context.Context, runID string) ([]ScenarioRow, error) {
	var rows []ScenarioRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT run_id, position, scenario_id, status, failed_step, failure_kind, reason, elapsed_ms
		 FROM scenario_result WHERE run_id = ? ORDER BY position`, runID); err != nil {
		return nil, fmt.Errorf("failed to list scenario results: %w", err)
	}
	return rows, nil
}
