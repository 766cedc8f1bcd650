package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// RunRecord is the persisted summary of one assignment run.
type RunRecord struct {
	StartedAt  time.Time    `db:"started_at"`
	FinishedAt sql.NullTime `db:"finished_at"`
	ID         string       `db:"id"`
	Status     string       `db:"status"`
	Cleaned    int64        `db:"cleaned"`
	Pending    int          `db:"pending"`
	Assigned   int          `db:"assigned"`
	Fallback   int          `db:"fallback"`
	Discarded  int          `db:"discarded"`
	Failed     int          `db:"failed"`
}

// SaveRun inserts or updates a run summary.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *RunRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(run.ID, "run id"); err != nil {
		return err
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO assignment_runs (
			id, status, started_at, finished_at, cleaned, pending,
			assigned, fallback, discarded, failed
		) VALUES (
			:id, :status, :started_at, :finished_at, :cleaned, :pending,
			:assigned, :fallback, :discarded, :failed
		)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			finished_at = excluded.finished_at,
			cleaned = excluded.cleaned,
			pending = excluded.pending,
			assigned = excluded.assigned,
			fallback = excluded.fallback,
			discarded = excluded.discarded,
			failed = excluded.failed`, run)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRecentRuns returns the latest runs, newest first.
func (s *SQLiteStorage) GetRecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	runs := []RunRecord{}
	if err := s.db.SelectContext(ctx, &runs,
		`SELECT * FROM assignment_runs ORDER BY started_at DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	return runs, nil
}
