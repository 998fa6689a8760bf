package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks xyian-bot/internal/storage RunStore

import (
	"context"
	"database/sql"
	"fmt"
)

// RunStore defines the interface for ingest run history.
type RunStore interface {
	// Insert records a completed ingestion run.
	Insert(ctx context.Context, run *IngestRunRecord) error
	// Latest returns the most recent run. Returns ErrNotFound if no run
	// has been recorded yet.
	Latest(ctx context.Context) (*IngestRunRecord, error)
}

// RunRepo provides methods for ingest run operations.
// It implements the RunStore interface.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Insert records a completed ingestion run.
func (r *RunRepo) Insert(ctx context.Context, run *IngestRunRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, started_at, duration_ms, sources_total, sources_skipped, fragments_seen, entries_kept)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.DurationMs, run.SourcesTotal, run.SourcesSkipped, run.FragmentsSeen, run.EntriesKept,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ingest run: %w", err)
	}
	return nil
}

// Latest returns the most recent run by start time.
func (r *RunRepo) Latest(ctx context.Context) (*IngestRunRecord, error) {
	var run IngestRunRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT id, started_at, duration_ms, sources_total, sources_skipped, fragments_seen, entries_kept
		 FROM ingest_runs ORDER BY started_at DESC LIMIT 1`,
	).Scan(&run.ID, &run.StartedAt, &run.DurationMs, &run.SourcesTotal, &run.SourcesSkipped, &run.FragmentsSeen, &run.EntriesKept)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest ingest run: %w", err)
	}

	return &run, nil
}
