package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_entry_store.go -package=mocks xyian-bot/internal/storage EntryStore

import (
	"context"
	"database/sql"
	"fmt"
)

// EntryStore defines the interface for entry storage operations.
type EntryStore interface {
	// ReplaceAll atomically replaces the entries table with the given
	// records. The table is the persisted mirror of one ingestion run.
	ReplaceAll(ctx context.Context, entries []EntryRecord) error
	// ListAll returns every entry ordered by rowid (insertion order).
	ListAll(ctx context.Context) ([]EntryRecord, error)
	// CountByCategory returns entry counts keyed by category name.
	CountByCategory(ctx context.Context) (map[string]int, error)
}

// EntryRepo provides methods for entry operations.
// It implements the EntryStore interface.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo creates a new EntryRepo.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db}
}

// ReplaceAll atomically replaces the entries table with the given records.
// Runs in a single transaction so readers never observe a half-built table.
func (r *EntryRepo) ReplaceAll(ctx context.Context, entries []EntryRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("failed to clear entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO entries (id, category, title, content, keywords) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, e.Category, e.Title, e.Content, e.Keywords); err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}
	return nil
}

// ListAll returns every entry ordered by rowid, which preserves the
// insertion order of the ingestion run that wrote them.
func (r *EntryRepo) ListAll(ctx context.Context) ([]EntryRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, category, title, content, keywords FROM entries ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []EntryRecord
	for rows.Next() {
		var e EntryRecord
		if err := rows.Scan(&e.ID, &e.Category, &e.Title, &e.Content, &e.Keywords); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// CountByCategory returns entry counts keyed by category name.
func (r *EntryRepo) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT category, COUNT(*) FROM entries GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[category] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return counts, nil
}
