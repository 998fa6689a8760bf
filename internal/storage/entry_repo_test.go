package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestMigrateIdempotent(t *testing.T) {
	db := testDB(t)
	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
}

func TestEntryRepoReplaceAllAndListAll(t *testing.T) {
	repo := NewEntryRepo(testDB(t))
	ctx := context.Background()

	first := []EntryRecord{
		{ID: "weapons_a", Category: "weapons", Title: "A", Content: "staff content", Keywords: "staff content"},
		{ID: "arena_b", Category: "arena", Title: "B", Content: "arena content", Keywords: "arena content"},
	}
	if err := repo.ReplaceAll(ctx, first); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListAll() = %d entries, want 2", len(got))
	}
	if got[0].ID != "weapons_a" || got[1].ID != "arena_b" {
		t.Errorf("ListAll() order = [%s %s], want insertion order", got[0].ID, got[1].ID)
	}

	// A later run fully replaces the previous mirror.
	second := []EntryRecord{
		{ID: "guild_c", Category: "guild", Title: "C", Content: "guild content", Keywords: "guild content"},
	}
	if err := repo.ReplaceAll(ctx, second); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	got, err = repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "guild_c" {
		t.Errorf("ListAll() after replace = %+v, want only guild_c", got)
	}
}

func TestEntryRepoCountByCategory(t *testing.T) {
	repo := NewEntryRepo(testDB(t))
	ctx := context.Background()

	entries := []EntryRecord{
		{ID: "weapons_a", Category: "weapons", Title: "A", Content: "one", Keywords: ""},
		{ID: "weapons_b", Category: "weapons", Title: "B", Content: "two", Keywords: ""},
		{ID: "guild_c", Category: "guild", Title: "C", Content: "three", Keywords: ""},
	}
	if err := repo.ReplaceAll(ctx, entries); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	counts, err := repo.CountByCategory(ctx)
	if err != nil {
		t.Fatalf("CountByCategory() error = %v", err)
	}
	if counts["weapons"] != 2 || counts["guild"] != 1 {
		t.Errorf("CountByCategory() = %v, want weapons:2 guild:1", counts)
	}
}

func TestEntryRepoReplaceAllEmpty(t *testing.T) {
	repo := NewEntryRepo(testDB(t))
	ctx := context.Background()

	if err := repo.ReplaceAll(ctx, nil); err != nil {
		t.Fatalf("ReplaceAll(nil) error = %v", err)
	}
	got, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListAll() = %d entries, want 0", len(got))
	}
}
