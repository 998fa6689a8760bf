package knowledge

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestNewStoreAssignsIDsAndTitles(t *testing.T) {
	store := NewStore([]Candidate{
		{Category: CategoryWeapons, Content: "Axe weapons deal heavy damage with slow swings", Label: "guide_axe"},
		{Category: CategoryGuild, Content: "Guild applicants need two daily boss battles", Label: "rules_entry"},
	})

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}

	entries := store.All()
	if entries[0].ID != "weapons_guide_axe" {
		t.Errorf("entry ID = %q, want weapons_guide_axe", entries[0].ID)
	}
	if entries[0].Title != "Axe" {
		t.Errorf("entry title = %q, want Axe", entries[0].Title)
	}
	if len(entries[0].Keywords) == 0 {
		t.Error("entry keywords empty, want derived from content")
	}
	if entries[1].ID != "guild_rules_entry" {
		t.Errorf("entry ID = %q, want guild_rules_entry", entries[1].ID)
	}
}

func TestNewStoreCollisionSuffix(t *testing.T) {
	store := NewStore([]Candidate{
		{Category: CategoryWeapons, Content: "Claws attack quickly at close range for big damage", Label: "dup"},
		{Category: CategoryWeapons, Content: "Claws builds favor attack speed over raw power", Label: "dup"},
		{Category: CategoryWeapons, Content: "Claws pair well with dash mechanics in arena", Label: "dup"},
	})

	entries := store.All()
	wantIDs := []string{"weapons_dup", "weapons_dup_2", "weapons_dup_3"}
	for i, want := range wantIDs {
		if entries[i].ID != want {
			t.Errorf("entry[%d] ID = %q, want %q", i, entries[i].ID, want)
		}
		if entries[i].Title != "Dup" {
			t.Errorf("entry[%d] title = %q, want Dup", i, entries[i].Title)
		}
	}
}

func TestStoreByCategory(t *testing.T) {
	store := NewStore([]Candidate{
		{Category: CategoryWeapons, Content: "Axe weapons deal heavy damage with slow swings", Label: "axe"},
		{Category: CategoryArena, Content: "Arena tips include dodging and careful damage trades", Label: "tips"},
		{Category: CategoryWeapons, Content: "Bow weapons fire fast with lower damage per hit", Label: "bow"},
	})

	weapons := store.ByCategory(CategoryWeapons)
	if len(weapons) != 2 {
		t.Fatalf("ByCategory(weapons) = %d entries, want 2", len(weapons))
	}
	if weapons[0].ID != "weapons_axe" || weapons[1].ID != "weapons_bow" {
		t.Errorf("ByCategory(weapons) order = [%s %s], want insertion order", weapons[0].ID, weapons[1].ID)
	}

	counts := store.CountByCategory()
	if counts["weapons"] != 2 || counts["arena"] != 1 {
		t.Errorf("CountByCategory() = %v, want weapons:2 arena:1", counts)
	}
}

func TestSnapshotShape(t *testing.T) {
	store := NewStore([]Candidate{
		{Category: CategoryWeapons, Content: "Axe weapons deal heavy damage with slow swings", Label: "axe"},
	})

	var buf bytes.Buffer
	if err := store.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	var snap map[string]map[string]string
	if err := json.Unmarshal(buf.Bytes(), &snap); err != nil {
		t.Fatalf("snapshot is not category->id->content JSON: %v", err)
	}
	if got := snap["weapons"]["weapons_axe"]; got != "Axe weapons deal heavy damage with slow swings" {
		t.Errorf("snapshot content = %q, want original content", got)
	}
}

func TestSnapshotRoundTripRanking(t *testing.T) {
	// Insertion order matches the loader's deterministic order (category enum
	// order, sorted IDs) so ranked output compares exactly, ties included.
	store := NewStore([]Candidate{
		{Category: CategoryWeapons, Content: "Axe weapons deal heavy damage with slow swings", Label: "axe_guide"},
		{Category: CategoryWeapons, Content: "Bow weapons fire fast with lower damage per hit", Label: "bow_guide"},
		{Category: CategoryArena, Content: "Arena tips include dodging and careful damage trades", Label: "tips"},
	})

	var buf bytes.Buffer
	if err := store.WriteSnapshot(&buf); err != nil {
		t.Fatalf("WriteSnapshot() error = %v", err)
	}

	loaded, err := LoadSnapshot(&buf)
	if err != nil {
		t.Fatalf("LoadSnapshot() error = %v", err)
	}
	if loaded.Len() != store.Len() {
		t.Fatalf("loaded Len() = %d, want %d", loaded.Len(), store.Len())
	}

	for _, query := range []string{"damage", "arena tips", "weapons", "bow damage"} {
		want := store.Rank(query, 10)
		got := loaded.Rank(query, 10)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Rank(%q) diverged after round trip:\n got %v\nwant %v", query, got, want)
		}
	}
}

func TestLoadSnapshotUnknownCategory(t *testing.T) {
	_, err := LoadSnapshot(strings.NewReader(`{"potions": {"potions_brew": "some content"}}`))
	if err == nil {
		t.Fatal("LoadSnapshot() accepted unknown category, want error")
	}
	if !strings.Contains(err.Error(), "potions") {
		t.Errorf("LoadSnapshot() error = %v, want it to name the unknown category", err)
	}
}

func TestRestoreStoreRanksLikeOriginal(t *testing.T) {
	store := NewStore([]Candidate{
		{Category: CategoryWeapons, Content: "Axe weapons deal heavy damage with slow swings", Label: "axe_guide"},
		{Category: CategoryArena, Content: "Arena tips include dodging and careful damage trades", Label: "tips"},
	})

	restored := RestoreStore(store.All())

	for _, query := range []string{"damage", "arena tips"} {
		want := store.Rank(query, 10)
		got := restored.Rank(query, 10)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Rank(%q) diverged after restore:\n got %v\nwant %v", query, got, want)
		}
	}
}

func TestAllReturnsCopy(t *testing.T) {
	store := NewStore([]Candidate{
		{Category: CategoryWeapons, Content: "Axe weapons deal heavy damage with slow swings", Label: "axe"},
	})

	entries := store.All()
	entries[0].Content = "mutated"
	if store.All()[0].Content == "mutated" {
		t.Error("All() exposed internal state, want a copy")
	}
}
