package knowledge

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
)

// Store owns the final collection of entries built by one ingestion run.
// It is immutable after construction and safe for concurrent reads.
type Store struct {
	entries    []Entry
	byCategory map[Category][]int // indices into entries, insertion order
}

// NewStore builds a store from deduplicated candidates, assigning each
// surviving entry its stable ID, display title and keyword set. Candidate
// order becomes insertion order, which ranking uses to break score ties.
func NewStore(candidates []Candidate) *Store {
	s := &Store{
		entries:    make([]Entry, 0, len(candidates)),
		byCategory: make(map[Category][]int),
	}

	used := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		base := fmt.Sprintf("%s_%s", c.Category, c.Label)
		id := base
		for n := 2; ; n++ {
			if _, taken := used[id]; !taken {
				break
			}
			id = fmt.Sprintf("%s_%d", base, n)
		}
		used[id] = struct{}{}

		s.append(Entry{
			ID:       id,
			Category: c.Category,
			Title:    titleForID(id, c.Category),
			Content:  c.Content,
			Keywords: ExtractKeywords(c.Content),
		})
	}

	return s
}

// RestoreStore rebuilds a store from previously persisted entries, keeping
// their stored order as insertion order. Used to warm-start from the SQLite
// mirror when no snapshot file is readable.
func RestoreStore(entries []Entry) *Store {
	s := &Store{
		entries:    make([]Entry, 0, len(entries)),
		byCategory: make(map[Category][]int),
	}
	for _, e := range entries {
		s.append(e)
	}
	return s
}

func (s *Store) append(e Entry) {
	s.byCategory[e.Category] = append(s.byCategory[e.Category], len(s.entries))
	s.entries = append(s.entries, e)
}

// Len returns the number of entries in the store.
func (s *Store) Len() int {
	return len(s.entries)
}

// All returns every entry in insertion order. The returned slice is a copy;
// the store itself is never mutated.
func (s *Store) All() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// ByCategory returns the entries of one category in insertion order.
func (s *Store) ByCategory(c Category) []Entry {
	indices := s.byCategory[c]
	out := make([]Entry, 0, len(indices))
	for _, i := range indices {
		out = append(out, s.entries[i])
	}
	return out
}

// CountByCategory returns entry counts keyed by category name.
func (s *Store) CountByCategory() map[string]int {
	counts := make(map[string]int, len(s.byCategory))
	for c, indices := range s.byCategory {
		counts[string(c)] = len(indices)
	}
	return counts
}

// Snapshot is the persisted form of a store: category name to entry id to
// normalized content. This shape is the boundary contract shared with other
// tooling and must not change.
type Snapshot map[string]map[string]string

// Snapshot renders the store in its persisted shape.
func (s *Store) Snapshot() Snapshot {
	snap := make(Snapshot, len(s.byCategory))
	for _, e := range s.entries {
		cat := string(e.Category)
		if snap[cat] == nil {
			snap[cat] = make(map[string]string)
		}
		snap[cat][e.ID] = e.Content
	}
	return snap
}

// WriteSnapshot writes the store snapshot as JSON.
func (s *Store) WriteSnapshot(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Snapshot()); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// SaveSnapshotFile writes the snapshot to path, creating or truncating it.
func (s *Store) SaveSnapshotFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return s.WriteSnapshot(f)
}

// LoadSnapshot reconstructs a store from its persisted snapshot. Titles are
// rebuilt from entry IDs and keywords are recomputed from content, so a
// reloaded store ranks identically to the one that produced the snapshot.
// Because JSON maps are unordered, insertion order is made deterministic:
// categories in their fixed enum order, IDs sorted within a category.
func LoadSnapshot(r io.Reader) (*Store, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s := &Store{byCategory: make(map[Category][]int)}
	for _, cat := range Categories {
		ids := snap[string(cat)]
		if len(ids) == 0 {
			continue
		}
		sorted := make([]string, 0, len(ids))
		for id := range ids {
			sorted = append(sorted, id)
		}
		sort.Strings(sorted)

		for _, id := range sorted {
			content := ids[id]
			s.append(Entry{
				ID:       id,
				Category: cat,
				Title:    titleForID(id, cat),
				Content:  content,
				Keywords: ExtractKeywords(content),
			})
		}
	}

	for cat := range snap {
		if _, known := ParseCategory(cat); !known {
			return nil, fmt.Errorf("snapshot contains unknown category %q", cat)
		}
	}

	return s, nil
}

// LoadSnapshotFile reads a snapshot from path.
func LoadSnapshotFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	return LoadSnapshot(f)
}
