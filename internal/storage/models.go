package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// EntryRecord is the persisted form of a knowledge entry. The entries table
// is replaced wholesale on each ingestion run; records are never mutated.
type EntryRecord struct {
	ID       string // Stable id: "{category}_{contextLabel}" plus collision suffix
	Category string
	Title    string
	Content  string // Normalized prose
	Keywords string // Space-joined keyword tokens
}

// IngestRunRecord captures one ingestion run for the stats endpoint.
type IngestRunRecord struct {
	ID             string // UUID
	StartedAt      time.Time
	DurationMs     int64
	SourcesTotal   int
	SourcesSkipped int
	FragmentsSeen  int
	EntriesKept    int
}
