package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"xyian-bot/internal/knowledge"
	"xyian-bot/internal/storage"
)

// maxConcurrentSources bounds how many sources are read and parsed at once.
const maxConcurrentSources = 4

// Format identifies how a source file is turned into fragments.
type Format string

const (
	// FormatJSON sources are walked recursively; every leaf string is a
	// candidate fragment.
	FormatJSON Format = "json"
	// FormatMarkdown sources are curated documentation; sections become
	// fragments.
	FormatMarkdown Format = "markdown"
)

// Source describes one ingestion input.
type Source struct {
	Name   string // Label prefix for fragments from this source
	Path   string
	Format Format
}

// DiscoverSources lists the JSON scrape files in sourcesDir and the
// markdown documentation files in docsDir. Either directory may be empty
// or absent; discovery order is deterministic (sorted per directory, JSON
// sources first).
func DiscoverSources(sourcesDir, docsDir string) ([]Source, error) {
	var sources []Source

	appendDir := func(dir, pattern string, format Format) error {
		if dir == "" {
			return nil
		}
		paths, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", dir, err)
		}
		sort.Strings(paths)
		for _, p := range paths {
			name := strings.TrimSuffix(filepath.Base(p), filepath.Ext(p))
			sources = append(sources, Source{Name: name, Path: p, Format: format})
		}
		return nil
	}

	if err := appendDir(sourcesDir, "*.json", FormatJSON); err != nil {
		return nil, err
	}
	if err := appendDir(docsDir, "*.md", FormatMarkdown); err != nil {
		return nil, err
	}

	return sources, nil
}

// Report summarizes one ingestion run.
type Report struct {
	RunID          string
	StartedAt      time.Time
	Duration       time.Duration
	SourcesTotal   int
	SourcesSkipped int
	FragmentsSeen  int
	EntriesKept    int
}

// Pipeline orchestrates one full knowledge rebuild: read every source,
// classify and deduplicate fragments, construct a fresh immutable store,
// and persist it as a snapshot, a SQLite mirror and a run record.
type Pipeline struct {
	sources       []Source
	sourceTimeout time.Duration
	snapshotPath  string
	entryRepo     storage.EntryStore
	runRepo       storage.RunStore
	extractor     *SectionExtractor
	logger        *slog.Logger
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	sources []Source,
	sourceTimeout time.Duration,
	snapshotPath string,
	entryRepo storage.EntryStore,
	runRepo storage.RunStore,
) *Pipeline {
	return &Pipeline{
		sources:       sources,
		sourceTimeout: sourceTimeout,
		snapshotPath:  snapshotPath,
		entryRepo:     entryRepo,
		runRepo:       runRepo,
		extractor:     NewSectionExtractor(),
		logger:        slog.Default(),
	}
}

// Run executes one ingestion batch and returns the freshly built store.
// Sources are read and parsed concurrently, but classification and
// deduplication happen strictly in source-list order so first-occurrence
// dedup stays deterministic. A source that fails to load or parse is
// skipped and counted, never fatal; Run only errors on cancellation or on
// failure to persist the finished store.
func (p *Pipeline) Run(ctx context.Context) (*knowledge.Store, Report, error) {
	started := time.Now()
	report := Report{
		RunID:        uuid.New().String(),
		StartedAt:    started,
		SourcesTotal: len(p.sources),
	}

	p.logger.InfoContext(ctx, "starting ingestion", "run_id", report.RunID, "sources", len(p.sources))

	perSource := make([][]knowledge.Fragment, len(p.sources))
	skipped := make([]bool, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentSources)
	for i, src := range p.sources {
		g.Go(func() error {
			fragments, err := p.loadSource(gctx, src)
			if err != nil {
				// Skip and continue; one bad source must not abort the rest.
				skipped[i] = true
				p.logger.WarnContext(gctx, "skipping source", "source", src.Name, "error", err)
				return nil
			}
			perSource[i] = fragments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, report, err
	}
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	var candidates []knowledge.Candidate
	for _, fragments := range perSource {
		report.FragmentsSeen += len(fragments)
		for _, f := range fragments {
			if c, ok := f.Classify(); ok {
				candidates = append(candidates, c)
			}
		}
	}
	for _, s := range skipped {
		if s {
			report.SourcesSkipped++
		}
	}

	store := knowledge.NewStore(knowledge.Dedup(candidates))
	report.EntriesKept = store.Len()
	report.Duration = time.Since(started)

	if err := p.persist(ctx, store, &report); err != nil {
		return nil, report, err
	}

	p.logger.InfoContext(ctx, "ingestion completed",
		"run_id", report.RunID,
		"sources", report.SourcesTotal,
		"skipped", report.SourcesSkipped,
		"fragments", report.FragmentsSeen,
		"entries", report.EntriesKept,
		"duration", report.Duration,
	)

	return store, report, nil
}

// loadSource reads and parses one source into fragments, bounded by the
// per-source timeout.
func (p *Pipeline) loadSource(ctx context.Context, src Source) ([]knowledge.Fragment, error) {
	if p.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.sourceTimeout)
		defer cancel()
	}

	type result struct {
		fragments []knowledge.Fragment
		err       error
	}
	done := make(chan result, 1)

	go func() {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			done <- result{nil, fmt.Errorf("failed to read source: %w", err)}
			return
		}
		switch src.Format {
		case FormatMarkdown:
			done <- result{p.extractor.Extract(data, src.Name), nil}
		default:
			fragments, err := CollectFragments(data, src.Name)
			done <- result{fragments, err}
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.fragments, r.err
	}
}

// persist writes the snapshot file, mirrors the entries into SQLite and
// records the run.
func (p *Pipeline) persist(ctx context.Context, store *knowledge.Store, report *Report) error {
	if p.snapshotPath != "" {
		if err := store.SaveSnapshotFile(p.snapshotPath); err != nil {
			return fmt.Errorf("failed to persist snapshot: %w", err)
		}
	}

	if p.entryRepo != nil {
		entries := store.All()
		records := make([]storage.EntryRecord, len(entries))
		for i, e := range entries {
			records[i] = storage.EntryRecord{
				ID:       e.ID,
				Category: string(e.Category),
				Title:    e.Title,
				Content:  e.Content,
				Keywords: strings.Join(e.Keywords, " "),
			}
		}
		if err := p.entryRepo.ReplaceAll(ctx, records); err != nil {
			return fmt.Errorf("failed to mirror entries: %w", err)
		}
	}

	if p.runRepo != nil {
		record := &storage.IngestRunRecord{
			ID:             report.RunID,
			StartedAt:      report.StartedAt,
			DurationMs:     report.Duration.Milliseconds(),
			SourcesTotal:   report.SourcesTotal,
			SourcesSkipped: report.SourcesSkipped,
			FragmentsSeen:  report.FragmentsSeen,
			EntriesKept:    report.EntriesKept,
		}
		if err := p.runRepo.Insert(ctx, record); err != nil {
			return fmt.Errorf("failed to record ingest run: %w", err)
		}
	}

	return nil
}
