package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"xyian-bot/internal/contextutil"
	"xyian-bot/internal/storage"
)

// StatsHandler reports knowledge base totals and the last ingest run.
type StatsHandler struct {
	entryRepo storage.EntryStore
	runRepo   storage.RunStore
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(entryRepo storage.EntryStore, runRepo storage.RunStore) *StatsHandler {
	return &StatsHandler{entryRepo: entryRepo, runRepo: runRepo}
}

// StatsResponse represents the HTTP response for knowledge base stats.
type StatsResponse struct {
	TotalEntries int            `json:"total_entries"`
	Categories   map[string]int `json:"categories"`
	LastRun      *LastRun       `json:"last_run,omitempty"`
}

// LastRun summarizes the most recent ingestion run.
type LastRun struct {
	RunID          string `json:"run_id"`
	StartedAt      string `json:"started_at"`
	DurationMs     int64  `json:"duration_ms"`
	SourcesTotal   int    `json:"sources_total"`
	SourcesSkipped int    `json:"sources_skipped"`
	FragmentsSeen  int    `json:"fragments_seen"`
	EntriesKept    int    `json:"entries_kept"`
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	counts, err := h.entryRepo.CountByCategory(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count entries", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	resp := StatsResponse{
		TotalEntries: total,
		Categories:   counts,
	}

	run, err := h.runRepo.Latest(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// No run recorded yet; stats are still valid.
	case err != nil:
		logger.WarnContext(ctx, "failed to load last ingest run", "error", err)
	default:
		resp.LastRun = &LastRun{
			RunID:          run.ID,
			StartedAt:      run.StartedAt.UTC().Format(time.RFC3339),
			DurationMs:     run.DurationMs,
			SourcesTotal:   run.SourcesTotal,
			SourcesSkipped: run.SourcesSkipped,
			FragmentsSeen:  run.FragmentsSeen,
			EntriesKept:    run.EntriesKept,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
