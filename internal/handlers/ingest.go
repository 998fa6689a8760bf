package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"xyian-bot/internal/contextutil"
	"xyian-bot/internal/delivery"
	"xyian-bot/internal/ingest"
	"xyian-bot/internal/service"
)

// IngestHandler triggers a full knowledge rebuild. Ingestion is
// single-writer: concurrent triggers are rejected rather than queued.
type IngestHandler struct {
	pipeline   *ingest.Pipeline
	askService service.AskService
	notifier   *delivery.Notifier

	mu      sync.Mutex
	running bool
}

// NewIngestHandler creates a new IngestHandler. notifier may be nil.
func NewIngestHandler(pipeline *ingest.Pipeline, askService service.AskService, notifier *delivery.Notifier) *IngestHandler {
	return &IngestHandler{
		pipeline:   pipeline,
		askService: askService,
		notifier:   notifier,
	}
}

// IngestResponse represents the HTTP response for an ingestion run.
type IngestResponse struct {
	RunID          string `json:"run_id"`
	SourcesTotal   int    `json:"sources_total"`
	SourcesSkipped int    `json:"sources_skipped"`
	FragmentsSeen  int    `json:"fragments_seen"`
	EntriesKept    int    `json:"entries_kept"`
	DurationMs     int64  `json:"duration_ms"`
}

// ServeHTTP handles POST /api/ingest.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		writeError(w, http.StatusConflict, "Ingestion already in progress")
		return
	}
	h.running = true
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	store, report, err := h.pipeline.Run(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Ingestion failed")
		return
	}

	// Publish only after the run finished; readers never see a half-built
	// store.
	h.askService.Publish(store)

	h.notifyCompletion(report)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(IngestResponse{
		RunID:          report.RunID,
		SourcesTotal:   report.SourcesTotal,
		SourcesSkipped: report.SourcesSkipped,
		FragmentsSeen:  report.FragmentsSeen,
		EntriesKept:    report.EntriesKept,
		DurationMs:     report.Duration.Milliseconds(),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// notifyCompletion posts a run summary to the admin webhook,
// fire-and-forget with its own deadline so it never blocks the response
// lifecycle.
func (h *IngestHandler) notifyCompletion(report ingest.Report) {
	if h.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		h.notifier.Notify(ctx, delivery.Message{
			Embeds: []delivery.Embed{{
				Title: "Knowledge base rebuilt",
				Description: fmt.Sprintf("%d entries from %d sources (%d skipped) in %s",
					report.EntriesKept, report.SourcesTotal, report.SourcesSkipped, report.Duration.Round(time.Millisecond)),
			}},
		})
	}()
}
