package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"strings"

	"xyian-bot/internal/config"
	"xyian-bot/internal/delivery"
	"xyian-bot/internal/http"
	"xyian-bot/internal/ingest"
	"xyian-bot/internal/knowledge"
	"xyian-bot/internal/llm"
	"xyian-bot/internal/service"
	"xyian-bot/internal/storage"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	entryRepo := storage.NewEntryRepo(db)
	runRepo := storage.NewRunRepo(db)

	// Discover ingestion sources
	sources, err := ingest.DiscoverSources(cfg.SourcesDir, cfg.DocsDir)
	if err != nil {
		log.Fatalf("Failed to discover sources: %v", err)
	}
	slog.Info("Sources discovered", "count", len(sources), "sources_dir", cfg.SourcesDir, "docs_dir", cfg.DocsDir)

	pipeline := ingest.NewPipeline(sources, cfg.SourceTimeout, cfg.SnapshotPath, entryRepo, runRepo)

	// Optional LLM enrichment client
	var llmClient service.LLMClient
	if cfg.LLMEnrichment {
		llmClient = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)
		slog.Info("LLM enrichment enabled", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	}

	askService := service.NewAskService(llmClient)

	// Optional admin webhook notifier
	var notifier *delivery.Notifier
	if cfg.WebhookURL != "" {
		notifier = delivery.NewNotifier(delivery.NewWebhookClient(cfg.WebhookURL))
		slog.Info("Admin webhook notifications enabled")
	}

	// Publish the previous snapshot immediately if one exists, so queries
	// work while the fresh build runs. Fall back to the SQLite mirror.
	if store, err := knowledge.LoadSnapshotFile(cfg.SnapshotPath); err == nil {
		askService.Publish(store)
		slog.Info("Snapshot loaded", "path", cfg.SnapshotPath, "entries", store.Len())
	} else if store, merr := restoreFromMirror(context.Background(), entryRepo); merr == nil {
		askService.Publish(store)
		slog.Info("Store restored from database mirror", "entries", store.Len())
	} else {
		slog.Warn("No usable snapshot or mirror, waiting for ingestion",
			"snapshot_error", err, "mirror_error", merr)
	}

	// Rebuild the knowledge base in the background after startup.
	go func() {
		ctx := context.Background()
		slog.Info("Starting background ingestion")
		store, report, err := pipeline.Run(ctx)
		if err != nil {
			slog.Error("Ingestion failed", "error", err)
			return
		}
		askService.Publish(store)
		if notifier != nil {
			notifier.Notify(ctx, delivery.Message{
				Embeds: []delivery.Embed{{
					Title: "Knowledge base rebuilt",
					Description: "Startup ingestion finished: " +
						report.RunID,
				}},
			})
		}
	}()

	deps := &http.Deps{
		AskService: askService,
		Pipeline:   pipeline,
		Notifier:   notifier,
		EntryRepo:  entryRepo,
		RunRepo:    runRepo,
		DB:         db,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}

// restoreFromMirror rebuilds the knowledge store from the SQLite entries
// mirror written by the last successful ingestion run.
func restoreFromMirror(ctx context.Context, repo *storage.EntryRepo) (*knowledge.Store, error) {
	records, err := repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("entries mirror is empty")
	}

	entries := make([]knowledge.Entry, len(records))
	for i, r := range records {
		entries[i] = knowledge.Entry{
			ID:       r.ID,
			Category: knowledge.Category(r.Category),
			Title:    r.Title,
			Content:  r.Content,
			Keywords: strings.Fields(r.Keywords),
		}
	}
	return knowledge.RestoreStore(entries), nil
}
