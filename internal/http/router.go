package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"xyian-bot/internal/delivery"
	"xyian-bot/internal/handlers"
	"xyian-bot/internal/ingest"
	"xyian-bot/internal/service"
	"xyian-bot/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AskService service.AskService
	Pipeline   *ingest.Pipeline
	Notifier   *delivery.Notifier // may be nil
	EntryRepo  storage.EntryStore
	RunRepo    storage.RunStore
	DB         *sql.DB
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Recoverer)

	// Request-scoped logger and CORS
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.AskService)
	ingestHandler := handlers.NewIngestHandler(deps.Pipeline, deps.AskService, deps.Notifier)
	statsHandler := handlers.NewStatsHandler(deps.EntryRepo, deps.RunRepo)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.AskService)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodPost, "/ingest", ingestHandler)
		r.Method(http.MethodGet, "/stats", statsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
