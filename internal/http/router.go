package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cbc-rag/internal/handlers"
	"cbc-rag/internal/retrieval"
	"cbc-rag/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine      retrieval.Engine
	Analyzer    handlers.Analyzer
	Store       storage.AnalysisStore // nil disables /api/v1/history
	DB          handlers.Pinger       // nil skips the database health check
	CorpusSize  int
	DefaultTopK int
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	retrieveHandler := handlers.NewRetrieveHandler(deps.Engine, deps.DefaultTopK)
	analyzeHandler := handlers.NewAnalyzeHandler(deps.Analyzer)
	reindexHandler := handlers.NewReindexHandler(deps.Engine)
	healthHandler := handlers.NewHealthHandler(deps.Engine, deps.DB, deps.CorpusSize)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/parameters", handlers.ParametersHandler)
			r.Method(http.MethodPost, "/retrieve", retrieveHandler)
			r.Method(http.MethodPost, "/analyze", analyzeHandler)
			r.Method(http.MethodPost, "/reindex", reindexHandler)

			if deps.Store != nil {
				historyHandler := handlers.NewHistoryHandler(deps.Store)
				r.Get("/history", historyHandler.List)
				r.Get("/history/{id}", historyHandler.Get)
			}
		})
	})

	r.Get("/", handlers.HomeHandler)

	return r
}
