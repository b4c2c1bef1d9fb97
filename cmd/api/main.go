package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"cbc-rag/internal/analysis"
	"cbc-rag/internal/config"
	"cbc-rag/internal/http"
	"cbc-rag/internal/knowledge"
	"cbc-rag/internal/llm"
	"cbc-rag/internal/retrieval"
	"cbc-rag/internal/storage"
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

	// Initialize database for analysis history
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

	analysisRepo := storage.NewAnalysisRepo(db)

	// Load the knowledge base corpus
	var corpus []knowledge.Chunk
	if cfg.KBPath != "" {
		corpus, err = knowledge.Load(cfg.KBPath)
	} else {
		corpus, err = knowledge.LoadEmbedded()
	}
	if err != nil {
		log.Fatalf("Failed to load knowledge base: %v", err)
	}
	slog.Info("Knowledge base loaded", "chunks", len(corpus), "path", cfg.KBPath)

	// Pick the embedding provider. Without an API key the service still
	// starts, pinned to keyword-only retrieval.
	var embedder llm.Embedder
	switch cfg.EmbeddingProvider {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			embedder = llm.NewOpenAIEmbedder(cfg.EmbeddingBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel)
		}
	default:
		if cfg.GeminiAPIKey != "" {
			embedder = llm.NewGeminiEmbedder(cfg.EmbeddingBaseURL, cfg.GeminiAPIKey, cfg.EmbeddingModel)
		}
	}
	if embedder == nil {
		slog.Warn("No embedding API key configured, running in keyword-only mode",
			"provider", cfg.EmbeddingProvider)
	}

	engine := retrieval.NewEngine(corpus, embedder)

	// Build the vector index up front. Failure is not fatal: retrieval
	// degrades to keyword matching until a reindex succeeds.
	if embedder != nil {
		if err := engine.Rebuild(context.Background()); err != nil {
			slog.Warn("Initial index build failed, starting degraded", "error", err)
		} else {
			slog.Info("Vector index built", "chunks", len(corpus))
		}
	}

	// Generation client, optional like the embedder
	var gen analysis.Generator
	if cfg.GeminiAPIKey != "" {
		gen = llm.NewGenerateClient("", cfg.GeminiAPIKey, cfg.GenModel)
	}

	analyzer := analysis.NewAnalyzer(engine, gen, analysisRepo)
	slog.Info("Analysis pipeline initialized", "gen_model", cfg.GenModel)

	deps := &http.Deps{
		Engine:      engine,
		Analyzer:    analyzer,
		Store:       analysisRepo,
		DB:          db,
		CorpusSize:  len(corpus),
		DefaultTopK: cfg.DefaultTopK,
	}
	router := http.NewRouter(deps)

	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
