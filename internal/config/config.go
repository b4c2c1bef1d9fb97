package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// GeminiAPIKey is optional. When empty the service runs in keyword-only
	// (degraded) retrieval mode instead of failing to start.
	GeminiAPIKey string

	EmbeddingProvider string // "gemini" or "openai"
	EmbeddingModel    string
	EmbeddingBaseURL  string // OpenAI-compatible endpoint override
	OpenAIAPIKey      string

	GenModel string

	KBPath      string // empty means the embedded corpus
	DBPath      string
	APIPort     string
	DefaultTopK int

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates the rest.
// If a .env file exists in the current directory or project root, it is loaded
// automatically; environment variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load() // Try current directory

	// Walk up toward the project root looking for a .env next to go.mod.
	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", "gemini")),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-004"),
		EmbeddingBaseURL:  os.Getenv("EMBEDDING_BASE_URL"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		GenModel:          getEnv("GEN_MODEL", "gemini-1.5-flash"),
		KBPath:            os.Getenv("KB_PATH"),
		DBPath:            getEnv("DB_PATH", "./data/cbc-rag.db"),
		APIPort:           getEnv("API_PORT", "9000"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
	}

	switch cfg.EmbeddingProvider {
	case "gemini", "openai":
	default:
		return nil, fmt.Errorf("EMBEDDING_PROVIDER must be \"gemini\" or \"openai\", got %q", cfg.EmbeddingProvider)
	}

	topKStr := getEnv("DEFAULT_TOP_K", "4")
	topK, err := strconv.Atoi(topKStr)
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_TOP_K must be a valid integer: %w", err)
	}
	if topK < 1 || topK > 10 {
		return nil, fmt.Errorf("DEFAULT_TOP_K must be in [1,10], got %d", topK)
	}
	cfg.DefaultTopK = topK

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// Create the data directory for the history DB if it does not exist.
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
