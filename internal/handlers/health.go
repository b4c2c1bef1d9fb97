package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cbc-rag/internal/contextutil"
	"cbc-rag/internal/retrieval"
)

// Pinger reports database connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	engine             retrieval.Engine
	db                 Pinger
	corpusSize         int
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler. db may be nil when history
// persistence is disabled.
func NewHealthHandler(engine retrieval.Engine, db Pinger, corpusSize int) *HealthHandler {
	return &HealthHandler{
		engine:             engine,
		db:                 db,
		corpusSize:         corpusSize,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Number of chunks in the knowledge base
	CorpusSize int `json:"corpus_size"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks. A missing semantic
// index reports degraded, not unhealthy: keyword retrieval still works.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	if h.engine.Ready() {
		checks["vector_index"] = "ok"
	} else {
		checks["vector_index"] = "absent"
		issues = append(issues, "semantic_search_unavailable")
	}

	if h.db != nil {
		if err := h.db.PingContext(checkCtx); err != nil {
			logger.WarnContext(ctx, "database health check failed", "error", err)
			checks["database"] = "error"
			issues = append(issues, "database_unavailable")
		} else {
			checks["database"] = "ok"
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if checks["database"] == "error" {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	} else if len(issues) > 0 {
		status = "degraded"
	}

	response := HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Checks:     checks,
		CorpusSize: h.corpusSize,
	}
	if len(issues) > 0 {
		response.Issues = issues
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}
