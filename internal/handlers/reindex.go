package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cbc-rag/internal/contextutil"
	"cbc-rag/internal/llm"
	"cbc-rag/internal/retrieval"
)

// ReindexHandler handles HTTP requests for rebuilding the vector index.
type ReindexHandler struct {
	engine retrieval.Engine
}

// NewReindexHandler creates a new ReindexHandler.
func NewReindexHandler(engine retrieval.Engine) *ReindexHandler {
	return &ReindexHandler{engine: engine}
}

// ReindexResponse represents the response from the reindex endpoint.
type ReindexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP handles HTTP requests for reindexing. The rebuild is synchronous;
// the corpus is small and the previous index keeps serving queries while the
// new one is built.
func (h *ReindexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger.InfoContext(ctx, "reindexing triggered via API")

	if err := h.engine.Rebuild(ctx); err != nil {
		if errors.Is(err, llm.ErrEmbeddingUnavailable) {
			logger.WarnContext(ctx, "reindex failed, embedding service unavailable", "error", err)
			writeError(w, http.StatusBadGateway, "Embedding service unavailable")
			return
		}
		logger.ErrorContext(ctx, "reindex failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Reindex failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ReindexResponse{
		Message: "Index rebuilt successfully.",
		Status:  "ok",
	})
}
