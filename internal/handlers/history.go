package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cbc-rag/internal/contextutil"
	"cbc-rag/internal/storage"
)

// HistoryHandler handles HTTP requests for analysis history.
type HistoryHandler struct {
	store storage.AnalysisStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(store storage.AnalysisStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// HistoryListResponse represents the list response for analysis history.
type HistoryListResponse struct {
	Analyses []*storage.AnalysisRecord `json:"analyses"`
}

// List handles GET requests for recent analyses.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = parsed
	}

	records, err := h.store.ListRecent(ctx, limit)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list analyses", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	if err := writeJSON(w, HistoryListResponse{Analyses: records}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// Get handles GET requests for one analysis by ID.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, err := h.store.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to get analysis", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}

	if err := writeJSON(w, rec); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
