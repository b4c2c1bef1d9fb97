package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"cbc-rag/internal/cbc"
	"cbc-rag/internal/contextutil"
	"cbc-rag/internal/retrieval"
)

// RetrieveHandler handles HTTP requests for knowledge base retrieval.
type RetrieveHandler struct {
	engine      retrieval.Engine
	defaultTopK int
}

// NewRetrieveHandler creates a new RetrieveHandler.
func NewRetrieveHandler(engine retrieval.Engine, defaultTopK int) *RetrieveHandler {
	return &RetrieveHandler{
		engine:      engine,
		defaultTopK: defaultTopK,
	}
}

// CBCRequest carries CBC values in a request payload. Values is keyed by
// parameter code, for example "hgb" or "mcv".
type CBCRequest struct {
	Values map[string]float64 `json:"values"`
	Sex    string             `json:"sex,omitempty"`
	Age    int                `json:"age,omitempty"`
}

// toPanel converts the payload to a cbc.Panel. Returns nil when no values
// were supplied.
func (c *CBCRequest) toPanel() *cbc.Panel {
	if c == nil || len(c.Values) == 0 {
		return nil
	}
	return &cbc.Panel{Values: c.Values, Sex: c.Sex, Age: c.Age}
}

// validate rejects unknown parameter codes so a typo degrades loudly instead
// of silently dropping the value from the query.
func (c *CBCRequest) validate() error {
	if c == nil {
		return nil
	}
	for code := range c.Values {
		if _, ok := cbc.Lookup(code); !ok {
			return fmt.Errorf("unknown CBC parameter %q", code)
		}
	}
	switch c.Sex {
	case "", "M", "F":
	default:
		return fmt.Errorf("sex must be \"M\" or \"F\", got %q", c.Sex)
	}
	return nil
}

// RetrieveRequest represents the HTTP request payload for retrieval.
// Query takes precedence over CBC when both are present.
type RetrieveRequest struct {
	Query string      `json:"query,omitempty"`
	CBC   *CBCRequest `json:"cbc,omitempty"`
	TopK  int         `json:"top_k,omitempty"`
}

// RetrievedChunk is one ranked knowledge chunk in the response.
type RetrievedChunk struct {
	ChunkID  string   `json:"chunk_id"`
	Section  string   `json:"section"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
	Text     string   `json:"text"`
	Score    float64  `json:"score"`
}

// RetrieveResponse represents the HTTP response payload for retrieval.
type RetrieveResponse struct {
	Chunks   []RetrievedChunk `json:"chunks"`
	Method   string           `json:"method"`
	Degraded bool             `json:"degraded"`
}

// ServeHTTP handles HTTP requests for retrieval.
func (h *RetrieveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RetrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.CBC.validate(); err != nil {
		logger.WarnContext(ctx, "invalid CBC payload", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = h.defaultTopK
	}

	query := retrieval.Query{Text: req.Query, Panel: req.CBC.toPanel()}
	result, err := h.engine.Retrieve(ctx, query, topK)
	if err != nil {
		handleRetrievalError(w, r, err)
		return
	}

	resp := RetrieveResponse{
		Chunks:   make([]RetrievedChunk, 0, len(result.Chunks)),
		Method:   result.Method,
		Degraded: result.Degraded,
	}
	for _, sc := range result.Chunks {
		resp.Chunks = append(resp.Chunks, RetrievedChunk{
			ChunkID:  sc.Chunk.ID,
			Section:  sc.Chunk.Section,
			Title:    sc.Chunk.Title,
			Keywords: sc.Chunk.Keywords,
			Text:     sc.Chunk.Text,
			Score:    sc.Score,
		})
	}

	if err := writeJSON(w, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleRetrievalError maps retrieval errors to HTTP status codes.
func handleRetrievalError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case errors.Is(err, retrieval.ErrEmptyQuery):
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query text or CBC values are required")
	case errors.Is(err, retrieval.ErrInvalidTopK):
		logger.WarnContext(ctx, "invalid top_k in request", "error", err)
		writeError(w, http.StatusBadRequest, "top_k must be between 1 and 10")
	case errors.Is(err, retrieval.ErrDimensionMismatch):
		logger.ErrorContext(ctx, "index dimension mismatch, reindex required", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Index out of date, reindex required")
	default:
		logger.ErrorContext(ctx, "retrieval failed", "error", err)
		writeError(w, http.StatusBadGateway, "Retrieval failed")
	}
}
