package retrieval

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks cbc-rag/internal/retrieval Engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"cbc-rag/internal/contextutil"
	"cbc-rag/internal/knowledge"
	"cbc-rag/internal/llm"
)

// ErrInvalidTopK is returned when the requested result count is outside [1,10].
var ErrInvalidTopK = errors.New("topK must be in [1,10]")

// Engine is the retrieval orchestrator: the single component the handlers
// and the generation pipeline call. Retrieval never fails just because no
// embedder is configured; it degrades to keyword matching instead.
type Engine interface {
	// Retrieve resolves the query to text and returns the topK most relevant
	// chunks, semantically when an index is available and the embedder
	// responds, by keyword overlap otherwise.
	Retrieve(ctx context.Context, q Query, topK int) (Result, error)

	// Rebuild re-embeds the whole corpus and atomically publishes the new
	// index. Queries running concurrently keep using the previous snapshot.
	Rebuild(ctx context.Context) error

	// Ready reports whether a semantic index is currently published.
	Ready() bool
}

type engine struct {
	corpus   []knowledge.Chunk
	embedder llm.Embedder // nil means keyword-only mode
	index    atomic.Pointer[Index]
	logger   *slog.Logger
}

// NewEngine creates a retrieval engine over the given corpus. embedder may be
// nil, which pins the engine to keyword-only (degraded) retrieval.
func NewEngine(corpus []knowledge.Chunk, embedder llm.Embedder) Engine {
	return &engine{
		corpus:   corpus,
		embedder: embedder,
		logger:   slog.Default(),
	}
}

// Rebuild implements Engine. The previous snapshot stays published until the
// new build succeeds, so a failed rebuild never leaves readers with a
// half-built index.
func (e *engine) Rebuild(ctx context.Context) error {
	if e.embedder == nil {
		return fmt.Errorf("no embedder configured: %w", llm.ErrEmbeddingUnavailable)
	}

	idx, err := BuildIndex(ctx, e.corpus, e.embedder)
	if err != nil {
		return err
	}
	e.index.Store(idx)
	e.logger.InfoContext(ctx, "vector index published", "chunks", idx.Size())
	return nil
}

// Ready implements Engine.
func (e *engine) Ready() bool {
	return e.index.Load() != nil
}

// Retrieve implements Engine.
func (e *engine) Retrieve(ctx context.Context, q Query, topK int) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if topK < 1 || topK > 10 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidTopK, topK)
	}

	text, err := BuildQueryText(q)
	if err != nil {
		return Result{}, err
	}

	if idx := e.index.Load(); idx != nil && e.embedder != nil {
		queryVec, err := e.embedder.Embed(ctx, text, llm.PurposeQuery)
		switch {
		case err == nil:
			chunks, err := idx.Search(queryVec, topK)
			if err != nil {
				// Dimension mismatch means index/embedder skew; surface it,
				// a rebuild is required.
				return Result{}, err
			}
			logger.DebugContext(ctx, "semantic retrieval", "hits", len(chunks), "top_k", topK)
			return Result{Chunks: chunks, Method: MethodSemantic}, nil
		case errors.Is(err, llm.ErrEmbeddingUnavailable):
			logger.WarnContext(ctx, "embedding unavailable, falling back to keyword retrieval", "error", err)
		default:
			return Result{}, fmt.Errorf("failed to embed query: %w", err)
		}
	}

	chunks := KeywordSearch(text, e.corpus, topK)
	logger.DebugContext(ctx, "keyword retrieval", "hits", len(chunks), "top_k", topK)
	return Result{Chunks: chunks, Degraded: true, Method: MethodKeyword}, nil
}
