package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks cbc-rag/internal/llm Embedder

import (
	"context"
	"errors"
)

// ErrEmbeddingUnavailable signals that no embedding service is configured or
// that the remote call failed (network, quota, auth). Callers treat this as
// the trigger for keyword-fallback retrieval, not as a fatal error.
var ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

// Purpose tags an embedding call as document-time or query-time. The remote
// service may use different internal representations for the two, so they
// must never be conflated or cached interchangeably.
type Purpose int

const (
	// PurposeDocument embeds corpus passages at index build time.
	PurposeDocument Purpose = iota
	// PurposeQuery embeds user queries at search time.
	PurposeQuery
)

// Embedder turns text into a fixed-length numeric vector.
type Embedder interface {
	// Embed returns the embedding for text. Implementations must return an
	// error wrapping ErrEmbeddingUnavailable whenever the remote service
	// cannot be reached, so retrieval can degrade instead of failing.
	Embed(ctx context.Context, text string, purpose Purpose) ([]float64, error)
}
