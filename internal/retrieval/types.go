package retrieval

import (
	"cbc-rag/internal/cbc"
	"cbc-rag/internal/knowledge"
)

// Vector is a fixed-dimension embedding. Document and query vectors for a
// given index must come from the same embedder; mixing dimensions surfaces
// as ErrDimensionMismatch at search time.
type Vector []float64

// IndexEntry pairs one knowledge chunk with its document vector. Entries are
// created during index build and never mutated; a rebuild replaces the whole
// index.
type IndexEntry struct {
	Chunk  knowledge.Chunk
	Vector Vector
}

// ScoredChunk is one retrieval hit.
type ScoredChunk struct {
	Chunk knowledge.Chunk
	Score float64
}

// Retrieval methods reported in results.
const (
	MethodSemantic = "semantic"
	MethodKeyword  = "keyword"
)

// Result is an ordered set of retrieval hits, descending by score. Degraded
// is set when the hits came from keyword matching instead of embeddings, so
// callers can disclose that the results are lexical rather than semantic.
type Result struct {
	Chunks   []ScoredChunk
	Degraded bool
	Method   string
}

// Query is a clinical query: either raw free text or a structured CBC panel.
// When both are supplied the text wins.
type Query struct {
	Text  string
	Panel *cbc.Panel
}
