package retrieval

import (
	"context"
	"fmt"
	"sort"

	"cbc-rag/internal/knowledge"
	"cbc-rag/internal/llm"
)

// Index is an immutable in-memory vector index over the knowledge corpus.
// Once built it is safe for concurrent reads; a rebuild produces a fresh
// Index that gets published atomically by the engine.
type Index struct {
	entries []IndexEntry
}

// BuildIndex embeds every chunk's composite text and returns the built index.
// The build is all-or-nothing: a failure on any chunk fails the whole build,
// since a partially embedded index would bias retrieval toward whichever
// chunks happened to embed first.
func BuildIndex(ctx context.Context, chunks []knowledge.Chunk, embedder llm.Embedder) (*Index, error) {
	entries := make([]IndexEntry, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := embedder.Embed(ctx, chunk.CompositeText(), llm.PurposeDocument)
		if err != nil {
			return nil, fmt.Errorf("building index: embedding chunk %q: %w", chunk.ID, err)
		}
		entries = append(entries, IndexEntry{Chunk: chunk, Vector: vec})
	}
	return &Index{entries: entries}, nil
}

// Size returns the number of indexed chunks.
func (idx *Index) Size() int {
	return len(idx.entries)
}

// Search scores every entry against the query vector (a linear scan is fine
// at this corpus scale) and returns at most topK hits, descending by cosine
// similarity. Ties keep corpus insertion order so results are deterministic.
func (idx *Index) Search(query Vector, topK int) ([]ScoredChunk, error) {
	scored := make([]ScoredChunk, 0, len(idx.entries))
	for _, entry := range idx.entries {
		score, err := CosineSimilarity(query, entry.Vector)
		if err != nil {
			return nil, err
		}
		scored = append(scored, ScoredChunk{Chunk: entry.Chunk, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}
