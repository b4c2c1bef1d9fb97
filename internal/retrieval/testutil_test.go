package retrieval

import (
	"context"

	"cbc-rag/internal/knowledge"
	"cbc-rag/internal/llm"
)

// embedFunc adapts a function to the llm.Embedder interface for tests.
type embedFunc func(ctx context.Context, text string, purpose llm.Purpose) ([]float64, error)

func (f embedFunc) Embed(ctx context.Context, text string, purpose llm.Purpose) ([]float64, error) {
	return f(ctx, text, purpose)
}

// hashEmbedder is a deterministic offline embedder: identical text always
// maps to the identical vector, different texts almost surely do not.
func hashEmbedder(dim int) embedFunc {
	return func(_ context.Context, text string, _ llm.Purpose) ([]float64, error) {
		vec := make([]float64, dim)
		for i, r := range text {
			vec[(i+int(r))%dim] += float64(r) / 1000.0
		}
		return vec, nil
	}
}

// testCorpus returns a two-chunk corpus: one RBC chunk, one platelet chunk.
func testCorpus() []knowledge.Chunk {
	return []knowledge.Chunk{
		{
			ID:       "mcv",
			Section:  "RBC Parameters",
			Title:    "MCV",
			Keywords: []string{"MCV", "microcytic"},
			Text:     "Mean corpuscular volume measures red cell size.",
		},
		{
			ID:       "mpv",
			Section:  "Platelet Parameters",
			Title:    "MPV",
			Keywords: []string{"MPV", "platelet size"},
			Text:     "Mean platelet volume measures platelet size.",
		},
	}
}
