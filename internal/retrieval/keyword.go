package retrieval

import (
	"sort"
	"strings"

	"cbc-rag/internal/knowledge"
)

// KeywordScore counts how many of the chunk's keywords appear in the query,
// case-insensitively. Each keyword counts at most once no matter how often it
// repeats in the query.
func KeywordScore(query string, chunk knowledge.Chunk) int {
	q := strings.ToLower(query)
	score := 0
	for _, kw := range chunk.Keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(q, strings.ToLower(kw)) {
			score++
		}
	}
	return score
}

// KeywordSearch ranks chunks by keyword overlap with the query, descending,
// ties broken by corpus order. Chunks with zero keyword hits are excluded
// regardless of topK: an irrelevant chunk is worse than a short result.
func KeywordSearch(query string, chunks []knowledge.Chunk, topK int) []ScoredChunk {
	scored := make([]ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		score := KeywordScore(query, chunk)
		if score == 0 {
			continue
		}
		scored = append(scored, ScoredChunk{Chunk: chunk, Score: float64(score)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored
}
