package retrieval

import (
	"testing"

	"cbc-rag/internal/knowledge"
)

func TestKeywordScore(t *testing.T) {
	chunk := knowledge.Chunk{
		ID:       "mcv",
		Keywords: []string{"MCV", "microcytic", "red cell size"},
	}

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"no match", "platelet function disorder", 0},
		{"single keyword", "microcytic anemia workup", 1},
		{"case insensitive", "what does a low mcv mean", 1},
		{"multi-word keyword", "causes of reduced red cell size", 1},
		{"keyword counted once despite repetition", "mcv low, repeat mcv still low, mcv again", 1},
		{"several keywords", "mcv shows microcytic red cell size pattern", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KeywordScore(tt.query, chunk); got != tt.want {
				t.Errorf("KeywordScore(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestKeywordSearchExcludesZeroScores(t *testing.T) {
	// Corpus: MCV chunk and MPV chunk; "microcytic" appears only in the MCV
	// keywords, so the MPV chunk scores zero and is excluded entirely.
	corpus := testCorpus()

	results := KeywordSearch("microcytic anemia workup", corpus, 4)
	if len(results) != 1 {
		t.Fatalf("KeywordSearch() returned %d results, want 1", len(results))
	}
	if results[0].Chunk.ID != "mcv" {
		t.Errorf("KeywordSearch() top result = %s, want mcv", results[0].Chunk.ID)
	}
	if results[0].Score != 1 {
		t.Errorf("KeywordSearch() score = %v, want 1", results[0].Score)
	}
}

func TestKeywordSearchNoHits(t *testing.T) {
	corpus := testCorpus()
	for _, topK := range []int{1, 5, 10} {
		if results := KeywordSearch("hepatic transaminase elevation", corpus, topK); len(results) != 0 {
			t.Errorf("KeywordSearch(topK=%d) = %d results, want 0", topK, len(results))
		}
	}
}

func TestKeywordSearchRankingAndTruncation(t *testing.T) {
	corpus := []knowledge.Chunk{
		{ID: "one-hit", Keywords: []string{"anemia"}},
		{ID: "two-hits", Keywords: []string{"anemia", "ferritin"}},
		{ID: "zero-hits", Keywords: []string{"platelet"}},
	}

	results := KeywordSearch("anemia with low ferritin", corpus, 1)
	if len(results) != 1 {
		t.Fatalf("KeywordSearch() returned %d results, want 1", len(results))
	}
	if results[0].Chunk.ID != "two-hits" {
		t.Errorf("KeywordSearch() top result = %s, want two-hits", results[0].Chunk.ID)
	}
}

func TestKeywordSearchTieBreaksByCorpusOrder(t *testing.T) {
	corpus := []knowledge.Chunk{
		{ID: "first", Keywords: []string{"anemia"}},
		{ID: "second", Keywords: []string{"anemia"}},
	}

	results := KeywordSearch("anemia", corpus, 2)
	if len(results) != 2 || results[0].Chunk.ID != "first" || results[1].Chunk.ID != "second" {
		t.Errorf("KeywordSearch() tie order = %v, want corpus order", results)
	}
}
