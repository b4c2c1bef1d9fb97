package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/mock/gomock"

	"cbc-rag/internal/llm"
	llm_mocks "cbc-rag/internal/llm/mocks"
)

func TestEngineKeywordOnlyMode(t *testing.T) {
	// No embedder configured: retrieval degrades, it does not fail.
	engine := NewEngine(testCorpus(), nil)
	if engine.Ready() {
		t.Fatal("Ready() = true for keyword-only engine")
	}

	result, err := engine.Retrieve(context.Background(), Query{Text: "microcytic anemia workup"}, 4)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !result.Degraded {
		t.Error("Retrieve() Degraded = false, want true")
	}
	if result.Method != MethodKeyword {
		t.Errorf("Retrieve() Method = %q, want %q", result.Method, MethodKeyword)
	}
	if len(result.Chunks) != 1 || result.Chunks[0].Chunk.ID != "mcv" {
		t.Errorf("Retrieve() chunks = %v, want just the mcv chunk", result.Chunks)
	}
}

func TestEngineRebuildWithoutEmbedder(t *testing.T) {
	engine := NewEngine(testCorpus(), nil)
	err := engine.Rebuild(context.Background())
	if !errors.Is(err, llm.ErrEmbeddingUnavailable) {
		t.Fatalf("Rebuild() error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestEngineSemanticRetrieval(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	corpus := testCorpus()
	embedder := llm_mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().
		Embed(gomock.Any(), corpus[0].CompositeText(), llm.PurposeDocument).
		Return([]float64{1, 0}, nil)
	embedder.EXPECT().
		Embed(gomock.Any(), corpus[1].CompositeText(), llm.PurposeDocument).
		Return([]float64{0, 1}, nil)
	embedder.EXPECT().
		Embed(gomock.Any(), "microcytic anemia workup", llm.PurposeQuery).
		Return([]float64{0.9, 0.1}, nil)

	engine := NewEngine(corpus, embedder)
	if err := engine.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}
	if !engine.Ready() {
		t.Fatal("Ready() = false after successful Rebuild()")
	}

	result, err := engine.Retrieve(context.Background(), Query{Text: "microcytic anemia workup"}, 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if result.Degraded {
		t.Error("Retrieve() Degraded = true, want false")
	}
	if result.Method != MethodSemantic {
		t.Errorf("Retrieve() Method = %q, want %q", result.Method, MethodSemantic)
	}
	if len(result.Chunks) != 2 || result.Chunks[0].Chunk.ID != "mcv" {
		t.Errorf("Retrieve() top chunk = %v, want mcv", result.Chunks)
	}
}

func TestEngineFallsBackWhenEmbeddingFailsMidSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	corpus := testCorpus()
	embedder := llm_mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().
		Embed(gomock.Any(), gomock.Any(), llm.PurposeDocument).
		Return([]float64{1, 0}, nil).
		Times(2)
	// Key revoked after the index was built: query-time embedding fails.
	embedder.EXPECT().
		Embed(gomock.Any(), gomock.Any(), llm.PurposeQuery).
		Return(nil, fmt.Errorf("auth rejected: %w", llm.ErrEmbeddingUnavailable))

	engine := NewEngine(corpus, embedder)
	if err := engine.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	result, err := engine.Retrieve(context.Background(), Query{Text: "microcytic anemia workup"}, 4)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, fallback should absorb embedding failure", err)
	}
	if !result.Degraded || result.Method != MethodKeyword {
		t.Errorf("Retrieve() = method %q degraded %v, want keyword/degraded", result.Method, result.Degraded)
	}
	if len(result.Chunks) != 1 || result.Chunks[0].Chunk.ID != "mcv" {
		t.Errorf("Retrieve() chunks = %v, want just the mcv chunk", result.Chunks)
	}
}

func TestEngineDimensionMismatchSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().
		Embed(gomock.Any(), gomock.Any(), llm.PurposeDocument).
		Return([]float64{1, 0}, nil).
		Times(2)
	// Stale index: the query vector comes back with a different dimension.
	embedder.EXPECT().
		Embed(gomock.Any(), gomock.Any(), llm.PurposeQuery).
		Return([]float64{1, 0, 0}, nil)

	engine := NewEngine(testCorpus(), embedder)
	if err := engine.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild() error = %v", err)
	}

	_, err := engine.Retrieve(context.Background(), Query{Text: "microcytic anemia workup"}, 4)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Retrieve() error = %v, want ErrDimensionMismatch", err)
	}
}

func TestEngineInputValidation(t *testing.T) {
	engine := NewEngine(testCorpus(), nil)

	for _, topK := range []int{0, -1, 11, 100} {
		_, err := engine.Retrieve(context.Background(), Query{Text: "anemia"}, topK)
		if !errors.Is(err, ErrInvalidTopK) {
			t.Errorf("Retrieve(topK=%d) error = %v, want ErrInvalidTopK", topK, err)
		}
	}

	_, err := engine.Retrieve(context.Background(), Query{}, 4)
	if !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Retrieve(empty query) error = %v, want ErrEmptyQuery", err)
	}
}

func TestEngineFailedRebuildKeepsPreviousIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := llm_mocks.NewMockEmbedder(ctrl)
	first := embedder.EXPECT().
		Embed(gomock.Any(), gomock.Any(), llm.PurposeDocument).
		Return([]float64{1, 0}, nil).
		Times(2)
	embedder.EXPECT().
		Embed(gomock.Any(), gomock.Any(), llm.PurposeDocument).
		Return(nil, fmt.Errorf("network down: %w", llm.ErrEmbeddingUnavailable)).
		After(first)

	engine := NewEngine(testCorpus(), embedder)
	if err := engine.Rebuild(context.Background()); err != nil {
		t.Fatalf("first Rebuild() error = %v", err)
	}
	if err := engine.Rebuild(context.Background()); err == nil {
		t.Fatal("second Rebuild() expected error, got nil")
	}
	// The previous snapshot stays published.
	if !engine.Ready() {
		t.Error("Ready() = false after failed rebuild, want previous index retained")
	}
}
