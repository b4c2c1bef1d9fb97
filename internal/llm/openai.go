package llm

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIEmbedder uses an OpenAI-compatible embeddings API. It serves as the
// alternative remote provider for deployments without Gemini access.
// OpenAI has no document/query task distinction, so both purposes map to the
// same request; the Purpose tag is still honored at the interface level.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an OpenAI embedder. baseURL may be empty for the
// public endpoint, or point at any OpenAI-compatible server.
func NewOpenAIEmbedder(baseURL, apiKey, model string) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Embed generates an L2-normalized embedding for the given text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string, _ Purpose) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("empty input text")
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("embeddings request failed: %v: %w", err, ErrEmbeddingUnavailable)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned: %w", ErrEmbeddingUnavailable)
	}

	v32 := resp.Data[0].Embedding
	v := make([]float64, len(v32))
	for i := range v32 {
		v[i] = float64(v32[i])
	}

	l2normalize(v)
	return v, nil
}

// l2normalize scales a vector to unit length in place.
func l2normalize(v []float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range v {
		v[i] *= inv
	}
}
