package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiEmbedder is a client for the Gemini embedContent API.
type GeminiEmbedder struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewGeminiEmbedder creates a new Gemini embeddings client. baseURL may be
// empty, in which case the public endpoint is used.
func NewGeminiEmbedder(baseURL, apiKey, model string) *GeminiEmbedder {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GeminiEmbedder{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// embedContentRequest represents the request payload for the embedContent API.
type embedContentRequest struct {
	Model    string        `json:"model"`
	Content  geminiContent `json:"content"`
	TaskType string        `json:"taskType"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// embedContentResponse represents the response from the embedContent API.
type embedContentResponse struct {
	Embedding struct {
		Values []float64 `json:"values"`
	} `json:"embedding"`
}

// taskType maps the embedding purpose to the Gemini task type tag.
func taskType(purpose Purpose) string {
	if purpose == PurposeQuery {
		return "RETRIEVAL_QUERY"
	}
	return "RETRIEVAL_DOCUMENT"
}

// Embed generates an embedding for the given text. Any transport or API
// failure is reported as ErrEmbeddingUnavailable so callers can fall back to
// keyword retrieval.
func (c *GeminiEmbedder) Embed(ctx context.Context, text string, purpose Purpose) ([]float64, error) {
	if text == "" {
		return nil, fmt.Errorf("empty input text")
	}
	if c.APIKey == "" {
		return nil, fmt.Errorf("no API key configured: %w", ErrEmbeddingUnavailable)
	}

	url := fmt.Sprintf("%s/models/%s:embedContent", c.BaseURL, c.Model)

	payload := embedContentRequest{
		Model:    "models/" + c.Model,
		Content:  geminiContent{Parts: []geminiPart{{Text: text}}},
		TaskType: taskType(purpose),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedContent request failed: %v: %w", err, ErrEmbeddingUnavailable)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedContent status %d: %s: %w", resp.StatusCode, string(raw), ErrEmbeddingUnavailable)
	}

	var embedResp embedContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v: %w", err, ErrEmbeddingUnavailable)
	}

	if len(embedResp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding returned: %w", ErrEmbeddingUnavailable)
	}

	return embedResp.Embedding.Values, nil
}
