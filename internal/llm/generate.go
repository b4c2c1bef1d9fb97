package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// GenerateClient is a client for the Gemini generateContent API. It is the
// generation-side collaborator of the retrieval core: it consumes the
// retrieved context but plays no part in ranking.
type GenerateClient struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewGenerateClient creates a new generation client. baseURL may be empty,
// in which case the public endpoint is used.
func NewGenerateClient(baseURL, apiKey, model string) *GenerateClient {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	return &GenerateClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// GenerateParams holds parameters for generation requests.
type GenerateParams struct {
	// Temperature controls output randomness. Clinical answers use a low value.
	Temperature float64
	// MaxOutputTokens caps the answer length. Zero means the API default.
	MaxOutputTokens int
}

// generateContentRequest represents the request payload for generateContent.
type generateContentRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// generateContentResponse represents the response from generateContent.
type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends a prompt to the generation API and returns the answer text.
func (c *GenerateClient) Generate(ctx context.Context, prompt string, params GenerateParams) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)

	payload := generateContentRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     params.Temperature,
			MaxOutputTokens: params.MaxOutputTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var genResp generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no candidates returned")
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
