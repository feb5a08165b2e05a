// Package ollama implements the local generation backend against an Ollama
// server's /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"riskrag/config"
	"riskrag/internal/provider"
)

// Client talks to a single Ollama instance.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type generateRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	Stream      bool    `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// New builds a client from configuration. Timeout defaults to 12s, matching
// a local model that either answers quickly or not at all.
func New(cfg config.OllamaConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate sends the prompt with temperature 0 and returns the trimmed
// completion. Wording is all the model decides; evidence was decided before
// this call.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:       c.model,
		Prompt:      prompt,
		Temperature: 0,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	answer := strings.TrimSpace(out.Response)
	if answer == "" {
		return "", provider.ErrEmptyCompletion
	}
	return answer, nil
}
