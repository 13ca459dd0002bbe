package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"powerwrite-backend/internal/config"
)

// Client is a minimal chat-completion client for OpenAI-compatible
// providers. Key selection happens per request: OpenRouter is used when
// its key is present and the caller asked for a non-default model,
// otherwise OpenAI. At least one key must be configured.
type Client struct {
	cfg        config.AIConfig
	httpClient *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// resolveProvider picks base URL + key for the requested model.
func (c *Client) resolveProvider(modelID string) (baseURL, apiKey string, err error) {
	wantsRouter := modelID != "" && modelID != c.cfg.DefaultModel && strings.Contains(modelID, "/")

	if wantsRouter && c.cfg.OpenRouterKey != "" {
		return c.cfg.BaseURLRouter, c.cfg.OpenRouterKey, nil
	}
	if c.cfg.OpenAIKey != "" {
		return c.cfg.BaseURLOpenAI, c.cfg.OpenAIKey, nil
	}
	if c.cfg.OpenRouterKey != "" {
		return c.cfg.BaseURLRouter, c.cfg.OpenRouterKey, nil
	}
	return "", "", fmt.Errorf("no API key configured: set OPENAI_API_KEY or OPENROUTER_API_KEY")
}

// ChatCompletion sends a chat request and returns the first choice's
// content plus the model the provider reports having used.
func (c *Client) ChatCompletion(ctx context.Context, modelID string, messages []Message) (string, string, error) {
	baseURL, apiKey, err := c.resolveProvider(modelID)
	if err != nil {
		return "", "", err
	}

	model := modelID
	if model == "" {
		model = c.cfg.DefaultModel
	}

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.8,
	})
	if err != nil {
		return "", "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("provider request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read provider response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", "", fmt.Errorf("provider rejected API key (status %d)", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[AI] Provider error %d: %s", resp.StatusCode, truncate(string(data), 500))
		return "", "", fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", "", fmt.Errorf("decode provider response: %w", err)
	}
	if parsed.Error != nil {
		return "", "", fmt.Errorf("provider error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", "", fmt.Errorf("provider returned no choices")
	}

	modelUsed := parsed.Model
	if modelUsed == "" {
		modelUsed = model
	}

	return parsed.Choices[0].Message.Content, modelUsed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
