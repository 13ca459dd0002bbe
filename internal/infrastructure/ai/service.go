package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"powerwrite-backend/internal/domains/outline"
)

// AIService is the facade the generation domain talks to. The provider
// is an opaque collaborator: prompts in, parsed structures out.
type AIService struct {
	client *Client
}

func NewAIService(client *Client) *AIService {
	return &AIService{client: client}
}

const outlineSystemPrompt = `You are a professional book-planning assistant. ` +
	`Respond with a single JSON object matching this shape and nothing else: ` +
	`{"title":"","author":"","description":"","totalWordCount":0,` +
	`"chapters":[{"number":1,"title":"","summary":"","wordCount":0,"keyEvents":[]}],` +
	`"themes":[],"characters":[{"name":"","role":"","description":""}]}`

// GenerateOutline asks the provider for a full book outline and parses
// it. Returns the outline and the model the provider reports.
func (s *AIService) GenerateOutline(ctx context.Context, modelID, prompt string) (*outline.BookOutline, string, error) {
	content, modelUsed, err := s.client.ChatCompletion(ctx, modelID, []Message{
		{Role: "system", Content: outlineSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, "", err
	}

	parsed, err := ParseOutline(content)
	if err != nil {
		return nil, "", err
	}

	return parsed, modelUsed, nil
}

const chapterSystemPrompt = `You are a professional novelist. Write the requested ` +
	`chapter as plain prose. Do not include headings, notes, or metadata.`

// GenerateChapter asks the provider for one chapter's prose.
func (s *AIService) GenerateChapter(ctx context.Context, modelID, prompt string) (string, string, error) {
	content, modelUsed, err := s.client.ChatCompletion(ctx, modelID, []Message{
		{Role: "system", Content: chapterSystemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return "", "", err
	}

	text := strings.TrimSpace(content)
	if text == "" {
		return "", "", fmt.Errorf("provider returned empty chapter")
	}

	return text, modelUsed, nil
}

// ParseOutline decodes the provider's outline JSON. Models often wrap
// JSON in markdown fences; strip them before decoding.
func ParseOutline(content string) (*outline.BookOutline, error) {
	cleaned := StripCodeFence(content)

	var o outline.BookOutline
	if err := json.Unmarshal([]byte(cleaned), &o); err != nil {
		return nil, fmt.Errorf("parse outline response: %w", err)
	}

	if o.Title == "" || len(o.Chapters) == 0 {
		return nil, fmt.Errorf("outline response missing title or chapters")
	}

	// Providers are unreliable about numbering; enforce it here.
	o.Renumber()

	return &o, nil
}

// StripCodeFence removes a surrounding ```json ... ``` fence if present.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
