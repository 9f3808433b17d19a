// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package ai turns natural-language questions into SQL through an
// OpenAI-compatible chat-completions endpoint, and repairs failed SQL given
// the database error. Every failure at this boundary — transport, HTTP
// status, response parsing, empty completion — is reported as a structured
// generation error, never raised as a fault. Retry policy does not live
// here; it belongs entirely to the executor's repair loop.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"askdb/cli/internal/errors"
)

// DefaultBaseURL is the provider endpoint used when none is configured.
const DefaultBaseURL = "https://api.openai.com"

// Config holds the AI provider settings.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client is a minimal OpenAI-compatible chat-completions client.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

// NewClient validates the configuration and builds a client.
// A missing API key is a configuration error: generation cannot proceed.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New(errors.Configuration, "AI provider API key is not set (run 'askdb key set' or export ASKDB_API_KEY)")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// complete sends one chat-completion request and returns the SQL extracted
// from the structured {"sql": "..."} response object.
func (c *Client) complete(ctx context.Context, systemPrompt string, messages []chatMessage) (string, error) {
	payload := map[string]any{
		"model":       c.model,
		"temperature": c.temperature,
		"messages":    append([]chatMessage{{Role: "system", Content: systemPrompt}}, messages...),
		"response_format": map[string]any{
			"type": "json_object",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(errors.Generation, "marshal chat payload", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(errors.Generation, "build chat request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(errors.Generation, "request chat completion", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(errors.Generation, "read chat response body", err)
	}
	if resp.StatusCode >= 400 {
		return "", errors.Newf(errors.Generation, "chat completion failed status=%d body=%s", resp.StatusCode, truncate(string(rawBody), 500))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return "", errors.Wrap(errors.Generation, "decode chat completion response", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New(errors.Generation, "empty chat completion choices")
	}

	content := CleanSQL(parsed.Choices[0].Message.Content)
	var structured struct {
		SQL string `json:"sql"`
	}
	if err := json.Unmarshal([]byte(content), &structured); err != nil {
		return "", errors.Wrap(errors.Generation, "model response is not a valid {\"sql\": ...} object", err)
	}

	sqlText := CleanSQL(structured.SQL)
	if sqlText == "" {
		return "", errors.New(errors.Generation, "model returned empty SQL")
	}
	return sqlText, nil
}

// CleanSQL strips Markdown code-fence wrapping (leading ```sql or ``` and a
// trailing ```) and surrounding whitespace from model output. Cleaning an
// already-clean string is a no-op, so the function is idempotent.
func CleanSQL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```sql")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	}
	return strings.TrimSpace(trimmed)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
