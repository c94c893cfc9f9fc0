// Package assistant asks a hosted chat-completion model to correct search
// queries. Any OpenAI-compatible endpoint works.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/keyvault/backend/internal/domain/search"
)

const (
	defaultBaseURL        = "https://api.openai.com/v1"
	defaultModel          = "gpt-4o-mini"
	defaultSampleProducts = 30
)

// Errors returned by the client
var (
	ErrMissingAPIKey = errors.New("assistant: missing API key")
	ErrEmptyAnswer   = errors.New("assistant: empty answer")
)

// Config configures the chat-completion client
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// SampleProducts caps the product names included in the prompt
	SampleProducts int
}

// Client implements search.Suggester over an OpenAI-compatible chat/completions API
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a client
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.SampleProducts <= 0 {
		cfg.SampleProducts = defaultSampleProducts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}, nil
}

// WithHTTPClient replaces the HTTP client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Suggest implements search.Suggester
func (c *Client) Suggest(ctx context.Context, query string, sc search.SuggestContext) (*search.Suggestion, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt(sc)},
			{Role: "user", Content: query},
		},
		Temperature: 0.2,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, fmt.Errorf("assistant: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("assistant: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("assistant: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("assistant: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("assistant: HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var cr chatResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return nil, fmt.Errorf("assistant: decode response: %w", err)
	}
	if cr.Error != nil {
		return nil, fmt.Errorf("assistant: %s", cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return nil, ErrEmptyAnswer
	}
	return ParseSuggestion(cr.Choices[0].Message.Content)
}

func (c *Client) systemPrompt(sc search.SuggestContext) string {
	names := sc.ProductNames
	if len(names) > c.cfg.SampleProducts {
		names = names[:c.cfg.SampleProducts]
	}

	var b strings.Builder
	b.WriteString("You correct search queries for a marketplace of digital goods (game keys, gift cards, subscriptions).\n")
	b.WriteString("Fix typos and map the query to the vocabulary below. Also propose up to 5 related search terms.\n")
	b.WriteString("Answer with JSON only, no prose: {\"correctedQuery\": string, \"suggestions\": [string]}.\n")
	b.WriteString("If the query is already correct, return it unchanged.\n")
	if len(sc.Categories) > 0 {
		b.WriteString("Categories: " + strings.Join(sc.Categories, ", ") + "\n")
	}
	if len(names) > 0 {
		b.WriteString("Products: " + strings.Join(names, ", ") + "\n")
	}
	return b.String()
}

// ParseSuggestion decodes the model's answer. Markdown code fences around
// the JSON are tolerated.
func ParseSuggestion(text string) (*search.Suggestion, error) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```") {
		if idx := strings.Index(cleaned, "\n"); idx >= 0 {
			cleaned = cleaned[idx+1:]
		}
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	if cleaned == "" {
		return nil, ErrEmptyAnswer
	}

	var s search.Suggestion
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return nil, fmt.Errorf("assistant: parse answer: %w (raw: %s)", err, truncate(text, 200))
	}
	return &s, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ search.Suggester = (*Client)(nil)
