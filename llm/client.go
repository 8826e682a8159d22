/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Defaults for the OpenAI-compatible endpoint.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
	defaultTimeout = 120 * time.Second
)

// Config holds the settings of one chat completion client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Request is a single-turn chat completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
	// JSON asks the model for a JSON object response.
	JSON bool
}

// Completer is anything that can answer a chat completion request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f(ctx, req).
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// OpenAI-compatible request/response structures
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	http  *resty.Client
	model string
}

// New creates a client. BaseURL and Model fall back to the Groq defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrAPIKeyRequired
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, model: model}, nil
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the request and returns the content of the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model:       c.model,
		Temperature: req.Temperature,
	}

	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}

	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.User})

	if req.JSON {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	var result chatResponse

	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("failed to call chat completions: %w", err)
	}

	logger.Debug("Chat completion finished",
		"model", c.model,
		"status", resp.StatusCode(),
		"json", req.JSON,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	if resp.IsError() {
		msg := strings.TrimSpace(resp.String())
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}

		return "", fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, resp.StatusCode(), msg)
	}

	if result.Error != nil {
		return "", fmt.Errorf("LLM error: %s", result.Error.Message)
	}

	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return result.Choices[0].Message.Content, nil
}

// CompleteJSON runs a JSON-mode completion and decodes the answer into out.
func CompleteJSON(ctx context.Context, c Completer, req Request, out any) error {
	req.JSON = true

	content, err := c.Complete(ctx, req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(stripFences(content)), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	return nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}

	s = strings.TrimSuffix(strings.TrimSpace(s), "```")

	return strings.TrimSpace(s)
}
