// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package summarize generates literature summaries through a hosted
// chat-completions API.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pdiddy/pubmed-insight/pkg/types"
)

// apiURL is the chat-completions endpoint. Package-level var for test
// substitution.
var apiURL = "https://api.siliconflow.cn/v1/chat/completions"

// systemPrompt frames the model as a medical-literature assistant.
const systemPrompt = "You are a medical literature assistant. Write a concise, integrated synthesis of the following article abstracts:"

// ErrNoAPIKey reports a missing credential. No request is attempted
// without one.
var ErrNoAPIKey = errors.New("summarization API key not configured")

// Options selects the model and sampling settings for one request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client calls the chat-completions API. Requests are not retried;
// a failed call surfaces directly to the caller.
type Client struct {
	APIKey string
	HTTP   *http.Client
}

// NewClient builds a Client from config, with an HTTP client bounded by
// the configured timeout.
func NewClient(cfg types.SummarizeConfig) *Client {
	return &Client{
		APIKey: cfg.APIKey,
		HTTP:   &http.Client{Timeout: cfg.Timeout},
	}
}

// chatRequest is the request body for the chat-completions API.
type chatRequest struct {
	Model            string         `json:"model"`
	Messages         []chatMessage  `json:"messages"`
	Stream           bool           `json:"stream"`
	MaxTokens        int            `json:"max_tokens"`
	Temperature      float64        `json:"temperature"`
	TopP             float64        `json:"top_p"`
	TopK             int            `json:"top_k"`
	FrequencyPenalty float64        `json:"frequency_penalty"`
	N                int            `json:"n"`
	ResponseFormat   responseFormat `json:"response_format"`
}

// chatMessage is a single message in the chat conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the response body from the chat-completions API.
type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

// Summarize sends the corpus to the model and returns the generated
// summary text.
func (c *Client) Summarize(ctx context.Context, corpus string, opts Options) (string, error) {
	if c.APIKey == "" {
		return "", ErrNoAPIKey
	}

	reqBody := chatRequest{
		Model: opts.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: corpus},
		},
		MaxTokens:      opts.MaxTokens,
		Temperature:    opts.Temperature,
		TopP:           0.7,
		TopK:           50,
		N:              1,
		ResponseFormat: responseFormat{Type: "text"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling summarization API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("summarization API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding summarization response: %w", err)
	}
	if len(cResp.Choices) == 0 {
		return "", fmt.Errorf("summarization API returned no choices")
	}

	return strings.TrimSpace(cResp.Choices[0].Message.Content), nil
}
