// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package openai provides a very minimal client for the OpenAI Chat
// Completions API.
package openai

import (
	"context"
	"net/http"
	"strings"

	"go.astrophena.name/newsdigest/internal/llm"
	"go.astrophena.name/newsdigest/internal/request"
)

const apiURL = "https://api.openai.com/v1"

// DefaultModel is used when Client.Model is empty.
const DefaultModel = "gpt-3.5-turbo"

// Client holds configuration for interacting with the OpenAI API.
type Client struct {
	// APIKey is the API key used for authentication.
	APIKey string
	// Model is the chat model name. Defaults to DefaultModel.
	Model string
	// HTTPClient is an optional HTTP client to use for requests. Defaults to
	// request.DefaultClient.
	HTTPClient *http.Client
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionParams is the request body of the chat completions endpoint.
type ChatCompletionParams struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float32   `json:"temperature,omitempty"`
}

// ChatCompletion is the response of the chat completions endpoint.
type ChatCompletion struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// CreateChatCompletion sends a request to the chat completions endpoint.
func (c *Client) CreateChatCompletion(ctx context.Context, params ChatCompletionParams) (*ChatCompletion, error) {
	return request.Make[*ChatCompletion](ctx, request.Params{
		Method: http.MethodPost,
		URL:    apiURL + "/chat/completions",
		Headers: map[string]string{
			"Authorization": "Bearer " + c.APIKey,
		},
		Body:       params,
		HTTPClient: c.HTTPClient,
		Scrubber:   c.scrubber(),
	})
}

func (c *Client) scrubber() *strings.Replacer {
	if c.APIKey == "" {
		return nil
	}
	return strings.NewReplacer(c.APIKey, "[EXPUNGED]")
}

// Complete implements [llm.Completer] by sending the prompt as a single user
// message and returning the first choice, trimmed.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	resp, err := c.CreateChatCompletion(ctx, ChatCompletionParams{
		Model:       model,
		Messages:    []Message{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", llm.ErrEmptyCompletion
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

var _ llm.Completer = (*Client)(nil)
