// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package gemini implements text completion with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"strings"

	"go.astrophena.name/newsdigest/internal/llm"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is given to [New].
const DefaultModel = "gemini-1.5-flash"

// Client completes prompts with a Gemini model.
type Client struct {
	client *genai.Client
	model  string
}

// New returns a Client authenticated with apiKey. Additional options are
// passed to the underlying genai client.
func New(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	c, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Client{client: c, model: model}, nil
}

// Close releases resources held by the client.
func (c *Client) Close() error { return c.client.Close() }

// Complete implements [llm.Completer].
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	m := c.client.GenerativeModel(c.model)
	if req.MaxTokens > 0 {
		m.SetMaxOutputTokens(int32(req.MaxTokens))
	}
	if req.Temperature > 0 {
		m.SetTemperature(req.Temperature)
	}
	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", err
	}
	return Text(resp)
}

// Text joins the text parts of the first candidate of resp.
func Text(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", llm.ErrEmptyCompletion
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

var _ llm.Completer = (*Client)(nil)
