// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package elevenlabs provides a minimal client for the ElevenLabs
// text-to-speech API.
package elevenlabs

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.astrophena.name/newsdigest/internal/request"
)

const apiURL = "https://api.elevenlabs.io/v1"

// DefaultModel is used when Client.Model is empty.
const DefaultModel = "eleven_monolingual_v1"

// Client holds configuration for interacting with the ElevenLabs API.
type Client struct {
	// APIKey is the API key used for authentication.
	APIKey string
	// Model is the speech model ID. Defaults to DefaultModel.
	Model string
	// HTTPClient is an optional HTTP client to use for requests. Defaults to
	// request.DefaultClient.
	HTTPClient *http.Client
}

type speechParams struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Synthesize returns MP3 audio of text spoken by the voice with ID voice.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if voice == "" {
		return nil, errors.New("elevenlabs: empty voice ID")
	}
	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	audio, err := request.Make[request.Bytes](ctx, request.Params{
		Method: http.MethodPost,
		URL:    apiURL + "/text-to-speech/" + url.PathEscape(voice),
		Headers: map[string]string{
			"Accept":     "audio/mpeg",
			"xi-api-key": c.APIKey,
		},
		Body:       speechParams{Text: text, ModelID: model},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.scrubber(),
	})
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, errors.New("elevenlabs: empty audio")
	}
	return audio, nil
}

func (c *Client) scrubber() *strings.Replacer {
	if c.APIKey == "" {
		return nil
	}
	return strings.NewReplacer(c.APIKey, "[EXPUNGED]")
}
