// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package tts synthesizes speech with Google Cloud Text-to-Speech.
package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/texttospeech/v1"
)

// Scopes are the OAuth 2.0 scopes the service account token must carry.
var Scopes = []string{texttospeech.CloudPlatformScope}

// DefaultLanguage is the locale used when none is configured.
const DefaultLanguage = "cmn-TW"

// Client is a Text-to-Speech client.
type Client struct {
	svc *texttospeech.Service
	// Language is the BCP-47 language code of the voices.
	Language string
}

// New returns a new Client for voices in language.
func New(ctx context.Context, language string, opts ...option.ClientOption) (*Client, error) {
	svc, err := texttospeech.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("tts: creating service: %w", err)
	}
	if language == "" {
		language = DefaultLanguage
	}
	return &Client{svc: svc, Language: language}, nil
}

// Synthesize returns MP3 audio of text spoken by voice.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	resp, err := c.svc.Text.Synthesize(&texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: c.Language,
			Name:         voice,
		},
		AudioConfig: &texttospeech.AudioConfig{AudioEncoding: "MP3"},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("tts: synthesizing speech: %w", err)
	}
	audio, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, fmt.Errorf("tts: decoding audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("tts: empty audio")
	}
	return audio, nil
}
