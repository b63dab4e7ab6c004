// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package telegram delivers narrated digests through the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.astrophena.name/newsdigest/internal/request"
)

const tgAPI = "https://api.telegram.org"

// MaxCaptionLen is the maximum length of a media caption, in characters.
const MaxCaptionLen = 1024

// Client sends messages to a single chat.
type Client struct {
	// Token is the bot token.
	Token string
	// ChatID is the target chat identifier or @channelusername.
	ChatID string
	// HTTPClient is an optional HTTP client to use for requests. Defaults to
	// request.DefaultClient.
	HTTPClient *http.Client
}

type response struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendAudio uploads the audio file at path with caption. The caption is
// truncated to [MaxCaptionLen] characters.
//
// The upload is attempted once.
func (c *Client) SendAudio(ctx context.Context, path, caption string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	resp, err := request.Make[response](ctx, request.Params{
		Method: http.MethodPost,
		URL:    tgAPI + "/bot" + c.Token + "/sendAudio",
		Body: &request.Multipart{
			Fields: map[string]string{
				"chat_id": c.ChatID,
				"caption": TruncateCaption(caption),
			},
			Files: []request.File{{
				Field:   "audio",
				Name:    filepath.Base(path),
				Content: f,
			}},
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.scrubber(),
	})
	if err != nil {
		return fmt.Errorf("telegram: sending audio: %w", err)
	}
	if !resp.OK {
		return errors.New("telegram: sending audio: " + resp.Description)
	}
	return nil
}

func (c *Client) scrubber() *strings.Replacer {
	if c.Token == "" {
		return nil
	}
	return strings.NewReplacer(c.Token, "[EXPUNGED]")
}

// TruncateCaption cuts s to at most MaxCaptionLen characters.
func TruncateCaption(s string) string {
	if utf8.RuneCountInString(s) <= MaxCaptionLen {
		return s
	}
	var n int
	for i := range s {
		if n == MaxCaptionLen {
			return s[:i]
		}
		n++
	}
	return s
}
