// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package digest turns a batch of feed entries into the text that is narrated,
// captioned and archived.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.astrophena.name/newsdigest/internal/feed"
	"go.astrophena.name/newsdigest/internal/llm"

	"golang.org/x/time/rate"
)

// Digest is the composed result of a run.
type Digest struct {
	// Text is narrated.
	Text string `json:"text"`
	// Captions are the lines of the delivery caption.
	Captions []string `json:"captions"`
	// Archive is the raw text written to the archival document.
	Archive string `json:"-"`
	// Skipped counts entries that could not be summarized.
	Skipped int `json:"skipped,omitempty"`
}

// Caption joins the caption lines.
func (d *Digest) Caption() string { return strings.Join(d.Captions, "\n") }

// Composer builds a Digest from a batch of entries.
type Composer interface {
	Compose(ctx context.Context, b feed.Batch) (*Digest, error)
}

// PerEntry summarizes every entry with its own completion request.
//
// An entry whose summary fails is logged and left out. If every entry fails,
// Compose returns the first error.
type PerEntry struct {
	LLM llm.Completer
	// MaxTokens limits each summary. Defaults to 100.
	MaxTokens int
	// Limiter, if set, paces the completion requests.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Compose implements [Composer].
func (p *PerEntry) Compose(ctx context.Context, b feed.Batch) (*Digest, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	maxTokens := p.MaxTokens
	if maxTokens == 0 {
		maxTokens = 100
	}

	d := &Digest{Archive: NewsText(b)}
	var (
		summaries []string
		links     []string
		firstErr  error
	)
	for _, e := range b {
		if p.Limiter != nil {
			if err := p.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		summary, err := p.LLM.Complete(ctx, llm.Request{
			Prompt:    EntryPrompt(e),
			MaxTokens: maxTokens,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("skipping entry, summarization failed", "link", e.Link, "error", err)
			d.Skipped++
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		summaries = append(summaries, summary)
		links = append(links, e.Link)
	}
	if len(b) > 0 && len(summaries) == 0 {
		return nil, fmt.Errorf("summarizing %d entries failed: %w", len(b), firstErr)
	}

	d.Text = SpokenText(summaries)
	d.Captions = Captions(summaries, links)
	return d, nil
}

// Combined summarizes the whole batch with a single completion request.
// Failure of that request fails the composition. An empty batch is not sent
// to the model; its digest is [NoNewsText].
type Combined struct {
	LLM llm.Completer
	// MaxChars bounds the length of the summary. Defaults to 500.
	MaxChars int
	// MaxTokens limits the completion. Defaults to 1024.
	MaxTokens int
}

// Compose implements [Composer].
func (c *Combined) Compose(ctx context.Context, b feed.Batch) (*Digest, error) {
	raw := NewsText(b)
	d := &Digest{Archive: raw}
	if len(b) == 0 {
		d.Text = NoNewsText
		d.Captions = []string{NoNewsText}
		return d, nil
	}

	maxChars := c.MaxChars
	if maxChars == 0 {
		maxChars = 500
	}
	maxTokens := c.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	summary, err := c.LLM.Complete(ctx, llm.Request{
		Prompt:    CombinedPrompt(StripLinks(raw), maxChars),
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("summarizing %d entries: %w", len(b), err)
	}

	d.Text = summary
	for _, e := range b {
		d.Captions = append(d.Captions, Bullet(e.Title, e.Link))
	}
	return d, nil
}

var (
	_ Composer = (*PerEntry)(nil)
	_ Composer = (*Combined)(nil)
)
