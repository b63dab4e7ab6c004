// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package feed collects the entries published today from a list of RSS and
// Atom feeds.
package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.astrophena.name/newsdigest/internal/request"
	"go.astrophena.name/newsdigest/internal/version"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
)

// Entry is one item published by a feed.
type Entry struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary,omitempty"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
}

// Batch is an ordered list of entries: feed order first, then the order of
// items within a feed.
type Batch []Entry

// Result is the outcome of fetching a single source. Err is nil when the
// feed was fetched and parsed; Entries then holds its items published today.
type Result struct {
	Source  Source
	Entries []Entry
	Err     error
}

const fetchConcurrency = 4

// Collector fetches feeds and assembles today's batch.
type Collector struct {
	// Sources are fetched in order.
	Sources []Source
	// MaxEntries caps the batch. Zero means no cap.
	MaxEntries int
	// HTTPClient is used for fetching. Defaults to request.DefaultClient.
	HTTPClient *http.Client
	// Logger receives warnings about failed feeds. Defaults to slog.Default().
	Logger *slog.Logger
}

// Collect fetches every source and returns entries published on the UTC
// calendar date of today, truncated to MaxEntries. A feed that can't be
// fetched or parsed contributes nothing to the batch; its failure is reported
// in the returned results and logged.
func (c *Collector) Collect(ctx context.Context, today time.Time) (Batch, []Result) {
	log := c.Logger
	if log == nil {
		log = slog.Default()
	}

	// Feeds are fetched concurrently, but their entries keep the feed order.
	results := make([]Result, len(c.Sources))
	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, src := range c.Sources {
		g.Go(func() error {
			res := Result{Source: src}
			items, err := c.fetch(ctx, src.URL)
			if err != nil {
				res.Err = err
				log.Warn("skipping feed", "feed", src.URL, "error", err)
			} else {
				res.Entries = FilterToday(items, today)
				log.Debug("fetched feed", "feed", src.URL, "items", len(items), "today", len(res.Entries))
			}
			results[i] = res
			return nil
		})
	}
	g.Wait()

	var batch Batch
	for _, res := range results {
		batch = append(batch, res.Entries...)
	}

	if c.MaxEntries > 0 && len(batch) > c.MaxEntries {
		log.Debug("truncating batch", "entries", len(batch), "max_entries", c.MaxEntries)
		batch = batch[:c.MaxEntries]
	}
	return batch, results
}

func (c *Collector) fetch(ctx context.Context, url string) ([]*gofeed.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", version.UserAgent())

	httpc := c.HTTPClient
	if httpc == nil {
		httpc = request.DefaultClient
	}
	res, err := httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		const readLimit = 16384 // 16 KB is enough for error messages (probably)
		body, _ := io.ReadAll(io.LimitReader(res.Body, readLimit))
		return nil, fmt.Errorf("want 200, got %d: %s", res.StatusCode, body)
	}

	f, err := gofeed.NewParser().Parse(res.Body)
	if err != nil {
		return nil, err
	}
	return f.Items, nil
}

// FilterToday returns entries for items whose publication timestamp falls on
// the UTC calendar date of today. Items without a parsed publication
// timestamp are dropped.
func FilterToday(items []*gofeed.Item, today time.Time) []Entry {
	var entries []Entry
	for _, item := range items {
		if item == nil || item.PublishedParsed == nil {
			continue
		}
		if !SameDay(*item.PublishedParsed, today) {
			continue
		}
		entries = append(entries, Entry{
			Title:     strings.TrimSpace(item.Title),
			Summary:   summary(item),
			Link:      item.Link,
			Published: item.PublishedParsed.UTC(),
		})
	}
	return entries
}

// SameDay reports whether a and b fall on the same UTC calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func summary(item *gofeed.Item) string {
	if s := strings.TrimSpace(item.Description); s != "" {
		return s
	}
	return strings.TrimSpace(item.Content)
}
