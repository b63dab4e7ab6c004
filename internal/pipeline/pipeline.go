// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package pipeline drives a single digest run: collect, compose, archive,
// narrate and deliver.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.astrophena.name/newsdigest/internal/archive"
	"go.astrophena.name/newsdigest/internal/digest"
	"go.astrophena.name/newsdigest/internal/feed"
	"go.astrophena.name/newsdigest/internal/logger"
	"go.astrophena.name/newsdigest/internal/narrate"
	"go.astrophena.name/newsdigest/internal/syncx"
)

// ErrAlreadyRunning is returned by [Pipeline.Run] when another run is in
// progress.
var ErrAlreadyRunning = errors.New("already running")

// Collector gathers today's entries.
type Collector interface {
	Collect(ctx context.Context, today time.Time) (feed.Batch, []feed.Result)
}

// Narrator turns text into an audio file at path.
type Narrator interface {
	Narrate(ctx context.Context, text, path string) (*narrate.Audio, error)
}

// Deliverer sends an audio file with a caption.
type Deliverer interface {
	SendAudio(ctx context.Context, path, caption string) error
}

// Pipeline runs the stages in order. Archiver is optional; the other stages
// are required unless Dry is set, in which case only Collector and Composer
// are used.
type Pipeline struct {
	Collector Collector
	Composer  digest.Composer
	Archiver  archive.Archiver
	Narrator  Narrator
	Deliverer Deliverer

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
	// OutputDir is where audio files are written.
	OutputDir string
	// ArchiveRequired makes archival run before composing and abort the run
	// when it fails. Otherwise archival failures are only logged.
	ArchiveRequired bool
	// KeepAudio keeps the audio file after it was delivered.
	KeepAudio bool
	// Dry stops after composing and writes the digest to Stdout.
	Dry    bool
	Stdout io.Writer

	running atomic.Bool
	last    syncx.Protected[LastRun]
}

// FeedFailure is a feed that could not be collected.
type FeedFailure struct {
	Feed  string `json:"feed"`
	Error string `json:"error"`
}

// Report describes a run.
type Report struct {
	Date         string            `json:"date"`
	Entries      int               `json:"entries"`
	Skipped      int               `json:"skipped,omitempty"`
	FailedFeeds  []FeedFailure     `json:"failed_feeds,omitempty"`
	Digest       *digest.Digest    `json:"digest,omitempty"`
	Document     *archive.Document `json:"document,omitempty"`
	ArchiveError string            `json:"archive_error,omitempty"`
	Voice        string            `json:"voice,omitempty"`
	Audio        *narrate.Audio    `json:"audio,omitempty"`
	Delivered    bool              `json:"delivered"`
	Dry          bool              `json:"dry,omitempty"`
	Duration     time.Duration     `json:"duration"`
}

// LastRun is the outcome of the most recent finished run.
type LastRun struct {
	Finished time.Time
	Report   *Report
	Err      error
}

// Last returns the outcome of the most recent finished run. Its Finished time
// is zero if there were no runs yet.
func (p *Pipeline) Last() LastRun {
	var lr LastRun
	p.last.ReadAccess(func(v LastRun) { lr = v })
	return lr
}

// Running reports whether a run is in progress.
func (p *Pipeline) Running() bool { return p.running.Load() }

// Run runs the pipeline once. Only one run may be in progress at a time;
// concurrent calls return [ErrAlreadyRunning].
//
// Feed failures and, unless ArchiveRequired is set, archival failures are
// reported in the returned Report. Any other failure aborts the run and is
// returned together with the partial Report.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if !p.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer p.running.Store(false)

	start := p.now()
	r, err := p.run(ctx, start)
	r.Duration = p.now().Sub(start)

	log := logger.Get(ctx)
	if err != nil {
		log.Error("run failed", "date", r.Date, "error", err)
	} else {
		log.Info("run finished", "date", r.Date, "entries", r.Entries, "delivered", r.Delivered, "duration", r.Duration)
	}
	p.last.WriteAccess(func(v *LastRun) {
		*v = LastRun{Finished: p.now(), Report: r, Err: err}
	})
	return r, err
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) run(ctx context.Context, now time.Time) (*Report, error) {
	log := logger.Get(ctx)
	today := now.UTC()
	r := &Report{Date: today.Format(time.DateOnly), Dry: p.Dry}

	batch, results := p.Collector.Collect(ctx, today)
	r.Entries = len(batch)
	for _, res := range results {
		if res.Err != nil {
			r.FailedFeeds = append(r.FailedFeeds, FeedFailure{Feed: res.Source.URL, Error: res.Err.Error()})
		}
	}
	log.Info("collected entries", "entries", r.Entries, "feeds", len(results), "failed_feeds", len(r.FailedFeeds))
	if err := ctx.Err(); err != nil {
		return r, err
	}

	archiving := p.Archiver != nil && !p.Dry
	if archiving && p.ArchiveRequired {
		doc, err := p.Archiver.Archive(ctx, archive.Title(today), digest.NewsText(batch))
		if err != nil {
			return r, fmt.Errorf("archiving: %w", err)
		}
		r.Document = doc
		log.Info("archived digest", "url", doc.URL)
	}

	d, err := p.Composer.Compose(ctx, batch)
	if err != nil {
		return r, fmt.Errorf("composing digest: %w", err)
	}
	r.Digest = d
	r.Skipped = d.Skipped

	if archiving && !p.ArchiveRequired {
		doc, err := p.Archiver.Archive(ctx, archive.Title(today), d.Archive)
		if err != nil {
			log.Warn("archiving failed, continuing", "error", err)
			r.ArchiveError = err.Error()
		} else {
			r.Document = doc
			log.Info("archived digest", "url", doc.URL)
		}
	}

	if p.Dry {
		log.Debug("dry run, not narrating")
		if p.Stdout != nil {
			fmt.Fprintf(p.Stdout, "%s\n\n%s\n", d.Text, d.Caption())
		}
		return r, nil
	}

	audio, err := p.Narrator.Narrate(ctx, d.Text, narrate.Path(p.OutputDir, today))
	if err != nil {
		return r, fmt.Errorf("narrating: %w", err)
	}
	r.Audio = audio
	r.Voice = audio.Voice
	log.Info("narrated digest", "path", audio.Path, "voice", audio.Voice, "size", audio.Size)

	if err := p.Deliverer.SendAudio(ctx, audio.Path, d.Caption()); err != nil {
		return r, fmt.Errorf("delivering: %w", err)
	}
	r.Delivered = true

	if !p.KeepAudio {
		if err := os.Remove(audio.Path); err != nil {
			log.Warn("removing audio file", "path", audio.Path, "error", err)
		}
	}
	return r, nil
}
