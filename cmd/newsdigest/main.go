// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.astrophena.name/newsdigest/internal/api/elevenlabs"
	"go.astrophena.name/newsdigest/internal/api/gemini"
	"go.astrophena.name/newsdigest/internal/api/google/docs"
	"go.astrophena.name/newsdigest/internal/api/google/serviceaccount"
	"go.astrophena.name/newsdigest/internal/api/google/tts"
	"go.astrophena.name/newsdigest/internal/api/openai"
	"go.astrophena.name/newsdigest/internal/api/telegram"
	"go.astrophena.name/newsdigest/internal/cli"
	"go.astrophena.name/newsdigest/internal/cli/envflag"
	"go.astrophena.name/newsdigest/internal/config"
	"go.astrophena.name/newsdigest/internal/digest"
	"go.astrophena.name/newsdigest/internal/feed"
	"go.astrophena.name/newsdigest/internal/httplogger"
	"go.astrophena.name/newsdigest/internal/llm"
	"go.astrophena.name/newsdigest/internal/logger"
	"go.astrophena.name/newsdigest/internal/narrate"
	"go.astrophena.name/newsdigest/internal/pipeline"
	"go.astrophena.name/newsdigest/internal/request"
	"go.astrophena.name/newsdigest/internal/trigger"
	"go.astrophena.name/newsdigest/internal/web"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

func main() {
	if err := loadDotenv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cli.Main(new(app))
}

// loadDotenv sets environment variables from the file at path, if it exists.
// Variables that are already set are not overridden.
func loadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

type app struct {
	// configuration
	fs         *flag.FlagSet
	profile    *string
	feeds      *string
	out        *string
	addr       *string
	maxEntries *int
	dry        *bool
	keep       *bool
	verbose    *bool

	// for tests
	getenv func(string) string
	httpc  *http.Client
	now    func() time.Time
	ready  func(addr string)
}

// flagEnv maps flags to the configuration variables they override.
var flagEnv = map[string]string{
	"profile":     "PROFILE",
	"feeds":       "FEEDS_CONFIG",
	"out":         "OUTPUT_DIR",
	"addr":        "ADDR",
	"max-entries": "MAX_ENTRIES",
}

func (a *app) Flags(fs *flag.FlagSet) {
	getenv := a.getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	a.fs = fs
	a.profile = envflag.Value("profile", "PROFILE", "", "Profile (brief or daily).", fs, getenv)
	a.feeds = envflag.Value("feeds", "FEEDS_CONFIG", "", "Path to the Starlark feed list.", fs, getenv)
	a.out = envflag.Value("out", "OUTPUT_DIR", "", "Directory for audio files.", fs, getenv)
	a.addr = envflag.Value("addr", "ADDR", "", "Listen address of the serve command.", fs, getenv)
	a.maxEntries = envflag.Value("max-entries", "MAX_ENTRIES", 0, "Maximum number of entries in a digest. Zero means the profile default.", fs, getenv)
	a.dry = envflag.Value("dry", "DRY_RUN", false, "Print the digest instead of narrating, archiving and delivering it.", fs, getenv)
	a.keep = envflag.Value("keep", "KEEP_AUDIO", false, "Keep audio files after delivery.", fs, getenv)
	a.verbose = envflag.Value("v", "VERBOSE", false, "Enable debug logging.", fs, getenv)
}

// lookup returns a getenv function for loading configuration. Variables that
// have a flag are taken from the command line first, then from getenv, and
// finally from flag defaults.
func (a *app) lookup(getenv func(string) string) func(string) string {
	set := make(map[string]bool)
	if a.fs != nil {
		a.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	}
	values := map[string]string{
		"profile":     deref(a.profile),
		"feeds":       deref(a.feeds),
		"out":         deref(a.out),
		"addr":        deref(a.addr),
		"max-entries": "",
	}
	if a.maxEntries != nil && *a.maxEntries != 0 {
		values["max-entries"] = strconv.Itoa(*a.maxEntries)
	}

	byEnv := make(map[string]string)
	for name, env := range flagEnv {
		if set[name] {
			byEnv[env] = values[name]
			continue
		}
		if v := getenv(env); v != "" {
			byEnv[env] = v
			continue
		}
		byEnv[env] = values[name]
	}

	return func(name string) string {
		if v, ok := byEnv[name]; ok {
			return v
		}
		return getenv(name)
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	if len(env.Args) != 1 {
		return fmt.Errorf("%w: exactly one command is required, see -help for usage", cli.ErrInvalidArgs)
	}
	command := env.Args[0]

	cfg, err := config.Load(a.lookup(env.Getenv))
	if err != nil {
		return err
	}

	// Enable debug logging in dry-run mode.
	if deref(a.verbose) || deref(a.dry) {
		logger.Get(ctx).Level.Set(slog.LevelDebug)
	}

	switch command {
	case "feeds":
		return a.listFeeds(cfg, env.Stdout)
	case "run":
		return a.run(ctx, cfg, env.Stdout)
	case "serve":
		return a.serve(ctx, cfg, env)
	default:
		return fmt.Errorf("%w: no such command %q", cli.ErrInvalidArgs, command)
	}
}

func (a *app) listFeeds(cfg config.Config, w io.Writer) error {
	sources, err := loadSources(cfg.FeedsConfig)
	if err != nil {
		return err
	}
	for _, src := range sources {
		fmt.Fprintf(w, "%s\t%s\n", src.Name(), src.URL)
	}
	return nil
}

func (a *app) run(ctx context.Context, cfg config.Config, stdout io.Writer) error {
	if err := cfg.Require(config.Requirements{Compose: true, Deliver: !deref(a.dry)}); err != nil {
		return err
	}
	p, closeFunc, err := a.build(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer closeFunc()

	r, err := p.Run(ctx)
	if err != nil {
		return err
	}
	if p.Dry {
		return nil
	}
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s\n", b)
	return nil
}

func (a *app) serve(ctx context.Context, cfg config.Config, env *cli.Env) error {
	if err := cfg.Require(config.Requirements{Compose: true, Deliver: !deref(a.dry), Serve: true}); err != nil {
		return err
	}

	// Keep recent log lines for the /logs endpoint.
	streamer := logger.NewStreamer(300)
	l := logger.New(io.MultiWriter(env.Stderr, streamer))
	l.Level.Set(logger.Get(ctx).Level.Level())
	ctx = logger.Put(ctx, l)

	p, closeFunc, err := a.build(ctx, cfg, env.Stdout)
	if err != nil {
		return err
	}
	defer closeFunc()

	h := trigger.New(p, cfg.RunSecret, streamer)
	return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr:  cfg.Addr,
		Mux:   h.Mux(),
		Logf:  env.Logf,
		Ready: a.ready,
	})
}

func loadSources(path string) ([]feed.Source, error) {
	if path == "" {
		return feed.LoadSources("feeds.star", feed.DefaultSources)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return feed.LoadSources(path, string(b))
}

// build wires the pipeline stages for cfg. The returned function releases
// resources held by them.
func (a *app) build(ctx context.Context, cfg config.Config, stdout io.Writer) (p *pipeline.Pipeline, closeFunc func(), err error) {
	log := logger.Get(ctx)
	httpc := a.httpClient(log.Logger, cfg)

	var closers []func() error
	closeFunc = func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("closing", "error", err)
			}
		}
	}
	defer func() {
		if err != nil {
			closeFunc()
		}
	}()

	sources, err := loadSources(cfg.FeedsConfig)
	if err != nil {
		return nil, closeFunc, err
	}

	var completer llm.Completer
	switch cfg.LLMProvider {
	case config.Gemini:
		c, err := gemini.New(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, closeFunc, err
		}
		closers = append(closers, c.Close)
		completer = c
	default:
		completer = &openai.Client{APIKey: cfg.OpenAIAPIKey, Model: cfg.LLMModel, HTTPClient: httpc}
	}

	var composer digest.Composer
	switch cfg.Profile {
	case config.Daily:
		composer = &digest.Combined{LLM: completer}
	default:
		pe := &digest.PerEntry{LLM: completer, Logger: log.Logger}
		if rpm := cfg.LLMRequestsPerMinute; rpm > 0 {
			pe.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		}
		composer = pe
	}

	p = &pipeline.Pipeline{
		Collector: &feed.Collector{
			Sources:    sources,
			MaxEntries: cfg.MaxEntries,
			HTTPClient: httpc,
			Logger:     log.Logger,
		},
		Composer:        composer,
		Now:             a.now,
		OutputDir:       cfg.OutputDir,
		ArchiveRequired: cfg.ArchiveRequired,
		KeepAudio:       deref(a.keep),
		Dry:             deref(a.dry),
		Stdout:          stdout,
	}
	if p.Dry {
		return p, closeFunc, nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, closeFunc, err
	}

	// Google clients share one token source.
	google := sync.OnceValues(func() ([]option.ClientOption, error) {
		key, err := serviceaccount.ReadKey(cfg.GoogleServiceAccountKey)
		if err != nil {
			return nil, err
		}
		scopes := append(append([]string{}, docs.Scopes...), tts.Scopes...)
		ts := key.TokenSource(ctx, httpc, scopes...)
		authc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, httpc), ts)
		return []option.ClientOption{option.WithHTTPClient(authc)}, nil
	})

	n := &narrate.Narrator{}
	switch cfg.TTSProvider {
	case config.Google:
		opts, err := google()
		if err != nil {
			return nil, closeFunc, err
		}
		c, err := tts.New(ctx, cfg.GoogleTTSLanguage, opts...)
		if err != nil {
			return nil, closeFunc, err
		}
		n.Synthesizer = c
		n.Voices = narrate.Fixed(cfg.GoogleTTSVoice)
	default:
		voices, err := narrate.NewRandom(cfg.VoiceIDs, nil)
		if err != nil {
			return nil, closeFunc, err
		}
		n.Synthesizer = &elevenlabs.Client{APIKey: cfg.ElevenLabsAPIKey, HTTPClient: httpc}
		n.Voices = voices
	}
	p.Narrator = n

	if cfg.Archive {
		opts, err := google()
		if err != nil {
			return nil, closeFunc, err
		}
		c, err := docs.New(ctx, cfg.DocRecipientEmail, opts...)
		if err != nil {
			return nil, closeFunc, err
		}
		p.Archiver = c
	}

	p.Deliverer = &telegram.Client{
		Token:      cfg.TelegramBotToken,
		ChatID:     cfg.TelegramChatID,
		HTTPClient: httpc,
	}
	return p, closeFunc, nil
}

// httpClient returns the HTTP client used for all outgoing requests. Requests
// are logged at debug level with secrets scrubbed.
func (a *app) httpClient(log *slog.Logger, cfg config.Config) *http.Client {
	base := a.httpc
	if base == nil {
		base = request.DefaultClient
	}
	var secrets []string
	for _, s := range []string{
		cfg.OpenAIAPIKey,
		cfg.GeminiAPIKey,
		cfg.ElevenLabsAPIKey,
		cfg.TelegramBotToken,
		cfg.RunSecret,
	} {
		if s != "" {
			secrets = append(secrets, s, "[EXPUNGED]")
		}
	}
	var scrubber *strings.Replacer
	if len(secrets) > 0 {
		scrubber = strings.NewReplacer(secrets...)
	}
	return &http.Client{
		Transport: httplogger.New(base.Transport, log, scrubber),
		Timeout:   base.Timeout,
	}
}
