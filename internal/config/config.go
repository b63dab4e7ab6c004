// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config loads newsdigest configuration from the environment.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Profile is a named set of defaults.
type Profile string

// Known profiles.
const (
	// Brief summarizes every entry separately and narrates with a random
	// ElevenLabs voice.
	Brief Profile = "brief"
	// Daily summarizes a few entries at once, archives them to Google Docs and
	// narrates with a fixed Google voice.
	Daily Profile = "daily"
)

// Providers.
const (
	OpenAI     = "openai"
	Gemini     = "gemini"
	ElevenLabs = "elevenlabs"
	Google     = "google"
)

// ErrMissing is returned by [Config.Require] when required variables are not
// set. The error message lists all of them.
var ErrMissing = errors.New("missing required environment variables")

// Config is the configuration of a single process. It's loaded once and
// passed by value.
type Config struct {
	Profile     Profile
	FeedsConfig string
	MaxEntries  int

	LLMProvider  string
	OpenAIAPIKey string
	GeminiAPIKey string
	LLMModel     string
	// LLMRequestsPerMinute paces per-entry summaries. Zero means unpaced.
	LLMRequestsPerMinute int

	TTSProvider       string
	ElevenLabsAPIKey  string
	VoiceIDs          []string
	GoogleTTSVoice    string
	GoogleTTSLanguage string

	GoogleServiceAccountKey string
	DocRecipientEmail       string
	Archive                 bool
	ArchiveRequired         bool

	TelegramBotToken string
	TelegramChatID   string

	RunSecret string
	OutputDir string
	Addr      string
}

type defaults struct {
	maxEntries int
	tts        string
	archive    bool
}

var profiles = map[Profile]defaults{
	Brief: {maxEntries: 30, tts: ElevenLabs},
	Daily: {maxEntries: 3, tts: Google, archive: true},
}

// Load reads configuration with getenv and applies profile defaults. It only
// checks that values are well-formed; use [Config.Require] to check that the
// values a command needs are present.
func Load(getenv func(string) string) (Config, error) {
	c := Config{
		Profile:     Profile(cmp.Or(getenv("PROFILE"), string(Brief))),
		FeedsConfig: getenv("FEEDS_CONFIG"),

		LLMProvider:  strings.ToLower(cmp.Or(getenv("LLM_PROVIDER"), OpenAI)),
		OpenAIAPIKey: getenv("OPENAI_API_KEY"),
		GeminiAPIKey: getenv("GEMINI_API_KEY"),
		LLMModel:     getenv("LLM_MODEL"),

		ElevenLabsAPIKey:  getenv("ELEVENLABS_API_KEY"),
		VoiceIDs:          splitList(getenv("VOICE_IDS")),
		GoogleTTSVoice:    cmp.Or(getenv("GOOGLE_TTS_VOICE"), "cmn-TW-Wavenet-A"),
		GoogleTTSLanguage: cmp.Or(getenv("GOOGLE_TTS_LANGUAGE"), "cmn-TW"),

		GoogleServiceAccountKey: getenv("GOOGLE_SERVICE_ACCOUNT_KEY"),
		DocRecipientEmail:       getenv("DOC_RECIPIENT_EMAIL"),

		TelegramBotToken: getenv("TELEGRAM_BOT_TOKEN"),
		TelegramChatID:   getenv("TELEGRAM_CHAT_ID"),

		RunSecret: getenv("RUN_SECRET"),
		OutputDir: cmp.Or(getenv("OUTPUT_DIR"), "."),
	}

	d, ok := profiles[c.Profile]
	if !ok {
		return Config{}, fmt.Errorf("PROFILE: unknown profile %q, want %q or %q", c.Profile, Brief, Daily)
	}
	c.TTSProvider = strings.ToLower(cmp.Or(getenv("TTS_PROVIDER"), d.tts))

	var errs []error
	c.MaxEntries = parse(getenv, "MAX_ENTRIES", d.maxEntries, strconv.Atoi, &errs)
	c.Archive = parse(getenv, "ARCHIVE", d.archive, strconv.ParseBool, &errs)
	c.ArchiveRequired = parse(getenv, "ARCHIVE_REQUIRED", false, strconv.ParseBool, &errs)
	c.LLMRequestsPerMinute = parse(getenv, "LLM_REQUESTS_PER_MINUTE", 0, strconv.Atoi, &errs)
	if c.LLMRequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("LLM_REQUESTS_PER_MINUTE: must not be negative, got %d", c.LLMRequestsPerMinute))
	}
	if c.MaxEntries < 0 {
		errs = append(errs, fmt.Errorf("MAX_ENTRIES: must not be negative, got %d", c.MaxEntries))
	}
	if !slices.Contains([]string{OpenAI, Gemini}, c.LLMProvider) {
		errs = append(errs, fmt.Errorf("LLM_PROVIDER: unknown provider %q", c.LLMProvider))
	}
	if !slices.Contains([]string{ElevenLabs, Google}, c.TTSProvider) {
		errs = append(errs, fmt.Errorf("TTS_PROVIDER: unknown provider %q", c.TTSProvider))
	}

	c.Addr = getenv("ADDR")
	if c.Addr == "" {
		if port := getenv("PORT"); port != "" {
			c.Addr = ":" + port
		} else {
			c.Addr = "localhost:3000"
		}
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return c, nil
}

func parse[T any](getenv func(string) string, name string, def T, parseFunc func(string) (T, error), errs *[]error) T {
	s := getenv(name)
	if s == "" {
		return def
	}
	v, err := parseFunc(s)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: invalid value %q", name, s))
		return def
	}
	return v
}

func splitList(s string) []string {
	var list []string
	for v := range strings.SplitSeq(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}

// Requirements lists the stages a command is going to run.
type Requirements struct {
	// Compose needs a language model.
	Compose bool
	// Deliver needs speech synthesis, delivery and, if enabled, archival.
	Deliver bool
	// Serve needs the trigger secret.
	Serve bool
}

// Require checks that every variable needed by r is set. The returned error
// wraps [ErrMissing] and names all missing variables.
func (c Config) Require(r Requirements) error {
	var missing []string
	need := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	if r.Compose {
		switch c.LLMProvider {
		case OpenAI:
			need("OPENAI_API_KEY", c.OpenAIAPIKey)
		case Gemini:
			need("GEMINI_API_KEY", c.GeminiAPIKey)
		}
	}
	if r.Deliver {
		switch c.TTSProvider {
		case ElevenLabs:
			need("ELEVENLABS_API_KEY", c.ElevenLabsAPIKey)
			need("VOICE_IDS", strings.Join(c.VoiceIDs, ","))
		case Google:
			need("GOOGLE_SERVICE_ACCOUNT_KEY", c.GoogleServiceAccountKey)
		}
		if c.Archive && c.TTSProvider != Google {
			need("GOOGLE_SERVICE_ACCOUNT_KEY", c.GoogleServiceAccountKey)
		}
		need("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
		need("TELEGRAM_CHAT_ID", c.TelegramChatID)
	}
	if r.Serve {
		need("RUN_SECRET", c.RunSecret)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}
