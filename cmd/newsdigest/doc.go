// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Newsdigest collects today's news from RSS and Atom feeds, summarizes it with a
language model, narrates the summary and sends the audio to a Telegram chat.

# Usage

	$ newsdigest [flags...] <command>

Commands:

  - run: Run the pipeline once.
  - serve: Serve the pipeline over HTTP, so an external scheduler can run it.
  - feeds: Print the configured feeds.

# Profiles

Two sets of defaults are available, selected with the -profile flag or the
PROFILE environment variable:

  - brief (default): every entry is summarized on its own, up to 30 entries a
    day, and narrated by a voice randomly picked from VOICE_IDS with
    ElevenLabs.
  - daily: up to 3 entries are summarized together, archived to a Google Docs
    document and narrated by a fixed Google Cloud Text-to-Speech voice.

Every default can be changed by the variables below.

# Environment Variables

Variables are read from the environment and from the .env file in the current
directory, if it exists.

  - FEEDS_CONFIG: Path to a Starlark file with the list of feeds. Defaults to
    the built-in list.
  - MAX_ENTRIES: Maximum number of entries in a digest.
  - LLM_PROVIDER: "openai" (default) or "gemini".
  - OPENAI_API_KEY, GEMINI_API_KEY: API key of the language model provider.
  - LLM_MODEL: Model name. Defaults to the provider default.
  - LLM_REQUESTS_PER_MINUTE: Paces summaries of the brief profile. Unpaced by
    default.
  - TTS_PROVIDER: "elevenlabs" or "google".
  - ELEVENLABS_API_KEY: ElevenLabs API key.
  - VOICE_IDS: Comma-separated list of ElevenLabs voice IDs.
  - GOOGLE_TTS_VOICE, GOOGLE_TTS_LANGUAGE: Google voice name and language code.
  - GOOGLE_SERVICE_ACCOUNT_KEY: Service account key (JSON or a path to it),
    used for Google Docs and Google Cloud Text-to-Speech.
  - ARCHIVE: Archive digests to Google Docs.
  - ARCHIVE_REQUIRED: Archive before summarizing and fail the run if archival
    fails. By default archival failures are only logged.
  - DOC_RECIPIENT_EMAIL: Email address that gets write access to archived
    documents, without a notification.
  - TELEGRAM_BOT_TOKEN, TELEGRAM_CHAT_ID: Telegram bot token and target chat.
  - RUN_SECRET: Token required by the /run endpoint of the serve command.
  - OUTPUT_DIR: Directory for audio files. Defaults to the current directory.
  - ADDR, PORT: Listen address of the serve command.

# Feeds

The feed list is written in Starlark, for example:

	feeds = [
	    feed(url = "https://cn.wsj.com/zh-hant/rss", title = "WSJ 中文網"),
	]

When there are more entries than allowed, entries of earlier feeds win.

# HTTP Endpoints

The serve command exposes:

  - GET /: Greeting.
  - GET /run?token=<RUN_SECRET>: Run the pipeline and respond with a JSON
    report once it's done. Responds with 403 Forbidden on a wrong token and
    with 409 Conflict when a run is already in progress.
  - GET /health: Health status and the outcome of the last run.
  - GET /logs?token=<RUN_SECRET>: Recent log lines.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/newsdigest/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
