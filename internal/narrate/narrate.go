// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package narrate turns digest text into an audio file.
package narrate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"time"

	"go.astrophena.name/newsdigest/internal/atomicio"
)

// Synthesizer converts text to MP3 audio spoken by voice.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// VoicePicker selects the voice of a single narration.
type VoicePicker interface {
	Pick() string
}

// Fixed always picks the same voice.
type Fixed string

// Pick implements [VoicePicker].
func (f Fixed) Pick() string { return string(f) }

// Random picks a voice uniformly at random.
type Random struct {
	voices []string
	rnd    *rand.Rand
}

// NewRandom returns a Random picker choosing from voices with rnd. A nil rnd
// uses a randomly seeded source.
func NewRandom(voices []string, rnd *rand.Rand) (*Random, error) {
	if len(voices) == 0 {
		return nil, errors.New("narrate: no voices to pick from")
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Random{voices: voices, rnd: rnd}, nil
}

// Pick implements [VoicePicker].
func (r *Random) Pick() string { return r.voices[r.rnd.IntN(len(r.voices))] }

// Audio is a narrated digest.
type Audio struct {
	Path  string `json:"path"`
	Voice string `json:"voice"`
	Size  int    `json:"size"`
}

// Narrator synthesizes narrations.
type Narrator struct {
	Synthesizer Synthesizer
	Voices      VoicePicker
}

// Narrate synthesizes text with a picked voice and writes the audio to path.
// The file at path is replaced atomically, so it never holds a partial
// narration.
func (n *Narrator) Narrate(ctx context.Context, text, path string) (*Audio, error) {
	voice := n.Voices.Pick()
	audio, err := n.Synthesizer.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, fmt.Errorf("synthesizing speech with voice %q: %w", voice, err)
	}
	if err := atomicio.WriteFile(path, audio, 0o644); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}
	return &Audio{Path: path, Voice: voice, Size: len(audio)}, nil
}

// FileName returns the name of the audio file narrated on day.
func FileName(day time.Time) string {
	return "digest_" + day.UTC().Format(time.DateOnly) + ".mp3"
}

// Path returns the path of the audio file narrated on day in dir.
func Path(dir string, day time.Time) string {
	return filepath.Join(dir, FileName(day))
}
