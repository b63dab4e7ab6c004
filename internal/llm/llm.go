// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package llm defines a provider-agnostic text completion interface.
package llm

import (
	"context"
	"errors"
)

// Request is a single-prompt completion request.
type Request struct {
	Prompt string
	// MaxTokens limits the length of the completion. Zero leaves it to the
	// provider.
	MaxTokens int
	// Temperature is the sampling temperature. Zero leaves it to the provider.
	Temperature float32
}

// Completer returns a single text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrEmptyCompletion is returned by completers when the provider answered
// without any text.
var ErrEmptyCompletion = errors.New("llm: empty completion")

// CompleterFunc is an adapter to allow the use of ordinary functions as
// [Completer].
type CompleterFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f(ctx, req).
func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) { return f(ctx, req) }
