// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package trigger exposes a pipeline run over HTTP, for external schedulers.
package trigger

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.astrophena.name/newsdigest/internal/pipeline"
	"go.astrophena.name/newsdigest/internal/version"
	"go.astrophena.name/newsdigest/internal/web"
)

// Runner runs the pipeline.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Report, error)
	Last() pipeline.LastRun
	Running() bool
}

// Handler serves the trigger endpoints:
//
//	GET /                     greeting
//	GET /run?token=<secret>   run the pipeline and respond with its report
//	GET /health               health and the outcome of the last run; a failed
//	                          run is reported but keeps the service healthy
//	GET /logs?token=<secret>  recent log lines, if Logs is set
type Handler struct {
	Runner Runner
	// Secret is compared with the token query parameter. An empty Secret
	// rejects every request.
	Secret string
	// Logs serves recent log lines. Optional.
	Logs http.Handler

	mux *http.ServeMux
}

// New returns a Handler with routes registered.
func New(runner Runner, secret string, logs http.Handler) *Handler {
	h := &Handler{Runner: runner, Secret: secret, Logs: logs, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /{$}", h.greet)
	h.mux.HandleFunc("GET /run", h.run)
	if logs != nil {
		h.mux.Handle("GET /logs", h.authorized(logs))
	}
	web.Health(h.mux).RegisterFunc("last-run", h.lastRun)
	return h
}

// Mux returns the underlying mux, for serving with [web.ListenAndServe].
func (h *Handler) Mux() *http.ServeMux { return h.mux }

// ServeHTTP implements [http.Handler].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) { h.mux.ServeHTTP(w, r) }

func (h *Handler) greet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Hi! This is %s. Call /run with the token to get today's digest.\n", version.CmdName())
}

func (h *Handler) validToken(r *http.Request) bool {
	token := r.URL.Query().Get("token")
	if h.Secret == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.Secret)) == 1
}

func (h *Handler) authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.validToken(r) {
			web.RespondJSONError(w, r, fmt.Errorf("%w: invalid token", web.ErrForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) {
	if !h.validToken(r) {
		web.RespondJSONError(w, r, fmt.Errorf("%w: invalid token", web.ErrForbidden))
		return
	}
	// A started run finishes even if the caller goes away.
	report, err := h.Runner.Run(context.WithoutCancel(r.Context()))
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		web.RespondJSONError(w, r, fmt.Errorf("%w: %v", web.ErrConflict, err))
		return
	}
	if err != nil {
		web.RespondJSONError(w, r, err)
		return
	}
	web.RespondJSON(w, report)
}

func (h *Handler) lastRun() (status string, ok bool) {
	if h.Runner.Running() {
		return "running", true
	}
	last := h.Runner.Last()
	if last.Finished.IsZero() {
		return "no runs yet", true
	}
	at := last.Finished.UTC().Format(time.RFC3339)
	if last.Err != nil {
		return fmt.Sprintf("failed at %s: %v", at, last.Err), true
	}
	return "succeeded at " + at, true
}
