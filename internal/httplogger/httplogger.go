// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package httplogger provides a http.RoundTripper middleware that logs
// outgoing HTTP requests and their outcome.
package httplogger

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// New returns a http.RoundTripper that logs every request made through t at
// debug level. A nil t means http.DefaultTransport. Secrets found in URLs and
// errors are replaced using scrubber, if it's not nil.
func New(t http.RoundTripper, log *slog.Logger, scrubber *strings.Replacer) http.RoundTripper {
	if t == nil {
		t = http.DefaultTransport
	}
	return &loggingTransport{transport: t, log: log, scrubber: scrubber}
}

type loggingTransport struct {
	transport http.RoundTripper
	log       *slog.Logger
	scrubber  *strings.Replacer
}

func (t *loggingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	start := time.Now()
	url := t.scrub(r.URL.String())
	t.log.Debug("http request", "method", r.Method, "url", url)

	resp, err := t.transport.RoundTrip(r)

	attrs := []any{"method", r.Method, "url", url, "duration", time.Since(start)}
	if resp != nil {
		attrs = append(attrs, "status", resp.StatusCode)
	}
	if err != nil {
		attrs = append(attrs, "error", t.scrub(err.Error()))
	}
	t.log.Debug("http response", attrs...)

	return resp, err
}

func (t *loggingTransport) scrub(s string) string {
	if t.scrubber == nil {
		return s
	}
	return t.scrubber.Replace(s)
}
