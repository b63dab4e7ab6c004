// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.astrophena.name/newsdigest/internal/testutil"
)

func TestLogfWriter(t *testing.T) {
	t.Parallel()

	var (
		logged  bool
		message string
	)
	logf := func(format string, args ...any) {
		logged = true
		message = fmt.Sprintf(format, args...)
	}
	Logf(logf).Write([]byte("hello"))
	testutil.AssertEqual(t, logged, true)
	testutil.AssertEqual(t, message, "hello")
}

func TestPutGet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf)
	ctx := Put(context.Background(), l)

	got := Get(ctx)
	if got != l {
		t.Fatal("Get returned a different logger")
	}

	got.Debug("hidden")
	got.Level.Set(slog.LevelDebug)
	got.Debug("visible", "feed", "https://example.com/feed.xml")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record logged at info level: %q", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "feed=https://example.com/feed.xml") {
		t.Errorf("debug record not logged after level change: %q", out)
	}
}

func TestGetDefault(t *testing.T) {
	t.Parallel()

	if Get(context.Background()) == nil {
		t.Fatal("Get returned nil for an empty context")
	}
}

func TestStreamer(t *testing.T) {
	t.Parallel()

	s := NewStreamer(5)

	testLines := []string{
		"Line 1",
		"Line 2",
		"Line 3",
		"Line 4",
		"Line 5",
		"Line 6", // This should push out "Line 1" due to buffer size.
	}

	for _, line := range testLines {
		if _, err := s.Write([]byte(line + "\n")); err != nil {
			t.Fatalf("Failed to write line: %v", err)
		}
	}

	want := []string{"Line 2\n", "Line 3\n", "Line 4\n", "Line 5\n", "Line 6\n"}
	testutil.AssertEqual(t, s.Lines(), want)
}

func TestStreamerPartialLines(t *testing.T) {
	t.Parallel()

	s := NewStreamer(3)
	s.Write([]byte("hel"))
	s.Write([]byte("lo\nwor"))
	testutil.AssertEqual(t, s.Lines(), []string{"hello\n"})
	s.Write([]byte("ld\n"))
	testutil.AssertEqual(t, s.Lines(), []string{"hello\n", "world\n"})
}

func TestStreamerServeHTTP(t *testing.T) {
	t.Parallel()

	s := NewStreamer(10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := httptest.NewRequestWithContext(ctx, http.MethodGet, "/logs", nil)
	r.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.ServeHTTP(w, r)
	}()

	// Wait for the handler to register its stream.
	deadline := time.Now().Add(5 * time.Second)
	for {
		var registered bool
		func() {
			s.(*lineRingBuffer).RLock()
			defer s.(*lineRingBuffer).RUnlock()
			registered = len(s.(*lineRingBuffer).streams) > 0
		}()
		if registered {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stream was not registered in time")
		}
		time.Sleep(10 * time.Millisecond)
	}

	s.Write([]byte("fetched feed\n"))
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	testutil.AssertEqual(t, w.Header().Get("Content-Type"), "text/event-stream")
	if !strings.Contains(w.Body.String(), "event: logline\ndata: fetched feed") {
		t.Fatalf("unexpected body: %q", w.Body.String())
	}
}

func TestStreamerServeHTTPBacklog(t *testing.T) {
	t.Parallel()

	s := NewStreamer(2)
	s.Write([]byte("collected entries\nnarrated digest\nrun finished\n"))

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs", nil))

	testutil.AssertEqual(t, w.Header().Get("Content-Type"), "text/plain; charset=utf-8")
	testutil.AssertEqual(t, w.Body.String(), "narrated digest\nrun finished\n")
}
