// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.astrophena.name/newsdigest/internal/testutil"
)

func TestHealthHandler(t *testing.T) {
	cases := map[string]struct {
		checks       map[string]HealthFunc
		wantResponse *HealthResponse
		wantStatus   int
	}{
		"no checks": {
			checks: map[string]HealthFunc{},
			wantResponse: &HealthResponse{
				OK:     true,
				Checks: map[string]CheckResponse{},
			},
			wantStatus: http.StatusOK,
		},
		"check that always returns ok": {
			checks: map[string]HealthFunc{
				"always-ok": func() (string, bool) { return "this check always returns ok", true },
			},
			wantResponse: &HealthResponse{
				OK: true,
				Checks: map[string]CheckResponse{
					"always-ok": {OK: true, Status: "this check always returns ok"},
				},
			},
			wantStatus: http.StatusOK,
		},
		"check that always returns not ok": {
			checks: map[string]HealthFunc{
				"always-not-ok": func() (string, bool) { return "last run failed", false },
			},
			wantResponse: &HealthResponse{
				OK: false,
				Checks: map[string]CheckResponse{
					"always-not-ok": {OK: false, Status: "last run failed"},
				},
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			mux := http.NewServeMux()
			h := Health(mux)
			for name, f := range tc.checks {
				h.RegisterFunc(name, f)
			}

			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			testutil.AssertEqual(t, w.Code, tc.wantStatus)
			testutil.AssertEqual(t, testutil.UnmarshalJSON[*HealthResponse](t, w.Body.Bytes()), tc.wantResponse)
		})
	}
}

func TestHealthReturnsSameHandler(t *testing.T) {
	mux := http.NewServeMux()
	if Health(mux) != Health(mux) {
		t.Fatal("Health registered a second handler on the same mux")
	}
}

func TestHealthDuplicateCheckPanics(t *testing.T) {
	h := Health(http.NewServeMux())
	h.RegisterFunc("run", func() (string, bool) { return "", true })
	defer func() {
		if recover() == nil {
			t.Fatal("RegisterFunc did not panic on duplicate name")
		}
	}()
	h.RegisterFunc("run", func() (string, bool) { return "", true })
}

func TestRespondJSONError(t *testing.T) {
	cases := map[string]struct {
		err        error
		wantStatus int
	}{
		"forbidden":        {fmt.Errorf("bad token: %w", ErrForbidden), http.StatusForbidden},
		"conflict":         {ErrConflict, http.StatusConflict},
		"plain":            {errors.New("synthesis failed"), http.StatusInternalServerError},
		"wrapped internal": {fmt.Errorf("composing: %w", ErrInternalServerError), http.StatusInternalServerError},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			RespondJSONError(w, httptest.NewRequest(http.MethodGet, "/run", nil), tc.err)
			testutil.AssertEqual(t, w.Code, tc.wantStatus)
			testutil.AssertEqual(t, w.Header().Get("Content-Type"), "application/json")
			resp := testutil.UnmarshalJSON[errorResponse](t, w.Body.Bytes())
			testutil.AssertEqual(t, resp, errorResponse{Status: "error", Error: tc.err.Error()})
		})
	}
}

func TestListenAndServe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("hello"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- ListenAndServe(ctx, &ListenAndServeConfig{
			Addr:  "localhost:0",
			Mux:   mux,
			Logf:  t.Logf,
			Ready: func(addr string) { ready <- addr },
		})
	}()

	var addr string
	select {
	case addr = <-ready:
	case err := <-errCh:
		t.Fatal(err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not start in time")
	}

	res, err := http.Get("http://" + addr + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	testutil.AssertEqual(t, string(testutil.ReadAll(t, res.Body)), "hello")

	cancel()
	if err := <-errCh; err != nil {
		t.Fatal(err)
	}
}

func TestListenAndServeConfigErrors(t *testing.T) {
	if err := ListenAndServe(context.Background(), &ListenAndServeConfig{Mux: http.NewServeMux()}); !errors.Is(err, errNoAddr) {
		t.Fatalf("want errNoAddr, got %v", err)
	}
	if err := ListenAndServe(context.Background(), &ListenAndServeConfig{Addr: "localhost:0"}); !errors.Is(err, errNilMux) {
		t.Fatalf("want errNilMux, got %v", err)
	}
}
