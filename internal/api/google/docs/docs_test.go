// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package docs

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"

	"go.astrophena.name/newsdigest/internal/archive"
	"go.astrophena.name/newsdigest/internal/testutil"

	"google.golang.org/api/option"
)

type fakeGoogle struct {
	mu          sync.Mutex
	created     []string
	inserted    map[string]string
	permissions []map[string]any
	notify      []string
	failShare   bool
}

func (f *fakeGoogle) mux(t *testing.T) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST docs.googleapis.com/v1/documents", func(w http.ResponseWriter, r *http.Request) {
		var doc struct {
			Title string `json:"title"`
		}
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			t.Fatal(err)
		}
		f.mu.Lock()
		f.created = append(f.created, doc.Title)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"documentId": "doc123", "title": doc.Title})
	})
	mux.HandleFunc("POST docs.googleapis.com/v1/documents/{op}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := strings.CutSuffix(r.PathValue("op"), ":batchUpdate")
		if !ok {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Requests []struct {
				InsertText struct {
					Location struct {
						Index int64 `json:"index"`
					} `json:"location"`
					Text string `json:"text"`
				} `json:"insertText"`
			} `json:"requests"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		testutil.AssertEqual(t, len(req.Requests), 1)
		testutil.AssertEqual(t, req.Requests[0].InsertText.Location.Index, int64(1))
		f.mu.Lock()
		f.inserted[id] = req.Requests[0].InsertText.Text
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"documentId": id})
	})
	mux.HandleFunc("POST www.googleapis.com/drive/v3/files/{id}/permissions", func(w http.ResponseWriter, r *http.Request) {
		if f.failShare {
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 403, "message": "insufficient permissions"}})
			return
		}
		var perm map[string]any
		if err := json.NewDecoder(r.Body).Decode(&perm); err != nil {
			t.Fatal(err)
		}
		f.mu.Lock()
		f.permissions = append(f.permissions, perm)
		f.notify = append(f.notify, r.URL.Query().Get("sendNotificationEmail"))
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{"id": "perm1"})
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeGoogle, recipient string) *Client {
	t.Helper()
	c, err := New(context.Background(), recipient, option.WithHTTPClient(testutil.MockHTTPClient(f.mux(t))))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestArchive(t *testing.T) {
	t.Parallel()

	f := &fakeGoogle{inserted: make(map[string]string)}
	c := newTestClient(t, f, "reader@example.com")

	const text = "以下是今天的新聞內容彙整：\n\n標題：A\n連結：L1\n內容：About A\n\n"
	doc, err := c.Archive(context.Background(), "新聞彙整 2026-10-18", text)
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, doc, &archive.Document{
		ID:  "doc123",
		URL: "https://docs.google.com/document/d/doc123/edit",
	})
	testutil.AssertEqual(t, f.created, []string{"新聞彙整 2026-10-18"})
	testutil.AssertEqual(t, f.inserted, map[string]string{"doc123": text})
	testutil.AssertEqual(t, f.permissions, []map[string]any{{
		"type":         "user",
		"role":         "writer",
		"emailAddress": "reader@example.com",
	}})
	testutil.AssertEqual(t, f.notify, []string{"false"})
}

func TestArchiveWithoutRecipient(t *testing.T) {
	t.Parallel()

	f := &fakeGoogle{inserted: make(map[string]string)}
	c := newTestClient(t, f, "")

	if _, err := c.Archive(context.Background(), "t", "text"); err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, len(f.permissions), 0)
}

func TestArchiveShareFailure(t *testing.T) {
	t.Parallel()

	f := &fakeGoogle{inserted: make(map[string]string), failShare: true}
	c := newTestClient(t, f, "reader@example.com")

	doc, err := c.Archive(context.Background(), "t", "text")
	if err == nil {
		t.Fatal("want error")
	}
	if !strings.Contains(err.Error(), "sharing doc123") {
		t.Fatalf("unexpected error: %v", err)
	}
	// The document was created, so it's still reported.
	testutil.AssertEqual(t, doc.ID, "doc123")
}
