// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package feed

import (
	"strings"
	"testing"

	"go.astrophena.name/newsdigest/internal/testutil"
)

func TestLoadSources(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		src     string
		want    []Source
		wantErr string
	}{
		"simple": {
			src: `feeds = [
    feed(url = "https://cn.wsj.com/zh-hant/rss", title = "WSJ 中文網"),
    feed(url = "https://tech.example.com/feed.atom"),
]`,
			want: []Source{
				{URL: "https://cn.wsj.com/zh-hant/rss", Title: "WSJ 中文網"},
				{URL: "https://tech.example.com/feed.atom"},
			},
		},
		"computed": {
			src: `
base = "https://news.example.com/"
feeds = [feed(url = base + s + ".xml") for s in ["world", "markets"]]
`,
			want: []Source{
				{URL: "https://news.example.com/world.xml"},
				{URL: "https://news.example.com/markets.xml"},
			},
		},
		"empty list": {
			src:  "feeds = []",
			want: nil,
		},
		"missing feeds": {
			src:     `urls = ["https://example.com"]`,
			wantErr: "feeds must be defined and be a list",
		},
		"not a feed": {
			src:     `feeds = ["https://example.com/rss"]`,
			wantErr: "feeds[0]: want feed, got string",
		},
		"invalid URL": {
			src:     `feeds = [feed(url = "ftp://example.com/rss", title = "FTP")]`,
			wantErr: `invalid URL "ftp://example.com/rss" of feed "FTP"`,
		},
		"positional arguments": {
			src:     `feeds = [feed("https://example.com/rss")]`,
			wantErr: "unexpected positional arguments",
		},
		"syntax error": {
			src:     `feeds = [`,
			wantErr: "feeds.star",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := LoadSources("feeds.star", tc.src)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("want error containing %q, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestDefaultSources(t *testing.T) {
	t.Parallel()

	got, err := LoadSources("feeds.star", DefaultSources)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got, []Source{{URL: "https://cn.wsj.com/zh-hant/rss", Title: "WSJ 中文網"}})
	testutil.AssertEqual(t, got[0].Name(), "WSJ 中文網")
	testutil.AssertEqual(t, Source{URL: "https://example.com"}.Name(), "https://example.com")
}
