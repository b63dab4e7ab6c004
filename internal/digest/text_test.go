// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package digest

import (
	"testing"

	"go.astrophena.name/newsdigest/internal/feed"
	"go.astrophena.name/newsdigest/internal/testutil"
)

func TestSpokenText(t *testing.T) {
	cases := map[string]struct {
		summaries []string
		want      string
	}{
		"none": {
			want: "以下是今天的新聞摘要：\n\n今天的新聞就到這裡了唷～祝你有個超棒的一天，啾咪！",
		},
		"one": {
			summaries: []string{"Sum-A"},
			want:      "以下是今天的新聞摘要：\nSum-A\n今天的新聞就到這裡了唷～祝你有個超棒的一天，啾咪！",
		},
		"two": {
			summaries: []string{"Sum-A", "Sum-B"},
			want:      "以下是今天的新聞摘要：\nSum-A\nSum-B\n今天的新聞就到這裡了唷～祝你有個超棒的一天，啾咪！",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, SpokenText(tc.summaries), tc.want)
		})
	}
}

func TestNewsTextEmpty(t *testing.T) {
	testutil.AssertEqual(t, NewsText(nil), "以下是今天的新聞內容彙整：\n\n")
}

func TestStripLinks(t *testing.T) {
	text := NewsText(feed.Batch{
		{Title: "A", Link: "https://example.com/a", Summary: "First"},
		{Title: "B", Link: "https://example.com/b", Summary: "連結：inside a summary line is kept"},
	})
	want := "以下是今天的新聞內容彙整：\n\n" +
		"標題：A\n內容：First\n\n" +
		"標題：B\n內容：連結：inside a summary line is kept\n\n"
	testutil.AssertEqual(t, StripLinks(text), want)
}

func TestBullet(t *testing.T) {
	testutil.AssertEqual(t, Bullet("Sum-A", "L1"), "• Sum-A\nL1")
}

func TestCaptions(t *testing.T) {
	testutil.AssertEqual(t, Captions([]string{"Sum-A", "Sum-B"}, []string{"L1", "L2"}), []string{"• Sum-A\nL1", "• Sum-B\nL2"})
	testutil.AssertEqual(t, Captions(nil, nil), []string{})
}
