// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package digest

import (
	"fmt"
	"strings"

	"go.astrophena.name/newsdigest/internal/feed"
)

// Scripted parts of the narration.
const (
	SpokenIntro = "以下是今天的新聞摘要："
	Closing     = "今天的新聞就到這裡了唷～祝你有個超棒的一天，啾咪！"
	NewsIntro   = "以下是今天的新聞內容彙整：\n\n"
	NoNewsText  = "今天沒有新的新聞唷～明天見！"

	linkPrefix = "連結："
)

// SpokenText assembles per-entry summaries into the narrated text: the
// intro line, one summary per line and the closing line.
func SpokenText(summaries []string) string {
	return SpokenIntro + "\n" + strings.Join(summaries, "\n") + "\n" + Closing
}

// Bullet formats a caption line for a summary and the link it came from.
func Bullet(summary, link string) string {
	return "• " + summary + "\n" + link
}

// Captions pairs every summary with the link of its entry, as [Bullet] does.
// summaries and links must have the same length.
func Captions(summaries, links []string) []string {
	captions := make([]string, 0, len(summaries))
	for i, s := range summaries {
		captions = append(captions, Bullet(s, links[i]))
	}
	return captions
}

// NewsText concatenates the entries of b into a single block, each entry
// with its title, link and summary.
func NewsText(b feed.Batch) string {
	var sb strings.Builder
	sb.WriteString(NewsIntro)
	for _, e := range b {
		fmt.Fprintf(&sb, "標題：%s\n%s%s\n內容：%s\n\n", e.Title, linkPrefix, e.Link, e.Summary)
	}
	return sb.String()
}

// StripLinks removes the link lines produced by [NewsText], so they are not
// read aloud.
func StripLinks(text string) string {
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, linkPrefix) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// EntryPrompt asks for a short spoken summary of a single entry.
func EntryPrompt(e feed.Entry) string {
	return "請用繁體中文將以下新聞摘要成一段口語化敘述（限80字內，語氣像動森的西施惠）：\n" +
		"標題：" + e.Title + "\n" +
		"內容：" + e.Summary
}

// CombinedPrompt asks for one spoken summary of all news in text, at most
// maxChars characters long.
func CombinedPrompt(text string, maxChars int) string {
	return fmt.Sprintf("請用繁體中文將以下新聞內容彙整成一段適合朗讀的口語化摘要（限%d字內），"+
		"語氣親切自然，不要列出網址：\n\n%s", maxChars, text)
}
