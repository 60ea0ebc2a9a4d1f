package analyzer

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TextFromHTML flattens an HTML message body into plain text for
// AnalyzeText. Script and style content is dropped. Anchor targets are
// appended on their own lines so links hidden behind display text are still
// checked.
func TextFromHTML(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	b.WriteString(strings.Join(strings.Fields(doc.Text()), " "))
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "mailto:") {
			return
		}
		b.WriteString("\n")
		b.WriteString(href)
	})
	return b.String(), nil
}
