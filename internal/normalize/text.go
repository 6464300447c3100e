package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText collapses whitespace runs and non-breaking spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "\u202f", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// StripHTML renders a description to plain text. Some API versions return
// descriptions as HTML fragments; plain-text input passes through unchanged
// apart from whitespace cleanup.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return CleanText(s)
	}
	return CleanText(doc.Text())
}

// Truncate cuts s to at most n runes, appending an ellipsis when it cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
