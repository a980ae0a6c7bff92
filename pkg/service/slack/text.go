package slack

import (
	"strings"
	"unicode/utf8"
)

// MaxMessageLength is the number of characters Slack keeps from a message text
const MaxMessageLength = 40000

const truncationMarker = "…"

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeText escapes the three characters Slack treats as control sequences,
// so relayed text cannot form mentions or links by accident.
func EscapeText(text string) string {
	return textEscaper.Replace(text)
}

// TruncateText cuts text to at most maxChars runes, ending with an ellipsis when cut
func TruncateText(text string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	keep := maxChars - utf8.RuneCountInString(truncationMarker)
	if keep < 0 {
		keep = 0
	}

	var b strings.Builder
	b.Grow(len(text))
	n := 0
	for _, r := range text {
		if n == keep {
			break
		}
		b.WriteRune(r)
		n++
	}
	b.WriteString(truncationMarker)
	return b.String()
}
