package slack_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/relayboard/pkg/service/slack"
)

func TestEscapeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "lgtm", want: "lgtm"},
		{name: "angle brackets", input: "<!channel>", want: "&lt;!channel&gt;"},
		{name: "ampersand", input: "R&D", want: "R&amp;D"},
		{name: "multi line", input: "Comment added by Alice\nok", want: "Comment added by Alice\nok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, slack.EscapeText(tt.input)).Equal(tt.want)
		})
	}
}

func TestTruncateText(t *testing.T) {
	t.Run("short text is unchanged", func(t *testing.T) {
		gt.Value(t, slack.TruncateText("hello", 10)).Equal("hello")
	})

	t.Run("long text is cut with marker", func(t *testing.T) {
		got := slack.TruncateText("abcdefghij", 5)
		gt.Value(t, got).Equal("abcd…")
	})

	t.Run("multi byte runes are not split", func(t *testing.T) {
		got := slack.TruncateText(strings.Repeat("焼", 20), 10)
		gt.Bool(t, utf8.ValidString(got)).True()
		gt.Number(t, utf8.RuneCountInString(got)).Equal(10)
	})

	t.Run("zero limit disables truncation", func(t *testing.T) {
		gt.Value(t, slack.TruncateText("hello", 0)).Equal("hello")
	})
}
