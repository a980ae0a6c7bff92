package chat_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/relayboard/pkg/domain/model/chat"
)

func loadWebhook(t *testing.T, name string) *chat.Webhook {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", name))
	gt.NoError(t, err).Required()

	hook, err := chat.ParseWebhook(body)
	gt.NoError(t, err).Required()
	return hook
}

func TestParseWebhook(t *testing.T) {
	t.Run("url verification", func(t *testing.T) {
		hook := loadWebhook(t, "challenge.json")
		gt.Value(t, hook.Kind).Equal(chat.WebhookChallenge)
		gt.Value(t, hook.Challenge).Equal("3eZbrw1aBm2rZgRNFdxV2595E9CY3gmdALWMmHkvFXO7tYXAYM8P")
		gt.Value(t, hook.Event).Nil()
	})

	t.Run("top-level message has no thread", func(t *testing.T) {
		hook := loadWebhook(t, "new-thread.json")
		gt.Value(t, hook.Kind).Equal(chat.WebhookCallback)
		gt.Value(t, hook.EventID).Equal("Ev0001")
		gt.Value(t, hook.Event).NotNil()
		gt.Bool(t, hook.Event.HasThread()).False()
		gt.Value(t, hook.Event.ThreadID()).Equal("")
		gt.Bool(t, hook.Event.IsBot()).False()
	})

	t.Run("thread reply", func(t *testing.T) {
		hook := loadWebhook(t, "thread-replied.json")
		ev := hook.Event
		gt.Value(t, ev).NotNil()
		gt.Value(t, ev.ThreadID()).Equal("1715287188.123456")
		gt.Value(t, ev.UserID()).Equal("U0002")
		gt.Value(t, ev.Text()).Equal("lgtm")
		gt.Value(t, ev.ChannelID()).Equal("C0123456")
		gt.Value(t, ev.TeamID()).Equal("T0001")
		gt.Bool(t, ev.IsBot()).False()
	})

	t.Run("bot reply", func(t *testing.T) {
		hook := loadWebhook(t, "thread-replied-bot.json")
		gt.Value(t, hook.Event).NotNil()
		gt.Bool(t, hook.Event.IsBot()).True()
		gt.Value(t, hook.Event.ThreadID()).Equal("1715287188.123456")
	})

	t.Run("edited message is not an event", func(t *testing.T) {
		hook := loadWebhook(t, "message-changed.json")
		gt.Value(t, hook.Kind).Equal(chat.WebhookCallback)
		gt.Value(t, hook.Event).Nil()
	})

	t.Run("non message callback is not an event", func(t *testing.T) {
		hook := loadWebhook(t, "reaction-added.json")
		gt.Value(t, hook.Kind).Equal(chat.WebhookCallback)
		gt.Value(t, hook.Event).Nil()
	})

	t.Run("unknown type is unrecognized", func(t *testing.T) {
		hook, err := chat.ParseWebhook([]byte(`{"type":"app_rate_limited","team_id":"T0001"}`))
		gt.NoError(t, err).Required()
		gt.Value(t, hook.Kind).Equal(chat.WebhookUnrecognized)
		gt.Value(t, hook.RawType).Equal("app_rate_limited")
	})

	t.Run("broken json", func(t *testing.T) {
		_, err := chat.ParseWebhook([]byte(`{"type":`))
		gt.Bool(t, errors.Is(err, chat.ErrInvalidPayload)).True()
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := chat.ParseWebhook([]byte(`{"challenge":"abc"}`))
		gt.Bool(t, errors.Is(err, chat.ErrInvalidPayload)).True()
	})

	t.Run("challenge without value", func(t *testing.T) {
		_, err := chat.ParseWebhook([]byte(`{"type":"url_verification"}`))
		gt.Bool(t, errors.Is(err, chat.ErrInvalidPayload)).True()
	})
}

func TestNewEventFromData(t *testing.T) {
	ev := chat.NewEventFromData("T1", "C1", "U1", "hello", "2.0", "1.0", false)
	gt.Bool(t, ev.HasThread()).True()
	gt.Value(t, ev.TS()).Equal("2.0")
}
