package chat

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"
)

// ErrInvalidPayload is returned when a webhook body cannot be decoded
var ErrInvalidPayload = goerr.New("invalid slack webhook payload")

// WebhookKind discriminates the variants of a Slack Events API delivery
type WebhookKind string

const (
	WebhookChallenge    WebhookKind = "url_verification"
	WebhookCallback     WebhookKind = "event_callback"
	WebhookUnrecognized WebhookKind = "unrecognized"
)

// Webhook is a parsed Slack Events API delivery. Exactly one of Challenge or
// Event is meaningful, depending on Kind.
type Webhook struct {
	Kind WebhookKind
	// RawType is the "type" field as received
	RawType   string
	Challenge string
	TeamID    string
	EventID   string
	// Event is nil for callbacks the relay does not handle
	Event *Event
}

type envelope struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	TeamID    string `json:"team_id"`
	EventID   string `json:"event_id"`
	Event     *struct {
		Type string `json:"type"`
	} `json:"event"`
}

// ParseWebhook decodes a Slack Events API body. The "type" field is inspected
// first and decides the variant; unknown types become WebhookUnrecognized.
func ParseWebhook(body []byte) (*Webhook, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "failed to decode envelope", goerr.V("error", err.Error()))
	}
	if env.Type == "" {
		return nil, goerr.Wrap(ErrInvalidPayload, "type field is missing")
	}

	hook := &Webhook{
		RawType: env.Type,
		TeamID:  env.TeamID,
		EventID: env.EventID,
	}

	switch env.Type {
	case slackevents.URLVerification:
		if env.Challenge == "" {
			return nil, goerr.Wrap(ErrInvalidPayload, "challenge is missing")
		}
		hook.Kind = WebhookChallenge
		hook.Challenge = env.Challenge
		return hook, nil

	case slackevents.CallbackEvent:
		hook.Kind = WebhookCallback
		if env.Event == nil || env.Event.Type != string(slackevents.Message) {
			return hook, nil
		}

		ev, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
		if err != nil {
			return nil, goerr.Wrap(ErrInvalidPayload, "failed to parse slack event", goerr.V("error", err.Error()))
		}
		hook.Event = NewEvent(&ev)
		return hook, nil

	default:
		hook.Kind = WebhookUnrecognized
		return hook, nil
	}
}
