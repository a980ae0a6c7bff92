package tracker

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidPayload is returned when a webhook body does not match the expected shape
var ErrInvalidPayload = goerr.New("invalid trello webhook payload")

//go:embed schema/webhook.json
var webhookSchemaJSON []byte

const webhookSchemaURL = "https://relayboard.local/schema/trello-webhook.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(webhookSchemaJSON))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode webhook schema")
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(webhookSchemaURL, doc); err != nil {
		return nil, goerr.Wrap(err, "failed to add webhook schema")
	}
	schema, err := c.Compile(webhookSchemaURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to compile webhook schema")
	}
	return schema, nil
})

type webhookPayload struct {
	Action struct {
		ID         string `json:"id"`
		Type       string `json:"type"`
		AppCreator *struct {
			ID string `json:"id"`
		} `json:"appCreator"`
		Data struct {
			Text *string `json:"text"`
			Card struct {
				ID        string `json:"id"`
				Name      string `json:"name"`
				ShortLink string `json:"shortLink"`
			} `json:"card"`
		} `json:"data"`
		Display struct {
			TranslationKey string `json:"translationKey"`
			Entities       struct {
				Card *struct {
					ID        string  `json:"id"`
					ShortLink string  `json:"shortLink"`
					Text      string  `json:"text"`
					Desc      *string `json:"desc"`
				} `json:"card"`
				MemberCreator struct {
					ID       string `json:"id"`
					Username string `json:"username"`
					Text     string `json:"text"`
				} `json:"memberCreator"`
				ListBefore *struct {
					Text string `json:"text"`
				} `json:"listBefore"`
				ListAfter *struct {
					Text string `json:"text"`
				} `json:"listAfter"`
			} `json:"entities"`
		} `json:"display"`
	} `json:"action"`
}

// ParseWebhook validates a Trello webhook body against the embedded JSON schema
// and normalizes it into an Event.
func ParseWebhook(body []byte) (*Event, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "body is not JSON", goerr.V("error", err.Error()))
	}
	if err := schema.Validate(inst); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "body does not match schema", goerr.V("error", err.Error()))
	}

	var p webhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, goerr.Wrap(ErrInvalidPayload, "failed to decode body", goerr.V("error", err.Error()))
	}

	a := p.Action
	ev := &Event{
		ActionID:      a.ID,
		Discriminator: ParseDiscriminator(a.Display.TranslationKey),
		CardID:        a.Data.Card.ID,
		CardShortLink: a.Data.Card.ShortLink,
		CardName:      a.Data.Card.Name,
		MemberText:    a.Display.Entities.MemberCreator.Text,
		CommentText:   a.Data.Text,
	}

	if card := a.Display.Entities.Card; card != nil {
		if card.ID != "" {
			ev.CardID = card.ID
		}
		if card.ShortLink != "" {
			ev.CardShortLink = card.ShortLink
		}
		if card.Text != "" {
			ev.CardName = card.Text
		}
		ev.CardDescription = card.Desc
	}
	if lb := a.Display.Entities.ListBefore; lb != nil {
		ev.ListBefore = &lb.Text
	}
	if la := a.Display.Entities.ListAfter; la != nil {
		ev.ListAfter = &la.Text
	}
	if a.AppCreator != nil {
		ev.AppCreatorID = a.AppCreator.ID
	}

	return ev, nil
}
