package trello

import (
	"context"
	"net/url"
	"strings"

	"github.com/adlio/trello"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
)

// MaxCommentLength is the longest comment text Trello accepts
const MaxCommentLength = 16384

// Client comments on cards and manages webhooks for one Trello account
type Client struct {
	api *trello.Client
}

var _ interfaces.TrackerService = &Client{}

type Option func(*Client)

// WithBaseURL overrides the Trello REST endpoint, e.g. "https://api.trello.com/1"
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.api.BaseURL = strings.TrimRight(baseURL, "/")
	}
}

// New creates a Trello client from an API key and token
func New(apiKey, apiToken string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("Trello API key is required")
	}
	if apiToken == "" {
		return nil, goerr.New("Trello API token is required")
	}

	c := &Client{
		api: trello.NewClient(apiKey, apiToken),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// PostComment adds text as a comment on the card
func (c *Client) PostComment(ctx context.Context, cardID, text string) error {
	if cardID == "" {
		return goerr.New("card ID is required")
	}

	var action trello.Action
	path := "cards/" + url.PathEscape(cardID) + "/actions/comments"
	args := trello.Arguments{"text": truncate(text, MaxCommentLength)}
	if err := c.api.WithContext(ctx).Post(path, args, &action); err != nil {
		return goerr.Wrap(err, "failed to add Trello comment", goerr.V("card_id", cardID))
	}

	return nil
}

// Webhook is a registered Trello webhook
type Webhook struct {
	ID          string
	ModelID     string
	CallbackURL string
	Active      bool
}

// RegisterWebhook asks Trello to deliver activity of modelID (usually a board) to callbackURL.
// Trello probes callbackURL with HEAD before accepting it.
func (c *Client) RegisterWebhook(ctx context.Context, modelID, callbackURL, description string) (*Webhook, error) {
	if modelID == "" {
		return nil, goerr.New("model ID is required")
	}
	if callbackURL == "" {
		return nil, goerr.New("callback URL is required")
	}

	hook := &trello.Webhook{
		IDModel:     modelID,
		CallbackURL: callbackURL,
		Description: description,
	}
	if err := c.api.WithContext(ctx).CreateWebhook(hook); err != nil {
		return nil, goerr.Wrap(err, "failed to register Trello webhook",
			goerr.V("model_id", modelID),
			goerr.V("callback_url", callbackURL))
	}

	return &Webhook{
		ID:          hook.ID,
		ModelID:     hook.IDModel,
		CallbackURL: hook.CallbackURL,
		Active:      hook.Active,
	}, nil
}

func truncate(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	return string(runes[:maxChars])
}
