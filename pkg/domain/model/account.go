package model

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ErrAccountNotFound is returned when an account is not found in the registry
var ErrAccountNotFound = goerr.New("account not found")

var accountIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,62}$`)

// SlackSettings holds the per-account chat side configuration
type SlackSettings struct {
	ChannelID     string
	BotToken      string
	SigningSecret string
	// TeamURL is the workspace URL (e.g. https://example.slack.com/) used to build thread permalinks
	TeamURL string
}

// TrelloSettings holds the per-account tracker side configuration
type TrelloSettings struct {
	APIKey   string
	APIToken string
	// APISecret signs webhook deliveries; verification is skipped when empty
	APISecret   string
	CallbackURL string
	BoardID     string
}

// Account is a tenant of the relay: one Slack channel paired with one Trello board
type Account struct {
	ID     string
	Name   string
	Slack  SlackSettings
	Trello TrelloSettings
}

// Validate checks if the account has everything needed to relay in both directions
func (a *Account) Validate() error {
	if !accountIDPattern.MatchString(a.ID) {
		return goerr.New("invalid account ID format", goerr.V("id", a.ID))
	}
	if a.Slack.ChannelID == "" {
		return goerr.New("slack channel ID is required", goerr.V("id", a.ID))
	}
	if a.Slack.BotToken == "" {
		return goerr.New("slack bot token is required", goerr.V("id", a.ID))
	}
	if a.Trello.APIKey == "" || a.Trello.APIToken == "" {
		return goerr.New("trello API key and token are required", goerr.V("id", a.ID))
	}
	if a.Slack.TeamURL != "" && !strings.HasPrefix(a.Slack.TeamURL, "https://") {
		return goerr.New("slack team URL must start with https://", goerr.V("id", a.ID), goerr.V("team_url", a.Slack.TeamURL))
	}
	return nil
}

// LogValue hides credentials
func (a Account) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", a.ID),
		slog.String("name", a.Name),
		slog.String("slack.channel_id", a.Slack.ChannelID),
		slog.Int("slack.bot_token.len", len(a.Slack.BotToken)),
		slog.Bool("slack.signing_secret", a.Slack.SigningSecret != ""),
		slog.Int("trello.api_key.len", len(a.Trello.APIKey)),
		slog.Bool("trello.api_secret", a.Trello.APISecret != ""),
		slog.String("trello.board_id", a.Trello.BoardID),
	)
}

// AccountRegistry holds account settings keyed by account ID.
// It does not hold service clients (settings only).
type AccountRegistry struct {
	entries map[string]*Account
	order   []string // preserves registration order
}

// NewAccountRegistry creates a new empty AccountRegistry
func NewAccountRegistry() *AccountRegistry {
	return &AccountRegistry{
		entries: make(map[string]*Account),
	}
}

// Register adds an account to the registry, replacing one with the same ID
func (r *AccountRegistry) Register(account *Account) {
	if _, exists := r.entries[account.ID]; !exists {
		r.order = append(r.order, account.ID)
	}
	r.entries[account.ID] = account
}

// Get retrieves an account by ID
func (r *AccountRegistry) Get(accountID string) (*Account, error) {
	account, ok := r.entries[accountID]
	if !ok {
		return nil, goerr.Wrap(ErrAccountNotFound, "account not found",
			goerr.V("account_id", accountID))
	}
	return account, nil
}

// List returns all registered accounts in registration order
func (r *AccountRegistry) List() []*Account {
	result := make([]*Account, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.entries[id])
	}
	return result
}

// Len returns the number of registered accounts
func (r *AccountRegistry) Len() int {
	return len(r.order)
}
