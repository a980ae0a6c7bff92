package config

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// AccountsFile is the on-disk layout of the accounts configuration
type AccountsFile struct {
	Accounts []AccountEntry `toml:"account" yaml:"accounts"`
}

// AccountEntry is one tenant in the accounts file
type AccountEntry struct {
	ID     string      `toml:"id" yaml:"id"`
	Name   string      `toml:"name" yaml:"name"`
	Slack  SlackEntry  `toml:"slack" yaml:"slack"`
	Trello TrelloEntry `toml:"trello" yaml:"trello"`
}

type SlackEntry struct {
	ChannelID     string `toml:"channel_id" yaml:"channel_id"`
	BotToken      string `toml:"bot_token" yaml:"bot_token"`
	SigningSecret string `toml:"signing_secret" yaml:"signing_secret"`
	TeamURL       string `toml:"team_url" yaml:"team_url"`
}

type TrelloEntry struct {
	APIKey      string `toml:"api_key" yaml:"api_key"`
	APIToken    string `toml:"api_token" yaml:"api_token"`
	APISecret   string `toml:"api_secret" yaml:"api_secret"`
	CallbackURL string `toml:"callback_url" yaml:"callback_url"`
	BoardID     string `toml:"board_id" yaml:"board_id"`
}

// ToModel converts the entry into a domain account, expanding ${ENV} references
func (e *AccountEntry) ToModel() (*model.Account, error) {
	var missing []string
	expand := func(s string) string {
		return os.Expand(s, func(name string) string {
			v, ok := os.LookupEnv(name)
			if !ok {
				missing = append(missing, name)
			}
			return v
		})
	}

	account := &model.Account{
		ID:   e.ID,
		Name: e.Name,
		Slack: model.SlackSettings{
			ChannelID:     expand(e.Slack.ChannelID),
			BotToken:      expand(e.Slack.BotToken),
			SigningSecret: expand(e.Slack.SigningSecret),
			TeamURL:       expand(e.Slack.TeamURL),
		},
		Trello: model.TrelloSettings{
			APIKey:      expand(e.Trello.APIKey),
			APIToken:    expand(e.Trello.APIToken),
			APISecret:   expand(e.Trello.APISecret),
			CallbackURL: expand(e.Trello.CallbackURL),
			BoardID:     expand(e.Trello.BoardID),
		},
	}
	if len(missing) > 0 {
		return nil, goerr.Wrap(ErrMissingEnv, "failed to expand account settings",
			goerr.V(AccountIDKey, e.ID),
			goerr.V(EnvNameKey, strings.Join(missing, ",")))
	}

	if account.Name == "" {
		account.Name = account.ID
	}
	if err := account.Validate(); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "invalid account", goerr.V(AccountIDKey, e.ID))
	}
	return account, nil
}

// ParseAccounts decodes an accounts file. format is the file extension
// (".toml", ".yaml" or ".yml").
func ParseAccounts(data []byte, format string) (*AccountsFile, error) {
	var file AccountsFile
	switch strings.ToLower(format) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML accounts")
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse YAML accounts")
		}
	default:
		return nil, goerr.Wrap(ErrUnsupportedFormat, "unknown accounts file extension", goerr.V("format", format))
	}
	return &file, nil
}

// BuildRegistry validates every entry and registers it. IDs must be unique.
func (f *AccountsFile) BuildRegistry() (*model.AccountRegistry, error) {
	if len(f.Accounts) == 0 {
		return nil, goerr.Wrap(ErrNoAccount, "accounts file has no account")
	}

	registry := model.NewAccountRegistry()
	seen := make(map[string]bool, len(f.Accounts))
	for i := range f.Accounts {
		entry := &f.Accounts[i]
		if seen[entry.ID] {
			return nil, goerr.Wrap(ErrDuplicateAccountID, "account ID is used more than once",
				goerr.V(AccountIDKey, entry.ID),
				goerr.V(AccountIndexKey, i))
		}
		seen[entry.ID] = true

		account, err := entry.ToModel()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load account", goerr.V(AccountIndexKey, i))
		}
		registry.Register(account)
	}
	return registry, nil
}

// LoadAccounts reads, parses and validates the accounts file at path
func LoadAccounts(path string) (*model.AccountRegistry, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "accounts file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read accounts file", goerr.V(ConfigPathKey, path))
	}

	file, err := ParseAccounts(data, filepath.Ext(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse accounts file", goerr.V(ConfigPathKey, path))
	}

	registry, err := file.BuildRegistry()
	if err != nil {
		return nil, goerr.Wrap(err, "accounts validation failed", goerr.V(ConfigPathKey, path))
	}
	return registry, nil
}

// Accounts holds CLI flags for the accounts file
type Accounts struct {
	path  string
	watch bool
}

func (x *Accounts) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "accounts",
			Aliases:     []string{"a"},
			Usage:       "Path to accounts file (.toml, .yaml or .yml)",
			Category:    "Accounts",
			Value:       "./accounts.toml",
			Destination: &x.path,
			Sources:     cli.EnvVars("RELAYBOARD_ACCOUNTS"),
		},
		&cli.BoolFlag{
			Name:        "watch-accounts",
			Usage:       "Reload accounts when the file changes",
			Category:    "Accounts",
			Destination: &x.watch,
			Sources:     cli.EnvVars("RELAYBOARD_WATCH_ACCOUNTS"),
		},
	}
}

func (x Accounts) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.Bool("watch", x.watch),
	)
}

// Path returns the accounts file path
func (x *Accounts) Path() string {
	return x.path
}

// Watch reports whether the accounts file should be watched for changes
func (x *Accounts) Watch() bool {
	return x.watch
}

// Load reads the accounts file
func (x *Accounts) Load() (*model.AccountRegistry, error) {
	return LoadAccounts(x.path)
}
