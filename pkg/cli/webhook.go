package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/cli/config"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	trellosvc "github.com/secmon-lab/relayboard/pkg/service/trello"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdWebhook() *cli.Command {
	var accountsCfg config.Accounts
	var accountID string
	var trelloBaseURL string

	flags := accountsCfg.Flags()
	flags = append(flags,
		&cli.StringFlag{
			Name:        "account",
			Usage:       "Register only this account (default: all accounts)",
			Destination: &accountID,
		},
		&cli.StringFlag{
			Name:        "trello-base-url",
			Usage:       "Trello REST endpoint",
			Value:       "https://api.trello.com/1",
			Sources:     cli.EnvVars("RELAYBOARD_TRELLO_BASE_URL"),
			Destination: &trelloBaseURL,
		},
	)

	return &cli.Command{
		Name:  "webhook",
		Usage: "Manage Trello webhooks",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register the board webhook of each account to its callback URL",
				Flags: flags,
				Action: func(ctx context.Context, c *cli.Command) error {
					accounts, err := accountsCfg.Load()
					if err != nil {
						return goerr.Wrap(err, "failed to load accounts")
					}

					targets := accounts.List()
					if accountID != "" {
						account, err := accounts.Get(accountID)
						if err != nil {
							return err
						}
						targets = []*model.Account{account}
					}

					w := c.Root().Writer
					for _, account := range targets {
						if account.Trello.BoardID == "" || account.Trello.CallbackURL == "" {
							color.New(color.FgYellow).Fprintf(w, "- %s: skipped (board_id or callback_url is empty)\n", account.ID)
							continue
						}

						client, err := trellosvc.New(account.Trello.APIKey, account.Trello.APIToken, trellosvc.WithBaseURL(trelloBaseURL))
						if err != nil {
							return goerr.Wrap(err, "failed to create trello client", goerr.V("account_id", account.ID))
						}

						desc := fmt.Sprintf("relayboard %s", account.ID)
						hook, err := client.RegisterWebhook(ctx, account.Trello.BoardID, account.Trello.CallbackURL, desc)
						if err != nil {
							return goerr.Wrap(err, "failed to register webhook", goerr.V("account_id", account.ID))
						}

						logging.Default().Info("Webhook registered",
							"account_id", account.ID,
							"webhook_id", hook.ID,
							"callback_url", hook.CallbackURL)
						color.New(color.FgGreen).Fprintf(w, "✔ %s: %s -> %s\n", account.ID, hook.ID, hook.CallbackURL)
					}
					return nil
				},
			},
		},
	}
}
