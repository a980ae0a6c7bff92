package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/cli/config"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var accountsCfg config.Accounts

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the accounts file",
		Flags:   accountsCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			accounts, err := accountsCfg.Load()
			if err != nil {
				color.New(color.FgRed, color.Bold).Fprintf(c.Root().Writer, "✘ %s\n", accountsCfg.Path())
				return goerr.Wrap(err, "accounts validation failed")
			}

			printAccounts(c.Root().Writer, accountsCfg.Path(), accounts)
			return nil
		},
	}
}

func printAccounts(w io.Writer, path string, accounts *model.AccountRegistry) {
	ok := color.New(color.FgGreen, color.Bold)
	warn := color.New(color.FgYellow)

	ok.Fprintf(w, "✔ %s (%d accounts)\n", path, accounts.Len())
	for _, a := range accounts.List() {
		fmt.Fprintf(w, "  %s %s channel=%s board=%s\n", a.ID, color.CyanString("(%s)", a.Name), a.Slack.ChannelID, a.Trello.BoardID)
		if a.Slack.SigningSecret == "" {
			warn.Fprintln(w, "    slack signing secret is empty: webhook signatures are not verified")
		}
		if a.Trello.APISecret == "" {
			warn.Fprintln(w, "    trello api secret is empty: webhook signatures are not verified")
		}
		if a.Trello.CallbackURL == "" {
			warn.Fprintln(w, "    trello callback URL is empty: webhook cannot be registered")
		}
	}
}
