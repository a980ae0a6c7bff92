package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/cli/config"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/urfave/cli/v3"
)

var errLinkNotFound = goerr.New("link not found")

func cmdLink() *cli.Command {
	var repoCfg config.Repository
	var accountID string

	accountFlag := func() cli.Flag {
		return &cli.StringFlag{
			Name:        "account",
			Usage:       "Account ID",
			Required:    true,
			Destination: &accountID,
		}
	}

	var threadID, cardID string
	getFlags := append(repoCfg.Flags(), accountFlag(),
		&cli.StringFlag{
			Name:        "thread",
			Usage:       "Slack thread timestamp",
			Destination: &threadID,
		},
		&cli.StringFlag{
			Name:        "card",
			Usage:       "Trello card ID",
			Destination: &cardID,
		},
	)

	var limit int
	listFlags := append(repoCfg.Flags(), accountFlag(),
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of links (0 for all)",
			Value:       20,
			Destination: &limit,
		},
	)

	return &cli.Command{
		Name:  "link",
		Usage: "Inspect thread and card links",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Show the link of a thread or a card",
				Flags: getFlags,
				Action: func(ctx context.Context, c *cli.Command) error {
					if (threadID == "") == (cardID == "") {
						return goerr.Wrap(config.ErrInvalidConfig, "exactly one of --thread or --card is required")
					}

					repo, err := repoCfg.Configure(ctx)
					if err != nil {
						return err
					}
					defer func() { _ = repo.Close() }()

					var link *model.Link
					if threadID != "" {
						link, err = repo.Link().FindByChatThread(ctx, accountID, threadID)
					} else {
						link, err = repo.Link().FindByTrackerCard(ctx, accountID, cardID)
					}
					if err != nil {
						return goerr.Wrap(err, "failed to look up link")
					}
					if link == nil {
						return goerr.Wrap(errLinkNotFound, "no link",
							goerr.V("account_id", accountID),
							goerr.V("thread", threadID),
							goerr.V("card", cardID))
					}

					printLink(c.Root().Writer, link)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List links of an account, newest first",
				Flags: listFlags,
				Action: func(ctx context.Context, c *cli.Command) error {
					repo, err := repoCfg.Configure(ctx)
					if err != nil {
						return err
					}
					defer func() { _ = repo.Close() }()

					links, err := repo.Link().List(ctx, accountID, limit)
					if err != nil {
						return goerr.Wrap(err, "failed to list links")
					}
					for _, link := range links {
						printLink(c.Root().Writer, link)
					}
					return nil
				},
			},
		},
	}
}

func printLink(w io.Writer, link *model.Link) {
	fmt.Fprintf(w, "%s %s thread=%s card=%s %s\n",
		color.CyanString(link.CreatedAt.Format("2006-01-02T15:04:05Z07:00")),
		link.AccountID,
		link.ChatThreadID,
		link.TrackerCardID,
		color.HiBlackString(tracker.CardURL(link.TrackerCardID)))
}
