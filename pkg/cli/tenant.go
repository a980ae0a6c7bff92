package cli

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	slacksvc "github.com/secmon-lab/relayboard/pkg/service/slack"
	trellosvc "github.com/secmon-lab/relayboard/pkg/service/trello"
	"github.com/secmon-lab/relayboard/pkg/usecase"
)

// newTenant builds the Slack and Trello clients of an account
func newTenant(account *model.Account) (*usecase.Tenant, error) {
	var slackOpts []slacksvc.Option
	if account.Slack.TeamURL != "" {
		slackOpts = append(slackOpts, slacksvc.WithTeamURL(account.Slack.TeamURL))
	}
	chat, err := slacksvc.New(account.Slack.BotToken, account.Slack.ChannelID, slackOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create slack client", goerr.V("account_id", account.ID))
	}

	tracker, err := trellosvc.New(account.Trello.APIKey, account.Trello.APIToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create trello client", goerr.V("account_id", account.ID))
	}

	return &usecase.Tenant{
		Account: account,
		Chat:    chat,
		Tracker: tracker,
	}, nil
}
