package usecase

import (
	"context"

	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/domain/model/chat"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/secmon-lab/relayboard/pkg/utils/errutil"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
)

// RelayUseCase translates normalized platform events into Actions and dispatches them.
// Each event runs lookup, translate, send, link strictly in that order.
type RelayUseCase struct {
	repo       interfaces.Repository
	dispatcher *Dispatcher
}

// NewRelayUseCase creates a RelayUseCase storing links in repo
func NewRelayUseCase(repo interfaces.Repository) *RelayUseCase {
	return &RelayUseCase{
		repo:       repo,
		dispatcher: NewDispatcher(repo.Link()),
	}
}

// HandleChatEvent relays a chat message of tenant to the tracker.
// Lookup failures degrade to a no-op; only the outbound post can fail.
func (uc *RelayUseCase) HandleChatEvent(ctx context.Context, tenant *Tenant, ev *chat.Event) error {
	logger := logging.From(ctx).With(AccountIDKey, tenant.ID())
	ctx = logging.With(ctx, logger)

	var corr ChatCorrelation
	// Skip lookups for events the first guards drop anyway
	if !ev.IsBot() && ev.HasThread() {
		corr.ThreadURL = tenant.Chat.ThreadURL(ev.ThreadID())
		corr.Link, corr.LookupErr = uc.repo.Link().FindByChatThread(ctx, tenant.ID(), ev.ThreadID())
		if corr.LookupErr != nil {
			_ = errutil.Handle(ctx, corr.LookupErr, "failed to look up link by thread")
		}

		if corr.Link != nil {
			name, err := tenant.Chat.GetDisplayName(ctx, ev.UserID())
			if err != nil {
				logger.Warn("failed to resolve display name",
					"user_id", ev.UserID(),
					"error", err.Error())
			}
			corr.DisplayName = name
		}
	}

	action := TranslateChatEvent(ev, corr)
	logAction(ctx, "chat event translated", action)

	return uc.dispatcher.Dispatch(ctx, tenant, action)
}

// HandleTrackerEvent relays a card activity of tenant to the chat
func (uc *RelayUseCase) HandleTrackerEvent(ctx context.Context, tenant *Tenant, ev *tracker.Event) error {
	logger := logging.From(ctx).With(AccountIDKey, tenant.ID())
	ctx = logging.With(ctx, logger)

	corr := TrackerCorrelation{
		ThreadURL: tenant.Chat.ThreadURL,
	}
	corr.Link, corr.LookupErr = uc.repo.Link().FindByTrackerCard(ctx, tenant.ID(), ev.CardID)

	action, err := TranslateTrackerEvent(ev, corr)
	if err != nil {
		return err
	}
	logAction(ctx, "tracker event translated", action,
		DiscriminatorKey, ev.Discriminator.String(),
		"from_app", ev.FromApp())

	return uc.dispatcher.Dispatch(ctx, tenant, action)
}

func logAction(ctx context.Context, msg string, action *model.Action, args ...any) {
	args = append(args,
		ActionKindKey, action.Kind,
		"source_id", action.Source.ID,
		"target_id", action.Target.ID,
	)
	if action.IsNone() && action.Update.Text != "" {
		args = append(args, "text", action.Update.Text)
	}
	logging.From(ctx).Info(msg, args...)
}
