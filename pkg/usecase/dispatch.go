package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/domain/types"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
)

// Dispatcher executes Actions against the outbound services of a tenant
type Dispatcher struct {
	links interfaces.LinkRepository
}

// NewDispatcher creates a Dispatcher that records new correlations in links
func NewDispatcher(links interfaces.LinkRepository) *Dispatcher {
	return &Dispatcher{links: links}
}

// Dispatch performs the side effects of action:
//
//   - None: nothing
//   - UpdateThread: one post into Target.ID, no link write
//   - NewThread: one post opening a thread, then one link from the new thread to Source.ID
//
// A failed post never writes a link. When the link already exists (a concurrent
// delivery won the race) the conflict is logged and swallowed. Any other link
// write failure is returned as ErrLinkWrite; the thread then exists without a
// link and the next event for the card opens another one.
func (d *Dispatcher) Dispatch(ctx context.Context, tenant *Tenant, action *model.Action) error {
	if action.IsNone() {
		return nil
	}
	if err := action.Validate(); err != nil {
		return wrapAs(ErrValidation, err, "invalid action",
			goerr.V(AccountIDKey, tenant.ID()),
			goerr.V(ActionKindKey, action.Kind))
	}

	switch action.Kind {
	case types.ActionUpdateThread:
		_, err := d.send(ctx, tenant, action)
		return err

	case types.ActionNewThread:
		if action.Target.Service != types.ServiceChat {
			return wrapAs(ErrValidation, nil, "new threads can only be opened on the chat side",
				goerr.V(AccountIDKey, tenant.ID()),
				goerr.V("target_service", action.Target.Service))
		}

		threadID, err := d.send(ctx, tenant, action)
		if err != nil {
			return err
		}
		return d.link(ctx, tenant, threadID, action.Source.ID)
	}

	return nil
}

// send posts the update and returns the chat thread ID it landed in, if any
func (d *Dispatcher) send(ctx context.Context, tenant *Tenant, action *model.Action) (string, error) {
	switch action.Target.Service {
	case types.ServiceChat:
		posted, err := tenant.Chat.PostMessage(ctx, action.Target.ID, action.Update.Text)
		if err != nil {
			return "", wrapAs(ErrSend, err, "failed to post chat message",
				goerr.V(AccountIDKey, tenant.ID()),
				goerr.V(ThreadIDKey, action.Target.ID))
		}
		return posted.ThreadID, nil

	case types.ServiceTracker:
		if err := tenant.Tracker.PostComment(ctx, action.Target.ID, action.Update.Text); err != nil {
			return "", wrapAs(ErrSend, err, "failed to post tracker comment",
				goerr.V(AccountIDKey, tenant.ID()),
				goerr.V(CardIDKey, action.Target.ID))
		}
		return "", nil
	}

	return "", wrapAs(ErrValidation, nil, "unknown target service",
		goerr.V("target_service", action.Target.Service))
}

func (d *Dispatcher) link(ctx context.Context, tenant *Tenant, threadID, cardID string) error {
	logger := logging.From(ctx)

	if threadID == "" {
		return wrapAs(ErrLinkWrite, nil, "chat service returned no thread ID",
			goerr.V(AccountIDKey, tenant.ID()),
			goerr.V(CardIDKey, cardID))
	}

	link := model.NewLink(tenant.ID(), threadID, cardID)
	if err := d.links.Create(ctx, link); err != nil {
		if errors.Is(err, ErrLinkConflict) {
			logger.Warn("link already exists, keeping the stored one",
				AccountIDKey, tenant.ID(),
				ThreadIDKey, threadID,
				CardIDKey, cardID)
			return nil
		}
		return wrapAs(ErrLinkWrite, err, "failed to store link",
			goerr.V(AccountIDKey, tenant.ID()),
			goerr.V(ThreadIDKey, threadID),
			goerr.V(CardIDKey, cardID))
	}

	logger.Info("linked thread to card",
		AccountIDKey, tenant.ID(),
		ThreadIDKey, threadID,
		CardIDKey, cardID,
		"link_id", link.ID)
	return nil
}
