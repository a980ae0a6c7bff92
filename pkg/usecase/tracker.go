package usecase

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/secmon-lab/relayboard/pkg/domain/types"
)

// TrackerCorrelation is what the relay learned about a tracker event before translating it
type TrackerCorrelation struct {
	// Link is the correlation of the event's card, nil when none exists
	Link *model.Link
	// LookupErr is set when the correlation store could not answer
	LookupErr error
	// ThreadURL builds the permalink of a chat thread; may be nil
	ThreadURL func(threadID string) string
}

// TranslateTrackerEvent derives the Action for a card activity.
//
// A correlated card continues its thread, any other card opens a new one. A
// failed lookup is an error rather than "not found", since treating it as
// not found would open a second thread for the same card. Unrecognized
// activity and activity performed by integrations yield a None action.
func TranslateTrackerEvent(ev *tracker.Event, corr TrackerCorrelation) (*model.Action, error) {
	if corr.LookupErr != nil {
		return nil, wrapAs(ErrLookup, corr.LookupErr, "failed to look up link by card",
			goerr.V(CardIDKey, ev.CardID))
	}
	if ev.CardID == "" {
		return nil, wrapAs(ErrValidation, nil, "card ID is missing",
			goerr.V(DiscriminatorKey, ev.Discriminator.String()))
	}

	action := &model.Action{
		Kind: types.ActionNewThread,
		Source: model.ActionEndpoint{
			ID:      ev.CardID,
			URL:     tracker.CardURL(ev.CardShortLink),
			Service: types.ServiceTracker,
		},
		Target: model.ActionEndpoint{
			Service: types.ServiceChat,
		},
	}
	if corr.Link != nil {
		action.Kind = types.ActionUpdateThread
		action.Target.ID = corr.Link.ChatThreadID
		if corr.ThreadURL != nil {
			action.Target.URL = corr.ThreadURL(corr.Link.ChatThreadID)
		}
	}

	if !ev.Discriminator.IsRecognized() {
		action.Kind = types.ActionNone
		action.Update.Text = fmt.Sprintf("Unknown key %s", ev.Discriminator.String())
		return action, nil
	}

	text, err := renderTrackerText(ev)
	if err != nil {
		return nil, err
	}
	action.Update.Text = text

	if ev.FromApp() {
		action.Kind = types.ActionNone
	}

	return action, nil
}

func renderTrackerText(ev *tracker.Event) (string, error) {
	missing := func(field string) error {
		return wrapAs(ErrValidation, nil, "required field is missing",
			goerr.V("field", field),
			goerr.V(CardIDKey, ev.CardID),
			goerr.V(DiscriminatorKey, ev.Discriminator.String()))
	}

	member := ev.MemberText
	if member == "" {
		return "", missing("memberCreator")
	}

	switch ev.Discriminator.Kind {
	case tracker.KindCreated:
		if ev.CardName == "" {
			return "", missing("card.name")
		}
		return fmt.Sprintf("This card %s has been created by %s", ev.CardName, member), nil

	case tracker.KindArchived:
		return fmt.Sprintf("This card has been archived by %s", member), nil

	case tracker.KindRenamed:
		if ev.CardName == "" {
			return "", missing("card.name")
		}
		return fmt.Sprintf("This card has been renamed to %s by %s", ev.CardName, member), nil

	case tracker.KindDescriptionChanged:
		if ev.CardDescription == nil {
			return "", missing("card.desc")
		}
		return fmt.Sprintf("This card description has been updated to %s by %s", *ev.CardDescription, member), nil

	case tracker.KindMoved:
		if ev.ListBefore == nil {
			return "", missing("listBefore")
		}
		if ev.ListAfter == nil {
			return "", missing("listAfter")
		}
		return fmt.Sprintf("This card has been moved from list %s to list %s by %s", *ev.ListBefore, *ev.ListAfter, member), nil

	case tracker.KindCommented:
		if ev.CommentText == nil {
			return "", missing("data.text")
		}
		return fmt.Sprintf("Comment added by %s\n%s", member, *ev.CommentText), nil
	}

	return "", wrapAs(ErrValidation, nil, "unsupported discriminator",
		goerr.V(DiscriminatorKey, ev.Discriminator.String()))
}
