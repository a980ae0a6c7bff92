package usecase

import (
	"fmt"

	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/domain/model/chat"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/secmon-lab/relayboard/pkg/domain/types"
)

// ChatCorrelation is what the relay learned about a chat event before translating it
type ChatCorrelation struct {
	// Link is the correlation of the event's thread, nil when none exists
	Link *model.Link
	// LookupErr is set when the correlation store could not answer
	LookupErr error
	// DisplayName is the author's name; empty when it could not be resolved
	DisplayName string
	// ThreadURL is the permalink of the event's thread, if derivable
	ThreadURL string
}

// TranslateChatEvent derives the Action for a chat message. Guards apply in
// order and the first match wins:
//
//  1. bot authored messages are dropped, which prevents relay echo loops
//  2. top level messages are dropped, only thread replies are relayed
//  3. uncorrelated threads (or a failed lookup) are dropped
//  4. anything else is relayed as a comment on the correlated card
func TranslateChatEvent(ev *chat.Event, corr ChatCorrelation) *model.Action {
	action := &model.Action{
		Kind: types.ActionNone,
		Source: model.ActionEndpoint{
			ID:      ev.ThreadID(),
			URL:     corr.ThreadURL,
			Service: types.ServiceChat,
		},
		Target: model.ActionEndpoint{
			Service: types.ServiceTracker,
		},
	}

	switch {
	case ev.IsBot():
		return action
	case !ev.HasThread():
		return action
	case corr.LookupErr != nil || corr.Link == nil:
		return action
	}

	action.Kind = types.ActionUpdateThread
	action.Target.ID = corr.Link.TrackerCardID
	action.Target.URL = tracker.CardURL(corr.Link.TrackerCardID)
	action.Update.Text = fmt.Sprintf("%s posted in chat\n%s", corr.DisplayName, ev.Text())
	return action
}
