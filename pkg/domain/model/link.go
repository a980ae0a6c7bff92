package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// LinkID is the identifier of a Link record
type LinkID string

// NewLinkID generates a new random LinkID
func NewLinkID() LinkID {
	return LinkID(uuid.NewString())
}

func (id LinkID) String() string {
	return string(id)
}

// Link is the durable 1:1 correlation between a chat thread and a tracker card of one account.
// A link is created once, when a new thread has been posted, and never mutated afterwards.
type Link struct {
	ID            LinkID
	AccountID     string
	ChatThreadID  string
	TrackerCardID string
	CreatedAt     time.Time
}

// NewLink creates a Link with a fresh ID and creation time
func NewLink(accountID, chatThreadID, trackerCardID string) *Link {
	return &Link{
		ID:            NewLinkID(),
		AccountID:     accountID,
		ChatThreadID:  chatThreadID,
		TrackerCardID: trackerCardID,
		CreatedAt:     time.Now().UTC(),
	}
}

// Validate checks that both correlation keys are set
func (l *Link) Validate() error {
	if l.ID == "" {
		return goerr.New("link ID is required")
	}
	if l.AccountID == "" {
		return goerr.New("link account ID is required", goerr.V("link_id", l.ID))
	}
	if l.ChatThreadID == "" {
		return goerr.New("link chat thread ID is required", goerr.V("link_id", l.ID))
	}
	if l.TrackerCardID == "" {
		return goerr.New("link tracker card ID is required", goerr.V("link_id", l.ID))
	}
	return nil
}
