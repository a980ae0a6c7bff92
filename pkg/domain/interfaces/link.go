package interfaces

import (
	"context"

	"github.com/secmon-lab/relayboard/pkg/domain/model"
)

// LinkRepository persists the correlation between chat threads and tracker cards.
//
// Lookups return (nil, nil) when no link exists; an error always means the
// store could not answer. Create is create-if-absent: when a link already
// exists for either key of the account it returns an error wrapping
// ErrLinkConflict and leaves the stored link untouched.
type LinkRepository interface {
	// FindByChatThread returns the link whose chat thread ID matches
	FindByChatThread(ctx context.Context, accountID, threadID string) (*model.Link, error)

	// FindByTrackerCard returns the link whose tracker card ID matches
	FindByTrackerCard(ctx context.Context, accountID, cardID string) (*model.Link, error)

	// Create inserts a new link if neither key is taken
	Create(ctx context.Context, link *model.Link) error

	// List returns links of an account, newest first, up to limit (0 means no limit)
	List(ctx context.Context, accountID string, limit int) ([]*model.Link, error)
}
