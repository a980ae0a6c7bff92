package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
)

// linkKey is a composite key for link lookups (accountID + platform ID)
type linkKey struct {
	accountID string
	id        string
}

type linkRepository struct {
	mu       sync.RWMutex
	links    map[model.LinkID]*model.Link
	byThread map[linkKey]model.LinkID
	byCard   map[linkKey]model.LinkID
}

var _ interfaces.LinkRepository = &linkRepository{}

func newLinkRepository() *linkRepository {
	return &linkRepository{
		links:    make(map[model.LinkID]*model.Link),
		byThread: make(map[linkKey]model.LinkID),
		byCard:   make(map[linkKey]model.LinkID),
	}
}

func copyLink(l *model.Link) *model.Link {
	copied := *l
	return &copied
}

func (r *linkRepository) FindByChatThread(ctx context.Context, accountID, threadID string) (*model.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byThread[linkKey{accountID: accountID, id: threadID}]
	if !ok {
		return nil, nil
	}
	return copyLink(r.links[id]), nil
}

func (r *linkRepository) FindByTrackerCard(ctx context.Context, accountID, cardID string) (*model.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byCard[linkKey{accountID: accountID, id: cardID}]
	if !ok {
		return nil, nil
	}
	return copyLink(r.links[id]), nil
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := link.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	threadKey := linkKey{accountID: link.AccountID, id: link.ChatThreadID}
	cardKey := linkKey{accountID: link.AccountID, id: link.TrackerCardID}

	if _, exists := r.byThread[threadKey]; exists {
		return goerr.Wrap(interfaces.ErrLinkConflict, "chat thread is already linked",
			goerr.V("account_id", link.AccountID),
			goerr.V("thread_id", link.ChatThreadID))
	}
	if _, exists := r.byCard[cardKey]; exists {
		return goerr.Wrap(interfaces.ErrLinkConflict, "tracker card is already linked",
			goerr.V("account_id", link.AccountID),
			goerr.V("card_id", link.TrackerCardID))
	}

	r.links[link.ID] = copyLink(link)
	r.byThread[threadKey] = link.ID
	r.byCard[cardKey] = link.ID

	return nil
}

func (r *linkRepository) List(ctx context.Context, accountID string, limit int) ([]*model.Link, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Link
	for _, l := range r.links {
		if l.AccountID == accountID {
			result = append(result, copyLink(l))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
