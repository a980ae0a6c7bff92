package firestore

import (
	"context"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// LinksCollection holds one document per link, keyed by link ID
	LinksCollection = "links"
	// linkThreadsCollection and linkCardsCollection hold one index document per
	// correlation key. Creating both inside a transaction makes Create atomic.
	linkThreadsCollection = "link_threads"
	linkCardsCollection   = "link_cards"
)

type linkRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.LinkRepository = &linkRepository{}

func newLinkRepository(client *firestore.Client) *linkRepository {
	return &linkRepository{
		client: client,
	}
}

// linkDoc is the Firestore persistence model
type linkDoc struct {
	ID            string    `firestore:"id"`
	AccountID     string    `firestore:"account_id"`
	ChatThreadID  string    `firestore:"chat_thread_id"`
	TrackerCardID string    `firestore:"tracker_card_id"`
	CreatedAt     time.Time `firestore:"created_at"`
}

func toLinkDoc(l *model.Link) *linkDoc {
	return &linkDoc{
		ID:            l.ID.String(),
		AccountID:     l.AccountID,
		ChatThreadID:  l.ChatThreadID,
		TrackerCardID: l.TrackerCardID,
		CreatedAt:     l.CreatedAt,
	}
}

func fromLinkDoc(doc *linkDoc) *model.Link {
	return &model.Link{
		ID:            model.LinkID(doc.ID),
		AccountID:     doc.AccountID,
		ChatThreadID:  doc.ChatThreadID,
		TrackerCardID: doc.TrackerCardID,
		CreatedAt:     doc.CreatedAt,
	}
}

func (r *linkRepository) collection(name string) *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, name))
}

// indexDocID builds a document ID from an account and a platform ID.
// Path escaping keeps "/" out of the ID.
func indexDocID(accountID, id string) string {
	return url.PathEscape(accountID) + ":" + url.PathEscape(id)
}

func (r *linkRepository) find(ctx context.Context, collection, accountID, id string) (*model.Link, error) {
	snap, err := r.collection(collection).Doc(indexDocID(accountID, id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get link",
			goerr.V("collection", collection),
			goerr.V("account_id", accountID),
			goerr.V("id", id))
	}

	var doc linkDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode link", goerr.V("account_id", accountID), goerr.V("id", id))
	}
	return fromLinkDoc(&doc), nil
}

func (r *linkRepository) FindByChatThread(ctx context.Context, accountID, threadID string) (*model.Link, error) {
	return r.find(ctx, linkThreadsCollection, accountID, threadID)
}

func (r *linkRepository) FindByTrackerCard(ctx context.Context, accountID, cardID string) (*model.Link, error) {
	return r.find(ctx, linkCardsCollection, accountID, cardID)
}

func (r *linkRepository) Create(ctx context.Context, link *model.Link) error {
	if err := link.Validate(); err != nil {
		return goerr.Wrap(err, "invalid link")
	}

	doc := toLinkDoc(link)
	threadRef := r.collection(linkThreadsCollection).Doc(indexDocID(link.AccountID, link.ChatThreadID))
	cardRef := r.collection(linkCardsCollection).Doc(indexDocID(link.AccountID, link.TrackerCardID))
	linkRef := r.collection(LinksCollection).Doc(doc.ID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		for _, ref := range []*firestore.DocumentRef{threadRef, cardRef} {
			_, err := tx.Get(ref)
			if err == nil {
				return goerr.Wrap(interfaces.ErrLinkConflict, "link key already taken",
					goerr.V("account_id", link.AccountID),
					goerr.V("doc", ref.Path))
			}
			if status.Code(err) != codes.NotFound {
				return goerr.Wrap(err, "failed to check link key", goerr.V("doc", ref.Path))
			}
		}

		if err := tx.Create(threadRef, doc); err != nil {
			return goerr.Wrap(err, "failed to create thread index")
		}
		if err := tx.Create(cardRef, doc); err != nil {
			return goerr.Wrap(err, "failed to create card index")
		}
		return tx.Create(linkRef, doc)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(interfaces.ErrLinkConflict, "link created concurrently",
				goerr.V("account_id", link.AccountID),
				goerr.V("thread_id", link.ChatThreadID),
				goerr.V("card_id", link.TrackerCardID))
		}
		return goerr.Wrap(err, "failed to create link",
			goerr.V("account_id", link.AccountID),
			goerr.V("thread_id", link.ChatThreadID),
			goerr.V("card_id", link.TrackerCardID))
	}

	return nil
}

func (r *linkRepository) List(ctx context.Context, accountID string, limit int) ([]*model.Link, error) {
	q := r.collection(LinksCollection).
		Where("account_id", "==", accountID).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var links []*model.Link
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate links", goerr.V("account_id", accountID))
		}

		var doc linkDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to decode link", goerr.V("doc", snap.Ref.Path))
		}
		links = append(links, fromLinkDoc(&doc))
	}

	return links, nil
}

func prefixed(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}

// LinkCollectionName returns the name of the links collection under prefix
func LinkCollectionName(prefix string) string {
	return prefixed(prefix, LinksCollection)
}
