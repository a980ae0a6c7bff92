package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/secmon-lab/relayboard/pkg/domain/model"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/secmon-lab/relayboard/pkg/repository/memory"
	"github.com/secmon-lab/relayboard/pkg/usecase"
)

type chatPost struct {
	threadID string
	text     string
}

type fakeChat struct {
	mu       sync.Mutex
	posts    []chatPost
	names    map[string]string
	postErr  error
	nameErr  error
	nextTS   int
	teamURL  string
	nameHits int
}

func newFakeChat() *fakeChat {
	return &fakeChat{
		names:   map[string]string{"U0002": "Bob"},
		teamURL: "https://example.slack.com",
	}
}

func (f *fakeChat) PostMessage(ctx context.Context, threadID, text string) (*interfaces.PostedMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.posts = append(f.posts, chatPost{threadID: threadID, text: text})
	f.nextTS++
	ts := fmt.Sprintf("1715290000.%06d", f.nextTS)
	posted := &interfaces.PostedMessage{ChannelID: "C0123", ThreadID: threadID, MessageID: ts}
	if threadID == "" {
		posted.ThreadID = ts
	}
	return posted, nil
}

func (f *fakeChat) GetDisplayName(ctx context.Context, userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nameHits++
	if f.nameErr != nil {
		return "", f.nameErr
	}
	return f.names[userID], nil
}

func (f *fakeChat) ThreadURL(threadID string) string {
	if threadID == "" {
		return ""
	}
	return f.teamURL + "/archives/C0123/p" + threadID
}

func (f *fakeChat) Posts() []chatPost {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]chatPost(nil), f.posts...)
}

type trackerComment struct {
	cardID string
	text   string
}

type fakeTracker struct {
	mu       sync.Mutex
	comments []trackerComment
	err      error
}

func (f *fakeTracker) PostComment(ctx context.Context, cardID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.comments = append(f.comments, trackerComment{cardID: cardID, text: text})
	return nil
}

func (f *fakeTracker) Comments() []trackerComment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]trackerComment(nil), f.comments...)
}

// faultyLinks wraps a LinkRepository and injects failures
type faultyLinks struct {
	interfaces.LinkRepository
	findErr   error
	createErr error
}

func (f *faultyLinks) FindByChatThread(ctx context.Context, accountID, threadID string) (*model.Link, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.LinkRepository.FindByChatThread(ctx, accountID, threadID)
}

func (f *faultyLinks) FindByTrackerCard(ctx context.Context, accountID, cardID string) (*model.Link, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.LinkRepository.FindByTrackerCard(ctx, accountID, cardID)
}

func (f *faultyLinks) Create(ctx context.Context, link *model.Link) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.LinkRepository.Create(ctx, link)
}

type faultyRepo struct {
	links *faultyLinks
}

func (r *faultyRepo) Link() interfaces.LinkRepository { return r.links }
func (r *faultyRepo) Close() error                    { return nil }

func newFaultyRepo() *faultyRepo {
	return &faultyRepo{links: &faultyLinks{LinkRepository: memory.New().Link()}}
}

var errBoom = errors.New("boom")

func newTenant(chat *fakeChat, tr *fakeTracker) *usecase.Tenant {
	return &usecase.Tenant{
		Account: &model.Account{ID: "team-a", Name: "Team A"},
		Chat:    chat,
		Tracker: tr,
	}
}

func loadTrackerEvent(t *testing.T, name string) *tracker.Event {
	t.Helper()
	body, err := os.ReadFile(filepath.Join("testdata", "trello", name+".json"))
	gt.NoError(t, err).Required()
	ev, err := tracker.ParseWebhook(body)
	gt.NoError(t, err).Required()
	return ev
}

func strPtr(s string) *string {
	return &s
}
