package interfaces

import "context"

// PostedMessage identifies a message created on the chat side
type PostedMessage struct {
	ChannelID string
	// ThreadID is the timestamp of the thread root the message belongs to
	ThreadID string
	// MessageID is the timestamp of the message itself
	MessageID string
}

// ChatService is the outbound chat client of one account
type ChatService interface {
	// PostMessage posts text into threadID, or starts a new thread when threadID is empty
	PostMessage(ctx context.Context, threadID, text string) (*PostedMessage, error)

	// GetDisplayName resolves the name shown for a user
	GetDisplayName(ctx context.Context, userID string) (string, error)

	// ThreadURL returns a deep link to the thread, or "" when it cannot be derived
	ThreadURL(threadID string) string
}

// TrackerService is the outbound tracker client of one account
type TrackerService interface {
	// PostComment adds a comment to the card
	PostComment(ctx context.Context, cardID, text string) error
}
