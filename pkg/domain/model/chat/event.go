package chat

import (
	"github.com/slack-go/slack/slackevents"
)

// Event is a normalized chat message relevant to the relay
type Event struct {
	teamID    string
	channelID string
	userID    string
	text      string
	ts        string
	threadID  string
	isBot     bool
}

// NewEvent converts a Slack Events API callback into an Event.
// It returns nil for anything that is not a plain or bot message, including
// edits and deletions which the relay does not reconcile.
func NewEvent(ev *slackevents.EventsAPIEvent) *Event {
	if ev == nil || ev.Type != slackevents.CallbackEvent {
		return nil
	}

	msg, ok := ev.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || msg == nil {
		return nil
	}

	switch msg.SubType {
	case "", "bot_message", "thread_broadcast", "file_share":
	default:
		return nil
	}

	threadID := ""
	if msg.ThreadTimeStamp != "" && msg.ThreadTimeStamp != msg.TimeStamp {
		threadID = msg.ThreadTimeStamp
	}

	return &Event{
		teamID:    ev.TeamID,
		channelID: msg.Channel,
		userID:    msg.User,
		text:      msg.Text,
		ts:        msg.TimeStamp,
		threadID:  threadID,
		isBot:     msg.BotID != "" || msg.SubType == "bot_message",
	}
}

// NewEventFromData creates an Event from raw values
func NewEventFromData(teamID, channelID, userID, text, ts, threadID string, isBot bool) *Event {
	return &Event{
		teamID:    teamID,
		channelID: channelID,
		userID:    userID,
		text:      text,
		ts:        ts,
		threadID:  threadID,
		isBot:     isBot,
	}
}

func (e *Event) TeamID() string {
	return e.teamID
}

func (e *Event) ChannelID() string {
	return e.channelID
}

func (e *Event) UserID() string {
	return e.userID
}

func (e *Event) Text() string {
	return e.text
}

// TS is the timestamp of the message itself
func (e *Event) TS() string {
	return e.ts
}

// ThreadID is the timestamp of the thread root, empty for top-level messages
func (e *Event) ThreadID() string {
	return e.threadID
}

// HasThread reports whether the message is a reply inside a thread
func (e *Event) HasThread() bool {
	return e.threadID != ""
}

// IsBot reports whether the message was posted by a bot or app, including this relay
func (e *Event) IsBot() bool {
	return e.isBot
}
