package slack

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
	"github.com/slack-go/slack"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultCacheTTL is the default TTL for the display name cache
	DefaultCacheTTL = 10 * time.Minute
)

// cacheEntry holds a cached display name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// Client posts into the relay channel of one account and resolves user names
type Client struct {
	api       *slack.Client
	channelID string
	teamURL   string
	cacheTTL  time.Duration
	apiURL    string

	mu    sync.RWMutex
	cache map[string]cacheEntry
	group singleflight.Group
}

var _ interfaces.ChatService = &Client{}

// Option is a functional option for client configuration
type Option func(*Client)

// WithCacheTTL sets the TTL for the display name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.cacheTTL = ttl
	}
}

// WithTeamURL sets the workspace URL used to build thread permalinks, e.g. "https://example.slack.com/"
func WithTeamURL(teamURL string) Option {
	return func(c *Client) {
		c.teamURL = strings.TrimRight(teamURL, "/")
	}
}

// WithAPIURL overrides the Slack Web API endpoint
func WithAPIURL(apiURL string) Option {
	return func(c *Client) {
		c.apiURL = apiURL
	}
}

// New creates a Slack client bound to channelID
func New(token, channelID string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack channel ID is required")
	}

	c := &Client{
		channelID: channelID,
		cacheTTL:  DefaultCacheTTL,
		cache:     make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	var apiOpts []slack.Option
	if c.apiURL != "" {
		apiURL := c.apiURL
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		apiOpts = append(apiOpts, slack.OptionAPIURL(apiURL))
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// ChannelID returns the channel the client posts into
func (c *Client) ChannelID() string {
	return c.channelID
}

// PostMessage posts text as a reply in threadID, or as a new top level message when threadID is empty.
// The returned ThreadID is the thread root, which for a new message is the message itself.
func (c *Client) PostMessage(ctx context.Context, threadID, text string) (*interfaces.PostedMessage, error) {
	msgOpts := []slack.MsgOption{
		slack.MsgOptionText(EscapeText(TruncateText(text, MaxMessageLength)), false),
	}
	if threadID != "" {
		msgOpts = append(msgOpts, slack.MsgOptionTS(threadID))
	}

	channelID, ts, err := c.api.PostMessageContext(ctx, c.channelID, msgOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to post Slack message",
			goerr.V("channel_id", c.channelID),
			goerr.V("thread_id", threadID))
	}

	posted := &interfaces.PostedMessage{
		ChannelID: channelID,
		ThreadID:  threadID,
		MessageID: ts,
	}
	if posted.ThreadID == "" {
		posted.ThreadID = ts
	}
	return posted, nil
}

// GetDisplayName resolves the display name of userID, falling back to the real name.
// Results are cached and concurrent lookups of one user share a single API call.
func (c *Client) GetDisplayName(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", goerr.New("user ID is required")
	}

	now := time.Now()
	c.mu.RLock()
	entry, ok := c.cache[userID]
	c.mu.RUnlock()
	if ok && entry.expiresAt.After(now) {
		return entry.name, nil
	}

	v, err, _ := c.group.Do(userID, func() (any, error) {
		profile, err := c.api.GetUserProfileContext(ctx, &slack.GetUserProfileParameters{
			UserID: userID,
		})
		if err != nil {
			return "", goerr.Wrap(err, "failed to get user profile", goerr.V("user_id", userID))
		}

		name := profile.DisplayName
		if name == "" {
			name = profile.RealName
		}

		c.mu.Lock()
		c.cache[userID] = cacheEntry{
			name:      name,
			expiresAt: time.Now().Add(c.cacheTTL),
		}
		c.mu.Unlock()

		return name, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// ThreadURL returns the permalink of a thread in the bound channel, or "" without a team URL
func (c *Client) ThreadURL(threadID string) string {
	return Permalink(c.teamURL, c.channelID, threadID)
}

// Permalink builds a message link such as https://example.slack.com/archives/C0123/p1715287188123456
func Permalink(teamURL, channelID, ts string) string {
	if teamURL == "" || channelID == "" || ts == "" {
		return ""
	}
	return strings.TrimRight(teamURL, "/") + "/archives/" + channelID + "/p" + strings.ReplaceAll(ts, ".", "")
}
