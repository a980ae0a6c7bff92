package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/model/chat"
	"github.com/secmon-lab/relayboard/pkg/utils/async"
	"github.com/secmon-lab/relayboard/pkg/utils/errutil"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
	"github.com/secmon-lab/relayboard/pkg/utils/safe"
)

// verifySlackSignature verifies the Slack request signature
// This is a pure function that can be used independently for testing
func verifySlackSignature(signingSecret, timestamp, signature string, body []byte) error {
	if timestamp == "" {
		return goerr.New("missing timestamp")
	}

	if signature == "" {
		return goerr.New("missing signature")
	}

	// Check timestamp to prevent replay attacks (within 5 minutes)
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid timestamp")
	}

	now := time.Now().Unix()
	if now-ts > 60*5 {
		return goerr.New("timestamp too old", goerr.V("timestamp", timestamp), goerr.V("now", now))
	}

	// Compute expected signature
	baseString := fmt.Sprintf("v0:%s:%s", timestamp, body)
	mac := hmac.New(sha256.New, []byte(signingSecret))
	if _, err := mac.Write([]byte(baseString)); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expectedSignature := "v0=" + hex.EncodeToString(mac.Sum(nil))

	// Compare signatures
	if !hmac.Equal([]byte(expectedSignature), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// slackSignatureMiddleware verifies Slack request signatures with the signing
// secret of the resolved account. Accounts without a secret are not verified.
func slackSignatureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tenant := tenantFromContext(ctx)

		body, err := safe.ReadAll(r.Body, maxBodySize)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), statusFor(err))
			return
		}
		safe.Close(ctx, r.Body)

		if secret := tenant.Account.Slack.SigningSecret; secret != "" {
			timestamp := r.Header.Get("X-Slack-Request-Timestamp")
			signature := r.Header.Get("X-Slack-Signature")

			if err := verifySlackSignature(secret, timestamp, signature, body); err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(fmt.Errorf("%w: %w", errSignature, err), "slack signature verification failed"), http.StatusUnauthorized)
				return
			}
		} else {
			logging.From(ctx).Debug("slack signing secret not configured, skipping verification")
		}

		// Restore the body for the handler
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// slackWebhookHandler handles Slack Events API deliveries of one account
func (s *Server) slackWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.From(ctx)
	tenant := tenantFromContext(ctx)

	// Body already verified by middleware
	body, err := safe.ReadAll(r.Body, maxBodySize)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), statusFor(err))
		return
	}

	hook, err := chat.ParseWebhook(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse slack event"), statusFor(err))
		return
	}

	switch hook.Kind {
	case chat.WebhookChallenge:
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		safe.Write(ctx, w, []byte(hook.Challenge))
		return

	case chat.WebhookCallback:
		// Slack retries deliveries it considers timed out; the first attempt already relayed it
		if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
			logger.Info("acknowledging slack retry without processing",
				"retry_num", retry,
				"retry_reason", r.Header.Get("X-Slack-Retry-Reason"),
				"event_id", hook.EventID)
			w.WriteHeader(http.StatusOK)
			return
		}

		ev := hook.Event
		if ev == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		if channelID := tenant.Account.Slack.ChannelID; ev.ChannelID() != channelID {
			logger.Debug("ignoring message from another channel",
				"channel_id", ev.ChannelID(),
				"event_id", hook.EventID)
			w.WriteHeader(http.StatusOK)
			return
		}

		if s.slackAsync {
			// Return 200 immediately to satisfy Slack's 3-second timeout requirement
			w.WriteHeader(http.StatusOK)
			async.Dispatch(ctx, func(ctx context.Context) error {
				return s.relay.HandleChatEvent(ctx, tenant, ev)
			})
			return
		}

		if err := s.relay.HandleChatEvent(ctx, tenant, ev); err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to relay slack event", goerr.V("event_id", hook.EventID)), statusFor(err))
			return
		}
		w.WriteHeader(http.StatusOK)

	default:
		logger.Warn("unknown slack event type", "type", hook.RawType)
		w.WriteHeader(http.StatusOK)
	}
}
