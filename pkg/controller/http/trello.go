package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	trellosvc "github.com/secmon-lab/relayboard/pkg/service/trello"
	"github.com/secmon-lab/relayboard/pkg/utils/errutil"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
	"github.com/secmon-lab/relayboard/pkg/utils/safe"
)

// trelloProbeHandler answers the HEAD request Trello sends when a webhook is registered.
// Reaching it means the account exists.
func trelloProbeHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// callbackURL returns the URL Trello signed the delivery for
func callbackURL(r *http.Request, configured string) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// trelloSignatureMiddleware verifies X-Trello-Webhook with the app secret of the
// resolved account. Accounts without a secret are not verified.
func trelloSignatureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		account := tenantFromContext(ctx).Account

		body, err := safe.ReadAll(r.Body, maxBodySize)
		if err != nil {
			errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), statusFor(err))
			return
		}
		safe.Close(ctx, r.Body)

		if secret := account.Trello.APISecret; secret != "" {
			cb := callbackURL(r, account.Trello.CallbackURL)
			if !trellosvc.VerifySignature(secret, cb, body, r.Header.Get(trellosvc.SignatureHeader)) {
				err := goerr.Wrap(fmt.Errorf("%w: trello webhook signature mismatch", errSignature),
					"trello signature verification failed", goerr.V("callback_url", cb))
				errutil.HandleHTTP(ctx, w, err, http.StatusUnauthorized)
				return
			}
		} else {
			logging.From(ctx).Debug("trello app secret not configured, skipping verification")
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// trelloWebhookHandler handles Trello card activity of one account
func (s *Server) trelloWebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenant := tenantFromContext(ctx)

	body, err := safe.ReadAll(r.Body, maxBodySize)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), statusFor(err))
		return
	}

	ev, err := tracker.ParseWebhook(body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse trello webhook"), statusFor(err))
		return
	}

	if err := s.relay.HandleTrackerEvent(ctx, tenant, ev); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to relay trello webhook",
			goerr.V("action_id", ev.ActionID)), statusFor(err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
