package async

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/utils/errutil"
	"github.com/secmon-lab/relayboard/pkg/utils/logging"
)

// Dispatch runs handler in a new goroutine detached from the request lifetime.
// The logger and Sentry hub of ctx are carried over; errors and panics are
// logged and reported, never propagated.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) <-chan struct{} {
	bgCtx := logging.With(context.Background(), logging.From(ctx))
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		bgCtx = sentry.SetHubOnContext(bgCtx, hub.Clone())
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", fmt.Sprint(r))), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()

	return done
}
