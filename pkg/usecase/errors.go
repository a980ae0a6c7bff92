package usecase

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/interfaces"
)

// Sentinel errors for use case layer
var (
	// ErrValidation means the event or the derived action is missing a required field
	ErrValidation = errors.New("validation failed")

	// ErrLookup means the correlation store could not answer
	ErrLookup = errors.New("correlation lookup failed")

	// ErrSend means the outbound post to the target service failed
	ErrSend = errors.New("outbound send failed")

	// ErrLinkConflict means a link already exists for the thread or the card
	ErrLinkConflict = interfaces.ErrLinkConflict

	// ErrLinkWrite means the post was delivered but the new link could not be stored
	ErrLinkWrite = errors.New("link write failed")

	// ErrTenantNotFound means no account is configured for the requested ID
	ErrTenantNotFound = errors.New("tenant not found")
)

// Context keys for error values
const (
	AccountIDKey     = "account_id"
	ThreadIDKey      = "thread_id"
	CardIDKey        = "card_id"
	DiscriminatorKey = "discriminator"
	ActionKindKey    = "action_kind"
)

// wrapAs wraps err so that errors.Is matches both kind and the original cause
func wrapAs(kind, err error, msg string, opts ...goerr.Option) error {
	if err == nil {
		return goerr.Wrap(kind, msg, opts...)
	}
	return goerr.Wrap(fmt.Errorf("%w: %w", kind, err), msg, opts...)
}
