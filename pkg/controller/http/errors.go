package http

import (
	"errors"
	"net/http"

	"github.com/secmon-lab/relayboard/pkg/domain/model/chat"
	"github.com/secmon-lab/relayboard/pkg/domain/model/tracker"
	"github.com/secmon-lab/relayboard/pkg/usecase"
	"github.com/secmon-lab/relayboard/pkg/utils/safe"
)

// errSignature marks a delivery whose signature could not be verified
var errSignature = errors.New("signature verification failed")

// statusFor maps use case errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrTenantNotFound):
		return http.StatusNotFound
	case errors.Is(err, errSignature):
		return http.StatusUnauthorized
	case errors.Is(err, safe.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, usecase.ErrValidation),
		errors.Is(err, chat.ErrInvalidPayload),
		errors.Is(err, tracker.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrLookup):
		return http.StatusServiceUnavailable
	case errors.Is(err, usecase.ErrSend):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
