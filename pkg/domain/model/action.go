package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/relayboard/pkg/domain/types"
)

// ActionEndpoint is one end of an Action: where the event came from or where the post goes.
// ID is the platform-native identifier (thread timestamp or card ID); empty means the
// thread or card does not exist yet.
type ActionEndpoint struct {
	ID      string
	URL     string
	Service types.Service
}

// HasID reports whether the endpoint refers to an existing thread or card
func (e ActionEndpoint) HasID() bool {
	return e.ID != ""
}

// ActionUpdate is the message body to deliver
type ActionUpdate struct {
	Text string
}

// Action is the platform-agnostic description of a cross-platform post
type Action struct {
	Kind   types.ActionKind
	Source ActionEndpoint
	Target ActionEndpoint
	Update ActionUpdate
}

// Validate checks the invariants between Kind and Target.ID
func (a *Action) Validate() error {
	if !a.Kind.IsValid() {
		return goerr.New("invalid action kind", goerr.V("kind", a.Kind))
	}
	if !a.Source.Service.IsValid() || !a.Target.Service.IsValid() {
		return goerr.New("invalid action service",
			goerr.V("source", a.Source.Service),
			goerr.V("target", a.Target.Service))
	}

	switch a.Kind {
	case types.ActionNewThread:
		if a.Target.HasID() {
			return goerr.New("new thread action must not have a target ID", goerr.V("target_id", a.Target.ID))
		}
		if !a.Source.HasID() {
			return goerr.New("new thread action requires a source ID")
		}
	case types.ActionUpdateThread:
		if !a.Target.HasID() {
			return goerr.New("update thread action requires a target ID")
		}
	}

	return nil
}

// IsNone reports whether the action suppresses all side effects
func (a *Action) IsNone() bool {
	return a.Kind == types.ActionNone
}
