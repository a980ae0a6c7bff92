package types

import "fmt"

// ActionKind tells the dispatcher what to do with an Action
type ActionKind string

const (
	// ActionNewThread opens a new thread or card on the target service
	ActionNewThread ActionKind = "NEW_THREAD"
	// ActionUpdateThread replies into an existing, already correlated thread or card
	ActionUpdateThread ActionKind = "UPDATE_THREAD"
	// ActionNone suppresses every side effect
	ActionNone ActionKind = "NONE"
)

// AllActionKinds returns all valid action kinds
func AllActionKinds() []ActionKind {
	return []ActionKind{
		ActionNewThread,
		ActionUpdateThread,
		ActionNone,
	}
}

// IsValid checks if the action kind is valid
func (k ActionKind) IsValid() bool {
	switch k {
	case ActionNewThread, ActionUpdateThread, ActionNone:
		return true
	default:
		return false
	}
}

func (k ActionKind) String() string {
	return string(k)
}

// ParseActionKind parses a string into an ActionKind
func ParseActionKind(s string) (ActionKind, error) {
	kind := ActionKind(s)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid action kind: %s", s)
	}
	return kind, nil
}

// Service identifies one side of the relay
type Service string

const (
	ServiceChat    Service = "slack"
	ServiceTracker Service = "trello"
)

// IsValid checks if the service is valid
func (s Service) IsValid() bool {
	switch s {
	case ServiceChat, ServiceTracker:
		return true
	default:
		return false
	}
}

func (s Service) String() string {
	return string(s)
}

// Opposite returns the service on the other side of the relay
func (s Service) Opposite() Service {
	if s == ServiceChat {
		return ServiceTracker
	}
	return ServiceChat
}
