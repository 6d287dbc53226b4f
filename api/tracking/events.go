package tracking

import (
	"github.com/google/uuid"
	"github.com/motiontrack/api-native/api/errorkinds"
)

// EventID describes the identifier of a session event.
type EventID uint

const (
	EventNone EventID = iota
	StateEventID
	FailureEventID
	PromptEventID
)

// StateEvent is published on every state transition.
type StateEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	From      State     `json:"from"`
	To        State     `json:"to"`
}

// FailureEvent is published when a session enters the failed state.
type FailureEvent struct {
	SessionID uuid.UUID          `json:"session_id"`
	Failure   errorkinds.Failure `json:"failure"`
}

// PromptEvent is published when a permission prompt is started.
type PromptEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	RequestID uuid.UUID `json:"request_id"`
	Kind      string    `json:"kind"`
}

// Value returns the numeric value of the event ID.
func (e EventID) Value() uint {
	return uint(e)
}

// String converts an EventID to a string.
func (e EventID) String() string {
	switch e {
	case StateEventID:
		return "state"
	case FailureEventID:
		return "failure"
	case PromptEventID:
		return "prompt"
	}

	return "none"
}
