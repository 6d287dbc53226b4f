package tracking

import (
	"github.com/google/uuid"
	"github.com/motiontrack/api-native/api/errorkinds"
)

// Session describes a motion tracking session driven by host lifecycle events.
type Session interface {
	// Start initializes the tracking engine.
	Start() error

	// OnForeground connects the engine, or starts a permission prompt
	// if the user has not granted access yet.
	OnForeground() error

	// OnPermissionResult applies the answer of the pending permission prompt.
	OnPermissionResult(granted bool) error

	// OnBackground disconnects the engine if it is connected.
	OnBackground() error

	// Stop tears the session down from any state.
	Stop() error

	// State returns the current session state.
	State() State
}

// State describes the state of a tracking session.
type State string

const (
	StateUninitialized      State = "uninitialized"
	StateInitialized        State = "initialized"
	StateAwaitingPermission State = "awaiting-permission"
	StateConnected          State = "connected"
	StateSuspended          State = "suspended"
	StateFailed             State = "failed"
)

// String converts a State to a string.
func (s State) String() string {
	return string(s)
}

// Snapshot describes the observable state of a session at a point in time.
type Snapshot struct {
	SessionID uuid.UUID           `json:"session_id"`
	State     State               `json:"state"`
	Granted   bool                `json:"permission_granted"`
	Failure   *errorkinds.Failure `json:"failure,omitempty"`
}
