package tracking

import (
	"strconv"

	"github.com/motiontrack/api-native/api/errorkinds"
)

// HostContext is the opaque host handle handed to the engine on initialization,
// for example an activity reference in a native bridge.
type HostContext any

// Engine describes the motion tracking engine a session drives.
// All calls are synchronous and bounded.
type Engine interface {
	// Initialize binds the engine to the host.
	Initialize(host HostContext) error

	// ConnectCallbacks registers the pose callbacks. It returns
	// errorkinds.ErrPermissionMissing if the user has not granted
	// motion tracking access yet, and errorkinds.ErrInvalidArgument
	// if the engine rejected the registration.
	ConnectCallbacks() error

	// SetupConfig prepares the engine configuration used by Connect.
	SetupConfig() error

	// Connect starts the tracking service. On failure the engine
	// must release anything SetupConfig acquired.
	Connect() error

	// Disconnect stops the tracking service and releases the configuration.
	// It must tolerate being called on a disconnected engine.
	Disconnect()
}

// StatusCode describes a status code returned by a native tracking service.
type StatusCode int

const (
	StatusNoMotionTrackingPermission StatusCode = -3
	StatusInvalid                    StatusCode = -2
	StatusError                      StatusCode = -1
	StatusSuccess                    StatusCode = 0
)

// Err converts the status code to an error.
func (s StatusCode) Err() error {
	switch s {
	case StatusSuccess:
		return nil
	case StatusNoMotionTrackingPermission:
		return errorkinds.ErrPermissionMissing
	case StatusInvalid:
		return errorkinds.ErrInvalidArgument
	}

	return errorkinds.ErrEngine
}

// String converts a StatusCode to a string.
func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusInvalid:
		return "invalid"
	case StatusNoMotionTrackingPermission:
		return "no-motion-tracking-permission"
	}

	return "status(" + strconv.Itoa(int(s)) + ")"
}

// NopEngine describes an engine whose calls always succeed and do nothing.
// It backs sessions running with the passive profile.
type NopEngine struct{}

// Initialize does not do anything.
func (NopEngine) Initialize(HostContext) error { return nil }

// ConnectCallbacks does not do anything.
func (NopEngine) ConnectCallbacks() error { return nil }

// SetupConfig does not do anything.
func (NopEngine) SetupConfig() error { return nil }

// Connect does not do anything.
func (NopEngine) Connect() error { return nil }

// Disconnect does not do anything.
func (NopEngine) Disconnect() {}
