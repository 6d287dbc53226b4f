package config

import "time"

const (
	// The default timeout duration for permission prompts.
	DefaultPromptTimeout = 60 * time.Second

	// The permission kind requested from the permission prompt.
	DefaultPermissionKind = "MOTION_TRACKING_PERMISSION"
)

// Profile describes how a session interacts with the tracking engine.
type Profile string

const (
	// ProfileFull forwards every lifecycle event to the tracking engine.
	ProfileFull Profile = "full"

	// ProfilePassive runs the session state machine without ever
	// calling into the tracking engine.
	ProfilePassive Profile = "passive"
)

// Configuration describes a general configuration.
type Configuration struct {
	// Profile selects whether the tracking engine is driven at all.
	Profile Profile

	// PermissionKind holds the permission requested from the prompt.
	PermissionKind string

	// PromptTimeout holds the timeout for permission prompts.
	// A zero value disables the timeout.
	PromptTimeout time.Duration

	// HostContext is passed as-is to the engine on initialization.
	HostContext any

	// ConsentService holds the DBus name of the service that shows
	// permission prompts. Specific to Linux. If empty, every
	// permission request is granted.
	ConsentService string
}

// New returns a new configuration with the default profile and prompt settings.
func New() Configuration {
	return Configuration{
		Profile:        ProfileFull,
		PermissionKind: DefaultPermissionKind,
		PromptTimeout:  DefaultPromptTimeout,
	}
}

// Valid reports whether the profile is a known value.
func (p Profile) Valid() bool {
	return p == ProfileFull || p == ProfilePassive
}
