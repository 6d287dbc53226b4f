package platform

import (
	"runtime"

	"github.com/motiontrack/api-native/api/config"
	"github.com/motiontrack/api-native/api/tracking"
	"github.com/motiontrack/api-native/lifecycle"
)

type PromptBackend string

const (
	DBusPromptBackend PromptBackend = "Consent service (DBus)"
	AutoPromptBackend PromptBackend = "Automatic"
)

// PlatformInfo describes platform-specific information.
type PlatformInfo struct {
	OS      string         `json:"os,omitempty"`
	Prompt  PromptBackend  `json:"permission_prompt,omitempty"`
	Profile config.Profile `json:"profile,omitempty"`
}

// NewPlatformInfo returns a new PlatformInfo.
func NewPlatformInfo(backend PromptBackend, profile config.Profile) PlatformInfo {
	return PlatformInfo{
		OS:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		Prompt:  backend,
		Profile: profile,
	}
}

// String converts a PromptBackend to a string.
func (p PromptBackend) String() string {
	return string(p)
}

// Session returns a session controller using the platform's permission prompter.
// The prompter is returned as well, so that hosts can listen for its replies.
func Session(engine tracking.Engine, cfg config.Configuration, opts ...lifecycle.Option) (*lifecycle.Controller, tracking.PermissionPrompter, PlatformInfo, error) {
	prompter, backend, err := Prompter(cfg)
	if err != nil {
		return nil, nil, PlatformInfo{}, err
	}

	c, err := lifecycle.New(engine, prompter, cfg, opts...)
	if err != nil {
		return nil, nil, PlatformInfo{}, err
	}

	profile := cfg.Profile
	if profile == "" {
		profile = config.ProfileFull
	}

	return c, prompter, NewPlatformInfo(backend, profile), nil
}
