//go:build !linux

package platform

import (
	"github.com/motiontrack/api-native/api/config"
	"github.com/motiontrack/api-native/api/tracking"
)

// Prompter returns the platform permission prompter, which grants
// every request on this platform.
func Prompter(config.Configuration) (tracking.PermissionPrompter, PromptBackend, error) {
	return tracking.DefaultPrompter(), AutoPromptBackend, nil
}
