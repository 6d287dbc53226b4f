//go:build linux

package platform

import (
	"context"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fctx"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/godbus/dbus/v5"
	"github.com/motiontrack/api-native/api/config"
	"github.com/motiontrack/api-native/api/tracking"
)

// Prompter returns the platform permission prompter. If a consent service
// is configured, prompts are shown through it over the DBus session bus.
func Prompter(cfg config.Configuration) (tracking.PermissionPrompter, PromptBackend, error) {
	if cfg.ConsentService == "" {
		return tracking.DefaultPrompter(), AutoPromptBackend, nil
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, "",
			fault.Wrap(err,
				fctx.With(context.Background(), "error_at", "dbus-session-bus"),
				ftag.With(ftag.Internal),
				fmsg.With("Cannot connect to the DBus session bus"),
			)
	}

	prompter, err := NewDBusPrompter(conn, cfg.ConsentService)
	if err != nil {
		conn.Close()

		return nil, "",
			fault.Wrap(err,
				fctx.With(context.Background(), "error_at", "dbus-consent-service", "service", cfg.ConsentService),
				ftag.With(ftag.InvalidArgument),
				fmsg.With("Invalid consent service name"),
			)
	}

	return prompter, DBusPromptBackend, nil
}
