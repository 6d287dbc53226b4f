package main

import (
	"fmt"
	"strings"

	"github.com/motiontrack/api-native/api/config"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const envPrefix = "TRACKSIM"

// settings holds the resolved command configuration.
type settings struct {
	session     config.Configuration
	scenario    string
	logLevel    string
	development bool
	metricsAddr string
}

func bindFlags(flags *pflag.FlagSet) {
	flags.StringP("config", "c", "", "config file (yaml, json or toml)")
	flags.StringP("scenario", "s", "", "scenario file describing engine answers and host events")
	flags.String("profile", string(config.ProfileFull), "session profile (full or passive)")
	flags.String("permission-kind", config.DefaultPermissionKind, "permission requested from the prompt")
	flags.Duration("prompt-timeout", config.DefaultPromptTimeout, "permission prompt timeout (0 disables it)")
	flags.String("consent-service", "", "DBus name of the consent service showing permission prompts (Linux)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Bool("development", false, "use human-readable development logging")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address until interrupted")
}

func loadSettings(flags *pflag.FlagSet) (settings, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return settings{}, err
	}

	if cfgFile := v.GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	session := config.New()
	session.Profile = config.Profile(v.GetString("profile"))
	session.PermissionKind = v.GetString("permission-kind")
	session.PromptTimeout = v.GetDuration("prompt-timeout")
	session.ConsentService = v.GetString("consent-service")

	if !session.Profile.Valid() {
		return settings{}, fmt.Errorf("unknown profile %q", session.Profile)
	}

	return settings{
		session:     session,
		scenario:    v.GetString("scenario"),
		logLevel:    v.GetString("log-level"),
		development: v.GetBool("development"),
		metricsAddr: v.GetString("metrics-addr"),
	}, nil
}

func (s settings) logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(s.logLevel)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if s.development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}
