package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables read by loadFromEnv.
const (
	EnvDataDir     = "TODO_DATA_DIR"
	EnvSessionTTL  = "TODO_SESSION_TTL"
	EnvMinPassword = "TODO_MIN_PASSWORD"
	EnvDueSoonDays = "TODO_DUE_SOON_DAYS"
	EnvStaleDays   = "TODO_STALE_DAYS"
	EnvLogLevel    = "TODO_LOG_LEVEL"
	EnvLogFormat   = "TODO_LOG_FORMAT"
	EnvLogFile     = "TODO_LOG_FILE"
	EnvNoColor     = "NO_COLOR"
)

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) error {
	set := func(field string) { cfg.Sources[field] = SourceEnv }

	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
		set("data_dir")
	}
	if v := os.Getenv(EnvSessionTTL); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSessionTTL, err)
		}
		cfg.SessionTTL = Duration{d}
		set("session_ttl")
	}
	for _, iv := range []struct {
		env   string
		field string
		dst   *int
	}{
		{EnvMinPassword, "min_password_length", &cfg.MinPasswordLength},
		{EnvDueSoonDays, "due_soon_days", &cfg.DueSoonDays},
		{EnvStaleDays, "stale_days", &cfg.StaleDays},
	} {
		v := os.Getenv(iv.env)
		if v == "" {
			continue
		}
		i, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: not a number: %q", iv.env, v)
		}
		*iv.dst = i
		set(iv.field)
	}

	// Logging configuration
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		set("log_level")
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		set("log_format")
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		cfg.LogFile = boolFromString(v)
		set("log_file")
	}

	// https://no-color.org: any non-empty value disables color.
	if v := os.Getenv(EnvNoColor); v != "" {
		cfg.NoColor = true
		set("no_color")
	}
	return nil
}

func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
