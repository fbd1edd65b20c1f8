package config

import (
	"fmt"
	"time"

	"github.com/nibzard/todo-cli/internal/auth"
	"github.com/nibzard/todo-cli/internal/datadir"
	"github.com/nibzard/todo-cli/internal/reminder"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceFile    ConfigSource = "config file"
	SourceEnv     ConfigSource = "environment"
	SourceFlag    ConfigSource = "flag"
)

// Default values.
const (
	DefaultDataDir     = datadir.DefaultDir
	DefaultSessionTTL  = auth.DefaultSessionTTL
	DefaultDueSoonDays = 7
	DefaultStaleDays   = 7
	DefaultLogLevel    = "warn"
	DefaultLogFormat   = "text"
)

// MaxDays bounds due_soon_days and stale_days.
const MaxDays = 36500

// Config holds the full configuration for todo.
type Config struct {
	// Storage
	DataDir string `toml:"data_dir"`

	// Auth
	SessionTTL        Duration `toml:"session_ttl"`
	MinPasswordLength int      `toml:"min_password_length"`

	// Reminders
	DueSoonDays int `toml:"due_soon_days"`
	StaleDays   int `toml:"stale_days"`

	// Logging configuration
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
	LogFile   bool   `toml:"log_file"`

	// Output
	NoColor bool `toml:"no_color"`

	// ConfigFile is the file the config was read from, if any.
	ConfigFile string `toml:"-"`

	// Sources maps each setting's TOML key to where its value came from.
	Sources map[string]ConfigSource `toml:"-"`
}

// Duration is a time.Duration written as a Go duration string ("24h", "90m").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Keys returns the TOML keys of every setting, in file order.
func Keys() []string {
	return []string{
		"data_dir",
		"session_ttl",
		"min_password_length",
		"due_soon_days",
		"stale_days",
		"log_level",
		"log_format",
		"log_file",
		"no_color",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataDir = DefaultDataDir
	cfg.SessionTTL = Duration{DefaultSessionTTL}
	cfg.MinPasswordLength = auth.MinPasswordLength
	cfg.DueSoonDays = DefaultDueSoonDays
	cfg.StaleDays = DefaultStaleDays
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogFile = false
	cfg.NoColor = false

	cfg.Sources = make(map[string]ConfigSource)
	for _, field := range Keys() {
		cfg.Sources[field] = SourceDefault
	}
}

// validate rejects values no component can work with.
func validate(cfg *Config) error {
	if cfg.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	if cfg.SessionTTL.Duration <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", cfg.SessionTTL.Duration)
	}
	if cfg.MinPasswordLength < 1 || cfg.MinPasswordLength > auth.MaxPasswordLength {
		return fmt.Errorf("min_password_length must be between 1 and %d, got %d", auth.MaxPasswordLength, cfg.MinPasswordLength)
	}
	if cfg.DueSoonDays < 0 || cfg.DueSoonDays > MaxDays {
		return fmt.Errorf("due_soon_days must be between 0 and %d, got %d", MaxDays, cfg.DueSoonDays)
	}
	if cfg.StaleDays < 1 || cfg.StaleDays > MaxDays {
		return fmt.Errorf("stale_days must be between 1 and %d, got %d", MaxDays, cfg.StaleDays)
	}
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format must be text, json, or logfmt, got %q", cfg.LogFormat)
	}
	return nil
}

// Dir returns the resolved data directory.
func (c *Config) Dir() datadir.Dir {
	return datadir.Dir(c.DataDir)
}

// PasswordPolicy returns the password policy for the credential store.
func (c *Config) PasswordPolicy() auth.PasswordPolicy {
	return auth.PasswordPolicy{MinLength: c.MinPasswordLength, MaxLength: auth.MaxPasswordLength}
}

// ReminderPolicy returns the reminder classification thresholds.
func (c *Config) ReminderPolicy() reminder.Policy {
	return reminder.Policy{
		DueSoonDays: c.DueSoonDays,
		StaleAfter:  time.Duration(c.StaleDays) * 24 * time.Hour,
	}
}
