package config

import (
	"github.com/spf13/pflag"
)

// Flag names registered by BindFlags.
const (
	FlagConfig    = "config"
	FlagDataDir   = "data-dir"
	FlagLogLevel  = "log-level"
	FlagLogFormat = "log-format"
	FlagNoColor   = "no-color"
)

// BindFlags registers the global configuration flags on fs. Defaults shown in
// help are the built-in defaults; only flags the user sets override the other
// layers.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "Path to config file")
	fs.String(FlagDataDir, DefaultDataDir, "Data directory")
	fs.String(FlagLogLevel, DefaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String(FlagLogFormat, DefaultLogFormat, "Log format (text, json, logfmt)")
	fs.Bool(FlagNoColor, false, "Disable colored output")
}

// configFileFlag returns the --config value and whether it was set.
func configFileFlag(fs *pflag.FlagSet) (string, bool) {
	if fs == nil || fs.Lookup(FlagConfig) == nil || !fs.Changed(FlagConfig) {
		return "", false
	}
	v, err := fs.GetString(FlagConfig)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// applyFlags copies explicitly set flags into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	changed := func(name string) bool {
		return fs.Lookup(name) != nil && fs.Changed(name)
	}

	for _, sf := range []struct {
		flag  string
		field string
		dst   *string
	}{
		{FlagDataDir, "data_dir", &cfg.DataDir},
		{FlagLogLevel, "log_level", &cfg.LogLevel},
		{FlagLogFormat, "log_format", &cfg.LogFormat},
	} {
		if !changed(sf.flag) {
			continue
		}
		v, err := fs.GetString(sf.flag)
		if err != nil {
			return err
		}
		*sf.dst = v
		cfg.Sources[sf.field] = SourceFlag
	}

	if changed(FlagNoColor) {
		v, err := fs.GetBool(FlagNoColor)
		if err != nil {
			return err
		}
		cfg.NoColor = v
		cfg.Sources["no_color"] = SourceFlag
	}
	return nil
}
