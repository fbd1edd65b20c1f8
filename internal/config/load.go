package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// DotEnvFile is the optional env file read from the working directory.
const DotEnvFile = ".env"

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (--config if set, otherwise the user config file)
// 3. Environment variables, after merging .env from the working directory
// 4. CLI flags that were explicitly set on flags
//
// flags must already be parsed and carry the flags registered by BindFlags. A
// nil flags skips the flag layer.
func Load(flags *pflag.FlagSet) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	// 2. Config file
	path, explicit := configFileFlag(flags)
	if path == "" {
		path = findUserConfigFile()
	}
	if path != "" {
		path = expandPath(path)
		if err := loadConfigFile(cfg, path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				path = ""
			} else {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		}
		cfg.ConfigFile = path
	}

	// 3. Environment
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}
	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}

	// 4. Flags override everything
	if err := applyFlags(cfg, flags); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	// 5. Compute derived values
	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

// loadConfigFile decodes TOML into cfg and marks every key the file defines.
// Unknown keys are an error so typos do not go unnoticed.
func loadConfigFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, field := range Keys() {
		if md.IsDefined(field) {
			cfg.Sources[field] = SourceFile
		}
	}
	return nil
}

// loadDotEnv merges path into the process environment without overriding
// variables that are already set. A missing file is ignored.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// finalizeConfig computes derived values and validates the result.
func finalizeConfig(cfg *Config) error {
	// Expand ~ in paths
	cfg.DataDir = expandPath(cfg.DataDir)
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	return validate(cfg)
}
