// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. Config file (--config, or the user config file)
// 3. Environment variables (TODO_*), including a .env file in the working
//    directory
// 4. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - Windows: %APPDATA%\todo-cli\config.toml
// - macOS: ~/Library/Application Support/todo-cli/config.toml
// - Linux/BSD: $XDG_CONFIG_HOME/todo-cli/config.toml or ~/.config/todo-cli/config.toml
//
// Variables already set in the environment win over the .env file.
package config
