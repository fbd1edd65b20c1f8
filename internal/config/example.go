package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todo-cli configuration file
# Values can be overridden by TODO_* environment variables, a .env file in the
# working directory, or CLI flags.

# Where users, todos, the session and the markdown export are stored
# (supports ~ expansion and %VAR% on Windows)
data_dir = "~/.todo-cli"

# How long a login stays valid (Go duration: "24h", "90m")
session_ttl = "24h"

# Shortest accepted password when registering
min_password_length = 6

# Pending todos due within this many days after today are "due soon"
due_soon_days = 7

# Undated pending todos older than this many days are "stale"
stale_days = 7

# Logging: debug, info, warn, error / text, json, logfmt
log_level = "warn"
log_format = "text"

# Also copy each run's log to <data_dir>/logs (the newest 20 are kept)
log_file = false

# Disable colored output
no_color = false
`
}
