// Package datadir provides constants and utilities for the todo data directory.
package datadir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DefaultDir is the default data directory, relative to the user's home.
	DefaultDir = "~/.todo-cli"

	// UsersFile holds registered users.
	UsersFile = "users.json"

	// TodosFile holds the todos of every user.
	TodosFile = "todos.json"

	// SessionFile holds the single active session, if any.
	SessionFile = "session.json"

	// SessionKeyFile holds the key used to sign session tokens.
	SessionKeyFile = "session.key"

	// ExportFile is the write-only markdown rendering of all todos.
	ExportFile = "todos.md"

	// LogsDir holds per-run log files.
	LogsDir = "logs"
)

// Dir is a resolved data directory.
type Dir string

// UsersPath returns the path to the users file.
func (d Dir) UsersPath() string { return d.join(UsersFile) }

// TodosPath returns the path to the todos file.
func (d Dir) TodosPath() string { return d.join(TodosFile) }

// SessionPath returns the path to the session file.
func (d Dir) SessionPath() string { return d.join(SessionFile) }

// SessionKeyPath returns the path to the session signing key.
func (d Dir) SessionKeyPath() string { return d.join(SessionKeyFile) }

// ExportPath returns the path to the markdown export.
func (d Dir) ExportPath() string { return d.join(ExportFile) }

// LogsPath returns the path to the logs directory.
func (d Dir) LogsPath() string { return d.join(LogsDir) }

// Ensure creates the data directory if it is missing.
func (d Dir) Ensure() error {
	if d == "" {
		return fmt.Errorf("data dir is empty")
	}
	if err := os.MkdirAll(string(d), 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

func (d Dir) join(file string) string {
	if d == "" || d == "." {
		return file
	}
	return filepath.Join(string(d), file)
}
