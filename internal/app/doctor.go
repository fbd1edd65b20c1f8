package app

import (
	"errors"
	"os"

	"github.com/nibzard/todo-cli/internal/auth"
	"github.com/nibzard/todo-cli/internal/datadir"
	"github.com/nibzard/todo-cli/internal/jsonfile"
	"github.com/nibzard/todo-cli/internal/todo"
)

// CheckStatus is the outcome of one doctor check.
type CheckStatus string

const (
	CheckOK      CheckStatus = "ok"
	CheckMissing CheckStatus = "missing"
	CheckFailed  CheckStatus = "failed"
)

// Check is one line of the doctor report.
type Check struct {
	Name   string
	Path   string
	Status CheckStatus
	Errors []error
}

// Healthy reports whether every check passed. Missing files are healthy:
// they are created on first use.
func Healthy(checks []Check) bool {
	for _, c := range checks {
		if c.Status == CheckFailed {
			return false
		}
	}
	return true
}

// Diagnose inspects the data directory without opening the stores, so it
// still works when a file is corrupt.
func Diagnose(dir datadir.Dir) []Check {
	checks := []Check{checkDir(dir)}
	files := []struct {
		name   string
		path   string
		schema *jsonfile.Schema
	}{
		{"users", dir.UsersPath(), auth.UsersSchema()},
		{"todos", dir.TodosPath(), todo.TodosSchema()},
		{"session", dir.SessionPath(), auth.SessionSchema()},
	}
	for _, f := range files {
		c := Check{Name: f.name, Path: f.path, Status: CheckOK}
		found, errs := jsonfile.Check(f.path, f.schema)
		switch {
		case len(errs) > 0:
			c.Status = CheckFailed
			c.Errors = errs
		case !found:
			c.Status = CheckMissing
		}
		checks = append(checks, c)
	}
	return checks
}

func checkDir(dir datadir.Dir) Check {
	c := Check{Name: "data dir", Path: string(dir), Status: CheckOK}
	info, err := os.Stat(string(dir))
	switch {
	case errors.Is(err, os.ErrNotExist):
		c.Status = CheckMissing
	case err != nil:
		c.Status = CheckFailed
		c.Errors = []error{err}
	case !info.IsDir():
		c.Status = CheckFailed
		c.Errors = []error{errors.New("not a directory")}
	}
	return c
}
