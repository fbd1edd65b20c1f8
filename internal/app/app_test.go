package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nibzard/todo-cli/internal/auth"
	"github.com/nibzard/todo-cli/internal/datadir"
	"github.com/nibzard/todo-cli/internal/reminder"
	"github.com/nibzard/todo-cli/internal/todo"
)

type clock struct {
	t time.Time
}

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func openTestApp(t *testing.T, dir datadir.Dir, c *clock) *App {
	t.Helper()
	a, err := Open(Options{DataDir: dir, BcryptCost: bcrypt.MinCost, Now: c.Now})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return a
}

func newTestApp(t *testing.T) (*App, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	return openTestApp(t, datadir.Dir(t.TempDir()), c), c
}

func mustLogin(t *testing.T, a *App, user, password string) {
	t.Helper()
	if _, err := a.Register(user, password); err != nil && !errors.Is(err, auth.ErrDuplicateUser) {
		t.Fatalf("Register(%s) error = %v", user, err)
	}
	if _, err := a.Login(user, password); err != nil {
		t.Fatalf("Login(%s) error = %v", user, err)
	}
}

func titles(todos []todo.Todo) string {
	var out []string
	for _, t := range todos {
		out = append(out, t.Title)
	}
	return strings.Join(out, ",")
}

func TestDueTodayScenario(t *testing.T) {
	a, c := newTestApp(t)
	mustLogin(t, a, "alice", "secret123")

	today := todo.DateOf(c.Now())
	added, err := a.Add(todo.Draft{Title: "Buy milk", Priority: todo.PriorityMedium, DueDate: &today})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	due, err := a.Today()
	if err != nil {
		t.Fatal(err)
	}
	if titles(due) != "Buy milk" {
		t.Errorf("Today: got %q, want Buy milk", titles(due))
	}
	rems, _, err := a.Reminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(rems) != 1 || rems[0].Tier != reminder.TierDueToday {
		t.Errorf("Reminders before complete: got %+v", rems)
	}

	if _, err := a.Complete(added.ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	rems, summary, err := a.Reminders()
	if err != nil {
		t.Fatal(err)
	}
	if len(rems) != 0 {
		t.Errorf("Reminders after complete: got %+v", rems)
	}
	if summary.CompletedToday != 1 || summary.Pending != 0 {
		t.Errorf("Summary: got %+v", summary)
	}
	due, _ = a.Today()
	if len(due) != 0 {
		t.Errorf("Today after complete: got %q", titles(due))
	}
}

func TestOverdueScenario(t *testing.T) {
	a, c := newTestApp(t)
	mustLogin(t, a, "alice", "secret123")

	yesterday := todo.DateOf(c.Now()).AddDays(-1)
	if _, err := a.Add(todo.Draft{Title: "Pay rent", DueDate: &yesterday}); err != nil {
		t.Fatal(err)
	}

	overdue, err := a.Overdue()
	if err != nil {
		t.Fatal(err)
	}
	if titles(overdue) != "Pay rent" {
		t.Errorf("Overdue: got %q", titles(overdue))
	}

	pendingList, _ := a.List(todo.Filter{Status: todo.StatusPending})
	if titles(pendingList) != "Pay rent" {
		t.Errorf("pending list: got %q", titles(pendingList))
	}
	completedList, _ := a.List(todo.Filter{Status: todo.StatusCompleted})
	if len(completedList) != 0 {
		t.Errorf("completed list: got %q", titles(completedList))
	}
}

func TestLoginFlow(t *testing.T) {
	a, c := newTestApp(t)

	if _, err := a.Add(todo.Draft{Title: "x"}); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("Add before login: %v, want ErrNotAuthenticated", err)
	}
	if _, err := a.Register("alice", "secret123"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := a.Status(); ok {
		t.Error("Register should not log in")
	}

	wrong := func() error { _, err := a.Login("alice", "wrong-pass"); return err }()
	unknown := func() error { _, err := a.Login("nobody", "secret123"); return err }()
	malformed := func() error { _, err := a.Login("no body", "secret123"); return err }()
	for name, err := range map[string]error{"wrong": wrong, "unknown": unknown, "malformed": malformed} {
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Login(%s): %v, want ErrInvalidCredentials", name, err)
		}
	}

	sess, err := a.Login("alice", "secret123")
	if err != nil {
		t.Fatal(err)
	}
	if !sess.ExpiresAt.Equal(c.Now().Add(auth.DefaultSessionTTL)) {
		t.Errorf("ExpiresAt: got %v", sess.ExpiresAt)
	}

	c.Advance(auth.DefaultSessionTTL)
	if _, err := a.List(todo.Filter{}); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("List after expiry: %v, want ErrNotAuthenticated", err)
	}

	mustLogin(t, a, "alice", "secret123")
	if err := a.Logout(); err != nil {
		t.Fatal(err)
	}
	if err := a.Logout(); err != nil {
		t.Errorf("second Logout: %v", err)
	}
	if _, err := a.List(todo.Filter{}); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("List after logout: %v", err)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	dir := datadir.Dir(t.TempDir())
	c := &clock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	a := openTestApp(t, dir, c)
	mustLogin(t, a, "alice", "secret123")
	added, err := a.Add(todo.Draft{Title: "persisted"})
	if err != nil {
		t.Fatal(err)
	}

	b := openTestApp(t, dir, c)
	got, err := b.Get(added.ShortID())
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.Title != "persisted" {
		t.Errorf("Title: got %q", got.Title)
	}
}

func TestSwitchingUsersIsolatesTodos(t *testing.T) {
	a, _ := newTestApp(t)
	mustLogin(t, a, "alice", "secret123")
	mine, err := a.Add(todo.Draft{Title: "alice only"})
	if err != nil {
		t.Fatal(err)
	}

	mustLogin(t, a, "bob", "hunter22")
	list, _ := a.List(todo.Filter{})
	if len(list) != 0 {
		t.Errorf("bob sees %q", titles(list))
	}
	if _, err := a.Complete(mine.ID); !errors.Is(err, todo.ErrNotFound) {
		t.Errorf("bob Complete: %v, want ErrNotFound", err)
	}
	if err := a.Delete(mine.ID); !errors.Is(err, todo.ErrNotFound) {
		t.Errorf("bob Delete: %v, want ErrNotFound", err)
	}
}

func TestSessionForRemovedUserIsRejected(t *testing.T) {
	dir := datadir.Dir(t.TempDir())
	c := &clock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	a := openTestApp(t, dir, c)
	mustLogin(t, a, "alice", "secret123")

	if err := os.Remove(dir.UsersPath()); err != nil {
		t.Fatal(err)
	}
	b := openTestApp(t, dir, c)
	if _, err := b.List(todo.Filter{}); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("List: %v, want ErrNotAuthenticated", err)
	}
	if _, ok, _ := b.Status(); ok {
		t.Error("Status should not report a session for an unknown user")
	}
}

func TestMutationsWriteExport(t *testing.T) {
	a, _ := newTestApp(t)
	mustLogin(t, a, "alice", "secret123")
	if _, err := a.Add(todo.Draft{Title: "Exported"}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(a.DataDir().ExportPath())
	if err != nil {
		t.Fatalf("export not written: %v", err)
	}
	if !strings.Contains(string(data), "**Exported**") {
		t.Errorf("export content:\n%s", data)
	}
	if a.LastExportError() != nil {
		t.Errorf("LastExportError: %v", a.LastExportError())
	}
}

func TestExportFailureIsNotFatal(t *testing.T) {
	a, _ := newTestApp(t)
	mustLogin(t, a, "alice", "secret123")

	// A directory where the export file should be makes the rename fail.
	if err := os.MkdirAll(filepath.Join(a.DataDir().ExportPath(), "blocker"), 0o700); err != nil {
		t.Fatal(err)
	}
	added, err := a.Add(todo.Draft{Title: "still saved"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if a.LastExportError() == nil {
		t.Error("LastExportError should be set")
	}
	if _, err := a.Get(added.ID); err != nil {
		t.Errorf("todo not kept: %v", err)
	}
}

func TestCustomPolicies(t *testing.T) {
	c := &clock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	a, err := Open(Options{
		DataDir:        datadir.Dir(t.TempDir()),
		BcryptCost:     bcrypt.MinCost,
		Now:            c.Now,
		SessionTTL:     time.Hour,
		PasswordPolicy: auth.PasswordPolicy{MinLength: 10, MaxLength: 20},
		Reminders:      reminder.Policy{DueSoonDays: 1, StaleAfter: time.Hour},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.Register("alice", "secret123"); !errors.Is(err, auth.ErrWeakPassword) {
		t.Errorf("Register with 9 chars: %v, want ErrWeakPassword", err)
	}
	mustLogin(t, a, "alice", "longer-secret")

	inTwo := todo.DateOf(c.Now()).AddDays(2)
	todoSoon, _ := a.Add(todo.Draft{Title: "in two days", DueDate: &inTwo})
	if tier := a.Classify(todoSoon); tier != reminder.TierNone {
		t.Errorf("Classify with 1-day window: got %v, want none", tier)
	}

	c.Advance(time.Hour)
	if _, err := a.List(todo.Filter{}); !errors.Is(err, auth.ErrNotAuthenticated) {
		t.Errorf("List after 1h TTL: %v", err)
	}
}

func TestDiagnose(t *testing.T) {
	dir := datadir.Dir(filepath.Join(t.TempDir(), "data"))

	checks := Diagnose(dir)
	if checks[0].Status != CheckMissing {
		t.Errorf("missing dir: got %v", checks[0].Status)
	}
	if !Healthy(checks) {
		t.Error("a fresh install should be healthy")
	}

	c := &clock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	a := openTestApp(t, dir, c)
	mustLogin(t, a, "alice", "secret123")
	if _, err := a.Add(todo.Draft{Title: "x"}); err != nil {
		t.Fatal(err)
	}
	for _, check := range Diagnose(dir) {
		if check.Status != CheckOK {
			t.Errorf("%s: got %v (%v)", check.Name, check.Status, check.Errors)
		}
	}

	if err := os.WriteFile(dir.TodosPath(), []byte(`{"schema_version": 1, "todos": [{"id": 1}]}`), 0o600); err != nil {
		t.Fatal(err)
	}
	checks = Diagnose(dir)
	if Healthy(checks) {
		t.Error("corrupt todos file should be unhealthy")
	}
	for _, check := range checks {
		if check.Name == "todos" && (check.Status != CheckFailed || len(check.Errors) == 0) {
			t.Errorf("todos check: %+v", check)
		}
	}
}

func TestReloadSeesOtherWriters(t *testing.T) {
	c := &clock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	dir := datadir.Dir(t.TempDir())
	board := openTestApp(t, dir, c)
	mustLogin(t, board, "alice", "secret123")

	other := openTestApp(t, dir, c)
	if _, err := other.Add(todo.Draft{Title: "Added elsewhere"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	mustLogin(t, other, "bob", "hunter22")

	if err := board.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	sess, ok, err := board.Status()
	if err != nil || !ok {
		t.Fatalf("Status() = %v, %v", ok, err)
	}
	if sess.Username != "bob" {
		t.Errorf("Status user: got %q, want bob", sess.Username)
	}

	mustLogin(t, board, "alice", "secret123")
	list, err := board.List(todo.Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if got := titles(list); got != "Added elsewhere" {
		t.Errorf("List after Reload: got %q, want %q", got, "Added elsewhere")
	}
}
