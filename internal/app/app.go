// Package app wires the credential store, session manager, todo store and
// exporter together. Every CLI verb goes through an App: authorize, then
// query or mutate, then export.
package app

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-cli/internal/auth"
	"github.com/nibzard/todo-cli/internal/datadir"
	"github.com/nibzard/todo-cli/internal/export"
	"github.com/nibzard/todo-cli/internal/reminder"
	"github.com/nibzard/todo-cli/internal/todo"
)

// Options configures Open. Zero values fall back to package defaults.
type Options struct {
	DataDir        datadir.Dir
	SessionTTL     time.Duration
	PasswordPolicy auth.PasswordPolicy
	Reminders      reminder.Policy
	BcryptCost     int
	Now            func() time.Time
	Logger         *log.Logger
}

// App is the application service behind the CLI.
type App struct {
	dir      datadir.Dir
	creds    *auth.Credentials
	sessions *auth.Sessions
	store    *todo.Store
	exporter *export.Markdown
	policy   reminder.Policy
	now      func() time.Time
	logger   *log.Logger
}

// Open creates the data directory if needed and loads every store in it.
func Open(opts Options) (*App, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Reminders == (reminder.Policy{}) {
		opts.Reminders = reminder.DefaultPolicy
	}
	if opts.PasswordPolicy == (auth.PasswordPolicy{}) {
		opts.PasswordPolicy = auth.DefaultPasswordPolicy()
	}
	if err := opts.DataDir.Ensure(); err != nil {
		return nil, err
	}

	credOpts := []auth.CredentialsOption{
		auth.WithPasswordPolicy(opts.PasswordPolicy),
		auth.WithCredentialsClock(opts.Now),
		auth.WithCredentialsLogger(opts.Logger.WithPrefix("auth")),
	}
	if opts.BcryptCost > 0 {
		credOpts = append(credOpts, auth.WithBcryptCost(opts.BcryptCost))
	}
	creds, err := auth.OpenCredentials(opts.DataDir.UsersPath(), credOpts...)
	if err != nil {
		return nil, err
	}

	sessions := auth.NewSessions(opts.DataDir.SessionPath(), opts.DataDir.SessionKeyPath(),
		auth.WithSessionTTL(opts.SessionTTL),
		auth.WithSessionsClock(opts.Now),
		auth.WithSessionsLogger(opts.Logger.WithPrefix("session")),
	)

	exporter := export.NewMarkdown(opts.DataDir.ExportPath(),
		export.WithClock(opts.Now),
		export.WithLogger(opts.Logger.WithPrefix("export")),
	)

	store, err := todo.Open(opts.DataDir.TodosPath(),
		todo.WithClock(opts.Now),
		todo.WithExporter(exporter),
		todo.WithLogger(opts.Logger.WithPrefix("todo")),
	)
	if err != nil {
		return nil, err
	}

	return &App{
		dir:      opts.DataDir,
		creds:    creds,
		sessions: sessions,
		store:    store,
		exporter: exporter,
		policy:   opts.Reminders,
		now:      opts.Now,
		logger:   opts.Logger,
	}, nil
}

// DataDir returns the data directory the app was opened on.
func (a *App) DataDir() datadir.Dir {
	return a.dir
}

// Now returns the app's current time.
func (a *App) Now() time.Time {
	return a.now()
}

// Reload re-reads the users and todos files, picking up writes made by other
// invocations since Open.
func (a *App) Reload() error {
	if err := a.creds.Reload(); err != nil {
		return err
	}
	return a.store.Reload()
}

// Register creates an account. It does not log the user in.
func (a *App) Register(username, password string) (auth.User, error) {
	return a.creds.Register(username, password)
}

// Login verifies credentials and starts a session, replacing any existing one.
func (a *App) Login(username, password string) (auth.Session, error) {
	username, err := auth.NormalizeUsername(username)
	if err != nil {
		// A malformed name can never be registered, so it is just a bad login.
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	if err := a.creds.Verify(username, password); err != nil {
		return auth.Session{}, err
	}
	return a.sessions.Start(username)
}

// Logout ends the current session. Logging out twice is not an error.
func (a *App) Logout() error {
	return a.sessions.End()
}

// Status returns the current session, if any.
func (a *App) Status() (auth.Session, bool, error) {
	sess, ok, err := a.sessions.Current()
	if err != nil || !ok {
		return auth.Session{}, false, err
	}
	if !a.creds.Exists(sess.Username) {
		return auth.Session{}, false, nil
	}
	return sess, true, nil
}

// Add creates a todo for the logged-in user.
func (a *App) Add(d todo.Draft) (todo.Todo, error) {
	sess, err := a.session()
	if err != nil {
		return todo.Todo{}, err
	}
	return a.store.Add(sess, d)
}

// List returns the logged-in user's todos matching f.
func (a *App) List(f todo.Filter) ([]todo.Todo, error) {
	sess, err := a.session()
	if err != nil {
		return nil, err
	}
	return a.store.List(sess, f)
}

// Get returns one of the logged-in user's todos.
func (a *App) Get(ref string) (todo.Todo, error) {
	sess, err := a.session()
	if err != nil {
		return todo.Todo{}, err
	}
	return a.store.Get(sess, ref)
}

// Complete marks a todo completed.
func (a *App) Complete(ref string) (todo.Todo, error) {
	sess, err := a.session()
	if err != nil {
		return todo.Todo{}, err
	}
	return a.store.Complete(sess, ref)
}

// Edit changes the fields set in u.
func (a *App) Edit(ref string, u todo.Update) (todo.Todo, error) {
	sess, err := a.session()
	if err != nil {
		return todo.Todo{}, err
	}
	return a.store.Edit(sess, ref, u)
}

// Delete removes a todo.
func (a *App) Delete(ref string) error {
	sess, err := a.session()
	if err != nil {
		return err
	}
	return a.store.Delete(sess, ref)
}

// Overdue returns pending todos due before today.
func (a *App) Overdue() ([]todo.Todo, error) {
	return a.inTier(reminder.TierOverdue)
}

// Today returns pending todos due today.
func (a *App) Today() ([]todo.Todo, error) {
	return a.inTier(reminder.TierDueToday)
}

// Reminders returns the logged-in user's reminders, most urgent first, and
// the daily summary.
func (a *App) Reminders() ([]reminder.Reminder, reminder.Summary, error) {
	todos, err := a.List(todo.Filter{})
	if err != nil {
		return nil, reminder.Summary{}, err
	}
	now := a.now()
	return a.policy.Reminders(todos, now), a.policy.Summarize(todos, now), nil
}

// Classify returns the tier of t now.
func (a *App) Classify(t todo.Todo) reminder.Tier {
	return a.policy.Classify(t, a.now())
}

// LastExportError reports whether the markdown export after the most recent
// mutation failed.
func (a *App) LastExportError() error {
	return a.store.LastExportError()
}

func (a *App) inTier(tier reminder.Tier) ([]todo.Todo, error) {
	todos, err := a.List(todo.Filter{Status: todo.StatusPending})
	if err != nil {
		return nil, err
	}
	now := a.now()
	out := []todo.Todo{}
	for _, t := range todos {
		if a.policy.Classify(t, now) == tier {
			out = append(out, t)
		}
	}
	return out, nil
}

// session returns the active session, rejecting sessions whose user is no
// longer registered.
func (a *App) session() (auth.Session, error) {
	sess, err := a.sessions.Require()
	if err != nil {
		return auth.Session{}, err
	}
	if !a.creds.Exists(sess.Username) {
		a.logger.Warn("session user is not registered", "username", sess.Username)
		return auth.Session{}, fmt.Errorf("%w: unknown user %q", auth.ErrNotAuthenticated, sess.Username)
	}
	return sess, nil
}
