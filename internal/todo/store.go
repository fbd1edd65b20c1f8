package todo

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nibzard/todo-cli/internal/auth"
	"github.com/nibzard/todo-cli/internal/jsonfile"
)

var (
	// ErrNotFound is returned when no todo owned by the caller matches a reference.
	ErrNotFound = errors.New("todo not found")
	// ErrInvalidInput is returned for empty titles, unknown enum values and
	// ambiguous id prefixes.
	ErrInvalidInput = errors.New("invalid input")
)

// MinRefLength is the shortest id prefix accepted as a todo reference.
const MinRefLength = 4

//go:embed todos.schema.json
var todosSchemaJSON string

var todosSchema = jsonfile.MustCompileSchema("todos.schema.json", todosSchemaJSON)

// TodosSchema returns the schema the todos file is validated against.
func TodosSchema() *jsonfile.Schema { return todosSchema }

// Exporter receives a snapshot of every todo after each persisted mutation.
type Exporter interface {
	Export(todos []Todo) error
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for timestamps and session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithExporter sets the exporter run after each mutation.
func WithExporter(e Exporter) Option {
	return func(s *Store) { s.exporter = e }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// Store owns the todos file. Every operation is scoped to the owner named by
// the session passed in.
type Store struct {
	mu       sync.Mutex
	path     string
	todos    []Todo
	now      func() time.Time
	newID    func() string
	exporter Exporter
	logger   *log.Logger

	lastExportErr error
}

// Open loads the todos file at path. A missing file is an empty store.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}

	todos, err := loadTodos(path)
	if err != nil {
		return nil, err
	}
	s.todos = todos
	return s, nil
}

// Reload re-reads the todos file, picking up writes made by other
// invocations. On error the in-memory todos are left as they were.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	todos, err := loadTodos(s.path)
	if err != nil {
		return err
	}
	s.todos = todos
	return nil
}

func loadTodos(path string) ([]Todo, error) {
	var f File
	if _, err := jsonfile.Load(path, todosSchema, &f); err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(f.Todos))
	for _, t := range f.Todos {
		if seen[t.ID] {
			return nil, &jsonfile.StorageError{Op: "validate", Path: path, Err: fmt.Errorf("duplicate todo id %q", t.ID)}
		}
		seen[t.ID] = true
	}
	if f.Todos == nil {
		return []Todo{}, nil
	}
	return f.Todos, nil
}

// Path returns the todos file path.
func (s *Store) Path() string {
	return s.path
}

// Add creates a pending todo owned by the session user.
func (s *Store) Add(sess auth.Session, d Draft) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	owner, err := s.owner(sess, now)
	if err != nil {
		return Todo{}, err
	}

	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Todo{}, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
	}
	priority := d.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return Todo{}, fmt.Errorf("%w: priority %q", ErrInvalidInput, priority)
	}

	now = now.UTC()
	t := Todo{
		ID:          s.newID(),
		Owner:       owner,
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Priority:    priority,
		Status:      StatusPending,
		DueDate:     cloneDate(d.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	next := make([]Todo, len(s.todos), len(s.todos)+1)
	copy(next, s.todos)
	next = append(next, t)
	if err := s.commit(next); err != nil {
		return Todo{}, err
	}
	s.logger.Info("todo added", "id", t.ID, "owner", owner)
	return t.clone(), nil
}

// List returns the session user's todos matching f, in insertion order.
func (s *Store) List(sess auth.Session, f Filter) ([]Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.owner(sess, s.now())
	if err != nil {
		return nil, err
	}
	out := []Todo{}
	for _, t := range s.todos {
		if t.Owner == owner && f.Match(t) {
			out = append(out, t.clone())
		}
	}
	return out, nil
}

// Get resolves ref to one of the session user's todos.
func (s *Store) Get(sess auth.Session, ref string) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.owner(sess, s.now())
	if err != nil {
		return Todo{}, err
	}
	i, err := s.resolve(owner, ref)
	if err != nil {
		return Todo{}, err
	}
	return s.todos[i].clone(), nil
}

// Edit applies u to the referenced todo. An empty update returns the todo
// unchanged without rewriting the file.
func (s *Store) Edit(sess auth.Session, ref string, u Update) (Todo, error) {
	return s.update(sess, ref, "edited", func(t *Todo, now time.Time) (bool, error) {
		if u.IsEmpty() {
			return false, nil
		}
		if u.Title != nil {
			title := strings.TrimSpace(*u.Title)
			if title == "" {
				return false, fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
			}
			t.Title = title
		}
		if u.Description != nil {
			t.Description = strings.TrimSpace(*u.Description)
		}
		if u.Priority != nil {
			if !u.Priority.Valid() {
				return false, fmt.Errorf("%w: priority %q", ErrInvalidInput, *u.Priority)
			}
			t.Priority = *u.Priority
		}
		switch {
		case u.ClearDueDate:
			t.DueDate = nil
		case u.DueDate != nil:
			t.DueDate = cloneDate(u.DueDate)
		}
		if u.Status != nil {
			if !u.Status.Valid() {
				return false, fmt.Errorf("%w: status %q", ErrInvalidInput, *u.Status)
			}
			setStatus(t, *u.Status, now)
		}
		t.UpdatedAt = now
		return true, nil
	})
}

// Complete marks the referenced todo completed. Completing an already
// completed todo returns it unchanged.
func (s *Store) Complete(sess auth.Session, ref string) (Todo, error) {
	return s.update(sess, ref, "completed", func(t *Todo, now time.Time) (bool, error) {
		if t.Status == StatusCompleted {
			return false, nil
		}
		setStatus(t, StatusCompleted, now)
		t.UpdatedAt = now
		return true, nil
	})
}

// Delete removes the referenced todo.
func (s *Store) Delete(sess auth.Session, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.owner(sess, s.now())
	if err != nil {
		return err
	}
	i, err := s.resolve(owner, ref)
	if err != nil {
		return err
	}
	id := s.todos[i].ID

	next := make([]Todo, 0, len(s.todos)-1)
	next = append(next, s.todos[:i]...)
	next = append(next, s.todos[i+1:]...)
	if err := s.commit(next); err != nil {
		return err
	}
	s.logger.Info("todo deleted", "id", id, "owner", owner)
	return nil
}

// LastExportError returns the error of the most recent export, or nil if it
// succeeded or none has run.
func (s *Store) LastExportError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastExportErr
}

func (s *Store) update(sess auth.Session, ref, verb string, apply func(*Todo, time.Time) (bool, error)) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	owner, err := s.owner(sess, now)
	if err != nil {
		return Todo{}, err
	}
	i, err := s.resolve(owner, ref)
	if err != nil {
		return Todo{}, err
	}

	t := s.todos[i].clone()
	changed, err := apply(&t, now.UTC())
	if err != nil {
		return Todo{}, err
	}
	if !changed {
		return t, nil
	}

	next := make([]Todo, len(s.todos))
	copy(next, s.todos)
	next[i] = t
	if err := s.commit(next); err != nil {
		return Todo{}, err
	}
	s.logger.Info("todo "+verb, "id", t.ID, "owner", owner)
	return t.clone(), nil
}

// commit persists next and only then makes it the in-memory state. The
// export runs afterwards and cannot fail the mutation.
func (s *Store) commit(next []Todo) error {
	if err := jsonfile.Save(s.path, File{SchemaVersion: SchemaVersion, Todos: next}, 0o600); err != nil {
		return err
	}
	s.todos = next

	if s.exporter == nil {
		return nil
	}
	s.lastExportErr = s.exporter.Export(cloneAll(next))
	if s.lastExportErr != nil {
		s.logger.Warn("export failed", "err", s.lastExportErr)
	}
	return nil
}

func (s *Store) owner(sess auth.Session, now time.Time) (string, error) {
	if sess.Username == "" || !sess.ValidAt(now) {
		return "", auth.ErrNotAuthenticated
	}
	return sess.Username, nil
}

// resolve finds ref among owner's todos: an exact id first, then a unique
// prefix of at least MinRefLength characters.
func (s *Store) resolve(owner, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return -1, fmt.Errorf("%w: todo id cannot be empty", ErrInvalidInput)
	}

	match := -1
	for i := range s.todos {
		t := &s.todos[i]
		if t.Owner != owner {
			continue
		}
		if t.ID == ref {
			return i, nil
		}
		if len(ref) >= MinRefLength && strings.HasPrefix(t.ID, ref) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: id prefix %q matches more than one todo", ErrInvalidInput, ref)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return match, nil
}

func setStatus(t *Todo, status Status, now time.Time) {
	if t.Status == status {
		return
	}
	t.Status = status
	if status == StatusCompleted {
		completed := now
		t.CompletedAt = &completed
	} else {
		t.CompletedAt = nil
	}
}

func (t Todo) clone() Todo {
	t.DueDate = cloneDate(t.DueDate)
	if t.CompletedAt != nil {
		c := *t.CompletedAt
		t.CompletedAt = &c
	}
	return t
}

func cloneAll(todos []Todo) []Todo {
	out := make([]Todo, len(todos))
	for i, t := range todos {
		out[i] = t.clone()
	}
	return out
}

func cloneDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
