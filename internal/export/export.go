// Package export renders todos into a human-readable markdown file.
//
// The export is write-only: nothing in the program reads it back, and a
// failed export never affects the todos file.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/todo-cli/internal/jsonfile"
	"github.com/nibzard/todo-cli/internal/todo"
)

// ErrExport matches every export failure.
var ErrExport = errors.New("export failed")

// Error reports a failed export of the file at Path.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("export %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrExport) match any *Error.
func (e *Error) Is(target error) bool {
	return target == ErrExport
}

// frontMatter is the YAML header of the export.
type frontMatter struct {
	GeneratedAt time.Time `yaml:"generated_at"`
	Total       int       `yaml:"total"`
	Pending     int       `yaml:"pending"`
	Completed   int       `yaml:"completed"`
	Owners      []string  `yaml:"owners,omitempty"`
}

// Option configures a Markdown exporter.
type Option func(*Markdown)

// WithClock sets the time source for generated_at.
func WithClock(now func() time.Time) Option {
	return func(m *Markdown) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Markdown) { m.logger = logger }
}

// Markdown writes todos to a markdown file. It implements todo.Exporter.
type Markdown struct {
	path   string
	now    func() time.Time
	logger *log.Logger
}

var _ todo.Exporter = (*Markdown)(nil)

// NewMarkdown returns an exporter writing to path.
func NewMarkdown(path string, opts ...Option) *Markdown {
	m := &Markdown{
		path:   path,
		now:    time.Now,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Path returns the export file path.
func (m *Markdown) Path() string {
	return m.path
}

// Export renders todos and atomically replaces the export file.
func (m *Markdown) Export(todos []todo.Todo) error {
	data, err := Render(todos, m.now())
	if err != nil {
		return &Error{Path: m.path, Err: err}
	}
	if err := jsonfile.WriteAtomic(m.path, data, 0o600); err != nil {
		return &Error{Path: m.path, Err: err}
	}
	m.logger.Debug("exported todos", "path", m.path, "count", len(todos))
	return nil
}

// Render returns the markdown document for todos: YAML front matter, then one
// section per owner in name order, each split into pending and completed todos
// in their original order.
func Render(todos []todo.Todo, generatedAt time.Time) ([]byte, error) {
	byOwner := make(map[string][]todo.Todo)
	fm := frontMatter{GeneratedAt: generatedAt.UTC(), Total: len(todos)}
	for _, t := range todos {
		if _, ok := byOwner[t.Owner]; !ok {
			fm.Owners = append(fm.Owners, t.Owner)
		}
		byOwner[t.Owner] = append(byOwner[t.Owner], t)
		if t.IsPending() {
			fm.Pending++
		} else {
			fm.Completed++
		}
	}
	sort.Strings(fm.Owners)

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n# Todos\n")
	if len(todos) == 0 {
		b.WriteString("\nNo todos yet.\n")
		return b.Bytes(), nil
	}

	for _, owner := range fm.Owners {
		fmt.Fprintf(&b, "\n## %s\n", owner)
		writeSection(&b, "Pending", byOwner[owner], todo.StatusPending)
		writeSection(&b, "Completed", byOwner[owner], todo.StatusCompleted)
	}
	return b.Bytes(), nil
}

func writeSection(b *bytes.Buffer, heading string, todos []todo.Todo, status todo.Status) {
	var lines []string
	for _, t := range todos {
		if t.Status == status {
			lines = append(lines, bullet(t))
		}
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n### %s\n\n", heading)
	for _, line := range lines {
		b.WriteString(line)
	}
}

func bullet(t todo.Todo) string {
	box := " "
	if !t.IsPending() {
		box = "x"
	}

	meta := []string{string(t.Priority)}
	if t.DueDate != nil {
		meta = append(meta, "due "+t.DueDate.String())
	}
	if t.CompletedAt != nil {
		meta = append(meta, "completed "+t.CompletedAt.UTC().Format("2006-01-02"))
	}

	line := fmt.Sprintf("- [%s] **%s** (%s) `%s`\n", box, t.Title, strings.Join(meta, ", "), t.ShortID())
	if t.Description != "" {
		for _, l := range strings.Split(t.Description, "\n") {
			line += "  " + l + "\n"
		}
	}
	return line
}
