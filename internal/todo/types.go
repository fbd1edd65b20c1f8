package todo

import (
	"fmt"
	"strings"
	"time"
)

// Priority is the importance of a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts a priority name or its short form (l, m/med, h).
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return PriorityLow, nil
	case "medium", "med", "m":
		return PriorityMedium, nil
	case "high", "h":
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("%w: priority %q, use low, medium, or high", ErrInvalidInput, s)
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// UnmarshalText rejects unknown priorities.
func (p *Priority) UnmarshalText(text []byte) error {
	v := Priority(text)
	if !v.Valid() {
		return fmt.Errorf("unknown priority %q", text)
	}
	*p = v
	return nil
}

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// ParseStatus accepts a status name or one of its aliases
// (p, complete, done, c).
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "p":
		return StatusPending, nil
	case "completed", "complete", "done", "c":
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("%w: status %q, use pending or completed", ErrInvalidInput, s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// UnmarshalText rejects unknown statuses.
func (s *Status) UnmarshalText(text []byte) error {
	v := Status(text)
	if !v.Valid() {
		return fmt.Errorf("unknown status %q", text)
	}
	*s = v
	return nil
}

// dateLayout is the wire and CLI format of a Date.
const dateLayout = "2006-01-02"

// Date is a calendar day without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: date %q, use YYYY-MM-DD", ErrInvalidInput, s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return d.time().Format(dateLayout)
}

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// Compare returns -1, 0, or +1 as d is before, equal to, or after o.
func (d Date) Compare(o Date) int {
	return d.time().Compare(o.time())
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// DaysUntil returns the number of days from d to o (negative when o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.time().Sub(d.time()).Hours() / 24)
}

// MarshalText encodes d as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD date.
func (d *Date) UnmarshalText(text []byte) error {
	t, err := time.Parse(dateLayout, string(text))
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	*d = DateOf(t)
	return nil
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Todo is a single todo record.
type Todo struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	DueDate     *Date      `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ShortID returns the first 8 characters of the id, as shown by the CLI.
func (t Todo) ShortID() string {
	if len(t.ID) <= 8 {
		return t.ID
	}
	return t.ID[:8]
}

// IsPending reports whether the todo is still pending.
func (t Todo) IsPending() bool {
	return t.Status == StatusPending
}

// File is the on-disk layout of the todos file.
type File struct {
	SchemaVersion int    `json:"schema_version"`
	Todos         []Todo `json:"todos"`
}

// SchemaVersion is the current todos file version.
const SchemaVersion = 1

// Draft holds the fields of a todo to be added.
type Draft struct {
	Title       string
	Description string
	Priority    Priority // defaults to medium
	DueDate     *Date
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Status   Status
	Priority Priority
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Todo) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Update lists the fields to change on Edit. Nil fields are left as they are.
type Update struct {
	Title        *string
	Description  *string
	Priority     *Priority
	DueDate      *Date
	ClearDueDate bool
	Status       *Status
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Priority == nil &&
		u.DueDate == nil && !u.ClearDueDate && u.Status == nil
}
