// Package reminder classifies pending todos into urgency tiers and turns them
// into reminder messages.
//
// Classification depends only on the todo and the supplied time. "Today" is
// the calendar date of now in now's location, so callers decide which zone a
// day boundary falls in by choosing the location of now.
package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/todo-cli/internal/todo"
)

// Tier is the urgency of a todo at a given time.
type Tier int

const (
	// TierNotPending is returned for completed todos, which never remind.
	TierNotPending Tier = iota - 1
	// TierNone is a pending todo that needs no reminder.
	TierNone
	// TierStale is a pending todo with no due date that has been open too long.
	TierStale
	// TierDueSoon is due within the due-soon window, after today.
	TierDueSoon
	// TierDueToday is due today.
	TierDueToday
	// TierOverdue was due before today.
	TierOverdue
)

var tierNames = map[Tier]string{
	TierNotPending: "not-pending",
	TierNone:       "none",
	TierStale:      "stale",
	TierDueSoon:    "due-soon",
	TierDueToday:   "due-today",
	TierOverdue:    "overdue",
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier parses a tier name as returned by String.
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for tier, name := range tierNames {
		if name == s {
			return tier, nil
		}
	}
	return 0, fmt.Errorf("unknown reminder tier %q", s)
}

// MarshalText encodes the tier name.
func (t Tier) MarshalText() ([]byte, error) {
	if _, ok := tierNames[t]; !ok {
		return nil, fmt.Errorf("unknown reminder tier %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name.
func (t *Tier) UnmarshalText(text []byte) error {
	v, err := ParseTier(string(text))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Policy holds the classification thresholds.
type Policy struct {
	// DueSoonDays is how many days after today still count as due soon.
	DueSoonDays int
	// StaleAfter is how long an undated pending todo may stay open before it
	// is stale. The comparison is strict.
	StaleAfter time.Duration
}

// DefaultPolicy is a 7 day due-soon window and a 7 day staleness threshold.
var DefaultPolicy = Policy{
	DueSoonDays: 7,
	StaleAfter:  7 * 24 * time.Hour,
}

// Classify classifies t at now using DefaultPolicy.
func Classify(t todo.Todo, now time.Time) Tier {
	return DefaultPolicy.Classify(t, now)
}

// Classify returns the tier of t at now. The first matching rule wins.
func (p Policy) Classify(t todo.Todo, now time.Time) Tier {
	if !t.IsPending() {
		return TierNotPending
	}

	today := todo.DateOf(now)
	if t.DueDate != nil {
		due := *t.DueDate
		switch {
		case due.Before(today):
			return TierOverdue
		case due == today:
			return TierDueToday
		case !due.After(today.AddDays(p.DueSoonDays)):
			return TierDueSoon
		}
		return TierNone
	}

	if now.Sub(t.CreatedAt) > p.StaleAfter {
		return TierStale
	}
	return TierNone
}
