package reminder

import (
	"fmt"
	"sort"
	"time"

	"github.com/nibzard/todo-cli/internal/todo"
)

// Severity groups tiers for display.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Severity returns how loudly a tier should be shown.
func (t Tier) Severity() Severity {
	switch t {
	case TierOverdue:
		return SeverityCritical
	case TierDueToday:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// Reminder is a message about one pending todo.
type Reminder struct {
	Todo     todo.Todo
	Tier     Tier
	Severity Severity
	Message  string
}

// Reminders builds reminders for todos using DefaultPolicy.
func Reminders(todos []todo.Todo, now time.Time) []Reminder {
	return DefaultPolicy.Reminders(todos, now)
}

// Reminders returns one reminder per todo whose tier calls for one, most
// urgent first. Order within a tier follows the input.
func (p Policy) Reminders(todos []todo.Todo, now time.Time) []Reminder {
	var out []Reminder
	for _, t := range todos {
		tier := p.Classify(t, now)
		msg, ok := message(t, tier, now)
		if !ok {
			continue
		}
		out = append(out, Reminder{
			Todo:     t,
			Tier:     tier,
			Severity: tier.Severity(),
			Message:  msg,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tier > out[j].Tier
	})
	return out
}

func message(t todo.Todo, tier Tier, now time.Time) (string, bool) {
	today := todo.DateOf(now)
	switch tier {
	case TierOverdue:
		return fmt.Sprintf("'%s' is %d day(s) overdue!", t.Title, t.DueDate.DaysUntil(today)), true
	case TierDueToday:
		return fmt.Sprintf("'%s' is due today!", t.Title), true
	case TierDueSoon:
		days := today.DaysUntil(*t.DueDate)
		if days == 1 {
			return fmt.Sprintf("'%s' is due tomorrow!", t.Title), true
		}
		return fmt.Sprintf("'%s' is due in %d day(s)!", t.Title, days), true
	case TierStale:
		days := int(now.Sub(t.CreatedAt) / (24 * time.Hour))
		return fmt.Sprintf("'%s' has been pending for %d day(s) - consider setting a due date!", t.Title, days), true
	}
	return "", false
}

// Summary counts todos for the daily summary line.
type Summary struct {
	Pending        int
	Completed      int
	CompletedToday int
	DueToday       int
	Overdue        int
}

func (s Summary) String() string {
	return fmt.Sprintf("Daily summary: %d pending, %d completed today, %d due today, %d overdue",
		s.Pending, s.CompletedToday, s.DueToday, s.Overdue)
}

// Summarize counts todos at now using DefaultPolicy.
func Summarize(todos []todo.Todo, now time.Time) Summary {
	return DefaultPolicy.Summarize(todos, now)
}

// Summarize counts todos at now. A todo completed today is one whose
// completed_at falls on today's date in now's location.
func (p Policy) Summarize(todos []todo.Todo, now time.Time) Summary {
	var s Summary
	today := todo.DateOf(now)
	for _, t := range todos {
		switch p.Classify(t, now) {
		case TierNotPending:
			s.Completed++
			if t.CompletedAt != nil && todo.DateOf(t.CompletedAt.In(now.Location())) == today {
				s.CompletedToday++
			}
			continue
		case TierDueToday:
			s.DueToday++
		case TierOverdue:
			s.Overdue++
		}
		s.Pending++
	}
	return s
}
