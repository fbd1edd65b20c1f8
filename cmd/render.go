package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nibzard/todo-cli/internal/app"
	"github.com/nibzard/todo-cli/internal/reminder"
	"github.com/nibzard/todo-cli/internal/todo"
	"github.com/nibzard/todo-cli/internal/ui"
)

const timeLayout = "2006-01-02 15:04"

// printTodoList prints a heading and one entry per todo, or empty when there
// are none.
func printTodoList(w io.Writer, styles ui.Styles, a *app.App, heading, empty string, todos []todo.Todo) {
	if len(todos) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	fmt.Fprintln(w, styles.Title.Render(heading))
	fmt.Fprintln(w, styles.Muted.Render(strings.Repeat("-", 60)))
	for _, t := range todos {
		printTodo(w, styles, t, a.Classify(t))
		fmt.Fprintln(w)
	}
}

// printTodo prints one todo: a summary line, then description, due date and
// creation time.
func printTodo(w io.Writer, styles ui.Styles, t todo.Todo, tier reminder.Tier) {
	mark := "[ ]"
	if t.Status == todo.StatusCompleted {
		mark = styles.Success.Render("[x]")
	}
	priority := styles.Priority(t.Priority).Render(fmt.Sprintf("%-6s", t.Priority))
	fmt.Fprintf(w, "%s %s %s %s\n", mark, styles.Muted.Render(t.ShortID()), priority, styles.Title.Render(t.Title))

	if t.Description != "" {
		fmt.Fprintf(w, "    %s\n", styles.Muted.Render(t.Description))
	}
	if t.DueDate != nil {
		due := "Due: " + t.DueDate.String()
		switch tier {
		case reminder.TierOverdue:
			due = styles.Critical.Render(due + " (OVERDUE)")
		case reminder.TierDueToday:
			due = styles.Warning.Render(due + " (today)")
		}
		fmt.Fprintf(w, "    %s\n", due)
	}
	if t.CompletedAt != nil {
		fmt.Fprintf(w, "    Completed: %s\n", formatTime(t.CompletedAt.Local()))
	}
	fmt.Fprintf(w, "    %s\n", styles.Muted.Render("Created: "+formatTime(t.CreatedAt.Local())))
}

// printReminders prints reminders most urgent first. Nothing is printed when
// there are none.
func printReminders(w io.Writer, styles ui.Styles, reminders []reminder.Reminder) {
	if len(reminders) == 0 {
		return
	}
	fmt.Fprintf(w, "\nYou have %d reminder(s):\n", len(reminders))
	for _, r := range reminders {
		fmt.Fprintf(w, "  %s %s\n", severityMark(r.Severity), styles.Severity(r.Severity).Render(r.Message))
	}
	fmt.Fprintln(w)
}

func severityMark(sev reminder.Severity) string {
	switch sev {
	case reminder.SeverityCritical:
		return "!!"
	case reminder.SeverityWarning:
		return "! "
	default:
		return "- "
	}
}

func formatTime(t time.Time) string {
	return t.Format(timeLayout)
}

// formatRemaining renders d rounded to minutes, e.g. "23h59m".
func formatRemaining(d time.Duration) string {
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}
