package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/nibzard/todo-cli/internal/reminder"
	"github.com/nibzard/todo-cli/internal/todo"
)

// Styles holds the lipgloss styles used for command output and the board.
type Styles struct {
	Title    lipgloss.Style
	Heading  lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Critical lipgloss.Style
	Info     lipgloss.Style
	Selected lipgloss.Style

	PriorityHigh   lipgloss.Style
	PriorityMedium lipgloss.Style
	PriorityLow    lipgloss.Style
}

// NewStyles returns styles rendered for w. When noColor is set, or w is not a
// terminal, every style renders plain text.
func NewStyles(w io.Writer, noColor bool) Styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}
	return Styles{
		Title:          r.NewStyle().Bold(true),
		Heading:        r.NewStyle().Bold(true).Underline(true),
		Muted:          r.NewStyle().Foreground(lipgloss.Color("8")),
		Success:        r.NewStyle().Foreground(lipgloss.Color("2")),
		Warning:        r.NewStyle().Foreground(lipgloss.Color("3")),
		Critical:       r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Info:           r.NewStyle().Foreground(lipgloss.Color("4")),
		Selected:       r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		PriorityHigh:   r.NewStyle().Foreground(lipgloss.Color("1")),
		PriorityMedium: r.NewStyle().Foreground(lipgloss.Color("3")),
		PriorityLow:    r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// Priority returns the style for p.
func (s Styles) Priority(p todo.Priority) lipgloss.Style {
	switch p {
	case todo.PriorityHigh:
		return s.PriorityHigh
	case todo.PriorityLow:
		return s.PriorityLow
	default:
		return s.PriorityMedium
	}
}

// Severity returns the style for a reminder severity.
func (s Styles) Severity(sev reminder.Severity) lipgloss.Style {
	switch sev {
	case reminder.SeverityCritical:
		return s.Critical
	case reminder.SeverityWarning:
		return s.Warning
	default:
		return s.Info
	}
}
