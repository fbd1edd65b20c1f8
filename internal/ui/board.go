package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todo-cli/internal/reminder"
	"github.com/nibzard/todo-cli/internal/todo"
)

// BoardData is one snapshot shown by the board.
type BoardData struct {
	User      string
	Todos     []todo.Todo
	Reminders []reminder.Reminder
	Summary   reminder.Summary
}

// BoardLoader fetches a fresh snapshot.
type BoardLoader func() (BoardData, error)

// BoardOption configures the board.
type BoardOption func(*boardConfig)

type boardConfig struct {
	refresh   time.Duration
	altScreen bool
}

// WithRefreshInterval sets how often the board reloads.
func WithRefreshInterval(d time.Duration) BoardOption {
	return func(c *boardConfig) {
		if d > 0 {
			c.refresh = d
		}
	}
}

// WithAltScreen draws the board on the terminal's alternate screen.
func WithAltScreen(enabled bool) BoardOption {
	return func(c *boardConfig) { c.altScreen = enabled }
}

// RunBoard shows a live view of the user's todos until q is pressed.
func RunBoard(ctx context.Context, load BoardLoader, in io.Reader, out io.Writer, styles Styles, opts ...BoardOption) error {
	c := &boardConfig{refresh: 5 * time.Second, altScreen: true}
	for _, opt := range opts {
		opt(c)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out)}
	if c.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	_, err := tea.NewProgram(newBoardModel(load, styles, c.refresh), programOpts...).Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

type boardModel struct {
	load         BoardLoader
	styles       Styles
	loadErr      error
	data         *BoardData
	filter       todo.Status
	showHelp     bool
	tickInterval time.Duration
}

type tickMsg time.Time

func newBoardModel(load BoardLoader, styles Styles, interval time.Duration) *boardModel {
	return &boardModel{load: load, styles: styles, tickInterval: interval}
}

func (m *boardModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "r", "f5":
			m.refresh()
		case "h", "?":
			m.showHelp = !m.showHelp
		case "1":
			m.filter = todo.StatusPending
		case "2":
			m.filter = todo.StatusCompleted
		case "0":
			m.filter = ""
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *boardModel) View() string {
	var b strings.Builder
	m.writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		m.writeFooter(&b)
		return b.String()
	}

	if m.filter != "" {
		b.WriteString(fmt.Sprintf("Filter: %s (0 to clear)\n\n", m.filter))
	}

	if m.loadErr != nil {
		b.WriteString("Error loading todos:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		m.writeFooter(&b)
		return b.String()
	}
	if m.data == nil {
		b.WriteString("Loading...\n\n")
		m.writeFooter(&b)
		return b.String()
	}

	m.writeOverview(&b)
	m.writeReminders(&b)
	m.writeTodos(&b)
	m.writeFooter(&b)
	return b.String()
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *boardModel) refresh() {
	data, err := m.load()
	if err != nil {
		m.loadErr = err
		m.data = nil
		return
	}
	m.loadErr = nil
	m.data = &data
}

func (m *boardModel) writeTitle(b *strings.Builder) {
	title := "Todo Board"
	if m.data != nil && m.data.User != "" {
		title += " - " + m.data.User
	}
	b.WriteString(m.styles.Title.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func (m *boardModel) writeOverview(b *strings.Builder) {
	s := m.data.Summary
	b.WriteString(m.styles.Heading.Render("Overview") + "\n\n")
	b.WriteString(fmt.Sprintf("  Pending: %d  Completed today: %d  Due today: %d  Overdue: %d\n\n",
		s.Pending, s.CompletedToday, s.DueToday, s.Overdue))
}

func (m *boardModel) writeReminders(b *strings.Builder) {
	b.WriteString(m.styles.Heading.Render("Reminders") + "\n\n")
	if len(m.data.Reminders) == 0 {
		b.WriteString("  Nothing needs attention.\n\n")
		return
	}
	for _, r := range m.data.Reminders {
		b.WriteString("  " + m.styles.Severity(r.Severity).Render(r.Message) + "\n")
	}
	b.WriteString("\n")
}

func (m *boardModel) writeTodos(b *strings.Builder) {
	b.WriteString(m.styles.Heading.Render("Todos") + "\n\n")
	shown := 0
	for _, t := range m.data.Todos {
		if m.filter != "" && t.Status != m.filter {
			continue
		}
		b.WriteString(formatTodo(t, m.styles) + "\n")
		shown++
	}
	if shown == 0 {
		b.WriteString("  No todos.\n")
	}
	b.WriteString("\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, esc, ctrl+c  Quit\n")
	b.WriteString("  r, F5           Refresh data\n")
	b.WriteString("  h, ?            Toggle this help screen\n")
	b.WriteString("  1               Show pending only\n")
	b.WriteString("  2               Show completed only\n")
	b.WriteString("  0               Clear filter\n\n")
}

func (m *boardModel) writeFooter(b *strings.Builder) {
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s", m.tickInterval)) + "\n")
}

func formatTodo(t todo.Todo, styles Styles) string {
	statusIcon := " "
	if t.Status == todo.StatusCompleted {
		statusIcon = "x"
	}

	line := fmt.Sprintf("  [%s] %s %s %s", statusIcon, t.ShortID(),
		styles.Priority(t.Priority).Render(fmt.Sprintf("%-6s", t.Priority)), t.Title)
	if t.DueDate != nil {
		line += styles.Muted.Render(" (due " + t.DueDate.String() + ")")
	}
	return line
}
