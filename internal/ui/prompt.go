// Package ui provides the interactive terminal pieces: bubbletea prompts, the
// todo board, output styles and TTY detection.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the user backs out of a prompt.
var ErrCancelled = errors.New("cancelled")

// Prompter asks the user for input.
type Prompter interface {
	// Select returns the index of the chosen option.
	Select(ctx context.Context, title string, options []string) (int, error)
	// Input reads one line of text. def is returned when the line is empty.
	Input(ctx context.Context, prompt, def string) (string, error)
	// Password reads one line without echoing it.
	Password(ctx context.Context, prompt string) (string, error)
}

// TeaPrompter implements Prompter with bubbletea programs.
type TeaPrompter struct {
	In     io.Reader
	Out    io.Writer
	Styles Styles
}

// NewTeaPrompter returns a prompter reading from in and drawing to out.
func NewTeaPrompter(in io.Reader, out io.Writer, styles Styles) *TeaPrompter {
	return &TeaPrompter{In: in, Out: out, Styles: styles}
}

// Select implements Prompter.
func (p *TeaPrompter) Select(ctx context.Context, title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, fmt.Errorf("select %q: no options", title)
	}
	m, err := p.run(ctx, newSelectModel(title, options, p.Styles))
	if err != nil {
		return -1, err
	}
	sm := m.(*selectModel)
	if sm.cancelled || !sm.chosen {
		return -1, ErrCancelled
	}
	return sm.cursor, nil
}

// Input implements Prompter.
func (p *TeaPrompter) Input(ctx context.Context, prompt, def string) (string, error) {
	m, err := p.run(ctx, newInputModel(prompt, def, false, p.Styles))
	if err != nil {
		return "", err
	}
	return m.(*inputModel).result()
}

// Password implements Prompter.
func (p *TeaPrompter) Password(ctx context.Context, prompt string) (string, error) {
	m, err := p.run(ctx, newInputModel(prompt, "", true, p.Styles))
	if err != nil {
		return "", err
	}
	return m.(*inputModel).result()
}

func (p *TeaPrompter) run(ctx context.Context, model tea.Model) (tea.Model, error) {
	program := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(p.In),
		tea.WithOutput(p.Out),
	)
	final, err := program.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	return final, nil
}

type selectModel struct {
	title     string
	options   []string
	cursor    int
	chosen    bool
	cancelled bool
	styles    Styles
}

func newSelectModel(title string, options []string, styles Styles) *selectModel {
	return &selectModel{title: title, options: options, styles: styles}
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.options) - 1
		}
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.options)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.options) - 1
	case "enter", " ":
		m.chosen = true
		return m, tea.Quit
	default:
		// Digits jump straight to an option.
		if r := key.Runes; len(r) == 1 && r[0] >= '1' && r[0] <= '9' {
			if i := int(r[0] - '1'); i < len(m.options) {
				m.cursor = i
				m.chosen = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m *selectModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render(m.title) + "\n\n")
	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> "+opt) + "\n")
			continue
		}
		b.WriteString("  " + opt + "\n")
	}
	if m.chosen || m.cancelled {
		return b.String()
	}
	b.WriteString("\n" + m.styles.Muted.Render("up/down to move, enter to choose, esc to cancel") + "\n")
	return b.String()
}

type inputModel struct {
	prompt    string
	def       string
	masked    bool
	value     []rune
	done      bool
	cancelled bool
	styles    Styles
}

func newInputModel(prompt, def string, masked bool, styles Styles) *inputModel {
	return &inputModel{prompt: prompt, def: def, masked: masked, styles: styles}
}

func (m *inputModel) Init() tea.Cmd { return nil }

func (m *inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyEnter:
		m.done = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.value) > 0 {
			m.value = m.value[:len(m.value)-1]
		}
	case tea.KeyCtrlU:
		m.value = nil
	case tea.KeySpace:
		m.value = append(m.value, ' ')
	case tea.KeyRunes:
		m.value = append(m.value, key.Runes...)
	}
	return m, nil
}

func (m *inputModel) View() string {
	shown := string(m.value)
	if m.masked {
		shown = strings.Repeat("*", len(m.value))
	}
	line := m.styles.Title.Render(m.prompt) + " "
	if len(m.value) == 0 && m.def != "" && !m.done {
		line += m.styles.Muted.Render("(" + m.def + ") ")
	}
	line += shown
	if m.done || m.cancelled {
		return line + "\n"
	}
	return line + "_\n"
}

func (m *inputModel) result() (string, error) {
	if m.cancelled || !m.done {
		return "", ErrCancelled
	}
	if len(m.value) == 0 {
		return m.def, nil
	}
	return string(m.value), nil
}
