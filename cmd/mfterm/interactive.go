package main

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	candidateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	sess       *session
	buf        *bytes.Buffer
	input      textinput.Model
	history    []string
	histIdx    int
	candidates []string

	// cancel is set while a command runs.
	cancel context.CancelFunc
}

type execResultMsg struct {
	out string
	err error
}

func newInteractiveModel(s *session, buf *bytes.Buffer) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render("$ ")
	ti.Placeholder = "help"
	ti.Width = 72
	ti.Focus()
	return &interactiveModel{sess: s, buf: buf, input: ti}
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Sequence(
		tea.Println(titleStyle.Render("mfterm")+" MIFARE Classic tag terminal"),
		textinput.Blink,
	)
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(execResultMsg); ok {
		return m.finish(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.running() {
			if msg.String() == "ctrl+c" {
				m.cancel()
			}
			return m, nil
		}

		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			return m, tea.Quit

		case "enter":
			return m.run()

		case "tab":
			m.complete()
			return m, nil

		case "up":
			if m.histIdx > 0 {
				m.histIdx--
				m.input.SetValue(m.history[m.histIdx])
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if m.histIdx < len(m.history)-1 {
				m.histIdx++
				m.input.SetValue(m.history[m.histIdx])
			} else {
				m.histIdx = len(m.history)
				m.input.SetValue("")
			}
			m.input.CursorEnd()
			return m, nil
		}
		m.candidates = nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) running() bool {
	return m.cancel != nil
}

// run echoes the current line and starts executing it.
func (m *interactiveModel) run() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	m.candidates = nil
	if line == "" {
		return m, nil
	}
	if len(m.history) == 0 || m.history[len(m.history)-1] != line {
		m.history = append(m.history, line)
	}
	m.histIdx = len(m.history)

	echo := promptStyle.Render("$ ") + line
	return m, tea.Sequence(tea.Println(echo), m.start(line))
}

// start returns a command that executes line off the update loop. The
// command's context is cancelled by ctrl+c.
func (m *interactiveModel) start(line string) tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return func() tea.Msg {
		m.buf.Reset()
		err := m.sess.exec(ctx, line)
		return execResultMsg{out: m.buf.String(), err: err}
	}
}

// finish prints the output of a completed command above the prompt.
func (m *interactiveModel) finish(msg execResultMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}

	out := strings.TrimRight(msg.out, "\n")
	if msg.err != nil {
		if out != "" {
			out += "\n"
		}
		out += errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
	}

	var cmds []tea.Cmd
	if out != "" {
		cmds = append(cmds, tea.Println(out))
	}
	if m.sess.quit {
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Sequence(cmds...)
}

func (m *interactiveModel) complete() {
	line := m.input.Value()
	cands := completions(m.sess, line)
	m.candidates = nil
	switch len(cands) {
	case 0:
		return
	case 1:
		m.input.SetValue(cands[0])
	default:
		if p := commonPrefix(cands); len(p) > len(line) {
			m.input.SetValue(p)
		} else {
			m.candidates = cands
		}
	}
	m.input.CursorEnd()
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if len(m.candidates) > 0 {
		b.WriteString(candidateStyle.Render(strings.Join(m.candidates, "  ")))
		b.WriteString("\n")
	}
	if m.running() {
		b.WriteString(helpStyle.Render("running • ctrl+c cancel"))
	} else {
		b.WriteString(helpStyle.Render("tab complete • ↑/↓ history • ctrl+c quit"))
	}
	return b.String()
}

// completions returns full replacement lines for line: command names, or
// specification paths after a path-taking command.
func completions(s *session, line string) []string {
	if strings.HasPrefix(line, ".") {
		return s.spec.Complete(line)
	}
	if rest, ok := strings.CutPrefix(line, "copy "); ok {
		var out []string
		for _, p := range s.spec.Complete(strings.TrimLeft(rest, " ")) {
			out = append(out, "copy "+p)
		}
		return out
	}

	var out []string
	for _, c := range commands {
		if c.name != "." && strings.HasPrefix(c.name, line) {
			out = append(out, c.name)
		}
	}
	sort.Strings(out)
	return out
}

func commonPrefix(ss []string) string {
	p := ss[0]
	for _, s := range ss[1:] {
		for !strings.HasPrefix(s, p) {
			p = p[:len(p)-1]
		}
	}
	return p
}

func runInteractive(s *session) error {
	var buf bytes.Buffer
	s.out = &buf
	p := tea.NewProgram(newInteractiveModel(s, &buf))
	_, err := p.Run()
	return err
}
