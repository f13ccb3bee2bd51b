// Package tui renders install progress as a live step list.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Fomo-Driven-Development/strategic-claude-base/internal/ui"
)

type stepState int

const (
	statePending stepState = iota
	stateRunning
	stateDone
	stateFailed
)

// StepMsg reports a status change for one install step.
type StepMsg struct {
	Step   string
	Status string
}

// DoneMsg ends the program; Err carries the install outcome.
type DoneMsg struct {
	Err error
}

type Model struct {
	steps   []string
	states  map[string]stepState
	reasons map[string]string
	spin    spinner.Model
	msgs    <-chan tea.Msg
	err     error
	done    bool
}

// NewModel builds the progress model over the ordered step list; the
// installer feeds msgs from its progress callback.
func NewModel(steps []string, msgs <-chan tea.Msg) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	states := make(map[string]stepState, len(steps))
	for _, st := range steps {
		states[st] = statePending
	}
	return Model{
		steps:   steps,
		states:  states,
		reasons: make(map[string]string),
		spin:    s,
		msgs:    msgs,
	}
}

// Err returns the install outcome once the program has quit.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForMsg(m.msgs))
}

func waitForMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StepMsg:
		switch {
		case msg.Status == "installing":
			m.states[msg.Step] = stateRunning
		case msg.Status == "done":
			m.states[msg.Step] = stateDone
		case strings.HasPrefix(msg.Status, "error:"):
			m.states[msg.Step] = stateFailed
			m.reasons[msg.Step] = strings.TrimPrefix(msg.Status, "error:")
		}
		return m, waitForMsg(m.msgs)

	case DoneMsg:
		m.err = msg.Err
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = fmt.Errorf("interrupted")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n  " + ui.Render(ui.Title, "strategic install") + "\n\n")
	for _, step := range m.steps {
		switch m.states[step] {
		case stateRunning:
			fmt.Fprintf(&b, "  %s %s\n", m.spin.View(), step)
		case stateDone:
			fmt.Fprintf(&b, "  %s %s\n", ui.Render(ui.Success, "✓"), step)
		case stateFailed:
			fmt.Fprintf(&b, "  %s %s (%s)\n", ui.Render(ui.Error, "✗"), step, m.reasons[step])
		default:
			fmt.Fprintf(&b, "  %s %s\n", ui.Render(ui.Muted, "·"), step)
		}
	}
	if m.done && m.err == nil {
		b.WriteString("\n  " + ui.Render(ui.Success, "install complete") + "\n")
	}
	return b.String()
}
