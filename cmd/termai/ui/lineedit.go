package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// lineModel is a single-line editor with history and Tab completion.
type lineModel struct {
	input   textinput.Model
	prompt  string
	history []string

	// histIdx == len(history) means editing a fresh line; draft keeps it.
	histIdx int
	draft   string

	value       string
	done        bool
	interrupted bool
}

func newLineModel(prompt string, history, completions []string) lineModel {
	ti := textinput.New()
	ti.Prompt = prompt
	ti.Focus()
	if len(completions) > 0 {
		ti.ShowSuggestions = true
		ti.SetSuggestions(completions)
	}
	return lineModel{
		input:   ti,
		prompt:  prompt,
		history: history,
		histIdx: len(history),
	}
}

// Init initializes the model.
func (m lineModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m lineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC:
			m.interrupted = true
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlD:
			if m.input.Value() == "" {
				m.interrupted = true
				m.done = true
				return m, tea.Quit
			}
		case tea.KeyEnter:
			m.value = m.input.Value()
			m.done = true
			return m, tea.Quit
		case tea.KeyUp:
			m.recall(-1)
			return m, nil
		case tea.KeyDown:
			m.recall(1)
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// recall moves through history by delta, restoring the draft past the end.
func (m *lineModel) recall(delta int) {
	if len(m.history) == 0 {
		return
	}
	next := m.histIdx + delta
	if next < 0 || next > len(m.history) {
		return
	}
	if m.histIdx == len(m.history) {
		m.draft = m.input.Value()
	}
	m.histIdx = next
	if next == len(m.history) {
		m.input.SetValue(m.draft)
	} else {
		m.input.SetValue(m.history[next])
	}
	m.input.CursorEnd()
}

// View renders the model. The finished line stays in the scrollback.
func (m lineModel) View() string {
	if m.done {
		if m.interrupted {
			return m.prompt + "\n"
		}
		return m.prompt + m.value + "\n"
	}
	return m.input.View()
}
