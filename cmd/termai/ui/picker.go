package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"termai/internal/logging"
	"termai/internal/session"
)

const (
	pickerWidth     = 60
	pickerMaxHeight = 20
)

// choiceItem adapts a string to list.Item
type choiceItem string

func (i choiceItem) Title() string       { return string(i) }
func (i choiceItem) Description() string { return "" }
func (i choiceItem) FilterValue() string { return string(i) }

// pickerModel lets the user choose one entry with arrows, filter and Enter.
type pickerModel struct {
	list     list.Model
	choices  []string
	chosen   int
	canceled bool
}

func newPickerModel(title string, choices []string, styles Styles) pickerModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = choiceItem(c)
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)

	height := len(choices) + 6
	if height > pickerMaxHeight {
		height = pickerMaxHeight
	}

	l := list.New(items, delegate, pickerWidth, height)
	l.Title = title
	l.SetShowHelp(false)
	l.SetShowStatusBar(len(choices) > height-6)
	l.SetFilteringEnabled(true)
	l.Styles.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.Theme.Primary)

	return pickerModel{list: l, choices: choices, chosen: -1}
}

// Init initializes the model.
func (m pickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width < pickerWidth {
			m.list.SetWidth(msg.Width)
		}
	case tea.KeyMsg:
		// While filtering, keys belong to the filter input.
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "esc", "q":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			// Index() is relative to the filtered view; map back to choices.
			if item, ok := m.list.SelectedItem().(choiceItem); ok {
				for i, c := range m.choices {
					if c == string(item) {
						m.chosen = i
						break
					}
				}
			}
			if m.chosen < 0 {
				return m, nil
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the model.
func (m pickerModel) View() string {
	if m.canceled || m.chosen >= 0 {
		return ""
	}
	return m.list.View()
}

func (t *Terminal) runPicker(ctx context.Context, title string, choices []string) (int, error) {
	p := tea.NewProgram(newPickerModel(title, choices, t.styles),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithContext(ctx),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return -1, ctx.Err()
		}
		return -1, fmt.Errorf("picker failed: %w", err)
	}

	m := final.(pickerModel)
	if m.canceled || m.chosen < 0 {
		return -1, session.ErrInterrupted
	}
	logging.UIDebug("Picked %q", choices[m.chosen])
	return m.chosen, nil
}
