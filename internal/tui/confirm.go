package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no prompt listing the items an action will affect.
type ConfirmModel struct {
	title     string
	items     []string
	keys      KeyMap
	confirmed bool
	done      bool
}

// NewConfirmModel creates a prompt with the default key bindings.
func NewConfirmModel(title string, items []string) ConfirmModel {
	return ConfirmModel{
		title: title,
		items: items,
		keys:  DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Cancel):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

// View implements tea.Model.
func (m ConfirmModel) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(m.title))
	b.WriteString("\n")
	for _, item := range m.items {
		b.WriteString(ItemStyle.Render(SymbolBullet + " " + item))
		b.WriteString("\n")
	}

	if m.done {
		if m.confirmed {
			b.WriteString(SuccessStyle.Render(SymbolCheck + " Confirmed"))
		} else {
			b.WriteString(ErrorStyle.Render(SymbolCross + " Cancelled"))
		}
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(HelpStyle.Render(m.keys.HelpText()))
	b.WriteString("\n")
	return b.String()
}

// Confirmed reports whether the user accepted.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Done reports whether the user answered.
func (m ConfirmModel) Done() bool {
	return m.done
}
