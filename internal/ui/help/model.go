// Package help lists the key bindings.
package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lineCode/ner/internal/keys"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
)

// Model is the help view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) *Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return &Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Name implements ui.View.
func (m *Model) Name() string { return "help-view" }

// Status implements ui.View.
func (m *Model) Status() []string { return []string{"q to close"} }

// Init implements ui.View.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements ui.View.
func (m *Model) Update(tea.Msg) tea.Cmd {
	return nil
}

// Render implements ui.View. The help paints itself through View.
func (m *Model) Render(*render.Renderer) {}

// View implements ui.Painter.
func (m *Model) View() string {
	title := theme.HeaderStyle.
		MarginBottom(1).
		Render("Keyboard Shortcuts")

	m.help.Width = m.width - 4
	helpText := m.help.View(m.keys)

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText)

	return theme.BorderStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Padding(0, 1).
		Render(content)
}

// Resize implements ui.View.
func (m *Model) Resize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}

// Close implements ui.View.
func (m *Model) Close() {}
