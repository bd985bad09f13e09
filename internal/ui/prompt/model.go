// Package prompt reads one line of text on the message line.
package prompt

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/keys"
	"github.com/lineCode/ner/internal/theme"
)

// SubmittedMsg is emitted when the user presses enter.
type SubmittedMsg struct {
	Text string
}

// CancelledMsg is emitted when the user abandons the prompt.
type CancelledMsg struct{}

// Model is the single-line prompt.
type Model struct {
	input textinput.Model
	keys  *keys.KeyMap
	width int
}

// New creates a focused prompt showing label before the input.
func New(label string, km *keys.KeyMap, palette *theme.Palette, width int) Model {
	ti := textinput.New()
	ti.Prompt = label
	ti.PromptStyle = palette.Style(theme.ColorStatusBarPrompt)
	ti.Focus()
	ti.Width = max(width-len(label)-1, 1)

	return Model{
		input: ti,
		keys:  km,
		width: width,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Value returns the text entered so far.
func (m Model) Value() string {
	return m.input.Value()
}

// Update handles messages for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case msg.Type == tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			return m, func() tea.Msg { return SubmittedMsg{Text: text} }
		case key.Matches(msg, m.keys.Cancel), msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyCtrlG:
			m.input.Reset()
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt.
func (m Model) View() string {
	return m.input.View()
}

// SetWidth updates the prompt width.
func (m *Model) SetWidth(width int) {
	m.width = width
	m.input.Width = max(width-len(m.input.Prompt)-1, 1)
}
