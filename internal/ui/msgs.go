package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// OpenViewMsg pushes View onto the view stack and makes it active.
type OpenViewMsg struct {
	View View
}

// CloseViewMsg closes View, or the active view when View is nil.
type CloseViewMsg struct {
	View View
}

// FocusViewMsg makes an already open view active.
type FocusViewMsg struct {
	View View
}

// StatusMsg shows Text on the message line.
type StatusMsg struct {
	Text string
}

// ErrorMsg shows Err on the message line.
type ErrorMsg struct {
	Err error
}

// PromptMsg asks the user for a line of text on the message line. Submit
// is called with the entered text unless the prompt is cancelled.
type PromptMsg struct {
	Prompt string
	Submit func(text string) tea.Cmd
}

// IndexChangedMsg reports that tags or messages in the index changed, so
// views showing index data should reload. Status, when set, is shown on
// the message line.
type IndexChangedMsg struct {
	Status string
}

// Open returns a command that opens v.
func Open(v View) tea.Cmd {
	return func() tea.Msg { return OpenViewMsg{View: v} }
}

// CloseView returns a command that closes v.
func CloseView(v View) tea.Cmd {
	return func() tea.Msg { return CloseViewMsg{View: v} }
}

// Focus returns a command that makes v active.
func Focus(v View) tea.Cmd {
	return func() tea.Msg { return FocusViewMsg{View: v} }
}

// Status returns a command that shows text on the message line.
func Status(text string) tea.Cmd {
	return func() tea.Msg { return StatusMsg{Text: text} }
}

// Error returns a command that shows err on the message line.
func Error(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

// Prompt returns a command that asks for a line of text.
func Prompt(prompt string, submit func(string) tea.Cmd) tea.Cmd {
	return func() tea.Msg { return PromptMsg{Prompt: prompt, Submit: submit} }
}

// IndexChanged returns a command reporting an index change.
func IndexChanged(status string) tea.Cmd {
	return func() tea.Msg { return IndexChangedMsg{Status: status} }
}
