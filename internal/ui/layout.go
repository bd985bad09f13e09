package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Layout manages the terminal layout dimensions: the active view on top,
// then the status bar, then the message line.
type Layout struct {
	Width             int
	Height            int
	StatusBarHeight   int
	MessageLineHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// StatusBarHeight and MessageLineHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:             width,
		Height:            height,
		StatusBarHeight:   1,
		MessageLineHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height available for the active view,
// accounting for the status bar and message line.
func (l Layout) ContentHeight() int {
	return max(l.Height-l.StatusBarHeight-l.MessageLineHeight, 0)
}

// Fit pads or crops a painted view to exactly the content area.
func (l Layout) Fit(content string) string {
	return lipgloss.NewStyle().
		Width(l.ContentWidth()).
		Height(l.ContentHeight()).
		MaxWidth(l.ContentWidth()).
		MaxHeight(l.ContentHeight()).
		Render(content)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the content area, the status bar and the message line.
func (l Layout) RenderWithFrame(
	content string,
	statusBar string,
	messageLine string,
) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		statusBar,
		messageLine,
	)
}
