package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/keys"
)

// LineBrowser is the selection and scroll state of a list of lines. The
// lines themselves live with the owning view, so every movement takes the
// current line count.
type LineBrowser struct {
	Selected int
	Offset   int

	// Visible is the number of lines that fit on screen.
	Visible int
}

// Next selects the following line, if any.
func (b *LineBrowser) Next(count int) {
	if b.Selected < count-1 {
		b.Selected++
	}
	b.MakeSelectionVisible()
}

// Previous selects the preceding line, if any.
func (b *LineBrowser) Previous() {
	if b.Selected > 0 {
		b.Selected--
	}
	b.MakeSelectionVisible()
}

// NextPage moves the selection down by a screen, keeping one line of
// overlap.
func (b *LineBrowser) NextPage(count int) {
	if b.Selected+b.Visible >= count {
		b.Selected = max(count-1, 0)
	} else {
		b.Selected += b.step()
	}
	b.MakeSelectionVisible()
}

// PreviousPage moves the selection up by a screen, keeping one line of
// overlap.
func (b *LineBrowser) PreviousPage() {
	if b.Visible > b.Selected {
		b.Selected = 0
	} else {
		b.Selected -= b.step()
	}
	b.MakeSelectionVisible()
}

// Top selects the first line.
func (b *LineBrowser) Top() {
	b.Selected = 0
	b.MakeSelectionVisible()
}

// Bottom selects the last line.
func (b *LineBrowser) Bottom(count int) {
	b.Selected = max(count-1, 0)
	b.MakeSelectionVisible()
}

// Clamp pulls the selection back into [0, count-1] after the list shrank.
func (b *LineBrowser) Clamp(count int) {
	if b.Selected >= count {
		b.Selected = count - 1
	}
	if b.Selected < 0 {
		b.Selected = 0
	}
	b.MakeSelectionVisible()
}

// MakeSelectionVisible scrolls the least amount needed to show the
// selected line.
func (b *LineBrowser) MakeSelectionVisible() {
	if b.Selected < b.Offset {
		b.Offset = b.Selected
	} else if b.Visible > 0 && b.Selected >= b.Offset+b.Visible {
		b.Offset = b.Selected - b.Visible + 1
	}
}

// Resize sets the number of visible lines.
func (b *LineBrowser) Resize(visible int) {
	b.Visible = max(visible, 0)
	b.MakeSelectionVisible()
}

// Last returns one past the last line index on screen.
func (b *LineBrowser) Last() int {
	return b.Offset + b.Visible
}

func (b *LineBrowser) step() int {
	return max(b.Visible-1, 1)
}

// HandleKey applies a navigation key and reports whether msg was one.
func (b *LineBrowser) HandleKey(msg tea.KeyMsg, km *keys.KeyMap, count int) bool {
	switch {
	case key.Matches(msg, km.Down):
		b.Next(count)
	case key.Matches(msg, km.Up):
		b.Previous()
	case key.Matches(msg, km.PageDown):
		b.NextPage(count)
	case key.Matches(msg, km.PageUp):
		b.PreviousPage()
	case key.Matches(msg, km.Top):
		b.Top()
	case key.Matches(msg, km.Bottom):
		b.Bottom(count)
	default:
		return false
	}
	return true
}

// Status describes the selection, e.g. "line 3 of 10".
func (b *LineBrowser) Status(count int) string {
	return Position("line", b.Selected, count, "no lines")
}

// Position formats a 1-based position, or empty when count is zero.
func Position(noun string, selected, count int, empty string) string {
	if count == 0 {
		return empty
	}
	return fmt.Sprintf("%s %d of %d", noun, selected+1, count)
}
