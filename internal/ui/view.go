// Package ui holds what every view shares: the View capability interface,
// the explicit Context views are built with, the messages they exchange
// with the root model, and the LineBrowser most of them embed.
package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/keys"
	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
)

// View is one screen in the view stack. Views draw into the cell grid the
// root model hands them; key messages reach only the active view, every
// other message is offered to all views so background results find their
// owner.
type View interface {
	// Name is shown in brackets at the start of the status bar.
	Name() string

	// Status lists the status bar entries, most important first.
	Status() []string

	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	Render(r *render.Renderer)
	Resize(width, height int)

	// Close releases background work owned by the view. The view is not
	// used afterwards.
	Close()
}

// Painter is implemented by views that draw themselves as a styled string
// instead of into the cell grid.
type Painter interface {
	View() string
}

// InputCapturer is implemented by views that consume printable keys as
// text, such as forms. While it reports true the root model only handles
// quit.
type InputCapturer interface {
	CapturesInput() bool
}

// Refresher is implemented by views that can re-run their query when the
// index changes or the refresh timer fires.
type Refresher interface {
	Refresh() tea.Cmd
}

// Context carries the collaborators views need. It replaces global state:
// every view receives it at construction.
type Context struct {
	// Base bounds background work started by views. It is cancelled when
	// the program exits.
	Base context.Context

	Index   index.Index
	Config  *model.AppConfig
	Palette *theme.Palette
	Keys    *keys.KeyMap

	// Now returns the current time; tests pin it.
	Now func() time.Time
}

// Clock returns ctx.Now or time.Now when unset.
func (c *Context) Clock() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Sort returns the configured result order.
func (c *Context) Sort() model.SortOrder {
	if c.Config == nil {
		return model.SortNewestFirst
	}
	return c.Config.SortOrder()
}
