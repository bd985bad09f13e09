// Package viewlist shows the open views so one can be focused or closed.
package viewlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
	"github.com/lineCode/ner/internal/ui"
)

const (
	numberWidth = 4
	nameWidth   = 25
)

// Lister exposes the open views in stack order.
type Lister interface {
	Views() []ui.View
}

// Model is the view list.
type Model struct {
	ctx     *ui.Context
	lister  Lister
	browser ui.LineBrowser
}

// New creates a view list over the views of lister.
func New(ctx *ui.Context, lister Lister) *Model {
	m := &Model{ctx: ctx, lister: lister}
	m.browser.Resize(20)
	return m
}

// views returns the open views except the list itself.
func (m *Model) views() []ui.View {
	var out []ui.View
	for _, v := range m.lister.Views() {
		if v != ui.View(m) {
			out = append(out, v)
		}
	}
	return out
}

// Name implements ui.View.
func (m *Model) Name() string { return "view-view" }

// Status implements ui.View.
func (m *Model) Status() []string {
	return []string{ui.Position("view", m.browser.Selected, len(m.views()), "no views")}
}

// Init implements ui.View.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.View.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	views := m.views()
	if m.browser.HandleKey(km, m.ctx.Keys, len(views)) {
		return nil
	}
	if len(views) == 0 {
		return nil
	}
	m.browser.Clamp(len(views))
	selected := views[m.browser.Selected]

	switch {
	case key.Matches(km, m.ctx.Keys.Select):
		return tea.Batch(ui.CloseView(m), ui.Focus(selected))
	case key.Matches(km, m.ctx.Keys.CloseView):
		if len(views) <= 1 {
			return ui.Status("This is the last view left, use Q to quit")
		}
		m.browser.Selected = min(m.browser.Selected, len(views)-2)
		m.browser.MakeSelectionVisible()
		return ui.CloseView(selected)
	}
	return nil
}

// Render implements ui.View.
func (m *Model) Render(r *render.Renderer) {
	views := m.views()
	last := min(m.browser.Last(), len(views))
	for i := m.browser.Offset; i < last; i++ {
		v := views[i]

		r.MoveTo(i-m.browser.Offset, 0)
		var attr render.Attr
		if i == m.browser.Selected {
			attr = render.AttrReverse
		}
		r.SetLineAttributes(attr)

		r.SetMaxWidth(numberWidth - 1)
		r.Print(render.Styled(fmt.Sprintf("%2d.", i), theme.ColorViewViewNumber))
		r.Advance(numberWidth)

		r.SetMaxWidth(nameWidth - 1)
		r.Print(render.Styled(v.Name(), theme.ColorViewViewName))
		r.Advance(nameWidth)

		r.SetMaxWidth(render.Unlimited)
		if status := v.Status(); len(status) > 0 {
			r.Print(render.Styled(status[0], theme.ColorViewViewStatus))
		}
		r.AddTruncationMarker()
	}
}

// Resize implements ui.View.
func (m *Model) Resize(width, height int) {
	m.browser.Resize(height)
}

// Close implements ui.View.
func (m *Model) Close() {}
