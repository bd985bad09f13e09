// Package thread shows the messages of one conversation as a reply tree.
package thread

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/ui"
	"github.com/lineCode/ner/internal/ui/compose"
	"github.com/lineCode/ner/internal/ui/message"
)

// loadedMsg carries a reloaded thread back to the view that asked.
type loadedMsg struct {
	owner  *Model
	thread *model.Thread
	err    error
}

// Model is the thread view.
type Model struct {
	ctx     *ui.Context
	thread  *model.Thread
	count   int
	browser ui.LineBrowser
}

// New creates a thread view. The first unread message is selected.
func New(ctx *ui.Context, th *model.Thread) *Model {
	m := &Model{ctx: ctx}
	m.setThread(th)
	if i := th.Messages.Index(func(msg model.Message) bool { return msg.HasTag(model.TagUnread) }); i >= 0 {
		m.browser.Selected = i
	}
	m.browser.Resize(20)
	return m
}

// Load returns a command that reads thread id from the index and opens
// it.
func Load(ctx *ui.Context, id string) tea.Cmd {
	return func() tea.Msg {
		th, err := ctx.Index.Thread(ctx.Base, id)
		if err != nil {
			return ui.ErrorMsg{Err: err}
		}
		return ui.OpenViewMsg{View: New(ctx, th)}
	}
}

func (m *Model) setThread(th *model.Thread) {
	m.thread = th
	m.count = th.Messages.Len()
	m.browser.Clamp(m.count)
}

// Name implements ui.View.
func (m *Model) Name() string { return "thread-view" }

// Status implements ui.View.
func (m *Model) Status() []string {
	return []string{
		"thread:" + m.thread.Summary.ID,
		ui.Position("message", m.browser.Selected, m.count, "no messages"),
	}
}

// Selected returns the selected message.
func (m *Model) Selected() (model.Message, bool) {
	n := m.thread.Messages.At(m.browser.Selected)
	if n == nil {
		return model.Message{}, false
	}
	return n.Value, true
}

// Init implements ui.View.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.View.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.owner != m {
			return nil
		}
		if msg.err != nil {
			return ui.Error(msg.err)
		}
		m.setThread(msg.thread)
		return nil

	case ui.IndexChangedMsg:
		return m.Refresh()

	case tea.KeyMsg:
		if m.browser.HandleKey(msg, m.ctx.Keys, m.count) {
			return nil
		}
		switch {
		case key.Matches(msg, m.ctx.Keys.Select):
			return m.open()
		case key.Matches(msg, m.ctx.Keys.Reply):
			if sel, ok := m.Selected(); ok {
				return compose.Reply(m.ctx, sel)
			}
		}
	}
	return nil
}

// Refresh implements ui.Refresher by reloading the thread.
func (m *Model) Refresh() tea.Cmd {
	id := m.thread.Summary.ID
	return func() tea.Msg {
		th, err := m.ctx.Index.Thread(m.ctx.Base, id)
		return loadedMsg{owner: m, thread: th, err: err}
	}
}

// open opens the selected message and marks it read.
func (m *Model) open() tea.Cmd {
	sel, ok := m.Selected()
	if !ok {
		return nil
	}
	cmds := []tea.Cmd{message.Load(m.ctx, sel)}
	if sel.HasTag(model.TagUnread) {
		cmds = append(cmds, func() tea.Msg {
			err := m.ctx.Index.ModifyTags(m.ctx.Base, []string{sel.ID}, nil, []string{model.TagUnread})
			if err != nil {
				return ui.ErrorMsg{Err: fmt.Errorf("marking %s read: %w", sel.ID, err)}
			}
			return ui.IndexChangedMsg{}
		})
	}
	return tea.Batch(cmds...)
}

// Render implements ui.View.
func (m *Model) Render(r *render.Renderer) {
	Renderer{
		Selected: m.browser.Selected,
		Offset:   m.browser.Offset,
		Now:      m.ctx.Clock(),
	}.Draw(r, m.thread.Messages)
}

// Resize implements ui.View.
func (m *Model) Resize(width, height int) {
	m.browser.Resize(height)
}

// Close implements ui.View.
func (m *Model) Close() {}
