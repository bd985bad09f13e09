// Package search lists the threads matching a query. Results stream in
// from a background session while the view stays responsive.
package search

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/stream"
	"github.com/lineCode/ner/internal/theme"
	"github.com/lineCode/ner/internal/timeutil"
	"github.com/lineCode/ner/internal/ui"
	"github.com/lineCode/ner/internal/ui/thread"
)

// progressInterval is how often a running search redraws.
const progressInterval = 100 * time.Millisecond

// Field widths, each including the gap to the next field.
const (
	dateWidth    = 13
	countWidth   = 8
	authorsWidth = 20
)

// progressMsg asks the owning view to redraw and, while the session is
// still running, to schedule another tick.
type progressMsg struct {
	owner      *Model
	generation int
}

// reselectMsg carries the selection found after a refresh.
type reselectMsg struct {
	owner      *Model
	generation int
	index      int
}

// Model is the search results view.
type Model struct {
	ctx     *ui.Context
	stream  *stream.Stream
	browser ui.LineBrowser
}

// New creates a search view for query and starts the search.
func New(ctx *ui.Context, query string) *Model {
	m := &Model{
		ctx:    ctx,
		stream: stream.New(ctx.Index, query, ctx.Sort()),
	}
	m.browser.Resize(20)
	m.stream.Restart(ctx.Base)
	return m
}

// Query returns the search terms.
func (m *Model) Query() string { return m.stream.Query() }

// Name implements ui.View.
func (m *Model) Name() string { return "search-view" }

// Status implements ui.View.
func (m *Model) Status() []string {
	sess := m.stream.Session()
	status := []string{
		fmt.Sprintf("search-terms: %q", m.stream.Query()),
		ui.Position("thread", m.browser.Selected, sess.Len(), "no matching threads"),
	}
	if sess.State() == stream.Running {
		status = append(status, "(searching)")
	}
	return status
}

// Selected returns the selected thread, if it has arrived.
func (m *Model) Selected() (model.ThreadSummary, bool) {
	return m.stream.Session().At(m.browser.Selected)
}

// Init implements ui.View. It waits off the UI loop until the screen is
// filled or the search ends.
func (m *Model) Init() tea.Cmd {
	return m.fill()
}

func (m *Model) fill() tea.Cmd {
	sess := m.stream.Session()
	gen := m.stream.Generation()
	want := m.browser.Last()
	base := m.ctx.Base
	return func() tea.Msg {
		sess.WaitFor(base, want, stream.DefaultPoll)
		return progressMsg{owner: m, generation: gen}
	}
}

func (m *Model) tick() tea.Cmd {
	gen := m.stream.Generation()
	return tea.Tick(progressInterval, func(time.Time) tea.Msg {
		return progressMsg{owner: m, generation: gen}
	})
}

// Update implements ui.View.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case progressMsg:
		if msg.owner != m || msg.generation != m.stream.Generation() {
			return nil
		}
		sess := m.stream.Session()
		if sess.State() == stream.Running {
			return m.tick()
		}
		if err := sess.Err(); err != nil {
			return ui.Error(err)
		}
		return nil

	case reselectMsg:
		if msg.owner != m || msg.generation != m.stream.Generation() {
			return nil
		}
		m.browser.Selected = msg.index
		m.browser.MakeSelectionVisible()
		return m.fill()

	case ui.IndexChangedMsg:
		return m.Refresh()

	case tea.KeyMsg:
		count := m.stream.Session().Len()
		if m.browser.HandleKey(msg, m.ctx.Keys, count) {
			return nil
		}
		switch {
		case key.Matches(msg, m.ctx.Keys.Select):
			if t, ok := m.Selected(); ok {
				return thread.Load(m.ctx, t.ID)
			}
		case key.Matches(msg, m.ctx.Keys.Refresh):
			return m.Refresh()
		case key.Matches(msg, m.ctx.Keys.Archive):
			if t, ok := m.Selected(); ok {
				return m.archive(t.ID)
			}
		case key.Matches(msg, m.ctx.Keys.Yank):
			if t, ok := m.Selected(); ok {
				return yank("thread:" + t.ID)
			}
		}
	}
	return nil
}

// Refresh implements ui.Refresher. It restarts the search and, off the UI
// loop, waits for the previously selected thread to reappear so the
// selection follows it.
func (m *Model) Refresh() tea.Cmd {
	selectedID := ""
	if t, ok := m.Selected(); ok {
		selectedID = t.ID
	}
	fallback := m.browser.Selected

	sess := m.stream.Restart(m.ctx.Base)
	gen := m.stream.Generation()
	base := m.ctx.Base
	return func() tea.Msg {
		i := stream.Reselect(base, sess, selectedID, fallback, stream.DefaultPoll)
		return reselectMsg{owner: m, generation: gen, index: i}
	}
}

func (m *Model) archive(threadID string) tea.Cmd {
	return func() tea.Msg {
		th, err := m.ctx.Index.Thread(m.ctx.Base, threadID)
		if err != nil {
			return ui.ErrorMsg{Err: err}
		}
		var ids []string
		for v := range th.Messages.All() {
			ids = append(ids, v.Value.ID)
		}
		if err := m.ctx.Index.ModifyTags(m.ctx.Base, ids, nil, []string{model.TagInbox}); err != nil {
			return ui.ErrorMsg{Err: fmt.Errorf("archiving thread %s: %w", threadID, err)}
		}
		return ui.IndexChangedMsg{Status: "Thread archived"}
	}
}

func yank(text string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ui.ErrorMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return ui.StatusMsg{Text: "Copied " + text}
	}
}

// Render implements ui.View.
func (m *Model) Render(r *render.Renderer) {
	now := m.ctx.Clock()
	offset := m.browser.Offset
	rows := m.stream.Session().Snapshot(offset, offset+r.Grid().Height())
	for i, t := range rows {
		drawRow(r, i, t, offset+i == m.browser.Selected, now)
	}
}

func drawRow(r *render.Renderer, row int, t model.ThreadSummary, selected bool, now time.Time) {
	r.MoveTo(row, 0)
	r.SetColor(theme.ColorDefault)
	var attr render.Attr
	if t.HasTag(model.TagUnread) {
		attr |= render.AttrBold
	}
	if selected {
		attr |= render.AttrReverse
	}
	r.SetLineAttributes(attr)

	r.SetMaxWidth(dateWidth - 1)
	r.Print(render.Styled(timeutil.RelativeTime(now, t.Newest), theme.ColorSearchViewDate))
	r.Advance(dateWidth)

	countColor := theme.ColorSearchViewMessageCountPartial
	if t.CompleteMatch() {
		countColor = theme.ColorSearchViewMessageCountComplete
	}
	r.SetMaxWidth(countWidth - 1)
	r.Print(
		render.Styled("[", theme.ColorDefault),
		render.Styled(fmt.Sprintf("%d/%d", t.Matched, t.Total), countColor),
		render.Styled("]", theme.ColorDefault),
	)
	r.Advance(countWidth)

	r.SetMaxWidth(authorsWidth - 1)
	r.Print(render.Styled(t.Authors, theme.ColorSearchViewAuthors))
	r.Advance(authorsWidth)

	r.SetMaxWidth(render.Unlimited)
	r.Print(render.Styled(t.Subject, theme.ColorSearchViewSubject))

	for _, tag := range t.Tags {
		r.Skip(1)
		r.Print(render.Styled(tag, theme.ColorSearchViewTags))
	}

	r.AddTruncationMarker()
}

// Resize implements ui.View.
func (m *Model) Resize(width, height int) {
	m.browser.Resize(height)
}

// Close implements ui.View. It cancels the search and waits for its
// worker.
func (m *Model) Close() {
	m.stream.Close()
}
