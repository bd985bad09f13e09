// Package searchlist shows the configured saved searches with the number
// of messages each one matches.
package searchlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
	"github.com/lineCode/ner/internal/ui"
	"github.com/lineCode/ner/internal/ui/search"
)

const (
	nameWidth  = 15
	termsWidth = 30
)

// countsMsg carries message counts back to the view that asked.
type countsMsg struct {
	owner  *Model
	counts []int
	err    error
}

// Model is the saved search list view.
type Model struct {
	ctx      *ui.Context
	searches []model.SavedSearch

	// counts[i] is -1 until the count for searches[i] is known.
	counts  []int
	browser ui.LineBrowser
}

// New creates the view for the configured searches.
func New(ctx *ui.Context) *Model {
	m := &Model{
		ctx:      ctx,
		searches: ctx.Config.Searches,
		counts:   make([]int, len(ctx.Config.Searches)),
	}
	for i := range m.counts {
		m.counts[i] = -1
	}
	m.browser.Resize(20)
	return m
}

// Name implements ui.View.
func (m *Model) Name() string { return "search-list-view" }

// Status implements ui.View.
func (m *Model) Status() []string {
	return []string{ui.Position("search", m.browser.Selected, len(m.searches), "no configured searches")}
}

// Init implements ui.View.
func (m *Model) Init() tea.Cmd { return m.Refresh() }

// Refresh implements ui.Refresher by recounting every search.
func (m *Model) Refresh() tea.Cmd {
	searches := m.searches
	idx := m.ctx.Index
	base := m.ctx.Base
	return func() tea.Msg {
		counts := make([]int, len(searches))
		for i, s := range searches {
			n, err := idx.CountMessages(base, s.Query)
			if err != nil {
				return countsMsg{owner: m, err: fmt.Errorf("counting search %q: %w", s.Name, err)}
			}
			counts[i] = n
		}
		return countsMsg{owner: m, counts: counts}
	}
}

// Update implements ui.View.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case countsMsg:
		if msg.owner != m {
			return nil
		}
		if msg.err != nil {
			return ui.Error(msg.err)
		}
		m.counts = msg.counts
		return nil

	case ui.IndexChangedMsg:
		return m.Refresh()

	case tea.KeyMsg:
		if m.browser.HandleKey(msg, m.ctx.Keys, len(m.searches)) {
			return nil
		}
		if key.Matches(msg, m.ctx.Keys.Select) && len(m.searches) > 0 {
			v := search.New(m.ctx, m.searches[m.browser.Selected].Query)
			return ui.Open(v)
		}
	}
	return nil
}

// Render implements ui.View.
func (m *Model) Render(r *render.Renderer) {
	last := min(m.browser.Last(), len(m.searches))
	for i := m.browser.Offset; i < last; i++ {
		s := m.searches[i]

		r.MoveTo(i-m.browser.Offset, 0)
		var attr render.Attr
		if i == m.browser.Selected {
			attr = render.AttrReverse
		}
		r.SetLineAttributes(attr)

		r.SetMaxWidth(nameWidth - 1)
		r.Print(render.Styled(s.Name, theme.ColorSearchListViewName))
		r.Advance(nameWidth)

		r.SetMaxWidth(termsWidth - 1)
		r.Print(render.Styled(s.Query, theme.ColorSearchListViewTerms))
		r.Advance(termsWidth)

		r.SetMaxWidth(render.Unlimited)
		results := "..."
		if m.counts[i] >= 0 {
			results = fmt.Sprintf("%d results", m.counts[i])
		}
		r.Print(render.Styled(results, theme.ColorSearchListViewResults))

		r.AddTruncationMarker()
	}
}

// Resize implements ui.View.
func (m *Model) Resize(width, height int) {
	m.browser.Resize(height)
}

// Close implements ui.View.
func (m *Model) Close() {}
