package searchlist

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/keys"
	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/testutil"
	"github.com/lineCode/ner/internal/ui"
	"github.com/lineCode/ner/internal/ui/search"
)

func newView(t *testing.T, searches ...model.SavedSearch) *Model {
	t.Helper()
	idx := testutil.NewTestIndex(t)
	testutil.Seed(t, idx,
		testutil.Fixture{ID: "a", Subject: "Alpha", Age: time.Hour, Tags: []string{"inbox", "unread"}},
		testutil.Fixture{ID: "b", Subject: "Beta", Age: 2 * time.Hour, Tags: []string{"inbox"}},
		testutil.Fixture{ID: "c", Subject: "Gamma", Age: 3 * time.Hour},
	)

	cfg := model.DefaultConfig()
	cfg.Searches = searches
	return New(&ui.Context{
		Base:   context.Background(),
		Index:  idx,
		Config: cfg,
		Keys:   keys.DefaultKeyMap(),
	})
}

func TestSearchListCountsAndRender(t *testing.T) {
	m := newView(t,
		model.SavedSearch{Name: "Unread", Query: "tag:unread"},
		model.SavedSearch{Name: "A very long search name", Query: "tag:inbox or subject:gamma or from:someone"},
	)
	m.Resize(80, 4)

	g := render.NewGrid(80, 4)
	m.Render(render.New(g))
	if got := strings.TrimRight(g.PlainRow(0), " "); got != "Unread         tag:unread                    ..." {
		t.Errorf("row before counts = %q", got)
	}

	if cmd := m.Update(m.Init()()); cmd != nil {
		t.Fatalf("counts produced %T", cmd())
	}

	g = render.NewGrid(80, 4)
	m.Render(render.New(g))
	want := []string{
		"Unread         tag:unread                    1 results",
		"A very long se tag:inbox or subject:gamma or 3 results",
	}
	for i, w := range want {
		if got := strings.TrimRight(g.PlainRow(i), " "); got != w {
			t.Errorf("row %d = %q, want %q", i, got, w)
		}
	}
	if c := g.Cell(0, 0); c.Attr&render.AttrReverse == 0 {
		t.Error("selected row not reversed")
	}
	if st := m.Status(); st[0] != "search 1 of 2" {
		t.Errorf("status = %v", st)
	}
}

func TestSearchListOpensSearch(t *testing.T) {
	m := newView(t,
		model.SavedSearch{Name: "Unread", Query: "tag:unread"},
		model.SavedSearch{Name: "Inbox", Query: "tag:inbox"},
	)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}
	open, ok := cmd().(ui.OpenViewMsg)
	if !ok {
		t.Fatalf("enter produced %T", cmd())
	}
	sv, ok := open.View.(*search.Model)
	if !ok {
		t.Fatalf("opened %T, want search view", open.View)
	}
	defer sv.Close()
	if sv.Query() != "tag:inbox" {
		t.Errorf("query = %q", sv.Query())
	}
}

func TestSearchListEmpty(t *testing.T) {
	m := newView(t)
	if st := m.Status(); st[0] != "no configured searches" {
		t.Errorf("status = %v", st)
	}
	if cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("enter on empty list produced a command")
	}
}

func TestSearchListCountError(t *testing.T) {
	m := newView(t, model.SavedSearch{Name: "Broken", Query: ""})
	cmd := m.Update(m.Refresh()())
	if cmd == nil {
		t.Fatal("count failure produced no command")
	}
	if _, ok := cmd().(ui.ErrorMsg); !ok {
		t.Errorf("count failure produced %T", cmd())
	}
}
