package viewlist

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/keys"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/ui"
)

type stubView struct {
	name   string
	status []string
}

func (v *stubView) Name() string             { return v.name }
func (v *stubView) Status() []string         { return v.status }
func (v *stubView) Init() tea.Cmd            { return nil }
func (v *stubView) Update(tea.Msg) tea.Cmd   { return nil }
func (v *stubView) Render(*render.Renderer)  {}
func (v *stubView) Resize(width, height int) {}
func (v *stubView) Close()                   {}

type stack []ui.View

func (s *stack) Views() []ui.View { return *s }

func setup(views ...ui.View) (*Model, *stack) {
	s := stack(views)
	m := New(&ui.Context{Keys: keys.DefaultKeyMap()}, &s)
	s = append(s, m)
	return m, &s
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewListRender(t *testing.T) {
	m, _ := setup(
		&stubView{name: "search-list-view", status: []string{"search 1 of 3"}},
		&stubView{name: "search-view", status: []string{`search-terms: "tag:inbox"`, "thread 1 of 9"}},
	)

	g := render.NewGrid(60, 3)
	m.Render(render.New(g))

	want := []string{
		" 0. search-list-view         search 1 of 3",
		` 1. search-view              search-terms: "tag:inbox"`,
		"",
	}
	for i, w := range want {
		if got := strings.TrimRight(g.PlainRow(i), " "); got != w {
			t.Errorf("row %d = %q, want %q", i, got, w)
		}
	}
	if c := g.Cell(0, 0); c.Attr&render.AttrReverse == 0 {
		t.Error("selected row not reversed")
	}
	if st := m.Status(); st[0] != "view 1 of 2" {
		t.Errorf("status = %v", st)
	}
}

func TestViewListFocus(t *testing.T) {
	target := &stubView{name: "thread-view"}
	m, _ := setup(&stubView{name: "search-view"}, target)

	m.Update(keyMsg("j"))
	cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	batch, ok := cmd().(tea.BatchMsg)
	if !ok || len(batch) != 2 {
		t.Fatalf("enter produced %T", cmd())
	}
	if closed, ok := batch[0]().(ui.CloseViewMsg); !ok || closed.View != ui.View(m) {
		t.Errorf("first command = %+v, want closing the list", closed)
	}
	if focus, ok := batch[1]().(ui.FocusViewMsg); !ok || focus.View != ui.View(target) {
		t.Errorf("second command = %+v, want focusing the thread view", focus)
	}
}

func TestViewListClose(t *testing.T) {
	first := &stubView{name: "search-view"}
	second := &stubView{name: "thread-view"}
	m, s := setup(first, second)

	m.Update(keyMsg("j"))
	closed, ok := m.Update(keyMsg("x"))().(ui.CloseViewMsg)
	if !ok || closed.View != ui.View(second) {
		t.Fatalf("x produced %+v", closed)
	}
	if m.browser.Selected != 0 {
		t.Errorf("selection = %d, want 0", m.browser.Selected)
	}

	*s = stack{first, m}
	status, ok := m.Update(keyMsg("x"))().(ui.StatusMsg)
	if !ok || status.Text != "This is the last view left, use Q to quit" {
		t.Errorf("closing the last view produced %+v", status)
	}
}
