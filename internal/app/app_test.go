package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/testutil"
	"github.com/lineCode/ner/internal/ui"
)

func newModel(t *testing.T, query string) Model {
	t.Helper()
	idx := testutil.NewTestIndex(t)
	testutil.Seed(t, idx,
		testutil.Fixture{ID: "a", Subject: "Alpha", Age: 10 * time.Minute, Tags: []string{"inbox", "unread"}},
		testutil.Fixture{ID: "b", Subject: "Beta", Age: time.Hour, Tags: []string{"inbox"}},
	)

	cfg := model.DefaultConfig()
	cfg.General.RefreshView = false
	m, err := New(Options{Config: cfg, Store: idx, Query: query})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(m.Shutdown)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewOpensSavedSearches(t *testing.T) {
	m := newModel(t, "")
	if got := m.stack.Active().Name(); got != "search-list-view" {
		t.Errorf("first view = %s, want search-list-view", got)
	}
	if !strings.Contains(m.View(), "[search-list-view]") {
		t.Errorf("status bar missing from view:\n%s", m.View())
	}
}

func TestNewWithQueryOpensSearch(t *testing.T) {
	m := newModel(t, "tag:inbox")
	if got := m.stack.Active().Name(); got != "search-view" {
		t.Errorf("first view = %s, want search-view", got)
	}
}

func TestSearchPromptOpensView(t *testing.T) {
	m := newModel(t, "")

	m, _ = update(t, m, keyMsg("s"))
	if !m.prompting {
		t.Fatal("s did not start the search prompt")
	}
	m, _ = update(t, m, keyMsg("tag:inbox"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter produced no command")
	}

	m, cmd = update(t, m, cmd())
	if m.prompting {
		t.Error("prompt still open after submit")
	}
	if cmd == nil {
		t.Fatal("submit produced no command")
	}
	open, ok := cmd().(ui.OpenViewMsg)
	if !ok {
		t.Fatalf("submit produced %T, want OpenViewMsg", cmd())
	}

	m, _ = update(t, m, open)
	if m.stack.Len() != 2 || m.stack.Active().Name() != "search-view" {
		t.Errorf("views = %d, active = %s", m.stack.Len(), m.stack.Active().Name())
	}
}

func TestPromptCancel(t *testing.T) {
	m := newModel(t, "")
	m, _ = update(t, m, keyMsg("T"))
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m, cmd = update(t, m, cmd())
	if m.prompting || cmd != nil {
		t.Errorf("cancel left prompting=%v cmd=%v", m.prompting, cmd)
	}
	if m.stack.Len() != 1 {
		t.Errorf("views = %d, want 1", m.stack.Len())
	}
}

func TestCloseLastViewQuits(t *testing.T) {
	m := newModel(t, "")
	m, _ = update(t, m, ui.OpenViewMsg{View: &stubView{"stub"}})

	m, cmd := update(t, m, keyMsg("q"))
	if isQuit(cmd) {
		t.Fatal("closing the second view quit")
	}
	if m.stack.Len() != 1 {
		t.Fatalf("views = %d, want 1", m.stack.Len())
	}

	_, cmd = update(t, m, keyMsg("q"))
	if !isQuit(cmd) {
		t.Error("closing the last view did not quit")
	}
}

func TestViewListAndCycle(t *testing.T) {
	m := newModel(t, "")
	m, _ = update(t, m, ui.OpenViewMsg{View: &stubView{"stub"}})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if got := m.stack.Active().Name(); got != "search-list-view" {
		t.Errorf("after tab active = %s", got)
	}

	m, _ = update(t, m, keyMsg(";"))
	if got := m.stack.Active().Name(); got != "view-view" {
		t.Errorf("; opened %s", got)
	}
}

func TestStatusMessageExpires(t *testing.T) {
	m := newModel(t, "")

	m, _ = update(t, m, ui.StatusMsg{Text: "first"})
	m, _ = update(t, m, ui.ErrorMsg{Err: errors.New("boom")})
	if m.message != "Error: boom" {
		t.Fatalf("message = %q", m.message)
	}
	if !strings.Contains(m.View(), "Error: boom") {
		t.Error("message line not drawn")
	}

	m, _ = update(t, m, clearMessageMsg{seq: 1})
	if m.message == "" {
		t.Error("stale timer cleared a newer message")
	}
	m, _ = update(t, m, clearMessageMsg{seq: m.messageSeq})
	if m.message != "" {
		t.Errorf("message = %q after timeout", m.message)
	}
}

func TestComposeWithoutIdentityReportsError(t *testing.T) {
	m := newModel(t, "")
	_, cmd := update(t, m, keyMsg("m"))
	if cmd == nil {
		t.Fatal("no command")
	}
	if _, ok := cmd().(ui.ErrorMsg); !ok {
		t.Errorf("compose without identities produced %T", cmd())
	}
}

func TestShutdownClosesViews(t *testing.T) {
	m := newModel(t, "tag:inbox")
	m.Shutdown()
	if m.stack.Len() != 0 {
		t.Errorf("views = %d after shutdown", m.stack.Len())
	}
}
