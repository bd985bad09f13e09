package prompt

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lineCode/ner/internal/keys"
	"github.com/lineCode/ner/internal/theme"
)

func typeText(m Model, text string) Model {
	for _, r := range text {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestPromptSubmit(t *testing.T) {
	m := New("Search: ", keys.DefaultKeyMap(), theme.DefaultPalette(), 80)
	m = typeText(m, " tag:inbox ")
	if m.Value() != " tag:inbox " {
		t.Fatalf("value = %q", m.Value())
	}
	if !strings.Contains(m.View(), "Search: ") {
		t.Errorf("view = %q", m.View())
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	got, ok := cmd().(SubmittedMsg)
	if !ok || got.Text != "tag:inbox" {
		t.Fatalf("enter produced %+v", got)
	}
	if m.Value() != "" {
		t.Errorf("value after submit = %q", m.Value())
	}
}

func TestPromptCancel(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyEsc}, {Type: tea.KeyCtrlG}} {
		m := typeText(New("Thread ID: ", keys.DefaultKeyMap(), theme.DefaultPalette(), 40), "abc")
		_, cmd := m.Update(k)
		if _, ok := cmd().(CancelledMsg); !ok {
			t.Errorf("%s did not cancel", k)
		}
	}
}
