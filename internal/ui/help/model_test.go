package help

import (
	"strings"
	"testing"

	"github.com/lineCode/ner/internal/keys"
)

func TestHelpListsBindings(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 200, 30)
	view := m.View()
	for _, want := range []string{"Keyboard Shortcuts", "search", "compose", "open views", "refresh"} {
		if !strings.Contains(view, want) {
			t.Errorf("help view is missing %q", want)
		}
	}
}
