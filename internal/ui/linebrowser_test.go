package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"pgregory.net/rapid"

	"github.com/lineCode/ner/internal/keys"
)

func TestLineBrowserMovement(t *testing.T) {
	b := LineBrowser{Visible: 5}
	const count = 12

	b.Previous()
	if b.Selected != 0 {
		t.Fatalf("Previous at top moved to %d", b.Selected)
	}

	b.Next(count)
	b.Next(count)
	if b.Selected != 2 || b.Offset != 0 {
		t.Fatalf("after two Next: selected=%d offset=%d", b.Selected, b.Offset)
	}

	b.NextPage(count)
	if b.Selected != 6 || b.Offset != 2 {
		t.Fatalf("NextPage: selected=%d offset=%d, want 6/2", b.Selected, b.Offset)
	}

	b.NextPage(count)
	if b.Selected != 10 {
		t.Fatalf("second NextPage: selected=%d, want 10", b.Selected)
	}
	b.NextPage(count)
	if b.Selected != 11 || b.Offset != 7 {
		t.Fatalf("NextPage at end: selected=%d offset=%d, want 11/7", b.Selected, b.Offset)
	}

	b.Next(count)
	if b.Selected != 11 {
		t.Fatalf("Next at bottom moved to %d", b.Selected)
	}

	b.PreviousPage()
	if b.Selected != 7 || b.Offset != 7 {
		t.Fatalf("PreviousPage: selected=%d offset=%d, want 7/7", b.Selected, b.Offset)
	}
	b.PreviousPage()
	if b.Selected != 3 || b.Offset != 3 {
		t.Fatalf("PreviousPage: selected=%d offset=%d, want 3/3", b.Selected, b.Offset)
	}
	b.PreviousPage()
	if b.Selected != 0 || b.Offset != 0 {
		t.Fatalf("PreviousPage near top: selected=%d offset=%d", b.Selected, b.Offset)
	}

	b.Bottom(count)
	if b.Selected != 11 || b.Offset != 7 {
		t.Fatalf("Bottom: selected=%d offset=%d", b.Selected, b.Offset)
	}
	b.Top()
	if b.Selected != 0 || b.Offset != 0 {
		t.Fatalf("Top: selected=%d offset=%d", b.Selected, b.Offset)
	}
}

func TestLineBrowserEmpty(t *testing.T) {
	b := LineBrowser{Visible: 5}
	b.Next(0)
	b.NextPage(0)
	b.Bottom(0)
	if b.Selected != 0 || b.Offset != 0 {
		t.Fatalf("empty list moved selection to %d/%d", b.Selected, b.Offset)
	}
	if got := b.Status(0); got != "no lines" {
		t.Errorf("Status = %q", got)
	}
}

func TestLineBrowserClamp(t *testing.T) {
	b := LineBrowser{Selected: 9, Offset: 6, Visible: 4}
	b.Clamp(3)
	if b.Selected != 2 || b.Offset != 2 {
		t.Fatalf("Clamp: selected=%d offset=%d, want 2/2", b.Selected, b.Offset)
	}
	b.Clamp(0)
	if b.Selected != 0 || b.Offset != 0 {
		t.Fatalf("Clamp to empty: selected=%d offset=%d", b.Selected, b.Offset)
	}
}

func TestLineBrowserHandleKey(t *testing.T) {
	km := keys.DefaultKeyMap()
	b := LineBrowser{Visible: 3}

	tests := []struct {
		key  tea.KeyMsg
		want int
	}{
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")}, 1},
		{tea.KeyMsg{Type: tea.KeyDown}, 2},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}, 1},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")}, 9},
		{tea.KeyMsg{Type: tea.KeyCtrlU}, 7},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("g")}, 0},
		{tea.KeyMsg{Type: tea.KeyCtrlD}, 2},
	}
	for _, tt := range tests {
		if !b.HandleKey(tt.key, km, 10) {
			t.Fatalf("key %q not handled", tt.key.String())
		}
		if b.Selected != tt.want {
			t.Errorf("after %q selected = %d, want %d", tt.key.String(), b.Selected, tt.want)
		}
	}

	if b.HandleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z")}, km, 10) {
		t.Error("unbound key reported as handled")
	}
	if got := b.Status(10); got != "line 3 of 10" {
		t.Errorf("Status = %q", got)
	}
}

func TestLineBrowserSelectionStaysVisible(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(0, 200).Draw(t, "count")
		b := LineBrowser{Visible: rapid.IntRange(1, 40).Draw(t, "visible")}
		moves := rapid.SliceOf(rapid.IntRange(0, 5)).Draw(t, "moves")
		for _, m := range moves {
			switch m {
			case 0:
				b.Next(count)
			case 1:
				b.Previous()
			case 2:
				b.NextPage(count)
			case 3:
				b.PreviousPage()
			case 4:
				b.Top()
			case 5:
				b.Bottom(count)
			}
			if b.Selected < 0 || (count > 0 && b.Selected >= count) || (count == 0 && b.Selected != 0) {
				t.Fatalf("selection %d out of range for %d lines", b.Selected, count)
			}
			if b.Selected < b.Offset || b.Selected >= b.Offset+b.Visible {
				t.Fatalf("selection %d not visible in [%d, %d)", b.Selected, b.Offset, b.Offset+b.Visible)
			}
		}
	})
}
