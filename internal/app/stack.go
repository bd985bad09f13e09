package app

import (
	"slices"

	"github.com/lineCode/ner/internal/ui"
)

// viewStack holds the open views in the order they were opened and which
// one is active. It is shared by pointer so the view list sees changes.
type viewStack struct {
	views  []ui.View
	active int
}

// Views implements viewlist.Lister.
func (s *viewStack) Views() []ui.View { return s.views }

// Len returns the number of open views.
func (s *viewStack) Len() int { return len(s.views) }

// Active returns the active view, or nil when none are open.
func (s *viewStack) Active() ui.View {
	if len(s.views) == 0 {
		return nil
	}
	return s.views[s.active]
}

// Push adds v after the active view and makes it active.
func (s *viewStack) Push(v ui.View) {
	if len(s.views) == 0 {
		s.views = []ui.View{v}
		s.active = 0
		return
	}
	s.active++
	s.views = slices.Insert(s.views, s.active, v)
}

// Remove drops v, activating the view before it when v was active. It
// reports whether v was open.
func (s *viewStack) Remove(v ui.View) bool {
	i := slices.Index(s.views, v)
	if i < 0 {
		return false
	}
	s.views = slices.Delete(s.views, i, i+1)
	if i <= s.active {
		s.active = max(s.active-1, 0)
	}
	return true
}

// Focus makes v active.
func (s *viewStack) Focus(v ui.View) bool {
	i := slices.Index(s.views, v)
	if i < 0 {
		return false
	}
	s.active = i
	return true
}

// Cycle moves the active view by delta, wrapping around.
func (s *viewStack) Cycle(delta int) {
	n := len(s.views)
	if n == 0 {
		return
	}
	s.active = ((s.active+delta)%n + n) % n
}
