package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the application. Global bindings are
// handled by the root model; the rest are interpreted by the active view.
type KeyMap struct {
	// Navigation
	Down     key.Binding
	Up       key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Top      key.Binding
	Bottom   key.Binding

	// Selection
	Select key.Binding

	// Views
	Close     key.Binding
	CloseView key.Binding
	Quit      key.Binding
	ViewList  key.Binding
	NextView  key.Binding
	PrevView  key.Binding
	Redraw    key.Binding
	Help      key.Binding
	Cancel    key.Binding

	// Opening things
	Search      key.Binding
	Compose     key.Binding
	OpenMessage key.Binding
	OpenThread  key.Binding

	// Actions
	Refresh key.Binding
	Archive key.Binding
	Yank    key.Binding
	Reply   key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn/^d", "page down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup/^u", "page up"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g/home", "top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G/end", "bottom"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Close: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "close view"),
		),
		CloseView: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close selected view"),
		),
		Quit: key.NewBinding(
			key.WithKeys("Q", "ctrl+c"),
			key.WithHelp("Q", "quit"),
		),
		ViewList: key.NewBinding(
			key.WithKeys(";"),
			key.WithHelp(";", "open views"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous view"),
		),
		Redraw: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("^l", "redraw"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Search: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "search"),
		),
		Compose: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "compose"),
		),
		OpenMessage: key.NewBinding(
			key.WithKeys("M"),
			key.WithHelp("M", "open message by id"),
		),
		OpenThread: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "open thread by id"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("="),
			key.WithHelp("=", "refresh"),
		),
		Archive: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "archive"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy id"),
		),
		Reply: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reply"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Close,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Select, k.Close, k.CloseView, k.Quit, k.Redraw},
		{k.ViewList, k.NextView, k.PrevView, k.Help},
		{k.Search, k.Compose, k.OpenMessage, k.OpenThread},
		{k.Refresh, k.Archive, k.Yank, k.Reply},
	}
}
