// Package app is the root Bubble Tea model: it owns the view stack, routes
// messages to views, handles the global keys and draws the status bar and
// message line below the active view.
package app

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lineCode/ner/internal/index"
	"github.com/lineCode/ner/internal/ingest"
	"github.com/lineCode/ner/internal/keys"
	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	appsync "github.com/lineCode/ner/internal/sync"
	"github.com/lineCode/ner/internal/ui"
	"github.com/lineCode/ner/internal/ui/compose"
	helpview "github.com/lineCode/ner/internal/ui/help"
	"github.com/lineCode/ner/internal/ui/message"
	"github.com/lineCode/ner/internal/ui/prompt"
	"github.com/lineCode/ner/internal/ui/search"
	"github.com/lineCode/ner/internal/ui/searchlist"
	"github.com/lineCode/ner/internal/ui/thread"
	"github.com/lineCode/ner/internal/ui/viewlist"
)

// messageTimeout is how long a message stays on the message line.
const messageTimeout = 1500 * time.Millisecond

// Store is the index the application reads from and ingests into.
type Store interface {
	index.Index
	index.Writer
}

// clearMessageMsg clears the message line unless a newer message replaced
// the one it was scheduled for.
type clearMessageMsg struct {
	seq int
}

// refreshTickMsg fires every general.refresh_interval.
type refreshTickMsg struct{}

// Options configure a new root model.
type Options struct {
	Config *model.AppConfig
	Store  Store

	// Query, when set, opens a search view instead of the saved searches.
	Query string

	// Sync enables the background poller and maildir watcher.
	Sync bool
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx    *ui.Context
	cancel context.CancelFunc
	cfg    *model.AppConfig
	store  Store
	layout ui.Layout
	stack  *viewStack

	prompt    prompt.Model
	prompting bool
	submit    func(string) tea.Cmd

	message    string
	messageSeq int

	sync    bool
	poller  *appsync.Poller
	watcher *ingest.Watcher
	ready   bool
}

// New creates the root model and its first view.
func New(opts Options) (Model, error) {
	palette, err := paletteFor(opts.Config)
	if err != nil {
		return Model{}, fmt.Errorf("loading colors: %w", err)
	}

	base, cancel := context.WithCancel(context.Background())
	ctx := &ui.Context{
		Base:    base,
		Index:   opts.Store,
		Config:  opts.Config,
		Palette: palette,
		Keys:    keys.DefaultKeyMap(),
	}

	m := Model{
		ctx:    ctx,
		cancel: cancel,
		cfg:    opts.Config,
		store:  opts.Store,
		layout: ui.NewLayout(80, 24),
		stack:  &viewStack{},
		sync:   opts.Sync,
		poller: appsync.New(),
	}

	var first ui.View
	if opts.Query != "" {
		first = search.New(ctx, opts.Query)
	} else {
		first = searchlist.New(ctx)
	}
	m.push(first)
	return m, nil
}

// Init returns the initial commands: the first view's, source
// registration and the refresh timer.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.stack.Active().Init(), m.refreshTick()}
	if m.sync {
		cmds = append(cmds, registerSources(m.ctx.Base, m.cfg, m.store, m.poller))
	}
	return tea.Batch(cmds...)
}

// Shutdown closes every view and stops background work. It is safe to
// call more than once.
func (m Model) Shutdown() {
	for _, v := range m.stack.Views() {
		v.Close()
	}
	m.stack.views = nil
	if m.watcher != nil {
		m.watcher.Stop()
	}
	m.poller.Stop()
	m.cancel()
}

// Update handles messages and dispatches them to views.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		for _, v := range m.stack.Views() {
			v.Resize(m.layout.ContentWidth(), m.layout.ContentHeight())
		}
		m.prompt.SetWidth(msg.Width)
		// Forward so forms can calculate their layout.
		return m, m.broadcast(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case prompt.SubmittedMsg:
		m.prompting = false
		submit := m.submit
		m.submit = nil
		if submit == nil {
			return m, nil
		}
		return m, submit(msg.Text)

	case prompt.CancelledMsg:
		m.prompting = false
		m.submit = nil
		return m, nil

	case ui.PromptMsg:
		return m, m.startPrompt(msg.Prompt, msg.Submit)

	case ui.OpenViewMsg:
		return m, m.push(msg.View)

	case ui.CloseViewMsg:
		v := msg.View
		if v == nil {
			v = m.stack.Active()
		}
		return m, m.closeView(v)

	case ui.FocusViewMsg:
		m.stack.Focus(msg.View)
		return m, nil

	case ui.StatusMsg:
		return m, m.showMessage(msg.Text)

	case ui.ErrorMsg:
		log.Printf("error: %v", msg.Err)
		return m, m.showMessage("Error: " + msg.Err.Error())

	case ui.IndexChangedMsg:
		cmds := []tea.Cmd{m.broadcast(msg)}
		if msg.Status != "" {
			cmds = append(cmds, m.showMessage(msg.Status))
		}
		return m, tea.Batch(cmds...)

	case clearMessageMsg:
		if msg.seq == m.messageSeq {
			m.message = ""
		}
		return m, nil

	case refreshTickMsg:
		return m, tea.Batch(m.refreshActive(), m.refreshTick())

	case sourcesRegisteredMsg:
		log.Printf("registered %d sources", msg.count)
		m.watcher = msg.watcher
		start := m.poller.Start()
		if m.watcher != nil {
			m.poller.Follow(m.watcher.Changed(), "maildir")
		}
		return m, start

	case appsync.SyncResultMsg:
		return m, tea.Batch(m.handleSyncResult(msg), m.poller.WaitForNextResult())
	}

	return m, m.broadcast(msg)
}

// handleKey routes a key to the prompt, a view capturing input, the
// global bindings, or the active view, in that order.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.prompting {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	active := m.stack.Active()
	if active == nil {
		return m, tea.Quit
	}
	if ic, ok := active.(ui.InputCapturer); ok && ic.CapturesInput() {
		return m, active.Update(msg)
	}

	km := m.ctx.Keys
	switch {
	case key.Matches(msg, km.Quit):
		return m, tea.Quit

	case key.Matches(msg, km.Close):
		if m.stack.Len() <= 1 {
			return m, tea.Quit
		}
		return m, m.closeView(active)

	case key.Matches(msg, km.Search):
		return m, m.startPrompt("Search: ", func(text string) tea.Cmd {
			if text == "" {
				return nil
			}
			return ui.Open(search.New(m.ctx, text))
		})

	case key.Matches(msg, km.Compose):
		v, err := compose.New(m.ctx, compose.Options{})
		if err != nil {
			return m, ui.Error(err)
		}
		return m, m.push(v)

	case key.Matches(msg, km.OpenMessage):
		return m, m.startPrompt("Message ID: ", func(text string) tea.Cmd {
			text = strings.TrimPrefix(text, "id:")
			if text == "" {
				return nil
			}
			return message.LoadByID(m.ctx, text)
		})

	case key.Matches(msg, km.OpenThread):
		return m, m.startPrompt("Thread ID: ", func(text string) tea.Cmd {
			text = strings.TrimPrefix(text, "thread:")
			if text == "" {
				return nil
			}
			return thread.Load(m.ctx, text)
		})

	case key.Matches(msg, km.ViewList):
		return m, m.push(viewlist.New(m.ctx, m.stack))

	case key.Matches(msg, km.Help):
		return m, m.push(helpview.New(km, m.layout.ContentWidth(), m.layout.ContentHeight()))

	case key.Matches(msg, km.NextView):
		m.stack.Cycle(1)
		return m, nil

	case key.Matches(msg, km.PrevView):
		m.stack.Cycle(-1)
		return m, nil

	case key.Matches(msg, km.Redraw):
		return m, tea.ClearScreen
	}

	return m, active.Update(msg)
}

// push opens v as the active view.
func (m Model) push(v ui.View) tea.Cmd {
	v.Resize(m.layout.ContentWidth(), m.layout.ContentHeight())
	m.stack.Push(v)
	return v.Init()
}

// closeView closes v and quits when no views remain.
func (m Model) closeView(v ui.View) tea.Cmd {
	if !m.stack.Remove(v) {
		return nil
	}
	v.Close()
	if m.stack.Len() == 0 {
		return tea.Quit
	}
	return nil
}

// broadcast offers msg to every open view. Views ignore messages they do
// not own.
func (m Model) broadcast(msg tea.Msg) tea.Cmd {
	views := append([]ui.View(nil), m.stack.Views()...)
	cmds := make([]tea.Cmd, 0, len(views))
	for _, v := range views {
		cmds = append(cmds, v.Update(msg))
	}
	return tea.Batch(cmds...)
}

func (m *Model) startPrompt(label string, submit func(string) tea.Cmd) tea.Cmd {
	m.prompt = prompt.New(label, m.ctx.Keys, m.ctx.Palette, m.layout.Width)
	m.prompting = true
	m.submit = submit
	return m.prompt.Init()
}

// showMessage puts text on the message line and schedules its removal.
func (m *Model) showMessage(text string) tea.Cmd {
	m.message = text
	m.messageSeq++
	seq := m.messageSeq
	return tea.Tick(messageTimeout, func(time.Time) tea.Msg {
		return clearMessageMsg{seq: seq}
	})
}

func (m Model) refreshTick() tea.Cmd {
	if !m.cfg.General.RefreshView {
		return nil
	}
	return tea.Tick(m.cfg.General.RefreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

// refreshActive re-runs the active view's query when it has one.
func (m Model) refreshActive() tea.Cmd {
	if r, ok := m.stack.Active().(ui.Refresher); ok {
		return r.Refresh()
	}
	return nil
}

func (m *Model) handleSyncResult(msg appsync.SyncResultMsg) tea.Cmd {
	switch {
	case msg.AuthError != nil:
		return m.showMessage(msg.AuthError.Message)
	case msg.Error != nil:
		return m.showMessage(fmt.Sprintf("Error: %s sync failed: %v", msg.Source, msg.Error))
	case msg.Result.Added > 0:
		log.Printf("%s: %s", msg.Source, msg.Result)
		show := m.showMessage(fmt.Sprintf("%s: %s", msg.Source, msg.Result))
		if m.cfg.General.RefreshView {
			return tea.Batch(m.refreshActive(), show)
		}
		return show
	}
	return nil
}

// syncStatus returns a short status bar entry describing running or
// failing sources, or "" when all are idle.
func (m Model) syncStatus() string {
	var running, failed []string
	for _, s := range m.poller.GetStatuses() {
		switch s.State {
		case appsync.SyncRunning:
			running = append(running, s.Source)
		case appsync.SyncError:
			failed = append(failed, s.Source)
		}
	}
	switch {
	case len(running) > 0:
		return "syncing " + strings.Join(running, ", ")
	case len(failed) > 0:
		return "unreachable: " + strings.Join(failed, ", ")
	}
	return ""
}

// View renders the active view, the status bar and the message line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	active := m.stack.Active()
	if active == nil {
		return ""
	}
	width := m.layout.ContentWidth()

	var content string
	if p, ok := active.(ui.Painter); ok {
		content = m.layout.Fit(p.View())
	} else {
		g := render.NewGrid(width, m.layout.ContentHeight())
		active.Render(render.New(g))
		content = g.View(m.ctx.Palette)
	}

	status := append(slices.Clip(active.Status()), m.syncStatus())
	bar := render.NewGrid(width, m.layout.StatusBarHeight)
	ui.DrawStatusBar(render.New(bar), active.Name(), status)

	var line string
	if m.prompting {
		line = lipgloss.NewStyle().Width(width).MaxWidth(width).Render(m.prompt.View())
	} else {
		g := render.NewGrid(width, m.layout.MessageLineHeight)
		ui.DrawMessage(render.New(g), m.message)
		line = g.View(m.ctx.Palette)
	}

	return m.layout.RenderWithFrame(content, bar.View(m.ctx.Palette), line)
}
