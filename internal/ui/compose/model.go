// Package compose is the form for writing new messages and replies. A
// submitted form is saved as a draft in the identity's drafts maildir.
package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/emersion/go-message/mail"

	"github.com/lineCode/ner/internal/ingest"
	"github.com/lineCode/ner/internal/mime"
	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
	"github.com/lineCode/ner/internal/ui"
)

// Options prefill the form.
type Options struct {
	To      string
	Cc      string
	Subject string

	// Body is placed above the signature.
	Body string

	InReplyTo  string
	References []string
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid.
type formBindings struct {
	identity string
	to       string
	cc       string
	bcc      string
	subject  string
	body     string
}

// Model is the compose view.
type Model struct {
	ctx        *ui.Context
	form       *huh.Form
	fb         *formBindings
	opts       Options
	identities []model.Identity
	done       bool
	width      int
	height     int
}

// New creates a compose view. It fails when no identity is configured.
func New(ctx *ui.Context, opts Options) (*Model, error) {
	id, err := ctx.Config.Identity()
	if err != nil {
		return nil, fmt.Errorf("composing: %w", err)
	}

	m := &Model{
		ctx:        ctx,
		opts:       opts,
		identities: ctx.Config.Identities,
		fb: &formBindings{
			identity: id.Name,
			to:       opts.To,
			cc:       opts.Cc,
			subject:  opts.Subject,
			body:     opts.Body + signature(id, ctx.Config.General.AddSigDashes),
		},
		width:  80,
		height: 24,
	}
	m.form = m.buildForm()
	return m, nil
}

// Reply returns a command that reads msg from disk and opens a reply to
// it.
func Reply(ctx *ui.Context, msg model.Message) tea.Cmd {
	return func() tea.Msg {
		parsed, err := mime.ParseFile(msg.Filename)
		if err != nil {
			return ui.ErrorMsg{Err: fmt.Errorf("replying to %s: %w", msg.ID, err)}
		}
		v, err := New(ctx, ReplyOptions(msg, parsed))
		if err != nil {
			return ui.ErrorMsg{Err: err}
		}
		return ui.OpenViewMsg{View: v}
	}
}

// ReplyOptions prefills a reply to msg: the sender as recipient, a "Re:"
// subject, threading headers and the quoted body.
func ReplyOptions(msg model.Message, parsed *mime.Parsed) Options {
	h := parsed.Header

	to := h.From
	if to == "" {
		to = msg.From
	}
	subject := h.Subject
	if subject == "" {
		subject = msg.Subject
	}
	date := h.Date
	if date.IsZero() {
		date = msg.Date
	}

	refs := append([]string(nil), h.References...)
	if len(refs) == 0 && h.InReplyTo != "" {
		refs = append(refs, h.InReplyTo)
	}
	refs = append(refs, msg.ID)

	return Options{
		To:         to,
		Subject:    mime.ReplySubject(subject),
		Body:       "\n" + mime.Quote(parsed.Author, date, parsed.PlainText()),
		InReplyTo:  msg.ID,
		References: refs,
	}
}

func signature(id model.Identity, dashes bool) string {
	if id.SignaturePath == "" {
		return ""
	}
	sig, err := os.ReadFile(id.SignaturePath)
	if err != nil {
		return ""
	}
	return mime.Signature(string(sig), dashes)
}

// Name implements ui.View.
func (m *Model) Name() string { return "compose-view" }

// Status implements ui.View.
func (m *Model) Status() []string {
	if m.opts.InReplyTo != "" {
		return []string{"reply to id:" + m.opts.InReplyTo}
	}
	return []string{"new message"}
}

// CapturesInput implements ui.InputCapturer.
func (m *Model) CapturesInput() bool { return !m.done }

// Init implements ui.View.
func (m *Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements ui.View.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if m.done {
		return nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.done = true
		return tea.Batch(ui.CloseView(m), m.save())
	case huh.StateAborted:
		m.done = true
		return tea.Batch(ui.CloseView(m), ui.Status("Message discarded"))
	}
	return cmd
}

// Draft returns the message the form currently describes.
func (m *Model) Draft() (mime.Draft, model.Identity, error) {
	id, err := model.FindIdentity(m.identities, m.fb.identity)
	if err != nil {
		return mime.Draft{}, model.Identity{}, err
	}
	return mime.Draft{
		From:       id.Address(),
		To:         m.fb.to,
		Cc:         m.fb.cc,
		Bcc:        m.fb.bcc,
		Subject:    m.fb.subject,
		Body:       m.fb.body,
		InReplyTo:  m.opts.InReplyTo,
		References: m.opts.References,
		Date:       m.ctx.Clock(),
		MessageID:  mime.NewMessageID(id.Email),
	}, id, nil
}

func (m *Model) save() tea.Cmd {
	draft, id, err := m.Draft()
	if err != nil {
		return ui.Error(fmt.Errorf("saving draft: %w", err))
	}
	folder := id.Drafts
	if folder == "" {
		folder = filepath.Join(m.ctx.Config.Maildir, "drafts")
	}

	return func() tea.Msg {
		raw, err := mime.Compose(draft)
		if err != nil {
			return ui.ErrorMsg{Err: fmt.Errorf("saving draft: %w", err)}
		}
		path, err := ingest.Deliver(folder, raw, "", "")
		if err != nil {
			return ui.ErrorMsg{Err: fmt.Errorf("saving draft: %w", err)}
		}
		return ui.StatusMsg{Text: "Draft saved to " + path}
	}
}

// Render implements ui.View. The form paints itself through View.
func (m *Model) Render(*render.Renderer) {}

// View implements ui.Painter.
func (m *Model) View() string {
	titleText := "New Message"
	if m.opts.InReplyTo != "" {
		titleText = "Reply"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// Resize implements ui.View.
func (m *Model) Resize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// Close implements ui.View.
func (m *Model) Close() {}

func (m *Model) buildForm() *huh.Form {
	var fields []huh.Field
	if f := m.identityField(); f != nil {
		fields = append(fields, f)
	}
	fields = append(fields,
		huh.NewInput().
			Title("To").
			Value(&m.fb.to).
			Validate(validateAddresses(true)),
		huh.NewInput().
			Title("Cc").
			Value(&m.fb.cc).
			Validate(validateAddresses(false)),
		huh.NewInput().
			Title("Bcc").
			Value(&m.fb.bcc).
			Validate(validateAddresses(false)),
		huh.NewInput().
			Title("Subject").
			Value(&m.fb.subject),
		huh.NewText().
			Title("Body").
			Lines(12).
			Value(&m.fb.body),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m *Model) identityField() huh.Field {
	if len(m.identities) < 2 {
		return nil
	}
	opts := make([]huh.Option[string], len(m.identities))
	for i, id := range m.identities {
		opts[i] = huh.NewOption(id.Address(), id.Name)
	}
	return huh.NewSelect[string]().
		Title("From").
		Options(opts...).
		Value(&m.fb.identity)
}

func (m *Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m *Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateAddresses(required bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if required {
				return fmt.Errorf("at least one recipient is required")
			}
			return nil
		}
		if _, err := mail.ParseAddressList(s); err != nil {
			return fmt.Errorf("invalid address list: %w", err)
		}
		return nil
	}
}
