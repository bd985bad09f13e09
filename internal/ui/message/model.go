// Package message shows one mail: its main headers, the text body and a
// list of attachments.
package message

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/reflow/wordwrap"

	"github.com/lineCode/ner/internal/mime"
	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
	"github.com/lineCode/ner/internal/timeutil"
	"github.com/lineCode/ner/internal/ui"
	"github.com/lineCode/ner/internal/ui/compose"
)

const (
	lessIndicator = "[less]"
	moreIndicator = "[more]"
)

var citationColors = []theme.Color{
	theme.ColorCitationLevel1,
	theme.ColorCitationLevel2,
	theme.ColorCitationLevel3,
	theme.ColorCitationLevel4,
}

type header struct {
	name  string
	value string
}

// Model is the message view.
type Model struct {
	ctx     *ui.Context
	msg     model.Message
	parsed  *mime.Parsed
	headers []header
	lines   [][]render.Span
	browser ui.LineBrowser
	width   int
	height  int
}

// New creates a message view for msg, whose file has been parsed.
func New(ctx *ui.Context, msg model.Message, parsed *mime.Parsed) *Model {
	m := &Model{ctx: ctx, msg: msg, parsed: parsed}
	m.headers = []header{
		{"To", parsed.Header.To},
		{"From", parsed.Header.From},
		{"Subject", parsed.Header.Subject},
		{"Date", formatDate(parsed, msg)},
	}
	m.Resize(80, 24)
	return m
}

func formatDate(parsed *mime.Parsed, msg model.Message) string {
	date := parsed.Header.Date
	if date.IsZero() {
		date = msg.Date
	}
	if date.IsZero() {
		return ""
	}
	return date.Format("Mon, 02 Jan 2006 15:04:05 -0700")
}

// Load returns a command that parses msg's file and opens it.
func Load(ctx *ui.Context, msg model.Message) tea.Cmd {
	return func() tea.Msg {
		parsed, err := mime.ParseFile(msg.Filename)
		if err != nil {
			return ui.ErrorMsg{Err: fmt.Errorf("opening message %s: %w", msg.ID, err)}
		}
		return ui.OpenViewMsg{View: New(ctx, msg, parsed)}
	}
}

// LoadByID returns a command that looks up the message id in the index
// and opens it.
func LoadByID(ctx *ui.Context, id string) tea.Cmd {
	return func() tea.Msg {
		msg, err := ctx.Index.Message(ctx.Base, id)
		if err != nil {
			return ui.ErrorMsg{Err: err}
		}
		return Load(ctx, *msg)()
	}
}

// Name implements ui.View.
func (m *Model) Name() string { return "message-view" }

// Status implements ui.View.
func (m *Model) Status() []string {
	return []string{"id:" + m.msg.ID, m.browser.Status(len(m.lines))}
}

// Init implements ui.View.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements ui.View.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if m.browser.HandleKey(km, m.ctx.Keys, len(m.lines)) {
		return nil
	}
	if key.Matches(km, m.ctx.Keys.Reply) {
		return compose.Reply(m.ctx, m.msg)
	}
	return nil
}

// Resize implements ui.View. Body lines are rewrapped to the new width.
func (m *Model) Resize(width, height int) {
	if width != m.width || m.lines == nil {
		m.lines = bodyLines(m.parsed, width)
	}
	m.width = width
	m.height = height
	m.browser.Resize(m.visibleLines())
	m.browser.Clamp(len(m.lines))
}

// Close implements ui.View.
func (m *Model) Close() {}

func (m *Model) visibleLines() int {
	return max(m.height-len(m.headers)-1, 0)
}

// Render implements ui.View.
func (m *Model) Render(r *render.Renderer) {
	width := r.Grid().Width()
	height := r.Grid().Height()

	row := 0
	for _, h := range m.headers {
		r.MoveTo(row, 0)
		r.SetMaxWidth(render.Unlimited)
		r.SetAttr(0)
		r.Print(
			render.Styled(h.name+": ", theme.ColorEmailViewHeader),
			render.Styled(h.value, theme.ColorDefault),
		)
		r.AddTruncationMarker()
		row++
	}

	r.MoveTo(row, 0)
	r.Print(render.Styled(strings.Repeat("─", width), theme.ColorDefault))
	row++
	bodyStart := row

	last := min(m.browser.Last(), len(m.lines))
	for i := m.browser.Offset; i < last && row < height; i++ {
		r.MoveTo(row, 0)
		r.SetColor(theme.ColorDefault)
		var attr render.Attr
		if i == m.browser.Selected {
			attr = render.AttrReverse
		}
		r.SetLineAttributes(attr)
		r.Print(m.lines[i]...)
		r.AddTruncationMarker()
		row++
	}

	for ; row < height; row++ {
		r.MoveTo(row, 0)
		r.SetAttr(0)
		r.Print(render.Styled("~", theme.ColorEmptySpaceIndicator, render.AttrBold))
	}

	if m.browser.Offset > 0 && bodyStart < height {
		r.MoveTo(bodyStart, width-len(lessIndicator))
		r.SetAttr(0)
		r.Print(render.Styled(lessIndicator, theme.ColorMoreLessIndicator))
	}
	if m.browser.Last() < len(m.lines) && height > bodyStart {
		r.MoveTo(height-1, width-len(moreIndicator))
		r.SetAttr(0)
		r.Print(render.Styled(moreIndicator, theme.ColorMoreLessIndicator))
	}
}

// bodyLines splits the text body into display lines wrapped at width,
// followed by one line per attachment.
func bodyLines(parsed *mime.Parsed, width int) [][]render.Span {
	text := ansi.Strip(parsed.PlainText())
	text = strings.TrimRight(text, "\n")
	if width > 0 {
		text = wordwrap.String(text, width)
	}

	var lines [][]render.Span
	if text != "" {
		for _, l := range strings.Split(text, "\n") {
			l = strings.ReplaceAll(l, "\t", "    ")
			lines = append(lines, []render.Span{render.Styled(l, citationColor(l))})
		}
	}

	attachments := parsed.Attachments()
	if len(attachments) > 0 && len(lines) > 0 {
		lines = append(lines, nil)
	}
	for _, a := range attachments {
		name := a.Filename
		if name == "" {
			name = "(unnamed)"
		}
		lines = append(lines, []render.Span{
			render.Styled(name, theme.ColorAttachmentFilename),
			render.Plain(" "),
			render.Styled("["+a.ContentType+"]", theme.ColorAttachmentMimeType),
			render.Plain(" "),
			render.Styled(timeutil.FormatByteSize(a.Size), theme.ColorAttachmentFilesize),
		})
	}
	return lines
}

// citationColor picks a color by the number of leading '>' marks.
func citationColor(line string) theme.Color {
	level := 0
	for _, ch := range line {
		if ch == '>' {
			level++
		} else if ch != ' ' {
			break
		}
	}
	if level == 0 {
		return theme.ColorDefault
	}
	return citationColors[min(level, len(citationColors))-1]
}
