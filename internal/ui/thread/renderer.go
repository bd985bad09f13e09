package thread

import (
	"strings"
	"time"

	"github.com/lineCode/ner/internal/model"
	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
	"github.com/lineCode/ner/internal/timeutil"
	"github.com/lineCode/ner/internal/tree"
)

// Renderer draws a materialized message tree one message per row, with
// branch art showing the reply structure.
type Renderer struct {
	// Selected and Offset are flat pre-order indices. Offset is the index
	// drawn on the first row.
	Selected int
	Offset   int

	Now time.Time
}

// Draw draws messages onto the renderer's grid, stopping at the last row.
func (tr Renderer) Draw(r *render.Renderer, messages tree.Tree[model.Message]) {
	height := r.Grid().Height()

	// leading[d] is true when the ancestor at depth d is the last of its
	// siblings.
	var leading []bool
	i := 0
	for v := range messages.All() {
		leading = leading[:v.Depth]
		if i >= tr.Offset {
			row := i - tr.Offset
			if row >= height {
				return
			}
			tr.drawLine(r, row, v, leading, i == tr.Selected)
		}
		leading = append(leading, v.Last)
		i++
	}
}

func (tr Renderer) drawLine(r *render.Renderer, row int, v tree.Visit[model.Message], leading []bool, selected bool) {
	msg := v.Value

	r.MoveTo(row, 0)
	r.SetMaxWidth(render.Unlimited)
	r.SetColor(theme.ColorDefault)
	var attr render.Attr
	if selected {
		attr |= render.AttrReverse
	}
	if msg.HasTag(model.TagUnread) {
		attr |= render.AttrBold
	}
	r.SetLineAttributes(attr)

	r.Print(render.Styled(branchArt(leading, v.Last), theme.ColorThreadViewArrow))

	r.Skip(1)
	author := msg.Author
	if author == "" {
		author = msg.From
	}
	r.Print(render.Styled(author, theme.ColorDefault))

	r.Skip(1)
	r.Print(render.Styled(timeutil.RelativeTime(tr.Now, msg.Date), theme.ColorThreadViewDate))

	for _, tag := range msg.Tags {
		r.Skip(1)
		r.Print(render.Styled(tag, theme.ColorThreadViewTags))
	}

	r.AddTruncationMarker()
}

// branchArt returns one cell per ancestor, then the corner and the arrow.
func branchArt(leading []bool, last bool) string {
	var b strings.Builder
	for _, ancestorLast := range leading {
		if ancestorLast {
			b.WriteString(" ")
		} else {
			b.WriteString("│")
		}
	}
	if last {
		b.WriteString("└")
	} else {
		b.WriteString("├")
	}
	b.WriteString(">")
	return b.String()
}
