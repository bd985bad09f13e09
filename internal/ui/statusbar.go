package ui

import (
	"strings"

	"github.com/lineCode/ner/internal/render"
	"github.com/lineCode/ner/internal/theme"
)

// DrawStatusBar fills the renderer's current row with the status bar
// background and draws "[name] | status | status".
func DrawStatusBar(r *render.Renderer, name string, status []string) {
	row := r.Row()
	fill(r, row, theme.ColorStatusBarStatus)

	r.MoveTo(row, 0)
	r.SetMaxWidth(render.Unlimited)
	r.SetAttr(0)
	r.Print(render.Styled("["+name+"]", theme.ColorStatusBarStatus, render.AttrBold))
	for _, s := range status {
		if s == "" {
			continue
		}
		r.Skip(1)
		r.Print(render.Styled("|", theme.ColorStatusBarStatusDivider, render.AttrBold))
		r.Skip(1)
		r.Print(render.Styled(s, theme.ColorStatusBarStatus))
	}
	r.AddTruncationMarker()
}

// DrawMessage draws text centered and bold on the renderer's current row.
func DrawMessage(r *render.Renderer, text string) {
	row := r.Row()
	r.MoveTo(row, 0)
	if text == "" {
		return
	}
	width := r.Grid().Width()
	col := max((width-render.StringWidth(text))/2, 0)
	r.MoveTo(row, col)
	r.SetMaxWidth(render.Unlimited)
	r.SetAttr(0)
	r.Print(render.Styled(text, theme.ColorStatusBarMessage, render.AttrBold))
}

// fill paints row with blanks in color c.
func fill(r *render.Renderer, row int, c theme.Color) {
	r.MoveTo(row, 0)
	r.SetMaxWidth(render.Unlimited)
	r.SetAttr(0)
	r.Print(render.Styled(strings.Repeat(" ", r.Grid().Width()), c))
}
