package render

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/lineCode/ner/internal/theme"
)

// Unlimited is the width budget that only the row edge bounds.
const Unlimited = math.MaxInt

// TruncationGlyph marks a row whose content did not fit.
const TruncationGlyph = "$"

// widths measures glyphs independently of the locale, so ambiguous-width
// box drawing characters always take one column.
var widths = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// StringWidth returns the number of columns s occupies when written.
func StringWidth(s string) int {
	return widths.StringWidth(s)
}

// State is the formatting applied to subsequent writes. Consumed counts the
// columns used since the current field began; it is reset only by the
// calls that open a new field (SetMaxWidth, MoveTo, Advance, NextLine).
type State struct {
	Color    theme.Color
	Attr     Attr
	MaxWidth int
	Consumed int
}

// Renderer writes text into a Grid one field at a time.
//
// Writes past the field's width budget or the row edge are dropped and
// flag the row as overflowed; AddTruncationMarker then marks it. Writes at
// an off-screen position are suppressed entirely.
type Renderer struct {
	grid  *Grid
	state State

	row, col   int
	fieldStart int

	offScreen bool
	overflow  bool
}

// New returns a renderer positioned at the top-left corner of g.
func New(g *Grid) *Renderer {
	r := &Renderer{
		grid:  g,
		state: State{MaxWidth: Unlimited},
	}
	r.offScreen = !g.Contains(0, 0)
	return r
}

// Grid returns the grid being drawn on.
func (r *Renderer) Grid() *Grid { return r.grid }

// State returns the current formatting state.
func (r *Renderer) State() State { return r.state }

// Row returns the current row.
func (r *Renderer) Row() int { return r.row }

// Col returns the column the next glyph will be written at.
func (r *Renderer) Col() int { return r.col }

// OffScreen reports whether the cursor is outside the grid.
func (r *Renderer) OffScreen() bool { return r.offScreen }

// Overflowed reports whether the current field dropped input.
func (r *Renderer) Overflowed() bool { return r.overflow }

// MoveTo positions the cursor and starts a new field there.
func (r *Renderer) MoveTo(row, col int) {
	r.row, r.col = row, col
	r.fieldStart = col
	r.state.Consumed = 0
	r.offScreen = !r.grid.Contains(row, col)
	if !r.offScreen {
		r.overflow = false
	}
}

// NextLine moves to column 0 of the following row.
func (r *Renderer) NextLine() {
	r.row++
	r.col = 0
	r.fieldStart = 0
	r.state.Consumed = 0
	r.offScreen = !r.grid.Contains(r.row, 0)
	if !r.offScreen {
		r.overflow = false
	}
}

// Advance starts the next fixed-width field n columns after the start of
// the current one, discarding any overflow of the current field.
func (r *Renderer) Advance(n int) {
	r.col = r.fieldStart + n
	r.fieldStart = r.col
	r.state.Consumed = 0
	r.overflow = false
}

// SetMaxWidth bounds the width of the field that starts at the current
// column. Use Unlimited to remove the bound.
func (r *Renderer) SetMaxWidth(n int) {
	if n < 0 {
		n = Unlimited
	}
	r.state.MaxWidth = n
	r.state.Consumed = 0
}

// SetColor sets the color of subsequent writes.
func (r *Renderer) SetColor(c theme.Color) {
	r.state.Color = c
}

// SetAttr sets the attributes of subsequent writes.
func (r *Renderer) SetAttr(a Attr) {
	r.state.Attr = a
}

// SetLineAttributes sets the attributes of subsequent writes and repaints
// the rest of the current row with them.
func (r *Renderer) SetLineAttributes(a Attr) {
	r.state.Attr = a
	if r.offScreen {
		return
	}
	r.grid.setAttr(r.row, r.col, a)
}

// fits reports whether n more columns fit in both the field budget and the
// row, flagging overflow when they do not.
func (r *Renderer) fits(n int) bool {
	if n > r.state.MaxWidth-r.state.Consumed || r.col+n > r.grid.width {
		r.overflow = true
		return false
	}
	return true
}

// Skip moves the cursor n columns right without drawing.
func (r *Renderer) Skip(n int) {
	if r.offScreen || r.overflow || n <= 0 {
		return
	}
	if !r.fits(n) {
		return
	}
	r.col += n
	r.state.Consumed += n
}

// Write draws text with the current color and attributes and returns the
// number of columns it used. Invalid UTF-8 or a control character ends
// the run and flags the field as truncated; drawing stops at the first
// glyph that does not fit.
func (r *Renderer) Write(text string) int {
	return r.write(text, r.state.Color, r.state.Attr)
}

// Writef formats according to a format specifier and writes the result.
func (r *Renderer) Writef(format string, args ...any) int {
	return r.Write(fmt.Sprintf(format, args...))
}

func (r *Renderer) write(text string, color theme.Color, attr Attr) int {
	if r.offScreen || r.overflow {
		return 0
	}

	written := 0
	for i := 0; i < len(text); {
		ch, size := utf8.DecodeRuneInString(text[i:])
		if (ch == utf8.RuneError && size <= 1) || unicode.IsControl(ch) {
			r.overflow = true
			break
		}
		i += size

		w := widths.RuneWidth(ch)
		if w == 0 {
			if r.state.Consumed > 0 {
				r.grid.appendMark(r.row, r.col-1, ch)
				continue
			}
			// A mark opening a field sits on a blank base inside it.
			if !r.fits(1) {
				break
			}
			r.grid.Set(r.row, r.col, Cell{Content: " " + string(ch), Width: 1, Color: color, Attr: attr})
			r.col++
			r.state.Consumed++
			written++
			continue
		}
		if !r.fits(w) {
			break
		}

		r.grid.Set(r.row, r.col, Cell{Content: string(ch), Width: w, Color: color, Attr: attr})
		r.col += w
		r.state.Consumed += w
		written += w
	}
	return written
}

// Print writes each span in turn.
func (r *Renderer) Print(spans ...Span) int {
	n := 0
	for _, s := range spans {
		if s.inherit {
			n += r.write(s.Text, r.state.Color, r.state.Attr|s.Attr)
		} else {
			n += r.write(s.Text, s.Color, r.state.Attr|s.Attr)
		}
	}
	return n
}

// AddTruncationMarker replaces the last column of the current row with the
// truncation glyph if the current field overflowed.
func (r *Renderer) AddTruncationMarker() {
	if r.offScreen || !r.overflow || r.grid.width == 0 {
		return
	}
	r.grid.Set(r.row, r.grid.width-1, Cell{
		Content: TruncationGlyph,
		Width:   1,
		Color:   theme.ColorCutOffIndicator,
		Attr:    r.state.Attr,
	})
}
