// Package render composes terminal screens cell by cell. A Renderer writes
// into a fixed-size Grid, keeping column accounting correct for wide and
// combining glyphs, and the Grid is serialized with lipgloss for display.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lineCode/ner/internal/theme"
)

// Attr is a set of text attributes.
type Attr uint8

const (
	AttrBold Attr = 1 << iota
	AttrReverse
	AttrUnderline
)

// Cell is one column of the grid. A double-width glyph occupies a lead
// cell with Width 2 followed by a continuation cell with Width 0 and no
// content.
type Cell struct {
	Content string
	Width   int
	Color   theme.Color
	Attr    Attr
}

func blankCell(c theme.Color, a Attr) Cell {
	return Cell{Content: " ", Width: 1, Color: c, Attr: a}
}

// Continuation reports whether the cell is the right half of a wide glyph.
func (c Cell) Continuation() bool {
	return c.Width == 0
}

// Grid is a fixed-size character matrix addressed by (row, column).
type Grid struct {
	width  int
	height int
	cells  []Cell
}

// NewGrid returns a blank grid. Negative dimensions are treated as zero.
func NewGrid(width, height int) *Grid {
	width = max(width, 0)
	height = max(height, 0)
	g := &Grid{width: width, height: height, cells: make([]Cell, width*height)}
	g.Clear()
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Clear blanks every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = blankCell(theme.ColorDefault, 0)
	}
}

// Contains reports whether (row, col) is inside the grid.
func (g *Grid) Contains(row, col int) bool {
	return row >= 0 && row < g.height && col >= 0 && col < g.width
}

// Cell returns the cell at (row, col). Out of range positions return a
// blank cell.
func (g *Grid) Cell(row, col int) Cell {
	if !g.Contains(row, col) {
		return blankCell(theme.ColorDefault, 0)
	}
	return g.cells[row*g.width+col]
}

func (g *Grid) at(row, col int) *Cell {
	return &g.cells[row*g.width+col]
}

// release blanks whatever wide glyph covers (row, col) so that a new cell
// can be placed there without leaving half a glyph behind.
func (g *Grid) release(row, col int) {
	c := g.at(row, col)
	switch {
	case c.Continuation() && col > 0:
		lead := g.at(row, col-1)
		*lead = blankCell(lead.Color, lead.Attr)
	case c.Width == 2 && col+1 < g.width:
		tail := g.at(row, col+1)
		*tail = blankCell(tail.Color, tail.Attr)
	}
}

// Set places c at (row, col). A wide cell also claims the column to its
// right. Cells that do not fit are ignored.
func (g *Grid) Set(row, col int, c Cell) {
	if !g.Contains(row, col) || col+max(c.Width, 1) > g.width {
		return
	}
	g.release(row, col)
	if c.Width == 2 {
		g.release(row, col+1)
		*g.at(row, col+1) = Cell{Width: 0, Color: c.Color, Attr: c.Attr}
	}
	*g.at(row, col) = c
}

// appendMark attaches a zero-width glyph to the cell at (row, col), or to
// the lead cell if (row, col) is a continuation.
func (g *Grid) appendMark(row, col int, mark rune) bool {
	if !g.Contains(row, col) {
		return false
	}
	if g.at(row, col).Continuation() {
		col--
		if col < 0 {
			return false
		}
	}
	c := g.at(row, col)
	c.Content += string(mark)
	return true
}

// setAttr replaces the attributes of every cell from col to the end of row.
func (g *Grid) setAttr(row, col int, a Attr) {
	if row < 0 || row >= g.height {
		return
	}
	for x := max(col, 0); x < g.width; x++ {
		g.at(row, x).Attr = a
	}
}

// PlainRow returns the text of row without styling. Continuation cells
// contribute nothing, so the result's display width equals the grid width.
func (g *Grid) PlainRow(row int) string {
	if row < 0 || row >= g.height {
		return ""
	}
	var b strings.Builder
	for x := 0; x < g.width; x++ {
		b.WriteString(g.at(row, x).Content)
	}
	return b.String()
}

// PlainText returns every row joined by newlines.
func (g *Grid) PlainText() string {
	rows := make([]string, g.height)
	for y := range rows {
		rows[y] = g.PlainRow(y)
	}
	return strings.Join(rows, "\n")
}

type styleKey struct {
	color theme.Color
	attr  Attr
}

// View serializes the grid for display, emitting one styled segment per
// run of cells sharing color and attributes.
func (g *Grid) View(p *theme.Palette) string {
	styles := make(map[styleKey]lipgloss.Style)
	styleFor := func(k styleKey) lipgloss.Style {
		if s, ok := styles[k]; ok {
			return s
		}
		s := p.Style(k.color).
			Bold(k.attr&AttrBold != 0).
			Reverse(k.attr&AttrReverse != 0).
			Underline(k.attr&AttrUnderline != 0)
		styles[k] = s
		return s
	}

	rows := make([]string, g.height)
	var line, run strings.Builder
	for y := 0; y < g.height; y++ {
		line.Reset()
		run.Reset()
		var cur styleKey
		for x := 0; x < g.width; x++ {
			c := g.at(y, x)
			if c.Continuation() {
				continue
			}
			k := styleKey{c.Color, c.Attr}
			if run.Len() > 0 && k != cur {
				line.WriteString(styleFor(cur).Render(run.String()))
				run.Reset()
			}
			cur = k
			run.WriteString(c.Content)
		}
		if run.Len() > 0 {
			line.WriteString(styleFor(cur).Render(run.String()))
		}
		rows[y] = line.String()
	}
	return strings.Join(rows, "\n")
}
