package render

import (
	"fmt"

	"github.com/lineCode/ner/internal/theme"
)

// Span is a piece of text with its own formatting. Spans carry their style
// with them instead of mutating the renderer, so a styled span never leaks
// its color into the text after it.
type Span struct {
	Text    string
	Color   theme.Color
	Attr    Attr
	inherit bool
}

// Styled returns a span drawn in c with extra attributes added to the
// renderer's current ones.
func Styled(text string, c theme.Color, attrs ...Attr) Span {
	s := Span{Text: text, Color: c}
	for _, a := range attrs {
		s.Attr |= a
	}
	return s
}

// Plain returns a span drawn with the renderer's current color.
func Plain(text string) Span {
	return Span{Text: text, inherit: true}
}

// Plainf formats a plain span.
func Plainf(format string, args ...any) Span {
	return Plain(fmt.Sprintf(format, args...))
}
