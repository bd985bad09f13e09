package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color identifies what a piece of text is, not how it looks. The palette
// maps each role to a foreground/background pair.
type Color int

const (
	ColorDefault Color = iota

	// General
	ColorCutOffIndicator
	ColorMoreLessIndicator
	ColorEmptySpaceIndicator
	ColorLineWrapIndicator

	// Status bar
	ColorStatusBarStatus
	ColorStatusBarStatusDivider
	ColorStatusBarMessage
	ColorStatusBarPrompt

	// Search view
	ColorSearchViewDate
	ColorSearchViewMessageCountComplete
	ColorSearchViewMessageCountPartial
	ColorSearchViewAuthors
	ColorSearchViewSubject
	ColorSearchViewTags

	// Thread view
	ColorThreadViewArrow
	ColorThreadViewDate
	ColorThreadViewTags

	// Message view
	ColorEmailViewHeader

	// View list
	ColorViewViewNumber
	ColorViewViewName
	ColorViewViewStatus

	// Search list
	ColorSearchListViewName
	ColorSearchListViewTerms
	ColorSearchListViewResults

	// Message parts
	ColorAttachmentFilename
	ColorAttachmentMimeType
	ColorAttachmentFilesize

	// Citation levels
	ColorCitationLevel1
	ColorCitationLevel2
	ColorCitationLevel3
	ColorCitationLevel4

	colorCount
)

// colorNames are the keys accepted under `colors:` in the config file.
var colorNames = map[string]Color{
	"cut_off_indicator":     ColorCutOffIndicator,
	"more_less_indicator":   ColorMoreLessIndicator,
	"empty_space_indicator": ColorEmptySpaceIndicator,
	"line_wrap_indicator":   ColorLineWrapIndicator,

	"status_bar_status":         ColorStatusBarStatus,
	"status_bar_status_divider": ColorStatusBarStatusDivider,
	"status_bar_message":        ColorStatusBarMessage,
	"status_bar_prompt":         ColorStatusBarPrompt,

	"search_view_date":                   ColorSearchViewDate,
	"search_view_message_count_complete": ColorSearchViewMessageCountComplete,
	"search_view_message_count_partial":  ColorSearchViewMessageCountPartial,
	"search_view_authors":                ColorSearchViewAuthors,
	"search_view_subject":                ColorSearchViewSubject,
	"search_view_tags":                   ColorSearchViewTags,

	"thread_view_arrow": ColorThreadViewArrow,
	"thread_view_date":  ColorThreadViewDate,
	"thread_view_tags":  ColorThreadViewTags,

	"email_view_header": ColorEmailViewHeader,

	"view_view_number": ColorViewViewNumber,
	"view_view_name":   ColorViewViewName,
	"view_view_status": ColorViewViewStatus,

	"search_list_view_name":    ColorSearchListViewName,
	"search_list_view_terms":   ColorSearchListViewTerms,
	"search_list_view_results": ColorSearchListViewResults,

	"attachment_filename": ColorAttachmentFilename,
	"attachment_mimetype": ColorAttachmentMimeType,
	"attachment_filesize": ColorAttachmentFilesize,

	"citation_level_1": ColorCitationLevel1,
	"citation_level_2": ColorCitationLevel2,
	"citation_level_3": ColorCitationLevel3,
	"citation_level_4": ColorCitationLevel4,
}

// ColorByName looks up a role by its config key.
func ColorByName(name string) (Color, bool) {
	c, ok := colorNames[name]
	return c, ok
}

// Terminal colors accepted in the config file, mapped to ANSI indices.
var terminalColors = map[string]lipgloss.TerminalColor{
	"black":   lipgloss.Color("0"),
	"red":     lipgloss.Color("1"),
	"green":   lipgloss.Color("2"),
	"yellow":  lipgloss.Color("3"),
	"blue":    lipgloss.Color("4"),
	"magenta": lipgloss.Color("5"),
	"cyan":    lipgloss.Color("6"),
	"white":   lipgloss.Color("7"),
	"default": lipgloss.NoColor{},
}

// ParseTerminalColor accepts a color name, an ANSI index ("208") or a hex
// value ("#ff8800"). The empty string is the terminal default.
func ParseTerminalColor(s string) (lipgloss.TerminalColor, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return lipgloss.NoColor{}, nil
	}
	if c, ok := terminalColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && (len(s) == 7 || len(s) == 4) {
		return lipgloss.Color(s), nil
	}
	if strings.Trim(s, "0123456789") == "" && len(s) <= 3 {
		return lipgloss.Color(s), nil
	}
	return nil, fmt.Errorf("unknown color %q", s)
}

// Pair is a foreground/background combination.
type Pair struct {
	Fg lipgloss.TerminalColor
	Bg lipgloss.TerminalColor
}

func pair(fg, bg string) Pair {
	return Pair{Fg: terminalColors[fg], Bg: terminalColors[bg]}
}

// Palette maps color roles to terminal colors.
type Palette struct {
	pairs [colorCount]Pair
}

// DefaultPalette returns the built-in color scheme.
func DefaultPalette() *Palette {
	p := &Palette{}
	for i := range p.pairs {
		p.pairs[i] = pair("default", "default")
	}

	p.pairs[ColorCutOffIndicator] = pair("green", "default")
	p.pairs[ColorMoreLessIndicator] = pair("black", "green")
	p.pairs[ColorEmptySpaceIndicator] = pair("cyan", "default")
	p.pairs[ColorLineWrapIndicator] = pair("green", "default")

	p.pairs[ColorStatusBarStatus] = pair("white", "blue")
	p.pairs[ColorStatusBarStatusDivider] = pair("white", "blue")
	p.pairs[ColorStatusBarMessage] = pair("black", "white")
	p.pairs[ColorStatusBarPrompt] = pair("white", "default")

	p.pairs[ColorSearchViewDate] = pair("yellow", "default")
	p.pairs[ColorSearchViewMessageCountComplete] = pair("green", "default")
	p.pairs[ColorSearchViewMessageCountPartial] = pair("magenta", "default")
	p.pairs[ColorSearchViewAuthors] = pair("cyan", "default")
	p.pairs[ColorSearchViewSubject] = pair("white", "default")
	p.pairs[ColorSearchViewTags] = pair("red", "default")

	p.pairs[ColorThreadViewArrow] = pair("green", "default")
	p.pairs[ColorThreadViewDate] = pair("cyan", "default")
	p.pairs[ColorThreadViewTags] = pair("red", "default")

	p.pairs[ColorEmailViewHeader] = pair("cyan", "default")

	p.pairs[ColorViewViewNumber] = pair("cyan", "default")
	p.pairs[ColorViewViewName] = pair("green", "default")
	p.pairs[ColorViewViewStatus] = pair("white", "default")

	p.pairs[ColorSearchListViewName] = pair("cyan", "default")
	p.pairs[ColorSearchListViewTerms] = pair("yellow", "default")
	p.pairs[ColorSearchListViewResults] = pair("green", "default")

	p.pairs[ColorAttachmentFilename] = pair("yellow", "default")
	p.pairs[ColorAttachmentMimeType] = pair("magenta", "default")
	p.pairs[ColorAttachmentFilesize] = pair("green", "default")

	p.pairs[ColorCitationLevel1] = pair("green", "default")
	p.pairs[ColorCitationLevel2] = pair("yellow", "default")
	p.pairs[ColorCitationLevel3] = pair("cyan", "default")
	p.pairs[ColorCitationLevel4] = pair("magenta", "default")

	return p
}

// Pair returns the colors for c. Unknown roles get the terminal default.
func (p *Palette) Pair(c Color) Pair {
	if c < 0 || c >= colorCount {
		return p.pairs[ColorDefault]
	}
	return p.pairs[c]
}

// Set replaces the colors for c.
func (p *Palette) Set(c Color, pr Pair) {
	if c < 0 || c >= colorCount {
		return
	}
	p.pairs[c] = pr
}

// Override sets a role from config strings, e.g. ("search_view_date",
// "yellow", "default").
func (p *Palette) Override(name, fg, bg string) error {
	c, ok := ColorByName(name)
	if !ok {
		return fmt.Errorf("unknown color role %q", name)
	}
	fgc, err := ParseTerminalColor(fg)
	if err != nil {
		return fmt.Errorf("color %s foreground: %w", name, err)
	}
	bgc, err := ParseTerminalColor(bg)
	if err != nil {
		return fmt.Errorf("color %s background: %w", name, err)
	}
	p.Set(c, Pair{Fg: fgc, Bg: bgc})
	return nil
}

// Style returns a lipgloss style carrying the colors for c.
func (p *Palette) Style(c Color) lipgloss.Style {
	pr := p.Pair(c)
	return lipgloss.NewStyle().Foreground(pr.Fg).Background(pr.Bg)
}
