package vt

import "github.com/dguik/discode/internal/color"

// colorMode distinguishes how a Style's fg/bg fields should be interpreted.
type colorMode uint8

const (
	colorDefault colorMode = iota
	colorANSI              // 0-15, ansi16 index
	colorXterm256
	colorTruecolor
)

// colorRef is a single fg or bg color slot.
type colorRef struct {
	mode colorMode
	idx  int // for colorANSI/colorXterm256
	rgb  color.RGB
}

var defaultColorRef = colorRef{mode: colorDefault}

// Style holds SGR attributes for a single cell.
type Style struct {
	Bold      bool
	Italic    bool
	Underline bool
	Inverse   bool
	Fg        colorRef
	Bg        colorRef
}

var defaultStyle = Style{Fg: defaultColorRef, Bg: defaultColorRef}

// resolvedFgBg returns the (fg, bg) pair with Inverse applied, swapping the
// two when it is set. Snapshot does not call it: snapshot styles keep Fg/Bg
// as written and carry the Inverse flag.
func (s Style) resolvedFgBg() (colorRef, colorRef) {
	if !s.Inverse {
		return s.Fg, s.Bg
	}
	return s.Bg, s.Fg
}

// Cell is one glyph position in the grid.
type Cell struct {
	Ch    rune
	Width int // 0, 1, or 2; 0 marks the continuation slot after a wide glyph
	Style Style
}

var blankCell = Cell{Ch: ' ', Width: 1, Style: defaultStyle}

// StyledRun is a maximal span of cells sharing one Style.
type StyledRun struct {
	Text  string
	Style Style
}

// StyledLine is one output row: its plain text plus the style runs that
// compose it.
type StyledLine struct {
	Text string
	Runs []StyledRun
}

// Snapshot is the result of rendering the grid to a bounded viewport.
type Snapshot struct {
	Lines        []StyledLine
	CursorRow    int
	CursorCol    int
	CursorVisible bool
}
