// Package vt implements the VT screen (C1): an ANSI/CSI/OSC/APC byte-stream
// interpreter that feeds a cell grid with scrollback, SGR styling, wide
// glyphs, and an alternate screen, and that can be rendered as a bounded
// snapshot for periodic chat refresh.
//
// It is structured the way the teacher's status tracker wraps a VT engine
// (a mutex-guarded struct exposing Write/Resize), but the engine itself is
// built from scratch against the grid/scrollback/snapshot contract this
// system needs rather than wrapping a third-party terminal library.
package vt

import "sync"

// VT is a single window's terminal state. All methods are safe for
// concurrent use, but per the concurrency model each VT must be owned by
// at most one writer goroutine at a time; readers (snapshot producers) may
// overlap with that writer.
type VT struct {
	mu sync.Mutex
	s  *screen
}

// New creates a VT screen sized cols x rows.
func New(cols, rows int) *VT {
	return &VT{s: newScreen(cols, rows)}
}

// Write feeds PTY output bytes into the screen. Writes are additive and
// never fail; malformed escape sequences are silently dropped and the
// parser resynchronizes.
func (v *VT) Write(data []byte) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.s.write(data)
}

// Resize changes the grid dimensions, clipping or padding existing content.
func (v *VT) Resize(cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.s.resize(cols, rows)
}

// PrivateMode reports the current value of DEC private mode n (for the
// query responder's DECRQM replies).
func (v *VT) PrivateMode(n int) (value, known bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	val, ok := v.s.privateModes[n]
	return val, ok
}

// Size returns the current grid dimensions.
func (v *VT) Size() (cols, rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.s.cols, v.s.rows
}

// CursorPosition returns the 1-based (row, col) the query responder reports
// for CSI 6n.
func (v *VT) CursorPosition() (row, col int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.s.cursorRow + 1, v.s.cursorCol + 1
}

// Snapshot renders the grid into at most (cols, rows) lines. When the
// program has drawn with absolute positioning (cursor moves, full-screen
// clears), the view starts at the top of the grid; otherwise it is the
// trailing `rows` lines, matching append-only log behavior.
func (v *VT) Snapshot(cols, rows int) Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	g := v.s.active()
	lines := renderLines(g, v.s.scrollback, v.s.absoluteCursorUsed, cols, rows)

	return Snapshot{
		Lines:         lines,
		CursorRow:     clampTo(v.s.cursorRow, rows),
		CursorCol:     clampTo(v.s.cursorCol, cols),
		CursorVisible: v.s.cursorVisible,
	}
}

// TextSnapshot renders the current grid as plain text, one line per row,
// with no styling.
func (v *VT) TextSnapshot() string {
	v.mu.Lock()
	defer v.mu.Unlock()

	g := v.s.active()
	out := make([]byte, 0, g.rows*(g.cols+1))
	for r := 0; r < g.rows; r++ {
		out = append(out, []byte(rowText(g.cells[r]))...)
		if r < g.rows-1 {
			out = append(out, '\n')
		}
	}
	return string(out)
}

func clampTo(v, limit int) int {
	if v >= limit {
		return limit - 1
	}
	if v < 0 {
		return 0
	}
	return v
}

// renderLines picks the viewport (top-of-grid or trailing-log) and converts
// each row of cells into a StyledLine, clamped to `cols` wide and `rows`
// tall per the snapshot contract.
func renderLines(g *grid, scrollback [][]Cell, absolute bool, cols, rows int) []StyledLine {
	var rowsSrc [][]Cell

	if absolute {
		rowsSrc = g.cells
	} else {
		rowsSrc = append(append([][]Cell{}, scrollback...), g.cells...)
	}

	if len(rowsSrc) > rows {
		if absolute {
			rowsSrc = rowsSrc[:rows]
		} else {
			rowsSrc = rowsSrc[len(rowsSrc)-rows:]
		}
	}

	lines := make([]StyledLine, 0, len(rowsSrc))
	for _, row := range rowsSrc {
		if cols < len(row) {
			row = row[:cols]
		}
		lines = append(lines, styleLine(row))
	}
	return lines
}

func styleLine(row []Cell) StyledLine {
	var runs []StyledRun
	var text []rune
	var cur StyledRun
	have := false

	flush := func() {
		if have {
			runs = append(runs, cur)
		}
	}

	for _, c := range row {
		if c.Width == 0 && c.Ch == 0 {
			continue // continuation slot of a wide glyph already rendered
		}
		ch := c.Ch
		if ch == 0 {
			ch = ' '
		}
		text = append(text, ch)

		if !have || cur.Style != c.Style {
			flush()
			cur = StyledRun{Style: c.Style}
			have = true
		}
		cur.Text += string(ch)
	}
	flush()

	return StyledLine{Text: string(text), Runs: runs}
}

func rowText(row []Cell) string {
	out := make([]rune, 0, len(row))
	for _, c := range row {
		if c.Width == 0 && c.Ch == 0 {
			continue
		}
		ch := c.Ch
		if ch == 0 {
			ch = ' '
		}
		out = append(out, ch)
	}
	return string(out)
}
