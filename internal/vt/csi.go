package vt

import "strconv"

// parseCSIParams splits the raw 0x30-0x3F parameter bytes on ';' into ints,
// defaulting empty fields to -1 (caller substitutes the action's own
// default). Sub-parameters separated by ':' are folded into the same slot,
// keeping only the leading value, which is enough for every final byte this
// screen recognizes.
func parseCSIParams(raw []byte) []int {
	if len(raw) == 0 {
		return nil
	}
	var out []int
	start := 0
	flush := func(end int) {
		field := raw[start:end]
		if colon := indexByte(field, ':'); colon >= 0 {
			field = field[:colon]
		}
		if len(field) == 0 {
			out = append(out, -1)
			return
		}
		n, err := strconv.Atoi(string(field))
		if err != nil {
			out = append(out, -1)
			return
		}
		out = append(out, n)
	}
	for i, b := range raw {
		if b == ';' {
			flush(i)
			start = i + 1
		}
	}
	flush(len(raw))
	return out
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func param(params []int, idx, def int) int {
	if idx >= len(params) || params[idx] < 0 {
		return def
	}
	return params[idx]
}

// dispatchCSI applies the CSI action table (§4.1) for the given final byte.
// Unrecognized finals are no-ops; this is never reached for malformed
// sequences, which the parser already dropped.
func (s *screen) dispatchCSI(final byte) {
	params := parseCSIParams(s.p.csiParams)
	private := s.p.csiPrivate

	switch final {
	case 'A':
		s.cursorRow = s.clampRow(s.cursorRow - param(params, 0, 1))
	case 'B':
		s.cursorRow = s.clampRow(s.cursorRow + param(params, 0, 1))
	case 'C':
		s.cursorCol = s.clampCol(s.cursorCol + param(params, 0, 1))
	case 'D':
		s.cursorCol = s.clampCol(s.cursorCol - param(params, 0, 1))
	case 'E':
		s.cursorRow = s.clampRow(s.cursorRow + param(params, 0, 1))
		s.cursorCol = 0
	case 'F':
		s.cursorRow = s.clampRow(s.cursorRow - param(params, 0, 1))
		s.cursorCol = 0
	case 'G':
		s.cursorCol = s.clampCol(param(params, 0, 1) - 1)
		s.absoluteCursorUsed = true
	case 'd':
		s.cursorRow = s.clampRow(param(params, 0, 1) - 1)
		s.absoluteCursorUsed = true
	case 'H', 'f':
		s.cursorRow = s.clampRow(param(params, 0, 1) - 1)
		s.cursorCol = s.clampCol(param(params, 1, 1) - 1)
		s.absoluteCursorUsed = true
	case 'J':
		s.eraseInDisplay(param(params, 0, 0))
	case 'K':
		s.eraseInLine(param(params, 0, 0))
	case 's':
		s.saveCursor()
	case 'u':
		s.restoreCursor()
	case 'm':
		s.applySGR(params)
	case 'h':
		s.setModes(private, params, true)
	case 'l':
		s.setModes(private, params, false)
	case 'r':
		top := param(params, 0, 1) - 1
		bottom := param(params, 1, s.rows) - 1
		s.setScrollRegion(top, bottom)
	case 'L':
		s.insertLines(param(params, 0, 1))
	case 'M':
		s.deleteLines(param(params, 0, 1))
	case '@':
		s.insertChars(param(params, 0, 1))
	case 'P':
		s.deleteChars(param(params, 0, 1))
	case 'S':
		s.scrollRegionUp(param(params, 0, 1))
	case 'T':
		s.scrollRegionDown(param(params, 0, 1))
	default:
		// no-op
	}
}

func (s *screen) setModes(private bool, params []int, on bool) {
	if !private {
		return
	}
	for _, p := range params {
		if p < 0 {
			continue
		}
		s.privateModes[p] = on
		switch p {
		case 1049, 47:
			if on {
				s.enterAlternate()
			} else {
				s.exitAlternate()
			}
		case 25:
			s.cursorVisible = on
		}
	}
}
