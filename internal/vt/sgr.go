package vt

import "github.com/dguik/discode/internal/color"

// applySGR interprets a fully-parsed CSI `m` parameter list, mutating
// curStyle. Unrecognized codes are no-ops so malformed sequences never
// abort the screen write per the VT screen's failure semantics.
func (s *screen) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			s.curStyle = defaultStyle
		case p == 1:
			s.curStyle.Bold = true
		case p == 22:
			s.curStyle.Bold = false
		case p == 3:
			s.curStyle.Italic = true
		case p == 23:
			s.curStyle.Italic = false
		case p == 4:
			s.curStyle.Underline = true
		case p == 24:
			s.curStyle.Underline = false
		case p == 7:
			s.curStyle.Inverse = true
		case p == 27:
			s.curStyle.Inverse = false
		case p == 39:
			s.curStyle.Fg = defaultColorRef
		case p == 49:
			s.curStyle.Bg = defaultColorRef
		case p >= 30 && p <= 37:
			s.curStyle.Fg = colorRef{mode: colorANSI, idx: p - 30}
		case p >= 90 && p <= 97:
			s.curStyle.Fg = colorRef{mode: colorANSI, idx: p - 90 + 8}
		case p >= 40 && p <= 47:
			s.curStyle.Bg = colorRef{mode: colorANSI, idx: p - 40}
		case p >= 100 && p <= 107:
			s.curStyle.Bg = colorRef{mode: colorANSI, idx: p - 100 + 8}
		case p == 38 || p == 48:
			consumed := s.applyExtendedColor(p, params[i+1:])
			i += consumed
		}
	}
}

// applyExtendedColor handles the `38;5;N`, `38;2;R;G;B` (and 48-prefixed bg)
// forms. rest is params[i+1:]; it returns how many of those entries were
// consumed so the caller can advance its loop index.
func (s *screen) applyExtendedColor(target int, rest []int) int {
	if len(rest) == 0 {
		return 0
	}
	switch rest[0] {
	case 5:
		if len(rest) < 2 {
			return len(rest)
		}
		ref := colorRef{mode: colorXterm256, idx: rest[1]}
		s.setColorTarget(target, ref)
		return 2
	case 2:
		if len(rest) < 4 {
			return len(rest)
		}
		rgb := color.RGB{R: clampByte(rest[1]), G: clampByte(rest[2]), B: clampByte(rest[3])}
		s.setColorTarget(target, colorRef{mode: colorTruecolor, rgb: rgb})
		return 4
	}
	return 0
}

func (s *screen) setColorTarget(target int, ref colorRef) {
	if target == 38 {
		s.curStyle.Fg = ref
	} else {
		s.curStyle.Bg = ref
	}
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// resolveRGB turns a colorRef into a concrete RGB for rendering, or ok=false
// for the default (terminal-theme) color.
func resolveRGB(ref colorRef) (color.RGB, bool) {
	switch ref.mode {
	case colorANSI, colorXterm256:
		return color.Xterm256(ref.idx)
	case colorTruecolor:
		return ref.rgb, true
	default:
		return color.RGB{}, false
	}
}
