// Package color resolves ANSI/xterm-256 color indices to RGB triples. It is
// shared by the VT screen (SGR 38;5;N / 48;5;N) and the query responder
// (OSC 4 palette lookups), so the table lives in one place.
package color

// RGB is a resolved red/green/blue triple, 0-255 per channel.
type RGB struct {
	R, G, B uint8
}

// ansi16 is the fixed 16-entry palette for indices 0-15, matching the
// conventional xterm default theme.
var ansi16 = [16]RGB{
	{0x00, 0x00, 0x00}, {0xcd, 0x31, 0x31}, {0x0d, 0xbc, 0x79}, {0xe5, 0xe5, 0x10},
	{0x24, 0x72, 0xc8}, {0xbc, 0x3f, 0xbc}, {0x11, 0xa8, 0xcd}, {0xe5, 0xe5, 0xe5},
	{0x66, 0x66, 0x66}, {0xf1, 0x4c, 0x4c}, {0x23, 0xd1, 0x8b}, {0xf5, 0xf5, 0x43},
	{0x3b, 0x8e, 0xea}, {0xd6, 0x70, 0xd6}, {0x29, 0xb8, 0xdb}, {0xff, 0xff, 0xff},
}

// cubeComponent maps a 0-5 cube coordinate to its 8-bit channel value.
var cubeComponent = [6]uint8{0, 95, 135, 175, 215, 255}

// Xterm256 resolves an xterm-256 palette index to its RGB triple. ok is
// false for i outside [0,255].
func Xterm256(i int) (rgb RGB, ok bool) {
	switch {
	case i < 0 || i > 255:
		return RGB{}, false
	case i < 16:
		return ansi16[i], true
	case i < 232:
		n := i - 16
		r := n / 36
		g := (n % 36) / 6
		b := n % 6
		return RGB{cubeComponent[r], cubeComponent[g], cubeComponent[b]}, true
	default:
		v := uint8(8 + (i-232)*10)
		return RGB{v, v, v}, true
	}
}

// HexQuad formats a single 8-bit channel as the 16-bit hex quadruplet xterm
// uses in OSC color replies ("rgb:RRRR/GGGG/BBBB" components), by doubling
// the byte (0xRR -> 0xRRRR).
func HexQuad(c uint8) string {
	const hexDigits = "0123456789abcdef"
	hi, lo := hexDigits[c>>4], hexDigits[c&0xF]
	return string([]byte{hi, lo, hi, lo})
}
