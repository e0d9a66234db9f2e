package vt

import "github.com/mattn/go-runewidth"

// charWidth returns how many columns r advances the cursor when printed.
// go-runewidth already gets East-Asian wide/ambiguous ranges right; the
// overrides below cover the zero-width combining/format characters the
// screen must never advance on, per the explicit ranges a VT220-class
// emulator is expected to honor.
func charWidth(r rune) int {
	switch {
	case r < 0x20, (r >= 0x7F && r < 0xA0):
		return 0
	case isZeroWidth(r):
		return 0
	}
	if runewidth.RuneWidth(r) >= 2 {
		return 2
	}
	return 1
}

// isZeroWidth reports whether r is a combining mark, format character, or
// other modifier that must not move the cursor.
func isZeroWidth(r rune) bool {
	switch {
	case r >= 0x0300 && r <= 0x036F: // combining diacriticals
		return true
	case r >= 0xFE00 && r <= 0xFE0F: // variation selectors
		return true
	case r == 0x200D: // ZWJ
		return true
	case r >= 0x200B && r <= 0x200F: // zero-width space/joiners/marks
		return true
	case r >= 0x1AB0 && r <= 0x1AFF: // combining diacriticals extended
		return true
	case r >= 0x20D0 && r <= 0x20FF: // combining diacriticals for symbols
		return true
	}
	return false
}
