package vt

import (
	"strings"
	"testing"
)

func TestWriteAndSnapshotBasic(t *testing.T) {
	v := New(10, 3)
	v.Write([]byte("hello"))

	snap := v.Snapshot(10, 3)
	if len(snap.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(snap.Lines))
	}
	if snap.Lines[0].Text != "hello     " {
		t.Fatalf("unexpected line 0: %q", snap.Lines[0].Text)
	}
}

func TestSnapshotNeverExceedsRequestedBounds(t *testing.T) {
	v := New(80, 24)
	v.Write([]byte(strings.Repeat("line\n", 100)))

	snap := v.Snapshot(80, 24)
	if len(snap.Lines) > 24 {
		t.Fatalf("snapshot exceeded rows: %d", len(snap.Lines))
	}
	for _, l := range snap.Lines {
		if len([]rune(l.Text)) > 80 {
			t.Fatalf("line exceeded cols: %d", len(l.Text))
		}
	}
}

func TestSGRResetRestoresDefaultStyle(t *testing.T) {
	v := New(20, 1)
	v.Write([]byte("\x1B[1;31mred\x1B[0mplain"))

	v.mu.Lock()
	row := v.s.active().cells[0]
	v.mu.Unlock()

	if row[0].Style.Bold != true || resolvedColorIdx(row[0].Style.Fg) != 1 {
		t.Fatalf("expected bold red for first run, got %+v", row[0].Style)
	}
	if row[3].Style != defaultStyle {
		t.Fatalf("expected default style after SGR 0, got %+v", row[3].Style)
	}
}

func resolvedColorIdx(ref colorRef) int {
	if ref.mode == colorANSI {
		return ref.idx
	}
	return -1
}

func TestCarriageReturnAndLineFeed(t *testing.T) {
	v := New(10, 2)
	v.Write([]byte("ab\r\ncd"))

	snap := v.Snapshot(10, 2)
	if snap.Lines[0].Text[:2] != "ab" || snap.Lines[1].Text[:2] != "cd" {
		t.Fatalf("unexpected lines: %q / %q", snap.Lines[0].Text, snap.Lines[1].Text)
	}
}

func TestWideGlyphWrapsAtLastColumn(t *testing.T) {
	v := New(3, 2)
	v.Write([]byte("ab\xe4\xbd\xa0")) // 'a', 'b' then U+4F60 (wide, CJK)

	v.mu.Lock()
	row0 := v.s.active().cells[0]
	v.mu.Unlock()

	// "ab" occupies cols 0-1, leaving the cursor on the last column (col 2);
	// the wide glyph needs 2 cols there, so it must wrap to row 1 instead of
	// splitting across the boundary.
	if row0[2].Ch != 0 && row0[2].Ch != ' ' {
		t.Fatalf("expected col 2 untouched by a wrapped wide glyph, got %q", row0[2].Ch)
	}
}

func TestAlternateScreenEnterClearsLeaveRestores(t *testing.T) {
	v := New(10, 1)
	v.Write([]byte("primary"))
	v.Write([]byte("\x1B[?1049h")) // enter alt screen
	v.Write([]byte("alt"))
	v.Write([]byte("\x1B[?1049l")) // leave

	snap := v.Snapshot(10, 1)
	if !strings.HasPrefix(snap.Lines[0].Text, "primary") {
		t.Fatalf("expected primary content restored, got %q", snap.Lines[0].Text)
	}
}

func TestAbsolutePositioningSetsAbsoluteCursorUsed(t *testing.T) {
	v := New(10, 5)
	v.Write([]byte("\x1B[2;2H"))

	v.mu.Lock()
	used := v.s.absoluteCursorUsed
	v.mu.Unlock()

	if !used {
		t.Fatal("expected absoluteCursorUsed to be set after CSI H")
	}
}

func TestResizeClipsAndPads(t *testing.T) {
	v := New(5, 2)
	v.Write([]byte("abcde"))
	v.Resize(3, 2)

	snap := v.Snapshot(3, 2)
	if snap.Lines[0].Text != "abc" {
		t.Fatalf("expected clipped line, got %q", snap.Lines[0].Text)
	}

	v.Resize(5, 2)
	snap = v.Snapshot(5, 2)
	if len(snap.Lines[0].Text) != 5 {
		t.Fatalf("expected padded line of length 5, got %q", snap.Lines[0].Text)
	}
}

func TestMalformedCSIIsDroppedNotFatal(t *testing.T) {
	v := New(10, 1)
	v.Write([]byte("\x1B[9999zabc")) // unrecognized final byte 'z'

	snap := v.Snapshot(10, 1)
	if !strings.HasPrefix(snap.Lines[0].Text, "abc") {
		t.Fatalf("expected resync onto following text, got %q", snap.Lines[0].Text)
	}
}

func TestChunkedCSISplitAcrossWrites(t *testing.T) {
	v := New(10, 5)
	v.Write([]byte("\x1B["))
	v.Write([]byte("3"))
	v.Write([]byte(";3H"))

	row, col := v.CursorPosition()
	if row != 3 || col != 3 {
		t.Fatalf("expected cursor at (3,3), got (%d,%d)", row, col)
	}
}

func TestDeleteCharsCountLargerThanRemainingColsDoesNotPanic(t *testing.T) {
	v := New(10, 1)
	v.Write([]byte("abcdefghij")) // fills all 10 columns, cursor now at col 10
	v.Write([]byte("\x1B[5G"))    // CHA to column 5 (1-based) -> cursorCol 4
	v.Write([]byte("\x1B[100P"))  // delete 100 chars, far more than the 6 remaining

	snap := v.Snapshot(10, 1)
	if snap.Lines[0].Text != "abcd      " {
		t.Fatalf("expected columns from cursor to end blanked, got %q", snap.Lines[0].Text)
	}
}

func TestInsertCharsCountLargerThanRemainingColsDoesNotPanic(t *testing.T) {
	v := New(10, 1)
	v.Write([]byte("abcdefghij"))
	v.Write([]byte("\x1B[5G"))   // cursorCol 4
	v.Write([]byte("\x1B[100@")) // insert 100 blanks, far more than the 6 remaining

	snap := v.Snapshot(10, 1)
	if snap.Lines[0].Text != "abcd      " {
		t.Fatalf("expected columns from cursor to end blanked, got %q", snap.Lines[0].Text)
	}
}
