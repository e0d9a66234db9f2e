// Package query answers the terminal-probe escape sequences a real agent
// CLI expects a host terminal to reply to (cursor position reports, device
// attributes, DECRQM mode queries, OSC color queries, the kitty graphics
// handshake). Without these replies, CLIs that draw with ncurses-like
// libraries stall waiting for an answer that never comes.
//
// The scanning style below — walk the byte slice by index, classify CSI
// parameter/intermediate/final ranges, switch on the final byte — is the
// same approach a terminal-in-the-middle proxy uses to find and strip
// queries from a PTY stream; this responder answers them instead of
// stripping them.
package query

import (
	"strconv"
	"strings"

	"github.com/dguik/discode/internal/color"
)

const esc = 0x1B

// Screen is the subset of the VT screen the responder needs: cursor
// position and private-mode state, both of which live in the per-window
// record alongside queryCarry.
type Screen interface {
	CursorPosition() (row, col int)
	PrivateMode(n int) (value, known bool)
	Size() (cols, rows int)
}

// Record bundles a window's screen with the query-parsing state that
// persists across chunk boundaries, per the C2 contract.
type Record struct {
	Screen     Screen
	QueryCarry []byte
}

// Respond prepends QueryCarry to chunk, scans for recognized query
// sequences, and returns the concatenated reply bytes. Any trailing
// incomplete sequence is left in QueryCarry for the next call; everything
// else in the input is opaque pass-through (not echoed, not buffered).
func (rec *Record) Respond(chunk []byte) []byte {
	buf := append(rec.QueryCarry, chunk...)
	rec.QueryCarry = nil

	var reply []byte
	i := 0
	for i < len(buf) {
		if buf[i] != esc {
			i++
			continue
		}
		if i+1 >= len(buf) {
			rec.QueryCarry = append(rec.QueryCarry, buf[i:]...)
			break
		}

		switch buf[i+1] {
		case '[':
			out, n, complete := rec.scanCSI(buf, i)
			if !complete {
				rec.QueryCarry = append(rec.QueryCarry, buf[i:]...)
				return reply
			}
			reply = append(reply, out...)
			i += n
		case ']':
			out, n, complete := scanOSC(buf, i)
			if !complete {
				rec.QueryCarry = append(rec.QueryCarry, buf[i:]...)
				return reply
			}
			reply = append(reply, out...)
			i += n
		case '_':
			out, n, complete := scanAPC(buf, i)
			if !complete {
				rec.QueryCarry = append(rec.QueryCarry, buf[i:]...)
				return reply
			}
			reply = append(reply, out...)
			i += n
		default:
			i += 2
		}
	}
	return reply
}

// scanCSI parses one CSI sequence starting at buf[start] (buf[start]==ESC,
// buf[start+1]=='['). It returns the reply bytes for a recognized query
// (nil for an unrecognized or non-query final byte), the number of bytes
// consumed, and whether the sequence was complete within buf.
func (rec *Record) scanCSI(buf []byte, start int) ([]byte, int, bool) {
	j := start + 2
	private := false
	if j < len(buf) && buf[j] == '?' {
		private = true
		j++
	}
	paramStart := j
	for j < len(buf) && buf[j] >= 0x30 && buf[j] <= 0x3F {
		j++
	}
	paramBytes := buf[paramStart:j]
	interStart := j
	for j < len(buf) && buf[j] >= 0x20 && buf[j] <= 0x2F {
		j++
	}
	inter := string(buf[interStart:j])

	if j >= len(buf) {
		return nil, 0, false
	}
	final := buf[j]
	consumed := j + 1 - start

	if final < 0x40 || final > 0x7E {
		return nil, consumed, true
	}

	params := splitParams(paramBytes)
	reply := rec.answerCSI(private, params, inter, final)
	return reply, consumed, true
}

func splitParams(raw []byte) []int {
	if len(raw) == 0 {
		return nil
	}
	var out []int
	for _, field := range strings.Split(string(raw), ";") {
		if field == "" {
			out = append(out, -1)
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			out = append(out, -1)
			continue
		}
		out = append(out, n)
	}
	return out
}

func p0(params []int, def int) int {
	if len(params) == 0 || params[0] < 0 {
		return def
	}
	return params[0]
}

func (rec *Record) answerCSI(private bool, params []int, inter string, final byte) []byte {
	switch final {
	case 'n':
		switch {
		case !private && p0(params, -1) == 6:
			row, col := rec.Screen.CursorPosition()
			return []byte("\x1B[" + itoa(row) + ";" + itoa(col) + "R")
		case private && p0(params, -1) == 6:
			row, col := rec.Screen.CursorPosition()
			return []byte("\x1B[?" + itoa(row) + ";" + itoa(col) + "R")
		case !private && p0(params, -1) == 5:
			return []byte("\x1B[0n")
		}
	case 'c':
		if !private && (len(params) == 0 || p0(params, 0) == 0) {
			return []byte("\x1B[?62;c")
		}
	case 'p':
		if private && inter == "$" {
			n := p0(params, -1)
			val, known := rec.Screen.PrivateMode(n)
			s := 2
			if known && val {
				s = 1
			}
			return []byte("\x1B[?" + itoa(n) + ";" + itoa(s) + "$y")
		}
	case 't':
		if p0(params, -1) == 14 {
			cols, rows := rec.Screen.Size()
			return []byte("\x1B[4;" + itoa(rows*20) + ";" + itoa(cols*11) + "t")
		}
	case 'u':
		if private {
			return []byte("\x1B[?0u")
		}
	}
	return nil
}

// scanOSC parses an OSC sequence terminated by BEL or ST (ESC \).
func scanOSC(buf []byte, start int) ([]byte, int, bool) {
	j := start + 2
	contentStart := j
	for j < len(buf) {
		if buf[j] == 0x07 {
			content := string(buf[contentStart:j])
			return answerOSC(content), j + 1 - start, true
		}
		if buf[j] == esc && j+1 < len(buf) && buf[j+1] == '\\' {
			content := string(buf[contentStart:j])
			return answerOSC(content), j + 2 - start, true
		}
		j++
	}
	return nil, 0, false
}

func answerOSC(content string) []byte {
	parts := strings.Split(content, ";")
	if len(parts) < 2 {
		return nil
	}
	switch parts[0] {
	case "10":
		if parts[len(parts)-1] == "?" {
			return []byte("\x1B]10;rgb:e5e5/e5e5/e5e5\x1B\\")
		}
	case "11":
		if parts[len(parts)-1] == "?" {
			return []byte("\x1B]11;rgb:0a0a/0a0a/0a0a\x1B\\")
		}
	case "4":
		if len(parts) == 3 && parts[2] == "?" {
			n, err := strconv.Atoi(parts[1])
			if err != nil {
				return nil
			}
			rgb, ok := color.Xterm256(n)
			if !ok {
				return nil
			}
			reply := "\x1B]4;" + parts[1] + ";rgb:" +
				color.HexQuad(rgb.R) + "/" + color.HexQuad(rgb.G) + "/" + color.HexQuad(rgb.B) + "\x1B\\"
			return []byte(reply)
		}
	}
	return nil
}

// scanAPC parses an APC sequence terminated by ST (ESC \), recognizing the
// kitty graphics protocol handshake.
func scanAPC(buf []byte, start int) ([]byte, int, bool) {
	j := start + 2
	contentStart := j
	for j < len(buf) {
		if buf[j] == esc && j+1 < len(buf) && buf[j+1] == '\\' {
			content := string(buf[contentStart:j])
			return answerAPC(content), j + 2 - start, true
		}
		j++
	}
	return nil, 0, false
}

func answerAPC(content string) []byte {
	if strings.HasPrefix(content, "G") && strings.Contains(content, "q") {
		return []byte("\x1B_Gi=31337;OK\x1B\\")
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
