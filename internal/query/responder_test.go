package query_test

import (
	"bytes"
	"testing"

	"github.com/dguik/discode/internal/query"
	"github.com/dguik/discode/internal/vt"
)

func TestCursorPositionReport(t *testing.T) {
	v := vt.New(80, 24)
	v.Write([]byte("\x1B[3;5H"))

	rec := &query.Record{Screen: v}
	reply := rec.Respond([]byte("\x1B[6n"))

	if string(reply) != "\x1B[3;5R" {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestClaudeRedrawRegression(t *testing.T) {
	v := vt.New(80, 24)
	rec := &query.Record{Screen: v}

	input := "claude> draft\r\x1B[2Kclaude> final\x1B[3G\x1B[?25$p\x1B[6n"
	v.Write([]byte(input))
	reply := rec.Respond([]byte(input))

	if !bytes.Contains(reply, []byte("\x1B[?25;1$y")) {
		t.Fatalf("expected DECRQM reply for mode 25 in %q", reply)
	}
	if !bytes.Contains(reply, []byte("\x1B[1;3R")) {
		t.Fatalf("expected cursor position reply in %q", reply)
	}

	snap := v.Snapshot(80, 1)
	if snap.Lines[0].Text[:13] != "claude> final" {
		t.Fatalf("expected redraw to final text, got %q", snap.Lines[0].Text)
	}
}

func TestChunkedKittyHandshake(t *testing.T) {
	v := vt.New(80, 24)
	rec := &query.Record{Screen: v}

	reply := rec.Respond([]byte("\x1B_"))
	if len(reply) != 0 {
		t.Fatalf("expected no reply yet, got %q", reply)
	}
	reply = rec.Respond([]byte("Ga=q\x1B\\"))

	if string(reply) != "\x1B_Gi=31337;OK\x1B\\" {
		t.Fatalf("unexpected kitty reply: %q", reply)
	}
	if len(rec.QueryCarry) != 0 {
		t.Fatalf("expected empty carry, got %q", rec.QueryCarry)
	}
}

func TestChunkingPreservesCarryAndReplay(t *testing.T) {
	v := vt.New(80, 24)

	whole := &query.Record{Screen: v}
	wholeReply := whole.Respond([]byte("\x1B[6n"))

	split := &query.Record{Screen: v}
	r1 := split.Respond([]byte("\x1B["))
	r2 := split.Respond([]byte("6n"))

	if !bytes.Equal(wholeReply, append(r1, r2...)) {
		t.Fatalf("chunked replay mismatch: whole=%q split=%q+%q", wholeReply, r1, r2)
	}
}

func TestNoQueriesReturnsEmptyAndPreservesCarry(t *testing.T) {
	v := vt.New(80, 24)
	rec := &query.Record{Screen: v}
	reply := rec.Respond([]byte("plain text with \x1B[31m color but no queries"))
	if len(reply) != 0 {
		t.Fatalf("expected empty reply, got %q", reply)
	}
	if len(rec.QueryCarry) != 0 {
		t.Fatalf("expected empty carry, got %q", rec.QueryCarry)
	}
}

func TestOSCColorQuery(t *testing.T) {
	v := vt.New(80, 24)
	rec := &query.Record{Screen: v}
	reply := rec.Respond([]byte("\x1B]4;1;?\x07"))
	if string(reply) != "\x1B]4;1;rgb:cdcd/3131/3131\x1B\\" {
		t.Fatalf("unexpected OSC 4 reply: %q", reply)
	}
}

func TestDeviceAttributesQuery(t *testing.T) {
	v := vt.New(80, 24)
	rec := &query.Record{Screen: v}
	reply := rec.Respond([]byte("\x1B[c"))
	if string(reply) != "\x1B[?62;c" {
		t.Fatalf("unexpected DA reply: %q", reply)
	}
}
