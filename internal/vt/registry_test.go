package vt

import "testing"

func TestGetOrCreateLazilyCreatesAndCaches(t *testing.T) {
	r := NewRegistry(80, 24)

	w1 := r.GetOrCreate("proj:claude")
	w2 := r.GetOrCreate("proj:claude")
	if w1 != w2 {
		t.Fatal("expected the same window on a second GetOrCreate for the same key")
	}
	if cols, rows := w1.VT.Size(); cols != 80 || rows != 24 {
		t.Fatalf("expected window sized 80x24, got %dx%d", cols, rows)
	}
	if w1.Responder == nil || w1.Responder.Screen != w1.VT {
		t.Fatal("expected the responder to be bound to the same VT screen")
	}
}

func TestGetMissingKey(t *testing.T) {
	r := NewRegistry(80, 24)
	if _, ok := r.Get("nope"); ok {
		t.Fatal("expected no window for an unknown key")
	}
}

func TestRemoveDeletesWindow(t *testing.T) {
	r := NewRegistry(80, 24)
	r.GetOrCreate("proj:claude")
	r.Remove("proj:claude")

	if _, ok := r.Get("proj:claude"); ok {
		t.Fatal("expected the window to be gone after Remove")
	}
}

func TestKeysListsAllWindows(t *testing.T) {
	r := NewRegistry(80, 24)
	r.GetOrCreate("proj:claude")
	r.GetOrCreate("proj:codex")

	keys := r.Keys()
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}
