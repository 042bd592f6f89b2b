package loom

import "testing"

func TestCursorSetInitialState(t *testing.T) {
	b := NewBuffer("t", []byte("hello"), 0)
	cs := NewCursorSet(b)
	if cs.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", cs.Count())
	}
	at, err := cs.CaretOf(0)
	if err != nil {
		t.Fatalf("CaretOf: %v", err)
	}
	if at != 0 {
		t.Errorf("initial caret = %d, want 0", at)
	}
}

func TestCursorSetMoveCaret(t *testing.T) {
	b := NewBuffer("t", []byte("0123456789"), 0)
	cs := NewCursorSet(b)
	if err := cs.MoveCaret(0, 5); err != nil {
		t.Fatalf("MoveCaret: %v", err)
	}
	at, err := cs.CaretOf(0)
	if err != nil {
		t.Fatalf("CaretOf: %v", err)
	}
	if at != 5 {
		t.Errorf("caret = %d, want 5", at)
	}
	start, end, _, err := cs.SelectionOf(0)
	if err != nil {
		t.Fatalf("SelectionOf: %v", err)
	}
	if start != 5 || end != 5 {
		t.Errorf("selection after MoveCaret should collapse, got [%d,%d)", start, end)
	}
}

// TestCursorSetCaretAdvancesOnInsertAtCaret regresses a case where a caret
// sitting exactly at an insertion point, with no marker ending past it,
// failed to move forward with the inserted text.
func TestCursorSetCaretAdvancesOnInsertAtCaret(t *testing.T) {
	b := NewBuffer("t", []byte("0123456789"), 0)
	cs := NewCursorSet(b)
	if err := cs.MoveCaret(0, 3); err != nil {
		t.Fatalf("MoveCaret: %v", err)
	}
	if err := b.Insert(3, []byte("_")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	at, err := cs.CaretOf(0)
	if err != nil {
		t.Fatalf("CaretOf: %v", err)
	}
	if at != 4 {
		t.Errorf("caret after insert at caret = %d, want 4", at)
	}
}

// TestCursorSetCaretAdvancesOnInsertAtOrigin is the degenerate single-
// cursor, single-marker case: a fresh buffer's lone cursor sits at byte 0,
// which is also where the first character is typed.
func TestCursorSetCaretAdvancesOnInsertAtOrigin(t *testing.T) {
	b := NewBuffer("t", []byte(""), 0)
	cs := NewCursorSet(b)
	if err := b.Insert(0, []byte("X")); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	at, err := cs.CaretOf(0)
	if err != nil {
		t.Fatalf("CaretOf: %v", err)
	}
	if at != 1 {
		t.Errorf("caret after insert at origin = %d, want 1", at)
	}
}

func TestCursorSetExtendSelection(t *testing.T) {
	b := NewBuffer("t", []byte("0123456789"), 0)
	cs := NewCursorSet(b)
	if err := cs.MoveCaret(0, 2); err != nil {
		t.Fatalf("MoveCaret: %v", err)
	}
	if err := cs.ExtendSelection(0, 7); err != nil {
		t.Fatalf("ExtendSelection: %v", err)
	}
	start, end, caretAtEnd, err := cs.SelectionOf(0)
	if err != nil {
		t.Fatalf("SelectionOf: %v", err)
	}
	if start != 2 || end != 7 || !caretAtEnd {
		t.Errorf("selection = [%d,%d) caretAtEnd=%v, want [2,7) true", start, end, caretAtEnd)
	}
}

func TestCursorSetAddCursorAtNextMatch(t *testing.T) {
	b := NewBuffer("t", []byte("foo bar foo baz foo"), 0)
	cs := NewCursorSet(b)
	found, err := cs.AddCursorAtNextMatch([]byte("foo"))
	if err != nil {
		t.Fatalf("AddCursorAtNextMatch: %v", err)
	}
	if !found {
		t.Fatal("expected a match")
	}
	// The match [0,3) touches the collapsed cursor at 0, so the two merge
	// into one cursor selecting the match.
	if cs.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", cs.Count())
	}
	start, end, _, err := cs.SelectionOf(0)
	if err != nil {
		t.Fatalf("SelectionOf: %v", err)
	}
	if start != 0 || end != 3 {
		t.Errorf("first match selection = [%d,%d), want [0,3)", start, end)
	}

	found, err = cs.AddCursorAtNextMatch([]byte("foo"))
	if err != nil {
		t.Fatalf("AddCursorAtNextMatch: %v", err)
	}
	if !found || cs.Count() != 2 {
		t.Fatalf("expected a second match and 2 cursors, got found=%v count=%d", found, cs.Count())
	}
}

func TestCursorSetAddCursorAtNextMatchNoneLeft(t *testing.T) {
	b := NewBuffer("t", []byte("foo"), 0)
	cs := NewCursorSet(b)
	if _, err := cs.AddCursorAtNextMatch([]byte("foo")); err != nil {
		t.Fatalf("AddCursorAtNextMatch: %v", err)
	}
	found, err := cs.AddCursorAtNextMatch([]byte("foo"))
	if err != nil {
		t.Fatalf("AddCursorAtNextMatch: %v", err)
	}
	if found {
		t.Error("expected no further match")
	}
}

func TestCursorSetMergeOnOverlap(t *testing.T) {
	b := NewBuffer("t", []byte("0123456789"), 0)
	cs := NewCursorSet(b)
	if err := cs.MoveCaret(0, 2); err != nil {
		t.Fatalf("MoveCaret: %v", err)
	}
	if err := cs.ExtendSelection(0, 6); err != nil {
		t.Fatalf("ExtendSelection: %v", err)
	}

	caret := cs.buf.AddMarker(Marker{Start: 8, End: 8, StartAffinity: AffinityRight, EndAffinity: AffinityRight, Payload: PositionPayload{}})
	anchor := cs.buf.AddMarker(Marker{Start: 4, End: 4, StartAffinity: AffinityLeft, EndAffinity: AffinityLeft, Payload: PositionPayload{}})
	cs.cursors = append(cs.cursors, &Cursor{caretID: caret, anchorID: anchor})

	cs.sortAndMerge()

	if cs.Count() != 1 {
		t.Fatalf("expected overlapping cursors to merge into 1, got %d", cs.Count())
	}
	start, end, _, err := cs.SelectionOf(0)
	if err != nil {
		t.Fatalf("SelectionOf: %v", err)
	}
	if start != 2 || end != 8 {
		t.Errorf("merged selection = [%d,%d), want [2,8)", start, end)
	}
}

func TestCursorSetAddCursorBelowSkipsPastLastLine(t *testing.T) {
	b := NewBuffer("t", []byte("aaa\nbbb\n"), 0)
	cs := NewCursorSet(b)
	if err := cs.MoveCaret(0, 0); err != nil {
		t.Fatalf("MoveCaret: %v", err)
	}
	if err := cs.AddCursorBelow(); err != nil {
		t.Fatalf("AddCursorBelow: %v", err)
	}
	if cs.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", cs.Count())
	}
	if err := cs.AddCursorBelow(); err != nil {
		t.Fatalf("AddCursorBelow: %v", err)
	}
	// The buffer has three lines (the empty one after the trailing newline
	// counts). The line-0 cursor's new cursor lands on the line-1 cursor and
	// merges with it; the line-1 cursor adds one on line 2, so the count
	// grows by at most one.
	if cs.Count() > 3 {
		t.Errorf("Count() = %d, want at most 3", cs.Count())
	}
}
