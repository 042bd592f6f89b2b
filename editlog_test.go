package loom

import "testing"

func TestEditLogRecordAndUndo(t *testing.T) {
	l := NewEditLog(0)
	l.RecordInsert(0, []byte("abc"))
	if !l.CanUndo() {
		t.Fatal("expected CanUndo after RecordInsert")
	}
	ops, ok := l.Undo()
	if !ok {
		t.Fatal("Undo() ok = false")
	}
	if len(ops) != 1 || ops[0].kind != opDelete || ops[0].at != 0 {
		t.Fatalf("unexpected undo ops: %+v", ops)
	}
}

func TestEditLogGrouping(t *testing.T) {
	l := NewEditLog(0)
	l.BeginGroup()
	l.RecordInsert(0, []byte("a"))
	l.RecordInsert(1, []byte("b"))
	l.EndGroup()

	if len(l.undo) != 1 {
		t.Fatalf("expected one group on undo stack, got %d", len(l.undo))
	}
	ops, ok := l.Undo()
	if !ok || len(ops) != 2 {
		t.Fatalf("expected 2 ops in replay order, got %+v", ops)
	}
	// replay order is reverse of recording order
	if ops[0].at != 1 || ops[1].at != 0 {
		t.Errorf("ops not in reverse-record order: %+v", ops)
	}
}

func TestEditLogEmptyGroupIsNoop(t *testing.T) {
	l := NewEditLog(0)
	l.BeginGroup()
	l.EndGroup()
	if l.CanUndo() {
		t.Error("empty group should not push an undo step")
	}
}

func TestEditLogNestedBeginGroupCollapses(t *testing.T) {
	l := NewEditLog(0)
	l.BeginGroup()
	l.BeginGroup() // no-op, group already open
	l.RecordInsert(0, []byte("x"))
	l.EndGroup()
	if len(l.undo) != 1 {
		t.Fatalf("expected single collapsed group, got %d", len(l.undo))
	}
}

func TestEditLogRedoClearedByNewEdit(t *testing.T) {
	l := NewEditLog(0)
	l.RecordInsert(0, []byte("a"))
	ops, _ := l.Undo()
	l.PushRedo(ops)
	if !l.CanRedo() {
		t.Fatal("expected CanRedo after PushRedo")
	}
	l.RecordInsert(0, []byte("b"))
	if l.CanRedo() {
		t.Error("new edit should clear redo history")
	}
}

func TestEditLogBudgetEviction(t *testing.T) {
	l := NewEditLog(10)
	for i := 0; i < 5; i++ {
		l.RecordInsert(0, []byte("abcde")) // 5 bytes each
	}
	if l.used > 10 && len(l.undo) > 1 {
		t.Errorf("expected eviction to keep used near budget, used=%d groups=%d", l.used, len(l.undo))
	}
	// at least one group should always survive
	if !l.CanUndo() {
		t.Error("eviction should never remove every group")
	}
}

func TestEditLogUndoEmpty(t *testing.T) {
	l := NewEditLog(0)
	if _, ok := l.Undo(); ok {
		t.Error("Undo on empty log should report false")
	}
	if _, ok := l.Redo(); ok {
		t.Error("Redo on empty log should report false")
	}
}
