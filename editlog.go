package loom

// opKind identifies which primitive a logged reverse operation replays.
type opKind int

const (
	opInsert opKind = iota
	opDelete
)

// reverseOp is one primitive needed to undo a single Insert or Delete.
// Insert's reverse is a Delete of the same range; Delete's reverse is an
// Insert of the bytes it removed.
type reverseOp struct {
	kind  opKind
	at    int64
	bytes []byte // inserted on opInsert, deleted-range content on opDelete
}

func (op reverseOp) size() int64 { return int64(len(op.bytes)) }

// editGroup is one undo step: every reverse op needed to undo everything
// recorded between a BeginGroup/EndGroup pair (or a single ungrouped edit).
// Undoing a group replays its ops in reverse order, since later edits in the
// group may depend on earlier ones having already happened.
type editGroup struct {
	ops []reverseOp
}

func (g *editGroup) size() int64 {
	var n int64
	for _, op := range g.ops {
		n += op.size()
	}
	return n
}

// EditLog maintains grouped undo/redo history as stacks of reverse
// operations, rather than snapshots, so history cost scales with edit size
// rather than buffer size. An optional memory budget evicts the oldest
// groups first, the same way maintenance sweeps old history in a bounded
// working set.
type EditLog struct {
	undo []*editGroup
	redo []*editGroup

	open *editGroup // group currently being accumulated by BeginGroup/EndGroup

	budget int64 // 0 means unbounded
	used   int64
}

// NewEditLog creates an EditLog. A budget of 0 disables eviction.
func NewEditLog(budget int64) *EditLog {
	return &EditLog{budget: budget}
}

// BeginGroup starts accumulating subsequent Record* calls into a single
// undo step. Calls are idempotent: a BeginGroup while a group is already
// open is a no-op, so nested begin/end pairs collapse to the outermost one.
func (l *EditLog) BeginGroup() {
	if l.open == nil {
		l.open = &editGroup{}
	}
}

// EndGroup closes the group started by BeginGroup and pushes it onto the
// undo stack. Ending with no open group, or an open-but-empty group, is a
// no-op — it does not push a vacuous undo step.
func (l *EditLog) EndGroup() {
	g := l.open
	l.open = nil
	if g == nil || len(g.ops) == 0 {
		return
	}
	l.push(g)
}

// record appends op to the open group if one exists, otherwise
// pushes it as its own single-op group. Any successful edit clears the redo
// stack, matching the ordinary editor convention that redo history dies the
// moment a new edit diverges from it.
func (l *EditLog) record(op reverseOp) {
	l.redo = l.redo[:0]
	if l.open != nil {
		l.open.ops = append(l.open.ops, op)
		return
	}
	l.push(&editGroup{ops: []reverseOp{op}})
}

// RecordInsert logs the reverse of an Insert(at, data) that has already
// been applied to the buffer.
func (l *EditLog) RecordInsert(at int64, data []byte) {
	if len(data) == 0 {
		return
	}
	cp := append([]byte(nil), data...)
	l.record(reverseOp{kind: opDelete, at: at, bytes: cp})
}

// RecordDelete logs the reverse of a Delete(start, end) that has already
// been applied, given the bytes it removed.
func (l *EditLog) RecordDelete(at int64, removed []byte) {
	if len(removed) == 0 {
		return
	}
	cp := append([]byte(nil), removed...)
	l.record(reverseOp{kind: opInsert, at: at, bytes: cp})
}

func (l *EditLog) push(g *editGroup) {
	l.undo = append(l.undo, g)
	l.used += g.size()
	l.evict()
}

func (l *EditLog) evict() {
	if l.budget <= 0 {
		return
	}
	for l.used > l.budget && len(l.undo) > 1 {
		oldest := l.undo[0]
		l.undo = l.undo[1:]
		l.used -= oldest.size()
	}
}

// CanUndo reports whether there is a group to undo.
func (l *EditLog) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether there is a group to redo.
func (l *EditLog) CanRedo() bool { return len(l.redo) > 0 }

// Undo pops the most recent undo group and returns its ops in replay order
// (reverse of how they were recorded). The caller is responsible for
// applying them to the buffer and, on success, calling PushRedo with the
// forward ops so a subsequent Redo can restore them.
func (l *EditLog) Undo() ([]reverseOp, bool) {
	if len(l.undo) == 0 {
		return nil, false
	}
	g := l.undo[len(l.undo)-1]
	l.undo = l.undo[:len(l.undo)-1]
	l.used -= g.size()
	ops := make([]reverseOp, len(g.ops))
	for i, op := range g.ops {
		ops[len(g.ops)-1-i] = op
	}
	return ops, true
}

// PushRedo records the forward group produced by undoing, so Redo can
// replay it later. It is pushed as its own group regardless of any open
// BeginGroup, since it represents a completed undo step.
func (l *EditLog) PushRedo(ops []reverseOp) {
	g := &editGroup{ops: ops}
	l.redo = append(l.redo, g)
}

// Redo pops the most recent redo group and returns its ops in replay order.
// The caller applies them and pushes the resulting reverse group back onto
// the undo stack as one group with push, which leaves the remaining redo
// groups in place (Redo does not re-push undo itself, since it does not
// know the actual bytes the replay will touch until the caller applies it).
func (l *EditLog) Redo() ([]reverseOp, bool) {
	if len(l.redo) == 0 {
		return nil, false
	}
	g := l.redo[len(l.redo)-1]
	l.redo = l.redo[:len(l.redo)-1]
	ops := make([]reverseOp, len(g.ops))
	copy(ops, g.ops)
	return ops, true
}
