package loom

import (
	"sync"

	"github.com/google/uuid"
)

// BufferID identifies a Buffer within an Engine.
type BufferID uuid.UUID

func newBufferID() BufferID { return BufferID(uuid.New()) }

func (id BufferID) String() string { return uuid.UUID(id).String() }

// BufferKind is a best-effort classification of a buffer's content, used
// only to pick gutter/highlighting defaults — never load-bearing for
// correctness.
type BufferKind string

// Buffer is the atomic unit of editable text: a ChunkTree for content, an
// IntervalTree for cursors/overlays/line markers that all move together
// under edits, a LineIndex for cheap line<->byte conversion, and an EditLog
// for undo/redo. All mutation goes through applyInsert/applyDelete. A panic
// in any step of an edit marks the buffer poisoned; no rollback is
// attempted, so the parts may disagree, and Read, Insert, Delete, Undo and
// Redo then return BufferPoisoned.
type Buffer struct {
	mu sync.RWMutex

	id   BufferID
	name string
	kind BufferKind

	chunks   *ChunkTree
	markers  *IntervalTree
	lines    *LineIndex
	history  *EditLog
	revision uint64

	dirty    bool
	poisoned error // non-nil once the buffer can no longer be trusted
}

// NewBuffer creates an empty, named Buffer with the given initial content
// and undo-history memory budget (0 = unbounded), using default chunk size
// and scan threshold.
func NewBuffer(name string, initial []byte, historyBudget int64) *Buffer {
	return NewBufferWithOptions(name, initial, historyBudget, DefaultChunkSize, ScanThreshold)
}

// NewBufferWithOptions creates a Buffer with caller-chosen chunk size and
// line-scan threshold, as wired through an Engine's EngineOptions.
func NewBufferWithOptions(name string, initial []byte, historyBudget, chunkSize, scanThreshold int64) *Buffer {
	chunks := NewChunkTreeWithChunkSize(initial, chunkSize)
	return &Buffer{
		id:      newBufferID(),
		name:    name,
		chunks:  chunks,
		markers: NewIntervalTree(),
		lines:   NewLineIndexWithThreshold(chunks, scanThreshold),
		history: NewEditLog(historyBudget),
	}
}

// ID returns the buffer's identity.
func (b *Buffer) ID() BufferID { return b.id }

// Name returns the buffer's display name.
func (b *Buffer) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

// SetKind records the buffer's best-effort content classification.
func (b *Buffer) SetKind(k BufferKind) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kind = k
}

// Kind returns the buffer's best-effort content classification.
func (b *Buffer) Kind() BufferKind {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.kind
}

// Dirty reports whether the buffer has unsaved changes.
func (b *Buffer) Dirty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dirty
}

// Revision returns the number of primitive inserts and deletes applied so
// far, used by cursors and overlays to detect staleness. An undo or redo
// adds one per primitive edit it replays, not one per group, so a grouped
// edit advances the revision by more than one.
func (b *Buffer) Revision() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// checkHealthy returns the poison error if the buffer is no longer usable.
func (b *Buffer) checkHealthy() error {
	if b.poisoned != nil {
		return newErr(KindBufferPoisoned, ScopeBuffer, "buffer is poisoned: "+b.poisoned.Error(), b.poisoned)
	}
	return nil
}

// Len returns the buffer's content length in bytes.
func (b *Buffer) Len() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.chunks.Len()
}

// Read returns a copy of the bytes in [start, end).
func (b *Buffer) Read(start, end int64) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if err := b.checkHealthy(); err != nil {
		return nil, err
	}
	return b.chunks.Read(start, end)
}

// Insert applies an insertion at byte offset at and records it in history.
func (b *Buffer) Insert(at int64, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyInsert(at, data, true)
}

// Delete removes [start, end) and records it in history.
func (b *Buffer) Delete(start, end int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyDelete(start, end, true)
}

// applyInsert performs the full atomic edit sequence for an insertion:
// mutate the chunk tree, shift every marker and line anchor, bump the
// revision, and only then record history — if any step after the chunk
// mutation panics, the buffer is marked poisoned; the chunk mutation is not
// rolled back.
func (b *Buffer) applyInsert(at int64, data []byte, record bool) (err error) {
	if err := b.checkHealthy(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			b.poisoned = plain("panic during insert")
			err = b.checkHealthy()
		}
	}()

	if err := b.chunks.Insert(at, data); err != nil {
		return err
	}
	crossed := containsNewline(data)
	b.markers.AdjustForEdit(at, int64(len(data)))
	b.lines.onEdit(at, int64(len(data)), crossed)
	if crossed {
		b.lines.recordInsertedNewlines(at, data)
	}
	b.revision++
	b.dirty = true
	if record {
		b.history.RecordInsert(at, data)
	}
	return nil
}

// applyDelete performs the full atomic edit sequence for a deletion.
func (b *Buffer) applyDelete(start, end int64, record bool) (err error) {
	if err := b.checkHealthy(); err != nil {
		return err
	}
	if start == end {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			b.poisoned = plain("panic during delete")
			err = b.checkHealthy()
		}
	}()

	removed, err := b.chunks.Read(start, end)
	if err != nil {
		return err
	}
	if err := b.chunks.Delete(start, end); err != nil {
		return err
	}
	crossed := containsNewline(removed)
	b.markers.AdjustForEdit(start, -(end - start))
	b.lines.onEdit(start, -(end - start), crossed)
	b.revision++
	b.dirty = true
	if record {
		b.history.RecordDelete(start, removed)
	}
	return nil
}

func containsNewline(data []byte) bool {
	for _, c := range data {
		if c == '\n' {
			return true
		}
	}
	return false
}

// BeginGroup opens an undo group; every Insert/Delete until the matching
// EndGroup undoes or redoes as one step.
func (b *Buffer) BeginGroup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.BeginGroup()
}

// EndGroup closes the undo group opened by BeginGroup.
func (b *Buffer) EndGroup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.EndGroup()
}

// Undo reverts the most recent undo group, if any.
func (b *Buffer) Undo() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkHealthy(); err != nil {
		return err
	}
	ops, ok := b.history.Undo()
	if !ok {
		return nil
	}
	forward, err := b.replay(ops)
	if err != nil {
		return err
	}
	b.history.PushRedo(forward)
	return nil
}

// Redo reapplies the most recently undone group, if any.
func (b *Buffer) Redo() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkHealthy(); err != nil {
		return err
	}
	ops, ok := b.history.Redo()
	if !ok {
		return nil
	}
	_, err := b.replayForRedo(ops)
	return err
}

// replay applies ops (already in undo-replay order) to the buffer without
// touching the undo stack, and returns the inverse ops (in forward-apply
// order) so the caller can push them onto the redo stack.
func (b *Buffer) replay(ops []reverseOp) ([]reverseOp, error) {
	inverse := make([]reverseOp, 0, len(ops))
	for _, op := range ops {
		switch op.kind {
		case opInsert:
			if err := b.applyInsert(op.at, op.bytes, false); err != nil {
				return nil, err
			}
			inverse = append(inverse, reverseOp{kind: opDelete, at: op.at, bytes: op.bytes})
		case opDelete:
			end := op.at + int64(len(op.bytes))
			if err := b.applyDelete(op.at, end, false); err != nil {
				return nil, err
			}
			inverse = append(inverse, reverseOp{kind: opInsert, at: op.at, bytes: op.bytes})
		}
	}
	// inverse was built in replay order; reverse it into forward-apply order.
	for i, j := 0, len(inverse)-1; i < j; i, j = i+1, j-1 {
		inverse[i], inverse[j] = inverse[j], inverse[i]
	}
	return inverse, nil
}

// replayForRedo applies a redo group and pushes its own inverse back onto
// the undo stack as one group, so a redone edit can be undone again. The
// remaining redo groups are kept.
func (b *Buffer) replayForRedo(ops []reverseOp) ([]reverseOp, error) {
	undoOps := make([]reverseOp, 0, len(ops))
	defer func() {
		if len(undoOps) > 0 {
			b.history.push(&editGroup{ops: undoOps})
		}
	}()
	for _, op := range ops {
		switch op.kind {
		case opInsert:
			if err := b.applyInsert(op.at, op.bytes, false); err != nil {
				return nil, err
			}
			undoOps = append(undoOps, reverseOp{kind: opDelete, at: op.at, bytes: op.bytes})
		case opDelete:
			end := op.at + int64(len(op.bytes))
			if err := b.applyDelete(op.at, end, false); err != nil {
				return nil, err
			}
			undoOps = append(undoOps, reverseOp{kind: opInsert, at: op.at, bytes: op.bytes})
		}
	}
	return nil, nil
}

// AddMarker inserts a marker and returns its id.
func (b *Buffer) AddMarker(m Marker) MarkerID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.markers.Insert(m)
}

// RemoveMarker deletes a marker by id.
func (b *Buffer) RemoveMarker(id MarkerID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.markers.Remove(id)
}

// RelocateMarker moves a marker to [newStart, newEnd) directly (as opposed
// to via AdjustForEdit's automatic reaction to content edits), keeping its
// id stable. Used for explicit cursor movement and selection changes.
func (b *Buffer) RelocateMarker(id MarkerID, newStart, newEnd int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := b.markers.Relocate(id, newStart, newEnd)
	return err
}

// Marker returns a marker's current position and payload by id.
func (b *Buffer) Marker(id MarkerID) (Marker, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.markers.Get(id)
}

// QueryMarkers returns every marker overlapping [start, end) in ascending
// order of start position.
func (b *Buffer) QueryMarkers(start, end int64) []Marker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.markers.Query(start, end)
}

// LineToByte resolves the starting byte of a line.
func (b *Buffer) LineToByte(line int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines.LineToByte(line)
}

// ByteToLine resolves the line number containing a byte offset.
func (b *Buffer) ByteToLine(at int64) (line int64, estimated bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines.ByteToLine(at)
}

// LineCount returns the buffer's best-known line count.
func (b *Buffer) LineCount() (count int64, exact bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines.LineCount()
}

// PinExactLines forces exact line resolution across [start, end).
func (b *Buffer) PinExactLines(start, end int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lines.PinExact(start, end)
}
