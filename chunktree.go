package loom

import "unicode/utf8"

// ChunkTree stores a UTF-8 byte stream as a balanced tree of fixed-capacity
// leaf chunks. It supports point edits and range reads in O(log N + bytes/C)
// and never splits a multi-byte UTF-8 sequence across an edit boundary that
// a caller did not explicitly request (callers must pass boundary-aligned
// offsets; CharBoundaryBefore helps them find one).
//
// ChunkTree carries no locking of its own: Buffer serializes all mutation
// through the main worker per the concurrency model in §5.
type ChunkTree struct {
	root      *chunkNode
	chunkSize int64
}

// NewChunkTree creates a ChunkTree over the given initial content, using
// DefaultChunkSize as its leaf capacity. Passing nil or an empty slice
// creates an empty buffer (a single empty chunk).
func NewChunkTree(initial []byte) *ChunkTree {
	return NewChunkTreeWithChunkSize(initial, DefaultChunkSize)
}

// NewChunkTreeWithChunkSize creates a ChunkTree with a caller-chosen leaf
// capacity, as wired through EngineOptions.WithChunkSize.
func NewChunkTreeWithChunkSize(initial []byte, chunkSize int64) *ChunkTree {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkTree{root: buildChunkLeaves(initial, chunkSize), chunkSize: chunkSize}
}

// Len returns the total byte length of the tree's content.
func (t *ChunkTree) Len() int64 {
	return nodeBytes(t.root)
}

// Read returns a copy of the bytes in [start, end). end is clamped to
// Len(); a negative start, a start past Len() or an inverted range returns
// InvalidOffset.
func (t *ChunkTree) Read(start, end int64) ([]byte, error) {
	if start < 0 || end < start || start > t.Len() {
		return nil, newErr(KindInvalidOffset, ScopeBuffer, "read range out of bounds", nil)
	}
	if end > t.Len() {
		end = t.Len()
	}
	out := make([]byte, 0, end-start)
	collectRange(t.root, start, end, &out)
	return out, nil
}

// Insert splices data into the tree at byte offset at, which must be a
// valid char boundary in [0, Len()]. Inserting at Len() appends.
func (t *ChunkTree) Insert(at int64, data []byte) error {
	if at < 0 || at > t.Len() {
		return newErr(KindInvalidOffset, ScopeBuffer, "insert offset out of bounds", nil)
	}
	if !t.isCharBoundary(at) {
		return newErr(KindNotACharBoundary, ScopeBuffer, "insert offset is not a UTF-8 boundary", nil)
	}
	if len(data) == 0 {
		return nil
	}
	left, right := splitChunks(t.root, at, t.chunkSize)
	t.root = concatChunks(concatChunks(left, buildChunkLeaves(data, t.chunkSize), t.chunkSize), right, t.chunkSize)
	return nil
}

// Delete removes the bytes in [start, end). Both bounds must be valid char
// boundaries; an empty range is a no-op.
func (t *ChunkTree) Delete(start, end int64) error {
	if start < 0 || end < start || end > t.Len() {
		return newErr(KindInvalidOffset, ScopeBuffer, "delete range out of bounds", nil)
	}
	if !t.isCharBoundary(start) || !t.isCharBoundary(end) {
		return newErr(KindNotACharBoundary, ScopeBuffer, "delete range is not UTF-8 aligned", nil)
	}
	if start == end {
		return nil
	}
	left, mid := splitChunks(t.root, start, t.chunkSize)
	_, right := splitChunks(mid, end-start, t.chunkSize)
	t.root = concatChunks(left, right, t.chunkSize)
	return nil
}

// CharBoundaryBefore snaps offset backward (if necessary) to the nearest
// UTF-8 character boundary at or before it. Offsets beyond Len() snap to
// Len(); negative offsets snap to 0.
func (t *ChunkTree) CharBoundaryBefore(offset int64) int64 {
	n := t.Len()
	if offset >= n {
		return n
	}
	if offset <= 0 {
		return 0
	}
	// UTF-8 continuation bytes never start a rune; walk back at most 3
	// bytes (the longest encoding is 4 bytes) to find a lead byte.
	for back := int64(0); back <= 3 && offset-back >= 0; back++ {
		b, err := t.Read(offset-back, offset-back+1)
		if err != nil || len(b) == 0 {
			break
		}
		if utf8.RuneStart(b[0]) {
			return offset - back
		}
	}
	return offset
}

func (t *ChunkTree) isCharBoundary(offset int64) bool {
	if offset == 0 || offset == t.Len() {
		return true
	}
	b, err := t.Read(offset, offset+1)
	if err != nil || len(b) == 0 {
		return true
	}
	return utf8.RuneStart(b[0])
}

// scanForwardNewlines scans for at most count newlines starting at byte
// from, returning the byte offset immediately after the last newline found
// (Len() if none was found) and how many were actually found. Used by LineIndex to resolve
// line<->byte conversions within SCAN_THRESHOLD of a known anchor.
func (t *ChunkTree) scanForwardNewlines(from int64, count int64) (landedAt int64, found int64) {
	n := t.Len()
	if from >= n {
		return n, 0
	}
	var pos int64 = -1
	forEachLeafInRange(t.root, 0, from, n, func(leafStart int64, data []byte) {
		if found >= count {
			return
		}
		startIdx := int64(0)
		if from > leafStart {
			startIdx = from - leafStart
		}
		for i := startIdx; i < int64(len(data)) && found < count; i++ {
			if data[i] == '\n' {
				found++
				pos = leafStart + i + 1
			}
		}
	})
	if pos < 0 {
		return n, found
	}
	return pos, found
}

// scanBackwardNewlines scans backward from byte `from`, returning the byte
// offset of the start of the line `count` newlines earlier (i.e. the
// position right after the count-th newline encountered going backward),
// and how many newlines were actually found.
func (t *ChunkTree) scanBackwardNewlines(from int64, count int64) (landedAt int64, found int64) {
	if from <= 0 {
		return 0, 0
	}
	data, err := t.Read(0, from)
	if err != nil {
		return 0, 0
	}
	pos := from
	for i := len(data) - 1; i >= 0 && found < count; i-- {
		if data[i] == '\n' {
			found++
			pos = int64(i) + 1
		}
	}
	if found < count {
		return 0, found
	}
	return pos, found
}

// countNewlines returns the number of '\n' bytes in [start, end).
func (t *ChunkTree) countNewlines(start, end int64) int64 {
	var n int64
	forEachLeafInRange(t.root, 0, start, end, func(leafStart int64, data []byte) {
		lo := int64(0)
		if start > leafStart {
			lo = start - leafStart
		}
		hi := int64(len(data))
		if end < leafStart+hi {
			hi = end - leafStart
		}
		for i := lo; i < hi; i++ {
			if data[i] == '\n' {
				n++
			}
		}
	})
	return n
}
