package loom

import "bytes"

// Cursor is a caret plus an optional selection anchor, represented purely
// as two point markers in the buffer's IntervalTree. Because they are
// ordinary markers, edits keep them correctly positioned without the
// CursorSet doing any bookkeeping of its own — the same mechanism that
// repositions overlays and line anchors.
type Cursor struct {
	caretID  MarkerID
	anchorID MarkerID
}

// CursorSet is the full multi-cursor state bound to one Buffer: a non-empty,
// caret-ordered list of Cursors with the invariant that no two cursors'
// selections overlap or touch (overlapping cursors are merged immediately
// after whatever operation caused the overlap).
type CursorSet struct {
	buf     *Buffer
	cursors []*Cursor
}

// NewCursorSet creates a CursorSet with a single collapsed cursor at byte 0.
func NewCursorSet(buf *Buffer) *CursorSet {
	cs := &CursorSet{buf: buf}
	cs.cursors = []*Cursor{cs.newCursorAt(0)}
	return cs
}

func (cs *CursorSet) newCursorAt(at int64) *Cursor {
	caret := cs.buf.AddMarker(Marker{Start: at, End: at, StartAffinity: AffinityRight, EndAffinity: AffinityRight, Payload: PositionPayload{}})
	anchor := cs.buf.AddMarker(Marker{Start: at, End: at, StartAffinity: AffinityRight, EndAffinity: AffinityRight, Payload: PositionPayload{}})
	return &Cursor{caretID: caret, anchorID: anchor}
}

// Count returns the number of cursors.
func (cs *CursorSet) Count() int { return len(cs.cursors) }

// CaretOf returns cursor i's current caret byte position.
func (cs *CursorSet) CaretOf(i int) (int64, error) {
	m, err := cs.buf.Marker(cs.cursors[i].caretID)
	if err != nil {
		return 0, err
	}
	return m.Start, nil
}

// CaretMarkerID returns the MarkerID backing cursor i's caret, for callers
// that need to report which marker changed (e.g. an engine event) rather
// than just its position.
func (cs *CursorSet) CaretMarkerID(i int) MarkerID { return cs.cursors[i].caretID }

// SelectionOf returns cursor i's selection as [start, end) plus whether the
// caret sits at the end of the range (forward selection) or the start
// (backward selection, produced by extending toward a lower offset).
func (cs *CursorSet) SelectionOf(i int) (start, end int64, caretAtEnd bool, err error) {
	caret, err := cs.buf.Marker(cs.cursors[i].caretID)
	if err != nil {
		return 0, 0, false, err
	}
	anchor, err := cs.buf.Marker(cs.cursors[i].anchorID)
	if err != nil {
		return 0, 0, false, err
	}
	if caret.Start >= anchor.Start {
		return anchor.Start, caret.Start, true, nil
	}
	return caret.Start, anchor.Start, false, nil
}

// MoveCaret relocates cursor i's caret to byte `to` and collapses its
// selection (the anchor follows the caret).
func (cs *CursorSet) MoveCaret(i int, to int64) error {
	c := cs.cursors[i]
	if err := cs.relocate(c.caretID, to); err != nil {
		return err
	}
	if err := cs.relocate(c.anchorID, to); err != nil {
		return err
	}
	cs.mergeOverlapping()
	return nil
}

// ExtendSelection moves cursor i's caret to byte `to`, leaving its anchor in
// place so a selection range is formed or grown.
func (cs *CursorSet) ExtendSelection(i int, to int64) error {
	if err := cs.relocate(cs.cursors[i].caretID, to); err != nil {
		return err
	}
	cs.mergeOverlapping()
	return nil
}

func (cs *CursorSet) relocate(id MarkerID, to int64) error {
	return cs.buf.RelocateMarker(id, to, to)
}

// AddCursorAbove adds one new collapsed cursor per existing cursor, placed
// at the same byte offset within the line above, clamped to that line's
// end when the line is shorter. A cursor already on the first line is
// skipped; a new cursor that lands on an existing one is merged into it.
func (cs *CursorSet) AddCursorAbove() error { return cs.addCursorVertical(-1) }

// AddCursorBelow is the downward counterpart of AddCursorAbove.
func (cs *CursorSet) AddCursorBelow() error { return cs.addCursorVertical(1) }

func (cs *CursorSet) addCursorVertical(dir int64) error {
	added := make([]*Cursor, 0, len(cs.cursors))
	for _, c := range cs.cursors {
		caret, err := cs.buf.Marker(c.caretID)
		if err != nil {
			return err
		}
		line, _, err := cs.buf.ByteToLine(caret.Start)
		if err != nil {
			return err
		}
		lineStart, err := cs.buf.LineToByte(line)
		if err != nil {
			return err
		}
		col := caret.Start - lineStart

		targetLine := line + dir
		if targetLine < 0 {
			continue
		}
		count, _ := cs.buf.LineCount()
		if targetLine >= count {
			continue
		}
		targetStart, err := cs.buf.LineToByte(targetLine)
		if err != nil {
			return err
		}
		nextStart, err := cs.buf.LineToByte(targetLine + 1)
		if err != nil {
			return err
		}
		lineLen := nextStart - targetStart
		if lineLen > 0 && cs.buf.Len() > 0 {
			if end, err := cs.buf.Read(nextStart-1, nextStart); err == nil && len(end) == 1 && end[0] == '\n' {
				lineLen--
			}
		}
		target := targetStart + col
		if col > lineLen {
			target = targetStart + lineLen
		}
		added = append(added, cs.newCursorAt(target))
	}
	cs.cursors = append(cs.cursors, added...)
	cs.sortAndMerge()
	return nil
}

// AddCursorAtNextMatch finds the next literal occurrence of pattern at or
// after the end of the last cursor's selection (searching forward, no
// wraparound) and adds a selecting cursor over it. A new cursor that
// touches or overlaps an existing one is merged into it.
func (cs *CursorSet) AddCursorAtNextMatch(pattern []byte) (found bool, err error) {
	if len(pattern) == 0 || len(cs.cursors) == 0 {
		return false, nil
	}
	last := cs.cursors[len(cs.cursors)-1]
	_, end, _, err := cs.selectionByID(last)
	if err != nil {
		return false, err
	}
	content, err := cs.buf.Read(end, cs.buf.Len())
	if err != nil {
		return false, err
	}
	idx := bytes.Index(content, pattern)
	if idx < 0 {
		return false, nil
	}
	start := end + int64(idx)
	stop := start + int64(len(pattern))
	caret := cs.buf.AddMarker(Marker{Start: stop, End: stop, StartAffinity: AffinityRight, EndAffinity: AffinityRight, Payload: PositionPayload{}})
	anchor := cs.buf.AddMarker(Marker{Start: start, End: start, StartAffinity: AffinityLeft, EndAffinity: AffinityLeft, Payload: PositionPayload{}})
	cs.cursors = append(cs.cursors, &Cursor{caretID: caret, anchorID: anchor})
	cs.sortAndMerge()
	return true, nil
}

func (cs *CursorSet) selectionByID(c *Cursor) (start, end int64, caretAtEnd bool, err error) {
	for i, cur := range cs.cursors {
		if cur == c {
			return cs.SelectionOf(i)
		}
	}
	return 0, 0, false, plain("cursor not found in set")
}

// mergeOverlapping re-sorts cursors by selection start and merges any whose
// selection ranges overlap or touch, keeping the invariant
// that no two cursors in the set ever represent over­lapping ranges.
func (cs *CursorSet) mergeOverlapping() { cs.sortAndMerge() }

func (cs *CursorSet) sortAndMerge() {
	type span struct {
		c          *Cursor
		start, end int64
	}
	spans := make([]span, 0, len(cs.cursors))
	for i, c := range cs.cursors {
		s, e, _, err := cs.SelectionOf(i)
		if err != nil {
			continue
		}
		spans = append(spans, span{c, s, e})
	}
	// insertion sort is plenty: cursor counts are small (per editor
	// convention, tens at most), and this runs after every edit reaction.
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].start < spans[j-1].start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}
	merged := make([]span, 0, len(spans))
	for _, s := range spans {
		if n := len(merged); n > 0 && s.start <= merged[n-1].end {
			if s.end > merged[n-1].end {
				merged[n-1].end = s.end
			}
			cs.removeCursor(s.c)
			continue
		}
		merged = append(merged, s)
	}
	kept := make([]*Cursor, 0, len(merged))
	for _, s := range merged {
		// The surviving cursor's markers may still reflect its own
		// pre-merge selection rather than the widened union; snap them to
		// the merged span, caret trailing, to match what every other
		// cursor in the set already looks like after a relocate.
		_ = cs.buf.RelocateMarker(s.c.anchorID, s.start, s.start)
		_ = cs.buf.RelocateMarker(s.c.caretID, s.end, s.end)
		kept = append(kept, s.c)
	}
	cs.cursors = kept
}

func (cs *CursorSet) removeCursor(c *Cursor) {
	_ = cs.buf.RemoveMarker(c.caretID)
	_ = cs.buf.RemoveMarker(c.anchorID)
}

