package loom

import "github.com/mattn/go-runewidth"

// SplitID identifies a split view within an Engine.
type SplitID uint64

// Viewport is the visible window into a buffer: a top line and a left
// display column, both subject to ensure_visible clamping whenever a
// cursor moves outside the currently visible rectangle.
type Viewport struct {
	TopLine    int64
	LeftColumn int
	Height     int  // visible rows
	Width      int  // visible display columns
	Wrap       bool // soft-wrap long lines instead of horizontal scrolling
}

// SplitViewState binds a CursorSet and Viewport to one Buffer. A single
// Buffer may be the target of several SplitViewStates (split panes editing
// the same file); each keeps its own cursors and its own scroll position.
type SplitViewState struct {
	id       SplitID
	buf      *Buffer
	cursors  *CursorSet
	viewport Viewport
}

// NewSplitViewState creates a split view over buf, sized to height rows by
// width display columns, with a single cursor at byte 0.
func NewSplitViewState(id SplitID, buf *Buffer, height, width int) *SplitViewState {
	return &SplitViewState{
		id:       id,
		buf:      buf,
		cursors:  NewCursorSet(buf),
		viewport: Viewport{Height: height, Width: width},
	}
}

// ID returns the split's identity.
func (s *SplitViewState) ID() SplitID { return s.id }

// Buffer returns the buffer this split is viewing.
func (s *SplitViewState) Buffer() *Buffer { return s.buf }

// Cursors returns the split's cursor set.
func (s *SplitViewState) Cursors() *CursorSet { return s.cursors }

// Viewport returns the split's current scroll position and size.
func (s *SplitViewState) Viewport() Viewport { return s.viewport }

// SetWrap toggles soft-wrap mode. Wrapped lines always start at column 0,
// so turning wrap on resets any horizontal scroll.
func (s *SplitViewState) SetWrap(wrap bool) {
	s.viewport.Wrap = wrap
	if wrap {
		s.viewport.LeftColumn = 0
	}
}

// Resize updates the split's visible rectangle, e.g. on a terminal resize.
func (s *SplitViewState) Resize(height, width int) {
	s.viewport.Height = height
	s.viewport.Width = width
	s.EnsureVisible()
}

// Scroll moves the viewport by the given number of lines and display
// columns, clamping to the buffer's known extent.
func (s *SplitViewState) Scroll(deltaLines int64, deltaColumns int) {
	s.viewport.TopLine += deltaLines
	if s.viewport.TopLine < 0 {
		s.viewport.TopLine = 0
	}
	if count, exact := s.buf.LineCount(); exact {
		maxTop := count - 1
		if maxTop < 0 {
			maxTop = 0
		}
		if s.viewport.TopLine > maxTop {
			s.viewport.TopLine = maxTop
		}
	}
	if s.viewport.Wrap {
		return
	}
	s.viewport.LeftColumn += deltaColumns
	if s.viewport.LeftColumn < 0 {
		s.viewport.LeftColumn = 0
	}
}

// EnsureVisible scrolls the viewport by the minimum amount needed to bring
// the primary cursor's caret back inside the visible rectangle, the way an
// editor does after every caret move, search jump, or terminal resize.
func (s *SplitViewState) EnsureVisible() error {
	if s.cursors.Count() == 0 {
		return nil
	}
	caret, err := s.cursors.CaretOf(0)
	if err != nil {
		return err
	}
	line, _, err := s.buf.ByteToLine(caret)
	if err != nil {
		return err
	}
	if line < s.viewport.TopLine {
		s.viewport.TopLine = line
	} else if s.viewport.Height > 0 && line >= s.viewport.TopLine+int64(s.viewport.Height) {
		s.viewport.TopLine = line - int64(s.viewport.Height) + 1
	}

	if s.viewport.Wrap {
		// Wrapped lines always start at column 0; there is no horizontal
		// scroll position to maintain.
		return nil
	}

	col, err := s.displayColumn(caret, line)
	if err != nil {
		return err
	}
	if col < s.viewport.LeftColumn {
		s.viewport.LeftColumn = col
	} else if s.viewport.Width > 0 && col >= s.viewport.LeftColumn+s.viewport.Width {
		s.viewport.LeftColumn = col - s.viewport.Width + 1
	}
	return nil
}

// displayColumn computes the rendered column width, accounting for
// wide/combining runes via go-runewidth, of the text on `line` up to byte
// `at`.
func (s *SplitViewState) displayColumn(at, line int64) (int, error) {
	lineStart, err := s.buf.LineToByte(line)
	if err != nil {
		return 0, err
	}
	prefix, err := s.buf.Read(lineStart, at)
	if err != nil {
		return 0, err
	}
	return runewidth.StringWidth(string(prefix)), nil
}

// OnEdit reacts to a content edit that already happened (cursor markers
// have already moved automatically); it only needs to re-merge any
// cursors that collapsed onto each other and keep the viewport sane.
func (s *SplitViewState) OnEdit() {
	s.cursors.mergeOverlapping()
	_ = s.EnsureVisible()
}
