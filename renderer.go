package loom

import (
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Cell is one terminal cell in a rendered grid: a grapheme cluster's first
// rune (the rest, if any, are combining marks folded into the same cell),
// how many display columns it occupies, and the style to draw it with.
// Width 0 marks the continuation column of a wide (e.g. CJK) cluster so the
// renderer never has to special-case double-width cells downstream.
type Cell struct {
	Ch    rune
	Width int
	Style tcell.Style
}

// RenderOptions configures the renderer's pure grid-building pass.
type RenderOptions struct {
	TabWidth     int
	DefaultStyle tcell.Style
	CursorStyle  tcell.Style
	SelectStyle  tcell.Style
}

// DefaultRenderOptions returns sensible defaults: 4-wide tabs, reverse
// video for the caret, and a dimmed background for selections.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		TabWidth:     4,
		DefaultStyle: tcell.StyleDefault,
		CursorStyle:  tcell.StyleDefault.Reverse(true),
		SelectStyle:  tcell.StyleDefault.Background(tcell.ColorGray),
	}
}

// Render produces a Height x Width grid of Cells for the given split's
// current viewport, content, overlays, and cursors. It is a pure function
// of its inputs: calling it twice with the same buffer revision and
// viewport yields identical output, which is what lets an Engine redraw
// without mutating anything render-related.
func Render(split *SplitViewState, opts RenderOptions) ([][]Cell, error) {
	vp := split.Viewport()
	grid := make([][]Cell, vp.Height)
	for row := range grid {
		grid[row] = make([]Cell, vp.Width)
		for col := range grid[row] {
			grid[row][col] = Cell{Ch: ' ', Width: 1, Style: opts.DefaultStyle}
		}
	}
	if vp.Height == 0 || vp.Width == 0 {
		return grid, nil
	}

	cursorBytes, selectRanges, err := cursorRenderInfo(split)
	if err != nil {
		return nil, err
	}

	row := 0
	for line := vp.TopLine; row < vp.Height; line++ {
		count, _ := split.buf.LineCount()
		if line >= count {
			break
		}
		if vp.Wrap {
			consumed, err := renderLineWrapped(split.buf, grid, row, line, vp, opts, cursorBytes, selectRanges)
			if err != nil {
				return nil, err
			}
			row += consumed
		} else {
			if err := renderLine(split.buf, grid[row], line, vp, opts, cursorBytes, selectRanges); err != nil {
				return nil, err
			}
			row++
		}
	}
	return grid, nil
}

// renderLineWrapped renders one logical line into one or more consecutive
// visual rows of grid starting at startRow, breaking to a new row whenever
// the next grapheme cluster would overflow vp.Width. It returns the number
// of visual rows consumed (always at least 1, even for an empty line).
func renderLineWrapped(buf *Buffer, grid [][]Cell, startRow int, line int64, vp Viewport, opts RenderOptions, cursors map[int64]bool, selections [][2]int64) (int, error) {
	lineStart, err := buf.LineToByte(line)
	if err != nil {
		return 0, err
	}
	lineEndLine, err := buf.LineToByte(line + 1)
	if err != nil {
		return 0, err
	}
	n := buf.Len()
	lineEnd := lineEndLine
	if lineEndLine > n {
		lineEnd = n
	}
	raw, err := buf.Read(lineStart, lineEnd)
	if err != nil {
		return 0, err
	}
	if len(raw) > 0 && raw[len(raw)-1] == '\n' {
		raw = raw[:len(raw)-1]
	}
	overlays := buf.QueryMarkers(lineStart, lineEnd)
	sort.SliceStable(overlays, func(i, j int) bool {
		pi, pj := overlayPriority(overlays[i]), overlayPriority(overlays[j])
		return pi < pj
	})

	col := 0
	row := startRow
	byteOff := lineStart
	gr := uniseg.NewGraphemes(string(raw))
	for gr.Next() {
		if row >= len(grid) {
			break
		}
		runes := gr.Runes()
		clusterBytes := gr.Bytes()

		width := runewidth.StringWidth(string(clusterBytes))
		ch := runes[0]
		if ch == '\t' {
			width = opts.TabWidth - (col % opts.TabWidth)
			ch = ' '
		}
		if width <= 0 {
			width = 1
		}
		if col > 0 && col+width > vp.Width {
			row++
			col = 0
			if row >= len(grid) {
				byteOff += int64(len(clusterBytes))
				break
			}
		}

		style := styleAt(opts, overlays, byteOff, selections, cursors)
		for w := 0; w < width && col+w < vp.Width; w++ {
			if w == 0 {
				grid[row][col+w] = Cell{Ch: ch, Width: width, Style: style}
			} else {
				grid[row][col+w] = Cell{Ch: 0, Width: 0, Style: style}
			}
		}
		col += width
		byteOff += int64(len(clusterBytes))
	}

	if cursors[byteOff] {
		if col >= vp.Width {
			row++
			col = 0
		}
		if row < len(grid) {
			grid[row][col] = Cell{Ch: ' ', Width: 1, Style: opts.CursorStyle}
		}
	}
	return row - startRow + 1, nil
}

func cursorRenderInfo(split *SplitViewState) (map[int64]bool, [][2]int64, error) {
	cursors := map[int64]bool{}
	var selections [][2]int64
	for i := 0; i < split.cursors.Count(); i++ {
		caret, err := split.cursors.CaretOf(i)
		if err != nil {
			return nil, nil, err
		}
		cursors[caret] = true
		s, e, _, err := split.cursors.SelectionOf(i)
		if err != nil {
			return nil, nil, err
		}
		if e > s {
			selections = append(selections, [2]int64{s, e})
		}
	}
	return cursors, selections, nil
}

func renderLine(buf *Buffer, row []Cell, line int64, vp Viewport, opts RenderOptions, cursors map[int64]bool, selections [][2]int64) error {
	lineStart, err := buf.LineToByte(line)
	if err != nil {
		return err
	}
	lineEndLine, err := buf.LineToByte(line + 1)
	if err != nil {
		return err
	}
	n := buf.Len()
	lineEnd := lineEndLine
	if lineEndLine > n {
		lineEnd = n
	}
	raw, err := buf.Read(lineStart, lineEnd)
	if err != nil {
		return err
	}
	if len(raw) > 0 && raw[len(raw)-1] == '\n' {
		raw = raw[:len(raw)-1]
	}
	overlays := buf.QueryMarkers(lineStart, lineEnd)
	sort.SliceStable(overlays, func(i, j int) bool {
		pi, pj := overlayPriority(overlays[i]), overlayPriority(overlays[j])
		return pi < pj
	})

	col := 0
	byteOff := lineStart
	gr := uniseg.NewGraphemes(string(raw))
	for gr.Next() {
		runes := gr.Runes()
		clusterStart := byteOff
		clusterBytes := gr.Bytes()
		byteOff += int64(len(clusterBytes))

		width := runewidth.StringWidth(string(clusterBytes))
		ch := runes[0]
		if ch == '\t' {
			width = opts.TabWidth - (col % opts.TabWidth)
			ch = ' '
		}
		if width <= 0 {
			width = 1
		}

		style := styleAt(opts, overlays, clusterStart, selections, cursors)
		for w := 0; w < width && col+w-vp.LeftColumn < vp.Width; w++ {
			displayCol := col + w - vp.LeftColumn
			if displayCol < 0 || displayCol >= len(row) {
				continue
			}
			if w == 0 {
				row[displayCol] = Cell{Ch: ch, Width: width, Style: style}
			} else {
				row[displayCol] = Cell{Ch: 0, Width: 0, Style: style}
			}
		}
		col += width
		if col-vp.LeftColumn >= vp.Width {
			break
		}
	}

	// A caret sitting at end-of-line (no grapheme to attach to) still
	// needs to render as a visible reversed blank cell.
	if cursors[byteOff] {
		displayCol := col - vp.LeftColumn
		if displayCol >= 0 && displayCol < len(row) {
			row[displayCol] = Cell{Ch: ' ', Width: 1, Style: opts.CursorStyle}
		}
	}
	return nil
}

func overlayPriority(m Marker) int {
	if op, ok := m.Payload.(OverlayPayload); ok {
		return op.Priority
	}
	return -1
}

func styleAt(opts RenderOptions, overlays []Marker, at int64, selections [][2]int64, cursors map[int64]bool) tcell.Style {
	style := opts.DefaultStyle
	for _, s := range selections {
		if at >= s[0] && at < s[1] {
			style = opts.SelectStyle
			break
		}
	}
	for _, m := range overlays {
		op, ok := m.Payload.(OverlayPayload)
		if !ok {
			continue
		}
		if at >= m.Start && at < m.End {
			style = op.Style // later (higher-priority, since sorted ascending) overlays win ties
		}
	}
	if cursors[at] {
		style = opts.CursorStyle
	}
	return style
}
