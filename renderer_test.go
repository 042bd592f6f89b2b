package loom

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestRenderBasicGrid(t *testing.T) {
	b := NewBuffer("t", []byte("hello\nworld\n"), 0)
	s := NewSplitViewState(1, b, 3, 10)

	grid, err := Render(s, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(grid) != 3 || len(grid[0]) != 10 {
		t.Fatalf("grid dims = %dx%d, want 3x10", len(grid), len(grid[0]))
	}
	got := string([]rune{grid[0][0].Ch, grid[0][1].Ch, grid[0][2].Ch, grid[0][3].Ch, grid[0][4].Ch})
	if got != "hello" {
		t.Errorf("row 0 = %q, want %q", got, "hello")
	}
	got = string([]rune{grid[1][0].Ch, grid[1][1].Ch, grid[1][2].Ch, grid[1][3].Ch, grid[1][4].Ch})
	if got != "world" {
		t.Errorf("row 1 = %q, want %q", got, "world")
	}
}

func TestRenderCursorStyle(t *testing.T) {
	b := NewBuffer("t", []byte("abc"), 0)
	s := NewSplitViewState(1, b, 1, 10)
	if err := s.Cursors().MoveCaret(0, 1); err != nil {
		t.Fatalf("MoveCaret: %v", err)
	}
	opts := DefaultRenderOptions()
	grid, err := Render(s, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if grid[0][1].Style != opts.CursorStyle {
		t.Errorf("cell at caret should use CursorStyle")
	}
	if grid[0][0].Style == opts.CursorStyle {
		t.Errorf("cell before caret should not use CursorStyle")
	}
}

func TestRenderSelectionStyle(t *testing.T) {
	b := NewBuffer("t", []byte("abcdef"), 0)
	s := NewSplitViewState(1, b, 1, 10)
	if err := s.Cursors().MoveCaret(0, 1); err != nil {
		t.Fatalf("MoveCaret: %v", err)
	}
	if err := s.Cursors().ExtendSelection(0, 4); err != nil {
		t.Fatalf("ExtendSelection: %v", err)
	}
	opts := DefaultRenderOptions()
	grid, err := Render(s, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for col := 1; col < 4; col++ {
		if grid[0][col].Style != opts.SelectStyle && grid[0][col].Style != opts.CursorStyle {
			t.Errorf("col %d should be selected or the caret, got default style", col)
		}
	}
	if grid[0][0].Style == opts.SelectStyle {
		t.Errorf("col 0 is outside the selection and should not be styled")
	}
}

func TestRenderOverlayStyle(t *testing.T) {
	b := NewBuffer("t", []byte("abcdef"), 0)
	s := NewSplitViewState(1, b, 1, 10)
	overlayStyle := tcell.StyleDefault.Foreground(tcell.ColorRed)
	b.AddMarker(Marker{Start: 2, End: 4, Payload: OverlayPayload{Style: overlayStyle, Kind: "test", Priority: 1}})

	grid, err := Render(s, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if grid[0][2].Style != overlayStyle {
		t.Errorf("col 2 should carry the overlay style")
	}
	if grid[0][0].Style == overlayStyle {
		t.Errorf("col 0 is outside the overlay and should not carry its style")
	}
}

func TestRenderEmptyViewport(t *testing.T) {
	b := NewBuffer("t", []byte("abc"), 0)
	s := NewSplitViewState(1, b, 0, 0)
	grid, err := Render(s, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("grid height = %d, want 0", len(grid))
	}
}

func TestRenderWrapSplitsLongLine(t *testing.T) {
	b := NewBuffer("t", []byte("0123456789"), 0)
	s := NewSplitViewState(1, b, 4, 4)
	s.SetWrap(true)

	grid, err := Render(s, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []string{"0123", "4567", "89  "}
	for row, w := range want {
		got := string([]rune{grid[row][0].Ch, grid[row][1].Ch, grid[row][2].Ch, grid[row][3].Ch})
		if got != w {
			t.Errorf("row %d = %q, want %q", row, got, w)
		}
	}
}

func TestRenderNoWrapClipsLongLine(t *testing.T) {
	b := NewBuffer("t", []byte("0123456789"), 0)
	s := NewSplitViewState(1, b, 1, 4)

	grid, err := Render(s, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := string([]rune{grid[0][0].Ch, grid[0][1].Ch, grid[0][2].Ch, grid[0][3].Ch})
	if got != "0123" {
		t.Errorf("row 0 = %q, want %q (clipped, not wrapped)", got, "0123")
	}
	if len(grid) != 1 {
		t.Errorf("grid height = %d, want 1 (no wrap should not add rows)", len(grid))
	}
}

func TestRenderWideGrapheme(t *testing.T) {
	b := NewBuffer("t", []byte("a中b"), 0) // CJK char is double-width
	s := NewSplitViewState(1, b, 1, 10)
	grid, err := Render(s, DefaultRenderOptions())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if grid[0][1].Width != 2 {
		t.Errorf("wide rune cell Width = %d, want 2", grid[0][1].Width)
	}
	if grid[0][2].Width != 0 {
		t.Errorf("wide rune continuation cell Width = %d, want 0", grid[0][2].Width)
	}
}
