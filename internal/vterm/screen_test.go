package vterm

import (
	"strings"
	"testing"
)

// rowText flattens row y into a right-trimmed string.
func rowText(s *Screen, y int) string {
	var b strings.Builder
	for x := 0; x < s.Width(); x++ {
		c := s.Cell(x, y)
		if c.Width == 0 {
			continue
		}
		b.WriteRune(c.Rune)
	}
	return strings.TrimRight(b.String(), " ")
}

// fillRow types text onto row y starting at column 0.
func fillRow(s *Screen, y int, text string) {
	s.MoveCursor(0, y)
	for _, r := range text {
		s.WriteRune(r)
	}
}

func TestNewScreenClampsDegenerateSize(t *testing.T) {
	s := NewScreen(0, -3)
	if s.Width() != 80 || s.Height() != 24 {
		t.Fatalf("expected 80x24 fallback, got %dx%d", s.Width(), s.Height())
	}
}

func TestCellIsTotalOverAndBeyondGrid(t *testing.T) {
	s := NewScreen(10, 4)
	fillRow(s, 0, "abc")
	for y := -1; y <= s.Height(); y++ {
		for x := -1; x <= s.Width(); x++ {
			_ = s.Cell(x, y) // must not panic anywhere, including out of bounds
		}
	}
	if got := s.Cell(99, 99); got.Rune != ' ' {
		t.Fatalf("out-of-bounds cell should be empty, got %q", got.Rune)
	}
}

func TestWriteRuneAdvancesAndWraps(t *testing.T) {
	s := NewScreen(5, 3)
	fillRow(s, 0, "abcdef")

	if got := rowText(s, 0); got != "abcde" {
		t.Errorf("row 0 = %q, want %q", got, "abcde")
	}
	if got := rowText(s, 1); got != "f" {
		t.Errorf("row 1 = %q, want %q (wrapped)", got, "f")
	}
	x, y := s.CursorPos()
	if x != 1 || y != 1 {
		t.Errorf("cursor = (%d,%d), want (1,1)", x, y)
	}
}

func TestWriteRuneAutoWrapDisabled(t *testing.T) {
	s := NewScreen(3, 2)
	s.SetAutoWrap(false)
	fillRow(s, 0, "abcXY")

	if got := rowText(s, 0); got != "abY" {
		t.Errorf("row 0 = %q, want %q (last column overwritten)", got, "abY")
	}
	if got := rowText(s, 1); got != "" {
		t.Errorf("row 1 = %q, want empty", got)
	}
}

func TestWriteRuneWideLeavesContinuationCell(t *testing.T) {
	s := NewScreen(10, 2)
	s.WriteRune('漢')

	head := s.Cell(0, 0)
	cont := s.Cell(1, 0)
	if head.Rune != '漢' || head.Width != 2 {
		t.Fatalf("head cell = %q width %d, want 漢 width 2", head.Rune, head.Width)
	}
	if cont.Width != 0 {
		t.Fatalf("continuation cell width = %d, want 0", cont.Width)
	}
	if x, _ := s.CursorPos(); x != 2 {
		t.Fatalf("cursor x = %d, want 2 after wide rune", x)
	}
}

func TestScrollUpFeedsScrollbackOldestFirst(t *testing.T) {
	s := NewScreen(10, 3)
	var pushed []string
	s.SetScrollbackPushCallback(func(l *Line) {
		var b strings.Builder
		for _, c := range l.Cells {
			b.WriteRune(c.Rune)
		}
		pushed = append(pushed, strings.TrimRight(b.String(), " "))
	})

	fillRow(s, 0, "one")
	fillRow(s, 1, "two")
	fillRow(s, 2, "three")
	s.ScrollUp(2)

	if len(pushed) != 2 || pushed[0] != "one" || pushed[1] != "two" {
		t.Fatalf("pushed = %v, want [one two]", pushed)
	}
	if got := rowText(s, 0); got != "three" {
		t.Errorf("row 0 = %q, want %q", got, "three")
	}
	if got := rowText(s, 2); got != "" {
		t.Errorf("row 2 = %q, want blank", got)
	}
}

func TestScrollDownReclaimsFromScrollback(t *testing.T) {
	s := NewScreen(10, 3)
	reclaim := lineWith("old")
	s.SetScrollbackPopCallback(func() *Line { return reclaim })

	fillRow(s, 0, "aaa")
	s.ScrollDown(1)

	if got := s.Cell(0, 0).Rune; got != 'o' {
		t.Errorf("row 0 col 0 = %q, want reclaimed 'o'", got)
	}
	if got := rowText(s, 1); got != "aaa" {
		t.Errorf("row 1 = %q, want %q", got, "aaa")
	}
}

func TestScrollConfinedToRegion(t *testing.T) {
	s := NewScreen(10, 4)
	fillRow(s, 0, "head")
	fillRow(s, 1, "aaa")
	fillRow(s, 2, "bbb")
	fillRow(s, 3, "tail")
	s.SetScrollRegion(1, 2)
	s.ScrollUp(1)

	if got := rowText(s, 0); got != "head" {
		t.Errorf("row 0 = %q, want untouched %q", got, "head")
	}
	if got := rowText(s, 1); got != "bbb" {
		t.Errorf("row 1 = %q, want %q", got, "bbb")
	}
	if got := rowText(s, 2); got != "" {
		t.Errorf("row 2 = %q, want blank", got)
	}
	if got := rowText(s, 3); got != "tail" {
		t.Errorf("row 3 = %q, want untouched %q", got, "tail")
	}
}

func TestInsertAndDeleteLines(t *testing.T) {
	s := NewScreen(10, 4)
	fillRow(s, 0, "aaa")
	fillRow(s, 1, "bbb")
	fillRow(s, 2, "ccc")

	s.MoveCursor(0, 1)
	s.InsertLines(1)
	if rowText(s, 1) != "" || rowText(s, 2) != "bbb" {
		t.Fatalf("after IL: rows = %q/%q, want blank/bbb", rowText(s, 1), rowText(s, 2))
	}

	s.MoveCursor(0, 1)
	s.DeleteLines(1)
	if rowText(s, 1) != "bbb" {
		t.Fatalf("after DL: row 1 = %q, want %q", rowText(s, 1), "bbb")
	}
}

func TestInsertDeleteEraseChars(t *testing.T) {
	s := NewScreen(6, 1)
	fillRow(s, 0, "abcde")

	s.MoveCursor(1, 0)
	s.InsertChars(2)
	if got := rowText(s, 0); got != "a  bcd" {
		t.Fatalf("after ICH: %q, want %q", got, "a  bcd")
	}

	s.MoveCursor(1, 0)
	s.DeleteChars(2)
	if got := rowText(s, 0); got != "abcd" {
		t.Fatalf("after DCH: %q, want %q", got, "abcd")
	}

	s.MoveCursor(1, 0)
	s.EraseChars(2)
	if got := rowText(s, 0); got != "a  d" {
		t.Fatalf("after ECH: %q, want %q", got, "a  d")
	}
}

func TestResizePreservesContentAndClampsCursor(t *testing.T) {
	s := NewScreen(10, 4)
	fillRow(s, 0, "keep me")
	s.MoveCursor(9, 3)

	s.Resize(4, 2)
	if got := rowText(s, 0); got != "keep" {
		t.Errorf("row 0 after shrink = %q, want %q", got, "keep")
	}
	x, y := s.CursorPos()
	if x != 3 || y != 1 {
		t.Errorf("cursor after shrink = (%d,%d), want (3,1)", x, y)
	}

	s.Resize(10, 4)
	if got := rowText(s, 0); got != "keep" {
		t.Errorf("row 0 after regrow = %q, want %q", got, "keep")
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	s := NewScreen(10, 4)
	fillRow(s, 0, "stable")
	s.Resize(8, 3)
	text := s.GetText()
	cx, cy := s.CursorPos()

	s.Resize(8, 3)
	if s.GetText() != text {
		t.Error("second identical resize changed the grid")
	}
	if x, y := s.CursorPos(); x != cx || y != cy {
		t.Errorf("second identical resize moved cursor to (%d,%d)", x, y)
	}
}

func TestSaveRestoreCursorIncludesAttributes(t *testing.T) {
	s := NewScreen(10, 4)
	s.MoveCursor(3, 2)
	s.SetForeground(ColorRed)
	s.AddAttribute(AttrBold)
	s.SaveCursor()

	s.MoveCursor(0, 0)
	s.ResetAttributes()
	s.RestoreCursor()

	if x, y := s.CursorPos(); x != 3 || y != 2 {
		t.Errorf("cursor = (%d,%d), want (3,2)", x, y)
	}
	s.WriteRune('x')
	c := s.Cell(3, 2)
	if c.Foreground != ColorRed || !c.Attributes.Has(AttrBold) {
		t.Errorf("restored attributes not applied: %+v", c)
	}
}

func TestDamageCallbackFiresClippedRects(t *testing.T) {
	s := NewScreen(10, 4)
	var rects []Rect
	s.SetDamageCallback(func(r Rect) { rects = append(rects, r) })

	s.WriteRune('a')
	if len(rects) != 1 || rects[0] != (Rect{StartRow: 0, StartCol: 0, EndRow: 1, EndCol: 1}) {
		t.Fatalf("write damage = %+v, want single {0 0 1 1}", rects)
	}

	rects = nil
	s.MoveCursor(2, 1)
	s.ClearLineRight()
	if len(rects) != 1 || rects[0] != (Rect{StartRow: 1, StartCol: 2, EndRow: 2, EndCol: 10}) {
		t.Fatalf("EL damage = %+v, want {1 2 2 10}", rects)
	}

	// A count running past the right edge must clip, never escape the grid.
	rects = nil
	s.MoveCursor(8, 0)
	s.EraseChars(100)
	if len(rects) != 1 || rects[0].EndCol != 10 {
		t.Fatalf("ECH damage = %+v, want EndCol clipped to 10", rects)
	}
	if r := rects[0]; r.StartRow < 0 || r.StartCol < 0 || r.EndRow > 4 {
		t.Fatalf("rect %+v escapes the grid", r)
	}
}

func TestCursorMovedCallbackSkipsNoopMoves(t *testing.T) {
	s := NewScreen(10, 4)
	var moves [][2]int
	s.SetCursorMovedCallback(func(x, y int) { moves = append(moves, [2]int{x, y}) })

	s.MoveCursor(3, 2)
	s.MoveCursor(3, 2) // no-op, position unchanged
	if len(moves) != 1 || moves[0] != [2]int{3, 2} {
		t.Fatalf("moves = %v, want single (3,2)", moves)
	}
}

func TestRectMovedCallbackOnScroll(t *testing.T) {
	s := NewScreen(8, 5)
	var dests, srcs []Rect
	s.SetRectMovedCallback(func(dest, src Rect) {
		dests = append(dests, dest)
		srcs = append(srcs, src)
	})

	s.ScrollUp(1)
	if len(dests) != 1 {
		t.Fatalf("expected one rect move, got %d", len(dests))
	}
	wantDest := Rect{StartRow: 0, StartCol: 0, EndRow: 4, EndCol: 8}
	wantSrc := Rect{StartRow: 1, StartCol: 0, EndRow: 5, EndCol: 8}
	if dests[0] != wantDest || srcs[0] != wantSrc {
		t.Fatalf("move = %+v <- %+v, want %+v <- %+v", dests[0], srcs[0], wantDest, wantSrc)
	}
}

func TestPropChangedCallbackFiresOncePerChange(t *testing.T) {
	s := NewScreen(10, 4)
	var props []Prop
	s.SetPropChangedCallback(func(p Prop) { props = append(props, p) })

	s.SetTitle("build")
	s.SetTitle("build") // unchanged, must not re-fire
	s.SetIconName("icon")
	s.SetMouseMode(MouseModeButtonMotion)
	s.SetSGRMouse(true)
	s.SetBracketedPaste(true)
	s.SetCursorVisible(false)
	s.SetCursorStyle(CursorBar)
	s.EnterAltScreen()

	want := []Prop{
		PropTitle, PropIconName, PropMouseMode, PropMouseMode,
		PropBracketedPaste, PropCursorVisible, PropCursorStyle, PropAltScreen,
	}
	if len(props) != len(want) {
		t.Fatalf("props = %v, want %v", props, want)
	}
	for i := range want {
		if props[i] != want[i] {
			t.Fatalf("props[%d] = %v, want %v", i, props[i], want[i])
		}
	}

	if s.Title() != "build" || s.IconName() != "icon" {
		t.Errorf("title/icon = %q/%q", s.Title(), s.IconName())
	}
	if s.MouseModeValue() != MouseModeButtonMotion || !s.SGRMouseEnabled() {
		t.Error("mouse mode state not retained")
	}
	if !s.BracketedPasteEnabled() || s.CursorVisible() || s.CursorStyleValue() != CursorBar {
		t.Error("paste/cursor state not retained")
	}
}

func TestAltScreenIsolatesContentAndCursor(t *testing.T) {
	s := NewScreen(10, 3)
	fillRow(s, 0, "main")
	s.MoveCursor(4, 0)

	s.EnterAltScreen()
	if x, y := s.CursorPos(); x != 0 || y != 0 {
		t.Fatalf("alt cursor = (%d,%d), want (0,0)", x, y)
	}
	if got := rowText(s, 0); got != "" {
		t.Fatalf("alt screen shows main content %q", got)
	}
	fillRow(s, 0, "alt!")
	if !s.AltScreenActive() {
		t.Fatal("AltScreenActive = false inside alt screen")
	}

	s.ExitAltScreen()
	if got := rowText(s, 0); got != "main" {
		t.Fatalf("main content = %q after exit, want %q", got, "main")
	}
	if x, y := s.CursorPos(); x != 4 || y != 0 {
		t.Fatalf("restored cursor = (%d,%d), want (4,0)", x, y)
	}
	if s.AltScreenActive() {
		t.Fatal("AltScreenActive = true after exit")
	}
}

func TestAltScreenScrollBypassesScrollback(t *testing.T) {
	s := NewScreen(10, 2)
	pushes := 0
	s.SetScrollbackPushCallback(func(*Line) { pushes++ })

	s.EnterAltScreen()
	fillRow(s, 0, "x")
	s.ScrollUp(1)
	if pushes != 0 {
		t.Fatalf("alt-screen scroll pushed %d lines to scrollback, want 0", pushes)
	}

	s.ExitAltScreen()
	s.ScrollUp(1)
	if pushes != 1 {
		t.Fatalf("main-screen scroll pushed %d lines, want 1", pushes)
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	s := NewScreen(10, 4)
	fillRow(s, 0, "junk")
	s.SetCursorVisible(false)
	s.SetScrollRegion(1, 2)
	s.SetForeground(ColorRed)

	s.Reset()

	if got := rowText(s, 0); got != "" {
		t.Errorf("row 0 = %q after reset, want blank", got)
	}
	if x, y := s.CursorPos(); x != 0 || y != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", x, y)
	}
	if !s.CursorVisible() {
		t.Error("cursor hidden after reset")
	}
	s.WriteRune('x')
	if s.Cell(0, 0).Foreground != DefaultForeground {
		t.Error("attributes not reset")
	}
}

func TestGetTextRange(t *testing.T) {
	s := NewScreen(5, 2)
	fillRow(s, 0, "abcde")
	fillRow(s, 1, "fghij")

	if got := s.GetTextRange(1, 0, 2, 1); got != "bcde\nfgh" {
		t.Fatalf("range = %q, want %q", got, "bcde\nfgh")
	}
}
