package vterm

import (
	"strings"
	"testing"
)

// term pairs a screen with a parser at a convenient test size.
func term(w, h int) (*Screen, *Parser) {
	s := NewScreen(w, h)
	return s, NewParser(s)
}

func TestParserTextAndControls(t *testing.T) {
	tests := []struct {
		name  string
		input string
		row   int
		want  string
	}{
		{"plain text", "hello", 0, "hello"},
		{"crlf starts a new row", "one\r\ntwo", 1, "two"},
		{"bare lf keeps the column", "ab\ncd", 1, "  cd"},
		{"backspace overwrites", "ax\by", 0, "ay"},
		{"carriage return rewinds", "abc\rX", 0, "Xbc"},
		{"bel is swallowed", "a\x07b", 0, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := term(20, 4)
			p.ParseString(tt.input)
			if got := rowText(s, tt.row); got != tt.want {
				t.Errorf("row %d = %q, want %q", tt.row, got, tt.want)
			}
		})
	}
}

func TestParserTabAdvancesToNextStopOnSameRow(t *testing.T) {
	s, p := term(20, 4)
	p.ParseString("\x1b[3;1Ha\tb")

	if got := s.Cell(8, 2).Rune; got != 'b' {
		t.Errorf("cell (8,2) = %q, want 'b' at the next tab stop", got)
	}
	if _, y := s.CursorPos(); y != 2 {
		t.Errorf("tab changed the row to %d", y)
	}
}

func TestParserCursorMovement(t *testing.T) {
	tests := []struct {
		name  string
		input string
		wantX int
		wantY int
	}{
		{"CUP", "\x1b[5;10H", 9, 4},
		{"HVP", "\x1b[3;3f", 2, 2},
		{"CUU", "\x1b[5;5H\x1b[2A", 4, 2},
		{"CUD", "\x1b[1;1H\x1b[3B", 0, 3},
		{"CUF", "\x1b[4C", 4, 0},
		{"CUB", "\x1b[1;6H\x1b[2D", 3, 0},
		{"CHA", "\x1b[3;5H\x1b[2G", 1, 2},
		{"VPA", "\x1b[3;5H\x1b[6d", 4, 5},
		{"CNL", "\x1b[2;7H\x1b[2E", 0, 3},
		{"CPL", "\x1b[5;7H\x1b[F", 0, 3},
		{"clamped to grid", "\x1b[99;99H", 19, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := term(20, 8)
			p.ParseString(tt.input)
			x, y := s.CursorPos()
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("cursor = (%d,%d), want (%d,%d)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestParserErasures(t *testing.T) {
	// Three full rows, cursor parked mid-grid before each erase.
	setup := "aaaa\r\nbbbb\r\ncccc\x1b[2;3H"

	tests := []struct {
		name string
		seq  string
		want [3]string
	}{
		{"ED below", "\x1b[J", [3]string{"aaaa", "bb", ""}},
		{"ED above", "\x1b[1J", [3]string{"", "   b", "cccc"}},
		{"ED all", "\x1b[2J", [3]string{"", "", ""}},
		{"EL right", "\x1b[K", [3]string{"aaaa", "bb", "cccc"}},
		{"EL left", "\x1b[1K", [3]string{"aaaa", "   b", "cccc"}},
		{"EL all", "\x1b[2K", [3]string{"aaaa", "", "cccc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := term(4, 3)
			p.ParseString(setup + tt.seq)
			for y, want := range tt.want {
				if got := rowText(s, y); got != want {
					t.Errorf("row %d = %q, want %q", y, got, want)
				}
			}
		})
	}
}

func TestParserSGRAttributes(t *testing.T) {
	s, p := term(20, 2)
	p.ParseString("\x1b[1;3;4;7mX\x1b[22;23mY")

	x := s.Cell(0, 0)
	for _, attr := range []CellAttributes{AttrBold, AttrItalic, AttrUnderline, AttrReverse} {
		if !x.Attributes.Has(attr) {
			t.Errorf("X missing attribute %b", attr)
		}
	}

	y := s.Cell(1, 0)
	if y.Attributes.Has(AttrBold) || y.Attributes.Has(AttrItalic) {
		t.Error("SGR 22/23 did not remove bold/italic")
	}
	if !y.Attributes.Has(AttrUnderline) {
		t.Error("SGR 22/23 should leave underline set")
	}
}

func TestParserSGRColors(t *testing.T) {
	tests := []struct {
		name   string
		seq    string
		wantFg Color
		wantBg Color
	}{
		{"basic", "\x1b[31;44m", ColorRed, ColorBlue},
		{"bright", "\x1b[92;103m", ColorBrightGreen, ColorBrightYellow},
		{"256-color", "\x1b[38;5;196;48;5;21m", ColorFromIndex(196), ColorFromIndex(21)},
		{"truecolor", "\x1b[38;2;10;20;30;48;2;1;2;3m", ColorFromRGB(10, 20, 30), ColorFromRGB(1, 2, 3)},
		{"defaults", "\x1b[31;44m\x1b[39;49m", DefaultForeground, DefaultBackground},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := term(10, 1)
			p.ParseString(tt.seq + "x")
			c := s.Cell(0, 0)
			if c.Foreground != tt.wantFg {
				t.Errorf("fg = %+v, want %+v", c.Foreground, tt.wantFg)
			}
			if c.Background != tt.wantBg {
				t.Errorf("bg = %+v, want %+v", c.Background, tt.wantBg)
			}
		})
	}
}

func TestParserSGRResetClearsEverything(t *testing.T) {
	s, p := term(10, 1)
	p.ParseString("\x1b[1;31;44mA\x1b[0mB")

	b := s.Cell(1, 0)
	if b.Foreground != DefaultForeground || b.Background != DefaultBackground || b.Attributes != AttrNone {
		t.Fatalf("cell after SGR 0 = %+v, want all defaults", b)
	}
}

func TestParserScrollRegionConfinesLineFeed(t *testing.T) {
	s, p := term(10, 4)
	p.ParseString("\x1b[1;1Haaa\x1b[2;1Hbbb\x1b[3;1Hccc\x1b[4;1Hddd")
	p.ParseString("\x1b[2;3r\x1b[3;1H\n")

	if got := rowText(s, 0); got != "aaa" {
		t.Errorf("row 0 = %q, want untouched %q", got, "aaa")
	}
	if got := rowText(s, 1); got != "ccc" {
		t.Errorf("row 1 = %q, want scrolled-up %q", got, "ccc")
	}
	if got := rowText(s, 2); got != "" {
		t.Errorf("row 2 = %q, want blank", got)
	}
	if got := rowText(s, 3); got != "ddd" {
		t.Errorf("row 3 = %q, want untouched %q", got, "ddd")
	}
}

func TestParserInsertDeleteSequences(t *testing.T) {
	tests := []struct {
		name string
		seq  string
		want string
	}{
		{"ICH shifts right", "\x1b[1;2H\x1b[2@", "a  bcde"},
		{"DCH shifts left", "\x1b[1;2H\x1b[2P", "ade"},
		{"ECH blanks in place", "\x1b[1;2H\x1b[2X", "a  de"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p := term(7, 1)
			p.ParseString("abcde" + tt.seq)
			if got := rowText(s, 0); got != tt.want {
				t.Errorf("row = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParserSaveRestoreCursorVariants(t *testing.T) {
	for _, tt := range []struct{ name, save, restore string }{
		{"DECSC/DECRC", "\x1b7", "\x1b8"},
		{"CSI s/u", "\x1b[s", "\x1b[u"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			s, p := term(20, 5)
			p.ParseString("\x1b[3;7H" + tt.save + "\x1b[1;1H" + tt.restore)
			x, y := s.CursorPos()
			if x != 6 || y != 2 {
				t.Errorf("cursor = (%d,%d), want (6,2)", x, y)
			}
		})
	}
}

func TestParserUTF8(t *testing.T) {
	s, p := term(20, 2)
	p.ParseString("héllo 漢字")

	if got := rowText(s, 0); got != "héllo 漢字" {
		t.Errorf("row = %q", got)
	}
	wide := s.Cell(6, 0)
	if wide.Rune != '漢' || wide.Width != 2 {
		t.Errorf("cell (6,0) = %q width %d, want 漢 width 2", wide.Rune, wide.Width)
	}
}

func TestParserInvalidUTF8BecomesReplacement(t *testing.T) {
	s, p := term(10, 1)
	p.Parse([]byte{'a', 0x80, 'b'}) // stray continuation byte

	if got := s.Cell(1, 0).Rune; got != '�' {
		t.Errorf("cell (1,0) = %q, want U+FFFD", got)
	}
	if got := s.Cell(2, 0).Rune; got != 'b' {
		t.Errorf("cell (2,0) = %q, want 'b'", got)
	}
}

func TestParserSplitWritesEqualOneWrite(t *testing.T) {
	// Byte-at-a-time parsing must land on the same grid as one big write,
	// splitting mid-escape and mid-UTF-8 along the way.
	input := "\x1b[2;2H\x1b[1;38;5;118mgrün 漢\x1b[0m\r\nplain\x1b[?25l"

	whole, pw := term(20, 4)
	pw.ParseString(input)

	split, ps := term(20, 4)
	for i := 0; i < len(input); i++ {
		ps.Parse([]byte{input[i]})
	}

	if whole.GetText() != split.GetText() {
		t.Fatalf("grids differ:\nwhole: %q\nsplit: %q", whole.GetText(), split.GetText())
	}
	wx, wy := whole.CursorPos()
	sx, sy := split.CursorPos()
	if wx != sx || wy != sy {
		t.Fatalf("cursors differ: (%d,%d) vs (%d,%d)", wx, wy, sx, sy)
	}
	if whole.Cell(1, 1) != split.Cell(1, 1) {
		t.Fatalf("styled cells differ: %+v vs %+v", whole.Cell(1, 1), split.Cell(1, 1))
	}
	if whole.CursorVisible() != split.CursorVisible() {
		t.Fatal("cursor visibility differs")
	}
}

func TestParserDECSETCursorVisibility(t *testing.T) {
	s, p := term(10, 2)
	p.ParseString("\x1b[?25l")
	if s.CursorVisible() {
		t.Fatal("cursor still visible after DECRST 25... inverted?")
	}
	p.ParseString("\x1b[?25h")
	if !s.CursorVisible() {
		t.Fatal("cursor not visible after DECSET 25")
	}
}

func TestParserDECSETMouseModes(t *testing.T) {
	tests := []struct {
		seq  string
		want MouseMode
	}{
		{"\x1b[?9h", MouseModePress},
		{"\x1b[?1000h", MouseModePressRelease},
		{"\x1b[?1002h", MouseModeButtonMotion},
		{"\x1b[?1003h", MouseModeAnyMotion},
	}
	for _, tt := range tests {
		s, p := term(10, 2)
		p.ParseString(tt.seq)
		if got := s.MouseModeValue(); got != tt.want {
			t.Errorf("%q: mouse mode = %v, want %v", tt.seq, got, tt.want)
		}
		p.ParseString(strings.Replace(tt.seq, "h", "l", 1))
		if got := s.MouseModeValue(); got != MouseModeNone {
			t.Errorf("%q reset: mouse mode = %v, want none", tt.seq, got)
		}
	}
}

func TestParserDECSETSGRMouseAndBracketedPaste(t *testing.T) {
	s, p := term(10, 2)
	p.ParseString("\x1b[?1006h\x1b[?2004h")
	if !s.SGRMouseEnabled() {
		t.Error("SGR mouse not enabled by DECSET 1006")
	}
	if !s.BracketedPasteEnabled() {
		t.Error("bracketed paste not enabled by DECSET 2004")
	}

	p.ParseString("\x1b[?1006l\x1b[?2004l")
	if s.SGRMouseEnabled() || s.BracketedPasteEnabled() {
		t.Error("DECRST did not clear SGR mouse / bracketed paste")
	}
}

func TestParserAltScreen1049RoundTrip(t *testing.T) {
	s, p := term(10, 3)
	p.ParseString("main\x1b[?1049h")

	if !s.AltScreenActive() {
		t.Fatal("alt screen not active after DECSET 1049")
	}
	if got := rowText(s, 0); got != "" {
		t.Fatalf("alt screen not cleared, row 0 = %q", got)
	}
	p.ParseString("vim!")

	p.ParseString("\x1b[?1049l")
	if s.AltScreenActive() {
		t.Fatal("alt screen still active after DECRST 1049")
	}
	if got := rowText(s, 0); got != "main" {
		t.Fatalf("main buffer = %q after exit, want %q", got, "main")
	}
	if x, y := s.CursorPos(); x != 4 || y != 0 {
		t.Fatalf("cursor = (%d,%d) after exit, want restored (4,0)", x, y)
	}
}

func TestParserAltScreen47KeepsAltContentHidden(t *testing.T) {
	s, p := term(10, 2)
	p.ParseString("one\x1b[?47hTWO\x1b[?47l")

	if got := rowText(s, 0); got != "one" {
		t.Fatalf("main row = %q, want %q", got, "one")
	}
}

func TestParserOSCTitleAndIconName(t *testing.T) {
	s, p := term(10, 2)

	p.ParseString("\x1b]2;window title\x07")
	if s.Title() != "window title" {
		t.Errorf("title = %q", s.Title())
	}

	p.ParseString("\x1b]1;just icon\x07")
	if s.IconName() != "just icon" {
		t.Errorf("icon = %q", s.IconName())
	}

	// OSC 0 sets both, terminated by ST instead of BEL.
	p.ParseString("\x1b]0;both\x1b\\")
	if s.Title() != "both" || s.IconName() != "both" {
		t.Errorf("title/icon = %q/%q, want both/both", s.Title(), s.IconName())
	}
}

func TestParserOSCCallbackForUnhandledCommands(t *testing.T) {
	_, p := term(10, 2)
	var gotCmd int
	var gotData string
	p.SetOSCCallback(func(cmd int, data string) { gotCmd, gotData = cmd, data })

	p.ParseString("\x1b]7;file://host/tmp/build\x07")
	if gotCmd != 7 || gotData != "file://host/tmp/build" {
		t.Fatalf("OSC callback got (%d, %q)", gotCmd, gotData)
	}
}

func TestParserDSRReportsCursorThroughOutputCallback(t *testing.T) {
	_, p := term(10, 2)
	var replies []string
	p.SetOutputCallback(func(b []byte) { replies = append(replies, string(b)) })

	p.ParseString("ab\x1b[6n")
	if len(replies) != 1 || replies[0] != "\x1b[1;3R" {
		t.Fatalf("DSR replies = %q, want [\\x1b[1;3R]", replies)
	}
}

func TestParserDAReportsThroughOutputCallback(t *testing.T) {
	_, p := term(10, 2)
	var reply string
	p.SetOutputCallback(func(b []byte) { reply = string(b) })

	p.ParseString("\x1b[c")
	if reply != "\x1b[?1;2c" {
		t.Fatalf("DA reply = %q", reply)
	}
}

func TestParserDECSCUSRCursorStyles(t *testing.T) {
	tests := []struct {
		seq  string
		want CursorStyle
	}{
		{"\x1b[2 q", CursorBlock},
		{"\x1b[4 q", CursorUnderline},
		{"\x1b[6 q", CursorBar},
	}
	for _, tt := range tests {
		s, p := term(10, 2)
		p.ParseString(tt.seq)
		if got := s.CursorStyleValue(); got != tt.want {
			t.Errorf("%q: cursor style = %v, want %v", tt.seq, got, tt.want)
		}
	}
}

func TestParserUnknownSequencesConsumedSilently(t *testing.T) {
	s, p := term(10, 2)
	var unknown []string
	p.SetUnknownCallback(func(seq string) { unknown = append(unknown, seq) })

	p.ParseString("\x1b[999zX")

	if got := s.Cell(0, 0).Rune; got != 'X' {
		t.Fatalf("cell (0,0) = %q, want 'X' after unknown sequence consumed", got)
	}
	if len(unknown) != 1 || !strings.Contains(unknown[0], "z") {
		t.Errorf("unknown hook got %v", unknown)
	}
}

func TestParserDrivesNotificationCallbacks(t *testing.T) {
	s, p := term(10, 3)
	damages, props := 0, 0
	var moved [][2]int
	s.SetDamageCallback(func(Rect) { damages++ })
	s.SetPropChangedCallback(func(Prop) { props++ })
	s.SetCursorMovedCallback(func(x, y int) { moved = append(moved, [2]int{x, y}) })

	p.ParseString("hi\x1b[2;2H\x1b]2;t\x07\x1b[?1000h")

	if damages != 2 {
		t.Errorf("damage fired %d times for two writes, want 2", damages)
	}
	if props != 2 {
		t.Errorf("prop-changed fired %d times (title + mouse mode), want 2", props)
	}
	if len(moved) == 0 || moved[len(moved)-1] != [2]int{1, 1} {
		t.Errorf("cursor-moved events = %v, want last (1,1)", moved)
	}
}
