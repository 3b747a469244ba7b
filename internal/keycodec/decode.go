package keycodec

import "unicode/utf8"

// Decode consumes a prefix of data and returns the event it represents
// (KeyEvent or MouseEvent) along with the number of bytes consumed. It
// returns ok=false if data is empty or starts an escape sequence that is
// not yet complete (the caller should wait for more bytes).
func Decode(data []byte) (event any, n int, ok bool) {
	if len(data) == 0 {
		return nil, 0, false
	}

	b := data[0]

	switch {
	case b == 0x1b:
		return decodeEscape(data)
	case b == '\r':
		return KeyEvent{Code: Enter}, 1, true
	case b == '\t':
		return KeyEvent{Code: Tab}, 1, true
	case b == 0x7f:
		return KeyEvent{Code: Backspace}, 1, true
	case b == 0:
		return KeyEvent{Code: Null}, 1, true
	case b < 0x20:
		return KeyEvent{Code: Char, Rune: rune(b | 0x40), Mods: Ctrl}, 1, true
	default:
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			if len(data) < 4 {
				return nil, 0, false // might be a truncated multi-byte rune
			}
			return KeyEvent{Code: Char, Rune: rune(b)}, 1, true
		}
		return KeyEvent{Code: Char, Rune: r}, size, true
	}
}

func decodeEscape(data []byte) (any, int, bool) {
	if len(data) < 2 {
		return nil, 0, false
	}

	switch data[1] {
	case '[':
		return decodeCSI(data)
	case 'O':
		return decodeSS3(data)
	default:
		// Alt+char: ESC followed by a printable rune.
		ev, n, ok := Decode(data[1:])
		if !ok {
			return nil, 0, false
		}
		if k, isKey := ev.(KeyEvent); isKey {
			k.Mods |= Alt
			return k, n + 1, true
		}
		return KeyEvent{Code: Escape}, 1, true
	}
}

var ss3Final = map[byte]Code{'P': F, 'Q': F, 'R': F, 'S': F}
var ss3FNum = map[byte]int{'P': 1, 'Q': 2, 'R': 3, 'S': 4}

func decodeSS3(data []byte) (any, int, bool) {
	if len(data) < 3 {
		return nil, 0, false
	}
	if _, ok := ss3Final[data[2]]; ok {
		return KeyEvent{Code: F, N: ss3FNum[data[2]]}, 3, true
	}
	return KeyEvent{Code: Escape}, 1, true
}

var csiFinalKey = map[byte]Code{
	'A': Up, 'B': Down, 'C': Right, 'D': Left,
	'H': Home, 'F': End, 'Z': BackTab,
}

// decodeCSI handles "ESC [ params final" and the SGR mouse variant
// "ESC [ < params M|m".
func decodeCSI(data []byte) (any, int, bool) {
	if len(data) < 3 {
		return nil, 0, false
	}

	if data[2] == '<' {
		return decodeSGRMouse(data)
	}

	i := 2
	for i < len(data) && (data[i] == ';' || (data[i] >= '0' && data[i] <= '9')) {
		i++
	}
	if i >= len(data) {
		return nil, 0, false // incomplete
	}

	final := data[i]
	params := parseParams(data[2:i])

	if final == '~' {
		n := firstParam(params, 0)
		mod := modsFromParam(secondParam(params, 1))
		if fn, ok := fNumFromTilde[n]; ok {
			return KeyEvent{Code: F, N: fn, Mods: mod}, i + 1, true
		}
		code := tildeCode(n)
		if code == -1 {
			return KeyEvent{Code: Escape}, 1, true
		}
		return KeyEvent{Code: Code(code), Mods: mod}, i + 1, true
	}

	if key, ok := csiFinalKey[final]; ok {
		mod := modsFromParam(secondParam(params, 1))
		return KeyEvent{Code: key, Mods: mod}, i + 1, true
	}

	return KeyEvent{Code: Escape}, 1, true
}

func decodeSGRMouse(data []byte) (any, int, bool) {
	i := 3
	for i < len(data) && data[i] != 'M' && data[i] != 'm' {
		i++
	}
	if i >= len(data) {
		return nil, 0, false
	}
	params := parseParams(data[3:i])
	if len(params) < 3 {
		return KeyEvent{Code: Escape}, 1, true
	}

	btn := params[0]
	col := params[1] - 1
	row := params[2] - 1
	kind := MousePress
	if data[i] == 'm' {
		kind = MouseRelease
	} else if btn&32 != 0 {
		kind = MouseDrag
	}

	mods := Mods(0)
	if btn&4 != 0 {
		mods |= Shift
	}
	if btn&8 != 0 {
		mods |= Alt
	}
	if btn&16 != 0 {
		mods |= Ctrl
	}

	button := mouseButtonFromCode(btn &^ (4 | 8 | 16 | 32))

	return MouseEvent{Kind: kind, Button: button, Col: col, Row: row, Mods: mods}, i + 1, true
}

func mouseButtonFromCode(code int) MouseButton {
	switch code {
	case 0:
		return MouseLeft
	case 1:
		return MouseMiddle
	case 2:
		return MouseRight
	case 3:
		return MouseNone
	case 64:
		return MouseWheelUp
	case 65:
		return MouseWheelDown
	default:
		return MouseNone
	}
}

var fNumFromTilde = map[int]int{15: 5, 17: 6, 18: 7, 19: 8, 20: 9, 21: 10, 23: 11, 24: 12}

func tildeCode(n int) int {
	switch n {
	case 2:
		return int(Insert)
	case 3:
		return int(Delete)
	case 5:
		return int(PageUp)
	case 6:
		return int(PageDown)
	default:
		return -1
	}
}

func modsFromParam(n int) Mods {
	if n <= 1 {
		return 0
	}
	v := n - 1
	var m Mods
	if v&1 != 0 {
		m |= Shift
	}
	if v&2 != 0 {
		m |= Alt
	}
	if v&4 != 0 {
		m |= Ctrl
	}
	return m
}

func parseParams(b []byte) []int {
	var params []int
	cur := 0
	has := false
	for _, c := range b {
		if c == ';' {
			params = append(params, cur)
			cur, has = 0, false
			continue
		}
		cur = cur*10 + int(c-'0')
		has = true
	}
	if has || len(params) == 0 {
		params = append(params, cur)
	}
	return params
}

func firstParam(p []int, def int) int {
	if len(p) == 0 {
		return def
	}
	return p[0]
}

func secondParam(p []int, def int) int {
	if len(p) < 2 {
		return def
	}
	return p[1]
}
