package keycodec

import (
	"fmt"
	"unicode"
)

// csiModifierParam returns the CSI modifier parameter xterm uses for
// named-key sequences: 1 + (Shift*1 + Alt*2 + Ctrl*4).
func csiModifierParam(m Mods) int {
	n := 0
	if m.Has(Shift) {
		n |= 1
	}
	if m.Has(Alt) {
		n |= 2
	}
	if m.Has(Ctrl) {
		n |= 4
	}
	return n + 1
}

var namedFinal = map[Code]byte{
	Up:    'A',
	Down:  'B',
	Right: 'C',
	Left:  'D',
	Home:  'H',
	End:   'F',
}

var namedTilde = map[Code]int{
	Insert:   2,
	Delete:   3,
	PageUp:   5,
	PageDown: 6,
}

// EncodeVterm produces the byte sequence a PTY-attached VT100 emulator
// expects for ev, per the canonical xterm encoding.
func EncodeVterm(ev KeyEvent) []byte {
	switch ev.Code {
	case Char:
		return encodeChar(ev.Rune, ev.Mods)
	case Enter:
		return []byte("\r")
	case Backspace:
		return []byte("\x7f")
	case Tab:
		if ev.Mods.Has(Shift) {
			return []byte("\x1b[Z")
		}
		return []byte("\t")
	case BackTab:
		return []byte("\x1b[Z")
	case Escape:
		return []byte("\x1b")
	case Null:
		return []byte{0}
	case F:
		return encodeFunctionKey(ev.N, ev.Mods)
	}

	if final, ok := namedFinal[ev.Code]; ok {
		mod := csiModifierParam(ev.Mods)
		if mod == 1 {
			return []byte(fmt.Sprintf("\x1b[%c", final))
		}
		return []byte(fmt.Sprintf("\x1b[1;%d%c", mod, final))
	}

	if n, ok := namedTilde[ev.Code]; ok {
		mod := csiModifierParam(ev.Mods)
		if mod == 1 {
			return []byte(fmt.Sprintf("\x1b[%d~", n))
		}
		return []byte(fmt.Sprintf("\x1b[%d;%d~", n, mod))
	}

	return nil
}

func encodeChar(r rune, m Mods) []byte {
	prefix := ""
	if m.Has(Alt) {
		prefix = "\x1b"
	}

	if m.Has(Ctrl) {
		upper := unicode.ToUpper(r)
		if upper >= 'A' && upper <= '_' {
			return append([]byte(prefix), byte(upper)&0x1f)
		}
		if r == '?' {
			return append([]byte(prefix), 0x7f)
		}
	}

	return append([]byte(prefix), []byte(string(r))...)
}

var fKeyFinal = map[int]string{
	1: "\x1bOP", 2: "\x1bOQ", 3: "\x1bOR", 4: "\x1bOS",
}

var fKeyTilde = map[int]int{
	5: 15, 6: 17, 7: 18, 8: 19, 9: 20, 10: 21, 11: 23, 12: 24,
}

func encodeFunctionKey(n int, m Mods) []byte {
	mod := csiModifierParam(m)
	if seq, ok := fKeyFinal[n]; ok && mod == 1 {
		return []byte(seq)
	}
	if seq, ok := fKeyFinal[n]; ok {
		// SS3 sequences don't carry modifier params; fall back to CSI form.
		final := seq[len(seq)-1]
		return []byte(fmt.Sprintf("\x1b[1;%d%c", mod, final))
	}
	if code, ok := fKeyTilde[n]; ok {
		if mod == 1 {
			return []byte(fmt.Sprintf("\x1b[%d~", code))
		}
		return []byte(fmt.Sprintf("\x1b[%d;%d~", code, mod))
	}
	return nil
}

// simpleAllowed is the restricted set of keys forwarded to a SimpleKind
// child: its stdin is a plain pipe with no terminal driver behind it to
// interpret escape sequences, so only literal bytes make sense.
var simpleAllowed = map[Code]bool{
	Char:      true,
	Enter:     true,
	Tab:       true,
	Backspace: true,
	Escape:    true,
}

// EncodeSimple produces the literal bytes written to a SimpleKind child's
// stdin pipe, or nil if ev has no meaning without a terminal driver on the
// other end.
func EncodeSimple(ev KeyEvent) []byte {
	if !simpleAllowed[ev.Code] {
		return nil
	}
	switch ev.Code {
	case Enter:
		return []byte("\n")
	case Tab:
		return []byte("\t")
	case Backspace:
		return []byte("\x7f")
	case Escape:
		return []byte("\x1b")
	default: // Char
		if ev.Mods.Has(Ctrl) {
			return encodeChar(ev.Rune, ev.Mods)
		}
		return []byte(string(ev.Rune))
	}
}

// EncodeMouse encodes a MouseEvent for the PTY, honoring the negotiated
// protocol: SGR (1006) when sgr is true, otherwise the legacy X10/VT200
// byte encoding. Coordinates are 0-based on input, 1-based on the wire.
func EncodeMouse(ev MouseEvent, sgr bool) []byte {
	btn := mouseButtonCode(ev.Button, ev.Mods)
	if ev.Kind == MouseDrag {
		btn |= 32
	}

	col, row := ev.Col+1, ev.Row+1

	if sgr {
		final := byte('M')
		if ev.Kind == MouseRelease {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", btn, col, row, final))
	}

	if ev.Kind == MouseRelease {
		btn = 3
	}
	// Legacy encoding caps coordinates at 223 (255 - 32).
	if col > 223 {
		col = 223
	}
	if row > 223 {
		row = 223
	}
	return []byte{0x1b, '[', 'M', byte(32 + btn), byte(32 + col), byte(32 + row)}
}

func mouseButtonCode(b MouseButton, m Mods) int {
	code := 0
	switch b {
	case MouseLeft:
		code = 0
	case MouseMiddle:
		code = 1
	case MouseRight:
		code = 2
	case MouseWheelUp:
		code = 64
	case MouseWheelDown:
		code = 65
	case MouseNone:
		code = 3
	}
	if m.Has(Shift) {
		code |= 4
	}
	if m.Has(Alt) {
		code |= 8
	}
	if m.Has(Ctrl) {
		code |= 16
	}
	return code
}
