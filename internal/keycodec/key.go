// Package keycodec maps abstract key and mouse events to the byte
// sequences a terminal child expects, and parses raw host-terminal input
// bytes back into abstract events.
package keycodec

import "fmt"

// Code identifies the kind of key a KeyEvent carries.
type Code int

const (
	Char Code = iota
	Backspace
	Enter
	Tab
	BackTab
	Escape
	Delete
	Insert
	Home
	End
	PageUp
	PageDown
	Up
	Down
	Left
	Right
	F // function key, N holds the number
	Null
)

// Mods is a bitmask over {Ctrl, Shift, Alt}.
type Mods uint8

const (
	Ctrl Mods = 1 << iota
	Shift
	Alt
)

func (m Mods) Has(f Mods) bool { return m&f != 0 }

// KeyEvent is the abstract model of a single keypress.
type KeyEvent struct {
	Code Code
	Rune rune // valid when Code == Char
	N    int  // function key number when Code == F
	Mods Mods
}

func (k KeyEvent) String() string {
	name := k.Code.String()
	if k.Code == Char {
		name = fmt.Sprintf("Char(%q)", k.Rune)
	} else if k.Code == F {
		name = fmt.Sprintf("F%d", k.N)
	}
	mods := ""
	if k.Mods.Has(Ctrl) {
		mods += "C-"
	}
	if k.Mods.Has(Alt) {
		mods += "M-"
	}
	if k.Mods.Has(Shift) {
		mods += "S-"
	}
	return mods + name
}

func (c Code) String() string {
	switch c {
	case Char:
		return "Char"
	case Backspace:
		return "Backspace"
	case Enter:
		return "Enter"
	case Tab:
		return "Tab"
	case BackTab:
		return "BackTab"
	case Escape:
		return "Escape"
	case Delete:
		return "Delete"
	case Insert:
		return "Insert"
	case Home:
		return "Home"
	case End:
		return "End"
	case PageUp:
		return "PageUp"
	case PageDown:
		return "PageDown"
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	case F:
		return "F"
	case Null:
		return "Null"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// MouseButton identifies which button a MouseEvent reports.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseNone
)

// MouseEventKind distinguishes press/release/drag for MouseEvent.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseDrag
)

// MouseEvent is the abstract model of a mouse report.
type MouseEvent struct {
	Kind   MouseEventKind
	Button MouseButton
	Col    int // 0-based
	Row    int // 0-based
	Mods   Mods
}

// ResizeEvent reports a change in the host terminal's dimensions.
type ResizeEvent struct {
	Rows int
	Cols int
}
