// Package paint is the painter glue: it owns the tcell-backed host
// terminal, lays out the process list pane, the main output pane and the
// help row, and blits a proc's VTerm grid (or a SimpleKind's line deque)
// into the frame once per scheduled render.
package paint

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/ravel/internal/keycodec"
)

// Backend owns the host terminal: raw mode, alternate screen and mouse
// reporting are entered on Init and unconditionally restored on
// Shutdown, whichever path the process exits through.
type Backend struct {
	screen tcell.Screen
}

// NewBackend allocates a tcell screen without touching the terminal yet.
func NewBackend() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Backend{screen: screen}, nil
}

// newBackendWithScreen wraps an already-constructed tcell.Screen, for
// tests driving a tcell.SimulationScreen instead of a real terminal.
func newBackendWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

// Init enters raw mode, the alternate screen and mouse reporting.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.EnableMouse()
	b.screen.EnablePaste()
	b.screen.HideCursor()
	return nil
}

// Shutdown restores the host terminal. Safe to call more than once.
func (b *Backend) Shutdown() {
	b.screen.Fini()
}

// Size returns the current host terminal size as (rows, cols).
func (b *Backend) Size() (rows, cols int) {
	cols, rows = b.screen.Size()
	return rows, cols
}

// HasTrueColor reports whether the host terminal negotiated more than a
// 256-color palette.
func (b *Backend) HasTrueColor() bool { return b.screen.Colors() > 256 }

// Clear blanks the frame buffer; callers must Show to flush it.
func (b *Backend) Clear() { b.screen.Clear() }

// Show flushes the frame buffer to the terminal.
func (b *Backend) Show() { b.screen.Show() }

// SetCell writes a single styled rune at (col, row).
func (b *Backend) SetCell(col, row int, r rune, style tcell.Style) {
	b.screen.SetContent(col, row, r, nil, style)
}

// HideCursor and ShowCursorAt mirror the VTerm's own cursor visibility
// and position onto the host terminal so only the selected proc's
// cursor, if visible, is ever drawn.
func (b *Backend) HideCursor() { b.screen.HideCursor() }

func (b *Backend) ShowCursorAt(col, row int) { b.screen.ShowCursor(col, row) }

// Event is the decoded form of one host-terminal input: exactly one of
// Key, Mouse or Resize is populated per Kind.
type Event struct {
	Kind   EventKind
	Key    keycodec.KeyEvent
	Mouse  keycodec.MouseEvent
	Resize keycodec.ResizeEvent
}

type EventKind int

const (
	EventNone EventKind = iota
	EventKeyPress
	EventMousePress
	EventResize
)

// PollEvent blocks for the next host-terminal event and decodes it.
func (b *Backend) PollEvent() Event {
	for {
		ev := b.screen.PollEvent()
		switch e := ev.(type) {
		case *tcell.EventKey:
			if k, ok := translateKey(e); ok {
				return Event{Kind: EventKeyPress, Key: k}
			}
		case *tcell.EventMouse:
			if m, ok := translateMouse(e); ok {
				return Event{Kind: EventMousePress, Mouse: m}
			}
		case *tcell.EventResize:
			cols, rows := e.Size()
			return Event{Kind: EventResize, Resize: keycodec.ResizeEvent{Rows: rows, Cols: cols}}
		case *tcell.EventInterrupt:
			return Event{Kind: EventNone}
		case nil:
			return Event{Kind: EventNone}
		}
	}
}

// PostInterrupt wakes a blocked PollEvent, used to unstick the event loop
// on quit.
func (b *Backend) PostInterrupt() {
	_ = b.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

var namedKeys = map[tcell.Key]keycodec.Code{
	tcell.KeyBackspace2: keycodec.Backspace,
	tcell.KeyBackspace:  keycodec.Backspace,
	tcell.KeyEnter:      keycodec.Enter,
	tcell.KeyTab:        keycodec.Tab,
	tcell.KeyBacktab:    keycodec.BackTab,
	tcell.KeyEscape:     keycodec.Escape,
	tcell.KeyDelete:     keycodec.Delete,
	tcell.KeyInsert:     keycodec.Insert,
	tcell.KeyHome:       keycodec.Home,
	tcell.KeyEnd:        keycodec.End,
	tcell.KeyPgUp:       keycodec.PageUp,
	tcell.KeyPgDn:       keycodec.PageDown,
	tcell.KeyUp:         keycodec.Up,
	tcell.KeyDown:       keycodec.Down,
	tcell.KeyLeft:       keycodec.Left,
	tcell.KeyRight:      keycodec.Right,
}

var fnKeys = map[tcell.Key]int{
	tcell.KeyF1: 1, tcell.KeyF2: 2, tcell.KeyF3: 3, tcell.KeyF4: 4,
	tcell.KeyF5: 5, tcell.KeyF6: 6, tcell.KeyF7: 7, tcell.KeyF8: 8,
	tcell.KeyF9: 9, tcell.KeyF10: 10, tcell.KeyF11: 11, tcell.KeyF12: 12,
}

// ctrlLetters maps tcell's Ctrl-<letter> keys (which it reports as
// distinct Key values rather than Rune + ModCtrl) back to the letter, so
// the abstract KeyEvent model keeps a single Char+Ctrl representation.
var ctrlLetters = map[tcell.Key]rune{
	tcell.KeyCtrlA: 'a', tcell.KeyCtrlB: 'b', tcell.KeyCtrlC: 'c', tcell.KeyCtrlD: 'd',
	tcell.KeyCtrlE: 'e', tcell.KeyCtrlF: 'f', tcell.KeyCtrlG: 'g', tcell.KeyCtrlH: 'h',
	tcell.KeyCtrlJ: 'j', tcell.KeyCtrlK: 'k', tcell.KeyCtrlL: 'l', tcell.KeyCtrlN: 'n',
	tcell.KeyCtrlO: 'o', tcell.KeyCtrlP: 'p', tcell.KeyCtrlQ: 'q', tcell.KeyCtrlR: 'r',
	tcell.KeyCtrlS: 's', tcell.KeyCtrlT: 't', tcell.KeyCtrlU: 'u', tcell.KeyCtrlV: 'v',
	tcell.KeyCtrlW: 'w', tcell.KeyCtrlX: 'x', tcell.KeyCtrlY: 'y', tcell.KeyCtrlZ: 'z',
}

func translateKey(e *tcell.EventKey) (keycodec.KeyEvent, bool) {
	mods := translateMods(e.Modifiers())

	if r, ok := ctrlLetters[e.Key()]; ok {
		return keycodec.KeyEvent{Code: keycodec.Char, Rune: r, Mods: mods | keycodec.Ctrl}, true
	}
	if n, ok := fnKeys[e.Key()]; ok {
		return keycodec.KeyEvent{Code: keycodec.F, N: n, Mods: mods}, true
	}
	if code, ok := namedKeys[e.Key()]; ok {
		return keycodec.KeyEvent{Code: code, Mods: mods}, true
	}
	if e.Key() == tcell.KeyRune {
		return keycodec.KeyEvent{Code: keycodec.Char, Rune: e.Rune(), Mods: mods}, true
	}
	return keycodec.KeyEvent{}, false
}

func translateMods(m tcell.ModMask) keycodec.Mods {
	var mods keycodec.Mods
	if m&tcell.ModCtrl != 0 {
		mods |= keycodec.Ctrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= keycodec.Alt
	}
	if m&tcell.ModShift != 0 {
		mods |= keycodec.Shift
	}
	return mods
}

func translateMouse(e *tcell.EventMouse) (keycodec.MouseEvent, bool) {
	col, row := e.Position()
	mods := translateMods(e.Modifiers())
	buttons := e.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		return keycodec.MouseEvent{Kind: keycodec.MousePress, Button: keycodec.MouseWheelUp, Col: col, Row: row, Mods: mods}, true
	case buttons&tcell.WheelDown != 0:
		return keycodec.MouseEvent{Kind: keycodec.MousePress, Button: keycodec.MouseWheelDown, Col: col, Row: row, Mods: mods}, true
	case buttons&tcell.Button1 != 0:
		return keycodec.MouseEvent{Kind: keycodec.MousePress, Button: keycodec.MouseLeft, Col: col, Row: row, Mods: mods}, true
	case buttons&tcell.Button2 != 0:
		return keycodec.MouseEvent{Kind: keycodec.MousePress, Button: keycodec.MouseMiddle, Col: col, Row: row, Mods: mods}, true
	case buttons&tcell.Button3 != 0:
		return keycodec.MouseEvent{Kind: keycodec.MousePress, Button: keycodec.MouseRight, Col: col, Row: row, Mods: mods}, true
	case buttons == tcell.ButtonNone:
		return keycodec.MouseEvent{Kind: keycodec.MouseRelease, Button: keycodec.MouseNone, Col: col, Row: row, Mods: mods}, true
	default:
		return keycodec.MouseEvent{Kind: keycodec.MouseDrag, Button: keycodec.MouseNone, Col: col, Row: row, Mods: mods}, true
	}
}
