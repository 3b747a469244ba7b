// Package vterm implements an in-memory VT100/xterm-compatible terminal
// emulator: a byte-stream Parser driving a Screen that holds the cell
// grid, cursor, and scrollback.
//
// The package is organized around two types:
//
//   - Parser: consumes raw PTY output and interprets CSI/SGR/OSC/DECSET
//     sequences, a superset of VT100 sufficient for shells, editors and
//     pagers
//   - Screen: the cell-based grid the parser mutates, plus cursor state,
//     terminal properties (title, alt-screen, mouse mode, cursor style)
//     and a bounded Scrollback ring
//
// # Usage
//
//	screen := vterm.NewScreen(cols, rows)
//	parser := vterm.NewParser(screen)
//	parser.SetOutputCallback(func(b []byte) { pty.Write(b) })
//	parser.Parse(ptyOutput)
//
//	cell := screen.Cell(x, y)
//
// # Notifications
//
// Screen surfaces every committed mutation through registrable hooks:
// SetDamageCallback (changed regions, clipped to the grid),
// SetCursorMovedCallback, SetRectMovedCallback (scrolls, as dest/src
// rects) and SetPropChangedCallback (title, icon name, alt-screen,
// cursor shape/visibility, mouse mode, bracketed paste). Callbacks run
// with the screen lock held and must not call back into the Screen.
//
// # Scrollback
//
// Screen never grows a history buffer itself: it calls back through
// SetScrollbackPushCallback/SetScrollbackPopCallback as lines are
// evicted from or reclaimed into the main screen, leaving ownership of
// the ring (and its capacity) to the caller — see Scrollback.
//
// # Thread Safety
//
// Screen is safe for concurrent use; Parser is not meant to be driven
// from more than one goroutine at a time (the proc package's read loop
// is its only writer).
package vterm
