package ui

import "github.com/dshills/ravel/internal/keycodec"

// Action is a keymap target: a command the dispatcher executes directly
// rather than forwarding to a proc.
type Action int

const (
	Quit Action = iota
	SelectNext
	SelectPrev
	SelectIndex
	KillProc
	StartProc
	RestartProc
	ActionFocusTerm
	ActionFocusProcs
	ScrollUp
	ScrollDown
)

// Bound pairs an Action with its numeric argument, used by SelectIndex
// (the index) and ScrollUp/ScrollDown (the line count).
type Bound struct {
	Action Action
	N      int
}

// Keymap is a finite function from KeyEvent to Action.
type Keymap map[keycodec.KeyEvent]Bound

// Lookup returns the bound action for ev, if any.
func (m Keymap) Lookup(ev keycodec.KeyEvent) (Bound, bool) {
	b, ok := m[ev]
	return b, ok
}

func key(code keycodec.Code, mods keycodec.Mods) keycodec.KeyEvent {
	return keycodec.KeyEvent{Code: code, Mods: mods}
}

func char(r rune) keycodec.KeyEvent {
	return keycodec.KeyEvent{Code: keycodec.Char, Rune: r}
}

// DefaultProcsKeymap is the keymap active when focus is Procs.
func DefaultProcsKeymap() Keymap {
	return Keymap{
		char('q'):              {Action: Quit},
		char('j'):              {Action: SelectNext},
		char('k'):              {Action: SelectPrev},
		key(keycodec.Down, 0):  {Action: SelectNext},
		key(keycodec.Up, 0):    {Action: SelectPrev},
		char('x'):              {Action: KillProc},
		char('s'):              {Action: StartProc},
		char('r'):              {Action: RestartProc},
		ctrlKey('a'):           {Action: ActionFocusTerm},
		key(keycodec.Enter, 0): {Action: ActionFocusTerm},
	}
}

// DefaultTermKeymap is the keymap active when focus is Term. Besides the
// focus-toggle combo it intercepts Ctrl-U/Ctrl-D for half-screen
// scrollback, leaving PageUp/PageDown and everything else to forward
// straight through to the selected proc (many full-screen programs, e.g.
// less or vim, bind those themselves).
func DefaultTermKeymap() Keymap {
	return Keymap{
		ctrlKey('a'): {Action: ActionFocusProcs},
		ctrlKey('u'): {Action: ScrollUp, N: 0},
		ctrlKey('d'): {Action: ScrollDown, N: 0},
	}
}

func ctrlKey(r rune) keycodec.KeyEvent {
	return keycodec.KeyEvent{Code: keycodec.Char, Rune: r, Mods: keycodec.Ctrl}
}
