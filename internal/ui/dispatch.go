package ui

import "github.com/dshills/ravel/internal/keycodec"

// Dispatcher routes decoded input to either an Action or through to the
// currently focused proc, per the active keymap.
type Dispatcher struct {
	State       *State
	ProcsKeymap Keymap
	TermKeymap  Keymap

	// HasCurrentProc reports whether a proc is selected at all (false for
	// an empty proc list).
	HasCurrentProc func() bool

	// ForwardKey sends ev to the currently selected proc's input.
	ForwardKey func(ev keycodec.KeyEvent)

	// Execute runs a resolved Action/Bound pair against the engine.
	Execute func(Bound)
}

// Dispatch handles one decoded key event.
func (d *Dispatcher) Dispatch(ev keycodec.KeyEvent) {
	active := d.ProcsKeymap
	if d.State.Focus() == FocusTerm {
		active = d.TermKeymap
	}

	if b, ok := active.Lookup(ev); ok {
		d.Execute(b)
		return
	}

	if d.State.Focus() == FocusTerm && d.HasCurrentProc != nil && d.HasCurrentProc() {
		if d.ForwardKey != nil {
			d.ForwardKey(ev)
		}
		return
	}
	// No binding, no forward target: drop.
}

// ResizeHandler is invoked for host-terminal resize events, which route
// directly to the engine rather than through the keymap.
type ResizeHandler func(rows, cols int)
