// Package ui holds the UI state machine and input dispatcher: focus,
// proc selection, the two keymaps, and the logic that routes a decoded
// key either to an Action or through to the focused proc.
package ui

import "sync"

// Focus identifies which pane receives keys that are not bound in the
// active keymap.
type Focus int

const (
	FocusProcs Focus = iota
	FocusTerm
)

func (f Focus) String() string {
	if f == FocusTerm {
		return "term"
	}
	return "procs"
}

// State holds the UI's own data: which pane has focus, which proc is
// selected, and the last-known terminal size.
type State struct {
	mu sync.RWMutex

	focus    Focus
	selected int
	count    int // number of procs, for selection wraparound

	rows, cols int
}

// NewState constructs State with n procs selectable, starting on proc 0
// with Procs focus.
func NewState(n int) *State {
	return &State{count: n}
}

func (s *State) Focus() Focus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.focus
}

func (s *State) SetFocus(f Focus) {
	s.mu.Lock()
	s.focus = f
	s.mu.Unlock()
}

func (s *State) ToggleFocus() {
	s.mu.Lock()
	if s.focus == FocusProcs {
		s.focus = FocusTerm
	} else {
		s.focus = FocusProcs
	}
	s.mu.Unlock()
}

func (s *State) Selected() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectNext advances the selection, wrapping from N-1 to 0.
func (s *State) SelectNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return
	}
	s.selected = (s.selected + 1) % s.count
}

// SelectPrev retreats the selection, wrapping from 0 to N-1.
func (s *State) SelectPrev() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.count == 0 {
		return
	}
	s.selected = (s.selected - 1 + s.count) % s.count
}

// SelectIndex jumps directly to i if it is in range.
func (s *State) SelectIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i >= 0 && i < s.count {
		s.selected = i
	}
}

// SetCount updates the number of selectable procs, clamping the current
// selection if it fell out of range (e.g. after remove-proc).
func (s *State) SetCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count = n
	if s.selected >= n && n > 0 {
		s.selected = n - 1
	}
	if n == 0 {
		s.selected = 0
	}
}

// TermSize returns the last cached terminal size.
func (s *State) TermSize() (rows, cols int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows, s.cols
}

// SetTermSize caches the terminal size from the most recent resize.
func (s *State) SetTermSize(rows, cols int) {
	s.mu.Lock()
	s.rows, s.cols = rows, cols
	s.mu.Unlock()
}
