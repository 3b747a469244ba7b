package vterm

// SetScrollbackPushCallback registers the callback invoked with a copy of
// each line evicted from the top of the main screen during a scroll-up.
func (s *Screen) SetScrollbackPushCallback(fn func(*Line)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sbPush = fn
}

// SetScrollbackPopCallback registers the callback consulted for a line to
// reclaim when the main screen scrolls down. A nil return means none
// available and a blank line is used instead.
func (s *Screen) SetScrollbackPopCallback(fn func() *Line) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sbPop = fn
}

// SetDamageCallback registers the callback invoked with each changed
// region after the mutation that changed it has committed. Rects are
// clipped to the grid. The callback runs with the screen lock held and
// must not call back into the Screen.
func (s *Screen) SetDamageCallback(fn func(Rect)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDamage = fn
}

// SetCursorMovedCallback registers the callback invoked with the new
// cursor position whenever it changes. Same reentrancy rule as
// SetDamageCallback.
func (s *Screen) SetCursorMovedCallback(fn func(x, y int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCursorMoved = fn
}

// SetRectMovedCallback registers the callback invoked when a region's
// content moves wholesale (scrolling): dest is where the content now
// lives, src is where it came from. Same reentrancy rule as
// SetDamageCallback.
func (s *Screen) SetRectMovedCallback(fn func(dest, src Rect)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRectMoved = fn
}

// SetPropChangedCallback registers the callback invoked when a terminal
// property (title, icon name, alt-screen, cursor shape/visibility,
// mouse-reporting mode, bracketed paste) changes value. Same reentrancy
// rule as SetDamageCallback.
func (s *Screen) SetPropChangedCallback(fn func(Prop)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPropChanged = fn
}

// EnterAltScreen switches to the alternate screen buffer, saving the main
// buffer's contents and cursor position. A no-op if already active.
func (s *Screen) EnterAltScreen() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.altScreen {
		return
	}

	oldX, oldY := s.cursorX, s.cursorY
	s.altScreen = true
	s.mainCursorX, s.mainCursorY = s.cursorX, s.cursorY

	if s.altLines == nil {
		s.altLines = make([]*Line, s.height)
		for y := range s.altLines {
			s.altLines[y] = NewLine(s.width)
		}
	}

	s.lines, s.altLines = s.altLines, s.lines
	s.cursorX, s.cursorY = 0, 0

	s.propChangedLocked(PropAltScreen)
	s.damageLocked(0, 0, s.height, s.width)
	s.cursorMovedLocked(oldX, oldY)
}

// ExitAltScreen restores the main screen buffer and its saved cursor
// position. A no-op if the alternate screen is not active.
func (s *Screen) ExitAltScreen() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.altScreen {
		return
	}

	oldX, oldY := s.cursorX, s.cursorY
	s.altScreen = false
	s.altLines, s.lines = s.lines, s.altLines
	s.cursorX, s.cursorY = s.mainCursorX, s.mainCursorY

	s.propChangedLocked(PropAltScreen)
	s.damageLocked(0, 0, s.height, s.width)
	s.cursorMovedLocked(oldX, oldY)
}

// AltScreenActive reports whether the alternate screen buffer is live.
func (s *Screen) AltScreenActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.altScreen
}

// SetMouseMode sets the negotiated mouse-reporting protocol.
func (s *Screen) SetMouseMode(mode MouseMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mouseMode == mode {
		return
	}
	s.mouseMode = mode
	s.propChangedLocked(PropMouseMode)
}

// MouseModeValue returns the negotiated mouse-reporting protocol.
func (s *Screen) MouseModeValue() MouseMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mouseMode
}

// SetSGRMouse enables or disables SGR (1006) mouse coordinate encoding.
func (s *Screen) SetSGRMouse(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sgrMouse == enabled {
		return
	}
	s.sgrMouse = enabled
	s.propChangedLocked(PropMouseMode)
}

// SGRMouseEnabled reports whether SGR mouse encoding is active.
func (s *Screen) SGRMouseEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sgrMouse
}

// SetBracketedPaste enables or disables bracketed paste mode.
func (s *Screen) SetBracketedPaste(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bracketedPaste == enabled {
		return
	}
	s.bracketedPaste = enabled
	s.propChangedLocked(PropBracketedPaste)
}

// BracketedPasteEnabled reports whether bracketed paste mode is active.
func (s *Screen) BracketedPasteEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bracketedPaste
}

// SetTitle sets the window title property (OSC 0/2).
func (s *Screen) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.title == title {
		return
	}
	s.title = title
	s.propChangedLocked(PropTitle)
}

// Title returns the window title property.
func (s *Screen) Title() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.title
}

// SetIconName sets the icon name property (OSC 0/1).
func (s *Screen) SetIconName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.iconName == name {
		return
	}
	s.iconName = name
	s.propChangedLocked(PropIconName)
}

// IconName returns the icon name property.
func (s *Screen) IconName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.iconName
}

// CursorStyleValue returns the current cursor style.
func (s *Screen) CursorStyleValue() CursorStyle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursorStyle
}
