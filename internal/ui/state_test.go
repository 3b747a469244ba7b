package ui

import (
	"testing"

	"github.com/dshills/ravel/internal/keycodec"
)

func TestSelectionWraps(t *testing.T) {
	s := NewState(3)

	s.SelectPrev()
	if got := s.Selected(); got != 2 {
		t.Errorf("SelectPrev from 0 expected 2, got %d", got)
	}

	s.SelectIndex(2)
	s.SelectNext()
	if got := s.Selected(); got != 0 {
		t.Errorf("SelectNext from N-1 expected 0, got %d", got)
	}
}

func TestToggleFocus(t *testing.T) {
	s := NewState(1)
	if s.Focus() != FocusProcs {
		t.Fatalf("expected initial focus Procs, got %v", s.Focus())
	}
	s.ToggleFocus()
	if s.Focus() != FocusTerm {
		t.Errorf("expected focus Term after toggle, got %v", s.Focus())
	}
}

func TestDispatchForwardsWhenUnbound(t *testing.T) {
	s := NewState(1)
	s.SetFocus(FocusTerm)

	var forwarded keycodec.KeyEvent
	d := &Dispatcher{
		State:          s,
		ProcsKeymap:    DefaultProcsKeymap(),
		TermKeymap:     DefaultTermKeymap(),
		HasCurrentProc: func() bool { return true },
		ForwardKey:     func(ev keycodec.KeyEvent) { forwarded = ev },
		Execute:        func(Bound) { t.Fatal("unbound key should not execute an action") },
	}

	d.Dispatch(keycodec.KeyEvent{Code: keycodec.Char, Rune: 'z'})

	if forwarded.Rune != 'z' {
		t.Errorf("expected forwarded key 'z', got %v", forwarded)
	}
}

func TestDispatchExecutesBoundAction(t *testing.T) {
	s := NewState(1)
	var executed Bound
	d := &Dispatcher{
		State:       s,
		ProcsKeymap: DefaultProcsKeymap(),
		TermKeymap:  DefaultTermKeymap(),
		Execute:     func(b Bound) { executed = b },
	}

	d.Dispatch(keycodec.KeyEvent{Code: keycodec.Char, Rune: 'q'})

	if executed.Action != Quit {
		t.Errorf("expected Quit action, got %v", executed.Action)
	}
}
