package engine

import (
	"context"
	"time"

	"github.com/dshills/ravel/internal/ui"
)

// quitTimeout bounds how long a soft Quit waits for every proc's stop
// escalation (a SIGINT stop escalates to SIGTERM after 5s and to SIGKILL
// after a further 5s, see internal/pty) before giving up and resolving
// Done anyway.
const quitTimeout = 15 * time.Second

// halfScreenScroll is the line count used for a bound ScrollUp/ScrollDown
// with N == 0, i.e. the keymap-bound half-screen scroll rather than an
// explicit remote-control line count.
func (e *Engine) halfScreenScroll() int {
	rows, _ := e.State.TermSize()
	n := rows / 2
	if n < 1 {
		n = 1
	}
	return n
}

// execute runs a resolved keymap Action against engine/UI state. It is
// wired as the Dispatcher's Execute callback in New.
func (e *Engine) execute(b ui.Bound) {
	switch b.Action {
	case ui.Quit:
		go e.requestQuit()
	case ui.SelectNext:
		e.State.SelectNext()
		e.Scheduler.Schedule()
	case ui.SelectPrev:
		e.State.SelectPrev()
		e.Scheduler.Schedule()
	case ui.SelectIndex:
		e.State.SelectIndex(b.N)
		e.Scheduler.Schedule()
	case ui.KillProc:
		if p := e.CurrentProc(); p != nil {
			p.Kill()
		}
	case ui.StartProc:
		if p := e.CurrentProc(); p != nil {
			if err := p.Start(); err != nil {
				e.log.Warn("spawn failed: %s: %v", p.Name, err)
			}
		}
	case ui.RestartProc:
		if p := e.CurrentProc(); p != nil {
			p.Restart()
		}
	case ui.ActionFocusTerm:
		e.State.SetFocus(ui.FocusTerm)
		e.Scheduler.Schedule()
	case ui.ActionFocusProcs:
		e.State.SetFocus(ui.FocusProcs)
		e.Scheduler.Schedule()
	case ui.ScrollUp:
		e.scroll(b.N, true)
	case ui.ScrollDown:
		e.scroll(b.N, false)
	}
}

func (e *Engine) scroll(n int, up bool) {
	p := e.CurrentProc()
	if p == nil {
		return
	}
	vk := p.VtermKind()
	if vk == nil {
		return
	}
	if n <= 0 {
		n = e.halfScreenScroll()
	}
	if up {
		vk.ScrollUp(n)
	} else {
		vk.ScrollDown(n)
	}
	e.Scheduler.Schedule()
}

// requestQuit runs the default (soft) quit sequence triggered by the 'q'
// keybinding, detached from the event-loop goroutine since it blocks
// until every proc reports Stopped.
func (e *Engine) requestQuit() {
	ctx, cancel := context.WithTimeout(context.Background(), quitTimeout)
	defer cancel()
	e.Quit(ctx)
}
