// Package engine is the lifecycle owner: it holds the fixed array
// of declared Procs plus any remotely-added ones, orchestrates
// start-all/stop-all/resize-all, and wires each Proc's rerender signal
// to the render scheduler only when that Proc is currently selected.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/keycodec"
	"github.com/dshills/ravel/internal/logging"
	"github.com/dshills/ravel/internal/proc"
	"github.com/dshills/ravel/internal/render"
	"github.com/dshills/ravel/internal/ui"
)

// Engine owns the process array and the pieces of UI state that decide
// what gets rendered: the render Scheduler, the selection/focus State,
// and the input Dispatcher built over it.
type Engine struct {
	mu    sync.RWMutex
	procs []*proc.Proc

	State      *ui.State
	Scheduler  *render.Scheduler
	Dispatcher *ui.Dispatcher

	log *logging.Logger

	quitCh   chan struct{}
	quitOnce sync.Once
}

// New constructs an Engine over decls, building one Proc per decl (none
// is spawned yet) at the given initial terminal size. An initial render is
// scheduled immediately so the UI sizing is known before Start spawns
// any PTY-backed proc.
func New(decls []config.ProcDecl, rows, cols int, log *logging.Logger) *Engine {
	if log == nil {
		log = logging.New(logging.Info, nil)
	}
	e := &Engine{
		log:       log.WithComponent("engine"),
		Scheduler: &render.Scheduler{},
		quitCh:    make(chan struct{}),
	}

	e.procs = make([]*proc.Proc, 0, len(decls))
	for _, decl := range decls {
		e.addProcLocked(decl, rows, cols)
	}

	e.State = ui.NewState(len(e.procs))
	e.State.SetTermSize(rows, cols)

	e.Dispatcher = &ui.Dispatcher{
		State:          e.State,
		ProcsKeymap:    ui.DefaultProcsKeymap(),
		TermKeymap:     ui.DefaultTermKeymap(),
		HasCurrentProc: func() bool { return e.CurrentProc() != nil },
		ForwardKey:     func(ev keycodec.KeyEvent) { e.SendInput(ev) },
		Execute:        e.execute,
	}

	e.Scheduler.Schedule()
	return e
}

// addProcLocked constructs a Proc for decl and wires its rerender
// listener: the listener resolves the current selection at fire time
// rather than at subscribe time, so it stays correct across selection
// changes and RemoveProc index shifts without being resubscribed.
func (e *Engine) addProcLocked(decl config.ProcDecl, rows, cols int) *proc.Proc {
	p := proc.New(decl, rows, cols)
	p.OnRerender(func() {
		if e.State != nil && e.CurrentProc() == p {
			e.Scheduler.Schedule()
		}
	})
	p.OnStateChange(func(proc.State) { e.Scheduler.Schedule() })
	e.procs = append(e.procs, p)
	return p
}

// Start spawns every proc declared with Autostart. The proc array itself
// is already fixed by New; Start only flips autostart procs to Running.
func (e *Engine) Start() {
	e.mu.RLock()
	procs := append([]*proc.Proc(nil), e.procs...)
	e.mu.RUnlock()

	for _, p := range procs {
		if p.Decl.Autostart {
			if err := p.Start(); err != nil {
				e.log.Warn("spawn failed: %s: %v", p.Name, err)
			}
		}
	}
}

// Procs returns a snapshot of the current proc list, declared plus any
// remotely added.
func (e *Engine) Procs() []*proc.Proc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]*proc.Proc(nil), e.procs...)
}

// CurrentProc returns the proc at the UI's selected index, or nil if the
// proc list is empty.
func (e *Engine) CurrentProc() *proc.Proc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx := e.State.Selected()
	if idx < 0 || idx >= len(e.procs) {
		return nil
	}
	return e.procs[idx]
}

// ProcByID looks up a proc by its instance id, for the remote-control
// start-proc/term-proc/kill-proc/restart-proc/force-restart-proc commands
// when they address a proc by id rather than by current selection.
func (e *Engine) ProcByID(id uuid.UUID) *proc.Proc {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, p := range e.procs {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// SendInput forwards ev to the currently selected proc, if any.
func (e *Engine) SendInput(ev keycodec.KeyEvent) {
	if p := e.CurrentProc(); p != nil {
		p.SendInput(ev)
	}
}

// SendMouse forwards ev to the currently selected proc, if any.
func (e *Engine) SendMouse(ev keycodec.MouseEvent) {
	if p := e.CurrentProc(); p != nil {
		p.SendMouse(ev)
	}
}

// Resize caches size in UI state and fans it out to every proc;
// Proc.Resize no-ops for SimpleKind procs.
func (e *Engine) Resize(rows, cols int) {
	e.State.SetTermSize(rows, cols)
	for _, p := range e.Procs() {
		p.Resize(rows, cols)
	}
	e.Scheduler.Schedule()
}

// AddProc appends a remotely-declared proc for the add-proc remote
// command and starts it immediately, returning its instance id. The
// declared set stays immutable; remote additions live alongside it.
func (e *Engine) AddProc(decl config.ProcDecl) uuid.UUID {
	rows, cols := e.State.TermSize()

	e.mu.Lock()
	p := e.addProcLocked(decl, rows, cols)
	n := len(e.procs)
	e.mu.Unlock()

	e.State.SetCount(n)
	if err := p.Start(); err != nil {
		e.log.Warn("spawn failed: %s: %v", p.Name, err)
	}
	e.Scheduler.Schedule()
	return p.ID
}

// RemoveProc stops and drops the proc with the given id. Returns false if
// no such proc exists.
func (e *Engine) RemoveProc(id uuid.UUID) bool {
	e.mu.Lock()
	idx := -1
	for i, p := range e.procs {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		e.mu.Unlock()
		return false
	}
	p := e.procs[idx]
	e.procs = append(e.procs[:idx], e.procs[idx+1:]...)
	n := len(e.procs)
	e.mu.Unlock()

	p.Stop()
	e.State.SetCount(n)
	e.Scheduler.Schedule()
	return true
}

// RenameProc renames the currently selected proc, for the rename-proc
// remote command. Renaming does not affect the live kind.
func (e *Engine) RenameProc(name string) {
	if p := e.CurrentProc(); p != nil {
		p.Name = name
		e.Scheduler.Schedule()
	}
}

// Quit stops every proc in parallel, waits for them all to reach
// Stopped, then resolves Done. Errors during individual stops do not
// prevent completion; Stop itself cannot fail (it only transitions
// state and signals the kind).
func (e *Engine) Quit(ctx context.Context) {
	e.quit(ctx, false)
}

// ForceQuit kills every proc immediately rather than asking nicely, for
// the remote-control force-quit command, then resolves Done exactly as
// Quit does.
func (e *Engine) ForceQuit(ctx context.Context) {
	e.quit(ctx, true)
}

func (e *Engine) quit(ctx context.Context, hard bool) {
	e.quitOnce.Do(func() {
		procs := e.Procs()
		var wg sync.WaitGroup
		wg.Add(len(procs))
		for _, p := range procs {
			p := p
			go func() {
				defer wg.Done()
				if hard {
					p.Kill()
				} else {
					p.Stop()
				}
				select {
				case <-p.Stopped():
				case <-ctx.Done():
				}
			}()
		}
		wg.Wait()
		close(e.quitCh)
	})
}

// Done returns a channel closed once Quit or ForceQuit has completed.
func (e *Engine) Done() <-chan struct{} { return e.quitCh }

func (e *Engine) String() string {
	return fmt.Sprintf("engine{procs=%d}", len(e.Procs()))
}
