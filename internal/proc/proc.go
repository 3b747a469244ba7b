// Package proc implements the process supervisor: one Proc per declared
// process, owning either a PTY+VT100 pair (VtermKind) or a line-buffered
// pipe pair (SimpleKind), exposing a small state machine and an input API
// that is agnostic to which kind is live.
package proc

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/events"
	"github.com/dshills/ravel/internal/keycodec"
)

// State is a Proc's lifecycle state.
type State int

const (
	StateStopped State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "stopped"
	}
}

// minAliveForAutorestart is how long a proc must have run before its
// exit is eligible for autorestart; guards against restart storms on a
// command that fails instantly every time.
const minAliveForAutorestart = time.Second

// Proc supervises one declared process across restarts.
type Proc struct {
	ID   uuid.UUID
	Name string
	Decl config.ProcDecl

	mu         sync.Mutex
	state      State
	rows, cols int
	kind       Kind
	startedAt  time.Time
	exitCode   int

	onStateChange events.Subscribers[State]
	onRerender    events.Subscribers[struct{}]
}

// New constructs a Proc in StateStopped for decl. rows/cols seed the
// size a VtermKind will be spawned at.
func New(decl config.ProcDecl, rows, cols int) *Proc {
	return &Proc{
		ID:   uuid.New(),
		Name: decl.Name,
		Decl: decl,
		rows: rows,
		cols: cols,

		exitCode: -1,
	}
}

func (p *Proc) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// ExitCode returns the exit code of the last run while the proc is
// Stopped, or -1 if the proc has never run to completion, failed to
// spawn, or is not currently Stopped.
func (p *Proc) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != StateStopped {
		return -1
	}
	return p.exitCode
}

// OnStateChange registers a listener for Proc lifecycle transitions.
func (p *Proc) OnStateChange(fn func(State)) *events.Subscription {
	return p.onStateChange.Subscribe(fn)
}

// OnRerender registers a listener fired whenever this proc's visible
// output changes. The engine wires this to the render scheduler only for the
// currently selected proc.
func (p *Proc) OnRerender(fn func()) *events.Subscription {
	return p.onRerender.Subscribe(func(struct{}) { fn() })
}

func (p *Proc) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
	p.onStateChange.Emit(s)
}

// Start spawns the proc's kind (VtermKind if decl.TTY, else SimpleKind)
// if not already running.
func (p *Proc) Start() error {
	p.mu.Lock()
	if p.state != StateStopped {
		p.mu.Unlock()
		return nil
	}
	rows, cols := p.rows, p.cols
	decl := p.Decl
	p.mu.Unlock()

	rerender := func() { p.onRerender.Emit(struct{}{}) }
	onExit := func(code int) { p.handleExit(code) }

	var kind Kind
	var err error
	if decl.TTY {
		var vk *VtermKind
		vk, err = NewVtermKind(decl, rows, cols, rerender, onExit)
		kind = vk
	} else {
		var sk *SimpleKind
		sk, err = NewSimpleKind(decl, rerender, onExit)
		kind = sk
	}
	if err != nil {
		// SpawnFailed: proc transitions directly to Stopped with a
		// synthetic nonzero exit, not fatal to the engine.
		p.mu.Lock()
		p.exitCode = -1
		p.mu.Unlock()
		p.setState(StateStopped)
		return err
	}

	p.mu.Lock()
	p.kind = kind
	p.startedAt = time.Now()
	p.mu.Unlock()

	p.setState(StateRunning)
	return nil
}

func (p *Proc) handleExit(code int) {
	p.mu.Lock()
	p.exitCode = code
	started := p.startedAt
	// An exit while Stopping was asked for; only an exit out of Running
	// is unexpected and eligible for autorestart.
	unexpected := p.state == StateRunning
	autorestart := p.Decl.Autorestart && unexpected
	kind := p.kind
	p.kind = nil
	p.mu.Unlock()

	if kind != nil {
		kind.Close()
	}

	p.setState(StateStopped)

	if autorestart && time.Since(started) >= minAliveForAutorestart {
		_ = p.Start()
	}
}

// Stop asks the running kind to exit per its configured stop mode. A
// no-op if already Stopped or Stopping.
func (p *Proc) Stop() {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return
	}
	kind := p.kind
	decl := p.Decl
	p.mu.Unlock()

	p.setState(StateStopping)
	if kind != nil {
		kind.Stop(decl.Stop)
	}
}

// Stopped returns a channel closed once the proc reaches StateStopped.
// If already stopped, the returned channel is already closed.
func (p *Proc) Stopped() <-chan struct{} {
	ch := make(chan struct{})
	p.mu.Lock()
	if p.state == StateStopped {
		p.mu.Unlock()
		close(ch)
		return ch
	}
	p.mu.Unlock()

	var sub *events.Subscription
	sub = p.OnStateChange(func(s State) {
		if s == StateStopped {
			sub.Unsubscribe()
			close(ch)
		}
	})
	return ch
}

// Restart stops the proc (if running) and starts it again once stopped.
func (p *Proc) Restart() {
	if p.State() == StateStopped {
		_ = p.Start()
		return
	}
	done := p.Stopped()
	p.Stop()
	go func() {
		<-done
		_ = p.Start()
	}()
}

// Kill forces immediate termination, bypassing the configured stop mode.
func (p *Proc) Kill() {
	p.mu.Lock()
	kind := p.kind
	p.mu.Unlock()
	if kind != nil {
		kind.Kill()
	}
}

// Resize updates the cached size and, if the live kind is a VtermKind,
// propagates it. SimpleKind ignores resize.
func (p *Proc) Resize(rows, cols int) {
	p.mu.Lock()
	p.rows, p.cols = rows, cols
	kind := p.kind
	p.mu.Unlock()
	if kind != nil {
		kind.Resize(rows, cols)
	}
}

// SendInput forwards a decoded key event to keycodec encoding and then to the
// live kind's transport. Discarded if Stopped.
func (p *Proc) SendInput(ev keycodec.KeyEvent) {
	p.mu.Lock()
	kind := p.kind
	p.mu.Unlock()
	if kind != nil {
		kind.SendInput(ev)
	}
}

// SendMouse forwards a decoded mouse event. Only VtermKind can consume
// mouse reports; SimpleKind targets ignore it.
func (p *Proc) SendMouse(ev keycodec.MouseEvent) {
	p.mu.Lock()
	kind := p.kind
	p.mu.Unlock()
	if vk, ok := kind.(*VtermKind); ok {
		vk.SendMouse(ev)
	}
}

// VtermKind returns the live kind as *VtermKind, or nil if the proc is
// Stopped or running as SimpleKind.
func (p *Proc) VtermKind() *VtermKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	vk, _ := p.kind.(*VtermKind)
	return vk
}

// SimpleKind returns the live kind as *SimpleKind, or nil otherwise.
func (p *Proc) SimpleKind() *SimpleKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	sk, _ := p.kind.(*SimpleKind)
	return sk
}

// WorkingDirectory returns the last directory the live VtermKind
// reported via OSC 7, or "" if the proc has no live VtermKind.
func (p *Proc) WorkingDirectory() string {
	if vk := p.VtermKind(); vk != nil {
		return vk.WorkingDirectory()
	}
	return ""
}
