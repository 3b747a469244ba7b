package proc

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/keycodec"
	"github.com/dshills/ravel/internal/pty"
	"github.com/dshills/ravel/internal/vterm"
)

// maxScroll clamps a scroll offset into [0, max].
func maxScroll(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// VtermKind attaches a child to a PTY and drives a full VT100 emulator
// over its output, for programs (shells, editors, pagers) that expect a
// real terminal.
type VtermKind struct {
	handle *pty.Handle
	screen *vterm.Screen
	parser *vterm.Parser
	sb     *vterm.Scrollback

	onRerender func()
	onExit     func(code int)

	mu     sync.RWMutex
	cwd    string
	offset int // lines scrolled back from the live grid; 0 = live

	logFile *os.File

	closed atomic.Bool
}

// NewVtermKind spawns decl's program attached to a PTY of the given size
// and starts reading its output into a fresh VT100 emulator. onRerender
// fires from the emulator's notification callbacks — damage, cursor
// motion, scrolls and property changes — so a burst of mutations inside
// one read becomes a burst of schedules the render scheduler coalesces
// into a single frame. onExit is called exactly once, from the read
// loop, after the child has been reaped.
func NewVtermKind(decl config.ProcDecl, rows, cols int, onRerender func(), onExit func(code int)) (*VtermKind, error) {
	program, args := decl.Program()

	env := resolveEnv(decl.Env)
	if env == nil {
		env = os.Environ()
	}
	env = append(env, "TERM=xterm-256color")

	handle, err := pty.Spawn(pty.Config{
		Program: program,
		Args:    args,
		Env:     env,
		Dir:     decl.Cwd,
		Rows:    rows,
		Cols:    cols,
	})
	if err != nil {
		return nil, err
	}

	screen := vterm.NewScreen(cols, rows)
	parser := vterm.NewParser(screen)
	parser.SetOutputCallback(func(b []byte) {
		_, _ = handle.Write(b)
	})

	sb := vterm.NewScrollback(decl.ScrollbackLines)
	screen.SetScrollbackPushCallback(sb.Push)
	screen.SetScrollbackPopCallback(sb.Pop)

	k := &VtermKind{
		handle:     handle,
		screen:     screen,
		parser:     parser,
		sb:         sb,
		onRerender: onRerender,
		onExit:     onExit,
		cwd:        decl.Cwd,
	}

	if decl.LogDir != "" {
		if f, err := openProcLog(decl.LogDir, decl.Name); err == nil {
			k.logFile = f
		}
	}

	parser.SetOSCCallback(func(cmd int, data string) {
		if cmd == 7 {
			k.mu.Lock()
			k.cwd = data
			k.mu.Unlock()
			k.notifyRerender()
		}
	})

	// Rerender wiring mirrors the scrollback hooks above: every committed
	// mutation surfaces through the emulator's own callbacks rather than
	// a per-read proxy.
	screen.SetDamageCallback(func(vterm.Rect) { k.notifyRerender() })
	screen.SetRectMovedCallback(func(_, _ vterm.Rect) { k.notifyRerender() })
	screen.SetCursorMovedCallback(func(int, int) { k.notifyRerender() })
	screen.SetPropChangedCallback(func(vterm.Prop) { k.notifyRerender() })

	go k.readLoop()

	return k, nil
}

func (k *VtermKind) notifyRerender() {
	if k.onRerender != nil {
		k.onRerender()
	}
}

func (k *VtermKind) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := k.handle.Read(buf)
		if n > 0 {
			data := buf[:n]
			k.parser.Parse(data)
			if k.logFile != nil {
				_, _ = k.logFile.Write(data)
			}
		}
		if err != nil {
			break
		}
	}

	<-k.handle.Done()
	code := k.handle.ExitCode()
	if k.logFile != nil {
		k.logFile.Close()
	}
	if k.onExit != nil {
		k.onExit(code)
	}
}

// Screen exposes the live VT100 grid for the painter.
func (k *VtermKind) Screen() *vterm.Screen { return k.screen }

// ScrollUp moves the view n lines further into history, clamped to the
// scrollback depth available.
func (k *VtermKind) ScrollUp(n int) {
	k.mu.Lock()
	k.offset = maxScroll(k.offset+n, k.sb.Len())
	k.mu.Unlock()
}

// ScrollDown moves the view n lines back toward the live grid, clamped
// at 0 (fully live).
func (k *VtermKind) ScrollDown(n int) {
	k.mu.Lock()
	k.offset = maxScroll(k.offset-n, k.sb.Len())
	k.mu.Unlock()
}

// ScrollReset snaps the view back to the live grid. SendInput calls it
// so typing while scrolled back lands the user where the echo appears.
func (k *VtermKind) ScrollReset() {
	k.mu.Lock()
	k.offset = 0
	k.mu.Unlock()
}

// ViewOffset returns the current scroll depth: 0 means the live grid is
// shown as-is.
func (k *VtermKind) ViewOffset() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.offset
}

// ViewCell returns the cell at (col, row) of a view area height rows
// tall, composing scrollback history above the live grid according to
// the current scroll offset. row 0 is the top of the view.
func (k *VtermKind) ViewCell(col, row, height int) vterm.Cell {
	offset := k.ViewOffset()
	if offset == 0 {
		if row >= k.screen.Height() || col >= k.screen.Width() {
			return vterm.EmptyCell()
		}
		return k.screen.Cell(col, row)
	}

	sbLen := k.sb.Len()
	gridH := k.screen.Height()
	bottom := sbLen + gridH - offset
	virt := bottom - height + row
	if virt < 0 {
		return vterm.EmptyCell()
	}
	if virt < sbLen {
		line := k.sb.At(virt)
		if line == nil || col >= len(line.Cells) {
			return vterm.EmptyCell()
		}
		return line.Cells[col]
	}
	gridRow := virt - sbLen
	if gridRow >= gridH || col >= k.screen.Width() {
		return vterm.EmptyCell()
	}
	return k.screen.Cell(col, gridRow)
}

// WorkingDirectory returns the last working directory reported via OSC 7.
func (k *VtermKind) WorkingDirectory() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.cwd
}

func (k *VtermKind) SendInput(ev keycodec.KeyEvent) {
	if k.closed.Load() {
		return
	}
	seq := keycodec.EncodeVterm(ev)
	if len(seq) == 0 {
		return
	}
	k.ScrollReset()
	_, _ = k.handle.Write(seq)
}

// SendMouse forwards a decoded mouse event, encoded for whichever
// protocol the child most recently negotiated via DECSET.
func (k *VtermKind) SendMouse(ev keycodec.MouseEvent) {
	if k.closed.Load() {
		return
	}
	if k.screen.MouseModeValue() == vterm.MouseModeNone {
		return
	}
	seq := keycodec.EncodeMouse(ev, k.screen.SGRMouseEnabled())
	_, _ = k.handle.Write(seq)
}

func (k *VtermKind) Resize(rows, cols int) {
	if k.closed.Load() {
		return
	}
	_ = k.handle.Resize(rows, cols)
	k.screen.Resize(cols, rows)
}

func (k *VtermKind) Stop(stop config.Stop) {
	switch stop.Mode {
	case config.StopSIGINT:
		k.handle.Kill(pty.SoftInterrupt)
	case config.StopSIGKILL:
		k.handle.Kill(pty.HardKill)
	case config.StopHardKill:
		k.handle.Kill(pty.HardKill)
	case config.StopSendKeys:
		for _, spec := range stop.SendKeys {
			if ev, ok := parseKeySpec(spec); ok {
				k.SendInput(ev)
			}
		}
	default: // SIGTERM
		k.handle.Kill(pty.SoftTerminate)
	}
}

func (k *VtermKind) Kill() {
	k.handle.Kill(pty.HardKill)
}

func (k *VtermKind) Close() {
	if k.closed.Swap(true) {
		return
	}
	k.handle.Close()
}

func (k *VtermKind) Wait() int {
	<-k.handle.Done()
	return k.handle.ExitCode()
}

func openProcLog(dir, name string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(dir+"/"+name+".log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
