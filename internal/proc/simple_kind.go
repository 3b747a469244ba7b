package proc

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/keycodec"
)

const maxSimpleLines = 10000

// SimpleKind drives a child over plain pipes, line-buffering its combined
// stdout/stderr for programs that don't need (or shouldn't get) a real
// terminal: one-shot build/watch commands, linters, anything whose
// output is read rather than interactively driven.
type SimpleKind struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	done   chan struct{}
	exited atomic.Int32

	mu      sync.Mutex
	lines   []string
	partial []byte

	onRerender func()
	onExit     func(code int)

	logFile *os.File
	closed  atomic.Bool
}

// NewSimpleKind spawns decl's program with piped stdio. Resize is a
// no-op for this kind; there is no PTY to report a size to.
func NewSimpleKind(decl config.ProcDecl, onRerender func(), onExit func(code int)) (*SimpleKind, error) {
	program, args := decl.Program()
	cmd := exec.Command(program, args...)
	cmd.Dir = decl.Cwd
	if env := resolveEnv(decl.Env); env != nil {
		cmd.Env = env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	k := &SimpleKind{
		cmd:        cmd,
		stdin:      stdin,
		done:       make(chan struct{}),
		onRerender: onRerender,
		onExit:     onExit,
	}
	k.exited.Store(-1)

	if decl.LogDir != "" {
		if f, err := openProcLog(decl.LogDir, decl.Name); err == nil {
			k.logFile = f
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); k.readStream(stdout) }()
	go func() { defer wg.Done(); k.readStream(stderr) }()

	go func() {
		wg.Wait()
		k.reap()
	}()

	return k, nil
}

// readStream reads one byte at a time from r, appending to the partial
// line buffer and pushing a completed line on '\n', dropping '\r'.
func (k *SimpleKind) readStream(r io.Reader) {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return
		}
		switch b {
		case '\r':
			continue
		case '\n':
			k.mu.Lock()
			line := string(k.partial)
			k.partial = nil
			k.lines = append(k.lines, line)
			if len(k.lines) > maxSimpleLines {
				k.lines = k.lines[len(k.lines)-maxSimpleLines:]
			}
			k.mu.Unlock()
			if k.logFile != nil {
				k.logFile.WriteString(line + "\n")
			}
		default:
			k.mu.Lock()
			k.partial = append(k.partial, b)
			k.mu.Unlock()
		}
		if k.onRerender != nil {
			k.onRerender()
		}
	}
}

func (k *SimpleKind) reap() {
	err := k.cmd.Wait()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	k.exited.Store(int32(code))
	if k.logFile != nil {
		k.logFile.Close()
	}
	close(k.done)
	if k.onExit != nil {
		k.onExit(code)
	}
}

// Lines returns the last n completed lines (fewer if not yet available),
// plus the in-progress partial line.
func (k *SimpleKind) Lines(n int) (lines []string, partial string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	start := 0
	if len(k.lines) > n {
		start = len(k.lines) - n
	}
	lines = append(lines, k.lines[start:]...)
	partial = string(k.partial)
	return lines, partial
}

func (k *SimpleKind) SendInput(ev keycodec.KeyEvent) {
	if k.closed.Load() {
		return
	}
	seq := keycodec.EncodeSimple(ev)
	if len(seq) == 0 {
		return
	}
	_, _ = k.stdin.Write(seq)
}

func (k *SimpleKind) Resize(rows, cols int) {} // no pty to resize

func (k *SimpleKind) Stop(stop config.Stop) {
	if k.cmd.Process == nil {
		return
	}
	switch stop.Mode {
	case config.StopSIGINT:
		k.cmd.Process.Signal(syscall.SIGINT)
		k.escalate(5*time.Second, syscall.SIGTERM)
		k.escalate(10*time.Second, syscall.SIGKILL)
	case config.StopSIGKILL, config.StopHardKill:
		k.cmd.Process.Signal(syscall.SIGKILL)
	case config.StopSendKeys:
		for _, spec := range stop.SendKeys {
			if ev, ok := parseKeySpec(spec); ok {
				k.SendInput(ev)
			}
		}
	default: // SIGTERM
		k.cmd.Process.Signal(syscall.SIGTERM)
		k.escalate(5*time.Second, syscall.SIGKILL)
	}
}

func (k *SimpleKind) escalate(after time.Duration, sig syscall.Signal) {
	go func() {
		timer := time.NewTimer(after)
		defer timer.Stop()
		select {
		case <-k.done:
		case <-timer.C:
			if k.cmd.Process != nil {
				k.cmd.Process.Signal(sig)
			}
		}
	}()
}

func (k *SimpleKind) Kill() {
	if k.cmd.Process != nil {
		k.cmd.Process.Signal(syscall.SIGKILL)
	}
}

func (k *SimpleKind) Close() {
	if k.closed.Swap(true) {
		return
	}
	k.stdin.Close()
}

func (k *SimpleKind) Wait() int {
	<-k.done
	return int(k.exited.Load())
}
