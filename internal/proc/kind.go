package proc

import (
	"github.com/dshills/ravel/internal/config"
	"github.com/dshills/ravel/internal/keycodec"
)

// Kind is the live transport/emulation strategy behind a running Proc:
// either a PTY-attached VT100 emulator (VtermKind) or a line-buffered
// pipe pair (SimpleKind). Exactly one is live while a Proc is in
// StateRunning or StateStopping; none while StateStopped.
type Kind interface {
	// SendInput forwards a decoded key event to the child, encoded for
	// this kind's transport.
	SendInput(ev keycodec.KeyEvent)

	// Resize updates the child's terminal size. A no-op for SimpleKind.
	Resize(rows, cols int)

	// Stop asks the child to exit per decl's configured stop mode.
	Stop(stop config.Stop)

	// Kill forces immediate termination.
	Kill()

	// Close releases transport resources once the child has exited.
	// Must not be called while the child may still be running.
	Close()

	// Wait blocks until the child has exited, returning its exit code.
	Wait() int
}
