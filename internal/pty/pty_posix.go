//go:build linux || darwin

package pty

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func setCtty(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0,
	}
}

func setWinsize(f *os.File, rows, cols int) error {
	ws := &unix.Winsize{
		Row: uint16(rows),
		Col: uint16(cols),
	}
	return unix.IoctlSetWinsize(int(f.Fd()), unix.TIOCSWINSZ, ws)
}

// attachSlave finishes wiring cmd to the pty slave and starts the child.
// slave is closed in the parent once the child has inherited it.
func attachSlave(cmd *exec.Cmd, slave *os.File, rows, cols int) error {
	if err := setWinsize(slave, rows, cols); err != nil {
		slave.Close()
		return err
	}

	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	setCtty(cmd)

	err := cmd.Start()
	slave.Close()
	return err
}
