//go:build darwin

package pty

import (
	"os"
	"os/exec"
	"unsafe"

	"golang.org/x/sys/unix"
)

func ioctlGetString(fd int, req uintptr, buf *[128]byte) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(buf)))
	if errno != 0 {
		return errno
	}
	return nil
}

const (
	ptmxPath = "/dev/ptmx"

	// Darwin-only PTY ioctls, absent from golang.org/x/sys/unix.
	sysIOCPTYGRANT = 0x20007456
	sysIOCPTYGNAME = 0x40807453
	sysIOCPTYUNLK  = 0x20007452
)

func startPTY(cmd *exec.Cmd, cols, rows int) (*os.File, error) {
	master, err := os.OpenFile(ptmxPath, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}

	fd := int(master.Fd())

	if err := unix.IoctlSetInt(fd, sysIOCPTYGRANT, 0); err != nil {
		master.Close()
		return nil, err
	}
	if err := unix.IoctlSetInt(fd, sysIOCPTYUNLK, 0); err != nil {
		master.Close()
		return nil, err
	}

	var nameBuf [128]byte
	if err := ioctlGetString(fd, sysIOCPTYGNAME, &nameBuf); err != nil {
		master.Close()
		return nil, err
	}
	slavePath := cString(nameBuf[:])

	slave, err := os.OpenFile(slavePath, os.O_RDWR, 0)
	if err != nil {
		master.Close()
		return nil, err
	}

	if err := attachSlave(cmd, slave, rows, cols); err != nil {
		master.Close()
		return nil, err
	}

	return master, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
