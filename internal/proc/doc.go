// Package proc provides process supervision for ravel's managed procs.
//
// The proc package implements the per-process state machine: each
// declared or remotely-added process is a Proc, spawned either attached
// to a PTY and driven through a VT100 emulator (VtermKind) or over plain
// pipes with line buffering (SimpleKind).
//
// # Features
//
//   - Lifecycle management (start, stop, restart, kill)
//   - Configurable stop strategy: SIGINT/SIGTERM/SIGKILL escalation, a
//     hard kill, or a literal send-keys sequence
//   - Autorestart with a minimum-alive guard against restart storms
//   - Optional per-process transcript logging
//
// # Proc
//
//	p := proc.New(decl, rows, cols)
//	if err := p.Start(); err != nil {
//	    log.Fatal(err)
//	}
//	<-p.Stopped()
//	fmt.Println(p.ExitCode())
//
// # Thread Safety
//
// Proc and its Kind implementations are safe for concurrent use.
package proc
