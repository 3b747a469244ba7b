package ctl

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"
	"sync/atomic"

	"github.com/dshills/ravel/internal/engine"
	"github.com/dshills/ravel/internal/logging"
)

// Server accepts remote-control connections and applies each decoded
// line against e. One connection may send any number of commands before
// closing; each line gets exactly one reply line ("ok" or "error: ...").
type Server struct {
	listener net.Listener
	engine   *engine.Engine
	log      *logging.Logger

	closed atomic.Bool
}

// Listen binds addr and returns a Server ready to Serve. addr is treated
// as a filesystem path (a Unix socket, removed first if stale) when it
// contains a "/", otherwise as a TCP address.
func Listen(addr string, e *engine.Engine, log *logging.Logger) (*Server, error) {
	network := "tcp"
	if strings.Contains(addr, "/") {
		network = "unix"
		_ = os.Remove(addr)
	}

	ln, err := net.Listen(network, addr)
	if err != nil {
		return nil, fmt.Errorf("ctl: listen %s %s: %w", network, addr, err)
	}
	return &Server{listener: ln, engine: e, log: log.WithComponent("ctl")}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr { return s.listener.Addr() }

// Serve accepts connections until Close is called, handling each on its
// own goroutine. It always returns a non-nil error (net.ErrClosed after
// Close).
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.closed.Load() {
				return fmt.Errorf("ctl: server closed: %w", err)
			}
			return fmt.Errorf("ctl: accept: %w", err)
		}
		go s.handle(conn)
	}
}

// Close stops accepting new connections by closing the listener.
// Already-accepted connections are not closed; each keeps being served
// until its client closes it.
func (s *Server) Close() error {
	s.closed.Store(true)
	return s.listener.Close()
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 4096), 1<<20)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		reply := s.applyLine(line)
		if _, err := conn.Write(append(reply, '\n')); err != nil {
			return
		}
	}
}

func (s *Server) applyLine(line []byte) []byte {
	cmd, err := ParseCommand(line)
	if err != nil {
		s.log.Warn("bad command: %v", err)
		return []byte("error: " + err.Error())
	}
	if err := Apply(s.engine, cmd); err != nil {
		s.log.Warn("command %q failed: %v", cmd.C, err)
		return []byte("error: " + err.Error())
	}
	return []byte("ok")
}
