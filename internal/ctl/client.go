package ctl

import (
	"bufio"
	"fmt"
	"net"
	"strings"
)

// Send dials addr (same Unix-path-or-TCP rule as Listen), writes one YAML
// command line and returns the server's single reply line, for the
// `--ctl` CLI flag.
func Send(addr string, yamlLine string) (string, error) {
	network := "tcp"
	if strings.Contains(addr, "/") {
		network = "unix"
	}

	conn, err := net.Dial(network, addr)
	if err != nil {
		return "", fmt.Errorf("ctl: dial %s %s: %w", network, addr, err)
	}
	defer conn.Close()

	line := strings.TrimRight(yamlLine, "\n")
	if _, err := fmt.Fprintln(conn, line); err != nil {
		return "", fmt.Errorf("ctl: write command: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("ctl: read reply: %w", err)
	}
	return strings.TrimRight(reply, "\n"), nil
}
