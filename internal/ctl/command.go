// Package ctl implements the remote-control wire protocol: a
// line-delimited YAML document per command, accepted over a Unix or TCP
// socket and applied against a running engine.
package ctl

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Command is one decoded line of the wire protocol. Only the fields a
// given C value uses are populated; the rest stay at their zero value.
type Command struct {
	C string `yaml:"c"`

	Index *int     `yaml:"index"`
	Cmd   []string `yaml:"cmd"`
	Name  string   `yaml:"name"`
	ID    string   `yaml:"id"`
	N     *int     `yaml:"n"`
	Key   string   `yaml:"key"`

	Cmds []Command `yaml:"cmds"`
}

// ParseCommand decodes one line of the wire protocol.
func ParseCommand(line []byte) (Command, error) {
	var c Command
	if err := yaml.Unmarshal(line, &c); err != nil {
		return Command{}, fmt.Errorf("ctl: parse command: %w", err)
	}
	if c.C == "" {
		return Command{}, fmt.Errorf("ctl: command missing required %q field", "c")
	}
	return c, nil
}

// Encode serializes cmd back to YAML with yaml.Marshal. The output is
// block-style YAML and may span several lines.
func Encode(c Command) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("ctl: encode command: %w", err)
	}
	return data, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
