package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileSystem is an abstraction over file reads, to allow loading from an
// in-memory fixture during tests.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the real file system.
type OSFS struct{}

func (OSFS) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// DefaultFS returns the OS-backed FileSystem.
func DefaultFS() FileSystem { return OSFS{} }

// Loader reads and parses a proc declaration list.
type Loader struct {
	FS FileSystem
}

// NewLoader constructs a Loader reading from the real file system.
func NewLoader() *Loader {
	return &Loader{FS: DefaultFS()}
}

// rawDoc is the document as decoded by yaml.v3. rawDecl.Env is a
// map[string]any so that an explicit YAML null (unset) arrives as a nil
// value, distinct from a key that is absent (inherit).
type rawDoc struct {
	Procs map[string]rawDecl `yaml:"procs"`
}

type rawDecl struct {
	Shell       string         `yaml:"shell"`
	Cmd         []string       `yaml:"cmd"`
	Env         map[string]any `yaml:"env"`
	Cwd         string         `yaml:"cwd"`
	TTY         *bool          `yaml:"tty"`
	Autostart   *bool          `yaml:"autostart"`
	Autorestart *bool          `yaml:"autorestart"`
	Stop        any            `yaml:"stop"`
	LogDir      string         `yaml:"log_dir"`
	Scrollback  int            `yaml:"scrollback"`
}

// LoadFrom reads and parses the declaration list at path, preserving the
// order names appear in the document (map iteration order is not used).
func (l *Loader) LoadFrom(path string) ([]ProcDecl, error) {
	data, err := l.FS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a proc declaration document from raw YAML/JSON bytes.
func Parse(data []byte) ([]ProcDecl, error) {
	// Decode twice: once into an ordered node to recover document order,
	// once into the typed struct for field values.
	var order yaml.Node
	if err := yaml.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	var doc rawDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	names := procOrder(&order)
	decls := make([]ProcDecl, 0, len(names))
	for _, name := range names {
		raw, ok := doc.Procs[name]
		if !ok {
			continue
		}
		decl, err := raw.toDecl(name)
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// procOrder walks the document node to recover the order "procs" keys
// were written in, since the typed map above loses it.
func procOrder(root *yaml.Node) []string {
	if len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "procs" {
			continue
		}
		procs := doc.Content[i+1]
		var names []string
		for j := 0; j+1 < len(procs.Content); j += 2 {
			names = append(names, procs.Content[j].Value)
		}
		return names
	}
	return nil
}

func (r rawDecl) toDecl(name string) (ProcDecl, error) {
	d := ProcDecl{
		Name:            name,
		Shell:           r.Shell,
		Cmd:             r.Cmd,
		Cwd:             r.Cwd,
		TTY:             boolOr(r.TTY, true),
		Autostart:       boolOr(r.Autostart, true),
		Autorestart:     boolOr(r.Autorestart, false),
		LogDir:          r.LogDir,
		ScrollbackLines: r.Scrollback,
	}

	for k, v := range r.Env {
		if v == nil {
			d.Env = append(d.Env, EnvVar{Name: k, Value: nil})
			continue
		}
		s := fmt.Sprintf("%v", v)
		d.Env = append(d.Env, EnvVar{Name: k, Value: &s})
	}

	stop, err := parseStop(r.Stop)
	if err != nil {
		return ProcDecl{}, fmt.Errorf("config: proc %q: %w", name, err)
	}
	d.Stop = stop

	if err := d.validate(); err != nil {
		return ProcDecl{}, err
	}
	return d, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func parseStop(v any) (Stop, error) {
	switch t := v.(type) {
	case nil:
		return Stop{Mode: StopSIGTERM}, nil
	case string:
		switch t {
		case "SIGINT":
			return Stop{Mode: StopSIGINT}, nil
		case "SIGTERM":
			return Stop{Mode: StopSIGTERM}, nil
		case "SIGKILL":
			return Stop{Mode: StopSIGKILL}, nil
		case "hard-kill":
			return Stop{Mode: StopHardKill}, nil
		default:
			return Stop{}, fmt.Errorf("unknown stop mode %q", t)
		}
	case map[string]any:
		raw, ok := t["send-keys"]
		if !ok {
			return Stop{}, fmt.Errorf("stop object must set send-keys")
		}
		list, ok := raw.([]any)
		if !ok {
			return Stop{}, fmt.Errorf("send-keys must be a list")
		}
		keys := make([]KeySpec, 0, len(list))
		for _, item := range list {
			keys = append(keys, KeySpec(fmt.Sprintf("%v", item)))
		}
		return Stop{Mode: StopSendKeys, SendKeys: keys}, nil
	default:
		return Stop{}, fmt.Errorf("invalid stop value %#v", v)
	}
}

// memFS is a tiny in-memory FileSystem used by tests.
type memFS map[string][]byte

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("config: %s: %w", path, os.ErrNotExist)
	}
	return data, nil
}
