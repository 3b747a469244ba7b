package config

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LoadNpmScripts reads data as a package.json document and returns one
// ProcDecl per script in "scripts", in declaration order, each running
// `npm run <script>` under a PTY with SIGINT as its stop signal (the
// default npm lifecycle scripts expect).
func LoadNpmScripts(data []byte) ([]ProcDecl, error) {
	var doc struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse package.json: %w", err)
	}

	names, err := npmScriptOrder(data)
	if err != nil {
		return nil, err
	}

	decls := make([]ProcDecl, 0, len(names))
	for _, name := range names {
		if _, ok := doc.Scripts[name]; !ok {
			continue
		}
		decls = append(decls, ProcDecl{
			Name:      name,
			Cmd:       []string{"npm", "run", name},
			TTY:       true,
			Autostart: false,
			Stop:      Stop{Mode: StopSIGINT},
		})
	}
	return decls, nil
}

// npmScriptOrder walks the top-level JSON object's tokens to recover the
// order "scripts" keys were written in; decoding into a Go map above
// loses it.
func npmScriptOrder(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("config: parse package.json: %w", err)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("config: parse package.json: %w", err)
		}
		key, _ := keyTok.(string)
		if key == "scripts" {
			return readOrderedKeys(dec)
		}
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, fmt.Errorf("config: parse package.json: %w", err)
		}
	}
	return nil, nil
}

func readOrderedKeys(dec *json.Decoder) ([]string, error) {
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("config: parse package.json scripts: %w", err)
	}
	var names []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("config: parse package.json scripts: %w", err)
		}
		key, _ := keyTok.(string)
		names = append(names, key)
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, fmt.Errorf("config: parse package.json scripts: %w", err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("config: parse package.json scripts: %w", err)
	}
	return names, nil
}
