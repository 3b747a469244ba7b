package config

import "testing"

const samplePackageJSON = `{
  "name": "demo",
  "scripts": {
    "build": "tsc",
    "dev": "vite",
    "test": "vitest run"
  }
}`

func TestLoadNpmScriptsPreservesOrder(t *testing.T) {
	decls, err := LoadNpmScripts([]byte(samplePackageJSON))
	if err != nil {
		t.Fatalf("LoadNpmScripts: %v", err)
	}
	if len(decls) != 3 {
		t.Fatalf("expected 3 decls, got %d", len(decls))
	}

	wantOrder := []string{"build", "dev", "test"}
	for i, name := range wantOrder {
		if decls[i].Name != name {
			t.Errorf("decl %d: expected name %q, got %q", i, name, decls[i].Name)
		}
	}

	dev := decls[1]
	if len(dev.Cmd) != 3 || dev.Cmd[0] != "npm" || dev.Cmd[1] != "run" || dev.Cmd[2] != "dev" {
		t.Errorf("unexpected cmd for dev script: %v", dev.Cmd)
	}
	if !dev.TTY {
		t.Error("expected npm script procs to run under a TTY")
	}
	if dev.Stop.Mode != StopSIGINT {
		t.Error("expected npm script procs to stop via SIGINT")
	}
}

func TestLoadNpmScriptsNoScripts(t *testing.T) {
	decls, err := LoadNpmScripts([]byte(`{"name": "demo"}`))
	if err != nil {
		t.Fatalf("LoadNpmScripts: %v", err)
	}
	if len(decls) != 0 {
		t.Fatalf("expected no decls, got %d", len(decls))
	}
}

func TestLoadNpmScriptsInvalidJSON(t *testing.T) {
	if _, err := LoadNpmScripts([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}
