package proc

import (
	"os"
	"strings"

	"github.com/dshills/ravel/internal/config"
)

// resolveEnv builds the complete child environment from the parent's,
// applying overrides and unsets from decl. A nil Value unsets the
// variable; everything not mentioned is inherited.
func resolveEnv(vars []config.EnvVar) []string {
	if len(vars) == 0 {
		return nil // inherit os.Environ() unmodified
	}

	base := os.Environ()
	unset := make(map[string]bool, len(vars))
	override := make(map[string]string, len(vars))
	for _, v := range vars {
		if v.Value == nil {
			unset[v.Name] = true
		} else {
			override[v.Name] = *v.Value
		}
	}

	result := make([]string, 0, len(base)+len(vars))
	seen := make(map[string]bool, len(base))
	for _, kv := range base {
		name := kv
		if i := strings.IndexByte(kv, '='); i >= 0 {
			name = kv[:i]
		}
		seen[name] = true
		if unset[name] {
			continue
		}
		if val, ok := override[name]; ok {
			result = append(result, name+"="+val)
			continue
		}
		result = append(result, kv)
	}
	for name, val := range override {
		if !seen[name] {
			result = append(result, name+"="+val)
		}
	}
	return result
}
