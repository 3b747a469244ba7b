package proc

import (
	"os"
	"testing"

	"github.com/dshills/ravel/internal/config"
)

func TestResolveEnvUnsetsAndOverrides(t *testing.T) {
	os.Setenv("RAVEL_TEST_KEEP", "keep")
	os.Setenv("RAVEL_TEST_UNSET", "gone")
	defer os.Unsetenv("RAVEL_TEST_KEEP")
	defer os.Unsetenv("RAVEL_TEST_UNSET")

	val := "override"
	env := resolveEnv([]config.EnvVar{
		{Name: "RAVEL_TEST_UNSET", Value: nil},
		{Name: "RAVEL_TEST_NEW", Value: &val},
	})

	got := map[string]bool{}
	for _, kv := range env {
		got[kv] = true
	}

	if got["RAVEL_TEST_UNSET=gone"] {
		t.Error("expected RAVEL_TEST_UNSET to be removed")
	}
	if !got["RAVEL_TEST_KEEP=keep"] {
		t.Error("expected RAVEL_TEST_KEEP to be inherited unchanged")
	}
	if !got["RAVEL_TEST_NEW=override"] {
		t.Error("expected RAVEL_TEST_NEW=override to be present")
	}
}

func TestResolveEnvNilWhenEmpty(t *testing.T) {
	if env := resolveEnv(nil); env != nil {
		t.Errorf("expected nil (inherit), got %v", env)
	}
}
