// Package testutil provides utilities for testing tldr in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env describes the isolated directories created by SetupTestEnv.
type Env struct {
	Root       string
	ConfigFile string
	CacheDir   string
}

// SetupTestEnv creates isolated test directories for each test.
// This ensures tests never read the user's configuration or page cache and
// that language detection starts from a known environment.
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := Env{
		Root:       tmpDir,
		ConfigFile: filepath.Join(tmpDir, "config", "tldr", "config.lua"),
		CacheDir:   filepath.Join(tmpDir, "cache", "tldr"),
	}

	t.Setenv("HOME", tmpDir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmpDir, "cache"))
	t.Setenv("TLDR_CONFIG", env.ConfigFile)

	// POSIX locale yields no page languages.
	t.Setenv("LANG", "C")
	t.Setenv("LANGUAGE", "")
	t.Setenv("NO_COLOR", "")

	dirs := []string{
		filepath.Dir(env.ConfigFile),
		filepath.Join(tmpDir, "cache"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}
