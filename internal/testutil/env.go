// Package testutil provides utilities for testing hermes-setup in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Env is an isolated set of directories for one test.
type Env struct {
	Root     string
	Home     string
	BinDir   string
	TempDir  string
	StateDir string
	// PathDir is an empty directory suitable as the only search path entry.
	PathDir string
}

// SetupTestEnv creates isolated test directories for each test.
// This ensures tests never interfere with:
// - A real speedtest installation on the machine
// - The user's hermes configuration and receipts
// - Homebrew
//
// The cleanup function is automatically handled by t.TempDir(),
// so callers don't need to manually clean up.
func SetupTestEnv(t *testing.T) *Env {
	t.Helper()

	tmpDir := t.TempDir()
	env := &Env{
		Root:     tmpDir,
		Home:     filepath.Join(tmpDir, "home"),
		BinDir:   filepath.Join(tmpDir, "prefix", "bin"),
		TempDir:  filepath.Join(tmpDir, "tmp"),
		StateDir: filepath.Join(tmpDir, "state"),
		PathDir:  filepath.Join(tmpDir, "path"),
	}

	t.Setenv("HOME", env.Home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(env.Home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(env.Home, ".local", "state"))
	t.Setenv("PATH", env.PathDir)
	t.Setenv("HERMES_CONFIG", "")

	dirs := []string{env.Home, env.BinDir, env.TempDir, env.StateDir, env.PathDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return env
}

// WriteExecutable creates an executable file called name in dir.
func WriteExecutable(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("failed to write executable %s: %v", path, err)
	}
	return path
}
