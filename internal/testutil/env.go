// Package testutil provides utilities for testing zshup in isolation.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupTestEnv creates isolated test directories for each test.
// This ensures zshup tests never touch:
// - The user's real home directory and ~/.zshrc
// - The user's zshup state directory and journal
//
// The returned path is the fake home directory. Cleanup is handled by
// t.TempDir(), so callers don't need to clean up.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	home := filepath.Join(tmpDir, "home")

	t.Setenv("HOME", home)
	t.Setenv("ZSHUP_DIR", filepath.Join(tmpDir, "state"))
	t.Setenv("SHELL", "/bin/bash")

	dirs := []string{
		home,
		filepath.Join(tmpDir, "state"),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			t.Fatalf("failed to create test directory %s: %v", dir, err)
		}
	}

	return home
}
