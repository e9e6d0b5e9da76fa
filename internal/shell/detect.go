package shell

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// DetectShell detects the user's current shell using multiple methods
func DetectShell() (*DetectionResult, error) {
	// Method 1: Try $SHELL environment variable (most reliable)
	if shellPath := os.Getenv("SHELL"); shellPath != "" {
		shellType := parseShellFromPath(shellPath)
		if shellType.IsValid() {
			return &DetectionResult{
				Shell:     shellType,
				Method:    "$SHELL environment variable",
				ShellPath: shellPath,
			}, nil
		}
	}

	// Method 2: Try the login shell recorded in /etc/passwd (fallback)
	if shellPath, err := CurrentLoginShell(); err == nil && shellPath != "" {
		shellType := parseShellFromPath(shellPath)
		if shellType.IsValid() {
			return &DetectionResult{
				Shell:     shellType,
				Method:    "/etc/passwd entry",
				ShellPath: shellPath,
			}, nil
		}
	}

	return &DetectionResult{
		Shell:  ShellUnknown,
		Method: "detection failed",
	}, nil
}

// CurrentLoginShell returns the current user's login shell as recorded in
// /etc/passwd.
func CurrentLoginShell() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("get current user: %w", err)
	}

	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return "", fmt.Errorf("read /etc/passwd: %w", err)
	}

	shellPath := loginShellFromPasswd(string(data), u.Username)
	if shellPath == "" {
		return "", fmt.Errorf("no passwd entry for user %s", u.Username)
	}
	return shellPath, nil
}

// loginShellFromPasswd extracts the login shell field from passwd-format
// content for the given username. Returns "" when the user has no entry.
func loginShellFromPasswd(content, username string) string {
	for _, line := range strings.Split(content, "\n") {
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 7 || fields[0] != username {
			continue
		}
		return fields[6]
	}
	return ""
}

// parseShellFromPath extracts the shell type from a shell binary path
// Examples:
//   - /bin/bash -> bash
//   - /usr/bin/zsh -> zsh
func parseShellFromPath(shellPath string) ShellType {
	baseName := strings.ToLower(filepath.Base(shellPath))

	switch baseName {
	case "bash":
		return ShellBash
	case "zsh":
		return ShellZsh
	default:
		return ShellUnknown
	}
}
