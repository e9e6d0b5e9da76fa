// Package pkgs installs system packages through apt.
//
// The manager shells out to apt-get and dpkg-query. A missing apt-get is a
// fatal prerequisite error for the caller; a single package failing to
// install is not, and is reported per name so optional packages can be
// downgraded to warnings.
package pkgs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Status classifies the outcome of installing one package.
type Status int

const (
	// StatusAlreadyInstalled means dpkg reported the package installed.
	StatusAlreadyInstalled Status = iota
	// StatusInstalled means apt-get installed the package in this run.
	StatusInstalled
	// StatusFailed means the install command failed for this package.
	StatusFailed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusAlreadyInstalled:
		return "already installed"
	case StatusInstalled:
		return "installed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// InstallResult is the per-package outcome of EnsureInstalled.
type InstallResult struct {
	Status Status
	// Err holds the failure cause when Status is StatusFailed.
	Err error
}

// MissingToolError indicates a required external tool is absent. Callers
// treat this as fatal for the whole run.
type MissingToolError struct {
	Tool  string
	Cause error
}

func (e *MissingToolError) Error() string {
	return fmt.Sprintf("required tool not found: %s", e.Tool)
}

func (e *MissingToolError) Unwrap() error {
	return e.Cause
}

// commandRunner abstracts external command execution for testing.
type commandRunner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Manager installs packages through apt-get.
type Manager struct {
	runner  commandRunner
	useSudo bool
}

// NewManager creates a package manager. When the process is not running as
// root, install commands are prefixed with sudo.
func NewManager() *Manager {
	return &Manager{
		runner:  execRunner{},
		useSudo: os.Geteuid() != 0,
	}
}

// CheckAvailable verifies apt-get is on PATH. A missing apt-get is
// returned as *MissingToolError.
func (m *Manager) CheckAvailable() error {
	if _, err := m.runner.LookPath("apt-get"); err != nil {
		return &MissingToolError{Tool: "apt-get", Cause: err}
	}
	return nil
}

// Update refreshes the apt package index. Failures are returned for the
// caller to log; installs may still succeed from a stale index.
func (m *Manager) Update(ctx context.Context) error {
	output, err := m.runner.Run(ctx, m.aptCommand(), m.aptArgs("update")...)
	if err != nil {
		return fmt.Errorf("apt-get update: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// EnsureInstalled makes each named package installed, skipping ones dpkg
// already knows. The returned map has one entry per requested name. The
// error is non-nil only for fatal conditions (apt-get missing); individual
// package failures are reported in the map.
func (m *Manager) EnsureInstalled(ctx context.Context, names []string) (map[string]InstallResult, error) {
	if err := m.CheckAvailable(); err != nil {
		return nil, err
	}

	results := make(map[string]InstallResult, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("context cancelled: %w", err)
		}

		if m.isInstalled(ctx, name) {
			results[name] = InstallResult{Status: StatusAlreadyInstalled}
			continue
		}

		output, err := m.runner.Run(ctx, m.aptCommand(), m.aptArgs("install", "-y", name)...)
		if err != nil {
			results[name] = InstallResult{
				Status: StatusFailed,
				Err:    fmt.Errorf("apt-get install %s: %w: %s", name, err, strings.TrimSpace(string(output))),
			}
			continue
		}
		results[name] = InstallResult{Status: StatusInstalled}
	}

	return results, nil
}

// isInstalled asks dpkg-query whether the package is installed.
func (m *Manager) isInstalled(ctx context.Context, name string) bool {
	output, err := m.runner.Run(ctx, "dpkg-query", "-W", "-f=${Status}", name)
	if err != nil {
		return false
	}
	return strings.Contains(string(output), "install ok installed")
}

// aptCommand returns the command to invoke: sudo for unprivileged runs,
// apt-get otherwise.
func (m *Manager) aptCommand() string {
	if m.useSudo {
		return "sudo"
	}
	return "apt-get"
}

// aptArgs builds the argument list, accounting for the sudo prefix.
func (m *Manager) aptArgs(args ...string) []string {
	if m.useSudo {
		return append([]string{"apt-get"}, args...)
	}
	return args
}
