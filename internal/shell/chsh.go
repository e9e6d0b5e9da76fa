package shell

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
)

// commandRunner abstracts external command execution so the switcher can
// be tested without a real chsh binary.
type commandRunner interface {
	LookPath(name string) (string, error)
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner is the commandRunner implementation backed by os/exec.
type execRunner struct{}

func (execRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Switcher changes the user's login shell via chsh.
type Switcher struct {
	runner     commandRunner
	passwdPath string
	shellsPath string
}

// NewSwitcher creates a switcher using the system passwd and shells files.
func NewSwitcher() *Switcher {
	return &Switcher{
		runner:     execRunner{},
		passwdPath: "/etc/passwd",
		shellsPath: "/etc/shells",
	}
}

// SetDefaultShell makes shellPath the user's login shell. The outcome is
// never fatal for the caller: a failure is reported in the result (and as
// an error for logging) so the overall run can continue.
func (s *Switcher) SetDefaultShell(ctx context.Context, shellPath string) (*SwitchResult, error) {
	result := &SwitchResult{ShellPath: shellPath}

	// Already the login shell? Then there is nothing to do.
	if current, err := s.currentLoginShell(); err == nil && current == shellPath {
		result.Outcome = SwitchAlreadySet
		return result, nil
	}

	// chsh refuses shells missing from /etc/shells; fail with a clear
	// reason instead of a cryptic chsh message.
	registered, err := s.shellRegistered(shellPath)
	if err == nil && !registered {
		result.Outcome = SwitchFailed
		result.Reason = fmt.Sprintf("%s is not listed in %s", shellPath, s.shellsPath)
		return result, &SwitchError{ShellPath: shellPath, Message: result.Reason}
	}

	chshPath, err := s.runner.LookPath("chsh")
	if err != nil {
		result.Outcome = SwitchFailed
		result.Reason = "chsh not found on PATH"
		return result, &SwitchError{ShellPath: shellPath, Message: result.Reason, Cause: err}
	}

	output, err := s.runner.Run(ctx, chshPath, "-s", shellPath)
	if err != nil {
		result.Outcome = SwitchFailed
		result.Reason = strings.TrimSpace(string(output))
		return result, &SwitchError{ShellPath: shellPath, Message: "chsh failed", Cause: err}
	}

	result.Outcome = SwitchChanged
	return result, nil
}

// currentLoginShell reads the login shell from the switcher's passwd file.
func (s *Switcher) currentLoginShell() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", fmt.Errorf("get current user: %w", err)
	}

	data, err := os.ReadFile(s.passwdPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.passwdPath, err)
	}

	shellPath := loginShellFromPasswd(string(data), u.Username)
	if shellPath == "" {
		return "", fmt.Errorf("no passwd entry for user %s", u.Username)
	}
	return shellPath, nil
}

// shellRegistered reports whether shellPath appears in the shells file.
func (s *Switcher) shellRegistered(shellPath string) (bool, error) {
	data, err := os.ReadFile(s.shellsPath)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", s.shellsPath, err)
	}
	return shellListed(string(data), shellPath), nil
}

// shellListed reports whether shellPath appears as an entry in
// /etc/shells-format content.
func shellListed(content, shellPath string) bool {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == shellPath {
			return true
		}
	}
	return false
}
