package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"testing"
)

// fakeRunner records commands instead of executing them.
type fakeRunner struct {
	lookPathErr error
	runErr      error
	runOutput   []byte
	ranName     string
	ranArgs     []string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.ranName = name
	f.ranArgs = args
	return f.runOutput, f.runErr
}

// newTestSwitcher builds a switcher with fake system files so tests never
// touch /etc.
func newTestSwitcher(t *testing.T, runner commandRunner, currentShell string, registered []string) *Switcher {
	t.Helper()
	tmpDir := t.TempDir()

	u, err := user.Current()
	if err != nil {
		t.Fatalf("get current user: %v", err)
	}

	passwdPath := filepath.Join(tmpDir, "passwd")
	passwd := fmt.Sprintf("%s:x:1000:1000::/home/%s:%s\n", u.Username, u.Username, currentShell)
	if err := os.WriteFile(passwdPath, []byte(passwd), 0644); err != nil {
		t.Fatalf("write passwd: %v", err)
	}

	shellsPath := filepath.Join(tmpDir, "shells")
	var shells string
	for _, s := range registered {
		shells += s + "\n"
	}
	if err := os.WriteFile(shellsPath, []byte(shells), 0644); err != nil {
		t.Fatalf("write shells: %v", err)
	}

	return &Switcher{
		runner:     runner,
		passwdPath: passwdPath,
		shellsPath: shellsPath,
	}
}

func TestSetDefaultShell_AlreadySet(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestSwitcher(t, runner, "/usr/bin/zsh", []string{"/bin/bash", "/usr/bin/zsh"})

	result, err := s.SetDefaultShell(context.Background(), "/usr/bin/zsh")
	if err != nil {
		t.Fatalf("SetDefaultShell failed: %v", err)
	}
	if result.Outcome != SwitchAlreadySet {
		t.Errorf("Outcome = %v, want already-set", result.Outcome)
	}
	if runner.ranName != "" {
		t.Error("chsh should not have been invoked")
	}
}

func TestSetDefaultShell_Changed(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestSwitcher(t, runner, "/bin/bash", []string{"/bin/bash", "/usr/bin/zsh"})

	result, err := s.SetDefaultShell(context.Background(), "/usr/bin/zsh")
	if err != nil {
		t.Fatalf("SetDefaultShell failed: %v", err)
	}
	if result.Outcome != SwitchChanged {
		t.Errorf("Outcome = %v, want changed", result.Outcome)
	}
	if runner.ranName != "/usr/bin/chsh" {
		t.Errorf("ran %q, want chsh", runner.ranName)
	}
	if len(runner.ranArgs) != 2 || runner.ranArgs[0] != "-s" || runner.ranArgs[1] != "/usr/bin/zsh" {
		t.Errorf("chsh args = %v", runner.ranArgs)
	}
}

func TestSetDefaultShell_NotRegistered(t *testing.T) {
	runner := &fakeRunner{}
	s := newTestSwitcher(t, runner, "/bin/bash", []string{"/bin/bash"})

	result, err := s.SetDefaultShell(context.Background(), "/usr/bin/zsh")
	if err == nil {
		t.Fatal("expected error for unregistered shell")
	}
	if result.Outcome != SwitchFailed {
		t.Errorf("Outcome = %v, want failed", result.Outcome)
	}
	var switchErr *SwitchError
	if !errors.As(err, &switchErr) {
		t.Errorf("expected *SwitchError, got %T", err)
	}
	if runner.ranName != "" {
		t.Error("chsh should not have been invoked")
	}
}

func TestSetDefaultShell_ChshFails(t *testing.T) {
	runner := &fakeRunner{
		runErr:    errors.New("exit status 1"),
		runOutput: []byte("PAM: Authentication failure\n"),
	}
	s := newTestSwitcher(t, runner, "/bin/bash", []string{"/bin/bash", "/usr/bin/zsh"})

	result, err := s.SetDefaultShell(context.Background(), "/usr/bin/zsh")
	if err == nil {
		t.Fatal("expected error when chsh fails")
	}
	if result.Outcome != SwitchFailed {
		t.Errorf("Outcome = %v, want failed", result.Outcome)
	}
	if result.Reason != "PAM: Authentication failure" {
		t.Errorf("Reason = %q", result.Reason)
	}
}

func TestShellListed(t *testing.T) {
	content := `# /etc/shells: valid login shells
/bin/sh
/bin/bash
/usr/bin/zsh
`

	tests := []struct {
		name      string
		shellPath string
		want      bool
	}{
		{name: "listed zsh", shellPath: "/usr/bin/zsh", want: true},
		{name: "listed bash", shellPath: "/bin/bash", want: true},
		{name: "unlisted", shellPath: "/usr/local/bin/zsh", want: false},
		{name: "comment is not an entry", shellPath: "# /etc/shells: valid login shells", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shellListed(content, tt.shellPath); got != tt.want {
				t.Errorf("shellListed(%q) = %v, want %v", tt.shellPath, got, tt.want)
			}
		})
	}
}
