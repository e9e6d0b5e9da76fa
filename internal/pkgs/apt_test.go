package pkgs

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeRunner scripts the outcome of each external command.
type fakeRunner struct {
	lookPathErr error
	// installed lists packages dpkg-query reports as installed.
	installed map[string]bool
	// failing lists packages whose apt-get install fails.
	failing map[string]bool
	// calls records every command line executed.
	calls []string
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.lookPathErr != nil {
		return "", f.lookPathErr
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.calls = append(f.calls, name+" "+strings.Join(args, " "))

	if name == "dpkg-query" {
		pkg := args[len(args)-1]
		if f.installed[pkg] {
			return []byte("install ok installed"), nil
		}
		return []byte("unknown ok not-installed"), errors.New("exit status 1")
	}

	// apt-get (possibly behind sudo)
	pkg := args[len(args)-1]
	if f.failing[pkg] {
		return []byte("E: Unable to locate package " + pkg), errors.New("exit status 100")
	}
	return nil, nil
}

func newTestManager(runner *fakeRunner) *Manager {
	return &Manager{runner: runner, useSudo: false}
}

func TestEnsureInstalled(t *testing.T) {
	runner := &fakeRunner{
		installed: map[string]bool{"git": true},
		failing:   map[string]bool{"no-such-pkg": true},
	}
	m := newTestManager(runner)

	results, err := m.EnsureInstalled(context.Background(), []string{"git", "zsh", "no-such-pkg"})
	if err != nil {
		t.Fatalf("EnsureInstalled failed: %v", err)
	}

	tests := []struct {
		pkg  string
		want Status
	}{
		{pkg: "git", want: StatusAlreadyInstalled},
		{pkg: "zsh", want: StatusInstalled},
		{pkg: "no-such-pkg", want: StatusFailed},
	}
	for _, tt := range tests {
		result, ok := results[tt.pkg]
		if !ok {
			t.Errorf("no result for %s", tt.pkg)
			continue
		}
		if result.Status != tt.want {
			t.Errorf("%s: status = %v, want %v", tt.pkg, result.Status, tt.want)
		}
	}

	if results["no-such-pkg"].Err == nil {
		t.Error("failed package should carry its error")
	}
	if results["zsh"].Err != nil {
		t.Errorf("installed package should not carry an error: %v", results["zsh"].Err)
	}
}

func TestEnsureInstalled_SkipsInstalledPackages(t *testing.T) {
	runner := &fakeRunner{installed: map[string]bool{"git": true}}
	m := newTestManager(runner)

	if _, err := m.EnsureInstalled(context.Background(), []string{"git"}); err != nil {
		t.Fatalf("EnsureInstalled failed: %v", err)
	}

	for _, call := range runner.calls {
		if strings.HasPrefix(call, "apt-get install") {
			t.Errorf("unexpected install call: %s", call)
		}
	}
}

func TestEnsureInstalled_MissingAptGet(t *testing.T) {
	runner := &fakeRunner{lookPathErr: errors.New("executable file not found")}
	m := newTestManager(runner)

	_, err := m.EnsureInstalled(context.Background(), []string{"zsh"})
	if err == nil {
		t.Fatal("expected fatal error when apt-get is missing")
	}

	var missingErr *MissingToolError
	if !errors.As(err, &missingErr) {
		t.Fatalf("expected *MissingToolError, got %T", err)
	}
	if missingErr.Tool != "apt-get" {
		t.Errorf("Tool = %q, want apt-get", missingErr.Tool)
	}
}

func TestAptCommandSudoPrefix(t *testing.T) {
	m := &Manager{runner: &fakeRunner{}, useSudo: true}

	if got := m.aptCommand(); got != "sudo" {
		t.Errorf("aptCommand() = %q, want sudo", got)
	}
	args := m.aptArgs("install", "-y", "zsh")
	want := []string{"apt-get", "install", "-y", "zsh"}
	if len(args) != len(want) {
		t.Fatalf("aptArgs() = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("aptArgs()[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestEnsureInstalled_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := newTestManager(&fakeRunner{})
	_, err := m.EnsureInstalled(ctx, []string{"zsh"})
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
