package shell

import (
	"testing"
)

func TestParseShellFromPath(t *testing.T) {
	tests := []struct {
		name      string
		shellPath string
		want      ShellType
	}{
		{
			name:      "bash in /bin",
			shellPath: "/bin/bash",
			want:      ShellBash,
		},
		{
			name:      "zsh in /usr/bin",
			shellPath: "/usr/bin/zsh",
			want:      ShellZsh,
		},
		{
			name:      "zsh in /usr/local/bin",
			shellPath: "/usr/local/bin/zsh",
			want:      ShellZsh,
		},
		{
			name:      "uppercase is normalized",
			shellPath: "/bin/ZSH",
			want:      ShellZsh,
		},
		{
			name:      "fish is unsupported",
			shellPath: "/usr/bin/fish",
			want:      ShellUnknown,
		},
		{
			name:      "empty path",
			shellPath: "",
			want:      ShellUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseShellFromPath(tt.shellPath); got != tt.want {
				t.Errorf("parseShellFromPath(%q) = %v, want %v", tt.shellPath, got, tt.want)
			}
		})
	}
}

func TestDetectShell_FromEnv(t *testing.T) {
	t.Setenv("SHELL", "/usr/bin/zsh")

	result, err := DetectShell()
	if err != nil {
		t.Fatalf("DetectShell failed: %v", err)
	}
	if result.Shell != ShellZsh {
		t.Errorf("Shell = %v, want %v", result.Shell, ShellZsh)
	}
	if result.ShellPath != "/usr/bin/zsh" {
		t.Errorf("ShellPath = %q, want %q", result.ShellPath, "/usr/bin/zsh")
	}
	if result.Method != "$SHELL environment variable" {
		t.Errorf("Method = %q", result.Method)
	}
}

func TestLoginShellFromPasswd(t *testing.T) {
	passwd := `root:x:0:0:root:/root:/bin/bash
# comment line
daemon:x:1:1:daemon:/usr/sbin:/usr/sbin/nologin
alice:x:1000:1000:Alice:/home/alice:/usr/bin/zsh
bob:x:1001:1001::/home/bob:/bin/bash
`

	tests := []struct {
		name     string
		username string
		want     string
	}{
		{
			name:     "user with zsh",
			username: "alice",
			want:     "/usr/bin/zsh",
		},
		{
			name:     "user with bash",
			username: "bob",
			want:     "/bin/bash",
		},
		{
			name:     "root entry",
			username: "root",
			want:     "/bin/bash",
		},
		{
			name:     "unknown user",
			username: "mallory",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loginShellFromPasswd(passwd, tt.username); got != tt.want {
				t.Errorf("loginShellFromPasswd(%q) = %q, want %q", tt.username, got, tt.want)
			}
		})
	}
}

func TestShellTypeIsValid(t *testing.T) {
	if !ShellZsh.IsValid() {
		t.Error("zsh should be valid")
	}
	if !ShellBash.IsValid() {
		t.Error("bash should be valid")
	}
	if ShellUnknown.IsValid() {
		t.Error("unknown should not be valid")
	}
}
