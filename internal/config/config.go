// Package config holds the declarative description of a zshup run: which
// packages to install, which plugins to clone, which files to patch.
//
// The defaults cover a stock Ubuntu machine. Users can override them with
// a Lua file at ~/.config/zshup/zshup.lua, parsed with gopher-lua in a
// sandboxed VM with the detected platform exposed as a read-only table.
package config

import (
	_ "embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/zshup/zshup/internal/patch"
	"github.com/zshup/zshup/internal/shell"
)

//go:embed assets/kp.zsh
var kpBlock string

//go:embed assets/kitty.conf
var kittySnippet string

// Markers used for block presence detection. The zshrc marker is the
// function-opening token rather than the bracket comments, so a manually
// defined kp function also counts as present.
const (
	KpMarker    = "kp() {"
	KittyMarker = "font_family      MesloLGS NF"
)

// Plugin names one zsh plugin. A plugin with an empty URL ships with
// oh-my-zsh and is only listed in the plugins directive, never cloned.
type Plugin struct {
	Name string
	URL  string
}

// Packages lists system packages by criticality. A required package that
// fails to install aborts the run; an optional one only warns.
type Packages struct {
	Required []string
	Optional []string
}

// OhMyZsh configures where oh-my-zsh lives and where it comes from.
type OhMyZsh struct {
	Dir     string
	RepoURL string
}

// Kitty configures the terminal-emulator snippet step.
type Kitty struct {
	Enabled  bool
	ConfPath string
}

// Fonts configures the MesloLGS NF download step.
type Fonts struct {
	Enabled bool
	Dir     string
	URLs    []string
}

// Config is the complete description of a zshup run. It is explicit state:
// the patching code never reads environment variables or global defaults
// on its own.
type Config struct {
	Packages  Packages
	Plugins   []Plugin
	OhMyZsh   OhMyZsh
	ZshrcPath string
	Kitty     Kitty
	Fonts     Fonts
	// SetDefaultShell controls the chsh step.
	SetDefaultShell bool
}

// Default returns the stock configuration for the current user.
func Default() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home directory: %w", err)
	}

	zshrcPath, err := shell.GetRCFilePath(shell.ShellZsh)
	if err != nil {
		return nil, fmt.Errorf("resolve zshrc path: %w", err)
	}

	return &Config{
		Packages: Packages{
			Required: []string{"zsh", "git", "curl"},
			Optional: []string{"fzf", "bat"},
		},
		Plugins: []Plugin{
			{Name: "git"}, // ships with oh-my-zsh
			{Name: "zsh-autosuggestions", URL: "https://github.com/zsh-users/zsh-autosuggestions.git"},
			{Name: "zsh-syntax-highlighting", URL: "https://github.com/zsh-users/zsh-syntax-highlighting.git"},
			{Name: "fast-syntax-highlighting", URL: "https://github.com/zdharma-continuum/fast-syntax-highlighting.git"},
			{Name: "zsh-autocomplete", URL: "https://github.com/marlonrichert/zsh-autocomplete.git"},
			{Name: "zsh-history-substring-search", URL: "https://github.com/zsh-users/zsh-history-substring-search.git"},
		},
		OhMyZsh: OhMyZsh{
			Dir:     filepath.Join(homeDir, ".oh-my-zsh"),
			RepoURL: "https://github.com/ohmyzsh/ohmyzsh.git",
		},
		ZshrcPath: zshrcPath,
		Kitty: Kitty{
			Enabled:  true,
			ConfPath: filepath.Join(homeDir, ".config", "kitty", "kitty.conf"),
		},
		Fonts: Fonts{
			Enabled: true,
			Dir:     filepath.Join(homeDir, ".local", "share", "fonts"),
			URLs: []string{
				"https://github.com/romkatv/powerlevel10k-media/raw/master/MesloLGS%20NF%20Regular.ttf",
				"https://github.com/romkatv/powerlevel10k-media/raw/master/MesloLGS%20NF%20Bold.ttf",
				"https://github.com/romkatv/powerlevel10k-media/raw/master/MesloLGS%20NF%20Italic.ttf",
				"https://github.com/romkatv/powerlevel10k-media/raw/master/MesloLGS%20NF%20Bold%20Italic.ttf",
			},
		},
		SetDefaultShell: true,
	}, nil
}

// PluginDir returns the clone destination for a plugin.
func (c *Config) PluginDir(name string) string {
	return filepath.Join(c.OhMyZsh.Dir, "custom", "plugins", name)
}

// DirectiveLine builds the canonical plugins directive from the configured
// plugin list.
func (c *Config) DirectiveLine() string {
	names := make([]string, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		names = append(names, p.Name)
	}
	return "plugins=(" + strings.Join(names, " ") + ")"
}

// ZshrcDirective is the patch description for the plugins line: replace
// the first existing plugins= line, else insert after the theme line, else
// prepend.
func (c *Config) ZshrcDirective() patch.Directive {
	return patch.Directive{
		Anchor: regexp.MustCompile(`^plugins=`),
		Line:   c.DirectiveLine(),
		Fallbacks: []patch.InsertFallback{
			{After: regexp.MustCompile(`^ZSH_THEME=`)},
			{}, // start of file
		},
	}
}

// KpBlock returns the helper-function block appended to the zshrc.
func KpBlock() string {
	return kpBlock
}

// KittySnippet returns the kitty configuration block.
func KittySnippet() string {
	return kittySnippet
}

// ZshrcExpectations is the verification list for the patched zshrc. The
// install and verify paths share it, so they can never disagree.
func (c *Config) ZshrcExpectations() []patch.Expectation {
	return []patch.Expectation{
		{Pattern: c.DirectiveLine(), Kind: patch.MatchExactLine},
		{Pattern: KpMarker, Kind: patch.MatchSubstring},
	}
}

// KittyExpectations is the verification list for the patched kitty config.
func (c *Config) KittyExpectations() []patch.Expectation {
	return []patch.Expectation{
		{Pattern: KittyMarker, Kind: patch.MatchSubstring},
	}
}

// Validate checks the config for contradictions before a run starts.
func (c *Config) Validate() error {
	if c.ZshrcPath == "" {
		return fmt.Errorf("zshrc path cannot be empty")
	}
	if !filepath.IsAbs(c.ZshrcPath) {
		return fmt.Errorf("zshrc path must be absolute: %s", c.ZshrcPath)
	}
	if c.OhMyZsh.Dir == "" {
		return fmt.Errorf("oh-my-zsh directory cannot be empty")
	}

	seen := make(map[string]bool, len(c.Plugins))
	for _, p := range c.Plugins {
		if p.Name == "" {
			return fmt.Errorf("plugin name cannot be empty")
		}
		if strings.ContainsAny(p.Name, "/\\ ") {
			return fmt.Errorf("invalid plugin name: %q", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate plugin: %s", p.Name)
		}
		seen[p.Name] = true

		if p.URL != "" {
			if err := validateRepoURL(p.URL); err != nil {
				return fmt.Errorf("plugin %s: %w", p.Name, err)
			}
		}
	}

	if c.Kitty.Enabled && c.Kitty.ConfPath == "" {
		return fmt.Errorf("kitty conf path cannot be empty when the kitty step is enabled")
	}

	return nil
}

// validateRepoURL accepts https URLs and local paths (used in tests).
func validateRepoURL(raw string) error {
	if filepath.IsAbs(raw) {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid repository URL %q: %w", raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "ssh" {
		return fmt.Errorf("unsupported repository URL scheme %q", raw)
	}
	return nil
}
