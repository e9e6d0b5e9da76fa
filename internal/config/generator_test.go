package config

import (
	"context"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	cfg := testBase(t)

	g := NewGenerator()
	luaCode, err := g.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, want := range []string{
		"zshup = {",
		`"zsh", "git", "curl"`,
		`{ name = "zsh-autosuggestions", url = "https://github.com/zsh-users/zsh-autosuggestions.git" }`,
		`zshrc = "/home/testuser/.zshrc"`,
		"set_default_shell = true",
	} {
		if !strings.Contains(luaCode, want) {
			t.Errorf("generated config missing %q:\n%s", want, luaCode)
		}
	}
}

// TestGenerateRoundTrip checks that parsing a generated config yields the
// config it was generated from.
func TestGenerateRoundTrip(t *testing.T) {
	cfg := testBase(t)

	g := NewGenerator()
	luaCode, err := g.Generate(cfg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	p := NewParser(nil)
	parsed, err := p.ParseString(context.Background(), luaCode, cfg)
	if err != nil {
		t.Fatalf("generated config does not parse: %v", err)
	}

	if parsed.ZshrcPath != cfg.ZshrcPath {
		t.Errorf("ZshrcPath = %q, want %q", parsed.ZshrcPath, cfg.ZshrcPath)
	}
	if parsed.DirectiveLine() != cfg.DirectiveLine() {
		t.Errorf("DirectiveLine = %q, want %q", parsed.DirectiveLine(), cfg.DirectiveLine())
	}
	if len(parsed.Plugins) != len(cfg.Plugins) {
		t.Fatalf("plugin count = %d, want %d", len(parsed.Plugins), len(cfg.Plugins))
	}
	for i := range cfg.Plugins {
		if parsed.Plugins[i] != cfg.Plugins[i] {
			t.Errorf("plugin[%d] = %+v, want %+v", i, parsed.Plugins[i], cfg.Plugins[i])
		}
	}
	if parsed.SetDefaultShell != cfg.SetDefaultShell {
		t.Errorf("SetDefaultShell = %v", parsed.SetDefaultShell)
	}
	if parsed.Kitty != cfg.Kitty {
		t.Errorf("Kitty = %+v, want %+v", parsed.Kitty, cfg.Kitty)
	}
}

func TestGenerateRejectsInvalidConfig(t *testing.T) {
	if _, err := NewGenerator().Generate(&Config{}); err == nil {
		t.Error("expected error for invalid config")
	}
}
