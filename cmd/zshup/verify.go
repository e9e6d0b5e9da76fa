package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zshup/zshup/internal/patch"
	"github.com/zshup/zshup/internal/shell"
)

// runVerify handles the `zshup verify` subcommand.
// Returns an exit code (0 = configured, 1 = problems found) and an error.
func runVerify(args []string) (int, error) {
	// Parse flags
	showHelp := false
	configPath := ""

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--help", "-h":
			showHelp = true
		case "--config":
			if i+1 >= len(args) {
				return 1, fmt.Errorf("--config requires a path argument")
			}
			i++
			configPath = args[i]
		default:
			return 1, fmt.Errorf("unknown verify option: %s", args[i])
		}
	}

	if showHelp {
		fmt.Println("Usage: zshup verify [--config PATH]")
		fmt.Println()
		fmt.Println("Check that the zsh environment is still configured: patched files,")
		fmt.Println("cloned repositories, and the login shell. Changes nothing.")
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := newLogger()

	stateDir, err := zshupDir()
	if err != nil {
		return 1, fmt.Errorf("get zshup directory: %w", err)
	}

	cfg, err := loadConfig(ctx, stateDir, configPath, logger)
	if err != nil {
		return 1, err
	}

	problems := 0

	// Patched files
	if err := patch.Verify(cfg.ZshrcPath, cfg.ZshrcExpectations()); err != nil {
		fmt.Printf("✗ %s: %v\n", cfg.ZshrcPath, err)
		problems++
	} else {
		fmt.Printf("✓ %s\n", cfg.ZshrcPath)
	}

	if cfg.Kitty.Enabled {
		if err := patch.Verify(cfg.Kitty.ConfPath, cfg.KittyExpectations()); err != nil {
			fmt.Printf("✗ %s: %v\n", cfg.Kitty.ConfPath, err)
			problems++
		} else {
			fmt.Printf("✓ %s\n", cfg.Kitty.ConfPath)
		}
	}

	// Cloned repositories
	if dirExists(cfg.OhMyZsh.Dir) {
		fmt.Printf("✓ oh-my-zsh at %s\n", cfg.OhMyZsh.Dir)
	} else {
		fmt.Printf("✗ oh-my-zsh missing from %s\n", cfg.OhMyZsh.Dir)
		problems++
	}

	for _, p := range cfg.Plugins {
		if p.URL == "" {
			continue
		}
		dir := cfg.PluginDir(p.Name)
		if dirExists(dir) {
			fmt.Printf("✓ plugin %s\n", p.Name)
		} else {
			fmt.Printf("✗ plugin %s missing from %s\n", p.Name, dir)
			problems++
		}
	}

	// Login shell
	if cfg.SetDefaultShell {
		loginShell, err := shell.CurrentLoginShell()
		switch {
		case err != nil:
			fmt.Printf("⚠  Could not determine login shell: %v\n", err)
		case shellIsZsh(loginShell):
			fmt.Printf("✓ login shell is %s\n", loginShell)
		default:
			fmt.Printf("✗ login shell is %s, not zsh\n", loginShell)
			problems++
		}

		// The login shell only applies to new sessions; also report what
		// this session is actually running.
		if detected, err := shell.DetectShell(); err == nil && detected.Shell != shell.ShellZsh {
			fmt.Printf("⚠  Current session shell is %s (%s)\n", detected.Shell, detected.Method)
		}
	}

	fmt.Println()
	if problems > 0 {
		fmt.Printf("%d problem(s) found. Run 'zshup install' to converge.\n", problems)
		return 1, nil
	}
	fmt.Println("Environment is fully configured.")
	return 0, nil
}

// dirExists reports whether path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// shellIsZsh reports whether a login shell path refers to zsh.
func shellIsZsh(shellPath string) bool {
	return filepath.Base(shellPath) == string(shell.ShellZsh)
}
