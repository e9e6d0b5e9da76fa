package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/zshup/zshup/internal/config"
)

// runGenconfig handles the `zshup genconfig` subcommand. It writes a
// zshup.lua override file populated with the default configuration, so
// users have a complete, valid starting point to edit.
func runGenconfig(args []string) error {
	force := false
	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			fmt.Println("Usage: zshup genconfig [--force]")
			fmt.Println()
			fmt.Println("Write a default zshup.lua override file to the state directory.")
			fmt.Println("Refuses to overwrite an existing file unless --force is given.")
			return nil
		case "--force":
			force = true
		default:
			return fmt.Errorf("unknown genconfig option: %s", arg)
		}
	}

	stateDir, err := zshupDir()
	if err != nil {
		return fmt.Errorf("get zshup directory: %w", err)
	}
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("create zshup directory: %w", err)
	}

	configPath := filepath.Join(stateDir, "zshup.lua")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists\nUse --force to overwrite it", configPath)
	}

	cfg, err := config.Default()
	if err != nil {
		return fmt.Errorf("build default config: %w", err)
	}

	luaCode, err := config.NewGenerator().Generate(cfg)
	if err != nil {
		return fmt.Errorf("generate config: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(luaCode), 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	fmt.Printf("✓ Wrote %s\n", configPath)
	fmt.Println("Edit it and run 'zshup install' to apply your changes.")
	return nil
}
