package main

import (
	"fmt"
	"os"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

const (
	// EnvZshupDir overrides the state directory (default ~/.config/zshup).
	EnvZshupDir = "ZSHUP_DIR"
	// EnvZshupDebug enables debug logging when non-empty.
	EnvZshupDebug = "ZSHUP_DEBUG"
)

func main() {
	// Handle subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version":
			fmt.Printf("zshup %s\n", Version)
			fmt.Println("Idempotent zsh environment bootstrapper")
			return
		case "install":
			// Handle zshup install subcommand
			exitCode, err := runInstall(os.Args[2:])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(exitCode)
		case "verify":
			// Handle zshup verify subcommand
			exitCode, err := runVerify(os.Args[2:])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(exitCode)
		case "status":
			// Handle zshup status subcommand
			if err := runStatus(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "genconfig":
			// Handle zshup genconfig subcommand
			if err := runGenconfig(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		case "snippet":
			// Handle zshup snippet subcommand
			if err := runSnippet(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
	}

	// Default: show help
	fmt.Println("zshup - Idempotent zsh environment bootstrapper")
	fmt.Println()
	fmt.Println("Installs zsh, oh-my-zsh and a curated plugin set, patches ~/.zshrc")
	fmt.Println("in place, and switches your login shell. Safe to run repeatedly.")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  zshup --version              Show version information")
	fmt.Println("  zshup install [options]      Install and configure the zsh environment")
	fmt.Println("  zshup verify                 Check that the environment is still configured")
	fmt.Println("  zshup status                 Show the outcome of the last install run")
	fmt.Println("  zshup genconfig [--force]    Write a default zshup.lua override file")
	fmt.Println("  zshup snippet <zshrc|kitty>  Print a managed block to stdout")
	fmt.Println()
	fmt.Println("Install options:")
	fmt.Println("  --dry-run, -n    Show what would be done without changing anything")
	fmt.Println("  --no-packages    Skip the apt package step")
	fmt.Println("  --no-fonts       Skip the font download step")
	fmt.Println("  --no-chsh        Do not change the login shell")
	fmt.Println("  --config PATH    Read overrides from PATH instead of the default location")
}
