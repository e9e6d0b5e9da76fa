package main

import (
	"fmt"

	"github.com/zshup/zshup/internal/config"
)

// runSnippet handles the `zshup snippet <zshrc|kitty>` subcommand. It
// prints a managed block to stdout for users who want to apply it by
// hand instead of letting install patch their files.
func runSnippet(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: zshup snippet <zshrc|kitty>")
	}

	switch args[0] {
	case "--help", "-h":
		fmt.Println("Usage: zshup snippet <zshrc|kitty>")
		fmt.Println()
		fmt.Println("Print a managed configuration block to stdout:")
		fmt.Println("  zshrc    The kp helper function block")
		fmt.Println("  kitty    The kitty font configuration block")
		return nil
	case "zshrc":
		fmt.Print(config.KpBlock())
	case "kitty":
		fmt.Print(config.KittySnippet())
	default:
		return fmt.Errorf("unknown snippet: %s\nSupported snippets: zshrc, kitty", args[0])
	}

	return nil
}
