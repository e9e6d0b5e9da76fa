package main

import (
	"errors"
	"fmt"

	"github.com/zshup/zshup/internal/journal"
)

// runStatus handles the `zshup status` subcommand. It prints the journal
// of the most recent install run.
func runStatus(args []string) error {
	for _, arg := range args {
		switch arg {
		case "--help", "-h":
			fmt.Println("Usage: zshup status")
			fmt.Println()
			fmt.Println("Show the step-by-step outcome of the most recent install run.")
			return nil
		default:
			return fmt.Errorf("unknown status option: %s", arg)
		}
	}

	stateDir, err := zshupDir()
	if err != nil {
		return fmt.Errorf("get zshup directory: %w", err)
	}

	run, err := journal.Latest(stateDir)
	if errors.Is(err, journal.ErrNoRuns) {
		fmt.Println("No install runs recorded yet. Run 'zshup install' first.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read run journal: %w", err)
	}

	fmt.Printf("Last run: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Printf("Run ID:   %s\n", run.ID)
	if run.Success {
		fmt.Println("Result:   success")
	} else {
		fmt.Println("Result:   failed")
	}
	fmt.Println()

	for _, step := range run.Steps {
		marker := stepMarker(step.State)
		if step.Detail != "" {
			fmt.Printf("%s %-10s %s (%s)\n", marker, step.Name, step.State, step.Detail)
		} else {
			fmt.Printf("%s %-10s %s\n", marker, step.Name, step.State)
		}
	}

	return nil
}

// stepMarker maps a step state to its console marker.
func stepMarker(state journal.StepState) string {
	switch state {
	case journal.StateCompleted:
		return "✓"
	case journal.StateWarning:
		return "⚠"
	case journal.StateFailed:
		return "✗"
	case journal.StateSkipped:
		return "-"
	default:
		return "?"
	}
}
