package main

import "testing"

// TestRunSnippet tests argument handling for the snippet subcommand
func TestRunSnippet(t *testing.T) {
	if err := runSnippet(nil); err == nil {
		t.Error("expected error when no snippet name is given")
	}

	if err := runSnippet([]string{"vim"}); err == nil {
		t.Error("expected error for unknown snippet name")
	}

	for _, name := range []string{"zshrc", "kitty"} {
		if err := runSnippet([]string{name}); err != nil {
			t.Errorf("runSnippet(%s) failed: %v", name, err)
		}
	}
}
