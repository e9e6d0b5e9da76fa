package shell

import "fmt"

// ShellType represents a supported shell
type ShellType string

const (
	// ShellBash represents the Bash shell
	ShellBash ShellType = "bash"
	// ShellZsh represents the Z shell
	ShellZsh ShellType = "zsh"
	// ShellUnknown represents an unknown or unsupported shell
	ShellUnknown ShellType = "unknown"
)

// String returns the string representation of the shell type
func (s ShellType) String() string {
	return string(s)
}

// IsValid returns true if the shell type is supported
func (s ShellType) IsValid() bool {
	switch s {
	case ShellBash, ShellZsh:
		return true
	default:
		return false
	}
}

// DetectionResult contains the result of shell detection
type DetectionResult struct {
	// Shell is the detected shell type
	Shell ShellType
	// Method describes how the shell was detected
	Method string
	// ShellPath is the filesystem path to the shell binary
	ShellPath string
}

// SwitchOutcome classifies the result of a default-shell switch attempt.
type SwitchOutcome int

const (
	// SwitchChanged means the login shell was changed.
	SwitchChanged SwitchOutcome = iota
	// SwitchAlreadySet means the login shell already was the requested one.
	SwitchAlreadySet
	// SwitchFailed means the switch did not happen. This is a warning for
	// the overall run, never a fatal error.
	SwitchFailed
)

// String returns the string representation of the switch outcome.
func (o SwitchOutcome) String() string {
	switch o {
	case SwitchChanged:
		return "changed"
	case SwitchAlreadySet:
		return "already-set"
	case SwitchFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SwitchResult contains the result of a default-shell switch attempt.
type SwitchResult struct {
	// Outcome classifies what happened.
	Outcome SwitchOutcome
	// ShellPath is the shell the switch targeted.
	ShellPath string
	// Reason holds a human-readable explanation when Outcome is SwitchFailed.
	Reason string
}

// UnsupportedShellError represents an unsupported shell error
type UnsupportedShellError struct {
	Shell string
}

func (e *UnsupportedShellError) Error() string {
	return fmt.Sprintf("unsupported shell: %s (supported: bash, zsh)", e.Shell)
}

// SwitchError represents a failure while changing the login shell.
type SwitchError struct {
	ShellPath string
	Message   string
	Cause     error
}

func (e *SwitchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("switch shell (%s): %s: %v", e.ShellPath, e.Message, e.Cause)
	}
	return fmt.Sprintf("switch shell (%s): %s", e.ShellPath, e.Message)
}

func (e *SwitchError) Unwrap() error {
	return e.Cause
}
