package patch

import (
	"fmt"
	"regexp"
)

// MatchKind selects how a verification expectation is matched against the
// target file.
type MatchKind int

const (
	// MatchExactLine requires a line whose full content equals the pattern.
	MatchExactLine MatchKind = iota
	// MatchSubstring requires the pattern to occur anywhere in the file.
	MatchSubstring
)

// String returns the string representation of the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExactLine:
		return "exact line"
	case MatchSubstring:
		return "substring"
	default:
		return "unknown"
	}
}

// Expectation is a single verification check against a patched file.
type Expectation struct {
	// Pattern is the exact line or substring that must be present.
	Pattern string
	// Kind selects exact-line or substring matching.
	Kind MatchKind
}

// InsertFallback is one step of the insertion fallback chain used when the
// canonical directive line does not exist yet. Fallbacks are evaluated in
// order; the first applicable one wins.
type InsertFallback struct {
	// After inserts the directive immediately after the first line matching
	// the pattern. A nil After inserts at the start of the file and always
	// applies.
	After *regexp.Regexp
}

// Directive describes a single canonical configuration line.
type Directive struct {
	// Anchor identifies the canonical line. Only the first matching line is
	// ever replaced.
	Anchor *regexp.Regexp
	// Line is the exact desired content of the directive line.
	Line string
	// Fallbacks is the ordered insertion chain used when no line matches
	// Anchor. When the chain is empty or no fallback applies, the line is
	// inserted at the start of the file.
	Fallbacks []InsertFallback
}

// DirectiveResult describes the outcome of EnsureDirectiveLine.
type DirectiveResult struct {
	// Path is the patched file.
	Path string
	// Replaced indicates the first anchor-matching line was rewritten.
	Replaced bool
	// Inserted indicates the line was inserted via the fallback chain.
	Inserted bool
	// Changed indicates the file content was actually modified.
	Changed bool
}

// BlockResult describes the outcome of EnsureMarkedBlock.
type BlockResult struct {
	// Path is the patched file.
	Path string
	// AlreadyPresent indicates the marker was found and nothing was written.
	AlreadyPresent bool
	// Appended indicates the block was appended to the file.
	Appended bool
}

// WriteError represents an I/O failure while reading or writing a target
// file.
type WriteError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WriteError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("patch write error (%s): %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("patch write error (%s): %s", e.Path, e.Message)
}

func (e *WriteError) Unwrap() error {
	return e.Cause
}

// VerificationError reports the first expectation that does not hold after
// a patch operation. It is fatal for the run: the file is not in the
// guaranteed end state.
type VerificationError struct {
	Path    string
	Pattern string
	Kind    MatchKind
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed (%s): no %s match for %q", e.Path, e.Kind, e.Pattern)
}
