// Package patch provides idempotent patching of plain-text configuration
// files for zshup.
//
// The package knows two shapes of edit:
//
//   - Directive lines: a single canonical line identified by a regular
//     expression anchor (e.g. a line starting with "plugins="). The first
//     matching line is replaced with the desired content; when no line
//     matches, the line is inserted using an ordered chain of fallback
//     positions.
//
//   - Marked blocks: a multi-line fragment whose presence is detected by a
//     unique substring marker. The block is appended at most once per
//     marker per file; re-running the patch is a no-op once the marker is
//     present.
//
// All modifications are:
//   - Idempotent (safe to run multiple times)
//   - Atomic (temp file + rename for rewrites)
//   - Verified after writing
//
// There is no locking: the patcher assumes exclusive access to the target
// file for the duration of a run. A concurrent external edit shows up as a
// verification failure.
//
// # Example Usage
//
//	d := patch.Directive{
//	    Anchor: regexp.MustCompile(`^plugins=`),
//	    Line:   "plugins=(git zsh-autosuggestions)",
//	    Fallbacks: []patch.InsertFallback{
//	        {After: regexp.MustCompile(`^ZSH_THEME=`)},
//	        {}, // start of file
//	    },
//	}
//	result, err := patch.EnsureDirectiveLine(rcPath, d)
package patch
