package patch

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Comment markers bracketing appended blocks.
const (
	// BlockBegin is written on its own line before an appended block.
	BlockBegin = "# >>> zshup managed block >>>"
	// BlockEnd is written on its own line after an appended block.
	BlockEnd = "# <<< zshup managed block <<<"
)

// EnsureDirectiveLine makes the file contain exactly the desired directive
// line. If a line matches the directive's anchor, only the first such line
// is replaced; all other lines keep their content and order. Otherwise the
// line is inserted via the fallback chain. A missing file is created.
//
// The operation is idempotent: applying it twice yields a file identical to
// applying it once. After writing, the file is re-read and a
// *VerificationError is returned if the desired line is not present.
func EnsureDirectiveLine(path string, d Directive) (*DirectiveResult, error) {
	content, err := readOrEmpty(path)
	if err != nil {
		return nil, err
	}

	lines, hadTrailingNewline := splitLines(content)
	result := &DirectiveResult{Path: path}

	if idx := firstMatch(lines, d.Anchor); idx >= 0 {
		if lines[idx] != d.Line {
			lines[idx] = d.Line
			result.Changed = true
		}
		result.Replaced = result.Changed
	} else {
		lines = insertViaFallbacks(lines, d)
		result.Inserted = true
		result.Changed = true
	}

	if result.Changed {
		out := strings.Join(lines, "\n")
		if hadTrailingNewline {
			out += "\n"
		}
		if err := writeAtomic(path, []byte(out)); err != nil {
			return nil, err
		}
	}

	// Postcondition check: the desired line must now exist exactly.
	if err := Verify(path, []Expectation{{Pattern: d.Line, Kind: MatchExactLine}}); err != nil {
		return nil, err
	}

	return result, nil
}

// EnsureMarkedBlock makes the file contain the given block, using marker as
// the presence check. If the marker occurs anywhere in the current content
// the file is left untouched. Otherwise a blank line, the begin comment,
// the block, and the end comment are appended in that order. Content
// preceding the marker's first occurrence is never altered.
//
// The block must contain the marker; passing a block without it is a
// programmer error and is reported as a *WriteError before any I/O.
func EnsureMarkedBlock(path, marker, block string) (*BlockResult, error) {
	if !strings.Contains(block, marker) {
		return nil, &WriteError{Path: path, Message: "block does not contain its own marker"}
	}

	content, err := readOrEmpty(path)
	if err != nil {
		return nil, err
	}

	result := &BlockResult{Path: path}
	if strings.Contains(content, marker) {
		result.AlreadyPresent = true
		return result, nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &WriteError{Path: path, Message: "create parent directory", Cause: err}
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, &WriteError{Path: path, Message: "open for append", Cause: err}
	}
	defer f.Close()

	var sb strings.Builder
	if content != "" && !strings.HasSuffix(content, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(BlockBegin)
	sb.WriteString("\n")
	sb.WriteString(block)
	if !strings.HasSuffix(block, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString(BlockEnd)
	sb.WriteString("\n")

	if _, err := f.WriteString(sb.String()); err != nil {
		return nil, &WriteError{Path: path, Message: "append block", Cause: err}
	}
	if err := f.Sync(); err != nil {
		return nil, &WriteError{Path: path, Message: "sync file", Cause: err}
	}

	result.Appended = true
	return result, nil
}

// readOrEmpty reads the file, treating a missing file as empty content.
func readOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", &WriteError{Path: path, Message: "read file", Cause: err}
	}
	return string(data), nil
}

// splitLines splits content into logical lines and reports whether the
// content ended with a newline. Empty content yields no lines and counts
// as newline-terminated so new files end up properly terminated.
func splitLines(content string) ([]string, bool) {
	if content == "" {
		return nil, true
	}
	hadTrailing := strings.HasSuffix(content, "\n")
	if hadTrailing {
		content = strings.TrimSuffix(content, "\n")
	}
	return strings.Split(content, "\n"), hadTrailing
}

// firstMatch returns the index of the first line matching the pattern, or
// -1 when no line matches or the pattern is nil.
func firstMatch(lines []string, pattern *regexp.Regexp) int {
	if pattern == nil {
		return -1
	}
	for i, line := range lines {
		if pattern.MatchString(line) {
			return i
		}
	}
	return -1
}

// insertViaFallbacks inserts the directive line using the first applicable
// fallback. A fallback with a nil After pattern always applies and inserts
// at the start of the file; that is also the default when the chain is
// exhausted.
func insertViaFallbacks(lines []string, d Directive) []string {
	for _, fb := range d.Fallbacks {
		if fb.After == nil {
			return insertAt(lines, 0, d.Line)
		}
		if idx := firstMatch(lines, fb.After); idx >= 0 {
			return insertAt(lines, idx+1, d.Line)
		}
	}
	return insertAt(lines, 0, d.Line)
}

// insertAt inserts line at the given index.
func insertAt(lines []string, idx int, line string) []string {
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:idx]...)
	out = append(out, line)
	out = append(out, lines[idx:]...)
	return out
}

// writeAtomic writes content to path using a temporary file in the same
// directory followed by a rename, so readers never observe a partially
// written file.
func writeAtomic(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &WriteError{Path: path, Message: "create parent directory", Cause: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".zshup-tmp-*")
	if err != nil {
		return &WriteError{Path: path, Message: "create temporary file", Cause: err}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath) // Clean up on error

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return &WriteError{Path: path, Message: "write temporary file", Cause: err}
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return &WriteError{Path: path, Message: "sync temporary file", Cause: err}
	}

	tmpFile.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		return &WriteError{Path: path, Message: "rename temporary file", Cause: err}
	}

	return nil
}
