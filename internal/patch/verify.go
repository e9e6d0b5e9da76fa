package patch

import (
	"os"
	"strings"
)

// Verify re-reads the file and checks each expectation in order. It
// returns nil only when all expectations hold; otherwise it returns a
// *VerificationError naming the first failing expectation. Callers treat
// a verification failure as fatal for the overall run.
func Verify(path string, expectations []Expectation) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &WriteError{Path: path, Message: "read file for verification", Cause: err}
	}
	content := string(data)
	lines, _ := splitLines(content)

	for _, exp := range expectations {
		if !expectationHolds(content, lines, exp) {
			return &VerificationError{Path: path, Pattern: exp.Pattern, Kind: exp.Kind}
		}
	}

	return nil
}

func expectationHolds(content string, lines []string, exp Expectation) bool {
	switch exp.Kind {
	case MatchExactLine:
		for _, line := range lines {
			if line == exp.Pattern {
				return true
			}
		}
		return false
	case MatchSubstring:
		return strings.Contains(content, exp.Pattern)
	default:
		return false
	}
}
