package testutil

import (
	"strings"
	"testing"
)

// AssertContainsPlain fails if output (after stripping ANSI) does not contain expected.
func AssertContainsPlain(t *testing.T, output, expected string) {
	t.Helper()
	plain := StripANSI(output)
	if !strings.Contains(plain, expected) {
		t.Errorf("output does not contain expected string\nExpected to find: %q\nIn output (plain):\n%s", expected, truncateForError(plain))
	}
}

// AssertNotContainsPlain fails if output (after stripping ANSI) contains unexpected.
func AssertNotContainsPlain(t *testing.T, output, unexpected string) {
	t.Helper()
	plain := StripANSI(output)
	if strings.Contains(plain, unexpected) {
		t.Errorf("output contains unexpected string\nDid not expect to find: %q\nIn output (plain):\n%s", unexpected, truncateForError(plain))
	}
}

// AssertOrder fails unless the markers appear in output in the given order.
func AssertOrder(t *testing.T, output string, markers ...string) {
	t.Helper()
	plain := StripANSI(output)
	pos := 0
	for _, marker := range markers {
		idx := strings.Index(plain[pos:], marker)
		if idx < 0 {
			t.Errorf("marker %q missing or out of order\nIn output (plain):\n%s", marker, truncateForError(plain))
			return
		}
		pos += idx + len(marker)
	}
}

// truncateForError truncates output for error messages to avoid huge logs.
func truncateForError(s string) string {
	const maxLen = 2000
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "\n... [truncated]"
}
