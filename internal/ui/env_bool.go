package ui

import "strings"

// ParseBoolDefault reads a boolean-ish environment value. Empty or
// unrecognized input yields fallback, so an unset variable never flips
// behavior.
func ParseBoolDefault(raw string, fallback bool) bool {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "1", "true", "yes", "on", "y":
		return true
	case "0", "false", "no", "off", "n":
		return false
	default:
		return fallback
	}
}
