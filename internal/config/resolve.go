package config

import (
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// ResolveValue handles magic URL schemes in config values:
// - op://vault/item/field -> 1Password secret (via `op read`)
// - $(...) -> shell command output
// - ${VAR} or $VAR -> environment variable
// - literal string -> returned as-is
func ResolveValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}

	switch {
	case strings.HasPrefix(value, "op://"):
		return resolveOnePassword(value)
	case strings.HasPrefix(value, "$(") && strings.HasSuffix(value, ")"):
		return resolveCommand(value[2 : len(value)-1])
	default:
		return expandEnv(value), nil
	}
}

// resolveOnePassword handles op:// URLs via `op read`
// Format: op://vault/item/field or op://vault/item/field?account=account.1password.com
func resolveOnePassword(opURL string) (string, error) {
	// Parse URL to extract account query parameter if present
	u, err := url.Parse(opURL)
	if err != nil {
		return "", fmt.Errorf("1password: invalid URL %s: %w", opURL, err)
	}

	account := u.Query().Get("account")

	// Reconstruct the op:// URL without query params for op read
	cleanURL := fmt.Sprintf("op://%s%s", u.Host, u.Path)

	// op read supports the op:// format directly
	args := []string{"read", cleanURL}
	if account != "" {
		args = append(args, "--account", account)
	}

	cmd := exec.Command("op", args...)
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("1password: failed to read %s: %s (is 'op' CLI installed and signed in?)", cleanURL, string(exitErr.Stderr))
		}
		return "", fmt.Errorf("1password: failed to read %s: %w (is 'op' CLI installed and signed in?)", cleanURL, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// resolveCommand executes a shell command and returns its output
func resolveCommand(cmd string) (string, error) {
	output, err := exec.Command("sh", "-c", cmd).Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("command failed: %s", string(exitErr.Stderr))
		}
		return "", fmt.Errorf("command failed: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}
