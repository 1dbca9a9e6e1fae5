package sandbox

import (
	"fmt"
	"strings"
)

// Wrap rewrites a shell command so it runs inside the sandbox described by
// profilePath. An empty profile path leaves the command untouched.
func Wrap(command, profilePath string) string {
	if profilePath == "" {
		return command
	}
	return fmt.Sprintf("%s -f %s /bin/sh -c %s", HelperName, ShellQuote(profilePath), ShellQuote(command))
}

// ShellQuote quotes a string for a POSIX shell.
func ShellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if isShellSafe(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case strings.ContainsRune("@%+=:,./-_", r):
		default:
			return false
		}
	}
	return true
}
