package agent

import (
	"fmt"
	"strings"
)

// Agent identifies one of the supported coding agents.
type Agent string

const (
	Codex  Agent = "codex"
	Claude Agent = "claude"
	Gemini Agent = "gemini"
)

var Supported = []Agent{Codex, Claude, Gemini}

// Parse validates a user-supplied agent label, case-insensitively.
func Parse(value string) (Agent, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	for _, a := range Supported {
		if string(a) == name {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown agent %q, supported: %s", value, SupportedNames())
}

func SupportedNames() string {
	names := make([]string, 0, len(Supported))
	for _, a := range Supported {
		names = append(names, string(a))
	}
	return strings.Join(names, ", ")
}

// DefaultCommand returns the launch command for an agent when neither the
// entry nor the invocation supplies one. AGENTWT_CMD_<AGENT> in the ambient
// environment overrides the built-in default (the agent name itself).
func DefaultCommand(a Agent, environ []string) string {
	key := "AGENTWT_CMD_" + strings.ToUpper(string(a)) + "="
	for _, kv := range environ {
		if strings.HasPrefix(kv, key) {
			if value := kv[len(key):]; value != "" {
				return value
			}
		}
	}
	return string(a)
}
