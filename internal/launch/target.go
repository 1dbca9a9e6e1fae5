package launch

import (
	"fmt"
	"strings"
)

type TargetKind int

const (
	// TargetSpawn runs the agent as a child process. The only target with
	// wait semantics.
	TargetSpawn TargetKind = iota
	// TargetApp hands the command to an external terminal application via
	// the scripting bridge. Always fire-and-forget.
	TargetApp
)

const (
	AppTerminal = "terminal"
	AppITerm    = "iterm"
)

// Target is the closed set of launch mechanisms.
type Target struct {
	Kind TargetKind
	App  string
}

func Spawn() Target {
	return Target{Kind: TargetSpawn}
}

// ParseTarget maps a user-supplied label to a target. An empty label means
// spawn.
func ParseTarget(value string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "spawn":
		return Target{Kind: TargetSpawn}, nil
	case AppTerminal:
		return Target{Kind: TargetApp, App: AppTerminal}, nil
	case AppITerm:
		return Target{Kind: TargetApp, App: AppITerm}, nil
	default:
		return Target{}, fmt.Errorf("unsupported launch target %q, use spawn, terminal, or iterm", value)
	}
}

func (t Target) String() string {
	if t.Kind == TargetSpawn {
		return "spawn"
	}
	return t.App
}
