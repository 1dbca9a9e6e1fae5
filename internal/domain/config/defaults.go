package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/agentwt/agentwt/internal/domain/agent"
)

// FileName is the optional repo-level defaults file, stored next to the
// registry under the git common dir.
const FileName = "agentwt.yaml"

// Defaults supplies repo-wide fallbacks consulted when neither the
// invocation nor the tracked entry specifies a value.
type Defaults struct {
	DefaultAgent  string            `yaml:"default_agent"`
	DefaultLaunch string            `yaml:"default_launch"`
	Commands      map[string]string `yaml:"commands"`
	Sandbox       SandboxDefaults   `yaml:"sandbox"`
}

// SandboxDefaults seeds the sandbox policy of newly created worktrees.
type SandboxDefaults struct {
	Enabled     bool     `yaml:"enabled"`
	DenyNetwork bool     `yaml:"deny_network"`
	Write       []string `yaml:"write"`
}

// Load reads the defaults file. A missing file yields zero defaults; a
// malformed file is a loud error, unlike the registry, because the user
// wrote it by hand and silent fallback would hide typos.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults{}, nil
		}
		return Defaults{}, fmt.Errorf("read defaults file: %w", err)
	}
	var defaults Defaults
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return Defaults{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validate(defaults); err != nil {
		return Defaults{}, fmt.Errorf("invalid %s: %w", path, err)
	}
	return defaults, nil
}

// Command returns the configured launch command for an agent, if any.
func (d Defaults) Command(a agent.Agent) string {
	return d.Commands[string(a)]
}

func validate(d Defaults) error {
	if strings.TrimSpace(d.DefaultAgent) != "" {
		if _, err := agent.Parse(d.DefaultAgent); err != nil {
			return err
		}
	}
	switch strings.ToLower(strings.TrimSpace(d.DefaultLaunch)) {
	case "", "spawn", "terminal", "iterm":
	default:
		return fmt.Errorf("unknown default_launch %q, use spawn, terminal, or iterm", d.DefaultLaunch)
	}
	for name := range d.Commands {
		if _, err := agent.Parse(name); err != nil {
			return fmt.Errorf("commands: %w", err)
		}
	}
	return nil
}
