package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDefaults(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write defaults: %v", err)
	}
	return path
}

func TestLoadMissingFile(t *testing.T) {
	defaults, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if defaults.DefaultAgent != "" || defaults.DefaultLaunch != "" {
		t.Fatalf("missing file must yield zero defaults: %#v", defaults)
	}
}

func TestLoadValid(t *testing.T) {
	path := writeDefaults(t, `
default_agent: claude
default_launch: iterm
commands:
  claude: claude --dangerously-skip-permissions
sandbox:
  enabled: true
  deny_network: true
  write:
    - /opt/cache
`)
	defaults, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if defaults.DefaultAgent != "claude" || defaults.DefaultLaunch != "iterm" {
		t.Fatalf("defaults = %#v", defaults)
	}
	if got := defaults.Commands["claude"]; got != "claude --dangerously-skip-permissions" {
		t.Fatalf("command = %q", got)
	}
	if !defaults.Sandbox.Enabled || !defaults.Sandbox.DenyNetwork || len(defaults.Sandbox.Write) != 1 {
		t.Fatalf("sandbox defaults = %#v", defaults.Sandbox)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeDefaults(t, "default_agent: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatalf("malformed yaml must error")
	}
}

func TestLoadRejectsUnknownAgent(t *testing.T) {
	path := writeDefaults(t, "default_agent: cursor\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("unknown agent must error")
	}
}

func TestLoadRejectsUnknownLaunch(t *testing.T) {
	path := writeDefaults(t, "default_launch: tmux\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("unknown launch target must error")
	}
}
