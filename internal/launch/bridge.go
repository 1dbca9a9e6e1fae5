package launch

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

// Bridge executes a shell command inside a named external terminal
// application. Dispatch through the bridge is fire-and-forget: the resulting
// process cannot be observed or waited on.
type Bridge interface {
	Run(ctx context.Context, app, shellCommand string) error
}

// OsascriptBridge scripts Terminal.app and iTerm2 through osascript.
type OsascriptBridge struct {
	// LookPath is injectable for tests; nil means exec.LookPath.
	LookPath sandbox.LookPath
}

func (b OsascriptBridge) Run(ctx context.Context, app, shellCommand string) error {
	lookPath := b.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if _, err := lookPath("osascript"); err != nil {
		return fmt.Errorf("osascript is required to open %s sessions", app)
	}
	script, err := appleScript(app, shellCommand)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("failed to launch %s session (osascript exit %d)", app, exitErr.ExitCode())
		}
		return fmt.Errorf("failed to launch %s session: %w", app, err)
	}
	return nil
}

func appleScript(app, shellCommand string) (string, error) {
	quoted := escapeAppleScript(shellCommand)
	switch app {
	case AppTerminal:
		return strings.Join([]string{
			`tell application "Terminal"`,
			"\tactivate",
			fmt.Sprintf("\tdo script \"%s\"", quoted),
			"end tell",
		}, "\n"), nil
	case AppITerm:
		return strings.Join([]string{
			`tell application "iTerm2"`,
			"\tactivate",
			"\ttell current window",
			"\t\tcreate tab with default profile",
			fmt.Sprintf("\t\ttell current session to write text \"%s\"", quoted),
			"\tend tell",
			"end tell",
		}, "\n"), nil
	default:
		return "", fmt.Errorf("unsupported launch target %q, use spawn, terminal, or iterm", app)
	}
}

// escapeAppleScript escapes a string for an AppleScript string literal.
func escapeAppleScript(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}

// ShellSnippet builds the command the bridge sends to a terminal window:
// change into the worktree, export the entry's environment inline, run the
// agent command. Env keys are emitted in sorted order so the snippet is
// deterministic.
func ShellSnippet(dir, command string, env map[string]string) string {
	var b strings.Builder
	b.WriteString("cd ")
	b.WriteString(sandbox.ShellQuote(dir))
	b.WriteString(" && ")
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(sandbox.ShellQuote(key))
		b.WriteString("=")
		b.WriteString(sandbox.ShellQuote(env[key]))
		b.WriteString(" ")
	}
	b.WriteString(command)
	return b.String()
}
