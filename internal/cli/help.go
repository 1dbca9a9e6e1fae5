package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/agentwt/agentwt/internal/ui"
)

func isHelpArg(arg string) bool {
	switch strings.TrimSpace(arg) {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func printGlobalHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt <command> [flags] [args]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Commands:"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "create <name>", "create a worktree and track it"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "run [<name>]", "launch the agent in a worktree"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "ls [--json]", "list tracked worktrees with status"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "info <name> [--json]", "show one tracked worktree"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "set <name>", "update tracked settings"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "env <name>", "manage per-worktree env vars"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "rm [<name>]", "untrack (and optionally delete) a worktree"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "prune", "drop entries whose paths are gone"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "git <name> -- <args>", "run git inside a worktree"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "open [<name>]", "open a shell session in a worktree"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "doctor", "check host requirements"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "version", "print agentwt version"))
	fmt.Fprintln(w, helpCommand(theme, useColor, "help [command]", "show help for a command"))
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Global flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--no-prompt", "disable interactive prompt"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--verbose, -v", "show detailed logs"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--version", "print version"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--help, -h", "show help"))
}

func printCommandHelp(cmd string, w io.Writer) bool {
	switch cmd {
	case "create":
		printCreateHelp(w)
	case "run":
		printRunHelp(w)
	case "ls":
		printLsHelp(w)
	case "info":
		printInfoHelp(w)
	case "set":
		printSetHelp(w)
	case "env":
		printEnvHelp(w)
	case "rm":
		printRmHelp(w)
	case "prune":
		printPruneHelp(w)
	case "git":
		printGitHelp(w)
	case "open":
		printOpenHelp(w)
	case "doctor":
		printDoctorHelp(w)
	case "version":
		printVersion(w)
	default:
		return false
	}
	return true
}

func printCreateHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt create <name> [flags]")
	fmt.Fprintln(w, "  Create a git worktree bound to an agent and track it")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--agent <name>", "codex | claude | gemini"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--base <ref>", "base ref for the new branch (default HEAD)"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--branch <name>", "branch name (default wt/<name>)"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--use-existing-branch", "attach to an existing branch"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--path <dir>", "worktree location (default sibling dir)"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--cmd <command>", "launch command stored on the entry"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--start", "launch the agent right after creating"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--allow-dirty", "skip the dirty gate when starting"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--launch <target>", "spawn | terminal | iterm"))
	printSandboxFlagsHelp(w, theme, useColor)
}

func printRunHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt run [<name>] [flags]")
	fmt.Fprintln(w, "  Launch the bound agent inside a tracked worktree")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--agent <name>", "override the bound agent"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--cmd <command>", "override the launch command"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--no-wait", "do not wait for the agent to exit"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--launch <target>", "spawn | terminal | iterm"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--allow-dirty", "launch even with uncommitted changes"))
	printSandboxFlagsHelp(w, theme, useColor)
}

func printLsHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt ls [--json]")
	fmt.Fprintln(w, "  List tracked worktrees with live git status")
	fmt.Fprintln(w, helpFlag(theme, useColor, "--json", "machine-readable output"))
}

func printInfoHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt info <name> [--json]")
	fmt.Fprintln(w, "  Show one tracked worktree with live git status")
	fmt.Fprintln(w, helpFlag(theme, useColor, "--json", "machine-readable output"))
}

func printSetHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt set <name> [flags]")
	fmt.Fprintln(w, "  Update settings stored on a tracked worktree")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--agent <name>", "codex | claude | gemini"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--cmd <command>", "launch command (empty clears it)"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--path <dir>", "point the entry at a different path"))
	printSandboxFlagsHelp(w, theme, useColor)
}

func printEnvHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt env <name> [--set KEY=VALUE]... [--unset KEY]...")
	fmt.Fprintln(w, "  Manage env vars injected into the agent process")
	fmt.Fprintln(w, helpFlag(theme, useColor, "--set KEY=VALUE", "set a variable (repeatable)"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--unset KEY", "remove a variable (repeatable)"))
}

func printRmHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt rm [<name>] [flags]")
	fmt.Fprintln(w, "  Untrack a worktree, optionally deleting its path and branch")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--delete-path", "run git worktree remove"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--delete-branch", "run git branch -D"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--prune", "delete both path and branch, then prune metadata"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--force", "degrade git failures to warnings"))
}

func printPruneHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt prune [flags]")
	fmt.Fprintln(w, "  Drop tracked entries whose worktree paths are gone")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--orphaned-branch", "also drop entries whose branches are gone"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--delete-branch", "delete surviving branches of dropped entries"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--dry-run", "report without changing anything"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--json", "machine-readable output"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--force", "keep going when branch deletes fail, skip the confirmation"))
}

func printGitHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: agentwt git <name> -- <args...>")
	fmt.Fprintln(w, "  Run a git command inside the tracked worktree")
}

func printOpenHelp(w io.Writer) {
	theme, useColor := helpTheme(w)
	fmt.Fprintln(w, "Usage: agentwt open [<name>] [--launch terminal|iterm]")
	fmt.Fprintln(w, "  Open a shell session at the worktree in a terminal app")
	fmt.Fprintln(w, helpFlag(theme, useColor, "--launch <target>", "terminal (default) | iterm"))
}

func printDoctorHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: agentwt doctor")
	fmt.Fprintln(w, "  Check git version, sandbox and terminal helpers, registry health")
}

func printSandboxFlagsHelp(w io.Writer, theme ui.Theme, useColor bool) {
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, helpSectionTitle(theme, useColor, "Sandbox flags:"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--sandbox", "enable the sandbox"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--no-sandbox", "disable the sandbox"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--sandbox-profile <path>", "use a prebuilt profile file"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--sandbox-write <path>", "extra writable path (repeatable)"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--sandbox-no-network", "deny network access"))
	fmt.Fprintln(w, helpFlag(theme, useColor, "--sandbox-network", "allow network access"))
}

func helpTheme(w io.Writer) (ui.Theme, bool) {
	theme := ui.DefaultTheme()
	if file, ok := w.(*os.File); ok {
		return theme, isatty.IsTerminal(file.Fd())
	}
	return theme, false
}

func helpSectionTitle(theme ui.Theme, useColor bool, title string) string {
	if !useColor {
		return title
	}
	return theme.SectionTitle.Render(title)
}

func helpCommand(theme ui.Theme, useColor bool, name, description string) string {
	if useColor {
		return fmt.Sprintf("  %s  %s", theme.Accent.Render(name), description)
	}
	return fmt.Sprintf("  %-30s %s", name, description)
}

func helpFlag(theme ui.Theme, useColor bool, flag, description string) string {
	if useColor {
		return fmt.Sprintf("  %s  %s", theme.Accent.Render(flag), description)
	}
	return fmt.Sprintf("  %-26s %s", flag, description)
}
