package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/infra/output"
	"github.com/agentwt/agentwt/internal/launch"
)

// runOpen scripts a terminal app into a shell session at the worktree. The
// session execs $SHELL so closing the agent command is not involved at all.
func runOpen(ctx context.Context, args []string, noPrompt bool) error {
	openFlags := flag.NewFlagSet("open", flag.ContinueOnError)
	var launchFlag string
	var helpFlag bool
	openFlags.StringVar(&launchFlag, "launch", "", "terminal app")
	openFlags.BoolVar(&helpFlag, "help", false, "show help")
	openFlags.BoolVar(&helpFlag, "h", false, "show help")
	openFlags.SetOutput(os.Stdout)
	openFlags.Usage = func() {
		printOpenHelp(os.Stdout)
	}
	if err := openFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printOpenHelp(os.Stdout)
		return nil
	}
	if openFlags.NArg() > 1 {
		return fmt.Errorf("usage: agentwt open [<name>] [--launch terminal|iterm]")
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	name, err := pickWorktree("agentwt open", openFlags.Args(), state, noPrompt)
	if err != nil {
		return err
	}
	entry, err := state.reg.Get(name)
	if err != nil {
		return err
	}
	exists, err := paths.DirExists(entry.Path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("configured worktree path does not exist: %s", entry.Path)
	}

	targetLabel := strings.TrimSpace(launchFlag)
	if targetLabel == "" {
		targetLabel = launch.AppTerminal
	}
	target, err := launch.ParseTarget(targetLabel)
	if err != nil {
		return err
	}
	if target.Kind != launch.TargetApp {
		return fmt.Errorf("open needs a terminal app, use --launch terminal or --launch iterm")
	}

	shell := strings.TrimSpace(os.Getenv("SHELL"))
	if shell == "" {
		shell = "/bin/sh"
	}

	renderer, _, _ := stdoutRenderer()
	output.SetStepLogger(renderer)
	defer output.SetStepLogger(nil)

	startSteps(renderer)
	output.Stepf("open %s session", target.App)
	output.Log(entry.Path)

	bridge := launch.OsascriptBridge{LookPath: exec.LookPath}
	snippet := launch.ShellSnippet(entry.Path, "exec "+shell, entry.Env)
	if err := bridge.Run(ctx, target.App, snippet); err != nil {
		return err
	}

	renderer.Blank()
	renderer.Section("Result")
	renderer.Bullet(fmt.Sprintf("%s session opened in %s", name, target.App))
	return nil
}
