package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/infra/output"
	"github.com/agentwt/agentwt/internal/ui"
)

func runRemove(ctx context.Context, args []string, noPrompt bool) error {
	rmFlags := flag.NewFlagSet("rm", flag.ContinueOnError)
	var deletePath bool
	var deleteBranch bool
	var pruneFlag bool
	var forceFlag bool
	var helpFlag bool
	rmFlags.BoolVar(&deletePath, "delete-path", false, "run git worktree remove")
	rmFlags.BoolVar(&deleteBranch, "delete-branch", false, "run git branch -D")
	rmFlags.BoolVar(&pruneFlag, "prune", false, "delete both path and branch, then prune metadata")
	rmFlags.BoolVar(&forceFlag, "force", false, "degrade git failures to warnings")
	rmFlags.BoolVar(&helpFlag, "help", false, "show help")
	rmFlags.BoolVar(&helpFlag, "h", false, "show help")
	rmFlags.SetOutput(os.Stdout)
	rmFlags.Usage = func() {
		printRmHelp(os.Stdout)
	}
	if err := rmFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printRmHelp(os.Stdout)
		return nil
	}
	if rmFlags.NArg() > 1 {
		return fmt.Errorf("usage: agentwt rm [<name>] [flags]")
	}
	// --prune is shorthand for deleting both the path and the branch.
	if pruneFlag {
		deletePath = true
		deleteBranch = true
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	name, err := pickWorktree("agentwt rm", rmFlags.Args(), state, noPrompt)
	if err != nil {
		return err
	}
	entry, err := state.reg.Get(name)
	if err != nil {
		return err
	}

	renderer, theme, useColor := stdoutRenderer()
	output.SetStepLogger(renderer)
	defer output.SetStepLogger(nil)

	if deletePath && !forceFlag && !noPrompt && isatty.IsTerminal(os.Stdin.Fd()) {
		gitState, err := gitcmd.LiveInspector{}.Inspect(ctx, entry.Path)
		if err == nil && gitState.Dirty {
			confirm, err := ui.PromptConfirmInline(fmt.Sprintf("%s has uncommitted changes. Remove anyway?", name), theme, useColor)
			if err != nil {
				return err
			}
			if !confirm {
				return nil
			}
		}
	}

	startSteps(renderer)
	if deletePath {
		exists, err := paths.DirExists(entry.Path)
		if err != nil {
			return err
		}
		if exists {
			output.Stepf("remove worktree %s", entry.Path)
			if err := gitcmd.WorktreeRemove(ctx, state.repo.Root, entry.Path, forceFlag); err != nil {
				if !forceFlag {
					return err
				}
				renderer.Warn(fmt.Sprintf("worktree remove failed: %v", err))
			}
		} else {
			output.Stepf("worktree path already gone: %s", entry.Path)
		}
	}
	if deleteBranch && entry.Branch != "" {
		output.Stepf("delete branch %s", entry.Branch)
		if err := gitcmd.BranchDelete(ctx, state.repo.Root, entry.Branch); err != nil {
			if !forceFlag {
				return err
			}
			renderer.Warn(fmt.Sprintf("branch delete failed: %v", err))
		}
	}
	if pruneFlag {
		output.Step("prune worktree metadata")
		if _, err := gitcmd.Run(ctx, []string{"worktree", "prune"}, gitcmd.Options{Dir: state.repo.Root}); err != nil {
			if !forceFlag {
				return err
			}
			renderer.Warn(fmt.Sprintf("worktree prune failed: %v", err))
		}
	}

	output.Stepf("untrack %s", name)
	state.reg.Remove(name)
	if err := state.save(); err != nil {
		return err
	}

	renderer.Blank()
	renderer.Section("Result")
	renderer.Bullet(fmt.Sprintf("%s removed", name))
	return nil
}
