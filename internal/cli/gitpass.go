package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/launch"
)

// runGit forwards a raw git invocation into the tracked worktree with
// inherited stdio. A nonzero git exit becomes the command's own exit status.
func runGit(ctx context.Context, args []string, noPrompt bool) error {
	if len(args) == 1 && isHelpArg(args[0]) {
		printGitHelp(os.Stdout)
		return nil
	}
	if len(args) == 0 {
		return fmt.Errorf("usage: agentwt git <name> -- <args...>")
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	name, err := pickWorktree("agentwt git", args[:1], state, noPrompt)
	if err != nil {
		return err
	}
	entry, err := state.reg.Get(name)
	if err != nil {
		return err
	}

	gitArgs := args[1:]
	if len(gitArgs) > 0 && gitArgs[0] == "--" {
		gitArgs = gitArgs[1:]
	}
	if len(gitArgs) == 0 {
		return fmt.Errorf("usage: agentwt git <name> -- <args...>")
	}

	code, err := gitcmd.RunInteractive(ctx, gitArgs, entry.Path)
	if err != nil {
		return err
	}
	if code != 0 {
		return launch.ExitCodeError{Code: code}
	}
	return nil
}
