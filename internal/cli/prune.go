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
	"github.com/agentwt/agentwt/internal/domain/registry"
	"github.com/agentwt/agentwt/internal/infra/output"
	"github.com/agentwt/agentwt/internal/ui"
)

func runPrune(ctx context.Context, args []string, noPrompt bool) error {
	pruneFlags := flag.NewFlagSet("prune", flag.ContinueOnError)
	var orphanedBranch bool
	var deleteBranch bool
	var dryRun bool
	var jsonFlag bool
	var forceFlag bool
	var helpFlag bool
	pruneFlags.BoolVar(&orphanedBranch, "orphaned-branch", false, "also drop entries whose branches are gone")
	pruneFlags.BoolVar(&deleteBranch, "delete-branch", false, "delete surviving branches of dropped entries")
	pruneFlags.BoolVar(&dryRun, "dry-run", false, "report without changing anything")
	pruneFlags.BoolVar(&jsonFlag, "json", false, "machine-readable output")
	pruneFlags.BoolVar(&forceFlag, "force", false, "keep going when branch deletes fail, skip the confirmation")
	pruneFlags.BoolVar(&helpFlag, "help", false, "show help")
	pruneFlags.BoolVar(&helpFlag, "h", false, "show help")
	pruneFlags.SetOutput(os.Stdout)
	pruneFlags.Usage = func() {
		printPruneHelp(os.Stdout)
	}
	if err := pruneFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printPruneHelp(os.Stdout)
		return nil
	}
	if pruneFlags.NArg() != 0 {
		return fmt.Errorf("usage: agentwt prune [flags]")
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}

	keep := func(name string, entry registry.Entry) bool {
		exists, err := paths.DirExists(entry.Path)
		if err != nil || exists {
			if !orphanedBranch || entry.Branch == "" {
				return true
			}
			branchExists, err := gitcmd.LiveInspector{}.BranchExists(ctx, state.repo.Root, entry.Branch)
			if err != nil {
				return true
			}
			return branchExists
		}
		return false
	}

	var stale []string
	for _, name := range state.reg.Names() {
		if !keep(name, state.reg.Worktrees[name]) {
			stale = append(stale, name)
		}
	}

	if dryRun {
		return reportPrune(stale, true, jsonFlag)
	}
	if len(stale) == 0 {
		return reportPrune(stale, false, jsonFlag)
	}

	if !forceFlag && !noPrompt && isatty.IsTerminal(os.Stdin.Fd()) {
		theme := ui.DefaultTheme()
		useColor := isatty.IsTerminal(os.Stdout.Fd())
		confirm, err := ui.PromptConfirmInline(fmt.Sprintf("Drop %d stale entries?", len(stale)), theme, useColor)
		if err != nil {
			return err
		}
		if !confirm {
			return nil
		}
	}

	branches := map[string]string{}
	for _, name := range stale {
		branches[name] = state.reg.Worktrees[name].Branch
	}
	removed := state.reg.Prune(keep)
	if err := state.save(); err != nil {
		return err
	}

	if deleteBranch {
		renderer, _, _ := stdoutRenderer()
		output.SetStepLogger(renderer)
		defer output.SetStepLogger(nil)
		for _, name := range removed {
			branch := branches[name]
			if branch == "" {
				continue
			}
			exists, err := gitcmd.LiveInspector{}.BranchExists(ctx, state.repo.Root, branch)
			if err != nil || !exists {
				continue
			}
			if err := gitcmd.BranchDelete(ctx, state.repo.Root, branch); err != nil {
				if !forceFlag {
					return err
				}
				renderer.Warn(fmt.Sprintf("branch delete failed: %v", err))
			}
		}
	}

	return reportPrune(removed, false, jsonFlag)
}

func reportPrune(removed []string, dryRun, jsonOut bool) error {
	if jsonOut {
		return writeJSON(os.Stdout, struct {
			Removed []string `json:"removed"`
			DryRun  bool     `json:"dryRun"`
		}{Removed: append([]string{}, removed...), DryRun: dryRun})
	}
	renderer, _, _ := stdoutRenderer()
	renderer.Section("Result")
	if len(removed) == 0 {
		renderer.Bullet("nothing to prune")
		return nil
	}
	verb := "pruned"
	if dryRun {
		verb = "would prune"
	}
	for _, name := range removed {
		renderer.Bullet(fmt.Sprintf("%s %s", verb, name))
	}
	return nil
}
