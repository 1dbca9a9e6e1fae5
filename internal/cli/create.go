package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/domain/agent"
	"github.com/agentwt/agentwt/internal/domain/registry"
	"github.com/agentwt/agentwt/internal/domain/sandbox"
	"github.com/agentwt/agentwt/internal/infra/output"
	"github.com/agentwt/agentwt/internal/launch"
)

func runCreate(ctx context.Context, args []string, noPrompt bool) error {
	createFlags := flag.NewFlagSet("create", flag.ContinueOnError)
	var agentFlag string
	var baseFlag string
	var branchFlag string
	var useExisting bool
	var pathFlag string
	var cmdFlag string
	var startFlag bool
	var allowDirty bool
	var launchFlag string
	var helpFlag bool
	createFlags.StringVar(&agentFlag, "agent", "", "agent to bind")
	createFlags.StringVar(&baseFlag, "base", "", "base ref for the new branch")
	createFlags.StringVar(&branchFlag, "branch", "", "branch name")
	createFlags.BoolVar(&useExisting, "use-existing-branch", false, "attach to an existing branch")
	createFlags.StringVar(&pathFlag, "path", "", "worktree location")
	createFlags.StringVar(&cmdFlag, "cmd", "", "launch command stored on the entry")
	createFlags.BoolVar(&startFlag, "start", false, "launch the agent right after creating")
	createFlags.BoolVar(&allowDirty, "allow-dirty", false, "skip the dirty gate when starting")
	createFlags.StringVar(&launchFlag, "launch", "", "launch target")
	createFlags.BoolVar(&helpFlag, "help", false, "show help")
	createFlags.BoolVar(&helpFlag, "h", false, "show help")
	sandboxFlags := registerSandboxFlags(createFlags)
	createFlags.SetOutput(os.Stdout)
	createFlags.Usage = func() {
		printCreateHelp(os.Stdout)
	}
	if err := createFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printCreateHelp(os.Stdout)
		return nil
	}
	if createFlags.NArg() != 1 {
		return fmt.Errorf("usage: agentwt create <name> [flags]")
	}
	name := createFlags.Arg(0)
	if err := validateWorktreeName(name); err != nil {
		return err
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	if _, ok := state.reg.Worktrees[name]; ok {
		return fmt.Errorf("worktree %q is already tracked", name)
	}

	agentLabel := agentFlag
	if agentLabel == "" {
		agentLabel = state.defaults.DefaultAgent
	}
	if agentLabel == "" {
		agentLabel = string(agent.Codex)
	}
	boundAgent, err := agent.Parse(agentLabel)
	if err != nil {
		return err
	}

	branch := strings.TrimSpace(branchFlag)
	if branch == "" {
		branch = "wt/" + name
	}
	base := strings.TrimSpace(baseFlag)
	if base == "" {
		base = "HEAD"
	}

	worktreePath := strings.TrimSpace(pathFlag)
	if worktreePath == "" {
		worktreePath = paths.DefaultWorktreePath(state.repo.Root, name)
	}
	worktreePath, err = paths.Absolutize(worktreePath)
	if err != nil {
		return err
	}
	if exists, err := paths.DirExists(worktreePath); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("path already exists: %s", worktreePath)
	}

	inspector := gitcmd.LiveInspector{}
	branchExists, err := inspector.BranchExists(ctx, state.repo.Root, branch)
	if err != nil {
		return err
	}
	if useExisting && !branchExists {
		return fmt.Errorf("branch %q does not exist, drop --use-existing-branch to create it", branch)
	}
	if !useExisting && branchExists {
		return fmt.Errorf("branch %q already exists, use --use-existing-branch to attach", branch)
	}

	policy, err := sandbox.Apply(seedPolicy(state), sandboxFlags.overrides())
	if err != nil {
		return err
	}

	renderer, _, _ := stdoutRenderer()
	output.SetStepLogger(renderer)
	defer output.SetStepLogger(nil)

	startSteps(renderer)
	if useExisting {
		output.Stepf("add worktree %s -> %s", branch, worktreePath)
		err = gitcmd.WorktreeAddExistingBranch(ctx, state.repo.Root, worktreePath, branch)
	} else {
		output.Stepf("add worktree %s (from %s) -> %s", branch, base, worktreePath)
		err = gitcmd.WorktreeAddNewBranch(ctx, state.repo.Root, branch, worktreePath, base)
	}
	if err != nil {
		return err
	}

	entry := registry.Entry{
		Path:      worktreePath,
		Branch:    branch,
		Base:      base,
		Agent:     string(boundAgent),
		Command:   strings.TrimSpace(cmdFlag),
		Env:       map[string]string{},
		Sandbox:   policy,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	state.reg.Upsert(name, entry)
	output.Stepf("track %s", name)
	if err := state.save(); err != nil {
		return err
	}

	renderer.Blank()
	renderer.Section("Result")
	renderer.Bullet(fmt.Sprintf("%s created (branch: %s, agent: %s)", name, branch, boundAgent))

	if !startFlag {
		return nil
	}

	target, err := resolveTarget(launchFlag, state.defaults.DefaultLaunch)
	if err != nil {
		return err
	}
	launcher := newLauncher()
	_, err = launcher.Launch(ctx, state.reg, state.repo, state.defaults, launch.Options{
		Name:       name,
		Target:     target,
		Wait:       target.Kind == launch.TargetSpawn,
		AllowDirty: allowDirty,
	})
	return err
}

func validateWorktreeName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed != name {
		return fmt.Errorf("invalid worktree name %q", name)
	}
	if strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return fmt.Errorf("invalid worktree name %q", name)
	}
	return nil
}

// seedPolicy turns the defaults-file sandbox section into the base policy of
// a new entry.
func seedPolicy(state repoState) sandbox.Policy {
	return sandbox.Normalize(sandbox.Policy{
		Enabled:     state.defaults.Sandbox.Enabled,
		DenyNetwork: state.defaults.Sandbox.DenyNetwork,
		Write:       state.defaults.Sandbox.Write,
	})
}

// resolveTarget picks the launch target from the flag, then the defaults
// file, then spawn.
func resolveTarget(flagValue, defaultValue string) (launch.Target, error) {
	value := strings.TrimSpace(flagValue)
	if value == "" {
		value = strings.TrimSpace(defaultValue)
	}
	return launch.ParseTarget(value)
}
