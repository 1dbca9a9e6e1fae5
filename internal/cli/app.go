package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/domain/config"
	"github.com/agentwt/agentwt/internal/domain/registry"
	"github.com/agentwt/agentwt/internal/launch"
	"github.com/agentwt/agentwt/internal/ui"
)

// Run is the CLI entrypoint. It parses global flags, resolves the enclosing
// repository, and dispatches to a subcommand.
func Run() error {
	fs := flag.NewFlagSet("agentwt", flag.ContinueOnError)
	var noPrompt bool
	verboseFlag := envBool("AGENTWT_VERBOSE")
	var helpFlag bool
	var versionFlag bool
	fs.BoolVar(&noPrompt, "no-prompt", false, "disable interactive prompt")
	fs.BoolVar(&verboseFlag, "verbose", verboseFlag, "show detailed logs")
	fs.BoolVar(&verboseFlag, "v", verboseFlag, "show detailed logs")
	fs.BoolVar(&helpFlag, "help", false, "show help")
	fs.BoolVar(&helpFlag, "h", false, "show help")
	fs.BoolVar(&versionFlag, "version", false, "print version")
	fs.SetOutput(os.Stdout)
	fs.Usage = func() {
		printGlobalHelp(os.Stdout)
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	gitcmd.SetVerbose(verboseFlag)

	args := fs.Args()
	if versionFlag {
		printVersion(os.Stdout)
		return nil
	}
	if helpFlag {
		if len(args) > 0 && printCommandHelp(args[0], os.Stdout) {
			return nil
		}
		printGlobalHelp(os.Stdout)
		return nil
	}
	if len(args) == 0 {
		printGlobalHelp(os.Stdout)
		return nil
	}
	if args[0] == "help" {
		if len(args) > 1 && printCommandHelp(args[1], os.Stdout) {
			return nil
		}
		printGlobalHelp(os.Stdout)
		return nil
	}
	if args[0] == "version" {
		printVersion(os.Stdout)
		return nil
	}

	ctx := context.Background()
	switch args[0] {
	case "create":
		return runCreate(ctx, args[1:], noPrompt)
	case "run":
		return runRun(ctx, args[1:], noPrompt)
	case "ls":
		return runList(ctx, args[1:])
	case "info":
		return runInfo(ctx, args[1:])
	case "set":
		return runSet(ctx, args[1:])
	case "env":
		return runEnv(ctx, args[1:])
	case "rm":
		return runRemove(ctx, args[1:], noPrompt)
	case "prune":
		return runPrune(ctx, args[1:], noPrompt)
	case "git":
		return runGit(ctx, args[1:], noPrompt)
	case "open":
		return runOpen(ctx, args[1:], noPrompt)
	case "doctor":
		return runDoctor(ctx, args[1:])
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// repoState bundles everything a subcommand needs about the enclosing
// repository: its layout, the tracked worktrees, and the defaults file.
type repoState struct {
	repo     paths.Context
	reg      registry.Registry
	defaults config.Defaults
}

func loadRepoState(ctx context.Context) (repoState, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return repoState{}, err
	}
	repo, err := paths.Resolve(ctx, cwd)
	if err != nil {
		return repoState{}, err
	}
	defaults, err := config.Load(repo.DefaultsPath())
	if err != nil {
		return repoState{}, err
	}
	return repoState{
		repo:     repo,
		reg:      registry.Load(repo.ConfigPath()),
		defaults: defaults,
	}, nil
}

func (s repoState) save() error {
	return registry.Save(s.repo.ConfigPath(), s.reg)
}

func newLauncher() *launch.Launcher {
	return &launch.Launcher{
		Inspector: gitcmd.LiveInspector{},
		Bridge:    launch.OsascriptBridge{LookPath: exec.LookPath},
		LookPath:  exec.LookPath,
		Environ:   os.Environ(),
	}
}

func stdoutRenderer() (*ui.Renderer, ui.Theme, bool) {
	theme := ui.DefaultTheme()
	useColor := isatty.IsTerminal(os.Stdout.Fd())
	return ui.NewRenderer(os.Stdout, theme, useColor), theme, useColor
}

// pickWorktree resolves the name argument, falling back to an interactive
// selection when the terminal allows it.
func pickWorktree(title string, args []string, state repoState, noPrompt bool) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if noPrompt || !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", fmt.Errorf("worktree name is required without prompt")
	}
	names := state.reg.Names()
	if len(names) == 0 {
		return "", fmt.Errorf("no worktrees tracked, run: agentwt create <name>")
	}
	choices := make([]ui.WorktreeChoice, 0, len(names))
	for _, name := range names {
		entry := state.reg.Worktrees[name]
		choices = append(choices, ui.WorktreeChoice{
			Name:   name,
			Branch: entry.Branch,
			Agent:  entry.Agent,
		})
	}
	theme := ui.DefaultTheme()
	useColor := isatty.IsTerminal(os.Stdout.Fd())
	return ui.PromptWorktree(title, choices, theme, useColor)
}

func startSteps(renderer *ui.Renderer) {
	if renderer == nil {
		return
	}
	renderer.Section("Steps")
}

func envBool(key string) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return false
	}
	switch strings.ToLower(val) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
