package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/agentwt/agentwt/internal/infra/output"
	"github.com/agentwt/agentwt/internal/launch"
)

func runRun(ctx context.Context, args []string, noPrompt bool) error {
	runFlags := flag.NewFlagSet("run", flag.ContinueOnError)
	var agentFlag string
	var cmdFlag string
	var noWait bool
	var launchFlag string
	var allowDirty bool
	var helpFlag bool
	runFlags.StringVar(&agentFlag, "agent", "", "override the bound agent")
	runFlags.StringVar(&cmdFlag, "cmd", "", "override the launch command")
	runFlags.BoolVar(&noWait, "no-wait", false, "do not wait for the agent to exit")
	runFlags.StringVar(&launchFlag, "launch", "", "launch target")
	runFlags.BoolVar(&allowDirty, "allow-dirty", false, "launch even with uncommitted changes")
	runFlags.BoolVar(&helpFlag, "help", false, "show help")
	runFlags.BoolVar(&helpFlag, "h", false, "show help")
	sandboxFlags := registerSandboxFlags(runFlags)
	runFlags.SetOutput(os.Stdout)
	runFlags.Usage = func() {
		printRunHelp(os.Stdout)
	}
	if err := runFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printRunHelp(os.Stdout)
		return nil
	}
	if runFlags.NArg() > 1 {
		return fmt.Errorf("usage: agentwt run [<name>] [flags]")
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	name, err := pickWorktree("agentwt run", runFlags.Args(), state, noPrompt)
	if err != nil {
		return err
	}

	target, err := resolveTarget(launchFlag, state.defaults.DefaultLaunch)
	if err != nil {
		return err
	}

	launcher := newLauncher()
	req, err := launcher.Prepare(ctx, state.reg, state.repo, state.defaults, launch.Options{
		Name:       name,
		Agent:      agentFlag,
		Command:    cmdFlag,
		Target:     target,
		Wait:       !noWait && target.Kind == launch.TargetSpawn,
		AllowDirty: allowDirty,
		Sandbox:    sandboxFlags.overrides(),
	})
	if err != nil {
		return err
	}

	renderer, _, _ := stdoutRenderer()
	output.SetStepLogger(renderer)
	defer output.SetStepLogger(nil)

	startSteps(renderer)
	output.Stepf("launch %s (%s)", req.Agent, req.Target)
	output.Log(req.Command)
	if req.Profile != "" {
		output.Logf("sandbox profile: %s", req.Profile)
	}
	renderer.Blank()

	cmd, err := launcher.Dispatch(ctx, req)
	if err != nil {
		return err
	}
	renderer.Section("Result")
	switch {
	case cmd != nil && !req.Wait:
		renderer.Bullet(fmt.Sprintf("%s started (pid %d)", name, cmd.Process.Pid))
	case req.Target.Kind == launch.TargetApp:
		renderer.Bullet(fmt.Sprintf("%s session opened in %s", name, req.Target.App))
	default:
		renderer.Bullet(fmt.Sprintf("%s finished", name))
	}
	return nil
}
