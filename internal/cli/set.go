package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/domain/agent"
	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

func runSet(ctx context.Context, args []string) error {
	setFlags := flag.NewFlagSet("set", flag.ContinueOnError)
	var agentFlag stringFlag
	var cmdFlag stringFlag
	var pathFlag stringFlag
	var helpFlag bool
	setFlags.Var(&agentFlag, "agent", "agent to bind")
	setFlags.Var(&cmdFlag, "cmd", "launch command")
	setFlags.Var(&pathFlag, "path", "worktree location")
	setFlags.BoolVar(&helpFlag, "help", false, "show help")
	setFlags.BoolVar(&helpFlag, "h", false, "show help")
	sandboxFlags := registerSandboxFlags(setFlags)
	setFlags.SetOutput(os.Stdout)
	setFlags.Usage = func() {
		printSetHelp(os.Stdout)
	}
	if err := setFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printSetHelp(os.Stdout)
		return nil
	}
	if setFlags.NArg() != 1 {
		return fmt.Errorf("usage: agentwt set <name> [flags]")
	}
	name := setFlags.Arg(0)

	if !agentFlag.set && !cmdFlag.set && !pathFlag.set && !sandboxFlags.touched() {
		return fmt.Errorf("nothing to change, pass at least one flag")
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	entry, err := state.reg.Get(name)
	if err != nil {
		return err
	}

	var changes []string
	if agentFlag.set {
		boundAgent, err := agent.Parse(agentFlag.value)
		if err != nil {
			return err
		}
		entry.Agent = string(boundAgent)
		changes = append(changes, fmt.Sprintf("agent=%s", boundAgent))
	}
	if cmdFlag.set {
		entry.Command = strings.TrimSpace(cmdFlag.value)
		if entry.Command == "" {
			changes = append(changes, "command cleared")
		} else {
			changes = append(changes, fmt.Sprintf("command=%s", entry.Command))
		}
	}
	if pathFlag.set {
		newPath, err := paths.Absolutize(pathFlag.value)
		if err != nil {
			return err
		}
		exists, err := paths.DirExists(newPath)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("path does not exist: %s", newPath)
		}
		entry.Path = newPath
		changes = append(changes, fmt.Sprintf("path=%s", newPath))
	}
	if sandboxFlags.touched() {
		policy, err := sandbox.Apply(entry.Sandbox, sandboxFlags.overrides())
		if err != nil {
			return err
		}
		entry.Sandbox = policy
		changes = append(changes, "sandbox updated")
	}

	state.reg.Upsert(name, entry)
	if err := state.save(); err != nil {
		return err
	}

	renderer, _, _ := stdoutRenderer()
	renderer.Section("Result")
	renderer.Bullet(fmt.Sprintf("%s updated (%s)", name, strings.Join(changes, ", ")))
	return nil
}
