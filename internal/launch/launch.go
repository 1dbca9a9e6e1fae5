package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/domain/agent"
	"github.com/agentwt/agentwt/internal/domain/config"
	"github.com/agentwt/agentwt/internal/domain/registry"
	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

// Launcher gates, prepares, and dispatches agent processes. All host
// capabilities are injected so the pipeline is testable without touching
// process-global state.
type Launcher struct {
	Inspector gitcmd.Inspector
	Bridge    Bridge
	LookPath  sandbox.LookPath
	// Environ is the ambient environment snapshot merged under each
	// entry's env map.
	Environ []string

	// Stdio for spawned children; nil falls back to the process stdio.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Options are the per-invocation knobs for one launch.
type Options struct {
	Name       string
	Agent      string
	Command    string
	Target     Target
	Wait       bool
	AllowDirty bool
	Sandbox    sandbox.Overrides
}

// Request is the fully resolved plan for one launch, built by Prepare and
// consumed by Dispatch. Constructed fresh per invocation, never persisted.
type Request struct {
	Name    string
	Path    string
	Agent   agent.Agent
	Command string
	Env     map[string]string
	Profile string
	Target  Target
	Wait    bool
}

// ExitCodeError propagates a spawned agent's nonzero exit status as the
// command's own termination status.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string {
	return fmt.Sprintf("agent exited with status %d", e.Code)
}

// Prepare resolves entry, agent, command, and sandbox profile, and runs the
// dirty gate. It performs no dispatch: a failed Prepare never spawns a
// process or scripts a terminal.
func (l *Launcher) Prepare(ctx context.Context, reg registry.Registry, repo paths.Context, defaults config.Defaults, opts Options) (Request, error) {
	entry, err := reg.Get(opts.Name)
	if err != nil {
		return Request{}, err
	}

	agentLabel := firstNonEmpty(opts.Agent, entry.Agent, defaults.DefaultAgent, string(agent.Codex))
	resolvedAgent, err := agent.Parse(agentLabel)
	if err != nil {
		return Request{}, err
	}

	worktreePath := entry.Path
	exists, err := paths.DirExists(worktreePath)
	if err != nil {
		return Request{}, err
	}
	if !exists {
		return Request{}, fmt.Errorf("configured worktree path does not exist: %s", worktreePath)
	}

	command := firstNonEmpty(opts.Command, entry.Command, defaults.Command(resolvedAgent), agent.DefaultCommand(resolvedAgent, l.Environ))
	if strings.TrimSpace(command) == "" {
		return Request{}, fmt.Errorf("no command specified for this agent, provide one with --cmd")
	}

	if !opts.AllowDirty {
		state, err := l.Inspector.Inspect(ctx, worktreePath)
		if err != nil {
			return Request{}, fmt.Errorf("dirty check failed: %w", err)
		}
		if state.Dirty {
			return Request{}, fmt.Errorf("worktree %q has uncommitted changes, commit/stash or re-run with --allow-dirty", opts.Name)
		}
	}

	policy, err := sandbox.Apply(entry.Sandbox, opts.Sandbox)
	if err != nil {
		return Request{}, err
	}
	profile, err := sandbox.Resolve(policy, opts.Name, worktreePath, repo.CommonDir, repo.ProfileDir(), l.lookPath())
	if err != nil {
		return Request{}, err
	}

	return Request{
		Name:    opts.Name,
		Path:    worktreePath,
		Agent:   resolvedAgent,
		Command: command,
		Env:     entry.Env,
		Profile: profile,
		Target:  opts.Target,
		Wait:    opts.Wait,
	}, nil
}

// Dispatch executes a prepared request. For spawn with wait it blocks until
// the child exits and reports a nonzero status as ExitCodeError; for spawn
// without wait it returns the running process. App targets return right
// after the bridge accepts the payload.
func (l *Launcher) Dispatch(ctx context.Context, req Request) (*exec.Cmd, error) {
	switch req.Target.Kind {
	case TargetApp:
		if l.Bridge == nil {
			return nil, fmt.Errorf("no scripting bridge available for launch target %q", req.Target)
		}
		snippet := ShellSnippet(req.Path, req.Command, req.Env)
		snippet = sandbox.Wrap(snippet, req.Profile)
		if err := l.Bridge.Run(ctx, req.Target.App, snippet); err != nil {
			return nil, err
		}
		return nil, nil
	case TargetSpawn:
		command := sandbox.Wrap(req.Command, req.Profile)
		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
		cmd.Dir = req.Path
		cmd.Env = MergeEnviron(l.Environ, req.Env)
		cmd.Stdin = l.stdin()
		cmd.Stdout = l.stdout()
		cmd.Stderr = l.stderr()
		if !req.Wait {
			if err := cmd.Start(); err != nil {
				return nil, fmt.Errorf("start agent: %w", err)
			}
			return cmd, nil
		}
		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return nil, ExitCodeError{Code: exitErr.ExitCode()}
			}
			return nil, fmt.Errorf("run agent: %w", err)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported launch target %q", req.Target)
	}
}

// Launch runs the full pipeline.
func (l *Launcher) Launch(ctx context.Context, reg registry.Registry, repo paths.Context, defaults config.Defaults, opts Options) (*exec.Cmd, error) {
	req, err := l.Prepare(ctx, reg, repo, defaults, opts)
	if err != nil {
		return nil, err
	}
	return l.Dispatch(ctx, req)
}

// MergeEnviron layers an entry's env map over the ambient snapshot,
// last-write-wins, and returns a deterministic sorted environment.
func MergeEnviron(ambient []string, extra map[string]string) []string {
	merged := make(map[string]string, len(ambient)+len(extra))
	for _, kv := range ambient {
		if idx := strings.IndexByte(kv, '='); idx >= 0 {
			merged[kv[:idx]] = kv[idx+1:]
		}
	}
	for key, value := range extra {
		merged[key] = value
	}
	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key+"="+merged[key])
	}
	return out
}

func (l *Launcher) lookPath() sandbox.LookPath {
	if l.LookPath != nil {
		return l.LookPath
	}
	return exec.LookPath
}

func (l *Launcher) stdin() io.Reader {
	if l.Stdin != nil {
		return l.Stdin
	}
	return os.Stdin
}

func (l *Launcher) stdout() io.Writer {
	if l.Stdout != nil {
		return l.Stdout
	}
	return os.Stdout
}

func (l *Launcher) stderr() io.Writer {
	if l.Stderr != nil {
		return l.Stderr
	}
	return os.Stderr
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
