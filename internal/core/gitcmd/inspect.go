package gitcmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// State is the observed git state of a single worktree.
type State struct {
	Dirty    bool
	Ahead    int
	Behind   int
	Upstream string
}

// Inspector reports live git state for tracked worktrees. Callers that only
// need a best-effort answer treat errors as "unknown"; the launch dirty gate
// treats them as fatal because it needs a definite answer.
type Inspector interface {
	Inspect(ctx context.Context, path string) (State, error)
	BranchExists(ctx context.Context, dir, branch string) (bool, error)
}

// LiveInspector runs real git commands.
type LiveInspector struct{}

func (LiveInspector) Inspect(ctx context.Context, path string) (State, error) {
	res, err := Run(ctx, []string{"status", "--porcelain"}, Options{Dir: path})
	if err != nil {
		if strings.TrimSpace(res.Stderr) != "" {
			return State{}, fmt.Errorf("inspect worktree %s: %s", path, strings.TrimSpace(res.Stderr))
		}
		return State{}, fmt.Errorf("inspect worktree %s: %w", path, err)
	}
	state := State{Dirty: strings.TrimSpace(res.Stdout) != ""}

	upstream, err := Run(ctx, []string{"rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{u}"}, Options{Dir: path})
	if err != nil {
		// No upstream configured; ahead/behind stay zero.
		return state, nil
	}
	state.Upstream = strings.TrimSpace(upstream.Stdout)
	if state.Upstream == "" {
		return state, nil
	}

	counts, err := Run(ctx, []string{"rev-list", "--left-right", "--count", "HEAD..." + state.Upstream}, Options{Dir: path})
	if err != nil {
		return state, nil
	}
	fields := strings.Fields(counts.Stdout)
	if len(fields) == 2 {
		behind, errBehind := strconv.Atoi(fields[0])
		ahead, errAhead := strconv.Atoi(fields[1])
		if errBehind == nil && errAhead == nil {
			state.Behind = behind
			state.Ahead = ahead
		}
	}
	return state, nil
}

func (LiveInspector) BranchExists(ctx context.Context, dir, branch string) (bool, error) {
	if strings.TrimSpace(branch) == "" {
		return false, fmt.Errorf("branch name is required")
	}
	res, err := Run(ctx, []string{"show-ref", "--verify", "--quiet", "refs/heads/" + branch}, Options{Dir: dir})
	if err != nil {
		if res.ExitCode == 1 {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
