package gitcmd

import (
	"context"
	"fmt"
	"strings"
)

// WorktreeAddExistingBranch adds a worktree attached to an existing branch.
func WorktreeAddExistingBranch(ctx context.Context, dir, path, branch string) error {
	res, err := Run(ctx, []string{"worktree", "add", path, branch}, Options{Dir: dir, ShowOutput: true})
	if err != nil {
		if strings.TrimSpace(res.Stderr) != "" {
			return fmt.Errorf("git worktree add failed: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return fmt.Errorf("git worktree add failed: %w", err)
	}
	return nil
}

// WorktreeAddNewBranch adds a worktree with a new branch from baseRef.
func WorktreeAddNewBranch(ctx context.Context, dir, branch, path, baseRef string) error {
	res, err := Run(ctx, []string{"worktree", "add", "-b", branch, path, baseRef}, Options{Dir: dir, ShowOutput: true})
	if err != nil {
		if strings.TrimSpace(res.Stderr) != "" {
			return fmt.Errorf("git worktree add failed: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return fmt.Errorf("git worktree add failed: %w", err)
	}
	return nil
}

// WorktreeRemove removes a worktree.
func WorktreeRemove(ctx context.Context, dir, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = []string{"worktree", "remove", "--force", path}
	}
	res, err := Run(ctx, args, Options{Dir: dir})
	if err != nil {
		if strings.TrimSpace(res.Stderr) != "" {
			return fmt.Errorf("git worktree remove failed: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return fmt.Errorf("git worktree remove failed: %w", err)
	}
	return nil
}

// BranchDelete force-deletes a local branch.
func BranchDelete(ctx context.Context, dir, branch string) error {
	res, err := Run(ctx, []string{"branch", "-D", branch}, Options{Dir: dir})
	if err != nil {
		if strings.TrimSpace(res.Stderr) != "" {
			return fmt.Errorf("git branch -D failed: %w: %s", err, strings.TrimSpace(res.Stderr))
		}
		return fmt.Errorf("git branch -D failed: %w", err)
	}
	return nil
}
