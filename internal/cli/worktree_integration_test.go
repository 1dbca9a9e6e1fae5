package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/domain/registry"
)

func setupRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "gitconfig")
	configData := "[user]\n\tname = test\n\temail = test@example.com\n"
	if err := os.WriteFile(configPath, []byte(configData), 0o644); err != nil {
		t.Fatalf("write gitconfig: %v", err)
	}
	t.Setenv("GIT_CONFIG_GLOBAL", configPath)
	t.Setenv("GIT_CONFIG_SYSTEM", "/dev/null")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	repoDir := filepath.Join(tmp, "repo")
	runTestGit(t, "", "init", repoDir)
	runTestGit(t, repoDir, "checkout", "-b", "main")
	if err := os.WriteFile(filepath.Join(repoDir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatalf("write seed file: %v", err)
	}
	runTestGit(t, repoDir, "add", ".")
	runTestGit(t, repoDir, "commit", "-m", "init")
	return repoDir
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the original one at test cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(orig); err != nil {
			t.Errorf("restore wd %s: %v", orig, err)
		}
	})
}

func runTestGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Env = os.Environ()
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("git %s failed: %v\nstderr:\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String())
}

func trackedEntry(t *testing.T, ctx context.Context, name string) registry.Entry {
	t.Helper()
	state, err := loadRepoState(ctx)
	if err != nil {
		t.Fatalf("load repo state: %v", err)
	}
	entry, err := state.reg.Get(name)
	if err != nil {
		t.Fatalf("get %s: %v", name, err)
	}
	return entry
}

func TestRemovePruneDeletesPathAndBranch(t *testing.T) {
	repo := setupRepo(t)
	chdir(t, repo)
	ctx := context.Background()

	if err := runCreate(ctx, []string{"feature"}, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	entry := trackedEntry(t, ctx, "feature")
	if exists, err := paths.DirExists(entry.Path); err != nil || !exists {
		t.Fatalf("worktree path should exist after create: %v", err)
	}

	if err := runRemove(ctx, []string{"--prune", "feature"}, true); err != nil {
		t.Fatalf("rm --prune: %v", err)
	}

	if exists, err := paths.DirExists(entry.Path); err != nil || exists {
		t.Fatalf("worktree path should be deleted by --prune (exists=%v, err=%v)", exists, err)
	}
	branchExists, err := gitcmd.LiveInspector{}.BranchExists(ctx, repo, entry.Branch)
	if err != nil {
		t.Fatalf("branch exists: %v", err)
	}
	if branchExists {
		t.Fatalf("branch %s should be deleted by --prune", entry.Branch)
	}
	state, err := loadRepoState(ctx)
	if err != nil {
		t.Fatalf("load repo state: %v", err)
	}
	if _, ok := state.reg.Worktrees["feature"]; ok {
		t.Fatalf("entry should be untracked after rm")
	}
}

func TestOpenMissingPathFailsBeforeDispatch(t *testing.T) {
	repo := setupRepo(t)
	chdir(t, repo)
	ctx := context.Background()

	if err := runCreate(ctx, []string{"ghost"}, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	entry := trackedEntry(t, ctx, "ghost")
	if err := os.RemoveAll(entry.Path); err != nil {
		t.Fatalf("remove worktree dir: %v", err)
	}

	err := runOpen(ctx, []string{"--launch", "terminal", "ghost"}, true)
	if err == nil {
		t.Fatalf("open should fail for a missing worktree path")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected missing-path error before dispatch, got: %v", err)
	}
}

func TestPruneBranchDeleteFailureIsFatalWithoutForce(t *testing.T) {
	repo := setupRepo(t)
	chdir(t, repo)
	ctx := context.Background()

	if err := runCreate(ctx, []string{"stale"}, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	entry := trackedEntry(t, ctx, "stale")
	if err := os.RemoveAll(entry.Path); err != nil {
		t.Fatalf("remove worktree dir: %v", err)
	}

	// The branch is still registered to the (now missing) worktree, so
	// git refuses to delete it.
	err := runPrune(ctx, []string{"--delete-branch"}, true)
	if err == nil {
		t.Fatalf("prune --delete-branch should fail when git branch -D fails")
	}
	if !strings.Contains(err.Error(), "branch -D") {
		t.Fatalf("expected branch delete failure, got: %v", err)
	}
}

func TestPruneBranchDeleteFailureWarnsWithForce(t *testing.T) {
	repo := setupRepo(t)
	chdir(t, repo)
	ctx := context.Background()

	if err := runCreate(ctx, []string{"stale"}, true); err != nil {
		t.Fatalf("create: %v", err)
	}
	entry := trackedEntry(t, ctx, "stale")
	if err := os.RemoveAll(entry.Path); err != nil {
		t.Fatalf("remove worktree dir: %v", err)
	}

	if err := runPrune(ctx, []string{"--delete-branch", "--force"}, true); err != nil {
		t.Fatalf("prune --force should degrade branch delete failures: %v", err)
	}
	state, err := loadRepoState(ctx)
	if err != nil {
		t.Fatalf("load repo state: %v", err)
	}
	if _, ok := state.reg.Worktrees["stale"]; ok {
		t.Fatalf("stale entry should be dropped")
	}
}
