package paths

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
)

const stateDirName = "agentwt"

// Context locates the enclosing repository. CommonDir is shared by all
// worktrees of the repository, so per-repo state lives under it.
type Context struct {
	Root      string
	CommonDir string
}

// Resolve discovers the repository the current directory belongs to.
func Resolve(ctx context.Context, cwd string) (Context, error) {
	root, err := gitcmd.Run(ctx, []string{"rev-parse", "--show-toplevel"}, gitcmd.Options{Dir: cwd})
	if err != nil {
		return Context{}, fmt.Errorf("agentwt must be run inside a git repository with worktree support: %w", err)
	}
	common, err := gitcmd.Run(ctx, []string{"rev-parse", "--git-common-dir"}, gitcmd.Options{Dir: cwd})
	if err != nil {
		return Context{}, fmt.Errorf("agentwt must be run inside a git repository with worktree support: %w", err)
	}

	rootDir := strings.TrimSpace(root.Stdout)
	commonDir := strings.TrimSpace(common.Stdout)
	if !filepath.IsAbs(commonDir) {
		commonDir = filepath.Join(rootDir, commonDir)
	}
	return Context{Root: rootDir, CommonDir: filepath.Clean(commonDir)}, nil
}

// ConfigPath is the registry file for the repository.
func (c Context) ConfigPath() string {
	return filepath.Join(c.CommonDir, stateDirName, "config.json")
}

// DefaultsPath is the optional repo-level defaults file.
func (c Context) DefaultsPath() string {
	return filepath.Join(c.CommonDir, stateDirName, "agentwt.yaml")
}

// ProfileDir holds generated sandbox profiles.
func (c Context) ProfileDir() string {
	return filepath.Join(c.CommonDir, stateDirName, "sandbox")
}

// DefaultWorktreePath places a worktree next to the repository checkout,
// named <repo>-<name>.
func DefaultWorktreePath(repoRoot, name string) string {
	base := filepath.Base(repoRoot)
	return filepath.Join(filepath.Dir(repoRoot), base+"-"+name)
}
