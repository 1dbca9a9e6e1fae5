package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

type Issue struct {
	Kind    string
	Message string
}

type Result struct {
	Issues   []Issue
	Warnings []string
	Details  []string
}

type gitVersion struct {
	major int
	minor int
	patch int
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) Less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

// Worktrees need git >= 2.20 for reliable `worktree remove`.
var minGitVersion = gitVersion{major: 2, minor: 20, patch: 0}
var gitVersionPattern = regexp.MustCompile(`\b(\d+)\.(\d+)(?:\.(\d+))?`)

// Check reports host capabilities and repo state health. LookPath is
// injectable for tests; nil means exec.LookPath.
func Check(ctx context.Context, repo paths.Context, lookPath sandbox.LookPath) (Result, error) {
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	result := Result{
		Details: []string{
			fmt.Sprintf("os: %s/%s", runtime.GOOS, runtime.GOARCH),
			fmt.Sprintf("minimum git version: %s", minGitVersion.String()),
		},
	}

	if runtime.GOOS != "darwin" {
		result.Warnings = append(result.Warnings,
			"sandbox and terminal launch targets are macOS-only; spawn works everywhere")
	}

	checkGit(ctx, lookPath, &result)
	checkHelper(lookPath, sandbox.HelperName, "sandboxed launches (--sandbox) will fail", &result)
	checkHelper(lookPath, "osascript", "terminal/iterm launch targets will fail", &result)
	checkRegistry(repo, &result)

	return result, nil
}

func checkGit(ctx context.Context, lookPath sandbox.LookPath, result *Result) {
	gitPath, err := lookPath("git")
	if err != nil {
		result.Issues = append(result.Issues, Issue{
			Kind:    "missing_dependency",
			Message: "git not found in PATH",
		})
		result.Details = append(result.Details, "git: not found")
		return
	}
	result.Details = append(result.Details, fmt.Sprintf("git path: %s", gitPath))

	versionOutput, err := readGitVersion(ctx)
	if err != nil {
		result.Issues = append(result.Issues, Issue{
			Kind:    "git_version_check_failed",
			Message: err.Error(),
		})
		result.Details = append(result.Details, "git version: unknown")
		return
	}
	result.Details = append(result.Details, fmt.Sprintf("git version: %s", versionOutput))

	parsed, ok := parseGitVersion(versionOutput)
	if !ok {
		result.Issues = append(result.Issues, Issue{
			Kind:    "invalid_git_version",
			Message: fmt.Sprintf("unable to parse git version: %s", versionOutput),
		})
		return
	}
	if parsed.Less(minGitVersion) {
		result.Issues = append(result.Issues, Issue{
			Kind:    "git_version_too_old",
			Message: fmt.Sprintf("git %s is older than required %s", parsed.String(), minGitVersion.String()),
		})
	}
}

func checkHelper(lookPath sandbox.LookPath, name, consequence string, result *Result) {
	path, err := lookPath(name)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s not found in PATH; %s", name, consequence))
		result.Details = append(result.Details, fmt.Sprintf("%s: not found", name))
		return
	}
	result.Details = append(result.Details, fmt.Sprintf("%s path: %s", name, path))
}

// checkRegistry surfaces a corrupt registry file as a warning. Registry
// loading itself degrades silently to keep recovery commands usable; doctor
// is where the corruption becomes visible.
func checkRegistry(repo paths.Context, result *Result) {
	path := repo.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Details = append(result.Details, "registry: not created yet")
			return
		}
		result.Warnings = append(result.Warnings, fmt.Sprintf("registry unreadable: %v", err))
		return
	}
	var probe map[string]any
	if err := json.Unmarshal(data, &probe); err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("registry file is corrupt and loads as empty (%s); re-create entries or restore the file", path))
		return
	}
	result.Details = append(result.Details, fmt.Sprintf("registry: %s", path))
}

func readGitVersion(ctx context.Context) (string, error) {
	res, err := gitcmd.Run(ctx, []string{"version"}, gitcmd.Options{})
	if err != nil {
		if strings.TrimSpace(res.Stderr) != "" {
			return "", fmt.Errorf("git version failed: %s", strings.TrimSpace(res.Stderr))
		}
		return "", fmt.Errorf("git version failed: %w", err)
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		out = strings.TrimSpace(res.Stderr)
	}
	if out == "" {
		return "", fmt.Errorf("git version returned no output")
	}
	return out, nil
}

func parseGitVersion(output string) (gitVersion, bool) {
	matches := gitVersionPattern.FindStringSubmatch(output)
	if len(matches) < 3 {
		return gitVersion{}, false
	}
	major, err := strconv.Atoi(matches[1])
	if err != nil {
		return gitVersion{}, false
	}
	minor, err := strconv.Atoi(matches[2])
	if err != nil {
		return gitVersion{}, false
	}
	patch := 0
	if len(matches) > 3 && matches[3] != "" {
		patch, err = strconv.Atoi(matches[3])
		if err != nil {
			return gitVersion{}, false
		}
	}
	return gitVersion{major: major, minor: minor, patch: patch}, true
}
