package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentwt/agentwt/internal/core/paths"
)

// HelperName is the host binary that interprets generated profiles.
const HelperName = "sandbox-exec"

// LookPath resolves a binary on the host PATH. Injected so tests can fake
// helper availability.
type LookPath func(name string) (string, error)

// Resolve turns a policy into the profile file to launch with. It returns
// the empty string when sandboxing is disabled. A caller-supplied profile
// override is validated and returned untouched; otherwise the profile body
// is generated and materialized under profileDir, skipping the write when
// the on-disk content is already byte-identical.
func Resolve(policy Policy, name, workspacePath, commonDir, profileDir string, lookPath LookPath) (string, error) {
	policy = Normalize(policy)
	if !policy.Enabled {
		return "", nil
	}
	if _, err := lookPath(HelperName); err != nil {
		return "", fmt.Errorf("%s is required for sandboxed launches", HelperName)
	}

	if policy.Profile != "" {
		profilePath, err := paths.Absolutize(policy.Profile)
		if err != nil {
			return "", err
		}
		exists, err := paths.FileExists(profilePath)
		if err != nil {
			return "", err
		}
		if !exists {
			return "", fmt.Errorf("sandbox profile does not exist: %s", profilePath)
		}
		return profilePath, nil
	}

	body := BuildProfile(workspacePath, commonDir, policy.DenyNetwork, policy.Write)
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		return "", fmt.Errorf("create sandbox profile dir: %w", err)
	}
	profilePath := filepath.Join(profileDir, name+".sb")
	if existing, err := os.ReadFile(profilePath); err == nil && string(existing) == body {
		// Identical content: leave mtime alone so repeated launches do not
		// trigger file watchers.
		return profilePath, nil
	}
	if err := os.WriteFile(profilePath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write sandbox profile: %w", err)
	}
	return profilePath, nil
}

// BuildProfile renders the deterministic SBPL body: deny by default, allow
// the process primitives an agent needs, optionally allow network, and allow
// writes to the worktree, the repo state dir, the standard temp dirs, and
// any extra paths from the policy.
func BuildProfile(workspacePath, commonDir string, denyNetwork bool, extraWrites []string) string {
	allowWrites := []string{
		workspacePath,
		commonDir,
		"/tmp",
		"/private/tmp",
		"/var/folders",
		"/private/var/folders",
	}
	allowWrites = append(allowWrites, extraWrites...)

	lines := []string{
		"(version 1)",
		"(deny default)",
		"(allow process*)",
		"(allow mach-lookup)",
		"(allow ipc-posix*)",
		"(allow sysctl-read)",
		"(allow file-read*)",
	}
	if !denyNetwork {
		lines = append(lines, "(allow network*)")
	}
	for _, path := range allowWrites {
		lines = append(lines, fmt.Sprintf(`(allow file-write* (subpath "%s"))`, escapeString(path)))
	}
	return strings.Join(lines, "\n") + "\n"
}

// escapeString escapes a path for embedding in an SBPL string literal.
func escapeString(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `"`, `\"`)
}
