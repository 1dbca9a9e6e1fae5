package doctor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/agentwt/agentwt/internal/core/paths"
)

func TestParseGitVersion(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"git version 2.39.3 (Apple Git-146)", "2.39.3", true},
		{"git version 2.20", "2.20.0", true},
		{"no digits here", "", false},
	}
	for _, tc := range cases {
		got, ok := parseGitVersion(tc.in)
		if ok != tc.ok {
			t.Fatalf("parseGitVersion(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got.String() != tc.want {
			t.Fatalf("parseGitVersion(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestGitVersionLess(t *testing.T) {
	old := gitVersion{major: 2, minor: 19, patch: 5}
	if !old.Less(minGitVersion) {
		t.Fatalf("2.19.5 should be less than %s", minGitVersion)
	}
	if minGitVersion.Less(minGitVersion) {
		t.Fatalf("version must not be less than itself")
	}
}

func TestCheckMissingHelpersWarn(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	repo := paths.Context{Root: t.TempDir(), CommonDir: t.TempDir()}
	lookPath := func(name string) (string, error) {
		if name == "git" {
			return exec.LookPath(name)
		}
		return "", fmt.Errorf("%s not found", name)
	}
	result, err := Check(context.Background(), repo, lookPath)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var sawSandbox, sawOsascript bool
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "sandbox-exec") {
			sawSandbox = true
		}
		if strings.Contains(warning, "osascript") {
			sawOsascript = true
		}
	}
	if !sawSandbox || !sawOsascript {
		t.Fatalf("expected helper warnings, got %v", result.Warnings)
	}
}

func TestCheckReportsCorruptRegistry(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	common := t.TempDir()
	repo := paths.Context{Root: t.TempDir(), CommonDir: common}
	if err := os.MkdirAll(filepath.Dir(repo.ConfigPath()), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(repo.ConfigPath(), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	result, err := Check(context.Background(), repo, nil)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var found bool
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "corrupt") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected corrupt registry warning, got %v", result.Warnings)
	}
}
