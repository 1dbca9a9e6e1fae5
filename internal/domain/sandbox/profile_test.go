package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func fakeLookPath(t *testing.T) LookPath {
	t.Helper()
	return func(name string) (string, error) {
		if name != HelperName {
			return "", fmt.Errorf("unexpected lookup: %s", name)
		}
		return "/usr/bin/" + name, nil
	}
}

func missingLookPath(name string) (string, error) {
	return "", fmt.Errorf("%s not found", name)
}

func TestBuildProfileDeterministic(t *testing.T) {
	first := BuildProfile("/work/tree", "/repo/.git", false, []string{"/extra"})
	second := BuildProfile("/work/tree", "/repo/.git", false, []string{"/extra"})
	if first != second {
		t.Fatalf("profile body differs between calls")
	}
	if !strings.Contains(first, "(allow network*)") {
		t.Fatalf("default profile should allow network:\n%s", first)
	}
	if !strings.Contains(first, `(allow file-write* (subpath "/work/tree"))`) {
		t.Fatalf("profile missing worktree write allow:\n%s", first)
	}
	if !strings.Contains(first, `(subpath "/extra")`) {
		t.Fatalf("profile missing extra write allow:\n%s", first)
	}
}

func TestBuildProfileDenyNetwork(t *testing.T) {
	body := BuildProfile("/w", "/c", true, nil)
	if strings.Contains(body, "(allow network*)") {
		t.Fatalf("deny_network profile must not allow network:\n%s", body)
	}
	if !strings.HasPrefix(body, "(version 1)\n(deny default)\n") {
		t.Fatalf("profile missing deny-by-default preamble:\n%s", body)
	}
}

func TestBuildProfileEscapesPaths(t *testing.T) {
	body := BuildProfile(`/odd"name`, `/back\slash`, false, nil)
	if !strings.Contains(body, `(subpath "/odd\"name")`) {
		t.Fatalf("quote not escaped:\n%s", body)
	}
	if !strings.Contains(body, `(subpath "/back\\slash")`) {
		t.Fatalf("backslash not escaped:\n%s", body)
	}
}

func TestResolveDisabled(t *testing.T) {
	got, err := Resolve(Policy{}, "wt", "/w", "/c", t.TempDir(), missingLookPath)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "" {
		t.Fatalf("disabled policy resolved to %q, want empty", got)
	}
}

func TestResolveRequiresHelper(t *testing.T) {
	_, err := Resolve(Policy{Enabled: true}, "wt", "/w", "/c", t.TempDir(), missingLookPath)
	if err == nil || !strings.Contains(err.Error(), HelperName) {
		t.Fatalf("expected missing helper error, got %v", err)
	}
}

func TestResolveProfileOverride(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "custom.sb")
	if err := os.WriteFile(override, []byte("(version 1)\n"), 0o644); err != nil {
		t.Fatalf("write override: %v", err)
	}

	got, err := Resolve(Policy{Enabled: true, Profile: override}, "wt", "/w", "/c", dir, fakeLookPath(t))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != override {
		t.Fatalf("resolved = %q, want override %q", got, override)
	}
	if entries, err := os.ReadDir(dir); err != nil || len(entries) != 1 {
		t.Fatalf("override must skip generation, dir has %v (%v)", entries, err)
	}
}

func TestResolveProfileOverrideMissing(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "nope.sb")
	_, err := Resolve(Policy{Enabled: true, Profile: missing}, "wt", "/w", "/c", dir, fakeLookPath(t))
	if err == nil || !strings.Contains(err.Error(), missing) {
		t.Fatalf("expected missing profile error, got %v", err)
	}
}

func TestResolveMaterializesOnce(t *testing.T) {
	profileDir := filepath.Join(t.TempDir(), "sandbox")
	policy := Policy{Enabled: true, Write: []string{"/extra"}}

	first, err := Resolve(policy, "feature", "/w", "/c", profileDir, fakeLookPath(t))
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if filepath.Base(first) != "feature.sb" {
		t.Fatalf("profile file = %q, want feature.sb", first)
	}

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(first, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	second, err := Resolve(policy, "feature", "/w", "/c", profileDir, fakeLookPath(t))
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second != first {
		t.Fatalf("resolve not stable: %q != %q", second, first)
	}
	info, err := os.Stat(first)
	if err != nil {
		t.Fatalf("stat profile: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Fatalf("identical content rewrote the profile (mtime %v)", info.ModTime())
	}

	// Changed policy content must rewrite.
	policy.DenyNetwork = true
	if _, err := Resolve(policy, "feature", "/w", "/c", profileDir, fakeLookPath(t)); err != nil {
		t.Fatalf("third resolve: %v", err)
	}
	info, err = os.Stat(first)
	if err != nil {
		t.Fatalf("stat profile: %v", err)
	}
	if info.ModTime().Equal(past) {
		t.Fatalf("changed content did not rewrite the profile")
	}
}
