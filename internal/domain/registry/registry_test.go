package registry

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

func TestLoadMissingFile(t *testing.T) {
	reg := Load(filepath.Join(t.TempDir(), "agentwt", "config.json"))
	if reg.Version != CurrentVersion {
		t.Fatalf("version = %d, want %d", reg.Version, CurrentVersion)
	}
	if len(reg.Worktrees) != 0 {
		t.Fatalf("expected empty registry, got %d entries", len(reg.Worktrees))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	reg := Load(path)
	if reg.Version != CurrentVersion || len(reg.Worktrees) != 0 {
		t.Fatalf("corrupt file must load as empty default, got %#v", reg)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	reg := Default()
	reg.Upsert("a", Entry{
		Path:      "/tmp/repo-a",
		Branch:    "wt/a",
		Base:      "main",
		Agent:     "codex",
		Command:   "codex --full-auto",
		Env:       map[string]string{"FOO": "bar"},
		Sandbox:   sandbox.Policy{Enabled: true, DenyNetwork: true, Write: []string{"/data"}},
		CreatedAt: "2026-08-31T10:00:00Z",
	})
	reg.Upsert("b", Entry{Path: "/tmp/repo-b", Branch: "wt/b", Base: "main", Agent: "claude"})

	if err := Save(path, reg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded := Load(path)
	if !reflect.DeepEqual(loaded, reg) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", loaded, reg)
	}

	b := loaded.Worktrees["b"]
	if b.Env == nil || len(b.Env) != 0 {
		t.Fatalf("empty env must normalize to {}, got %#v", b.Env)
	}
	if b.Sandbox.Write == nil {
		t.Fatalf("sandbox write set must normalize to empty slice")
	}
}

func TestLoadToleratesMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{"version":1,"worktrees":{"legacy":{"path":"/tmp/x","branch":"wt/x","base":"main","agent":"codex","command":""}}}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	reg := Load(path)
	entry, err := reg.Get("legacy")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if entry.Env == nil {
		t.Fatalf("missing env must normalize to {}")
	}
	if entry.Sandbox.Enabled || entry.Sandbox.Profile != "" || entry.Sandbox.DenyNetwork {
		t.Fatalf("missing sandbox must normalize to disabled defaults, got %#v", entry.Sandbox)
	}
	if entry.Sandbox.Write == nil {
		t.Fatalf("missing sandbox write must normalize to empty slice")
	}
}

func TestGetNotTracked(t *testing.T) {
	reg := Default()
	_, err := reg.Get("ghost")
	if err == nil {
		t.Fatalf("expected not-tracked error")
	}
	for _, want := range []string{"ghost", "agentwt create"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q should mention %q", err, want)
		}
	}
}

func TestPrune(t *testing.T) {
	reg := Default()
	reg.Upsert("keep", Entry{Path: "/tmp/keep"})
	reg.Upsert("drop1", Entry{Path: "/missing/1"})
	reg.Upsert("drop2", Entry{Path: "/missing/2"})

	removed := reg.Prune(func(name string, entry Entry) bool {
		return name == "keep"
	})
	if !reflect.DeepEqual(removed, []string{"drop1", "drop2"}) {
		t.Fatalf("removed = %v", removed)
	}
	if _, err := reg.Get("keep"); err != nil {
		t.Fatalf("keep entry was pruned: %v", err)
	}
	if len(reg.Worktrees) != 1 {
		t.Fatalf("worktrees = %v", reg.Names())
	}
}

func TestSaveUnwritableDirFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are bypassed")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	defer os.Chmod(dir, 0o755)
	err := Save(filepath.Join(dir, "sub", "config.json"), Default())
	if err == nil {
		t.Fatalf("expected write error for unwritable dir")
	}
}
