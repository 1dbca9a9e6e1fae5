package registry

import (
	"context"
	"fmt"
	"testing"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
)

type stubInspector struct {
	state gitcmd.State
	err   error
	calls int
}

func (s *stubInspector) Inspect(ctx context.Context, path string) (gitcmd.State, error) {
	s.calls++
	return s.state, s.err
}

func (s *stubInspector) BranchExists(ctx context.Context, dir, branch string) (bool, error) {
	return false, nil
}

func TestProjectMissingPath(t *testing.T) {
	inspector := &stubInspector{}
	proj := Project(context.Background(), "gone", Entry{Path: "/definitely/not/here"}, inspector)
	if proj.Status != StatusMissing {
		t.Fatalf("status = %q, want %q", proj.Status, StatusMissing)
	}
	if proj.Dirty != nil || proj.Ahead != nil || proj.Behind != nil || proj.Upstream != nil {
		t.Fatalf("missing path must leave git state unknown: %#v", proj)
	}
	if inspector.calls != 0 {
		t.Fatalf("missing path must not be inspected")
	}
}

func TestProjectReadyWithState(t *testing.T) {
	dir := t.TempDir()
	inspector := &stubInspector{state: gitcmd.State{Dirty: true, Ahead: 2, Behind: 1, Upstream: "origin/main"}}
	proj := Project(context.Background(), "ws", Entry{Path: dir, Branch: "wt/ws", Agent: "codex"}, inspector)
	if proj.Status != StatusReady {
		t.Fatalf("status = %q, want %q", proj.Status, StatusReady)
	}
	if proj.Dirty == nil || !*proj.Dirty {
		t.Fatalf("dirty = %v, want true", proj.Dirty)
	}
	if *proj.Ahead != 2 || *proj.Behind != 1 || *proj.Upstream != "origin/main" {
		t.Fatalf("state = ahead %d behind %d upstream %q", *proj.Ahead, *proj.Behind, *proj.Upstream)
	}
}

func TestProjectInspectionFailureDegrades(t *testing.T) {
	dir := t.TempDir()
	inspector := &stubInspector{err: fmt.Errorf("not a git repository")}
	proj := Project(context.Background(), "ws", Entry{Path: dir}, inspector)
	if proj.Status != StatusReady {
		t.Fatalf("status = %q, want %q", proj.Status, StatusReady)
	}
	if proj.Dirty != nil {
		t.Fatalf("failed inspection must yield unknown dirty state")
	}
}

func TestListSortedAndReadOnly(t *testing.T) {
	reg := Default()
	reg.Upsert("b", Entry{Path: "/missing/b"})
	reg.Upsert("a", Entry{Path: "/missing/a"})

	items := List(context.Background(), reg, &stubInspector{})
	if len(items) != 2 || items[0].Name != "a" || items[1].Name != "b" {
		t.Fatalf("items = %#v, want sorted [a b]", items)
	}
	if len(reg.Worktrees) != 2 {
		t.Fatalf("list mutated the registry")
	}
}
