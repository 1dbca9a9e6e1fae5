package registry

import (
	"context"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/core/paths"
	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

const (
	StatusReady   = "ready"
	StatusMissing = "missing"
)

// Projection joins one entry with its live filesystem and git state. Git
// fields are pointers: nil means the state could not be observed, which is a
// valid answer for listing (the launch path re-checks with hard errors).
type Projection struct {
	Name      string            `json:"name"`
	Path      string            `json:"path"`
	Branch    string            `json:"branch"`
	Base      string            `json:"base"`
	Agent     string            `json:"agent"`
	Command   string            `json:"command"`
	Env       map[string]string `json:"env"`
	Sandbox   sandbox.Policy    `json:"sandbox"`
	CreatedAt string            `json:"createdAt"`
	Status    string            `json:"status"`
	Dirty     *bool             `json:"dirty,omitempty"`
	Ahead     *int              `json:"ahead,omitempty"`
	Behind    *int              `json:"behind,omitempty"`
	Upstream  *string           `json:"upstream,omitempty"`
}

// Project builds the read-only status view of one entry. Inspection failures
// and missing paths degrade to unknown git state.
func Project(ctx context.Context, name string, entry Entry, inspector gitcmd.Inspector) Projection {
	entry = normalizeEntry(entry)
	proj := Projection{
		Name:      name,
		Path:      entry.Path,
		Branch:    entry.Branch,
		Base:      entry.Base,
		Agent:     entry.Agent,
		Command:   entry.Command,
		Env:       entry.Env,
		Sandbox:   entry.Sandbox,
		CreatedAt: entry.CreatedAt,
		Status:    StatusMissing,
	}
	exists, err := paths.DirExists(entry.Path)
	if err != nil || !exists {
		return proj
	}
	proj.Status = StatusReady
	state, err := inspector.Inspect(ctx, entry.Path)
	if err != nil {
		return proj
	}
	proj.Dirty = &state.Dirty
	proj.Ahead = &state.Ahead
	proj.Behind = &state.Behind
	proj.Upstream = &state.Upstream
	return proj
}

// List projects every tracked entry, sorted by name. It never mutates the
// registry.
func List(ctx context.Context, reg Registry, inspector gitcmd.Inspector) []Projection {
	items := make([]Projection, 0, len(reg.Worktrees))
	for _, name := range reg.Names() {
		items = append(items, Project(ctx, name, reg.Worktrees[name], inspector))
	}
	return items
}
