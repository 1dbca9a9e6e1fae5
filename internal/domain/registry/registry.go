package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/agentwt/agentwt/internal/domain/sandbox"
)

const CurrentVersion = 1

// Entry tracks one agent worktree.
type Entry struct {
	Path      string            `json:"path"`
	Branch    string            `json:"branch"`
	Base      string            `json:"base"`
	Agent     string            `json:"agent"`
	Command   string            `json:"command"`
	Env       map[string]string `json:"env"`
	Sandbox   sandbox.Policy    `json:"sandbox"`
	CreatedAt string            `json:"createdAt"`
}

// Registry is the persisted name -> entry mapping for one repository.
type Registry struct {
	Version   int              `json:"version"`
	Worktrees map[string]Entry `json:"worktrees"`
}

func Default() Registry {
	return Registry{Version: CurrentVersion, Worktrees: map[string]Entry{}}
}

// Load reads the registry file. It never fails the caller: a missing or
// unreadable or corrupt file yields the empty default so recovery commands
// stay usable.
func Load(path string) Registry {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default()
	}
	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return Default()
	}
	if reg.Version == 0 {
		reg.Version = CurrentVersion
	}
	if reg.Worktrees == nil {
		reg.Worktrees = map[string]Entry{}
	}
	for name, entry := range reg.Worktrees {
		reg.Worktrees[name] = normalizeEntry(entry)
	}
	return reg
}

// Save writes the full registry. The write goes through a temp file and
// rename so a concurrent reader never observes a partial mapping. Failures
// propagate: silently dropping an update would corrupt tracked state.
func Save(path string, reg Registry) error {
	if reg.Worktrees == nil {
		reg.Worktrees = map[string]Entry{}
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}
	data = append(data, '\n')
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// Get looks up a tracked worktree by name.
func (r Registry) Get(name string) (Entry, error) {
	entry, ok := r.Worktrees[name]
	if !ok {
		return Entry{}, fmt.Errorf("worktree %q is not tracked, run: agentwt create %s", name, name)
	}
	return entry, nil
}

func (r *Registry) Upsert(name string, entry Entry) {
	if r.Worktrees == nil {
		r.Worktrees = map[string]Entry{}
	}
	r.Worktrees[name] = normalizeEntry(entry)
}

func (r *Registry) Remove(name string) {
	delete(r.Worktrees, name)
}

// Prune removes every entry the predicate rejects and returns the removed
// names in sorted order.
func (r *Registry) Prune(keep func(name string, entry Entry) bool) []string {
	var removed []string
	for name, entry := range r.Worktrees {
		if keep(name, entry) {
			continue
		}
		removed = append(removed, name)
	}
	sort.Strings(removed)
	for _, name := range removed {
		delete(r.Worktrees, name)
	}
	return removed
}

// Names returns tracked worktree names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r.Worktrees))
	for name := range r.Worktrees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeEntry(entry Entry) Entry {
	if entry.Env == nil {
		entry.Env = map[string]string{}
	}
	entry.Sandbox = sandbox.Normalize(entry.Sandbox)
	return entry
}
