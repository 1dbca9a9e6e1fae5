package sandbox

import (
	"github.com/agentwt/agentwt/internal/core/paths"
)

// Policy is the declarative access-control intent stored per worktree. The
// materialized profile is derived from it at launch time.
type Policy struct {
	Enabled     bool     `json:"enabled"`
	Profile     string   `json:"profile"`
	DenyNetwork bool     `json:"deny_network"`
	Write       []string `json:"write"`
}

// Normalize fills defaults so a policy read from disk always has well-typed
// fields, whatever the persisted JSON looked like. Idempotent.
func Normalize(p Policy) Policy {
	out := Policy{
		Enabled:     p.Enabled,
		Profile:     p.Profile,
		DenyNetwork: p.DenyNetwork,
		Write:       make([]string, 0, len(p.Write)),
	}
	for _, path := range p.Write {
		if path == "" {
			continue
		}
		out.Write = append(out.Write, path)
	}
	return out
}

// Overrides carries per-invocation sandbox flags. Any flag that narrows or
// widens access implies Enabled; Disable wins over everything.
type Overrides struct {
	Enable       bool
	Disable      bool
	Profile      string
	Write        []string
	WriteSet     bool
	DenyNetwork  bool
	AllowNetwork bool
}

// Apply merges invocation overrides over a persisted policy.
func Apply(base Policy, o Overrides) (Policy, error) {
	policy := Normalize(base)
	if o.Disable {
		return Policy{Write: []string{}}, nil
	}
	if o.Enable {
		policy.Enabled = true
	}
	if o.Profile != "" {
		policy.Profile = o.Profile
		policy.Enabled = true
	}
	if o.WriteSet {
		writes, err := normalizeWritePaths(o.Write)
		if err != nil {
			return Policy{}, err
		}
		policy.Write = writes
		policy.Enabled = true
	}
	if o.DenyNetwork {
		policy.DenyNetwork = true
		policy.Enabled = true
	}
	if o.AllowNetwork {
		policy.DenyNetwork = false
		policy.Enabled = true
	}
	return policy, nil
}

func normalizeWritePaths(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if item == "" {
			continue
		}
		abs, err := paths.Absolutize(item)
		if err != nil {
			return nil, err
		}
		out = append(out, abs)
	}
	return out, nil
}
