package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/domain/registry"
)

func runInfo(ctx context.Context, args []string) error {
	infoFlags := flag.NewFlagSet("info", flag.ContinueOnError)
	var jsonFlag bool
	var helpFlag bool
	infoFlags.BoolVar(&jsonFlag, "json", false, "machine-readable output")
	infoFlags.BoolVar(&helpFlag, "help", false, "show help")
	infoFlags.BoolVar(&helpFlag, "h", false, "show help")
	infoFlags.SetOutput(os.Stdout)
	infoFlags.Usage = func() {
		printInfoHelp(os.Stdout)
	}
	if err := infoFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printInfoHelp(os.Stdout)
		return nil
	}
	if infoFlags.NArg() != 1 {
		return fmt.Errorf("usage: agentwt info <name> [--json]")
	}
	name := infoFlags.Arg(0)

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	entry, err := state.reg.Get(name)
	if err != nil {
		return err
	}
	proj := registry.Project(ctx, name, entry, gitcmd.LiveInspector{})

	if jsonFlag {
		return writeJSON(os.Stdout, proj)
	}

	renderer, _, _ := stdoutRenderer()
	renderer.Header(name)
	renderer.Blank()
	renderer.BulletWithDescription("path", "", proj.Path)
	renderer.BulletWithDescription("branch", "", proj.Branch)
	if proj.Base != "" {
		renderer.BulletWithDescription("base", "", proj.Base)
	}
	renderer.BulletWithDescription("agent", "", proj.Agent)
	if proj.Command != "" {
		renderer.BulletWithDescription("command", "", proj.Command)
	}
	renderer.BulletWithDescription("status", "", formatGitStatus(proj))
	renderer.BulletWithDescription("sandbox", "", formatSandbox(proj))
	if len(proj.Env) > 0 {
		keys := make([]string, 0, len(proj.Env))
		for key := range proj.Env {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		renderer.Blank()
		renderer.Section("Env")
		for _, key := range keys {
			renderer.Bullet(fmt.Sprintf("%s=%s", key, proj.Env[key]))
		}
	}
	if proj.CreatedAt != "" {
		renderer.Blank()
		renderer.BulletWithDescription("created", "", proj.CreatedAt)
	}
	return nil
}

func formatGitStatus(proj registry.Projection) string {
	parts := []string{proj.Status}
	if proj.Dirty != nil && *proj.Dirty {
		parts = append(parts, "dirty")
	}
	if proj.Ahead != nil && *proj.Ahead > 0 {
		parts = append(parts, fmt.Sprintf("ahead %d", *proj.Ahead))
	}
	if proj.Behind != nil && *proj.Behind > 0 {
		parts = append(parts, fmt.Sprintf("behind %d", *proj.Behind))
	}
	if proj.Upstream != nil && *proj.Upstream != "" {
		parts = append(parts, fmt.Sprintf("upstream %s", *proj.Upstream))
	}
	return strings.Join(parts, ", ")
}

func formatSandbox(proj registry.Projection) string {
	policy := proj.Sandbox
	if !policy.Enabled {
		return "off"
	}
	parts := []string{"on"}
	if policy.Profile != "" {
		parts = append(parts, fmt.Sprintf("profile %s", policy.Profile))
	}
	if policy.DenyNetwork {
		parts = append(parts, "no network")
	}
	if len(policy.Write) > 0 {
		parts = append(parts, fmt.Sprintf("write %s", strings.Join(policy.Write, " ")))
	}
	return strings.Join(parts, ", ")
}
