package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/agentwt/agentwt/internal/core/gitcmd"
	"github.com/agentwt/agentwt/internal/domain/registry"
)

func runList(ctx context.Context, args []string) error {
	lsFlags := flag.NewFlagSet("ls", flag.ContinueOnError)
	var jsonFlag bool
	var helpFlag bool
	lsFlags.BoolVar(&jsonFlag, "json", false, "machine-readable output")
	lsFlags.BoolVar(&helpFlag, "help", false, "show help")
	lsFlags.BoolVar(&helpFlag, "h", false, "show help")
	lsFlags.SetOutput(os.Stdout)
	lsFlags.Usage = func() {
		printLsHelp(os.Stdout)
	}
	if err := lsFlags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if helpFlag {
		printLsHelp(os.Stdout)
		return nil
	}
	if lsFlags.NArg() != 0 {
		return fmt.Errorf("usage: agentwt ls [--json]")
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	projections := registry.List(ctx, state.reg, gitcmd.LiveInspector{})

	if jsonFlag {
		return writeJSON(os.Stdout, projections)
	}
	if len(projections) == 0 {
		fmt.Fprintln(os.Stdout, "no worktrees tracked, run: agentwt create <name>")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBRANCH\tAGENT\tSTATUS\tDIRTY\tAHEAD\tBEHIND\tPATH")
	for _, proj := range projections {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			proj.Name, proj.Branch, proj.Agent, proj.Status,
			formatBoolPtr(proj.Dirty), formatIntPtr(proj.Ahead), formatIntPtr(proj.Behind), proj.Path)
	}
	return w.Flush()
}

func writeJSON(w *os.File, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

func formatBoolPtr(value *bool) string {
	if value == nil {
		return "-"
	}
	return strconv.FormatBool(*value)
}

func formatIntPtr(value *int) string {
	if value == nil {
		return "-"
	}
	return strconv.Itoa(*value)
}
