package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/agentwt/agentwt/internal/infra/output"
)

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type Options struct {
	Dir string
	// ShowOutput prints stdout/stderr even when verbose is off.
	ShowOutput bool
}

func Run(ctx context.Context, args []string, opts Options) (Result, error) {
	if err := validateArgs(args); err != nil {
		return Result{
			Stderr:   err.Error(),
			ExitCode: -1,
		}, err
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if verbose {
		fmt.Fprintf(os.Stderr, "\x1b[36m%s$ git %s\x1b[0m\n", output.Indent, strings.Join(args, " "))
	}
	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}
	if verbose || opts.ShowOutput {
		if result.Stdout != "" {
			writeIndented(os.Stderr, result.Stdout, output.Indent)
		}
		if result.Stderr != "" {
			writeIndented(os.Stderr, result.Stderr, output.Indent)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "%sexit: %d\n", output.Indent, result.ExitCode)
		}
	}
	if err != nil {
		return result, fmt.Errorf("git %v failed: %w", args, err)
	}
	return result, nil
}

// RunInteractive executes a user-directed git command with inherited stdio so
// pagers, editors, and credential prompts work. Unlike Run, the subcommand is
// not restricted: the arguments come from the user, not from this tool.
func RunInteractive(ctx context.Context, args []string, dir string) (int, error) {
	if len(args) == 0 {
		return -1, fmt.Errorf("git command is required")
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if verbose {
		fmt.Fprintf(os.Stderr, "\x1b[36m%s$ git %s\x1b[0m\n", output.Indent, strings.Join(args, " "))
	}
	err := cmd.Run()
	code := exitCode(err)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return code, nil
		}
		return code, fmt.Errorf("git %v failed: %w", args, err)
	}
	return code, nil
}

func validateArgs(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("git command is required")
	}
	if !isAllowedSubcommand(args[0]) {
		return fmt.Errorf("git subcommand %q is not allowed", args[0])
	}
	return nil
}

func isAllowedSubcommand(subcommand string) bool {
	_, ok := allowedSubcommands[subcommand]
	return ok
}

func writeIndented(w io.Writer, text, prefix string) {
	lines := strings.SplitAfter(text, "\n")
	for _, line := range lines {
		if line == "" {
			continue
		}
		if line == "\n" {
			fmt.Fprint(w, prefix)
			continue
		}
		fmt.Fprint(w, prefix)
		fmt.Fprint(w, line)
	}
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(w)
	}
}

var allowedSubcommands = map[string]struct{}{
	"branch":    {},
	"rev-list":  {},
	"rev-parse": {},
	"show-ref":  {},
	"status":    {},
	"version":   {},
	"worktree":  {},
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1
	}
	return exitErr.ExitCode()
}
