package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/agentwt/agentwt/internal/ops/doctor"
)

func runDoctor(ctx context.Context, args []string) error {
	if len(args) == 1 && isHelpArg(args[0]) {
		printDoctorHelp(os.Stdout)
		return nil
	}
	if len(args) != 0 {
		return fmt.Errorf("usage: agentwt doctor")
	}

	state, err := loadRepoState(ctx)
	if err != nil {
		return err
	}
	result, err := doctor.Check(ctx, state.repo, nil)
	if err != nil {
		return err
	}

	renderer, _, _ := stdoutRenderer()
	renderer.Section("Info")
	for _, detail := range result.Details {
		renderer.Bullet(detail)
	}
	if len(result.Warnings) > 0 {
		renderer.Blank()
		for _, warning := range result.Warnings {
			renderer.Warn(warning)
		}
	}
	renderer.Blank()
	renderer.Section("Result")
	if len(result.Issues) == 0 {
		renderer.BulletSuccess("all checks passed")
		return nil
	}
	for _, issue := range result.Issues {
		renderer.BulletError(issue.Message)
	}
	return fmt.Errorf("doctor found %d issue(s)", len(result.Issues))
}
