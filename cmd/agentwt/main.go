package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/agentwt/agentwt/internal/cli"
	"github.com/agentwt/agentwt/internal/launch"
	"github.com/agentwt/agentwt/internal/ui"
)

func main() {
	if err := cli.Run(); err != nil {
		var exitErr launch.ExitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		if isatty.IsTerminal(os.Stderr.Fd()) {
			theme := ui.DefaultTheme()
			renderer := ui.NewRenderer(os.Stderr, theme, true)
			renderer.Blank()
			renderer.BulletError(fmt.Sprintf("error: %s", err.Error()))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
