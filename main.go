package main

import (
	"errors"
	"os"

	"github.com/icarus-itcs/rnandroid/cmd/rnandroid"
	"github.com/icarus-itcs/rnandroid/internal/launch"
	"github.com/icarus-itcs/rnandroid/internal/ui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rnandroid.Execute(version, commit, date); err != nil {
		var exitErr *launch.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		ui.NewPrinter(os.Stdout, os.Stderr).Failure(err)
		os.Exit(1)
	}
}
