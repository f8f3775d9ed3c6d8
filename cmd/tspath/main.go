// Package main provides the tspath command.
package main

import (
	"os"

	"github.com/tspath/tspath/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		cli.Report(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
