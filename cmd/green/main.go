// Package main is the entry point for the green CLI.
package main

import (
	"os"

	"github.com/mrz1836/greencli/internal/cli"
)

// Set at link time with -ldflags "-X main.version=...".
//
//nolint:gochecknoglobals // linker-injected build metadata
var (
	version string
	commit  string
	date    string
)

func main() {
	cli.SetBuildInfo(cli.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}
