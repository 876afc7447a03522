// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"io"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
)

// rootCommand builds the command tree. Results go to stdout;
// diagnostics go to the command logger on stderr.
func rootCommand(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:    "waypath",
		Summary: "Manage recorded movement paths",
		Description: `Manage the recorded movement paths in a path directory.

Each path is a <name>.path file of waypoint records with a <name>.meta
manifest beside it. These commands inspect, verify, move, and author
those files, and can dry-run a bounce replay of any stored path.`,
		Subcommands: []*cli.Command{
			listCommand(stdout),
			inspectCommand(stdout),
			verifyCommand(stdout),
			removeCommand(stdout),
			exportCommand(stdout),
			importCommand(stdout),
			compileCommand(stdout),
			decompileCommand(stdout),
			simulateCommand(stdout),
			versionCommand(stdout),
		},
	}
}
