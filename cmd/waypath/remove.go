// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/trail"
)

type removeParams struct {
	storeParams
}

func removeCommand(stdout io.Writer) *cli.Command {
	var params removeParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Delete stored paths",
		Description: `Delete the .path file and manifest of each named path. A running
server keeps paths it already loaded until it restarts.`,
		Usage: "waypath remove NAME... [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("remove", &params) },
		Run: func(args []string) error {
			if len(args) == 0 {
				return cli.Validation("remove needs at least one path name")
			}
			env, err := params.open("remove")
			if err != nil {
				return err
			}
			defer env.Close()

			for _, name := range args {
				if err := env.store.Remove(name); err != nil {
					switch {
					case errors.Is(err, trail.ErrNotFound):
						return cli.NotFound("no stored path named %q", name)
					case errors.Is(err, trail.ErrInvalidName):
						return cli.Validation("%w", err)
					default:
						return cli.Internal("%w", err)
					}
				}
				env.logger.Info("path removed", "path", name)
				fmt.Fprintf(stdout, "removed %s\n", name)
			}
			return nil
		},
	}
}
