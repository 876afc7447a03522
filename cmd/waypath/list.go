// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/trail"
)

type listParams struct {
	storeParams
	cli.JSONOutput
}

// listEntry is one row of "waypath list". It comes from the manifest
// alone, so listing does not read any waypoint stream.
type listEntry struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	Waypoints  int    `json:"waypoints"`
	RecordedAt string `json:"recorded_at,omitempty"`
	Manifest   bool   `json:"manifest"`
}

func listCommand(stdout io.Writer) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List stored paths",
		Description: `List every path in the path directory with its kind, waypoint
count, and recording time, as recorded in its manifest. Paths without
a manifest show "-" for the count; run "waypath verify" to read them.`,
		Usage: "waypath list [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("list takes no arguments, got %q", args)
			}
			env, err := params.open("list")
			if err != nil {
				return err
			}
			defer env.Close()

			names, err := env.namesOrAll(nil)
			if err != nil {
				return err
			}

			entries := make([]listEntry, 0, len(names))
			for _, name := range names {
				manifest, ok, err := env.store.ReadManifest(name)
				if err != nil {
					env.logger.Warn("manifest unreadable", "path", name, "error", err)
				}
				entry := listEntry{Name: name, Kind: trail.KindMovement.String(), Manifest: ok}
				if ok {
					entry.Kind = manifest.Kind.String()
					entry.Waypoints = manifest.Waypoints
					entry.RecordedAt = time.UnixMilli(manifest.RecordedAt).UTC().Format(time.RFC3339)
				}
				entries = append(entries, entry)
			}

			if done, err := params.EmitJSON(stdout, entries); done {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(stdout, "no paths in %s\n", env.store.Directory())
				return nil
			}

			tw := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
			fmt.Fprintln(tw, "NAME\tKIND\tWAYPOINTS\tRECORDED")
			for _, entry := range entries {
				waypoints, recorded := "-", "-"
				if entry.Manifest {
					waypoints = fmt.Sprint(entry.Waypoints)
					recorded = entry.RecordedAt
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.Name, entry.Kind, waypoints, recorded)
			}
			return tw.Flush()
		},
		Examples: []cli.Example{
			{Description: "List the paths of a server", Command: "waypath list --config /srv/world/waypath.yaml"},
			{Description: "Machine-readable listing", Command: "waypath list --dir ./paths --json"},
		},
	}
}
