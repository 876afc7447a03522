// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/trailscript"
)

type inspectParams struct {
	storeParams
	cli.JSONOutput
	Waypoints bool `flag:"waypoints,w" desc:"also print every waypoint"`
}

type inspectResult struct {
	Name       string              `json:"name"`
	Kind       string              `json:"kind"`
	Waypoints  int                 `json:"waypoints"`
	Replayable bool                `json:"replayable"`
	Worlds     []string            `json:"worlds"`
	Min        [3]float64          `json:"min"`
	Max        [3]float64          `json:"max"`
	Length     float64             `json:"length"`
	Digest     string              `json:"digest,omitempty"`
	RecordedAt string              `json:"recorded_at,omitempty"`
	Points     []trailscript.Point `json:"points,omitempty"`
}

func inspectCommand(stdout io.Writer) *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show one path in detail",
		Description: `Load a path, verifying it against its manifest, and summarize it:
the worlds it visits, its bounding box, and its walking length. The
length adds straight-line distances between consecutive waypoints in
the same world.`,
		Usage: "waypath inspect NAME [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("inspect", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("inspect takes exactly one path name")
			}
			env, err := params.open("inspect")
			if err != nil {
				return err
			}
			defer env.Close()

			path, err := env.load(args[0])
			if err != nil {
				return err
			}
			result := summarize(path)
			manifest, ok, err := env.store.ReadManifest(path.Name())
			if err != nil {
				return cli.Internal("%w", err)
			}
			if ok {
				result.Digest = manifest.Digest.String()
				result.RecordedAt = time.UnixMilli(manifest.RecordedAt).UTC().Format(time.RFC3339)
			}
			if params.Waypoints {
				for _, point := range path.Waypoints() {
					result.Points = append(result.Points, trailscript.Point{
						World: point.WorldID,
						X:     point.X,
						Y:     point.Y,
						Z:     point.Z,
						Yaw:   point.Yaw,
						Pitch: point.Pitch,
					})
				}
			}

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			return printInspect(stdout, result)
		},
		Examples: []cli.Example{
			{Command: "waypath inspect north-wall --dir ./paths"},
			{Description: "Dump every waypoint as JSON", Command: "waypath inspect north-wall --dir ./paths --waypoints --json"},
		},
	}
}

// summarize computes the path-wide figures inspect reports.
func summarize(path *trail.Path) inspectResult {
	result := inspectResult{
		Name:       path.Name(),
		Kind:       path.Kind().String(),
		Waypoints:  path.Len(),
		Replayable: path.Replayable(),
		Worlds:     []string{},
	}
	if path.Len() == 0 {
		return result
	}

	first := path.At(0)
	result.Min = [3]float64{first.X, first.Y, first.Z}
	result.Max = result.Min
	for i, point := range path.Waypoints() {
		if !slices.Contains(result.Worlds, point.WorldID) {
			result.Worlds = append(result.Worlds, point.WorldID)
		}
		coordinates := [3]float64{point.X, point.Y, point.Z}
		for axis := range coordinates {
			result.Min[axis] = math.Min(result.Min[axis], coordinates[axis])
			result.Max[axis] = math.Max(result.Max[axis], coordinates[axis])
		}
		if i > 0 {
			previous := path.At(i - 1)
			if previous.WorldID == point.WorldID {
				result.Length += point.Position().Subtract(previous.Position()).Length()
			}
		}
	}
	slices.Sort(result.Worlds)
	return result
}

func printInspect(w io.Writer, result inspectResult) error {
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "name:\t%s\n", result.Name)
	fmt.Fprintf(tw, "kind:\t%s\n", result.Kind)
	fmt.Fprintf(tw, "waypoints:\t%d\n", result.Waypoints)
	fmt.Fprintf(tw, "replayable:\t%t\n", result.Replayable)
	fmt.Fprintf(tw, "worlds:\t%v\n", result.Worlds)
	fmt.Fprintf(tw, "bounds:\t(%.2f, %.2f, %.2f) to (%.2f, %.2f, %.2f)\n",
		result.Min[0], result.Min[1], result.Min[2], result.Max[0], result.Max[1], result.Max[2])
	fmt.Fprintf(tw, "length:\t%.2f\n", result.Length)
	if result.Digest != "" {
		fmt.Fprintf(tw, "digest:\t%s\n", result.Digest)
		fmt.Fprintf(tw, "recorded:\t%s\n", result.RecordedAt)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(result.Points) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 2, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "#\tWORLD\tX\tY\tZ\tYAW\tPITCH\t")
		for i, point := range result.Points {
			fmt.Fprintf(tw, "%d\t%s\t%.3f\t%.3f\t%.3f\t%.1f\t%.1f\t\n",
				i, point.World, point.X, point.Y, point.Z, point.Yaw, point.Pitch)
		}
		return tw.Flush()
	}
	return nil
}
