// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/actor"
	"github.com/bureau-foundation/waypath/lib/pathing"
	"github.com/bureau-foundation/waypath/lib/schedule"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

type simulateParams struct {
	storeParams
	cli.JSONOutput
	Ticks int `flag:"ticks,n" default:"20" desc:"number of replay ticks to run"`
}

// simulatedMove is one MoveTo a replay made.
type simulatedMove struct {
	Tick    int     `json:"tick"`
	Index   int     `json:"index"`
	World   string  `json:"world"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Z       float64 `json:"z"`
	Yaw     float32 `json:"yaw"`
	Pitch   float32 `json:"pitch"`
	FacingX float64 `json:"facing_x"`
	FacingY float64 `json:"facing_y"`
	FacingZ float64 `json:"facing_z"`
}

// recordingFollower is a follower that only remembers where it was
// sent.
type recordingFollower struct {
	binding func() int
	moves   []simulatedMove
}

func (f *recordingFollower) ID() string { return "simulator" }

func (f *recordingFollower) MoveTo(position waypoint.Waypoint, facing waypoint.Vector) {
	f.moves = append(f.moves, simulatedMove{
		Tick:    len(f.moves) + 1,
		Index:   f.binding(),
		World:   position.WorldID,
		X:       position.X,
		Y:       position.Y,
		Z:       position.Z,
		Yaw:     position.Yaw,
		Pitch:   position.Pitch,
		FacingX: facing.X,
		FacingY: facing.Y,
		FacingZ: facing.Z,
	})
}

func simulateCommand(stdout io.Writer) *cli.Command {
	var params simulateParams

	return &cli.Command{
		Name:    "simulate",
		Summary: "Dry-run a bounce replay of a stored path",
		Description: `Bind a stand-in follower to a stored path and run the replay for
--ticks ticks, printing each position and facing the follower would be
sent. Replay walks the path to its last waypoint, then back to the
first, and so on.

The path is loaded the way a server loads it at startup, so a path
that simulates cleanly will replay on the server.`,
		Usage: "waypath simulate NAME [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("simulate", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("simulate takes exactly one path name")
			}
			if params.Ticks <= 0 {
				return cli.Validation("--ticks must be positive, got %d", params.Ticks)
			}
			env, err := params.open("simulate")
			if err != nil {
				return err
			}
			defer env.Close()

			moves, err := simulate(env, args[0], params.Ticks)
			if err != nil {
				return err
			}

			if done, err := params.EmitJSON(stdout, moves); done {
				return err
			}
			tw := tabwriter.NewWriter(stdout, 2, 0, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "TICK\tINDEX\tX\tY\tZ\tYAW\tPITCH\t")
			for _, move := range moves {
				fmt.Fprintf(tw, "%d\t%d\t%.3f\t%.3f\t%.3f\t%.1f\t%.1f\t\n",
					move.Tick, move.Index, move.X, move.Y, move.Z, move.Yaw, move.Pitch)
			}
			return tw.Flush()
		},
		Examples: []cli.Example{
			{Command: "waypath simulate north-wall --dir ./paths --ticks 40"},
		},
	}
}

// simulate loads every stored path into a service, binds the stand-in
// follower to name, and steps the replay ticks times.
func simulate(env *environment, name string, ticks int) ([]simulatedMove, error) {
	scheduler := schedule.NewManual()
	follower := &recordingFollower{}

	service, err := pathing.New(pathing.Config{
		Store:     env.store,
		Registry:  trail.NewRegistry(),
		Scheduler: scheduler,
		Directory: actor.DirectoryFunc(func(id string) (actor.Follower, bool) {
			if id != follower.ID() {
				return nil, false
			}
			return follower, true
		}),
		MaxPathLocations: env.config.Recording.MaxPathLocations,
		SamplingInterval: env.config.SamplingInterval(),
		ReplayInterval:   env.config.ReplayInterval(),
		MinStep:          env.config.Recording.MinStep,
		Logger:           env.logger,
	})
	if err != nil {
		return nil, cli.Internal("%w", err)
	}
	defer service.Close()

	if _, err := service.LoadAll(); err != nil {
		return nil, cli.Internal("%w", err)
	}
	path, err := service.FindPath(name)
	if err != nil {
		// LoadAll skips damaged files; load directly for the reason.
		if _, loadErr := env.load(name); loadErr != nil {
			return nil, loadErr
		}
		return nil, cli.NotFound("no stored path named %q", name)
	}

	binding, err := service.BindReplay(path, follower.ID())
	if err != nil {
		return nil, cli.Validation("path %q cannot be replayed: %w", name, err)
	}
	follower.binding = binding.Index

	scheduler.StepN(ticks)
	return follower.moves, nil
}
