// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/actor"
	"github.com/bureau-foundation/waypath/lib/pathing"
	"github.com/bureau-foundation/waypath/lib/recorder"
	"github.com/bureau-foundation/waypath/lib/schedule"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/trailscript"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

type compileParams struct {
	storeParams
	Name   string `flag:"name,n" desc:"path name (default: the script's name, then its file name)"`
	Force  bool   `flag:"force,f" desc:"replace a stored path with the same name"`
	Record bool   `flag:"record" desc:"feed the waypoints through a recording session, applying its movement filter and capacity"`
}

func compileCommand(stdout io.Writer) *cli.Command {
	var params compileParams

	return &cli.Command{
		Name:    "compile",
		Summary: "Store a path written by hand",
		Description: `Compile a JSONC path script into a stored path. A script lists
waypoints in order; comments and trailing commas are allowed:

  {
    // Patrol along the north wall.
    "world": "overworld",
    "waypoints": [
      {"x": 0, "y": 64, "z": 0},
      {"x": 12, "y": 64, "z": 0, "yaw": 270},
    ],
  }

By default every listed waypoint is stored as written. With --record
the waypoints are instead played into a recording session, one per
sampling tick, exactly as a live recording would see them: waypoints
within recording.min_step of the last kept one are dropped and the
recording stops at recording.max_path_locations.`,
		Usage: "waypath compile SCRIPT [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("compile", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("compile takes exactly one script file")
			}
			script, err := trailscript.ReadFile(args[0])
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return cli.NotFound("script %s does not exist", args[0])
				}
				return cli.Validation("%w", err)
			}
			if params.Name != "" {
				script.Name = params.Name
			}
			path, err := trailscript.Compile(script, trailscript.NameFromPath(args[0]))
			if err != nil {
				return cli.Validation("%s: %w", args[0], err)
			}

			env, err := params.open("compile")
			if err != nil {
				return err
			}
			defer env.Close()

			if !params.Force && env.store.Exists(path.Name()) {
				return cli.Conflict("path %q is already stored (use --force to replace it)", path.Name())
			}

			if !params.Record {
				if err := env.store.Save(path); err != nil {
					return cli.Internal("storing %q: %w", path.Name(), err)
				}
				fmt.Fprintf(stdout, "compiled %s: %d waypoints\n", path.Name(), path.Len())
				return nil
			}

			result, err := recordScript(env, path)
			if err != nil {
				return err
			}
			if result.Waypoints == 0 {
				return cli.Validation("%s: the recording kept no waypoints", args[0])
			}
			fmt.Fprintf(stdout, "recorded %s: %d of %d waypoints kept, ended by %s\n",
				path.Name(), result.Waypoints, path.Len(), result.Reason)
			return nil
		},
		Examples: []cli.Example{
			{Command: "waypath compile scripts/north-wall.jsonc --dir ./paths"},
			{Description: "Apply the recorder's filter to a dense script", Command: "waypath compile survey.jsonc --config waypath.yaml --record --force"},
		},
	}
}

// scriptedSource replays a path's waypoints as an actor's poses, one
// per call, and goes offline after the last.
type scriptedSource struct {
	points []waypoint.Waypoint
	next   int
}

func (s *scriptedSource) ID() string { return "script" }

func (s *scriptedSource) Pose() (waypoint.Waypoint, bool) {
	if s.next >= len(s.points) {
		return waypoint.Waypoint{}, false
	}
	point := s.points[s.next]
	s.next++
	return point, true
}

// recordScript runs path through a recording session on a manual
// scheduler and returns the session's outcome.
func recordScript(env *environment, path *trail.Path) (recorder.Result, error) {
	scheduler := schedule.NewManual()
	service, err := pathing.New(pathing.Config{
		Store:     env.store,
		Registry:  trail.NewRegistry(),
		Scheduler: scheduler,
		Directory: actor.DirectoryFunc(func(string) (actor.Follower, bool) {
			return nil, false
		}),
		MaxPathLocations: env.config.Recording.MaxPathLocations,
		SamplingInterval: env.config.SamplingInterval(),
		ReplayInterval:   env.config.ReplayInterval(),
		MinStep:          env.config.Recording.MinStep,
		Logger:           env.logger,
	})
	if err != nil {
		return recorder.Result{}, cli.Internal("%w", err)
	}
	defer service.Close()

	if env.store.Exists(path.Name()) {
		// The recorder saves under the name; an old manifest must not
		// outlive a recording that ends up empty.
		if err := env.store.Remove(path.Name()); err != nil {
			return recorder.Result{}, cli.Internal("%w", err)
		}
	}

	session, err := service.StartRecording(&scriptedSource{points: path.Waypoints()}, path.Name())
	if err != nil {
		return recorder.Result{}, cli.Internal("%w", err)
	}
	// One tick per waypoint, plus the tick that sees the source go
	// offline or the buffer full.
	for range path.Len() + 1 {
		scheduler.Step()
	}

	select {
	case <-session.Done():
	default:
		return recorder.Result{}, cli.Internal("recording of %q did not finish", path.Name())
	}
	result := session.Result()
	if result.Err != nil {
		return result, cli.Internal("storing %q: %w", path.Name(), result.Err)
	}
	return result, nil
}

type decompileParams struct {
	storeParams
	Output string `flag:"output,o" desc:"write the script to this file instead of stdout"`
}

func decompileCommand(stdout io.Writer) *cli.Command {
	var params decompileParams

	return &cli.Command{
		Name:    "decompile",
		Summary: "Turn a stored path back into a script",
		Description: `Write a stored path as a path script, for editing by hand and
compiling again. Waypoints in the path's most common world omit their
world field.`,
		Usage: "waypath decompile NAME [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("decompile", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("decompile takes exactly one path name")
			}
			env, err := params.open("decompile")
			if err != nil {
				return err
			}
			defer env.Close()

			path, err := env.load(args[0])
			if err != nil {
				return err
			}
			script := trailscript.Decompile(path)

			if params.Output == "" {
				return cli.WriteJSON(stdout, script)
			}
			file, err := os.Create(params.Output)
			if err != nil {
				return cli.Internal("%w", err)
			}
			if err := cli.WriteJSON(file, script); err != nil {
				file.Close()
				return cli.Internal("writing %s: %w", params.Output, err)
			}
			if err := file.Close(); err != nil {
				return cli.Internal("writing %s: %w", params.Output, err)
			}
			fmt.Fprintf(stdout, "wrote %s\n", params.Output)
			return nil
		},
		Examples: []cli.Example{
			{Command: "waypath decompile north-wall --dir ./paths -o north-wall.jsonc"},
		},
	}
}
