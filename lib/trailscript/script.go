// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package trailscript compiles hand-authored path scripts into paths.
//
// A script is a JSONC file (JSON with comments and trailing commas)
// listing waypoints in order:
//
//	{
//	  // Patrol along the north wall.
//	  "world": "overworld",
//	  "waypoints": [
//	    {"x": 0, "y": 64, "z": 0},
//	    {"x": 12, "y": 64, "z": 0, "yaw": 270},
//	  ],
//	}
//
// The flow is ReadFile or Parse, then Validate, then Compile. Scripts
// bypass the recorder, so no movement filter is applied: every listed
// waypoint ends up in the path.
package trailscript

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// Script is the decoded form of a path script.
type Script struct {
	// Name is the path name. When empty, Compile uses the script's
	// file name.
	Name string `json:"name,omitempty"`

	// Kind defaults to "movement".
	Kind string `json:"kind,omitempty"`

	// World is the world id for waypoints that do not name their own.
	World string `json:"world,omitempty"`

	Waypoints []Point `json:"waypoints"`
}

// Point is one scripted waypoint.
type Point struct {
	World string  `json:"world,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw,omitempty"`
	Pitch float32 `json:"pitch,omitempty"`
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Script. Unknown fields are rejected so
// a misspelled key does not silently drop a coordinate.
func Parse(data []byte) (*Script, error) {
	stripped := jsonc.ToJSON(data)

	decoder := json.NewDecoder(bytes.NewReader(stripped))
	decoder.DisallowUnknownFields()

	var script Script
	if err := decoder.Decode(&script); err != nil {
		return nil, fmt.Errorf("parsing path script: %w", err)
	}
	return &script, nil
}

// ReadFile reads and parses a script from disk.
func ReadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	script, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}

// NameFromPath extracts a path name from a script file name by
// stripping the directory and extension: "scripts/north-wall.jsonc"
// returns "north-wall".
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Validate checks a script for problems that would make it compile to
// an unusable path. All problems are reported together.
func Validate(script *Script) error {
	var errs []error

	if script.Name != "" {
		if err := trail.ValidateName(script.Name); err != nil {
			errs = append(errs, err)
		}
	}
	if script.Kind != "" {
		if _, err := trail.ParseKind(script.Kind); err != nil {
			errs = append(errs, err)
		}
	}
	if len(script.Waypoints) < 2 {
		errs = append(errs, fmt.Errorf("script lists %d waypoints; a replayable path needs at least 2", len(script.Waypoints)))
	}
	for i, point := range script.Waypoints {
		if point.World == "" && script.World == "" {
			errs = append(errs, fmt.Errorf("waypoints[%d]: no world, and the script sets no default", i))
		}
	}

	return errors.Join(errs...)
}

// Compile validates script and converts it into a path. fallbackName
// is used when the script does not name itself.
func Compile(script *Script, fallbackName string) (*trail.Path, error) {
	if err := Validate(script); err != nil {
		return nil, err
	}

	name := script.Name
	if name == "" {
		name = fallbackName
	}
	kind := trail.KindMovement
	if script.Kind != "" {
		kind, _ = trail.ParseKind(script.Kind)
	}

	points := make([]waypoint.Waypoint, len(script.Waypoints))
	for i, point := range script.Waypoints {
		world := point.World
		if world == "" {
			world = script.World
		}
		points[i] = waypoint.Waypoint{
			WorldID: world,
			X:       point.X,
			Y:       point.Y,
			Z:       point.Z,
			Yaw:     point.Yaw,
			Pitch:   point.Pitch,
		}
	}
	return trail.New(name, kind, points)
}

// Decompile turns a path back into a script, for editing a recorded
// path by hand. Waypoints in the most common world omit their world.
func Decompile(path *trail.Path) *Script {
	counts := make(map[string]int)
	for _, point := range path.Waypoints() {
		counts[point.WorldID]++
	}
	common := ""
	for world, count := range counts {
		if count > counts[common] || (count == counts[common] && world < common) {
			common = world
		}
	}

	script := &Script{
		Name:  path.Name(),
		Kind:  path.Kind().String(),
		World: common,
	}
	for _, point := range path.Waypoints() {
		scripted := Point{
			X:     point.X,
			Y:     point.Y,
			Z:     point.Z,
			Yaw:   point.Yaw,
			Pitch: point.Pitch,
		}
		if point.WorldID != common {
			scripted.World = point.WorldID
		}
		script.Waypoints = append(script.Waypoints, scripted)
	}
	return script
}
