// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/config"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/trailstore"
	"github.com/bureau-foundation/waypath/lib/waypoint"
)

// runCommand executes the waypath command tree with args and returns
// what it wrote to stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
	var stdout bytes.Buffer
	err := rootCommand(&stdout).Execute(args)
	return stdout.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	output, err := runCommand(t, args...)
	if err != nil {
		t.Fatalf("waypath %s: %v", strings.Join(args, " "), err)
	}
	return output
}

func writeScript(t *testing.T, name, contents string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(file, []byte(contents), 0644); err != nil {
		t.Fatalf("writing script: %v", err)
	}
	return file
}

func decodeJSON(t *testing.T, output string, target any) {
	t.Helper()
	if err := json.Unmarshal([]byte(output), target); err != nil {
		t.Fatalf("decoding %q: %v", output, err)
	}
}

const northWall = `{
	// Along the wall, then up the gate.
	"world": "overworld",
	"waypoints": [
		{"x": 0, "y": 64, "z": 0},
		{"x": 3, "y": 64, "z": 4},
		{"x": 3, "y": 64, "z": 10, "yaw": 90},
	],
}`

const line = `{
	"name": "line",
	"world": "overworld",
	"waypoints": [
		{"x": 0, "y": 64, "z": 0},
		{"x": 1, "y": 64, "z": 0},
		{"x": 2, "y": 64, "z": 0},
	],
}`

func TestCompileListInspect(t *testing.T) {
	directory := t.TempDir()
	script := writeScript(t, "north-wall.jsonc", northWall)

	output := mustRun(t, "compile", script, "--dir", directory)
	if output != "compiled north-wall: 3 waypoints\n" {
		t.Errorf("compile output = %q", output)
	}

	var entries []listEntry
	decodeJSON(t, mustRun(t, "list", "--dir", directory, "--json"), &entries)
	if len(entries) != 1 || entries[0].Name != "north-wall" || entries[0].Waypoints != 3 || !entries[0].Manifest {
		t.Fatalf("list = %+v, want north-wall with 3 waypoints", entries)
	}

	var result inspectResult
	decodeJSON(t, mustRun(t, "inspect", "north-wall", "--dir", directory, "--json"), &result)
	if result.Kind != "movement" || !result.Replayable {
		t.Errorf("inspect kind %q replayable %t", result.Kind, result.Replayable)
	}
	if math.Abs(result.Length-11) > 1e-9 {
		t.Errorf("length = %v, want 11 (5 + 6)", result.Length)
	}
	if len(result.Worlds) != 1 || result.Worlds[0] != "overworld" {
		t.Errorf("worlds = %v, want [overworld]", result.Worlds)
	}
	if result.Max != [3]float64{3, 64, 10} || result.Min != [3]float64{0, 64, 0} {
		t.Errorf("bounds = %v to %v", result.Min, result.Max)
	}
	if result.Digest == "" {
		t.Error("inspect reported no manifest digest")
	}
}

func TestCompileRefusesOverwriteWithoutForce(t *testing.T) {
	directory := t.TempDir()
	script := writeScript(t, "line.jsonc", line)

	mustRun(t, "compile", script, "--dir", directory)
	_, err := runCommand(t, "compile", script, "--dir", directory)
	if cli.Category(err) != cli.CategoryConflict {
		t.Fatalf("second compile = %v, want a conflict", err)
	}
	mustRun(t, "compile", script, "--dir", directory, "--force")
}

func TestCompileRecordAppliesMovementFilter(t *testing.T) {
	directory := t.TempDir()
	script := writeScript(t, "jitter.jsonc", `{
		"world": "w",
		"waypoints": [
			{"x": 0, "y": 0, "z": 0},
			{"x": 0.005, "y": 0, "z": 0},
			{"x": 1, "y": 0, "z": 0},
			{"x": 1, "y": 0, "z": 0},
			{"x": 2, "y": 0, "z": 0},
		],
	}`)

	output := mustRun(t, "compile", script, "--dir", directory, "--record")
	if output != "recorded jitter: 3 of 5 waypoints kept, ended by source_offline\n" {
		t.Errorf("compile --record output = %q", output)
	}

	var result inspectResult
	decodeJSON(t, mustRun(t, "inspect", "jitter", "--dir", directory, "--json", "--waypoints"), &result)
	if result.Waypoints != 3 {
		t.Fatalf("stored %d waypoints, want 3", result.Waypoints)
	}
	for i, want := range []float64{0, 1, 2} {
		if result.Points[i].X != want {
			t.Errorf("waypoint %d x = %v, want %v", i, result.Points[i].X, want)
		}
	}
}

func TestVerifyReportsDamage(t *testing.T) {
	directory := t.TempDir()
	mustRun(t, "compile", writeScript(t, "good.jsonc", line), "--dir", directory, "--name", "good")
	mustRun(t, "compile", writeScript(t, "broken.jsonc", line), "--dir", directory, "--name", "broken")

	file := filepath.Join(directory, "broken"+trailstore.Extension)
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading path file: %v", err)
	}
	data[len(data)-1] ^= 0xff
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("damaging path file: %v", err)
	}

	output, err := runCommand(t, "verify", "--dir", directory)
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Fatalf("verify = %v, want exit code 1", err)
	}
	if !strings.Contains(output, "FAIL  broken") || !strings.Contains(output, "ok    good (3 waypoints)") {
		t.Errorf("verify output:\n%s", output)
	}

	if _, err := runCommand(t, "verify", "good", "--dir", directory); err != nil {
		t.Errorf("verify good = %v, want success", err)
	}
}

func TestVerifyComparesDigest(t *testing.T) {
	directory := t.TempDir()
	mustRun(t, "compile", writeScript(t, "good.jsonc", line), "--dir", directory, "--name", "good")

	var inspected struct {
		Digest string `json:"digest"`
	}
	decodeJSON(t, mustRun(t, "inspect", "good", "--dir", directory, "--json"), &inspected)
	if inspected.Digest == "" {
		t.Fatal("inspect reported no digest for a compiled path")
	}

	if _, err := runCommand(t, "verify", "good", "--digest", inspected.Digest, "--dir", directory); err != nil {
		t.Errorf("verify with the stored digest = %v, want success", err)
	}

	other := trailstore.SumContents([]byte("something else")).String()
	output, err := runCommand(t, "verify", "good", "--digest", other, "--dir", directory)
	var exitError *cli.ExitError
	if !errors.As(err, &exitError) || exitError.Code != 1 {
		t.Fatalf("verify with another digest = %v, want exit code 1", err)
	}
	if !strings.Contains(output, "FAIL  good: digest is "+inspected.Digest) {
		t.Errorf("verify output:\n%s", output)
	}

	if _, err := runCommand(t, "verify", "good", "--digest", "not-hex", "--dir", directory); cli.Category(err) != cli.CategoryValidation {
		t.Errorf("verify --digest not-hex = %v, want a validation error", err)
	}
	if _, err := runCommand(t, "verify", "--digest", inspected.Digest, "--dir", directory); cli.Category(err) != cli.CategoryValidation {
		t.Errorf("verify --digest without a name = %v, want a validation error", err)
	}
}

func TestExportImport(t *testing.T) {
	source := t.TempDir()
	mustRun(t, "compile", writeScript(t, "north-wall.jsonc", northWall), "--dir", source)
	mustRun(t, "compile", writeScript(t, "line.jsonc", line), "--dir", source)

	archive := filepath.Join(t.TempDir(), "bundle.wpar")
	output := mustRun(t, "export", "--dir", source, "-o", archive, "--compression", "lz4")
	if !strings.HasPrefix(output, "exported 2 paths to "+archive) {
		t.Errorf("export output = %q", output)
	}

	destination := t.TempDir()
	var result importResult
	decodeJSON(t, mustRun(t, "import", archive, "--dir", destination, "--json"), &result)
	if len(result.Imported) != 2 || len(result.Skipped) != 0 {
		t.Fatalf("first import = %+v, want 2 imported", result)
	}

	decodeJSON(t, mustRun(t, "import", archive, "--dir", destination, "--json"), &result)
	if len(result.Imported) != 0 || len(result.Skipped) != 2 {
		t.Errorf("second import = %+v, want both skipped", result)
	}

	var imported, original inspectResult
	decodeJSON(t, mustRun(t, "inspect", "north-wall", "--dir", destination, "--json"), &imported)
	decodeJSON(t, mustRun(t, "inspect", "north-wall", "--dir", source, "--json"), &original)
	if imported.Digest != original.Digest {
		t.Errorf("imported digest %s, original %s", imported.Digest, original.Digest)
	}
}

func TestExportDefaultsToArchivesDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	directory := t.TempDir()
	mustRun(t, "compile", writeScript(t, "line.jsonc", line), "--dir", directory)

	mustRun(t, "export", "--dir", directory)

	matches, err := filepath.Glob(filepath.Join(home, ".cache", "waypath", "archives", "*"+ArchiveExtension))
	if err != nil || len(matches) != 1 {
		t.Fatalf("archives = %v (%v), want one archive", matches, err)
	}
}

func TestExportRejectsUnknownCompression(t *testing.T) {
	_, err := runCommand(t, "export", "--dir", t.TempDir(), "--compression", "gzip")
	if cli.Category(err) != cli.CategoryValidation {
		t.Errorf("export --compression gzip = %v, want a validation error", err)
	}
}

func TestImportRejectsNonArchive(t *testing.T) {
	file := writeScript(t, "not-an-archive.wpar", "hello")
	_, err := runCommand(t, "import", file, "--dir", t.TempDir())
	if cli.Category(err) != cli.CategoryValidation {
		t.Errorf("import = %v, want a validation error", err)
	}
}

func TestSimulateBounces(t *testing.T) {
	directory := t.TempDir()
	mustRun(t, "compile", writeScript(t, "line.jsonc", line), "--dir", directory)

	var moves []simulatedMove
	decodeJSON(t, mustRun(t, "simulate", "line", "--dir", directory, "--ticks", "6", "--json"), &moves)
	wantIndices := []int{1, 2, 1, 0, 1, 2}
	if len(moves) != len(wantIndices) {
		t.Fatalf("got %d moves, want %d", len(moves), len(wantIndices))
	}
	for i, want := range wantIndices {
		if moves[i].Index != want || moves[i].X != float64(want) {
			t.Errorf("move %d: index %d x %v, want index %d", i, moves[i].Index, moves[i].X, want)
		}
	}
}

func TestSimulateRejectsShortPath(t *testing.T) {
	directory := t.TempDir()
	store, err := trailstore.Open(trailstore.Config{Directory: directory})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	single, err := trail.New("single", trail.KindMovement, []waypoint.Waypoint{{WorldID: "w"}})
	if err != nil {
		t.Fatalf("trail.New: %v", err)
	}
	if err := store.Save(single); err != nil {
		t.Fatalf("Save: %v", err)
	}
	store.Close()

	_, err = runCommand(t, "simulate", "single", "--dir", directory)
	if !errors.Is(err, trail.ErrInvalidBinding) || cli.Category(err) != cli.CategoryValidation {
		t.Errorf("simulate = %v, want a validation error wrapping ErrInvalidBinding", err)
	}

	_, err = runCommand(t, "simulate", "missing", "--dir", directory)
	if cli.Category(err) != cli.CategoryNotFound {
		t.Errorf("simulate missing = %v, want not_found", err)
	}
}

func TestDecompileRoundTrip(t *testing.T) {
	directory := t.TempDir()
	mustRun(t, "compile", writeScript(t, "north-wall.jsonc", northWall), "--dir", directory)

	script := filepath.Join(t.TempDir(), "copy.jsonc")
	mustRun(t, "decompile", "north-wall", "--dir", directory, "-o", script)
	mustRun(t, "compile", script, "--dir", directory, "--name", "copy")

	var original, copied inspectResult
	decodeJSON(t, mustRun(t, "inspect", "north-wall", "--dir", directory, "--json"), &original)
	decodeJSON(t, mustRun(t, "inspect", "copy", "--dir", directory, "--json"), &copied)
	if original.Digest != copied.Digest {
		t.Errorf("decompiled copy digest %s, original %s", copied.Digest, original.Digest)
	}
}

func TestRemove(t *testing.T) {
	directory := t.TempDir()
	mustRun(t, "compile", writeScript(t, "line.jsonc", line), "--dir", directory)

	if output := mustRun(t, "remove", "line", "--dir", directory); output != "removed line\n" {
		t.Errorf("remove output = %q", output)
	}
	_, err := runCommand(t, "inspect", "line", "--dir", directory)
	if cli.Category(err) != cli.CategoryNotFound {
		t.Errorf("inspect after remove = %v, want not_found", err)
	}
	_, err = runCommand(t, "remove", "line", "--dir", directory)
	if cli.Category(err) != cli.CategoryNotFound {
		t.Errorf("second remove = %v, want not_found", err)
	}
}

func TestLockedDirectoryIsConflict(t *testing.T) {
	directory := t.TempDir()
	store, err := trailstore.Open(trailstore.Config{Directory: directory})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	_, err = runCommand(t, "list", "--dir", directory)
	if !errors.Is(err, trailstore.ErrLocked) || cli.Category(err) != cli.CategoryConflict {
		t.Errorf("list on a locked directory = %v, want a conflict wrapping ErrLocked", err)
	}
}

func TestConfigFileSelectsDirectory(t *testing.T) {
	root := t.TempDir()
	configFile := filepath.Join(root, "waypath.yaml")
	contents := "paths:\n  root: " + root + "\n  paths: ${WAYPATH_ROOT}/stored\n"
	if err := os.WriteFile(configFile, []byte(contents), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	mustRun(t, "compile", writeScript(t, "line.jsonc", line), "--config", configFile)
	if _, err := os.Stat(filepath.Join(root, "stored", "line"+trailstore.Extension)); err != nil {
		t.Errorf("compiled path not under the configured directory: %v", err)
	}
}

func TestNoDirectoryIsValidationError(t *testing.T) {
	_, err := runCommand(t, "list")
	if cli.Category(err) != cli.CategoryValidation {
		t.Errorf("list with no directory = %v, want a validation error", err)
	}
}

func TestCommandTreeHelp(t *testing.T) {
	var stdout, help bytes.Buffer
	root := rootCommand(&stdout)
	root.Output = &help
	walkCommands(root, func(command *cli.Command) {
		help.Reset()
		command.PrintHelp(&help)
		if command.Summary == "" && command != root {
			t.Errorf("%s has no summary", command.Name)
		}
		if !strings.Contains(help.String(), "Usage:") {
			t.Errorf("%s help has no usage line", command.Name)
		}
	})
}

func walkCommands(command *cli.Command, visit func(*cli.Command)) {
	visit(command)
	for _, sub := range command.Subcommands {
		walkCommands(sub, visit)
	}
}
