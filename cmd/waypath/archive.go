// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/trail"
	"github.com/bureau-foundation/waypath/lib/trailarchive"
)

// ArchiveExtension is the suffix of archives written without --output.
const ArchiveExtension = ".wpar"

type exportParams struct {
	storeParams
	Output      string `flag:"output,o" desc:"archive file to write (default: a timestamped file in paths.archives)"`
	Compression string `flag:"compression" default:"zstd" desc:"body compression: zstd, lz4, or none"`
}

func exportCommand(stdout io.Writer) *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Bundle paths into an archive",
		Description: `Write the named paths (or every stored path) into one compressed
archive file for copying to another server. Each path is verified as
it is read, so an archive never carries a damaged path.

Without --output, the archive goes to the configured archives
directory, named after the current UTC time.`,
		Usage: "waypath export [NAME...] [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("export", &params) },
		Run: func(args []string) error {
			compression, err := trailarchive.ParseCompression(params.Compression)
			if err != nil {
				return cli.Validation("--compression: %w", err)
			}
			env, err := params.open("export")
			if err != nil {
				return err
			}
			defer env.Close()

			names, err := env.namesOrAll(args)
			if err != nil {
				return err
			}
			paths := make([]*trail.Path, 0, len(names))
			for _, name := range names {
				path, err := env.load(name)
				if err != nil {
					return err
				}
				paths = append(paths, path)
			}

			output := params.Output
			if output == "" {
				if err := env.config.EnsurePaths(); err != nil {
					return cli.Internal("%w", err)
				}
				output = filepath.Join(env.config.Paths.Archives,
					time.Now().UTC().Format("20060102T150405Z")+ArchiveExtension)
			}

			summary, err := writeArchive(output, paths, compression)
			if err != nil {
				return err
			}
			env.logger.Info("archive written",
				"file", output,
				"paths", summary.Paths,
				"compression", summary.Compression.String(),
				"uncompressed_bytes", summary.UncompressedSize,
				"compressed_bytes", summary.CompressedSize,
			)
			fmt.Fprintf(stdout, "exported %d paths to %s (%s, %d bytes)\n",
				summary.Paths, output, summary.Compression, summary.CompressedSize)
			return nil
		},
		Examples: []cli.Example{
			{Description: "Export everything", Command: "waypath export --config waypath.yaml"},
			{Description: "Export two paths with LZ4", Command: "waypath export north-wall south-gate --dir ./paths --compression lz4 -o gates.wpar"},
		},
	}
}

// writeArchive writes the archive to a temporary file next to output
// and renames it into place, so a failed export leaves nothing behind.
func writeArchive(output string, paths []*trail.Path, compression trailarchive.Compression) (trailarchive.Summary, error) {
	temporary, err := os.CreateTemp(filepath.Dir(output), filepath.Base(output)+".*.tmp")
	if err != nil {
		return trailarchive.Summary{}, cli.Internal("creating archive: %w", err)
	}
	temporaryName := temporary.Name()
	success := false
	defer func() {
		if !success {
			temporary.Close()
			os.Remove(temporaryName)
		}
	}()

	buffered := bufio.NewWriter(temporary)
	summary, err := trailarchive.Write(buffered, paths, compression)
	if err != nil {
		return trailarchive.Summary{}, cli.Internal("writing archive: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return trailarchive.Summary{}, cli.Internal("writing archive: %w", err)
	}
	if err := temporary.Close(); err != nil {
		return trailarchive.Summary{}, cli.Internal("writing archive: %w", err)
	}
	if err := os.Rename(temporaryName, output); err != nil {
		return trailarchive.Summary{}, cli.Internal("placing archive: %w", err)
	}
	success = true
	return summary, nil
}

type importParams struct {
	storeParams
	cli.JSONOutput
	Force bool `flag:"force,f" desc:"replace stored paths that have the same name"`
}

type importResult struct {
	Imported []string `json:"imported"`
	Skipped  []string `json:"skipped"`
}

func importCommand(stdout io.Writer) *cli.Command {
	var params importParams

	return &cli.Command{
		Name:    "import",
		Summary: "Store the paths from an archive",
		Description: `Read an archive written by "waypath export", verify every path in it,
and store them. Nothing is stored if any path in the archive is
damaged. Paths whose name is already stored are skipped unless --force
is given.`,
		Usage: "waypath import FILE [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("import", &params) },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("import takes exactly one archive file")
			}

			file, err := os.Open(args[0])
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return cli.NotFound("archive %s does not exist", args[0])
				}
				return cli.Internal("%w", err)
			}
			paths, err := trailarchive.Read(bufio.NewReader(file))
			file.Close()
			if err != nil {
				if errors.Is(err, trailarchive.ErrBadArchive) {
					return cli.Validation("%s: %w", args[0], err)
				}
				return cli.Internal("reading %s: %w", args[0], err)
			}

			env, err := params.open("import")
			if err != nil {
				return err
			}
			defer env.Close()

			result := importResult{Imported: []string{}, Skipped: []string{}}
			for _, path := range paths {
				if !params.Force && env.store.Exists(path.Name()) {
					env.logger.Warn("path already stored, skipping", "path", path.Name())
					result.Skipped = append(result.Skipped, path.Name())
					continue
				}
				if err := env.store.Save(path); err != nil {
					return cli.Internal("storing %q: %w", path.Name(), err)
				}
				result.Imported = append(result.Imported, path.Name())
			}

			if done, err := params.EmitJSON(stdout, result); done {
				return err
			}
			fmt.Fprintf(stdout, "imported %d paths", len(result.Imported))
			if len(result.Skipped) > 0 {
				fmt.Fprintf(stdout, ", skipped %d already stored: %v (use --force to replace)", len(result.Skipped), result.Skipped)
			}
			fmt.Fprintln(stdout)
			return nil
		},
	}
}
