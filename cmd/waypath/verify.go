// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waypath/cmd/waypath/cli"
	"github.com/bureau-foundation/waypath/lib/trailstore"
)

type verifyParams struct {
	storeParams
	cli.JSONOutput
	Digest string `flag:"digest" desc:"expected manifest digest (hex); requires exactly one NAME"`
}

type verifyResult struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Waypoints int    `json:"waypoints,omitempty"`
	Error     string `json:"error,omitempty"`
}

func verifyCommand(stdout io.Writer) *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check stored paths for damage",
		Description: `Fully decode each named path (or every stored path) and check it
against its manifest digest and waypoint count. These are the checks a
server runs when it loads paths at startup; a path that fails here is
one the server will skip.

With --digest, the single named path must also carry a manifest whose
digest equals the given value, as printed by "waypath inspect". A path
without a manifest cannot match.

Exits 1 if any path fails.`,
		Usage: "waypath verify [NAME...] [flags]",
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("verify", &params) },
		Run: func(args []string) error {
			var expected trailstore.Digest
			if params.Digest != "" {
				if len(args) != 1 {
					return cli.Validation("--digest requires exactly one path name")
				}
				parsed, err := trailstore.ParseDigest(params.Digest)
				if err != nil {
					return cli.Validation("--digest: %v", err)
				}
				expected = parsed
			}

			env, err := params.open("verify")
			if err != nil {
				return err
			}
			defer env.Close()

			names, err := env.namesOrAll(args)
			if err != nil {
				return err
			}

			results := make([]verifyResult, 0, len(names))
			failed := 0
			for _, name := range names {
				path, err := env.store.Load(name)
				if err != nil {
					failed++
					results = append(results, verifyResult{Name: name, Error: err.Error()})
					continue
				}
				if !expected.IsZero() {
					if err := checkDigest(env.store, name, expected); err != nil {
						failed++
						results = append(results, verifyResult{Name: name, Waypoints: path.Len(), Error: err.Error()})
						continue
					}
				}
				results = append(results, verifyResult{Name: name, OK: true, Waypoints: path.Len()})
			}

			if done, err := params.EmitJSON(stdout, results); done {
				if err != nil {
					return err
				}
			} else {
				for _, result := range results {
					if result.OK {
						fmt.Fprintf(stdout, "ok    %s (%d waypoints)\n", result.Name, result.Waypoints)
					} else {
						fmt.Fprintf(stdout, "FAIL  %s: %s\n", result.Name, result.Error)
					}
				}
			}

			if failed > 0 {
				env.logger.Warn("paths failed verification", "failed", failed, "checked", len(names))
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
		Examples: []cli.Example{
			{Description: "Check every stored path", Command: "waypath verify --dir ./paths"},
			{Command: "waypath verify north-wall south-gate --dir ./paths"},
			{Description: "Confirm a path matches a known digest", Command: "waypath verify north-wall --digest 3f9a... --dir ./paths"},
		},
	}
}

// checkDigest compares the manifest digest of a path that already
// loaded cleanly against expected.
func checkDigest(store *trailstore.Store, name string, expected trailstore.Digest) error {
	manifest, ok, err := store.ReadManifest(name)
	if err != nil {
		return err
	}
	if !ok || manifest.Digest.IsZero() {
		return fmt.Errorf("no manifest digest to compare with %s", expected)
	}
	if manifest.Digest != expected {
		return fmt.Errorf("digest is %s, want %s", manifest.Digest, expected)
	}
	return nil
}
