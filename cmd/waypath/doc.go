// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Waypath manages the recorded paths of a server's path directory from
// the command line: listing and checking stored paths, moving them
// between servers as archives, compiling hand-written path scripts,
// and dry-running a replay without a live world.
//
// The path directory comes from the config file named by --config or
// WAYPATH_CONFIG, or directly from --dir. Commands that touch the
// directory take its lock, so they fail fast while a server holds it.
package main
