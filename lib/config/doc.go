// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for waypath.
//
// Configuration is loaded from a single file specified by either the
// WAYPATH_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. Files named *.json or *.jsonc are
// accepted as JSON with comments.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches. Production caps recording capacity at
// [ProductionMaxPathLocations].
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${WAYPATH_ROOT}, and ${VAR:-default} patterns are expanded.
// No other environment variables override config values.
//
// Key exports:
//
//   - [Config] -- master struct with Paths, Recording, Replay
//   - [Default] -- returns a Config with development defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other waypath packages.
package config
