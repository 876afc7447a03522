// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the command framework behind the waypath binary.
//
// A [Command] is a node in a tree: groups dispatch on their first
// positional argument, leaves parse their flags with pflag and call
// Run. Flags are usually declared as tagged struct fields and bound
// with [FlagsFromParams]. Commands report failures as categorized
// [ToolError] values, or as [ExitError] when they have already
// written their own output.
package cli
