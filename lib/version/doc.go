// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the waypath binary.
//
// The variables are injected at build time with -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/waypath/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/waypath
//
// Development builds and test runs see the defaults, "unknown" and
// "0.1.0-dev".
package version
