// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint helpers for the waypath binary:
// reporting a failure that happened before the command logger exists
// and exiting.
package process
