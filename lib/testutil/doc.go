// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds the small set of helpers shared by waypath
// tests.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern used when a test waits on a goroutine it started. They are
// the only place tests touch the wall clock; everything else runs on
// clock.Fake or schedule.Manual. The timeout is a hang guard, not a
// synchronization mechanism.
//
// [UniqueName] produces distinct path names for tests that share a
// registry or a directory.
//
// All helpers fail the test with t.Fatalf rather than returning
// errors.
package testutil
