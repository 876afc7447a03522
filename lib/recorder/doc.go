// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package recorder captures an actor's movement into a path.
//
// A [Session] samples its source actor once per scheduler tick and
// appends the pose to a private buffer, skipping samples that moved
// less than the configured Manhattan threshold from the last kept
// waypoint. The session ends when the actor goes offline, when the
// buffer reaches its capacity, or when [Session.Stop] is called. Ending
// runs the finalize step exactly once: the buffer is saved through a
// [Persister] and, if the save succeeds, published through a
// [Publisher]. An empty buffer is neither saved nor published.
//
// States move strictly forward:
//
//	Idle -> Recording -> Finalizing -> Complete
//
// A tick that arrives after finalizing has begun is a no-op, so a stop
// racing the scheduler never saves or publishes twice. A save failure
// is logged and recorded in the [Result]; the session still completes.
package recorder
