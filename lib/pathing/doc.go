// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pathing is the facade over the path subsystem. A [Service]
// ties a store, a registry, and a scheduler together and exposes the
// four operations a command layer needs:
//
//	session, err := service.StartRecording(player, "north-gate")
//	service.StopRecording(session)
//	path, err := service.FindPath("north-gate")
//	binding, err := service.BindReplay(path, guardID)
//
// The registry is created by the caller at startup and handed in, so
// its lifetime is explicit. Close stops all recordings and bindings.
package pathing
