// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"strings"
	"testing"
)

func TestInfoMarksDirtyBuilds(t *testing.T) {
	savedCommit, savedDirty := GitCommit, GitDirty
	t.Cleanup(func() { GitCommit, GitDirty = savedCommit, savedDirty })

	GitCommit = "abc1234"
	GitDirty = "false"
	if got := Info(); !strings.Contains(got, "(abc1234,") {
		t.Errorf("Info() = %q, want the bare commit", got)
	}

	GitDirty = "true"
	if got := Info(); !strings.Contains(got, "abc1234-dirty") {
		t.Errorf("Info() = %q, want a -dirty suffix", got)
	}
	if !Current().Dirty {
		t.Error("Current().Dirty = false for a dirty build")
	}
}

func TestFullIncludesPlatform(t *testing.T) {
	build := Current()
	full := Full()
	if !strings.HasPrefix(full, Info()) {
		t.Errorf("Full() = %q, want it to start with Info()", full)
	}
	if !strings.Contains(full, build.Platform) || !strings.Contains(full, build.GoVersion) {
		t.Errorf("Full() = %q, missing %s or %s", full, build.Platform, build.GoVersion)
	}
}
