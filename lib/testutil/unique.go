// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var nameCounter atomic.Uint64

// UniqueName returns "prefix-N" with N increasing across the test
// binary. The result is always a valid path name.
//
//	name := testutil.UniqueName("patrol") // "patrol-1", "patrol-2", ...
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, nameCounter.Add(1))
}
