// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError asks main to exit with Code without printing anything. A
// command returns it when a non-zero exit is a normal outcome that it
// has already reported, such as "verify" finding a damaged file.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode is the interface main checks for.
func (e *ExitError) ExitCode() int {
	return e.Code
}
