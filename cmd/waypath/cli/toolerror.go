// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies a command failure so scripts can tell bad
// input from a missing path from a broken store without parsing text.
type ErrorCategory string

const (
	// CategoryValidation: wrong argument count, unparseable flag value,
	// invalid path name. Fix the input and retry.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: the named path or file does not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict: the store is locked by another process, or an
	// import would replace an existing path without --force.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryInternal: I/O failure or damaged data.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error. The category is not part
// of the message.
type ToolError struct {
	Category ErrorCategory
	Err      error
}

func (e *ToolError) Error() string { return e.Err.Error() }

func (e *ToolError) Unwrap() error { return e.Err }

// Validation reports bad input.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound reports a missing path or file.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict reports an operation that collides with existing state.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Internal reports an unexpected failure.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// Category returns the category of the first ToolError in err's chain,
// or CategoryInternal when there is none.
func Category(err error) ErrorCategory {
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return toolError.Category
	}
	return CategoryInternal
}
