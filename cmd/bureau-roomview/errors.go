// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
)

// errorCategory classifies a command failure for its exit code.
type errorCategory string

const (
	categoryValidation errorCategory = "validation"
	categoryForbidden  errorCategory = "forbidden"
	categoryNotFound   errorCategory = "not_found"
	categoryTransient  errorCategory = "transient"
)

// commandError is a categorized error with an optional hint printed
// after the message.
type commandError struct {
	Category errorCategory
	Err      error
	Hint     string
}

func (e *commandError) Error() string { return e.Err.Error() }

func (e *commandError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns e.
func (e *commandError) WithHint(hint string) *commandError {
	e.Hint = hint
	return e
}

// ExitCode is 2 for bad input and 1 otherwise.
func (e *commandError) ExitCode() int {
	if e.Category == categoryValidation {
		return 2
	}
	return 1
}

func validation(format string, args ...any) *commandError {
	return &commandError{Category: categoryValidation, Err: fmt.Errorf(format, args...)}
}

func forbidden(format string, args ...any) *commandError {
	return &commandError{Category: categoryForbidden, Err: fmt.Errorf(format, args...)}
}

func notFound(format string, args ...any) *commandError {
	return &commandError{Category: categoryNotFound, Err: fmt.Errorf(format, args...)}
}

func transient(format string, args ...any) *commandError {
	return &commandError{Category: categoryTransient, Err: fmt.Errorf(format, args...)}
}

// reportError writes err and its hint, if any, and returns the exit
// code.
func reportError(writer io.Writer, err error) int {
	fmt.Fprintf(writer, "error: %v\n", err)
	var command *commandError
	if errors.As(err, &command) {
		if command.Hint != "" {
			fmt.Fprintf(writer, "hint: %s\n", command.Hint)
		}
		return command.ExitCode()
	}
	return 1
}
