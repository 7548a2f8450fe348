// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/term"
)

// ReadFile reads a token file, trims surrounding whitespace, and
// returns the contents in a Buffer. The heap copy read from disk is
// zeroed before returning.
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("secret: reading %s: %w", path, err)
	}
	defer Zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("secret: %s is empty", path)
	}
	return NewFromBytes(trimmed)
}

// Prompt writes prompt to stderr and reads a line from the terminal
// on fd with echo disabled.
func Prompt(fd int, prompt string) (*Buffer, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("secret: cannot prompt for %q: not a terminal", prompt)
	}
	fmt.Fprint(os.Stderr, prompt)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("secret: reading password: %w", err)
	}
	defer Zero(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("secret: empty password")
	}
	return NewFromBytes(data)
}
