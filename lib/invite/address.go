// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/bureau-foundation/roomview/lib/ref"
)

// AddressKind is the kind of invite target an address names.
type AddressKind int

const (
	// Unknown addresses are neither a Matrix ID nor an email.
	Unknown AddressKind = iota
	// MatrixID is a user ID like @alice:example.org.
	MatrixID
	// Email is an email address, invited through the identity server.
	Email
)

func (kind AddressKind) String() string {
	switch kind {
	case MatrixID:
		return "mx"
	case Email:
		return "email"
	default:
		return "unknown"
	}
}

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// AddressType classifies an address. Email wins when both shapes fit.
func AddressType(address string) AddressKind {
	if emailPattern.MatchString(address) {
		return Email
	}
	if strings.HasPrefix(address, "@") {
		if _, err := ref.ParseUserID(address); err == nil {
			return MatrixID
		}
	}
	return Unknown
}

// SplitAddresses splits user input into addresses. Neither user IDs
// nor email addresses may contain commas, semicolons or whitespace,
// so any run of those separates two addresses.
func SplitAddresses(input string) []string {
	return strings.FieldsFunc(input, func(character rune) bool {
		return character == ',' || character == ';' || unicode.IsSpace(character)
	})
}
