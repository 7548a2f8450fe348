// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invite

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/roomview/messaging"
)

// Category classifies an invite failure so the UI can react without
// parsing messages.
type Category string

const (
	// CategoryValidation means the input named no usable address.
	CategoryValidation Category = "validation"
	// CategoryForbidden means the homeserver refused with M_FORBIDDEN.
	CategoryForbidden Category = "forbidden"
	// CategoryServer is any other homeserver or transport failure.
	CategoryServer Category = "server"
	// CategoryGuest means the account is a guest and cannot invite.
	CategoryGuest Category = "guest"
	// CategoryAborted means the user declined the history warning or
	// the context ended first.
	CategoryAborted Category = "aborted"
)

// Failure is a categorized invite error. Title and Description are
// the text shown to the user.
type Failure struct {
	Category    Category
	Address     string
	Title       string
	Description string
	Err         error
}

func (failure *Failure) Error() string {
	if failure.Address != "" {
		return fmt.Sprintf("invite: %s: %s: %v", failure.Address, failure.Category, failure.Err)
	}
	return fmt.Sprintf("invite: %s: %v", failure.Category, failure.Err)
}

func (failure *Failure) Unwrap() error { return failure.Err }

// IsCategory reports whether err is a *Failure of the given category.
func IsCategory(err error, category Category) bool {
	var failure *Failure
	return errors.As(err, &failure) && failure.Category == category
}

const (
	malformedDescription = "Malformed ID. Should be an email address or a Matrix ID like '@localpart:domain'"
	forbiddenDescription = "You do not have permission to invite people to this room."
	guestDescription     = "Guest user can't invite new users. Please register to be able to invite new users into a room."
)

var (
	errMalformed = errors.New("no valid address")
	errDeclined  = errors.New("shared history warning declined")
	errGuest     = errors.New("guest accounts cannot invite")

	errNoPermission = errors.New("power level below the room's invite level")
)

func validationFailure(address string, err error) *Failure {
	return &Failure{
		Category:    CategoryValidation,
		Address:     address,
		Title:       "Invite Error",
		Description: malformedDescription,
		Err:         err,
	}
}

func guestFailure() *Failure {
	return &Failure{
		Category:    CategoryGuest,
		Title:       "Unable to Invite",
		Description: guestDescription,
		Err:         errGuest,
	}
}

func forbiddenFailure(address string, err error) *Failure {
	return &Failure{
		Category:    CategoryForbidden,
		Address:     address,
		Title:       "Unable to Invite",
		Description: forbiddenDescription,
		Err:         err,
	}
}

func abortedFailure(err error) *Failure {
	return &Failure{Category: CategoryAborted, Title: "Invite cancelled", Err: err}
}

// classify turns an Inviter error into a Failure.
func classify(address string, err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		failure = abortedFailure(err)
	case messaging.IsMatrixError(err, messaging.ErrCodeForbidden):
		failure = forbiddenFailure(address, err)
	default:
		failure = &Failure{
			Category:    CategoryServer,
			Title:       "Server error whilst inviting",
			Description: messaging.ServerMessage(err),
			Err:         err,
		}
	}
	failure.Address = address
	return failure
}
