// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import "errors"

var (
	// Unauthorized
	ErrNotOwner = errors.New("caller is not an owner")
	ErrNotSelf  = errors.New("governance calls must come from the wallet itself")

	// NotFound
	ErrTxNotFound    = errors.New("transaction not found")
	ErrOwnerNotFound = errors.New("owner not found")

	// AlreadyExists
	ErrOwnerExists      = errors.New("owner already exists")
	ErrAlreadyConfirmed = errors.New("transaction already confirmed by this owner")

	// InvalidState
	ErrNilOwner               = errors.New("nil owner address")
	ErrNilDestination         = errors.New("nil destination address")
	ErrTooManyOwners          = errors.New("owner limit reached")
	ErrInvalidRequirement     = errors.New("requirement out of range")
	ErrNotConfirmed           = errors.New("transaction not confirmed by this owner")
	ErrAlreadyExecuted        = errors.New("transaction already executed")
	ErrNotEnoughConfirmations = errors.New("transaction below quorum")
	ErrPageLimitExceeded      = errors.New("page limit exceeded")

	ErrUnknownGovernanceCall = errors.New("unknown governance call")
)
