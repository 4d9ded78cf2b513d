// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import "github.com/luxfi/ids"

// governanceCall is the union of operations the wallet accepts against
// itself. Each is only reachable through an executed transaction whose
// destination is the wallet's own address.
type governanceCall interface {
	apply(w *Wallet) error
}

// AddOwnerCall admits a new owner.
type AddOwnerCall struct {
	Owner ids.ShortID `serialize:"true" json:"owner"`
}

func (c *AddOwnerCall) apply(w *Wallet) error {
	return w.owners.add(c.Owner)
}

// RemoveOwnerCall drops an owner, clamping the requirement to the remaining
// owner count if needed.
type RemoveOwnerCall struct {
	Owner ids.ShortID `serialize:"true" json:"owner"`
}

func (c *RemoveOwnerCall) apply(w *Wallet) error {
	return w.owners.remove(c.Owner)
}

// ReplaceOwnerCall swaps one owner for another in a single step.
type ReplaceOwnerCall struct {
	OldOwner ids.ShortID `serialize:"true" json:"oldOwner"`
	NewOwner ids.ShortID `serialize:"true" json:"newOwner"`
}

func (c *ReplaceOwnerCall) apply(w *Wallet) error {
	return w.owners.replace(c.OldOwner, c.NewOwner)
}

// ChangeRequirementCall moves the quorum threshold.
type ChangeRequirementCall struct {
	Required uint32 `serialize:"true" json:"required"`
}

func (c *ChangeRequirementCall) apply(w *Wallet) error {
	return w.owners.changeRequirement(c.Required)
}

// EncodeGovernanceCall serializes a governance call for use as a transaction
// payload.
func EncodeGovernanceCall(c governanceCall) ([]byte, error) {
	return Codec.Marshal(codecVersion, &c)
}

// applyGovernance decodes and applies a self-targeted payload. The wallet's
// lock is already held by the executing transaction.
func (w *Wallet) applyGovernance(payload []byte) error {
	var c governanceCall
	if _, err := Codec.Unmarshal(payload, &c); err != nil {
		return ErrUnknownGovernanceCall
	}
	return c.apply(w)
}
