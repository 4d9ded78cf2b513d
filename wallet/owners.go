// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"
)

// MaxOwners bounds the owner registry.
const MaxOwners = 50

var ownersKey = []byte("o:state")

type ownerState struct {
	Owners   []ids.ShortID `serialize:"true" json:"owners"`
	Required uint32        `serialize:"true" json:"required"`
}

// owners tracks the confirming set and the quorum threshold. The full state
// is kept in memory and rewritten as one record on every change, so a
// governance call either lands completely or not at all.
type owners struct {
	db database.Database

	list     []ids.ShortID
	members  set.Set[ids.ShortID]
	required uint32
}

// validRequirement bounds the threshold the way every mutation must.
func validRequirement(ownerCount int, required uint32) bool {
	return ownerCount <= MaxOwners &&
		required <= uint32(ownerCount) &&
		required != 0 &&
		ownerCount != 0
}

// newOwners loads the registry from db, seeding it with the genesis set on a
// fresh database.
func newOwners(db database.Database, genesis []ids.ShortID, required uint32) (*owners, error) {
	o := &owners{db: db}

	stateBytes, err := db.Get(ownersKey)
	switch {
	case err == nil:
		state := ownerState{}
		if _, err := Codec.Unmarshal(stateBytes, &state); err != nil {
			return nil, err
		}
		o.list = state.Owners
		o.required = state.Required
	case err == database.ErrNotFound:
		if !validRequirement(len(genesis), required) {
			return nil, ErrInvalidRequirement
		}
		for _, owner := range genesis {
			if owner == ids.ShortEmpty {
				return nil, ErrNilOwner
			}
			if o.members.Contains(owner) {
				return nil, ErrOwnerExists
			}
			o.members.Add(owner)
		}
		o.list = genesis
		o.required = required
		return o, o.write()
	default:
		return nil, err
	}

	for _, owner := range o.list {
		o.members.Add(owner)
	}
	return o, nil
}

func (o *owners) write() error {
	stateBytes, err := Codec.Marshal(codecVersion, &ownerState{
		Owners:   o.list,
		Required: o.required,
	})
	if err != nil {
		return err
	}
	return o.db.Put(ownersKey, stateBytes)
}

func (o *owners) contains(addr ids.ShortID) bool {
	return o.members.Contains(addr)
}

func (o *owners) addresses() []ids.ShortID {
	addrs := make([]ids.ShortID, len(o.list))
	copy(addrs, o.list)
	return addrs
}

func (o *owners) add(owner ids.ShortID) error {
	switch {
	case owner == ids.ShortEmpty:
		return ErrNilOwner
	case o.contains(owner):
		return ErrOwnerExists
	case len(o.list)+1 > MaxOwners:
		return ErrTooManyOwners
	}

	o.list = append(o.list, owner)
	o.members.Add(owner)
	return o.write()
}

// remove drops an owner. If the threshold would exceed the remaining owner
// count it is clamped down to it.
func (o *owners) remove(owner ids.ShortID) error {
	if !o.contains(owner) {
		return ErrOwnerNotFound
	}
	if len(o.list) == 1 {
		// A wallet with no owners could never act again.
		return ErrInvalidRequirement
	}

	for i, addr := range o.list {
		if addr == owner {
			o.list = append(o.list[:i], o.list[i+1:]...)
			break
		}
	}
	o.members.Remove(owner)

	if o.required > uint32(len(o.list)) {
		o.required = uint32(len(o.list))
	}
	return o.write()
}

// replace swaps an existing owner for a new one, preserving its position.
func (o *owners) replace(oldOwner, newOwner ids.ShortID) error {
	switch {
	case newOwner == ids.ShortEmpty:
		return ErrNilOwner
	case !o.contains(oldOwner):
		return ErrOwnerNotFound
	case o.contains(newOwner):
		return ErrOwnerExists
	}

	for i, addr := range o.list {
		if addr == oldOwner {
			o.list[i] = newOwner
			break
		}
	}
	o.members.Remove(oldOwner)
	o.members.Add(newOwner)
	return o.write()
}

func (o *owners) changeRequirement(required uint32) error {
	if !validRequirement(len(o.list), required) {
		return ErrInvalidRequirement
	}
	o.required = required
	return o.write()
}
