// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package whitelist

import (
	"errors"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/ids"
)

const codecVersion = 0

var (
	ErrUnknownCall = errors.New("unknown whitelist call")
	ErrNonPayable  = errors.New("whitelist does not accept funds")

	// Codec serializes the whitelist's call payloads.
	Codec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()

	err := errors.Join(
		c.RegisterType(&RegisterCall{}),
		c.RegisterType(&RemoveCall{}),
		c.RegisterType(&ChangeTierCall{}),
		c.RegisterType(&PauseCall{}),
		c.RegisterType(&ResumeCall{}),
		c.RegisterType(&StopCall{}),
		c.RegisterType(&TransferOwnershipCall{}),
	)
	if err != nil {
		panic(err)
	}

	Codec = codec.NewDefaultManager()
	if err := Codec.RegisterCodec(codecVersion, c); err != nil {
		panic(err)
	}
}

type call interface {
	apply(w *Whitelist, from ids.ShortID) error
}

// RegisterCall registers an account.
type RegisterCall struct {
	Account ids.ShortID `serialize:"true" json:"account"`
}

func (c *RegisterCall) apply(w *Whitelist, from ids.ShortID) error {
	return w.Register(from, c.Account)
}

// RemoveCall drops an account from the list.
type RemoveCall struct {
	Account ids.ShortID `serialize:"true" json:"account"`
}

func (c *RemoveCall) apply(w *Whitelist, from ids.ShortID) error {
	return w.Remove(from, c.Account)
}

// ChangeTierCall moves an account to a different tier.
type ChangeTierCall struct {
	Account ids.ShortID `serialize:"true" json:"account"`
	Tier    uint8       `serialize:"true" json:"tier"`
}

func (c *ChangeTierCall) apply(w *Whitelist, from ids.ShortID) error {
	return w.ChangeTier(from, c.Account, c.Tier)
}

// PauseCall suspends registration.
type PauseCall struct{}

func (*PauseCall) apply(w *Whitelist, from ids.ShortID) error {
	return w.Pause(from)
}

// ResumeCall lifts a pause.
type ResumeCall struct{}

func (*ResumeCall) apply(w *Whitelist, from ids.ShortID) error {
	return w.Resume(from)
}

// StopCall ends registration permanently.
type StopCall struct{}

func (*StopCall) apply(w *Whitelist, from ids.ShortID) error {
	return w.Stop(from)
}

// TransferOwnershipCall hands administration to a new account.
type TransferOwnershipCall struct {
	NewOwner ids.ShortID `serialize:"true" json:"newOwner"`
}

func (c *TransferOwnershipCall) apply(w *Whitelist, from ids.ShortID) error {
	return w.TransferOwnership(from, c.NewOwner)
}

// EncodeCall serializes a whitelist call payload.
func EncodeCall(c call) ([]byte, error) {
	return Codec.Marshal(codecVersion, &c)
}

// Call implements contract.Contract.
func (w *Whitelist) Call(from ids.ShortID, value uint64, payload []byte) error {
	if value != 0 {
		return ErrNonPayable
	}

	var c call
	if _, err := Codec.Unmarshal(payload, &c); err != nil {
		return ErrUnknownCall
	}
	return c.apply(w, from)
}
