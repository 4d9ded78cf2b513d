// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"errors"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/ids"
)

const codecVersion = 0

var (
	ErrUnknownCall = errors.New("unknown token call")

	// Codec serializes the token's call payloads.
	Codec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()

	err := errors.Join(
		c.RegisterType(&TransferCall{}),
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

// call is the union of operations reachable through an address-targeted call.
type call interface {
	apply(t *Token, from ids.ShortID) error
}

// TransferCall moves units from the calling account.
type TransferCall struct {
	To     ids.ShortID `serialize:"true" json:"to"`
	Amount uint64      `serialize:"true" json:"amount"`
}

func (c *TransferCall) apply(t *Token, from ids.ShortID) error {
	return t.Transfer(from, c.To, c.Amount)
}

// TransferOwnershipCall hands mint authority to a new account.
type TransferOwnershipCall struct {
	NewOwner ids.ShortID `serialize:"true" json:"newOwner"`
}

func (c *TransferOwnershipCall) apply(t *Token, from ids.ShortID) error {
	return t.TransferOwnership(from, c.NewOwner)
}

// EncodeCall serializes a token call payload.
func EncodeCall(c call) ([]byte, error) {
	return Codec.Marshal(codecVersion, &c)
}

// Call implements contract.Contract. The payload is decoded with the token's
// own codec; the caller never interprets it.
func (t *Token) Call(from ids.ShortID, value uint64, payload []byte) error {
	if value != 0 {
		return ErrNonPayable
	}

	var c call
	if _, err := Codec.Unmarshal(payload, &c); err != nil {
		return ErrUnknownCall
	}
	return c.apply(t, from)
}
