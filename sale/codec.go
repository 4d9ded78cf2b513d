// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"errors"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/ids"

	"github.com/luxfi/fundraise/contract"
)

const codecVersion = 0

var (
	_ contract.Contract = (*Sale)(nil)

	ErrUnknownCall = errors.New("unknown sale call")

	// Codec serializes the sale's administrative call payloads.
	Codec codec.Manager
)

func init() {
	c := linearcodec.NewDefault()

	err := errors.Join(
		c.RegisterType(&PauseCall{}),
		c.RegisterType(&ResumeCall{}),
		c.RegisterType(&TransferTokenOwnershipCall{}),
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
	apply(s *Sale, from ids.ShortID) error
}

// PauseCall suspends purchases.
type PauseCall struct{}

func (*PauseCall) apply(s *Sale, from ids.ShortID) error {
	return s.Pause(from)
}

// ResumeCall lifts a pause.
type ResumeCall struct{}

func (*ResumeCall) apply(s *Sale, from ids.ShortID) error {
	return s.Resume(from)
}

// TransferTokenOwnershipCall hands the token's mint authority away from the
// sale.
type TransferTokenOwnershipCall struct {
	NewOwner ids.ShortID `serialize:"true" json:"newOwner"`
}

func (c *TransferTokenOwnershipCall) apply(s *Sale, from ids.ShortID) error {
	return s.TransferTokenOwnership(from, c.NewOwner)
}

// EncodeCall serializes a sale call payload.
func EncodeCall(c call) ([]byte, error) {
	return Codec.Marshal(codecVersion, &c)
}

// Call implements contract.Contract. A call with no payload is a purchase
// carrying the buyer's funds; anything else is an administrative call.
func (s *Sale) Call(from ids.ShortID, value uint64, payload []byte) error {
	if len(payload) == 0 {
		_, err := s.Buy(from, value)
		return err
	}

	var c call
	if _, err := Codec.Unmarshal(payload, &c); err != nil {
		return ErrUnknownCall
	}
	return c.apply(s, from)
}
