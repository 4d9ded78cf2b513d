// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"errors"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
)

const codecVersion = 0

// Codec serializes wallet state and governance call payloads.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault()

	err := errors.Join(
		c.RegisterType(&AddOwnerCall{}),
		c.RegisterType(&RemoveOwnerCall{}),
		c.RegisterType(&ReplaceOwnerCall{}),
		c.RegisterType(&ChangeRequirementCall{}),
	)
	if err != nil {
		panic(err)
	}

	Codec = codec.NewDefaultManager()
	if err := Codec.RegisterCodec(codecVersion, c); err != nil {
		panic(err)
	}
}
