// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"errors"
	"time"

	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/fundraise/sale"
	"github.com/luxfi/fundraise/wallet"
)

var (
	ErrNilGenesisAddress  = errors.New("nil genesis address")
	ErrDuplicateAddress   = errors.New("duplicate genesis address")
	ErrNoOwners           = errors.New("no owners in genesis")
	ErrZeroRate           = errors.New("sale rate is zero")
	ErrInvalidRequirement = wallet.ErrInvalidRequirement
)

// WalletGenesis configures one wallet instance.
type WalletGenesis struct {
	Address  ids.ShortID   `serialize:"true" json:"address"`
	Owners   []ids.ShortID `serialize:"true" json:"owners"`
	Required uint32        `serialize:"true" json:"required"`
}

// Allocation seeds a native-unit balance at genesis.
type Allocation struct {
	Address ids.ShortID `serialize:"true" json:"address"`
	Balance uint64      `serialize:"true" json:"balance"`
}

// Genesis is the platform's construction-time configuration. The main wallet
// governs the sale and token; the escrow wallet governs the whitelist.
type Genesis struct {
	Wallet WalletGenesis `serialize:"true" json:"wallet"`
	Escrow WalletGenesis `serialize:"true" json:"escrow"`

	TokenAddress ids.ShortID `serialize:"true" json:"tokenAddress"`
	TokenCap     uint64      `serialize:"true" json:"tokenCap"`

	WhitelistAddress  ids.ShortID `serialize:"true" json:"whitelistAddress"`
	WhitelistDeadline time.Time   `serialize:"true" json:"whitelistDeadline"`

	SaleAddress ids.ShortID `serialize:"true" json:"saleAddress"`
	Sale        sale.Config `serialize:"true" json:"sale"`

	Allocations []Allocation `serialize:"true" json:"allocations"`
}

func (w *WalletGenesis) validate() error {
	if w.Address == ids.ShortEmpty {
		return ErrNilGenesisAddress
	}
	if len(w.Owners) == 0 {
		return ErrNoOwners
	}
	if w.Required == 0 || w.Required > uint32(len(w.Owners)) {
		return ErrInvalidRequirement
	}
	return nil
}

// Validate checks the genesis for internal consistency. Owner-set details are
// re-validated by the wallets at construction.
func (g *Genesis) Validate() error {
	if err := g.Wallet.validate(); err != nil {
		return err
	}
	if err := g.Escrow.validate(); err != nil {
		return err
	}

	addrs := []ids.ShortID{
		g.Wallet.Address,
		g.Escrow.Address,
		g.TokenAddress,
		g.WhitelistAddress,
		g.SaleAddress,
	}
	seen := set.NewSet[ids.ShortID](len(addrs))
	for _, addr := range addrs {
		if addr == ids.ShortEmpty {
			return ErrNilGenesisAddress
		}
		if seen.Contains(addr) {
			return ErrDuplicateAddress
		}
		seen.Add(addr)
	}

	if g.Sale.Rate == 0 {
		return ErrZeroRate
	}
	for _, allocation := range g.Allocations {
		if allocation.Address == ids.ShortEmpty {
			return ErrNilGenesisAddress
		}
	}
	return nil
}
