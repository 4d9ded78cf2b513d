// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"testing"
	"time"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/fundraise/sale"
	"github.com/luxfi/fundraise/utils/timer/mockable"
	"github.com/luxfi/fundraise/whitelist"
)

func testGenesis(t *testing.T) *Genesis {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return &Genesis{
		Wallet: WalletGenesis{
			Address: ids.GenerateTestShortID(),
			Owners: []ids.ShortID{
				ids.GenerateTestShortID(),
				ids.GenerateTestShortID(),
				ids.GenerateTestShortID(),
			},
			Required: 2,
		},
		Escrow: WalletGenesis{
			Address: ids.GenerateTestShortID(),
			Owners: []ids.ShortID{
				ids.GenerateTestShortID(),
				ids.GenerateTestShortID(),
			},
			Required: 2,
		},
		TokenAddress:     ids.GenerateTestShortID(),
		WhitelistAddress: ids.GenerateTestShortID(),
		SaleAddress:      ids.GenerateTestShortID(),
		Sale: sale.Config{
			Start: start,
			Rate:  36,
		},
	}
}

func newPlatform(t *testing.T, genesis *Genesis) (*Platform, *mockable.Clock) {
	require := require.New(t)

	clock := &mockable.Clock{}
	clock.Set(genesis.Sale.Start)

	p, err := New(memdb.New(), genesis, log.NoLog{}, metric.NewRegistry(), clock)
	require.NoError(err)
	return p, clock
}

func TestGenesisValidate(t *testing.T) {
	require := require.New(t)

	genesis := testGenesis(t)
	require.NoError(genesis.Validate())

	dup := testGenesis(t)
	dup.TokenAddress = dup.SaleAddress
	require.ErrorIs(dup.Validate(), ErrDuplicateAddress)

	zeroRate := testGenesis(t)
	zeroRate.Sale.Rate = 0
	require.ErrorIs(zeroRate.Validate(), ErrZeroRate)

	noOwners := testGenesis(t)
	noOwners.Wallet.Owners = nil
	require.ErrorIs(noOwners.Validate(), ErrNoOwners)

	badRequired := testGenesis(t)
	badRequired.Escrow.Required = 3
	require.ErrorIs(badRequired.Validate(), ErrInvalidRequirement)
}

func TestEndToEndFundraise(t *testing.T) {
	require := require.New(t)
	genesis := testGenesis(t)

	buyer := ids.GenerateTestShortID()
	genesis.Allocations = []Allocation{{
		Address: buyer,
		Balance: 1_000,
	}}

	p, _ := newPlatform(t, genesis)

	// The buyer registers (tier 1) and purchases.
	require.NoError(p.Whitelist.RegisterSelf(buyer))

	units, err := p.Sale.Buy(buyer, 100)
	require.NoError(err)
	require.Equal(uint64(7200), units) // 100 * 36 * 2 at the tier 1 bonus

	balance, err := p.Token.BalanceOf(buyer)
	require.NoError(err)
	require.Equal(uint64(7200), balance)

	// Raised funds sit in the main wallet's treasury.
	raised, err := p.Wallet.Balance()
	require.NoError(err)
	require.Equal(uint64(100), raised)

	// Releasing funds takes a wallet quorum.
	beneficiary := ids.GenerateTestShortID()
	owners := genesis.Wallet.Owners

	id, err := p.Wallet.Submit(owners[0], beneficiary, 100, nil)
	require.NoError(err)
	require.NoError(p.Wallet.Confirm(owners[1], id))

	released, err := p.Bank.Balance(beneficiary)
	require.NoError(err)
	require.Equal(uint64(100), released)
}

func TestWalletGovernsSale(t *testing.T) {
	require := require.New(t)
	genesis := testGenesis(t)

	p, _ := newPlatform(t, genesis)

	owners := genesis.Wallet.Owners

	// Pausing the sale is a quorum-approved wallet transaction.
	payload, err := sale.EncodeCall(&sale.PauseCall{})
	require.NoError(err)

	id, err := p.Wallet.Submit(owners[0], genesis.SaleAddress, 0, payload)
	require.NoError(err)
	require.NoError(p.Wallet.Confirm(owners[1], id))

	paused, err := p.Sale.Paused()
	require.NoError(err)
	require.True(paused)

	// A lone owner cannot pause directly.
	require.ErrorIs(p.Sale.Pause(owners[0]), sale.ErrNotSaleOwner)
}

func TestEscrowGovernsWhitelist(t *testing.T) {
	require := require.New(t)
	genesis := testGenesis(t)

	p, _ := newPlatform(t, genesis)
	escrowOwners := genesis.Escrow.Owners

	// The escrow wallet pauses registration.
	payload, err := whitelist.EncodeCall(&whitelist.PauseCall{})
	require.NoError(err)

	id, err := p.Escrow.Submit(escrowOwners[0], genesis.WhitelistAddress, 0, payload)
	require.NoError(err)
	require.NoError(p.Escrow.Confirm(escrowOwners[1], id))

	paused, err := p.Whitelist.Paused()
	require.NoError(err)
	require.True(paused)

	// The main wallet does not own the whitelist; the call executes but
	// fails downstream, leaving the whitelist untouched.
	mainOwners := genesis.Wallet.Owners
	payload, err = whitelist.EncodeCall(&whitelist.ResumeCall{})
	require.NoError(err)

	id, err = p.Wallet.Submit(mainOwners[0], genesis.WhitelistAddress, 0, payload)
	require.NoError(err)
	require.NoError(p.Wallet.Confirm(mainOwners[1], id))

	paused, err = p.Whitelist.Paused()
	require.NoError(err)
	require.True(paused)

	// Handing the whitelist to the main wallet goes through escrow quorum.
	payload, err = whitelist.EncodeCall(&whitelist.TransferOwnershipCall{
		NewOwner: genesis.Wallet.Address,
	})
	require.NoError(err)

	id, err = p.Escrow.Submit(escrowOwners[0], genesis.WhitelistAddress, 0, payload)
	require.NoError(err)
	require.NoError(p.Escrow.Confirm(escrowOwners[1], id))

	owner, err := p.Whitelist.Owner()
	require.NoError(err)
	require.Equal(genesis.Wallet.Address, owner)
}

func TestCreateHandlers(t *testing.T) {
	require := require.New(t)

	p, _ := newPlatform(t, testGenesis(t))

	handlers, err := p.CreateHandlers()
	require.NoError(err)

	for _, path := range []string{"/wallet", "/escrow", "/token", "/whitelist", "/sale", "/info"} {
		require.Contains(handlers, path)
	}
}
