// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package bank

import (
	"testing"

	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestCreditDebit(t *testing.T) {
	require := require.New(t)

	b := New(memdb.New())
	addr := ids.GenerateTestShortID()

	balance, err := b.Balance(addr)
	require.NoError(err)
	require.Zero(balance)

	require.NoError(b.Credit(addr, 100))
	balance, err = b.Balance(addr)
	require.NoError(err)
	require.Equal(uint64(100), balance)

	require.NoError(b.Debit(addr, 40))
	balance, err = b.Balance(addr)
	require.NoError(err)
	require.Equal(uint64(60), balance)

	err = b.Debit(addr, 61)
	require.ErrorIs(err, ErrInsufficientBalance)
}

func TestTransfer(t *testing.T) {
	require := require.New(t)

	b := New(memdb.New())
	from := ids.GenerateTestShortID()
	to := ids.GenerateTestShortID()

	require.NoError(b.Credit(from, 50))

	err := b.Transfer(from, to, 51)
	require.ErrorIs(err, ErrInsufficientBalance)

	require.NoError(b.Transfer(from, to, 30))

	fromBalance, err := b.Balance(from)
	require.NoError(err)
	require.Equal(uint64(20), fromBalance)

	toBalance, err := b.Balance(to)
	require.NoError(err)
	require.Equal(uint64(30), toBalance)
}

func TestTransferSelf(t *testing.T) {
	require := require.New(t)

	b := New(memdb.New())
	addr := ids.GenerateTestShortID()

	require.NoError(b.Credit(addr, 10))
	require.NoError(b.Transfer(addr, addr, 10))

	balance, err := b.Balance(addr)
	require.NoError(err)
	require.Equal(uint64(10), balance)
}

func TestBalancesPersist(t *testing.T) {
	require := require.New(t)

	db := memdb.New()
	addr := ids.GenerateTestShortID()

	require.NoError(New(db).Credit(addr, 77))

	balance, err := New(db).Balance(addr)
	require.NoError(err)
	require.Equal(uint64(77), balance)
}
