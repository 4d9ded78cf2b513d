// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bank manages native-unit balances for the fundraising platform.
package bank

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/math"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")

	balancePrefix = []byte("balance:")
)

// Bank is the platform's native-unit ledger. Every mutation is written
// through to the database before it is visible to readers.
type Bank struct {
	mu sync.RWMutex
	db database.Database
}

func New(db database.Database) *Bank {
	return &Bank{db: db}
}

// Balance returns the balance of [addr]. Unknown addresses hold zero.
func (b *Bank) Balance(addr ids.ShortID) (uint64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balance(addr)
}

// Credit adds [amount] to the balance of [addr].
func (b *Bank) Credit(addr ids.ShortID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, err := b.balance(addr)
	if err != nil {
		return err
	}
	newBalance, err := math.Add(balance, amount)
	if err != nil {
		return fmt.Errorf("crediting %s: %w", addr, err)
	}
	return b.putBalance(b.db, addr, newBalance)
}

// Debit removes [amount] from the balance of [addr].
func (b *Bank) Debit(addr ids.ShortID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, err := b.balance(addr)
	if err != nil {
		return err
	}
	if balance < amount {
		return ErrInsufficientBalance
	}
	return b.putBalance(b.db, addr, balance-amount)
}

// Transfer moves [amount] from [from] to [to] atomically.
func (b *Bank) Transfer(from, to ids.ShortID, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if from == to {
		return nil
	}

	fromBalance, err := b.balance(from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}
	toBalance, err := b.balance(to)
	if err != nil {
		return err
	}
	newToBalance, err := math.Add(toBalance, amount)
	if err != nil {
		return fmt.Errorf("transferring to %s: %w", to, err)
	}

	batch := b.db.NewBatch()
	if err := b.putBalance(batch, from, fromBalance-amount); err != nil {
		return err
	}
	if err := b.putBalance(batch, to, newToBalance); err != nil {
		return err
	}
	return batch.Write()
}

func (b *Bank) balance(addr ids.ShortID) (uint64, error) {
	val, err := database.GetUInt64(b.db, balanceKey(addr))
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return val, err
}

func (b *Bank) putBalance(w database.KeyValueWriter, addr ids.ShortID, balance uint64) error {
	return database.PutUInt64(w, balanceKey(addr), balance)
}

func balanceKey(addr ids.ShortID) []byte {
	return append(balancePrefix, addr[:]...)
}
