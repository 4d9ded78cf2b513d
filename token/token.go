// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token implements the platform's mintable fungible token.
package token

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/math"

	"github.com/luxfi/fundraise/contract"
)

var (
	_ contract.Contract = (*Token)(nil)

	ErrNotTokenOwner       = errors.New("caller does not own the token contract")
	ErrNilRecipient        = errors.New("nil recipient address")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrNonPayable          = errors.New("token contract does not accept funds")
	ErrCapExceeded         = errors.New("token cap exceeded")

	balancePrefix  = []byte("bal:")
	totalSupplyKey = []byte("supply")
	ownerKey       = []byte("owner")
)

// Token is an owner-mintable fungible token. The owner is initially the sale
// contract; handing it over is a privileged action routed through the wallet.
type Token struct {
	mu  sync.RWMutex
	db  database.Database
	cap uint64 // 0 means uncapped
}

// New opens the token ledger on [db]. The recorded owner survives restarts;
// [initialOwner] only applies to a fresh database.
func New(db database.Database, initialOwner ids.ShortID, cap uint64) (*Token, error) {
	t := &Token{
		db:  db,
		cap: cap,
	}

	_, err := db.Get(ownerKey)
	switch {
	case err == nil:
		return t, nil
	case errors.Is(err, database.ErrNotFound):
		return t, db.Put(ownerKey, initialOwner[:])
	default:
		return nil, err
	}
}

// Owner returns the account that may mint and hand over ownership.
func (t *Token) Owner() (ids.ShortID, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.owner()
}

// BalanceOf returns the balance of [addr].
func (t *Token) BalanceOf(addr ids.ShortID) (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getUint64(balanceKey(addr))
}

// TotalSupply returns the number of units ever minted.
func (t *Token) TotalSupply() (uint64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.getUint64(totalSupplyKey)
}

// Mint creates [amount] units for [to]. Only the token owner mints.
func (t *Token) Mint(caller, to ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	owner, err := t.owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrNotTokenOwner
	}
	if to == ids.ShortEmpty {
		return ErrNilRecipient
	}

	supply, err := t.getUint64(totalSupplyKey)
	if err != nil {
		return err
	}
	newSupply, err := math.Add(supply, amount)
	if err != nil {
		return fmt.Errorf("minting %d units: %w", amount, err)
	}
	if t.cap != 0 && newSupply > t.cap {
		return ErrCapExceeded
	}
	balance, err := t.getUint64(balanceKey(to))
	if err != nil {
		return err
	}
	newBalance, err := math.Add(balance, amount)
	if err != nil {
		return fmt.Errorf("minting to %s: %w", to, err)
	}

	batch := t.db.NewBatch()
	if err := database.PutUInt64(batch, totalSupplyKey, newSupply); err != nil {
		return err
	}
	if err := database.PutUInt64(batch, balanceKey(to), newBalance); err != nil {
		return err
	}
	return batch.Write()
}

// Transfer moves [amount] units from [caller] to [to].
func (t *Token) Transfer(caller, to ids.ShortID, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if to == ids.ShortEmpty {
		return ErrNilRecipient
	}
	fromBalance, err := t.getUint64(balanceKey(caller))
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientBalance
	}
	if caller == to {
		return nil
	}
	toBalance, err := t.getUint64(balanceKey(to))
	if err != nil {
		return err
	}
	newToBalance, err := math.Add(toBalance, amount)
	if err != nil {
		return fmt.Errorf("transferring to %s: %w", to, err)
	}

	batch := t.db.NewBatch()
	if err := database.PutUInt64(batch, balanceKey(caller), fromBalance-amount); err != nil {
		return err
	}
	if err := database.PutUInt64(batch, balanceKey(to), newToBalance); err != nil {
		return err
	}
	return batch.Write()
}

// TransferOwnership hands the mint authority to [newOwner].
func (t *Token) TransferOwnership(caller, newOwner ids.ShortID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	owner, err := t.owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrNotTokenOwner
	}
	if newOwner == ids.ShortEmpty {
		return ErrNilRecipient
	}
	return t.db.Put(ownerKey, newOwner[:])
}

func (t *Token) owner() (ids.ShortID, error) {
	data, err := t.db.Get(ownerKey)
	if err != nil {
		return ids.ShortEmpty, err
	}
	return ids.ToShortID(data)
}

func (t *Token) getUint64(key []byte) (uint64, error) {
	val, err := database.GetUInt64(t.db, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return val, err
}

func balanceKey(addr ids.ShortID) []byte {
	return append(balancePrefix, addr[:]...)
}
