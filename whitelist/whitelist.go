// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package whitelist tracks which accounts may participate in the sale and at
// which tier.
package whitelist

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/fundraise/contract"
	"github.com/luxfi/fundraise/utils/timer/mockable"
)

const (
	// TierNone marks an unregistered account.
	TierNone uint8 = 0
	MaxTier  uint8 = 3

	// Registration counts at which newly registered accounts move down a
	// tier.
	tier1Limit = 1000
	tier2Limit = 5000
)

var (
	_ contract.Contract = (*Whitelist)(nil)

	ErrNotWhitelistOwner = errors.New("caller does not own the whitelist")
	ErrNilAccount        = errors.New("nil account address")
	ErrAlreadyRegistered = errors.New("account already registered")
	ErrNotRegistered     = errors.New("account not registered")
	ErrInvalidTier       = errors.New("tier out of range")
	ErrPaused            = errors.New("registration is paused")
	ErrStopped           = errors.New("registration is stopped")
	ErrDeadlinePassed    = errors.New("registration deadline passed")

	tierPrefix = []byte("tier:")
	countKey   = []byte("count")
	ownerKey   = []byte("owner")
	pausedKey  = []byte("paused")
	stoppedKey = []byte("stopped")
)

// Whitelist is a tiered registration list. Registration is open to anyone
// until the deadline; administration is owner-only, and ownership changes are
// routed through the escrow wallet.
type Whitelist struct {
	mu       sync.RWMutex
	db       database.Database
	clock    *mockable.Clock
	deadline time.Time
}

func New(db database.Database, initialOwner ids.ShortID, deadline time.Time, clock *mockable.Clock) (*Whitelist, error) {
	w := &Whitelist{
		db:       db,
		clock:    clock,
		deadline: deadline,
	}

	_, err := db.Get(ownerKey)
	switch {
	case err == nil:
		return w, nil
	case errors.Is(err, database.ErrNotFound):
		return w, db.Put(ownerKey, initialOwner[:])
	default:
		return nil, err
	}
}

// Owner returns the whitelist's administrator.
func (w *Whitelist) Owner() (ids.ShortID, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.owner()
}

// Tier returns the tier of [account]; TierNone if unregistered.
func (w *Whitelist) Tier(account ids.ShortID) (uint8, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.tier(account)
}

// Count returns the number of registered accounts.
func (w *Whitelist) Count() (uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.count()
}

// Paused reports whether registration is suspended.
func (w *Whitelist) Paused() (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.flag(pausedKey)
}

// Stopped reports whether registration has been terminally closed.
func (w *Whitelist) Stopped() (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.flag(stoppedKey)
}

// RegisterSelf registers the calling account at the tier implied by the
// current registration count.
func (w *Whitelist) RegisterSelf(caller ids.ShortID) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.register(caller)
}

// Register registers [account]. Owner-only.
func (w *Whitelist) Register(caller, account ids.ShortID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOwner(caller); err != nil {
		return err
	}
	return w.register(account)
}

// Remove drops [account] from the list. Owner-only.
func (w *Whitelist) Remove(caller, account ids.ShortID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOwner(caller); err != nil {
		return err
	}
	tier, err := w.tier(account)
	if err != nil {
		return err
	}
	if tier == TierNone {
		return ErrNotRegistered
	}
	count, err := w.count()
	if err != nil {
		return err
	}

	batch := w.db.NewBatch()
	if err := batch.Delete(tierKey(account)); err != nil {
		return err
	}
	if err := putCount(batch, count-1); err != nil {
		return err
	}
	return batch.Write()
}

// ChangeTier moves a registered [account] to [tier]. Owner-only.
func (w *Whitelist) ChangeTier(caller, account ids.ShortID, tier uint8) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOwner(caller); err != nil {
		return err
	}
	if tier == TierNone || tier > MaxTier {
		return ErrInvalidTier
	}
	current, err := w.tier(account)
	if err != nil {
		return err
	}
	if current == TierNone {
		return ErrNotRegistered
	}
	return w.db.Put(tierKey(account), []byte{tier})
}

// Pause suspends registration until Resume. Owner-only.
func (w *Whitelist) Pause(caller ids.ShortID) error {
	return w.setFlag(caller, pausedKey, true)
}

// Resume lifts a pause. Owner-only.
func (w *Whitelist) Resume(caller ids.ShortID) error {
	return w.setFlag(caller, pausedKey, false)
}

// Stop ends registration permanently. Owner-only.
func (w *Whitelist) Stop(caller ids.ShortID) error {
	return w.setFlag(caller, stoppedKey, true)
}

// TransferOwnership hands administration to [newOwner].
func (w *Whitelist) TransferOwnership(caller, newOwner ids.ShortID) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOwner(caller); err != nil {
		return err
	}
	if newOwner == ids.ShortEmpty {
		return ErrNilAccount
	}
	return w.db.Put(ownerKey, newOwner[:])
}

func (w *Whitelist) register(account ids.ShortID) error {
	if account == ids.ShortEmpty {
		return ErrNilAccount
	}
	switch stopped, err := w.flag(stoppedKey); {
	case err != nil:
		return err
	case stopped:
		return ErrStopped
	}
	switch paused, err := w.flag(pausedKey); {
	case err != nil:
		return err
	case paused:
		return ErrPaused
	}
	if !w.deadline.IsZero() && w.clock.Time().After(w.deadline) {
		return ErrDeadlinePassed
	}

	tier, err := w.tier(account)
	if err != nil {
		return err
	}
	if tier != TierNone {
		return ErrAlreadyRegistered
	}

	count, err := w.count()
	if err != nil {
		return err
	}

	batch := w.db.NewBatch()
	if err := batch.Put(tierKey(account), []byte{tierForCount(count)}); err != nil {
		return err
	}
	if err := putCount(batch, count+1); err != nil {
		return err
	}
	return batch.Write()
}

// tierForCount maps the running registration count to the tier assigned to
// the next registrant.
func tierForCount(count uint64) uint8 {
	switch {
	case count < tier1Limit:
		return 1
	case count < tier2Limit:
		return 2
	default:
		return 3
	}
}

func (w *Whitelist) checkOwner(caller ids.ShortID) error {
	owner, err := w.owner()
	if err != nil {
		return err
	}
	if caller != owner {
		return ErrNotWhitelistOwner
	}
	return nil
}

func (w *Whitelist) owner() (ids.ShortID, error) {
	data, err := w.db.Get(ownerKey)
	if err != nil {
		return ids.ShortEmpty, err
	}
	return ids.ToShortID(data)
}

func (w *Whitelist) tier(account ids.ShortID) (uint8, error) {
	data, err := w.db.Get(tierKey(account))
	switch {
	case err == nil:
		if len(data) != 1 {
			return 0, fmt.Errorf("corrupt tier record for %s", account)
		}
		return data[0], nil
	case errors.Is(err, database.ErrNotFound):
		return TierNone, nil
	default:
		return 0, err
	}
}

func (w *Whitelist) count() (uint64, error) {
	val, err := database.GetUInt64(w.db, countKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return val, err
}

func (w *Whitelist) flag(key []byte) (bool, error) {
	has, err := w.db.Has(key)
	if err != nil {
		return false, err
	}
	return has, nil
}

func (w *Whitelist) setFlag(caller ids.ShortID, key []byte, on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.checkOwner(caller); err != nil {
		return err
	}
	if on {
		return w.db.Put(key, []byte{1})
	}
	return w.db.Delete(key)
}

func putCount(w database.KeyValueWriter, count uint64) error {
	return database.PutUInt64(w, countKey, count)
}

func tierKey(account ids.ShortID) []byte {
	return append(tierPrefix, account[:]...)
}
