// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package sale implements the whitelist-gated token sale.
package sale

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/math"
	"github.com/luxfi/metric"

	"github.com/luxfi/fundraise/bank"
	"github.com/luxfi/fundraise/token"
	"github.com/luxfi/fundraise/utils/timer/mockable"
	"github.com/luxfi/fundraise/whitelist"
)

var (
	ErrNotSaleOwner      = errors.New("caller does not own the sale")
	ErrSaleNotStarted    = errors.New("sale has not started")
	ErrSalePaused        = errors.New("sale is paused")
	ErrNotWhitelisted    = errors.New("buyer is not whitelisted")
	ErrBelowMinPurchase  = errors.New("purchase below minimum")
	ErrAboveMaxPurchase  = errors.New("purchase above maximum")
	ErrAmountCapExceeded = errors.New("sale amount cap exceeded")

	amountRaisedKey = []byte("amountRaised")
	unitsRaisedKey  = []byte("unitsRaised")
	pausedKey       = []byte("paused")
)

// tierBonus maps a whitelist tier to its purchase bonus in percent.
var tierBonus = map[uint8]uint64{
	1: 100,
	2: 75,
	3: 50,
}

// Phase bounds single purchases while the cumulative raised amount is below
// its threshold. Phases must be ordered by ascending threshold.
type Phase struct {
	// Threshold is the cumulative raised amount at which the next phase
	// begins.
	Threshold uint64 `json:"threshold"`
	// MaxPurchase bounds a single purchase during this phase, indexed by
	// tier-1. A zero entry falls back to the sale-wide MaxPurchase.
	MaxPurchase [3]uint64 `json:"maxPurchase"`
}

// Config holds the sale's fixed parameters.
type Config struct {
	// Start is the first instant purchases are accepted.
	Start time.Time `json:"start"`
	// Rate is the number of token units minted per native unit before the
	// tier bonus.
	Rate uint64 `json:"rate"`
	// AmountCap bounds the total native units raised. 0 means uncapped.
	AmountCap uint64 `json:"amountCap"`
	// MinPurchase and MaxPurchase bound a single purchase.
	MinPurchase uint64 `json:"minPurchase"`
	MaxPurchase uint64 `json:"maxPurchase"`
	// Phases optionally tightens MaxPurchase per tier as the raise grows.
	Phases []Phase `json:"phases,omitempty"`
}

// Sale accepts whitelisted purchases, mints tokens for the buyer, and
// forwards the raised funds to the wallet's treasury address.
type Sale struct {
	mu     sync.Mutex
	db     database.Database
	config Config

	bank      *bank.Bank
	token     *token.Token
	whitelist *whitelist.Whitelist
	treasury  ids.ShortID

	// addr is the sale's own contract address; the token's mint authority.
	// owner is the administrative owner (the wallet), so pausing and token
	// handoff require quorum.
	addr  ids.ShortID
	owner ids.ShortID

	clock   *mockable.Clock
	log     log.Logger
	metrics *metrics
}

func New(
	db database.Database,
	config Config,
	b *bank.Bank,
	tok *token.Token,
	wl *whitelist.Whitelist,
	treasury ids.ShortID,
	addr ids.ShortID,
	owner ids.ShortID,
	clock *mockable.Clock,
	logger log.Logger,
	registerer metric.Registerer,
) (*Sale, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}
	return &Sale{
		db:        db,
		config:    config,
		bank:      b,
		token:     tok,
		whitelist: wl,
		treasury:  treasury,
		addr:      addr,
		owner:     owner,
		clock:     clock,
		log:       logger,
		metrics:   m,
	}, nil
}

// Buy purchases tokens for [buyer] with [amount] native units. The buyer's
// funds move to the treasury and token units are minted at the tier-boosted
// rate.
func (s *Sale) Buy(buyer ids.ShortID, amount uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clock.Time().Before(s.config.Start) {
		return 0, ErrSaleNotStarted
	}
	switch paused, err := s.paused(); {
	case err != nil:
		return 0, err
	case paused:
		return 0, ErrSalePaused
	}

	tier, err := s.whitelist.Tier(buyer)
	if err != nil {
		return 0, err
	}
	if tier == whitelist.TierNone {
		return 0, ErrNotWhitelisted
	}

	raised, err := s.amountRaised()
	if err != nil {
		return 0, err
	}

	if amount < s.config.MinPurchase {
		return 0, ErrBelowMinPurchase
	}
	if max := s.maxPurchase(raised, tier); max != 0 && amount > max {
		return 0, ErrAboveMaxPurchase
	}

	newRaised, err := math.Add(raised, amount)
	if err != nil {
		return 0, fmt.Errorf("raising %d: %w", amount, err)
	}
	if s.config.AmountCap != 0 && newRaised > s.config.AmountCap {
		return 0, ErrAmountCapExceeded
	}

	units, err := s.unitsFor(amount, tier)
	if err != nil {
		return 0, err
	}

	// Take the funds first so a mint failure (e.g. token cap) leaves the
	// buyer's balance untouched after the refunding transfer below.
	if err := s.bank.Transfer(buyer, s.treasury, amount); err != nil {
		return 0, err
	}
	if err := s.token.Mint(s.addr, buyer, units); err != nil {
		if refundErr := s.bank.Transfer(s.treasury, buyer, amount); refundErr != nil {
			return 0, fmt.Errorf("refund after failed mint: %w", refundErr)
		}
		return 0, err
	}

	unitsRaised, err := s.unitsRaised()
	if err != nil {
		return 0, err
	}
	newUnitsRaised, err := math.Add(unitsRaised, units)
	if err != nil {
		return 0, err
	}

	batch := s.db.NewBatch()
	if err := database.PutUInt64(batch, amountRaisedKey, newRaised); err != nil {
		return 0, err
	}
	if err := database.PutUInt64(batch, unitsRaisedKey, newUnitsRaised); err != nil {
		return 0, err
	}
	if err := batch.Write(); err != nil {
		return 0, err
	}

	s.metrics.numPurchases.Inc()
	s.metrics.amountRaised.Add(float64(amount))
	s.log.Info("tokens purchased",
		log.Stringer("buyer", buyer),
		log.Uint64("amount", amount),
		log.Uint64("units", units),
	)
	return units, nil
}

// maxPurchase returns the purchase bound for [tier] given the cumulative
// [raised] amount. 0 means unbounded.
func (s *Sale) maxPurchase(raised uint64, tier uint8) uint64 {
	for _, phase := range s.config.Phases {
		if raised >= phase.Threshold {
			continue
		}
		if max := phase.MaxPurchase[tier-1]; max != 0 {
			return max
		}
		break
	}
	return s.config.MaxPurchase
}

// unitsFor converts a purchase amount to token units at the tier-boosted
// rate.
func (s *Sale) unitsFor(amount uint64, tier uint8) (uint64, error) {
	base, err := math.Mul(amount, s.config.Rate)
	if err != nil {
		return 0, err
	}
	boosted, err := math.Mul(base, 100+tierBonus[tier])
	if err != nil {
		return 0, err
	}
	return boosted / 100, nil
}

// Config returns the sale's fixed parameters.
func (s *Sale) Config() Config {
	return s.config
}

// AmountRaised returns the native units collected so far.
func (s *Sale) AmountRaised() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.amountRaised()
}

// UnitsRaised returns the token units sold so far.
func (s *Sale) UnitsRaised() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unitsRaised()
}

// Paused reports whether purchases are suspended.
func (s *Sale) Paused() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused()
}

// Pause suspends purchases. Owner-only; the owner is the wallet, so pausing
// requires quorum.
func (s *Sale) Pause(caller ids.ShortID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrNotSaleOwner
	}
	return s.db.Put(pausedKey, []byte{1})
}

// Resume lifts a pause. Owner-only.
func (s *Sale) Resume(caller ids.ShortID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrNotSaleOwner
	}
	return s.db.Delete(pausedKey)
}

// TransferTokenOwnership hands the token's mint authority away from the
// sale. Owner-only.
func (s *Sale) TransferTokenOwnership(caller, newOwner ids.ShortID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if caller != s.owner {
		return ErrNotSaleOwner
	}
	return s.token.TransferOwnership(s.addr, newOwner)
}

func (s *Sale) paused() (bool, error) {
	return s.db.Has(pausedKey)
}

func (s *Sale) amountRaised() (uint64, error) {
	return s.getUint64(amountRaisedKey)
}

func (s *Sale) unitsRaised() (uint64, error) {
	return s.getUint64(unitsRaisedKey)
}

func (s *Sale) getUint64(key []byte) (uint64, error) {
	val, err := database.GetUInt64(s.db, key)
	if errors.Is(err, database.ErrNotFound) {
		return 0, nil
	}
	return val, err
}
