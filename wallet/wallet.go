// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wallet implements the multi-owner quorum authorization and
// execution engine that gates every privileged action on the platform.
package wallet

import (
	"sync"

	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/fundraise/bank"
	"github.com/luxfi/fundraise/contract"
)

var _ contract.Contract = (*Wallet)(nil)

// Wallet holds funds and executes privileged calls once enough owners have
// confirmed them. Membership and the quorum threshold are themselves only
// changeable through the same submit/confirm/execute pipeline, targeting the
// wallet's own address.
type Wallet struct {
	addr    ids.ShortID
	bank    *bank.Bank
	router  *contract.Registry
	log     log.Logger
	metrics *metrics

	mu            sync.RWMutex
	owners        *owners
	ledger        *ledger
	confirmations *confirmations
}

// Result is the outcome of one execution. Err holds the downstream call's
// failure, if any; the transaction is marked executed either way and cannot
// be retried.
type Result struct {
	TxID uint64
	Err  error
}

// New opens the wallet state in [db]. On a fresh database the genesis owner
// set and requirement are persisted; otherwise they are ignored in favor of
// the stored state.
func New(
	db database.Database,
	addr ids.ShortID,
	genesisOwners []ids.ShortID,
	required uint32,
	bnk *bank.Bank,
	router *contract.Registry,
	logger log.Logger,
	registerer metric.Registerer,
) (*Wallet, error) {
	if addr == ids.ShortEmpty {
		return nil, contract.ErrNilAddress
	}

	owners, err := newOwners(db, genesisOwners, required)
	if err != nil {
		return nil, err
	}
	ledger, err := newLedger(db)
	if err != nil {
		return nil, err
	}
	metrics, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		addr:          addr,
		bank:          bnk,
		router:        router,
		log:           logger,
		metrics:       metrics,
		owners:        owners,
		ledger:        ledger,
		confirmations: newConfirmations(db),
	}, nil
}

// Address returns the wallet's own identity, the destination used for
// self-governance transactions.
func (w *Wallet) Address() ids.ShortID {
	return w.addr
}

// Submit records a new transaction, auto-confirms it for [caller], and
// attempts execution. The downstream call's failure, if execution fires, is
// swallowed; the assigned ID is returned regardless.
func (w *Wallet) Submit(caller, destination ids.ShortID, value uint64, payload []byte) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.owners.contains(caller) {
		return 0, ErrNotOwner
	}
	if destination == ids.ShortEmpty {
		return 0, ErrNilDestination
	}

	id, err := w.ledger.append(destination, value, payload)
	if err != nil {
		return 0, err
	}
	if err := w.confirmations.confirm(id, caller); err != nil {
		return 0, err
	}
	w.metrics.numSubmitted.Inc()
	w.metrics.numConfirmed.Inc()

	w.log.Info("transaction submitted",
		log.Uint64("txID", id),
		log.Stringer("submitter", caller),
		log.Stringer("destination", destination),
		log.Uint64("value", value),
	)

	return id, w.tryExecute(id)
}

// Confirm records [caller]'s approval of transaction [id] and attempts
// execution.
func (w *Wallet) Confirm(caller ids.ShortID, id uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.owners.contains(caller) {
		return ErrNotOwner
	}
	tx, err := w.ledger.get(id)
	if err != nil {
		return err
	}
	if tx.Executed {
		return ErrAlreadyExecuted
	}
	confirmed, err := w.confirmations.has(id, caller)
	if err != nil {
		return err
	}
	if confirmed {
		return ErrAlreadyConfirmed
	}

	if err := w.confirmations.confirm(id, caller); err != nil {
		return err
	}
	w.metrics.numConfirmed.Inc()

	w.log.Info("transaction confirmed",
		log.Uint64("txID", id),
		log.Stringer("owner", caller),
	)

	return w.tryExecute(id)
}

// Revoke withdraws [caller]'s approval of a still-pending transaction.
func (w *Wallet) Revoke(caller ids.ShortID, id uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.owners.contains(caller) {
		return ErrNotOwner
	}
	tx, err := w.ledger.get(id)
	if err != nil {
		return err
	}
	if tx.Executed {
		return ErrAlreadyExecuted
	}
	confirmed, err := w.confirmations.has(id, caller)
	if err != nil {
		return err
	}
	if !confirmed {
		return ErrNotConfirmed
	}

	if err := w.confirmations.revoke(id, caller); err != nil {
		return err
	}
	w.metrics.numRevoked.Inc()

	w.log.Info("confirmation revoked",
		log.Uint64("txID", id),
		log.Stringer("owner", caller),
	)
	return nil
}

// Execute performs transaction [id] if quorum is met. Any caller may invoke
// it, so execution can be retried by a third party while the transaction is
// still pending. The returned Result carries the downstream call's error;
// the transaction is executed either way.
func (w *Wallet) Execute(id uint64) (*Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	tx, err := w.ledger.get(id)
	if err != nil {
		return nil, err
	}
	if tx.Executed {
		return nil, ErrAlreadyExecuted
	}
	count, err := w.confirmationCount(id)
	if err != nil {
		return nil, err
	}
	if count < w.owners.required {
		return nil, ErrNotEnoughConfirmations
	}

	callErr, err := w.execute(tx)
	if err != nil {
		return nil, err
	}
	return &Result{TxID: id, Err: callErr}, nil
}

// tryExecute fires execution if quorum is met, swallowing the downstream
// call's failure so the triggering submit or confirm never fails because of
// it. Called with the lock held.
func (w *Wallet) tryExecute(id uint64) error {
	tx, err := w.ledger.get(id)
	if err != nil {
		return err
	}
	if tx.Executed {
		return nil
	}
	count, err := w.confirmationCount(id)
	if err != nil {
		return err
	}
	if count < w.owners.required {
		return nil
	}

	_, err = w.execute(tx)
	return err
}

// execute marks the transaction executed, commits that, and only then
// performs the call. A failed call is recorded as the execution's outcome;
// the executed flag is never rolled back, so a transaction runs at most
// once even if the callee re-enters the wallet.
func (w *Wallet) execute(tx *Transaction) (error, error) {
	if err := w.ledger.markExecuted(tx); err != nil {
		return nil, err
	}
	w.metrics.numExecuted.Inc()

	callErr := w.dispatch(tx)
	if callErr != nil {
		w.metrics.numCallFails.Inc()
		w.log.Warn("downstream call failed",
			log.Uint64("txID", tx.ID),
			log.Stringer("destination", tx.Destination),
			"error", callErr,
		)
		return callErr, nil
	}

	w.log.Info("transaction executed",
		log.Uint64("txID", tx.ID),
		log.Stringer("destination", tx.Destination),
		log.Uint64("value", tx.Value),
	)
	return nil, nil
}

// dispatch routes an executed transaction. Self-targeted payloads are
// governance calls; everything else is forwarded verbatim, either to a
// registered contract or as a plain value transfer.
func (w *Wallet) dispatch(tx *Transaction) error {
	if tx.Destination == w.addr {
		if len(tx.Payload) == 0 {
			// Moving value to ourselves changes nothing.
			return nil
		}
		return w.applyGovernance(tx.Payload)
	}

	if len(tx.Payload) == 0 && !w.router.Has(tx.Destination) {
		return w.bank.Transfer(w.addr, tx.Destination, tx.Value)
	}
	return w.router.Call(w.addr, tx.Destination, tx.Value, tx.Payload)
}

// Receive accepts an inbound transfer unconditionally so the wallet can act
// as a treasury.
func (w *Wallet) Receive(from ids.ShortID, amount uint64) error {
	return w.bank.Transfer(from, w.addr, amount)
}

// Call implements contract.Contract. Only the plain receive path is exposed
// to other callers; governance payloads are reachable solely through the
// wallet's own executed transactions.
func (w *Wallet) Call(from ids.ShortID, value uint64, payload []byte) error {
	if len(payload) != 0 {
		return ErrNotSelf
	}
	return w.Receive(from, value)
}

// Balance reports the wallet's holdings in native units.
func (w *Wallet) Balance() (uint64, error) {
	return w.bank.Balance(w.addr)
}

func (w *Wallet) IsOwner(addr ids.ShortID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.owners.contains(addr)
}

func (w *Wallet) Owners() []ids.ShortID {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.owners.addresses()
}

func (w *Wallet) Required() uint32 {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.owners.required
}

// GetTransaction returns the stored record for [id].
func (w *Wallet) GetTransaction(id uint64) (*Transaction, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.ledger.get(id)
}

// ConfirmationCount reports how many current owners have confirmed [id].
// Approvals by since-removed owners do not count toward quorum.
func (w *Wallet) ConfirmationCount(id uint64) (uint32, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if _, err := w.ledger.get(id); err != nil {
		return 0, err
	}
	return w.confirmationCount(id)
}

// Confirmers lists the current owners that have confirmed [id].
func (w *Wallet) Confirmers(id uint64) ([]ids.ShortID, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if _, err := w.ledger.get(id); err != nil {
		return nil, err
	}

	confirmers, err := w.confirmations.confirmers(id)
	if err != nil {
		return nil, err
	}
	current := confirmers[:0]
	for _, owner := range confirmers {
		if w.owners.contains(owner) {
			current = append(current, owner)
		}
	}
	return current, nil
}

// IsConfirmed reports whether [id] has reached quorum.
func (w *Wallet) IsConfirmed(id uint64) (bool, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if _, err := w.ledger.get(id); err != nil {
		return false, err
	}
	count, err := w.confirmationCount(id)
	if err != nil {
		return false, err
	}
	return count >= w.owners.required, nil
}

// TransactionCount counts stored transactions matching the filters.
func (w *Wallet) TransactionCount(pending, executed bool) (uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.ledger.count(pending, executed)
}

// TransactionIDs lists up to [limit] matching IDs in ascending order,
// starting at [offset] within the filtered sequence.
func (w *Wallet) TransactionIDs(offset, limit uint64, pending, executed bool) ([]uint64, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.ledger.list(offset, limit, pending, executed)
}

// confirmationCount is the number of current owners with a recorded
// confirmation. Called with the lock held.
func (w *Wallet) confirmationCount(id uint64) (uint32, error) {
	confirmers, err := w.confirmations.confirmers(id)
	if err != nil {
		return 0, err
	}

	count := uint32(0)
	for _, owner := range confirmers {
		if w.owners.contains(owner) {
			count++
		}
	}
	return count, nil
}
