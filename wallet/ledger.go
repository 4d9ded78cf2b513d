// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
	"github.com/luxfi/math"
)

// MaxPageSize bounds the number of transaction IDs a single listing may
// return.
const MaxPageSize = 1024

var (
	txPrefix  = []byte("t:")
	nextTxKey = []byte("n")
)

// Transaction is one proposed action: a destination, an optional value in
// native units, and an opaque payload the destination decodes itself.
type Transaction struct {
	ID          uint64      `serialize:"true" json:"id"`
	Destination ids.ShortID `serialize:"true" json:"destination"`
	Value       uint64      `serialize:"true" json:"value"`
	Payload     []byte      `serialize:"true" json:"payload"`
	Executed    bool        `serialize:"true" json:"executed"`
}

// ledger is the append-only transaction store. IDs are assigned densely from
// zero; records are never deleted, only flipped to executed.
type ledger struct {
	db database.Database

	nextID uint64
}

func newLedger(db database.Database) (*ledger, error) {
	nextID, err := database.GetUInt64(db, nextTxKey)
	if err == database.ErrNotFound {
		nextID = 0
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return &ledger{
		db:     db,
		nextID: nextID,
	}, nil
}

func txKey(id uint64) []byte {
	return append(txPrefix, database.PackUInt64(id)...)
}

// append stores a new transaction and returns its assigned ID.
func (l *ledger) append(destination ids.ShortID, value uint64, payload []byte) (uint64, error) {
	id := l.nextID
	tx := &Transaction{
		ID:          id,
		Destination: destination,
		Value:       value,
		Payload:     payload,
	}

	next, err := math.Add(id, 1)
	if err != nil {
		return 0, err
	}

	batch := l.db.NewBatch()
	if err := l.put(batch, tx); err != nil {
		return 0, err
	}
	if err := database.PutUInt64(batch, nextTxKey, next); err != nil {
		return 0, err
	}
	if err := batch.Write(); err != nil {
		return 0, err
	}

	l.nextID = next
	return id, nil
}

func (l *ledger) put(w database.KeyValueWriter, tx *Transaction) error {
	txBytes, err := Codec.Marshal(codecVersion, tx)
	if err != nil {
		return err
	}
	return w.Put(txKey(tx.ID), txBytes)
}

func (l *ledger) get(id uint64) (*Transaction, error) {
	txBytes, err := l.db.Get(txKey(id))
	if err == database.ErrNotFound {
		return nil, ErrTxNotFound
	}
	if err != nil {
		return nil, err
	}

	tx := &Transaction{}
	if _, err := Codec.Unmarshal(txBytes, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// markExecuted flips the executed bit. Executed transactions never go back to
// pending.
func (l *ledger) markExecuted(tx *Transaction) error {
	tx.Executed = true
	return l.put(l.db, tx)
}

// count reports how many stored transactions match the pending/executed
// filters.
func (l *ledger) count(pending, executed bool) (uint64, error) {
	if pending && executed {
		return l.nextID, nil
	}

	total := uint64(0)
	for id := uint64(0); id < l.nextID; id++ {
		tx, err := l.get(id)
		if err != nil {
			return 0, err
		}
		if (executed && tx.Executed) || (pending && !tx.Executed) {
			total++
		}
	}
	return total, nil
}

// list returns up to limit matching transaction IDs starting at offset within
// the filtered sequence. Requests larger than MaxPageSize are refused rather
// than truncated.
func (l *ledger) list(offset, limit uint64, pending, executed bool) ([]uint64, error) {
	if limit > MaxPageSize {
		return nil, ErrPageLimitExceeded
	}

	matched := uint64(0)
	txIDs := []uint64(nil)
	for id := uint64(0); id < l.nextID && uint64(len(txIDs)) < limit; id++ {
		tx, err := l.get(id)
		if err != nil {
			return nil, err
		}
		if !((executed && tx.Executed) || (pending && !tx.Executed)) {
			continue
		}
		if matched >= offset {
			txIDs = append(txIDs, id)
		}
		matched++
	}
	return txIDs, nil
}
