// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"github.com/luxfi/database"
	"github.com/luxfi/ids"
)

var confirmationPrefix = []byte("c:")

// confirmations records which owner approved which transaction. Each approval
// is one key with an empty value, so confirming and revoking are single-key
// writes.
type confirmations struct {
	db database.Database
}

func newConfirmations(db database.Database) *confirmations {
	return &confirmations{db: db}
}

func confirmationKey(id uint64, owner ids.ShortID) []byte {
	key := confirmationTxPrefix(id)
	return append(key, owner.Bytes()...)
}

func confirmationTxPrefix(id uint64) []byte {
	key := make([]byte, 0, len(confirmationPrefix)+8)
	key = append(key, confirmationPrefix...)
	return append(key, database.PackUInt64(id)...)
}

func (c *confirmations) has(id uint64, owner ids.ShortID) (bool, error) {
	return c.db.Has(confirmationKey(id, owner))
}

func (c *confirmations) confirm(id uint64, owner ids.ShortID) error {
	return c.db.Put(confirmationKey(id, owner), nil)
}

func (c *confirmations) revoke(id uint64, owner ids.ShortID) error {
	return c.db.Delete(confirmationKey(id, owner))
}

// confirmers returns the owners that approved the transaction, in key order.
// Approvals from since-removed owners are filtered by the caller.
func (c *confirmations) confirmers(id uint64) ([]ids.ShortID, error) {
	iter := c.db.NewIteratorWithPrefix(confirmationTxPrefix(id))
	defer iter.Release()

	prefixLen := len(confirmationTxPrefix(id))
	owners := []ids.ShortID(nil)
	for iter.Next() {
		owner, err := ids.ToShortID(iter.Key()[prefixLen:])
		if err != nil {
			return nil, err
		}
		owners = append(owners, owner)
	}
	return owners, iter.Error()
}
