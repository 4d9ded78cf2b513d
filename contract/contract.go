// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package contract defines the call surface the execution engine targets.
package contract

import (
	"errors"
	"sync"

	"github.com/luxfi/ids"
)

var (
	ErrNilAddress        = errors.New("nil contract address")
	ErrContractNotFound  = errors.New("contract not found")
	ErrAlreadyRegistered = errors.New("contract already registered")
)

// Contract is an address-targetable call destination. The payload is opaque
// to the caller; each contract decodes it with its own codec.
type Contract interface {
	Call(from ids.ShortID, value uint64, payload []byte) error
}

// Registry resolves destination addresses to contracts.
type Registry struct {
	mu        sync.RWMutex
	contracts map[ids.ShortID]Contract
}

func NewRegistry() *Registry {
	return &Registry{
		contracts: make(map[ids.ShortID]Contract),
	}
}

// Register binds [addr] to [c]. Addresses are bound once.
func (r *Registry) Register(addr ids.ShortID, c Contract) error {
	if addr == ids.ShortEmpty {
		return ErrNilAddress
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.contracts[addr]; ok {
		return ErrAlreadyRegistered
	}
	r.contracts[addr] = c
	return nil
}

// Has reports whether a contract is bound to [addr].
func (r *Registry) Has(addr ids.ShortID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.contracts[addr]
	return ok
}

// Call forwards [payload] and [value] to the contract bound to [to].
func (r *Registry) Call(from, to ids.ShortID, value uint64, payload []byte) error {
	r.mu.RLock()
	c, ok := r.contracts[to]
	r.mu.RUnlock()

	if !ok {
		return ErrContractNotFound
	}
	return c.Call(from, value, payload)
}
