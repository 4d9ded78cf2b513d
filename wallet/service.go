// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"

	"github.com/luxfi/ids"

	"github.com/luxfi/fundraise/utils/json"
)

var errUnknownGovernanceOp = errors.New("unknown governance op")

// Service provides the wallet's JSON-RPC API.
type Service struct {
	wallet *Wallet
}

func NewService(w *Wallet) *Service {
	return &Service{wallet: w}
}

// SubmitTransactionArgs are the arguments to SubmitTransaction. Payload is
// hex encoded and may be empty for a plain value transfer.
type SubmitTransactionArgs struct {
	Caller      string      `json:"caller"`
	Destination string      `json:"destination"`
	Value       json.Uint64 `json:"value"`
	Payload     string      `json:"payload"`
}

type SubmitTransactionReply struct {
	TxID     json.Uint64 `json:"txID"`
	Executed bool        `json:"executed"`
}

// SubmitTransaction proposes a new privileged operation, auto-confirmed by
// the caller.
func (s *Service) SubmitTransaction(_ *http.Request, args *SubmitTransactionArgs, reply *SubmitTransactionReply) error {
	caller, err := ids.ShortFromString(args.Caller)
	if err != nil {
		return fmt.Errorf("couldn't parse caller: %w", err)
	}
	destination, err := ids.ShortFromString(args.Destination)
	if err != nil {
		return fmt.Errorf("couldn't parse destination: %w", err)
	}
	payload, err := hex.DecodeString(args.Payload)
	if err != nil {
		return fmt.Errorf("couldn't parse payload: %w", err)
	}

	id, err := s.wallet.Submit(caller, destination, uint64(args.Value), payload)
	if err != nil {
		return err
	}

	tx, err := s.wallet.GetTransaction(id)
	if err != nil {
		return err
	}
	reply.TxID = json.Uint64(id)
	reply.Executed = tx.Executed
	return nil
}

type ConfirmTransactionArgs struct {
	Caller string      `json:"caller"`
	TxID   json.Uint64 `json:"txID"`
}

type ConfirmTransactionReply struct {
	Executed bool `json:"executed"`
}

// ConfirmTransaction records the caller's approval.
func (s *Service) ConfirmTransaction(_ *http.Request, args *ConfirmTransactionArgs, reply *ConfirmTransactionReply) error {
	caller, err := ids.ShortFromString(args.Caller)
	if err != nil {
		return fmt.Errorf("couldn't parse caller: %w", err)
	}

	if err := s.wallet.Confirm(caller, uint64(args.TxID)); err != nil {
		return err
	}

	tx, err := s.wallet.GetTransaction(uint64(args.TxID))
	if err != nil {
		return err
	}
	reply.Executed = tx.Executed
	return nil
}

type RevokeConfirmationArgs struct {
	Caller string      `json:"caller"`
	TxID   json.Uint64 `json:"txID"`
}

type RevokeConfirmationReply struct {
	Success bool `json:"success"`
}

// RevokeConfirmation withdraws the caller's approval of a pending
// transaction.
func (s *Service) RevokeConfirmation(_ *http.Request, args *RevokeConfirmationArgs, reply *RevokeConfirmationReply) error {
	caller, err := ids.ShortFromString(args.Caller)
	if err != nil {
		return fmt.Errorf("couldn't parse caller: %w", err)
	}

	if err := s.wallet.Revoke(caller, uint64(args.TxID)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}

type ExecuteTransactionArgs struct {
	TxID json.Uint64 `json:"txID"`
}

type ExecuteTransactionReply struct {
	Executed  bool   `json:"executed"`
	CallError string `json:"callError,omitempty"`
}

// ExecuteTransaction retries execution of a pending transaction that has
// reached quorum. A downstream call failure is reported in the reply, not as
// an RPC error; the transaction is executed either way.
func (s *Service) ExecuteTransaction(_ *http.Request, args *ExecuteTransactionArgs, reply *ExecuteTransactionReply) error {
	result, err := s.wallet.Execute(uint64(args.TxID))
	if err != nil {
		return err
	}

	reply.Executed = true
	if result.Err != nil {
		reply.CallError = result.Err.Error()
	}
	return nil
}

type GetTransactionArgs struct {
	TxID json.Uint64 `json:"txID"`
}

type GetTransactionReply struct {
	TxID        json.Uint64 `json:"txID"`
	Destination string      `json:"destination"`
	Value       json.Uint64 `json:"value"`
	Payload     string      `json:"payload"`
	Executed    bool        `json:"executed"`
}

func (s *Service) GetTransaction(_ *http.Request, args *GetTransactionArgs, reply *GetTransactionReply) error {
	tx, err := s.wallet.GetTransaction(uint64(args.TxID))
	if err != nil {
		return err
	}

	reply.TxID = json.Uint64(tx.ID)
	reply.Destination = tx.Destination.String()
	reply.Value = json.Uint64(tx.Value)
	reply.Payload = hex.EncodeToString(tx.Payload)
	reply.Executed = tx.Executed
	return nil
}

type GetTransactionIDsArgs struct {
	Offset   json.Uint64 `json:"offset"`
	Limit    json.Uint64 `json:"limit"`
	Pending  bool        `json:"pending"`
	Executed bool        `json:"executed"`
}

type GetTransactionIDsReply struct {
	TxIDs []json.Uint64 `json:"txIDs"`
}

func (s *Service) GetTransactionIDs(_ *http.Request, args *GetTransactionIDsArgs, reply *GetTransactionIDsReply) error {
	txIDs, err := s.wallet.TransactionIDs(uint64(args.Offset), uint64(args.Limit), args.Pending, args.Executed)
	if err != nil {
		return err
	}

	reply.TxIDs = make([]json.Uint64, len(txIDs))
	for i, id := range txIDs {
		reply.TxIDs[i] = json.Uint64(id)
	}
	return nil
}

type GetTransactionCountArgs struct {
	Pending  bool `json:"pending"`
	Executed bool `json:"executed"`
}

type GetTransactionCountReply struct {
	Count json.Uint64 `json:"count"`
}

func (s *Service) GetTransactionCount(_ *http.Request, args *GetTransactionCountArgs, reply *GetTransactionCountReply) error {
	count, err := s.wallet.TransactionCount(args.Pending, args.Executed)
	if err != nil {
		return err
	}
	reply.Count = json.Uint64(count)
	return nil
}

type GetConfirmationsArgs struct {
	TxID json.Uint64 `json:"txID"`
}

type GetConfirmationsReply struct {
	Count     json.Uint32 `json:"count"`
	Owners    []string    `json:"owners"`
	Confirmed bool        `json:"confirmed"`
}

// GetConfirmations reports which current owners have confirmed a transaction
// and whether quorum is met.
func (s *Service) GetConfirmations(_ *http.Request, args *GetConfirmationsArgs, reply *GetConfirmationsReply) error {
	confirmers, err := s.wallet.Confirmers(uint64(args.TxID))
	if err != nil {
		return err
	}
	confirmed, err := s.wallet.IsConfirmed(uint64(args.TxID))
	if err != nil {
		return err
	}

	reply.Count = json.Uint32(len(confirmers))
	reply.Owners = make([]string, len(confirmers))
	for i, owner := range confirmers {
		reply.Owners[i] = owner.String()
	}
	reply.Confirmed = confirmed
	return nil
}

type GetOwnersArgs struct{}

type GetOwnersReply struct {
	Owners   []string    `json:"owners"`
	Required json.Uint32 `json:"required"`
}

func (s *Service) GetOwners(_ *http.Request, _ *GetOwnersArgs, reply *GetOwnersReply) error {
	owners := s.wallet.Owners()
	reply.Owners = make([]string, len(owners))
	for i, owner := range owners {
		reply.Owners[i] = owner.String()
	}
	reply.Required = json.Uint32(s.wallet.Required())
	return nil
}

type IsOwnerArgs struct {
	Address string `json:"address"`
}

type IsOwnerReply struct {
	IsOwner bool `json:"isOwner"`
}

func (s *Service) IsOwner(_ *http.Request, args *IsOwnerArgs, reply *IsOwnerReply) error {
	addr, err := ids.ShortFromString(args.Address)
	if err != nil {
		return fmt.Errorf("couldn't parse address: %w", err)
	}
	reply.IsOwner = s.wallet.IsOwner(addr)
	return nil
}

type GetBalanceArgs struct{}

type GetBalanceReply struct {
	Balance json.Uint64 `json:"balance"`
}

func (s *Service) GetBalance(_ *http.Request, _ *GetBalanceArgs, reply *GetBalanceReply) error {
	balance, err := s.wallet.Balance()
	if err != nil {
		return err
	}
	reply.Balance = json.Uint64(balance)
	return nil
}

// EncodeGovernanceArgs name a governance operation and its parameters. Op is
// one of "addOwner", "removeOwner", "replaceOwner", "changeRequirement".
type EncodeGovernanceArgs struct {
	Op       string      `json:"op"`
	Owner    string      `json:"owner,omitempty"`
	OldOwner string      `json:"oldOwner,omitempty"`
	NewOwner string      `json:"newOwner,omitempty"`
	Required json.Uint32 `json:"required,omitempty"`
}

type EncodeGovernanceReply struct {
	Payload string `json:"payload"`
}

// EncodeGovernance builds the hex payload for a self-governance transaction,
// to be submitted with the wallet's own address as destination.
func (s *Service) EncodeGovernance(_ *http.Request, args *EncodeGovernanceArgs, reply *EncodeGovernanceReply) error {
	var call governanceCall
	switch args.Op {
	case "addOwner":
		owner, parseErr := ids.ShortFromString(args.Owner)
		if parseErr != nil {
			return fmt.Errorf("couldn't parse owner: %w", parseErr)
		}
		call = &AddOwnerCall{Owner: owner}
	case "removeOwner":
		owner, parseErr := ids.ShortFromString(args.Owner)
		if parseErr != nil {
			return fmt.Errorf("couldn't parse owner: %w", parseErr)
		}
		call = &RemoveOwnerCall{Owner: owner}
	case "replaceOwner":
		oldOwner, parseErr := ids.ShortFromString(args.OldOwner)
		if parseErr != nil {
			return fmt.Errorf("couldn't parse oldOwner: %w", parseErr)
		}
		newOwner, parseErr := ids.ShortFromString(args.NewOwner)
		if parseErr != nil {
			return fmt.Errorf("couldn't parse newOwner: %w", parseErr)
		}
		call = &ReplaceOwnerCall{OldOwner: oldOwner, NewOwner: newOwner}
	case "changeRequirement":
		call = &ChangeRequirementCall{Required: uint32(args.Required)}
	default:
		return errUnknownGovernanceOp
	}

	payload, err := EncodeGovernanceCall(call)
	if err != nil {
		return err
	}
	reply.Payload = hex.EncodeToString(payload)
	return nil
}
