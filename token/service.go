// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"fmt"
	"net/http"

	"github.com/luxfi/ids"

	"github.com/luxfi/fundraise/utils/json"
)

// Service provides the token's JSON-RPC API.
type Service struct {
	token *Token
}

func NewService(t *Token) *Service {
	return &Service{token: t}
}

type GetBalanceArgs struct {
	Address string `json:"address"`
}

type GetBalanceReply struct {
	Balance json.Uint64 `json:"balance"`
}

func (s *Service) GetBalance(_ *http.Request, args *GetBalanceArgs, reply *GetBalanceReply) error {
	addr, err := ids.ShortFromString(args.Address)
	if err != nil {
		return fmt.Errorf("couldn't parse address: %w", err)
	}

	balance, err := s.token.BalanceOf(addr)
	if err != nil {
		return err
	}
	reply.Balance = json.Uint64(balance)
	return nil
}

type GetSupplyArgs struct{}

type GetSupplyReply struct {
	TotalSupply json.Uint64 `json:"totalSupply"`
	Owner       string      `json:"owner"`
}

func (s *Service) GetSupply(_ *http.Request, _ *GetSupplyArgs, reply *GetSupplyReply) error {
	supply, err := s.token.TotalSupply()
	if err != nil {
		return err
	}
	owner, err := s.token.Owner()
	if err != nil {
		return err
	}

	reply.TotalSupply = json.Uint64(supply)
	reply.Owner = owner.String()
	return nil
}

type TransferArgs struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount json.Uint64 `json:"amount"`
}

type TransferReply struct {
	Success bool `json:"success"`
}

func (s *Service) Transfer(_ *http.Request, args *TransferArgs, reply *TransferReply) error {
	from, err := ids.ShortFromString(args.From)
	if err != nil {
		return fmt.Errorf("couldn't parse from: %w", err)
	}
	to, err := ids.ShortFromString(args.To)
	if err != nil {
		return fmt.Errorf("couldn't parse to: %w", err)
	}

	if err := s.token.Transfer(from, to, uint64(args.Amount)); err != nil {
		return err
	}
	reply.Success = true
	return nil
}
