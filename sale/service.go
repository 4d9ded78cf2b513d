// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sale

import (
	"fmt"
	"net/http"

	"github.com/luxfi/ids"

	"github.com/luxfi/fundraise/utils/json"
)

// Service provides the sale's JSON-RPC API.
type Service struct {
	sale *Sale
}

func NewService(s *Sale) *Service {
	return &Service{sale: s}
}

type BuyArgs struct {
	Buyer  string      `json:"buyer"`
	Amount json.Uint64 `json:"amount"`
}

type BuyReply struct {
	Units json.Uint64 `json:"units"`
}

// Buy purchases tokens at the buyer's tier-boosted rate.
func (s *Service) Buy(_ *http.Request, args *BuyArgs, reply *BuyReply) error {
	buyer, err := ids.ShortFromString(args.Buyer)
	if err != nil {
		return fmt.Errorf("couldn't parse buyer: %w", err)
	}

	units, err := s.sale.Buy(buyer, uint64(args.Amount))
	if err != nil {
		return err
	}
	reply.Units = json.Uint64(units)
	return nil
}

type GetStatusArgs struct{}

type GetStatusReply struct {
	AmountRaised json.Uint64 `json:"amountRaised"`
	UnitsRaised  json.Uint64 `json:"unitsRaised"`
	Paused       bool        `json:"paused"`
	Rate         json.Uint64 `json:"rate"`
	Start        string      `json:"start"`
}

func (s *Service) GetStatus(_ *http.Request, _ *GetStatusArgs, reply *GetStatusReply) error {
	amountRaised, err := s.sale.AmountRaised()
	if err != nil {
		return err
	}
	unitsRaised, err := s.sale.UnitsRaised()
	if err != nil {
		return err
	}
	paused, err := s.sale.Paused()
	if err != nil {
		return err
	}

	config := s.sale.Config()
	reply.AmountRaised = json.Uint64(amountRaised)
	reply.UnitsRaised = json.Uint64(unitsRaised)
	reply.Paused = paused
	reply.Rate = json.Uint64(config.Rate)
	reply.Start = config.Start.String()
	return nil
}
