// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package whitelist

import (
	"fmt"
	"net/http"

	"github.com/luxfi/ids"

	"github.com/luxfi/fundraise/utils/json"
)

// Service provides the whitelist's JSON-RPC API.
type Service struct {
	whitelist *Whitelist
}

func NewService(w *Whitelist) *Service {
	return &Service{whitelist: w}
}

type RegisterArgs struct {
	Address string `json:"address"`
}

type RegisterReply struct {
	Tier json.Uint8 `json:"tier"`
}

// Register self-registers an address; the assigned tier depends on how many
// registrations came before it.
func (s *Service) Register(_ *http.Request, args *RegisterArgs, reply *RegisterReply) error {
	addr, err := ids.ShortFromString(args.Address)
	if err != nil {
		return fmt.Errorf("couldn't parse address: %w", err)
	}

	if err := s.whitelist.RegisterSelf(addr); err != nil {
		return err
	}

	tier, err := s.whitelist.Tier(addr)
	if err != nil {
		return err
	}
	reply.Tier = json.Uint8(tier)
	return nil
}

type GetTierArgs struct {
	Address string `json:"address"`
}

type GetTierReply struct {
	Tier       json.Uint8 `json:"tier"`
	Registered bool       `json:"registered"`
}

func (s *Service) GetTier(_ *http.Request, args *GetTierArgs, reply *GetTierReply) error {
	addr, err := ids.ShortFromString(args.Address)
	if err != nil {
		return fmt.Errorf("couldn't parse address: %w", err)
	}

	tier, err := s.whitelist.Tier(addr)
	if err != nil {
		return err
	}
	reply.Tier = json.Uint8(tier)
	reply.Registered = tier != TierNone
	return nil
}

type GetStatusArgs struct{}

type GetStatusReply struct {
	Count   json.Uint64 `json:"count"`
	Paused  bool        `json:"paused"`
	Stopped bool        `json:"stopped"`
	Owner   string      `json:"owner"`
}

func (s *Service) GetStatus(_ *http.Request, _ *GetStatusArgs, reply *GetStatusReply) error {
	count, err := s.whitelist.Count()
	if err != nil {
		return err
	}
	paused, err := s.whitelist.Paused()
	if err != nil {
		return err
	}
	stopped, err := s.whitelist.Stopped()
	if err != nil {
		return err
	}
	owner, err := s.whitelist.Owner()
	if err != nil {
		return err
	}

	reply.Count = json.Uint64(count)
	reply.Paused = paused
	reply.Stopped = stopped
	reply.Owner = owner.String()
	return nil
}
