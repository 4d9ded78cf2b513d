// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package platform

import (
	"net/http"

	"github.com/luxfi/version"

	"github.com/luxfi/fundraise/utils/json"
)

// Version is the platform's semantic version.
var Version = &version.Semantic{
	Major: 1,
	Minor: 0,
	Patch: 0,
}

// InfoService reports platform-wide status.
type InfoService struct {
	platform *Platform
}

func NewInfoService(p *Platform) *InfoService {
	return &InfoService{platform: p}
}

type PingArgs struct{}

type PingReply struct {
	Success bool `json:"success"`
}

func (s *InfoService) Ping(_ *http.Request, _ *PingArgs, reply *PingReply) error {
	reply.Success = true
	return nil
}

type GetVersionArgs struct{}

type GetVersionReply struct {
	Version string `json:"version"`
}

func (s *InfoService) GetVersion(_ *http.Request, _ *GetVersionArgs, reply *GetVersionReply) error {
	reply.Version = Version.String()
	return nil
}

type HealthArgs struct{}

type HealthReply struct {
	Healthy            bool        `json:"healthy"`
	Version            string      `json:"version"`
	WalletTransactions json.Uint64 `json:"walletTransactions"`
	EscrowTransactions json.Uint64 `json:"escrowTransactions"`
	WhitelistCount     json.Uint64 `json:"whitelistCount"`
	AmountRaised       json.Uint64 `json:"amountRaised"`
	TokenSupply        json.Uint64 `json:"tokenSupply"`
}

// Health reports liveness and the platform's headline counters.
func (s *InfoService) Health(_ *http.Request, _ *HealthArgs, reply *HealthReply) error {
	walletTxs, err := s.platform.Wallet.TransactionCount(true, true)
	if err != nil {
		return err
	}
	escrowTxs, err := s.platform.Escrow.TransactionCount(true, true)
	if err != nil {
		return err
	}
	whitelisted, err := s.platform.Whitelist.Count()
	if err != nil {
		return err
	}
	amountRaised, err := s.platform.Sale.AmountRaised()
	if err != nil {
		return err
	}
	supply, err := s.platform.Token.TotalSupply()
	if err != nil {
		return err
	}

	reply.Healthy = true
	reply.Version = Version.String()
	reply.WalletTransactions = json.Uint64(walletTxs)
	reply.EscrowTransactions = json.Uint64(escrowTxs)
	reply.WhitelistCount = json.Uint64(whitelisted)
	reply.AmountRaised = json.Uint64(amountRaised)
	reply.TokenSupply = json.Uint64(supply)
	return nil
}
