// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package platform wires the fundraising components together: bank, token,
// whitelist, sale, and the two quorum wallets that govern them.
package platform

import (
	"net/http"

	"github.com/gorilla/rpc/v2"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"

	"github.com/luxfi/fundraise/bank"
	"github.com/luxfi/fundraise/contract"
	"github.com/luxfi/fundraise/sale"
	"github.com/luxfi/fundraise/token"
	"github.com/luxfi/fundraise/utils/json"
	"github.com/luxfi/fundraise/utils/timer/mockable"
	"github.com/luxfi/fundraise/wallet"
	"github.com/luxfi/fundraise/whitelist"
)

var (
	bankPrefix      = []byte("bank")
	tokenPrefix     = []byte("token")
	whitelistPrefix = []byte("whitelist")
	salePrefix      = []byte("sale")
	walletPrefix    = []byte("wallet")
	escrowPrefix    = []byte("escrow")

	initializedKey = []byte("initialized")
)

// Platform holds the wired component graph. The main wallet is the treasury
// and governs the sale and token; the escrow wallet governs the whitelist.
type Platform struct {
	Log       log.Logger
	Bank      *bank.Bank
	Token     *token.Token
	Whitelist *whitelist.Whitelist
	Sale      *sale.Sale
	Wallet    *wallet.Wallet
	Escrow    *wallet.Wallet
	Registry  *contract.Registry
	Clock     *mockable.Clock
}

// New builds the platform over [db]. Genesis allocations are credited only on
// a fresh database.
func New(
	db database.Database,
	genesis *Genesis,
	logger log.Logger,
	registerer metric.Registerer,
	clock *mockable.Clock,
) (*Platform, error) {
	if err := genesis.Validate(); err != nil {
		return nil, err
	}

	p := &Platform{
		Log:      logger,
		Registry: contract.NewRegistry(),
		Clock:    clock,
	}

	p.Bank = bank.New(prefixdb.New(bankPrefix, db))

	initialized, err := db.Has(initializedKey)
	if err != nil {
		return nil, err
	}
	if !initialized {
		for _, allocation := range genesis.Allocations {
			if err := p.Bank.Credit(allocation.Address, allocation.Balance); err != nil {
				return nil, err
			}
		}
		if err := db.Put(initializedKey, nil); err != nil {
			return nil, err
		}
	}

	// The sale mints, so it starts as the token's owner.
	p.Token, err = token.New(prefixdb.New(tokenPrefix, db), genesis.SaleAddress, genesis.TokenCap)
	if err != nil {
		return nil, err
	}

	p.Whitelist, err = whitelist.New(
		prefixdb.New(whitelistPrefix, db),
		genesis.Escrow.Address,
		genesis.WhitelistDeadline,
		clock,
	)
	if err != nil {
		return nil, err
	}

	p.Wallet, err = wallet.New(
		prefixdb.New(walletPrefix, db),
		genesis.Wallet.Address,
		genesis.Wallet.Owners,
		genesis.Wallet.Required,
		p.Bank,
		p.Registry,
		logger,
		registerer,
	)
	if err != nil {
		return nil, err
	}

	p.Escrow, err = wallet.New(
		prefixdb.New(escrowPrefix, db),
		genesis.Escrow.Address,
		genesis.Escrow.Owners,
		genesis.Escrow.Required,
		p.Bank,
		p.Registry,
		logger,
		registerer,
	)
	if err != nil {
		return nil, err
	}

	p.Sale, err = sale.New(
		prefixdb.New(salePrefix, db),
		genesis.Sale,
		p.Bank,
		p.Token,
		p.Whitelist,
		genesis.Wallet.Address,
		genesis.SaleAddress,
		genesis.Wallet.Address,
		clock,
		logger,
		registerer,
	)
	if err != nil {
		return nil, err
	}

	if err := p.Registry.Register(genesis.Wallet.Address, p.Wallet); err != nil {
		return nil, err
	}
	if err := p.Registry.Register(genesis.Escrow.Address, p.Escrow); err != nil {
		return nil, err
	}
	if err := p.Registry.Register(genesis.TokenAddress, p.Token); err != nil {
		return nil, err
	}
	if err := p.Registry.Register(genesis.WhitelistAddress, p.Whitelist); err != nil {
		return nil, err
	}
	if err := p.Registry.Register(genesis.SaleAddress, p.Sale); err != nil {
		return nil, err
	}

	return p, nil
}

// newHandler builds a JSON-RPC server exposing [service] under [namespace].
func newHandler(namespace string, service interface{}) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	return server, server.RegisterService(service, namespace)
}

// CreateHandlers returns the platform's HTTP handlers keyed by mount path.
func (p *Platform) CreateHandlers() (map[string]http.Handler, error) {
	handlers := map[string]http.Handler{}
	for path, entry := range map[string]struct {
		namespace string
		service   interface{}
	}{
		"/wallet":    {"wallet", wallet.NewService(p.Wallet)},
		"/escrow":    {"escrow", wallet.NewService(p.Escrow)},
		"/token":     {"token", token.NewService(p.Token)},
		"/whitelist": {"whitelist", whitelist.NewService(p.Whitelist)},
		"/sale":      {"sale", sale.NewService(p.Sale)},
		"/info":      {"info", NewInfoService(p)},
	} {
		handler, err := newHandler(entry.namespace, entry.service)
		if err != nil {
			return nil, err
		}
		handlers[path] = handler
	}
	return handlers, nil
}
