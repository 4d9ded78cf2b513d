// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/luxfi/database"
	"github.com/luxfi/database/badgerdb"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/spf13/cobra"

	"github.com/luxfi/fundraise/api/server"
	"github.com/luxfi/fundraise/platform"
	"github.com/luxfi/fundraise/utils/timer/mockable"
)

const (
	genesisKey         = "genesis"
	listenAddrKey      = "listen-addr"
	dbDirKey           = "db-dir"
	allowedOriginsKey  = "allowed-origins"
	allowedHostsKey    = "allowed-hosts"
	shutdownTimeoutKey = "shutdown-timeout"
)

func runCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Serves the platform's JSON-RPC API",
		RunE:  runFunc,
	}

	flags := c.Flags()
	flags.String(genesisKey, "", "Path to the genesis JSON file (required)")
	flags.String(listenAddrKey, ":9650", "Address the API server listens on")
	flags.String(dbDirKey, "", "Database directory; empty runs in memory")
	flags.StringSlice(allowedOriginsKey, []string{"*"}, "Origins allowed by CORS")
	flags.StringSlice(allowedHostsKey, []string{"*"}, "Host headers the server accepts")
	flags.Duration(shutdownTimeoutKey, 10*time.Second, "Grace period for in-flight requests on shutdown")

	if err := c.MarkFlagRequired(genesisKey); err != nil {
		panic(err)
	}
	return c
}

func runFunc(c *cobra.Command, _ []string) error {
	flags := c.Flags()

	genesisPath, err := flags.GetString(genesisKey)
	if err != nil {
		return err
	}
	listenAddr, err := flags.GetString(listenAddrKey)
	if err != nil {
		return err
	}
	dbDir, err := flags.GetString(dbDirKey)
	if err != nil {
		return err
	}
	allowedOrigins, err := flags.GetStringSlice(allowedOriginsKey)
	if err != nil {
		return err
	}
	allowedHosts, err := flags.GetStringSlice(allowedHostsKey)
	if err != nil {
		return err
	}
	shutdownTimeout, err := flags.GetDuration(shutdownTimeoutKey)
	if err != nil {
		return err
	}

	genesisBytes, err := os.ReadFile(genesisPath)
	if err != nil {
		return fmt.Errorf("couldn't read genesis: %w", err)
	}
	genesis := platform.Genesis{}
	if err := json.Unmarshal(genesisBytes, &genesis); err != nil {
		return fmt.Errorf("couldn't parse genesis: %w", err)
	}

	logger := log.NewLogger("fundraise")

	var db database.Database
	if dbDir == "" {
		db = memdb.New()
	} else {
		db, err = badgerdb.New(dbDir, nil, "", nil)
		if err != nil {
			return fmt.Errorf("couldn't open database: %w", err)
		}
	}
	defer func() {
		_ = db.Close()
	}()

	registry := metric.NewRegistry()
	clock := &mockable.Clock{}

	p, err := platform.New(db, &genesis, logger, registry, clock)
	if err != nil {
		return fmt.Errorf("couldn't build platform: %w", err)
	}
	handlers, err := p.CreateHandlers()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("couldn't listen on %s: %w", listenAddr, err)
	}

	srv, err := server.New(
		logger,
		listener,
		allowedOrigins,
		shutdownTimeout,
		registry,
		server.HTTPConfig{
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		allowedHosts,
	)
	if err != nil {
		return err
	}
	for path, handler := range handlers {
		if err := srv.AddRoute(handler, path); err != nil {
			return err
		}
	}

	errs := make(chan error, 1)
	go func() {
		logger.Info("serving API", log.String("addr", listener.Addr().String()))
		if err := srv.Dispatch(); err != nil && err != http.ErrServerClosed {
			errs <- err
			return
		}
		errs <- nil
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signals:
		logger.Info("shutting down", log.Stringer("signal", sig))
		if err := srv.Shutdown(); err != nil {
			return err
		}
		return <-errs
	case err := <-errs:
		return err
	}
}
