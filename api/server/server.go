// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package server serves the platform's JSON-RPC handlers over HTTP.
package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/luxfi/log"
	"github.com/luxfi/metric"
	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const (
	baseURL              = "/ext"
	maxConcurrentStreams = 64
)

var _ Server = (*server)(nil)

// Server maintains the HTTP router.
type Server interface {
	// AddRoute registers a handler under /ext/<endpoint>.
	AddRoute(handler http.Handler, endpoint string) error

	// Dispatch starts the API server.
	Dispatch() error

	// Shutdown this server.
	Shutdown() error
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout"`
}

type server struct {
	log log.Logger

	shutdownTimeout time.Duration

	metrics *serverMetrics

	// Maps endpoints to handlers
	router *router

	srv *http.Server

	// Listener used to serve traffic
	listener net.Listener
}

// New returns an instance of a Server.
func New(
	logger log.Logger,
	listener net.Listener,
	allowedOrigins []string,
	shutdownTimeout time.Duration,
	registerer metric.Registerer,
	httpConfig HTTPConfig,
	allowedHosts []string,
) (Server, error) {
	m, err := newMetrics(registerer)
	if err != nil {
		return nil, err
	}

	router := newRouter()
	handler := wrapHandler(router, allowedOrigins, allowedHosts)

	httpServer := &http.Server{
		Handler: h2c.NewHandler(
			handler,
			&http2.Server{
				MaxConcurrentStreams: maxConcurrentStreams,
			}),
		ReadTimeout:       httpConfig.ReadTimeout,
		ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
		WriteTimeout:      httpConfig.WriteTimeout,
		IdleTimeout:       httpConfig.IdleTimeout,
	}

	logger.Info("API created with allowed origins: " + strings.Join(allowedOrigins, ","))

	return &server{
		log:             logger,
		shutdownTimeout: shutdownTimeout,
		metrics:         m,
		router:          router,
		srv:             httpServer,
		listener:        listener,
	}, nil
}

func (s *server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

func (s *server) AddRoute(handler http.Handler, endpoint string) error {
	url := baseURL + endpoint
	s.log.Info("adding route",
		log.String("url", url),
	)

	handler = s.metrics.wrapHandler(endpoint, handler)
	return s.router.Add(url, handler)
}

func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	err := s.srv.Shutdown(ctx)
	cancel()

	// If shutdown times out, make sure the server is still shutdown.
	_ = s.srv.Close()
	return err
}

func wrapHandler(
	handler http.Handler,
	allowedOrigins []string,
	allowedHosts []string,
) http.Handler {
	h := filterInvalidHosts(handler, allowedHosts)
	return cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(h)
}

// filterInvalidHosts rejects requests whose Host header is not in
// [allowedHosts]. The wildcard "*" admits every host.
func filterInvalidHosts(handler http.Handler, allowedHosts []string) http.Handler {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedHosts))
	for _, host := range allowedHosts {
		if host == "*" {
			allowAll = true
		}
		allowed[strings.ToLower(host)] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if allowAll {
			handler.ServeHTTP(w, r)
			return
		}

		host := r.Host
		if splitHost, _, err := net.SplitHostPort(r.Host); err == nil {
			host = splitHost
		}
		if _, ok := allowed[strings.ToLower(host)]; !ok {
			http.Error(w, "invalid host", http.StatusForbidden)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
