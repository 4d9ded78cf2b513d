// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"net/http"
	"sync"
)

var errRouteExists = errors.New("route already exists")

// router dispatches requests by exact URL path.
type router struct {
	lock   sync.RWMutex
	routes map[string]http.Handler
}

func newRouter() *router {
	return &router{
		routes: make(map[string]http.Handler),
	}
}

func (r *router) Add(url string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.routes[url]; ok {
		return errRouteExists
	}
	r.routes[url] = handler
	return nil
}

func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.lock.RLock()
	handler, ok := r.routes[req.URL.Path]
	r.lock.RUnlock()

	if !ok {
		http.NotFound(w, req)
		return
	}
	handler.ServeHTTP(w, req)
}
