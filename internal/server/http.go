// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/internal/logger"
)

const shutdownTimeout = 5 * time.Second

type httpServer struct {
	server *http.Server
	logger *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewStatusServer serves handler on cfg.Address. It returns ErrNoAddress
// when no address is configured.
func NewStatusServer(handler http.Handler, cfg config.Status, log *logger.Logger) (Server, error) {
	if cfg.Address == "" {
		return nil, ErrNoAddress
	}

	log.Info().Str("address", cfg.Address).Msg("creating status server...")
	return &httpServer{
		server: &http.Server{
			Addr:              cfg.Address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log.WithComponent("status_server"),
	}, nil
}

func (h *httpServer) RunServer() {
	ln, err := net.Listen("tcp", h.server.Addr)
	if err != nil {
		h.logger.Err(err).Msg("status server listen failed")
		return
	}

	h.mu.Lock()
	h.listener = ln
	h.mu.Unlock()

	h.logger.Info().Str("address", ln.Addr().String()).Msg("status server listening")
	if err := h.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		h.logger.Err(err).Msg("status server stopped")
	}
}

func (h *httpServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Err(err).Msg("status server shutdown")
		return
	}
	h.logger.Info().Msg("status server shut down")
}

// Addr returns the bound address once the server is listening.
func (h *httpServer) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}
