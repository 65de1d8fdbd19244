// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/config"
	statushttp "github.com/MKhiriev/drawer-sync/internal/handler/http"
	"github.com/MKhiriev/drawer-sync/internal/inventory"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/metrics"
	"github.com/MKhiriev/drawer-sync/internal/presence"
	"github.com/MKhiriev/drawer-sync/internal/server"
	"github.com/MKhiriev/drawer-sync/internal/service"
	"github.com/MKhiriev/drawer-sync/internal/store"
	"github.com/MKhiriev/drawer-sync/internal/tui"
	"github.com/MKhiriev/drawer-sync/internal/workers"
	"github.com/MKhiriev/drawer-sync/models"
)

type App struct {
	cfg    *config.ClientConfig
	logger *logger.Logger

	authority adapter.AuthorityAdapter
	storages  *store.Storages
	channel   *channel.Channel
	state     *inventory.State
	mesh      *presence.Mesh
	services  *service.ClientServices
	online    *connectivity
	workers   *workers.Workers
	ui        *tui.TUI
}

// NewApp builds every component of the client. Nothing connects until Run.
func NewApp(ctx context.Context, cfg *config.ClientConfig, build models.AppBuildInfo, log *logger.Logger) (*App, error) {
	log.Info().Str("room", cfg.App.RoomID).Str("user_id", cfg.App.UserID).Msg("creating client app...")

	m := metrics.New()

	authority, err := adapter.NewHTTPAuthorityAdapter(cfg.Adapter, log)
	if err != nil {
		return nil, fmt.Errorf("create authority adapter: %w", err)
	}
	authority.SetRoom(cfg.App.RoomID)

	tokens := service.NewTokenManager(authority, cfg.App.AccessToken, cfg.App.RefreshToken, cfg.Sync.TokenExpiryBuffer, log)

	ch, err := channel.New(cfg.Sync, cfg.Adapter.WSAddress, cfg.App.UserID, tokens, m, log)
	if err != nil {
		return nil, fmt.Errorf("create room channel: %w", err)
	}

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	state := inventory.NewState(log)
	services := service.NewClientServices(cfg.Sync, storages, authority, tokens, state, ch, m, log)
	mesh := presence.New(cfg.Presence, presence.NewPionFactory(cfg.Presence), ch, m, log)
	online := newConnectivity(services.Queue, log)

	bg := workers.New(log, online, workers.SyncJob(services.SyncJob, cfg.Workers.SyncInterval))

	handler := statushttp.NewHandler(services, ch, mesh, m, build, log)
	srv, err := server.NewStatusServer(handler.Init(), cfg.Status, log)
	switch {
	case errors.Is(err, server.ErrNoAddress):
		log.Info().Msg("status server disabled")
	case err != nil:
		_ = storages.Close()
		return nil, fmt.Errorf("create status server: %w", err)
	default:
		bg.Add(workers.Server(srv))
	}

	app := &App{
		cfg:       cfg,
		logger:    log,
		authority: authority,
		storages:  storages,
		channel:   ch,
		state:     state,
		mesh:      mesh,
		services:  services,
		online:    online,
		workers:   bg,
	}
	if !cfg.App.Headless {
		app.ui = tui.New(services, ch, mesh, build, log)
	}

	app.wire(ctx)
	return app, nil
}

// wire registers the observers that connect the channel to the services and
// the mesh.
func (a *App) wire(ctx context.Context) {
	a.channel.OnMessage(routeInbound(ctx, a.services.Remote, a.mesh, a.logger))
	a.channel.OnStateChange(a.online.observe)
	a.channel.OnStateChange(func(s channel.State) {
		switch s {
		case channel.StateAuthFailed:
			a.logger.Error().Str("room", a.channel.Room()).Msg("room access rejected, renew the credential and retry to resume syncing")
		case channel.StateUnreachable:
			a.logger.Error().Str("room", a.channel.Room()).Msg("authority unreachable, reconnects exhausted until retried")
		}
	})
	a.channel.OnRosterChange(a.mesh.SyncRoster)
	a.mesh.OnPeerGone(func(userID string) {
		a.logger.Info().Str("peer", userID).Msg("presence peer gone")
	})
}

// Run loads durable state, joins the room and blocks until the terminal view
// exits or the process receives a stop signal.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()
	defer a.Shutdown()

	if err := a.start(ctx); err != nil {
		return err
	}

	if a.ui != nil {
		return a.ui.Run(ctx)
	}

	<-ctx.Done()
	a.logger.Info().Msg("stop signal received")
	return nil
}

func (a *App) start(ctx context.Context) error {
	if err := a.services.Queue.Load(ctx); err != nil {
		return fmt.Errorf("load offline queue: %w", err)
	}
	if err := a.services.Conflicts.Load(ctx); err != nil {
		return fmt.Errorf("load conflicts: %w", err)
	}
	if err := a.mesh.Initialize(ctx, a.cfg.App.UserID, a.cfg.App.DisplayName); err != nil {
		return fmt.Errorf("initialize presence: %w", err)
	}

	a.workers.Start(ctx)

	// The client keeps working offline over the durable queue. Transport
	// failures are retried by the channel; a rejection waits for Retry.
	if err := a.channel.Connect(ctx, a.cfg.App.RoomID); err != nil {
		a.logger.Warn().Err(err).Str("room", a.cfg.App.RoomID).Msg("room channel not connected, working offline")
	}

	go a.retryOnHangup(ctx)
	return nil
}

// retryOnHangup retries the room channel on SIGHUP, e.g. after the host
// regained network access or the credential was renewed.
func (a *App) retryOnHangup(ctx context.Context) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			a.logger.Info().Msg("hangup received, retrying room channel")
			if err := a.channel.Retry(ctx); err != nil {
				a.logger.Warn().Err(err).Msg("room channel retry failed")
			}
		}
	}
}

// Shutdown stops everything in reverse start order. It is safe to call more
// than once.
func (a *App) Shutdown() {
	a.logger.Info().Msg("shutting down client app")

	a.channel.Disconnect()
	a.mesh.Cleanup()
	a.workers.Stop()

	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Msg("close local storage")
	}
	a.storages = nil
}
