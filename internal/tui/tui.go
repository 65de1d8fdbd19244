// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/presence"
	"github.com/MKhiriev/drawer-sync/internal/service"
	"github.com/MKhiriev/drawer-sync/models"
)

// Room is the part of the room channel the view reads and observes.
type Room interface {
	State() channel.State
	Room() string
	Roster() []models.Member
	OnStateChange(fn func(channel.State))
	Retry(ctx context.Context) error
}

// Peers reports the presence mesh sessions. It may be nil.
type Peers interface {
	Peers() []presence.PeerStatus
}

type TUI struct {
	services *service.ClientServices
	room     Room
	peers    Peers
	build    models.AppBuildInfo
	logger   *logger.Logger
}

func New(services *service.ClientServices, room Room, peers Peers, build models.AppBuildInfo, log *logger.Logger) *TUI {
	return &TUI{
		services: services,
		room:     room,
		peers:    peers,
		build:    build,
		logger:   log.WithComponent("tui"),
	}
}

// Run shows the view until the user quits or ctx is cancelled. Cancellation
// is not reported as an error.
func (t *TUI) Run(ctx context.Context) error {
	p := tea.NewProgram(newModel(ctx, t.services, t.room, t.peers, t.build), tea.WithAltScreen(), tea.WithContext(ctx))

	// Send returns immediately once the program has exited.
	t.services.Conflicts.OnChange(func(active *models.Conflict, backlog []models.Conflict) {
		p.Send(conflictsChangedMsg{active: active, backlog: len(backlog)})
	})
	t.room.OnStateChange(func(s channel.State) {
		p.Send(channelStateMsg{state: s})
	})

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		t.logger.Err(err).Msg("terminal view stopped")
		return err
	}
	return nil
}
