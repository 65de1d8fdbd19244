// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"

	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/metrics"
	"github.com/MKhiriev/drawer-sync/internal/presence"
	"github.com/MKhiriev/drawer-sync/internal/service"
	"github.com/MKhiriev/drawer-sync/models"
)

// RoomStatus is the room channel as seen by the status API.
type RoomStatus interface {
	State() channel.State
	Room() string
	Roster() []models.Member
	// Retry reconnects now, forgetting an earlier credential rejection.
	Retry(ctx context.Context) error
}

// MeshStatus is the read side of the presence mesh.
type MeshStatus interface {
	Peers() []presence.PeerStatus
	Cursors() []models.RemoteCursor
}

type Handler struct {
	services *service.ClientServices
	room     RoomStatus
	mesh     MeshStatus
	metrics  *metrics.Metrics
	build    models.AppBuildInfo

	logger *logger.Logger
}

func NewHandler(services *service.ClientServices, room RoomStatus, mesh MeshStatus, m *metrics.Metrics, build models.AppBuildInfo, logger *logger.Logger) *Handler {
	logger.Info().Msg("status handler created")
	return &Handler{
		services: services,
		room:     room,
		mesh:     mesh,
		metrics:  m,
		build:    build,
		logger:   logger,
	}
}
