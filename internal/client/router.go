// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"

	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/service"
)

// routeInbound sends signaling to the mesh and everything else to the remote
// applier. It runs on the channel's read goroutine, so messages are applied
// in arrival order.
func routeInbound(ctx context.Context, remote service.RemoteApplier, signals SignalHandler, log *logger.Logger) func(channel.Inbound) {
	return func(in channel.Inbound) {
		if in.Message == nil {
			return
		}
		t := in.Message.MessageType()
		if t.IsSignal() {
			signals.HandleSignal(in.SenderID, in.Message)
			return
		}
		if err := remote.Apply(ctx, in.Message); err != nil {
			log.Warn().Err(err).Str("type", string(t)).Str("sender", in.SenderID).Msg("inbound message not applied")
		}
	}
}
