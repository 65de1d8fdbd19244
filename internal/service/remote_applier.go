// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/drawer-sync/internal/inventory"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/models"
)

type remoteApplier struct {
	state    InventoryState
	queue    OfflineQueue
	resolver ConflictResolver
	logger   *logger.Logger
}

// NewRemoteApplier creates the RemoteApplier fed by the room channel.
func NewRemoteApplier(state InventoryState, queue OfflineQueue, resolver ConflictResolver, log *logger.Logger) RemoteApplier {
	return &remoteApplier{
		state:    state,
		queue:    queue,
		resolver: resolver,
		logger:   log.WithComponent("remote"),
	}
}

// Apply applies msg as a remote change and then compares it with the
// operation queued for the same entity, if any. The remote version is in
// place before any conflict is recorded, so keeping it needs no further
// write.
func (a *remoteApplier) Apply(ctx context.Context, msg models.SyncMessage) error {
	applyErr := a.state.Apply(msg, inventory.OriginRemote)
	if errors.Is(applyErr, models.ErrNotMutation) {
		return nil
	}
	if applyErr != nil {
		// A patch for an entity this client has not seen yet still races
		// with a queued create or update of it.
		a.logger.Warn().Err(applyErr).Str("type", string(msg.MessageType())).Msg("remote change not applied")
	}

	remote, err := models.MutationFromMessage(msg)
	if err != nil {
		// Structural messages carry no queueable form.
		return applyErr
	}

	op, pending := a.queue.PendingFor(remote.Key())
	if !pending {
		return applyErr
	}

	detection, err := a.resolver.Detect(ctx, op, remote)
	if err != nil {
		return errors.Join(applyErr, err)
	}

	a.logger.Debug().
		Str("entity", remote.Key().String()).
		Stringer("detection", detection).
		Msg("remote change raced a queued operation")

	if detection == DetectionNone {
		a.queue.ObserveRemote(remote)
		return applyErr
	}
	return errors.Join(applyErr, a.queue.Discard(ctx, op.ID))
}
