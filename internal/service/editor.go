// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/inventory"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/validators"
	"github.com/MKhiriev/drawer-sync/models"
)

type editor struct {
	state      InventoryState
	dispatcher MutationDispatcher
	queue      OfflineQueue
	channel    RoomChannel
	validator  validators.Validator
	logger     *logger.Logger
}

// NewEditor creates the live edit path. Leaf edits are applied locally
// first; structural edits wait for the authority's result.
func NewEditor(state InventoryState, dispatcher MutationDispatcher, queue OfflineQueue, channel RoomChannel, log *logger.Logger) Editor {
	return &editor{
		state:      state,
		dispatcher: dispatcher,
		queue:      queue,
		channel:    channel,
		validator:  validators.NewMutationValidator(),
		logger:     log.WithComponent("editor"),
	}
}

func (e *editor) Submit(ctx context.Context, msg models.SyncMessage) error {
	if msg != nil && msg.MessageType().IsStructural() && !e.channel.Connected() {
		return ErrStructuralOffline
	}

	mutation, err := leafMutation(msg)
	if err != nil {
		return err
	}
	if err = e.validator.Validate(ctx, mutation); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEdit, err)
	}

	if err = e.state.Apply(msg, inventory.OriginLocal); err != nil {
		return fmt.Errorf("apply local edit: %w", err)
	}

	return e.send(ctx, mutation, now())
}

func (e *editor) Reissue(ctx context.Context, mutation models.Mutation) error {
	msg, err := mutation.Message()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotLeafMessage, err)
	}

	if err = e.state.Apply(msg, inventory.OriginLocal); err != nil {
		e.logger.Warn().Err(err).Str("entity", mutation.Key().String()).Msg("re-issued version could not be applied locally")
	}

	return e.send(ctx, mutation, nil)
}

// send writes mutation to the authority, or queues it when that is not
// possible right now. A queued operation for the entity keeps later edits
// queued too so they reach the authority in order. Without a room session
// edits stay local.
func (e *editor) send(ctx context.Context, mutation models.Mutation, updatedAt *time.Time) error {
	if e.channel.Room() == "" {
		e.logger.Debug().Str("entity", mutation.Key().String()).Msg("no room session, edit kept local")
		return nil
	}
	if _, pending := e.queue.PendingFor(mutation.Key()); pending || !e.channel.Connected() {
		return e.enqueue(ctx, mutation)
	}

	err := e.dispatcher.Dispatch(ctx, mutation, updatedAt)
	if err != nil {
		if adapter.IsRetryable(err) {
			e.logger.Warn().Err(err).Str("entity", mutation.Key().String()).Msg("authority unreachable, queueing edit")
			return e.enqueue(ctx, mutation)
		}
		e.logger.Err(err).Str("entity", mutation.Key().String()).Msg("edit rejected")
		return err
	}

	e.publish(mutation)
	return nil
}

// enqueue folds mutation into the operation already queued for the entity.
func (e *editor) enqueue(ctx context.Context, mutation models.Mutation) error {
	pending, ok := e.queue.PendingFor(mutation.Key())
	if ok {
		queued := pending.Mutation
		switch {
		case queued.Operation == models.OperationCreate && mutation.Operation == models.OperationDelete:
			// The authority never saw the entity.
			return e.queue.Discard(ctx, pending.ID)
		case queued.Operation == models.OperationCreate && mutation.Operation == models.OperationUpdate:
			queued.Fields = queued.Fields.Merge(mutation.Fields)
			mutation = queued
		case queued.Operation == models.OperationUpdate && mutation.Operation == models.OperationUpdate:
			mutation.Fields = queued.Fields.Merge(mutation.Fields)
		}
	}

	return e.queue.AddPendingOperation(ctx, mutation)
}

func (e *editor) publish(mutation models.Mutation) {
	msg, err := mutation.Message()
	if err != nil {
		return
	}
	e.broadcast(msg, inventory.OriginLocal)
}

// broadcast relays a locally made change to the room. Changes that came
// from the room are never echoed back.
func (e *editor) broadcast(msg models.SyncMessage, origin inventory.Origin) {
	if origin != inventory.OriginLocal {
		return
	}
	if !e.channel.Send(msg) {
		e.logger.Debug().Str("type", string(msg.MessageType())).Msg("channel closed, broadcast skipped")
	}
}

func (e *editor) UpdateItems(ctx context.Context, drawerID string, updates []models.SubCompartmentUpdated) error {
	if len(updates) == 0 {
		return nil
	}

	mutations := make([]models.Mutation, 0, len(updates))
	for i := range updates {
		updates[i].DrawerID = drawerID
		mutation, err := models.MutationFromMessage(updates[i])
		if err != nil {
			return err
		}
		if err = e.validator.Validate(ctx, mutation); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEdit, err)
		}
		mutations = append(mutations, mutation)
	}
	for i := range updates {
		if err := e.state.Apply(updates[i], inventory.OriginLocal); err != nil {
			return fmt.Errorf("apply local edit: %w", err)
		}
	}

	if e.channel.Room() == "" {
		return nil
	}

	live := e.channel.Connected()
	for _, m := range mutations {
		if _, pending := e.queue.PendingFor(m.Key()); pending {
			live = false
			break
		}
	}

	if live {
		err := e.dispatcher.DispatchBatch(ctx, drawerID, updates, now())
		switch {
		case err == nil:
			for _, update := range updates {
				e.broadcast(update, inventory.OriginLocal)
			}
			return nil
		case !adapter.IsRetryable(err):
			return err
		}
		e.logger.Warn().Err(err).Str("drawer_id", drawerID).Msg("authority unreachable, queueing batch")
	}

	var errs []error
	for _, m := range mutations {
		errs = append(errs, e.enqueue(ctx, m))
	}
	return errors.Join(errs...)
}

func (e *editor) SetDividerCount(ctx context.Context, drawerID, compartmentID string, count int, orientation string) error {
	return e.structural(func() (models.SyncMessage, error) {
		return e.dispatcher.SetDividerCount(ctx, drawerID, compartmentID, count, orientation)
	})
}

func (e *editor) MergeCompartments(ctx context.Context, drawerID string, compartmentIDs []string) error {
	return e.structural(func() (models.SyncMessage, error) {
		return e.dispatcher.MergeCompartments(ctx, drawerID, compartmentIDs)
	})
}

func (e *editor) SplitCompartment(ctx context.Context, drawerID, compartmentID string) error {
	return e.structural(func() (models.SyncMessage, error) {
		return e.dispatcher.SplitCompartment(ctx, drawerID, compartmentID)
	})
}

func (e *editor) ResizeDrawer(ctx context.Context, drawerID string, rows, cols int) error {
	if rows < 1 || cols < 1 {
		return inventory.ErrInvalidGrid
	}
	return e.structural(func() (models.SyncMessage, error) {
		return e.dispatcher.ResizeDrawer(ctx, drawerID, rows, cols)
	})
}

// structural runs a structural edit against the authority and applies the
// authoritative result it returns.
func (e *editor) structural(call func() (models.SyncMessage, error)) error {
	if !e.channel.Connected() {
		return ErrStructuralOffline
	}

	msg, err := call()
	if err != nil {
		e.logger.Err(err).Msg("structural edit failed")
		return err
	}

	if err = e.state.Apply(msg, inventory.OriginLocal); err != nil {
		return fmt.Errorf("apply %s: %w", msg.MessageType(), err)
	}
	e.broadcast(msg, inventory.OriginLocal)
	return nil
}

// leafMutation returns the queueable form of msg.
func leafMutation(msg models.SyncMessage) (models.Mutation, error) {
	if msg == nil {
		return models.Mutation{}, ErrNotLeafMessage
	}
	if msg.MessageType().IsStructural() {
		return models.Mutation{}, fmt.Errorf("%w: %s needs the structural endpoints", ErrNotLeafMessage, msg.MessageType())
	}

	mutation, err := models.MutationFromMessage(msg)
	if err != nil {
		return models.Mutation{}, fmt.Errorf("%w: %w", ErrNotLeafMessage, err)
	}
	return mutation, nil
}
