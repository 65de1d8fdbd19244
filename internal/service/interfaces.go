// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/inventory"
	"github.com/MKhiriev/drawer-sync/models"
)

// TokenManager keeps the room token of the adapter fresh.
type TokenManager interface {
	// Token returns a token valid for at least the configured expiry buffer.
	// A missing or expiring token is refreshed first; concurrent callers
	// share one in-flight refresh request. The refreshed token is installed
	// on the adapter before Token returns.
	Token(ctx context.Context) (string, error)

	// Invalidate forgets the current token so the next Token call refreshes.
	Invalidate()
}

// MutationDispatcher is the single entry point for sending mutations to the
// authority. Live edits, offline replays and conflict re-issues all go
// through it.
type MutationDispatcher interface {
	// Dispatch sends one leaf mutation. updatedAt is the hint the authority
	// uses for its own conflict bookkeeping; nil makes the write
	// authoritative.
	Dispatch(ctx context.Context, mutation models.Mutation, updatedAt *time.Time) error

	// DispatchBatch sends several item edits of one drawer in one request.
	DispatchBatch(ctx context.Context, drawerID string, updates []models.SubCompartmentUpdated, updatedAt *time.Time) error

	// SetDividerCount, MergeCompartments, SplitCompartment and ResizeDrawer
	// are structural: they return the authoritative message to apply and
	// broadcast.
	SetDividerCount(ctx context.Context, drawerID, compartmentID string, count int, orientation string) (models.DividersChanged, error)
	MergeCompartments(ctx context.Context, drawerID string, compartmentIDs []string) (models.CompartmentsMerged, error)
	SplitCompartment(ctx context.Context, drawerID, compartmentID string) (models.CompartmentSplit, error)
	ResizeDrawer(ctx context.Context, drawerID string, rows, cols int) (models.DrawerResized, error)
}

// RoomChannel is the part of the room channel the services use.
type RoomChannel interface {
	Send(msg models.SyncMessage) bool
	Connected() bool
	// Room returns "" while no room session exists.
	Room() string
	WaitConnected(ctx context.Context, timeout time.Duration) error
}

// InventoryState is the local inventory the services apply messages to.
type InventoryState interface {
	Apply(msg models.SyncMessage, origin inventory.Origin) error
	Name(kind models.EntityKind, id string, path models.EntityPath) string
}

// OfflineQueue holds mutations made while the room channel was down and
// replays them once it is back.
type OfflineQueue interface {
	// Load reads the durable queue. It is called once at startup.
	Load(ctx context.Context) error

	// AddPendingOperation queues mutation. When an operation for the same
	// entity is already queued, its payload and timestamp are replaced in
	// place so at most one operation per entity exists.
	AddPendingOperation(ctx context.Context, mutation models.Mutation) error

	// SetOnline records connectivity. Going from offline to online waits for
	// the room channel to connect and then drains the queue.
	SetOnline(ctx context.Context, online bool) error
	Online() bool

	// SyncPendingOperations replays the queue oldest-first. It returns
	// ErrSyncInProgress when a drain is already running.
	SyncPendingOperations(ctx context.Context) error

	// PendingFor returns the queued operation of an entity, if any.
	PendingFor(key models.EntityKey) (models.PendingOperation, bool)
	Pending() []models.PendingOperation

	// Discard drops a queued operation without replaying it.
	Discard(ctx context.Context, id string) error

	// ObserveRemote remembers a remote write to an entity that has a queued
	// operation, so the write is compared again at replay time.
	ObserveRemote(remote models.Mutation)

	// SyncErrors returns the user-visible errors of dropped operations,
	// oldest first.
	SyncErrors() []string
	ClearSyncErrors()
}

// ConflictResolver records races between queued local writes and remote
// writes and lets the user pick a winner.
type ConflictResolver interface {
	Load(ctx context.Context) error

	// Detect compares a queued operation with a remote write to the same
	// entity. On [DetectionConflict] a Conflict is recorded. The caller drops
	// the queued operation unless the result is [DetectionNone].
	Detect(ctx context.Context, op models.PendingOperation, remote models.Mutation) (Detection, error)

	// Raise records a conflict without comparing fields, for races the
	// authority reports without the competing values.
	Raise(ctx context.Context, op models.PendingOperation, remote models.Mutation) error

	// Resolve settles a conflict. ChoiceLocal re-issues the local version;
	// ChoiceRemote keeps the remote one, which is already applied.
	Resolve(ctx context.Context, id string, choice Choice) error

	// Dismiss drops a conflict; the remote version stands.
	Dismiss(ctx context.Context, id string) error

	// Active returns the conflict shown to the user, or nil.
	Active() *models.Conflict
	// Backlog returns the conflicts waiting behind the active one.
	Backlog() []models.Conflict

	// OnChange registers fn for changes of the active conflict or backlog.
	OnChange(fn func(active *models.Conflict, backlog []models.Conflict))
}

// Reissuer writes a mutation as authoritative. The conflict resolver uses it
// for the "keep local" choice.
type Reissuer interface {
	Reissue(ctx context.Context, mutation models.Mutation) error
}

// Editor is the live edit path used by the host application.
type Editor interface {
	Reissuer

	// Submit applies a leaf message optimistically and sends it to the
	// authority, or queues it while the channel is down.
	Submit(ctx context.Context, msg models.SyncMessage) error

	// UpdateItems edits several items of one drawer at once.
	UpdateItems(ctx context.Context, drawerID string, updates []models.SubCompartmentUpdated) error

	// Structural edits need server-assigned identifiers and are only
	// available while connected; offline they fail with ErrStructuralOffline.
	SetDividerCount(ctx context.Context, drawerID, compartmentID string, count int, orientation string) error
	MergeCompartments(ctx context.Context, drawerID string, compartmentIDs []string) error
	SplitCompartment(ctx context.Context, drawerID, compartmentID string) error
	ResizeDrawer(ctx context.Context, drawerID string, rows, cols int) error
}

// RemoteApplier applies inbound room messages to the local inventory.
type RemoteApplier interface {
	Apply(ctx context.Context, msg models.SyncMessage) error
}

// SyncJob periodically drains the offline queue while online.
type SyncJob interface {
	// Start launches the background goroutine; any running job is stopped
	// first. A non-positive interval defaults to 30 seconds.
	Start(ctx context.Context, interval time.Duration)

	// Stop signals the goroutine to exit and waits for it.
	Stop()
}
