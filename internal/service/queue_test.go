// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/internal/inventory"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/models"
)

type queueFixture struct {
	queue      *offlineQueue
	repo       *memPendingRepo
	conflicts  *memConflictRepo
	resolver   ConflictResolver
	reissuer   *spyReissuer
	dispatcher *fakeDispatcher
	channel    *fakeChannel
	state      *inventory.State
}

func newQueueFixture(t *testing.T) *queueFixture {
	t.Helper()

	f := &queueFixture{
		repo:       newMemPendingRepo(),
		conflicts:  &memConflictRepo{},
		reissuer:   &spyReissuer{},
		dispatcher: newFakeDispatcher(),
		channel:    newFakeChannel(true),
		state:      inventory.NewState(logger.Nop()),
	}
	f.resolver = NewConflictResolver(f.conflicts, f.reissuer, f.state, nil, logger.Nop())

	cfg := config.Sync{MaxRetries: 3, OnlineWaitTimeout: time.Second}
	f.queue = NewOfflineQueue(f.repo, f.dispatcher, f.channel, f.state, f.resolver, cfg, nil, logger.Nop()).(*offlineQueue)

	// Strictly increasing clock so replay order is deterministic.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var (
		mu   sync.Mutex
		tick int
	)
	f.queue.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	require.NoError(t, f.state.Apply(models.DrawerCreated{Drawer: models.Drawer{ID: "d1", Name: "Screws", Rows: 1, Cols: 1}}, inventory.OriginRemote))
	return f
}

func drawerUpdate(id string, fields models.Fields) models.Mutation {
	return models.Mutation{
		Operation:  models.OperationUpdate,
		EntityKind: models.EntityDrawer,
		EntityID:   id,
		Fields:     fields,
	}
}

func categoryUpdate(id string, fields models.Fields) models.Mutation {
	return models.Mutation{
		Operation:  models.OperationUpdate,
		EntityKind: models.EntityCategory,
		EntityID:   id,
		Fields:     fields,
	}
}

var errUnreachable = fmt.Errorf("%w: %w", ErrAuthorityDown, adapter.ErrServiceUnavailable)

// ── AddPendingOperation ──────────────────────────────────────────────────────

func TestAddPendingOperation_CoalescesPerEntity(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	names := []string{"a", "b", "c", "d", "e"}
	for _, name := range names {
		require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": name})))
	}

	pending := f.queue.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, models.Fields{"name": "e"}, pending[0].Mutation.Fields)
	assert.Equal(t, 1, f.repo.Len())
}

func TestAddPendingOperation_KeepsIDAndResetsRetries(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "a"})))
	first, _ := f.queue.PendingFor(models.EntityKey{Kind: models.EntityDrawer, ID: "d1"})

	f.dispatcher.failWith("d1", errUnreachable)
	require.NoError(t, f.queue.SyncPendingOperations(ctx))
	failed, _ := f.queue.PendingFor(first.Mutation.Key())
	require.Equal(t, 1, failed.RetryCount)

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "b"})))
	second, ok := f.queue.PendingFor(first.Mutation.Key())
	require.True(t, ok)

	assert.Equal(t, first.ID, second.ID)
	assert.Zero(t, second.RetryCount)
	assert.True(t, second.CreatedAt.After(first.CreatedAt))
}

func TestAddPendingOperation_RejectsStructuralAndEmpty(t *testing.T) {
	f := newQueueFixture(t)

	err := f.queue.AddPendingOperation(context.Background(), models.Mutation{Operation: models.OperationDelete, EntityKind: models.EntityCompartment, EntityID: "c1"})
	assert.ErrorIs(t, err, ErrNotLeafMessage)

	err = f.queue.AddPendingOperation(context.Background(), drawerUpdate("", nil))
	assert.ErrorIs(t, err, ErrNotLeafMessage)
	assert.Empty(t, f.queue.Pending())
}

func TestAddPendingOperation_PersistFailureLeavesQueueUnchanged(t *testing.T) {
	f := newQueueFixture(t)
	f.repo.saveErr = errors.New("disk full")

	err := f.queue.AddPendingOperation(context.Background(), drawerUpdate("d1", models.Fields{"name": "a"}))

	require.Error(t, err)
	assert.Empty(t, f.queue.Pending())
}

// ── SyncPendingOperations ────────────────────────────────────────────────────

func TestSyncPendingOperations_EmptyQueueIsNoop(t *testing.T) {
	f := newQueueFixture(t)

	require.NoError(t, f.queue.SyncPendingOperations(context.Background()))
	assert.Empty(t, f.dispatcher.Calls())
}

func TestSyncPendingOperations_IndependentOpsDrainWithoutConflicts(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	const n = 8
	for i := range n {
		require.NoError(t, f.queue.AddPendingOperation(ctx, categoryUpdate(fmt.Sprintf("cat-%d", i), models.Fields{"name": "x"})))
	}

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	assert.Empty(t, f.queue.Pending())
	assert.Zero(t, f.repo.Len())
	assert.Nil(t, f.resolver.Active())
	assert.Len(t, f.dispatcher.Calls(), n)
	assert.Len(t, f.channel.Sent(), n, "replayed edits are relayed to the room")
}

func TestSyncPendingOperations_OldestFirstWithCreatedAtHint(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, f.queue.AddPendingOperation(ctx, categoryUpdate(id, models.Fields{"name": id})))
	}

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	calls := f.dispatcher.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "c", calls[0].Mutation.EntityID)
	assert.Equal(t, "a", calls[1].Mutation.EntityID)
	assert.Equal(t, "b", calls[2].Mutation.EntityID)
	for _, call := range calls {
		require.NotNil(t, call.UpdatedAt)
	}
	assert.True(t, calls[0].UpdatedAt.Before(*calls[2].UpdatedAt))
}

func TestSyncPendingOperations_DropsAfterThreeFailures(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))
	f.dispatcher.failWith("d1", errUnreachable, errUnreachable, errUnreachable)

	for range 2 {
		require.NoError(t, f.queue.SyncPendingOperations(ctx))
		assert.Len(t, f.queue.Pending(), 1)
		assert.Empty(t, f.queue.SyncErrors())
	}

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	assert.Empty(t, f.queue.Pending())
	assert.Zero(t, f.repo.Len())
	errs := f.queue.SyncErrors()
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Screws")
	assert.Contains(t, errs[0], "3 attempts")

	f.queue.ClearSyncErrors()
	assert.Empty(t, f.queue.SyncErrors())
}

func TestSyncPendingOperations_TwoFailuresThenSuccess(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))
	f.dispatcher.failWith("d1", errUnreachable, errUnreachable)

	for range 3 {
		require.NoError(t, f.queue.SyncPendingOperations(ctx))
	}

	assert.Empty(t, f.queue.Pending())
	assert.Empty(t, f.queue.SyncErrors())
	assert.Len(t, f.dispatcher.Calls(), 3)
}

func TestSyncPendingOperations_RefusesConcurrentDrain(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()
	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))

	entered := make(chan struct{})
	release := make(chan struct{})
	f.dispatcher.onCall = func(models.Mutation) {
		close(entered)
		<-release
	}

	done := make(chan error, 1)
	go func() { done <- f.queue.SyncPendingOperations(ctx) }()

	<-entered
	assert.ErrorIs(t, f.queue.SyncPendingOperations(ctx), ErrSyncInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, f.dispatcher.Calls(), 1)
}

func TestSyncPendingOperations_EditDuringReplayIsKept(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()
	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "first"})))

	f.dispatcher.onCall = func(m models.Mutation) {
		if m.Fields["name"] == "first" {
			require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "second"})))
		}
	}

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	pending := f.queue.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "second", pending[0].Mutation.Fields["name"])
}

func TestSyncPendingOperations_EditWithEqualTimestampIsKept(t *testing.T) {
	for _, tc := range []struct {
		name string
		errs []error
	}{
		{name: "replay succeeds"},
		{name: "replay fails", errs: []error{errUnreachable}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newQueueFixture(t)
			ctx := context.Background()
			frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			f.queue.now = func() time.Time { return frozen }

			require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "first"})))
			f.dispatcher.failWith("d1", tc.errs...)
			f.dispatcher.onCall = func(m models.Mutation) {
				if m.Fields["name"] == "first" {
					require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "second"})))
				}
			}

			require.NoError(t, f.queue.SyncPendingOperations(ctx))

			pending := f.queue.Pending()
			require.Len(t, pending, 1)
			assert.Equal(t, "second", pending[0].Mutation.Fields["name"])
			assert.Equal(t, frozen, pending[0].CreatedAt)
			assert.Zero(t, pending[0].RetryCount)
			assert.Equal(t, 1, f.repo.Len())
		})
	}
}

func TestSyncPendingOperations_ConflictingRemoteWrite(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Local"})))
	f.queue.ObserveRemote(drawerUpdate("d1", models.Fields{"name": "Remote"}))

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	assert.Empty(t, f.dispatcher.Calls(), "a conflicting operation is not blindly replayed")
	assert.Empty(t, f.queue.Pending())
	active := f.resolver.Active()
	require.NotNil(t, active)
	assert.Equal(t, models.Fields{"name": "Local"}, active.Local)
	assert.Equal(t, models.Fields{"name": "Remote"}, active.Remote)
}

func TestSyncPendingOperations_IdenticalRemoteWriteIsRedundant(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Same"})))
	f.queue.ObserveRemote(drawerUpdate("d1", models.Fields{"name": "Same", "rows": 1}))

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	assert.Empty(t, f.dispatcher.Calls())
	assert.Empty(t, f.queue.Pending())
	assert.Nil(t, f.resolver.Active())
}

func TestSyncPendingOperations_DisjointRemoteWriteStillReplays(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Local"})))
	f.queue.ObserveRemote(drawerUpdate("d1", models.Fields{"rows": 4}))

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	assert.Len(t, f.dispatcher.Calls(), 1)
	assert.Empty(t, f.queue.Pending())
	assert.Nil(t, f.resolver.Active())
}

func TestSyncPendingOperations_EntityGoneBecomesConflict(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Local"})))
	f.dispatcher.failWith("d1", fmt.Errorf("%w: %w", ErrEntityGone, adapter.ErrNotFound))

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	assert.Empty(t, f.queue.Pending())
	active := f.resolver.Active()
	require.NotNil(t, active)
	assert.Equal(t, models.OperationDelete, active.RemoteOperation)
	assert.Empty(t, f.queue.SyncErrors())
}

func TestSyncPendingOperations_StaleWriteBecomesConflict(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Local"})))
	f.dispatcher.failWith("d1", fmt.Errorf("%w: %w", ErrStaleWrite, adapter.ErrConflict))

	require.NoError(t, f.queue.SyncPendingOperations(ctx))

	assert.Empty(t, f.queue.Pending())
	require.NotNil(t, f.resolver.Active())
	assert.Equal(t, models.OperationUpdate, f.resolver.Active().RemoteOperation)
}

// ── SetOnline ────────────────────────────────────────────────────────────────

func TestSetOnline_DrainsOnTransitionOnly(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()
	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))

	require.NoError(t, f.queue.SetOnline(ctx, true))
	assert.True(t, f.queue.Online())
	assert.Empty(t, f.queue.Pending())
	assert.Equal(t, 1, f.channel.waits)

	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Nuts"})))
	require.NoError(t, f.queue.SetOnline(ctx, true))
	assert.Len(t, f.queue.Pending(), 1, "already online, no new drain")
	assert.Equal(t, 1, f.channel.waits)
}

func TestSetOnline_ChannelNeverConnects(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()
	f.channel.waitErr = errors.New("timed out")
	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))

	err := f.queue.SetOnline(ctx, true)

	require.Error(t, err)
	assert.Len(t, f.queue.Pending(), 1)
	assert.Empty(t, f.dispatcher.Calls())
}

func TestSetOnline_OfflineDoesNotDrain(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()
	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))

	require.NoError(t, f.queue.SetOnline(ctx, false))

	assert.False(t, f.queue.Online())
	assert.Zero(t, f.channel.waits)
	assert.Len(t, f.queue.Pending(), 1)
}

// ── durability ───────────────────────────────────────────────────────────────

func TestLoad_RestoresQueue(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()
	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))
	require.NoError(t, f.queue.AddPendingOperation(ctx, categoryUpdate("cat", models.Fields{"name": "Metal"})))

	restarted := NewOfflineQueue(f.repo, f.dispatcher, f.channel, f.state, f.resolver, config.Sync{}, nil, logger.Nop())
	require.NoError(t, restarted.Load(ctx))

	pending := restarted.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "d1", pending[0].Mutation.EntityID)
	assert.Equal(t, "cat", pending[1].Mutation.EntityID)
}

func TestDiscard(t *testing.T) {
	f := newQueueFixture(t)
	ctx := context.Background()
	require.NoError(t, f.queue.AddPendingOperation(ctx, drawerUpdate("d1", models.Fields{"name": "Bolts"})))
	op := f.queue.Pending()[0]

	require.NoError(t, f.queue.Discard(ctx, op.ID))
	assert.Empty(t, f.queue.Pending())
	assert.Zero(t, f.repo.Len())

	assert.Error(t, f.queue.Discard(ctx, op.ID))
}

func TestObserveRemote_IgnoredWithoutPendingOperation(t *testing.T) {
	f := newQueueFixture(t)

	f.queue.ObserveRemote(drawerUpdate("d1", models.Fields{"name": "Remote"}))

	_, ok := f.queue.observed(models.EntityKey{Kind: models.EntityDrawer, ID: "d1"})
	assert.False(t, ok)
}
