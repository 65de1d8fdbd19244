// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/app"
	"github.com/MKhiriev/drawer-sync/internal/config"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/metrics"
	"github.com/MKhiriev/drawer-sync/internal/store"
	"github.com/MKhiriev/drawer-sync/internal/utils"
	"github.com/MKhiriev/drawer-sync/models"
)

// Replay outcomes reported to metrics.
const (
	replayOK        = "ok"
	replayFailed    = "failed"
	replayConflict  = "conflict"
	replayRedundant = "redundant"
)

type offlineQueue struct {
	repo       store.PendingOperationRepository
	dispatcher MutationDispatcher
	channel    RoomChannel
	state      InventoryState
	resolver   ConflictResolver
	ids        *utils.UUIDGenerator
	cfg        config.Sync
	metrics    *metrics.Metrics
	now        func() time.Time
	logger     *logger.Logger

	draining atomic.Bool

	mu         sync.Mutex
	ops        map[models.EntityKey]models.PendingOperation
	remoteSeen map[models.EntityKey]models.Mutation
	online     bool
	syncErrors []string
}

// NewOfflineQueue creates an empty, offline OfflineQueue. Call Load to read
// operations that survived a restart.
func NewOfflineQueue(
	repo store.PendingOperationRepository,
	dispatcher MutationDispatcher,
	channel RoomChannel,
	state InventoryState,
	resolver ConflictResolver,
	cfg config.Sync,
	m *metrics.Metrics,
	log *logger.Logger,
) OfflineQueue {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &offlineQueue{
		repo:       repo,
		dispatcher: dispatcher,
		channel:    channel,
		state:      state,
		resolver:   resolver,
		ids:        utils.NewUUIDGenerator(),
		cfg:        cfg,
		metrics:    m,
		now:        time.Now,
		logger:     log.WithComponent("queue"),
		ops:        make(map[models.EntityKey]models.PendingOperation),
		remoteSeen: make(map[models.EntityKey]models.Mutation),
	}
}

func (q *offlineQueue) Load(ctx context.Context) error {
	ops, err := q.repo.ListPendingOperations(ctx)
	if err != nil {
		return fmt.Errorf("load pending operations: %w", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, op := range ops {
		q.ops[op.Mutation.Key()] = op
	}
	q.metrics.PendingOperations(len(q.ops))

	q.logger.Info().Int("count", len(ops)).Msg("pending operations loaded")
	return nil
}

func (q *offlineQueue) AddPendingOperation(ctx context.Context, mutation models.Mutation) error {
	if mutation.EntityID == "" {
		return fmt.Errorf("%w: missing entity id", ErrNotLeafMessage)
	}
	if _, err := mutation.Message(); err != nil {
		return fmt.Errorf("%w: %w", ErrNotLeafMessage, err)
	}

	key := mutation.Key()

	q.mu.Lock()
	defer q.mu.Unlock()

	previous, exists := q.ops[key]
	op := previous
	if exists {
		op.Mutation = mutation
		op.CreatedAt = q.now()
		op.RetryCount = 0
		op.Revision++
	} else {
		op = models.PendingOperation{
			ID:        q.ids.Generate(),
			CreatedAt: q.now(),
			Mutation:  mutation,
		}
	}

	if err := q.repo.SavePendingOperation(ctx, op); err != nil {
		q.logger.Err(err).Str("entity", key.String()).Msg("error persisting pending operation")
		return fmt.Errorf("save pending operation: %w", err)
	}

	q.ops[key] = op
	if !exists {
		delete(q.remoteSeen, key)
	}
	q.metrics.PendingOperations(len(q.ops))

	q.logger.Debug().
		Str("entity", key.String()).
		Str("operation", string(mutation.Operation)).
		Bool("coalesced", exists).
		Msg("operation queued")
	return nil
}

func (q *offlineQueue) SetOnline(ctx context.Context, online bool) error {
	q.mu.Lock()
	was := q.online
	q.online = online
	q.mu.Unlock()

	if !online || was {
		return nil
	}

	q.logger.Info().Msg("back online, waiting for room channel")
	if err := q.channel.WaitConnected(ctx, q.cfg.OnlineWaitTimeout); err != nil {
		q.logger.Warn().Err(err).Msg("room channel did not connect, drain postponed")
		return fmt.Errorf("wait for room channel: %w", err)
	}

	err := q.SyncPendingOperations(ctx)
	if errors.Is(err, ErrSyncInProgress) {
		return nil
	}
	return err
}

func (q *offlineQueue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

func (q *offlineQueue) SyncPendingOperations(ctx context.Context) error {
	if !q.draining.CompareAndSwap(false, true) {
		return ErrSyncInProgress
	}
	defer q.draining.Store(false)

	ops := q.Pending()
	if len(ops) == 0 {
		return nil
	}

	q.logger.Info().Int("count", len(ops)).Msg("syncing pending operations")
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return err
		}

		// The operation may have been coalesced or discarded meanwhile.
		current, ok := q.PendingFor(op.Mutation.Key())
		if !ok {
			continue
		}
		q.replay(ctx, current)
	}

	return nil
}

func (q *offlineQueue) replay(ctx context.Context, op models.PendingOperation) {
	log := q.logger.With().Str("op_id", op.ID).Str("entity", op.Mutation.Key().String()).Logger()

	if remote, ok := q.observed(op.Mutation.Key()); ok {
		detection, err := q.resolver.Detect(ctx, op, remote)
		if err != nil {
			log.Err(err).Msg("error comparing with remote write")
			q.fail(ctx, op, err)
			return
		}
		if detection != DetectionNone {
			q.settle(ctx, op, detection)
			return
		}
	}

	createdAt := op.CreatedAt
	err := q.dispatcher.Dispatch(ctx, op.Mutation, &createdAt)
	switch {
	case err == nil:
		q.finish(ctx, op)
		q.broadcast(op.Mutation)
		q.metrics.Replay(replayOK)
		log.Debug().Msg("operation replayed")

	case errors.Is(err, ErrEntityGone):
		remote := models.Mutation{
			Operation:  models.OperationDelete,
			EntityKind: op.Mutation.EntityKind,
			EntityID:   op.Mutation.EntityID,
			Path:       op.Mutation.Path,
		}
		detection, detectErr := q.resolver.Detect(ctx, op, remote)
		if detectErr != nil {
			q.fail(ctx, op, detectErr)
			return
		}
		q.settle(ctx, op, detection)

	case errors.Is(err, ErrStaleWrite):
		remote := models.Mutation{
			Operation:  models.OperationUpdate,
			EntityKind: op.Mutation.EntityKind,
			EntityID:   op.Mutation.EntityID,
			Path:       op.Mutation.Path,
		}
		if raiseErr := q.resolver.Raise(ctx, op, remote); raiseErr != nil {
			q.fail(ctx, op, raiseErr)
			return
		}
		q.settle(ctx, op, DetectionConflict)

	default:
		log.Warn().Err(err).Int("retry", op.RetryCount+1).Msg("operation replay failed")
		q.fail(ctx, op, err)
	}
}

// settle removes an operation that lost to, or duplicated, a remote write.
// DetectionNone leaves it queued.
func (q *offlineQueue) settle(ctx context.Context, op models.PendingOperation, detection Detection) {
	switch detection {
	case DetectionConflict:
		q.metrics.Replay(replayConflict)
	case DetectionRedundant:
		q.metrics.Replay(replayRedundant)
	default:
		return
	}
	q.finish(ctx, op)
}

// fail counts a failed replay and drops the operation once the retry
// ceiling is reached.
func (q *offlineQueue) fail(ctx context.Context, op models.PendingOperation, cause error) {
	q.metrics.Replay(replayFailed)
	op.RetryCount++

	if op.RetryCount >= q.cfg.MaxRetries {
		q.finish(ctx, op)
		q.recordSyncError(op, cause)
		q.metrics.DroppedOperation()
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	current, ok := q.ops[op.Mutation.Key()]
	if !ok || !sameRevision(current, op) {
		// Replaced by a newer edit while the replay was in flight.
		return
	}
	if err := q.repo.SavePendingOperation(ctx, op); err != nil {
		q.logger.Err(err).Str("op_id", op.ID).Msg("error persisting retry count")
	}
	q.ops[op.Mutation.Key()] = op
}

// finish removes op unless a newer edit replaced it meanwhile.
func (q *offlineQueue) finish(ctx context.Context, op models.PendingOperation) {
	q.mu.Lock()
	defer q.mu.Unlock()

	key := op.Mutation.Key()
	current, ok := q.ops[key]
	if !ok || !sameRevision(current, op) {
		return
	}
	q.removeLocked(ctx, current)
}

// sameRevision reports whether no edit was coalesced into current after op
// was taken from the queue.
func sameRevision(current, op models.PendingOperation) bool {
	return current.ID == op.ID && current.Revision == op.Revision
}

func (q *offlineQueue) removeLocked(ctx context.Context, op models.PendingOperation) {
	err := q.repo.DeletePendingOperation(ctx, op.ID)
	if err != nil && !errors.Is(err, store.ErrPendingOperationNotFound) {
		q.logger.Err(err).Str("op_id", op.ID).Msg("error deleting pending operation")
	}
	key := op.Mutation.Key()
	delete(q.ops, key)
	delete(q.remoteSeen, key)
	q.metrics.PendingOperations(len(q.ops))
}

func (q *offlineQueue) recordSyncError(op models.PendingOperation, cause error) {
	m := op.Mutation
	label := q.state.Name(m.EntityKind, m.EntityID, m.Path)
	if label == "" {
		label = m.EntityID
	}
	kind := strings.ReplaceAll(string(m.EntityKind), "_", " ")
	msg := fmt.Sprintf(app.MsgSyncFailed, kind, label, op.RetryCount, describeError(cause))

	q.mu.Lock()
	q.syncErrors = append(q.syncErrors, msg)
	q.mu.Unlock()

	q.logger.Error().Err(cause).Str("op_id", op.ID).Str("entity", m.Key().String()).Msg("operation dropped after exhausting retries")
}

func (q *offlineQueue) broadcast(m models.Mutation) {
	msg, err := m.Message()
	if err != nil {
		return
	}
	q.channel.Send(msg)
}

func (q *offlineQueue) observed(key models.EntityKey) (models.Mutation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	remote, ok := q.remoteSeen[key]
	return remote, ok
}

func (q *offlineQueue) ObserveRemote(remote models.Mutation) {
	key := remote.Key()

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, pending := q.ops[key]; !pending {
		return
	}

	seen, ok := q.remoteSeen[key]
	if !ok || remote.Operation != models.OperationUpdate || seen.Operation == models.OperationDelete {
		q.remoteSeen[key] = remote
		return
	}
	seen.Fields = seen.Fields.Merge(remote.Fields)
	q.remoteSeen[key] = seen
}

func (q *offlineQueue) PendingFor(key models.EntityKey) (models.PendingOperation, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	op, ok := q.ops[key]
	return op, ok
}

func (q *offlineQueue) Pending() []models.PendingOperation {
	q.mu.Lock()
	out := make([]models.PendingOperation, 0, len(q.ops))
	for _, op := range q.ops {
		out = append(out, op)
	}
	q.mu.Unlock()

	slices.SortFunc(out, func(a, b models.PendingOperation) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (q *offlineQueue) Discard(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, op := range q.ops {
		if op.ID == id {
			q.removeLocked(ctx, op)
			return nil
		}
	}
	return store.ErrPendingOperationNotFound
}

func (q *offlineQueue) SyncErrors() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.syncErrors)
}

func (q *offlineQueue) ClearSyncErrors() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.syncErrors = nil
}
