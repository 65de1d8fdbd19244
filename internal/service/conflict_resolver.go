// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/metrics"
	"github.com/MKhiriev/drawer-sync/internal/store"
	"github.com/MKhiriev/drawer-sync/internal/utils"
	"github.com/MKhiriev/drawer-sync/models"
)

// Choice is the user's pick for a conflict.
type Choice string

const (
	// ChoiceLocal re-issues the locally intended version.
	ChoiceLocal Choice = "local"
	// ChoiceRemote keeps the remote version, which is already applied.
	ChoiceRemote Choice = "remote"
)

// Detection is the outcome of comparing a queued operation with a remote
// write to the same entity.
type Detection int

const (
	// DetectionNone means the writes do not touch the same fields; the
	// queued operation stays.
	DetectionNone Detection = iota
	// DetectionRedundant means the remote write already has the local
	// effect; the queued operation is dropped.
	DetectionRedundant
	// DetectionConflict means the writes disagree; a Conflict is recorded.
	DetectionConflict
)

func (d Detection) String() string {
	switch d {
	case DetectionRedundant:
		return "redundant"
	case DetectionConflict:
		return "conflict"
	default:
		return "none"
	}
}

type conflictResolver struct {
	repo     store.ConflictRepository
	reissuer Reissuer
	state    InventoryState
	ids      *utils.UUIDGenerator
	metrics  *metrics.Metrics
	now      func() time.Time
	logger   *logger.Logger

	mu        sync.Mutex
	conflicts []models.Conflict

	observersMu sync.Mutex
	observers   []func(*models.Conflict, []models.Conflict)
}

// NewConflictResolver creates a ConflictResolver. reissuer writes the local
// version when the user keeps it.
func NewConflictResolver(repo store.ConflictRepository, reissuer Reissuer, state InventoryState, m *metrics.Metrics, log *logger.Logger) ConflictResolver {
	return &conflictResolver{
		repo:     repo,
		reissuer: reissuer,
		state:    state,
		ids:      utils.NewUUIDGenerator(),
		metrics:  m,
		now:      time.Now,
		logger:   log.WithComponent("conflicts"),
	}
}

func (r *conflictResolver) Load(ctx context.Context) error {
	conflicts, err := r.repo.ListConflicts(ctx)
	if err != nil {
		return fmt.Errorf("load conflicts: %w", err)
	}

	r.mu.Lock()
	r.conflicts = conflicts
	r.metrics.OpenConflicts(len(r.conflicts))
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *conflictResolver) Detect(ctx context.Context, op models.PendingOperation, remote models.Mutation) (Detection, error) {
	detection := compare(op.Mutation, remote)
	r.logger.Debug().
		Str("entity", op.Mutation.Key().String()).
		Stringer("detection", detection).
		Msg("queued operation compared with remote write")

	if detection != DetectionConflict {
		return detection, nil
	}
	if err := r.Raise(ctx, op, remote); err != nil {
		return DetectionNone, err
	}
	return DetectionConflict, nil
}

func (r *conflictResolver) Raise(ctx context.Context, op models.PendingOperation, remote models.Mutation) error {
	local := op.Mutation
	name := r.state.Name(local.EntityKind, local.EntityID, local.Path)
	if name == "" {
		name = local.EntityID
	}

	conflict := models.Conflict{
		ID:              r.ids.Generate(),
		EntityKind:      local.EntityKind,
		EntityID:        local.EntityID,
		Path:            local.Path,
		Name:            name,
		LocalOperation:  local.Operation,
		Local:           local.Fields.Clone(),
		RemoteOperation: remote.Operation,
		Remote:          remote.Fields.Clone(),
		CreatedAt:       r.now().UTC(),
	}

	if err := r.repo.SaveConflict(ctx, conflict); err != nil {
		r.logger.Err(err).Str("entity", local.Key().String()).Msg("error persisting conflict")
		return fmt.Errorf("save conflict: %w", err)
	}

	r.mu.Lock()
	r.conflicts = append(r.conflicts, conflict)
	r.metrics.OpenConflicts(len(r.conflicts))
	r.mu.Unlock()
	r.metrics.ConflictCreated()

	r.logger.Info().
		Str("conflict_id", conflict.ID).
		Str("entity", local.Key().String()).
		Msg("conflict recorded")

	r.notify()
	return nil
}

func (r *conflictResolver) Resolve(ctx context.Context, id string, choice Choice) error {
	if choice != ChoiceLocal && choice != ChoiceRemote {
		return fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}

	conflict, ok := r.find(id)
	if !ok {
		return ErrConflictNotFound
	}

	if choice == ChoiceLocal {
		if err := r.reissuer.Reissue(ctx, conflict.LocalMutation()); err != nil {
			r.logger.Err(err).Str("conflict_id", id).Msg("error re-issuing local version")
			return fmt.Errorf("re-issue local version: %w", err)
		}
	}

	r.logger.Info().Str("conflict_id", id).Str("choice", string(choice)).Msg("conflict resolved")
	return r.remove(ctx, id)
}

func (r *conflictResolver) Dismiss(ctx context.Context, id string) error {
	if _, ok := r.find(id); !ok {
		return ErrConflictNotFound
	}

	r.logger.Info().Str("conflict_id", id).Msg("conflict dismissed")
	return r.remove(ctx, id)
}

func (r *conflictResolver) remove(ctx context.Context, id string) error {
	err := r.repo.DeleteConflict(ctx, id)
	if err != nil && !errors.Is(err, store.ErrConflictNotFound) {
		return fmt.Errorf("delete conflict: %w", err)
	}

	r.mu.Lock()
	r.conflicts = slices.DeleteFunc(r.conflicts, func(c models.Conflict) bool {
		return c.ID == id
	})
	r.metrics.OpenConflicts(len(r.conflicts))
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *conflictResolver) find(id string) (models.Conflict, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conflicts {
		if c.ID == id {
			return c, true
		}
	}
	return models.Conflict{}, false
}

func (r *conflictResolver) Active() *models.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked()
}

func (r *conflictResolver) activeLocked() *models.Conflict {
	if len(r.conflicts) == 0 {
		return nil
	}
	active := r.conflicts[0]
	return &active
}

func (r *conflictResolver) Backlog() []models.Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backlogLocked()
}

func (r *conflictResolver) backlogLocked() []models.Conflict {
	if len(r.conflicts) < 2 {
		return nil
	}
	return slices.Clone(r.conflicts[1:])
}

func (r *conflictResolver) OnChange(fn func(active *models.Conflict, backlog []models.Conflict)) {
	r.observersMu.Lock()
	defer r.observersMu.Unlock()
	r.observers = append(r.observers, fn)
}

func (r *conflictResolver) notify() {
	r.mu.Lock()
	active, backlog := r.activeLocked(), r.backlogLocked()
	r.mu.Unlock()

	r.observersMu.Lock()
	observers := slices.Clone(r.observers)
	r.observersMu.Unlock()

	for _, fn := range observers {
		r.safeCall(func() { fn(active, backlog) })
	}
}

func (r *conflictResolver) safeCall(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Interface("panic", rec).Msg("conflict observer panicked")
		}
	}()
	fn()
}

// compare diffs what a queued operation intended to write with a remote
// write to the same entity.
func compare(local, remote models.Mutation) Detection {
	localDelete := local.Operation == models.OperationDelete
	remoteDelete := remote.Operation == models.OperationDelete

	switch {
	case localDelete && remoteDelete:
		return DetectionRedundant
	case localDelete || remoteDelete:
		return DetectionConflict
	}

	localFields := local.Fields.Normalize()
	remoteFields := remote.Fields.Normalize()

	overlap := 0
	for key, value := range localFields {
		remoteValue, ok := remoteFields[key]
		if !ok {
			continue
		}
		overlap++
		if !(models.Fields{key: value}).Equal(models.Fields{key: remoteValue}) {
			return DetectionConflict
		}
	}

	switch {
	case overlap == 0:
		return DetectionNone
	case overlap == len(localFields):
		return DetectionRedundant
	default:
		return DetectionNone
	}
}
