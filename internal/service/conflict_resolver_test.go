// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/drawer-sync/internal/inventory"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/mock"
	"github.com/MKhiriev/drawer-sync/models"
)

func newTestResolver(t *testing.T) (*conflictResolver, *memConflictRepo, *spyReissuer) {
	t.Helper()
	repo := &memConflictRepo{}
	reissuer := &spyReissuer{}
	state := inventory.NewState(logger.Nop())
	require.NoError(t, state.Apply(models.CategoryCreated{Category: models.Category{ID: "cat", Name: "Fasteners"}}, inventory.OriginRemote))
	r := NewConflictResolver(repo, reissuer, state, nil, logger.Nop()).(*conflictResolver)
	return r, repo, reissuer
}

func pendingUpdate(id string, fields models.Fields) models.PendingOperation {
	return models.PendingOperation{ID: "op-" + id, Mutation: categoryUpdate(id, fields)}
}

func TestCompare(t *testing.T) {
	del := func(id string) models.Mutation {
		return models.Mutation{Operation: models.OperationDelete, EntityKind: models.EntityCategory, EntityID: id}
	}

	tests := []struct {
		name   string
		local  models.Mutation
		remote models.Mutation
		want   Detection
	}{
		{
			name:   "differing value",
			local:  categoryUpdate("c", models.Fields{"name": "a"}),
			remote: categoryUpdate("c", models.Fields{"name": "b"}),
			want:   DetectionConflict,
		},
		{
			name:   "same value",
			local:  categoryUpdate("c", models.Fields{"name": "a"}),
			remote: categoryUpdate("c", models.Fields{"name": "a"}),
			want:   DetectionRedundant,
		},
		{
			name:   "numbers compare by value",
			local:  categoryUpdate("c", models.Fields{"quantity": 3}),
			remote: categoryUpdate("c", models.Fields{"quantity": float64(3)}),
			want:   DetectionRedundant,
		},
		{
			name:   "disjoint fields",
			local:  categoryUpdate("c", models.Fields{"name": "a"}),
			remote: categoryUpdate("c", models.Fields{"color": "#fff"}),
			want:   DetectionNone,
		},
		{
			name:   "partial overlap, equal",
			local:  categoryUpdate("c", models.Fields{"name": "a", "color": "#000"}),
			remote: categoryUpdate("c", models.Fields{"name": "a"}),
			want:   DetectionNone,
		},
		{
			name:   "partial overlap, differing",
			local:  categoryUpdate("c", models.Fields{"name": "a", "color": "#000"}),
			remote: categoryUpdate("c", models.Fields{"color": "#fff"}),
			want:   DetectionConflict,
		},
		{
			name:   "remote delete",
			local:  categoryUpdate("c", models.Fields{"name": "a"}),
			remote: del("c"),
			want:   DetectionConflict,
		},
		{
			name:   "local delete",
			local:  del("c"),
			remote: categoryUpdate("c", models.Fields{"name": "a"}),
			want:   DetectionConflict,
		},
		{
			name:   "both delete",
			local:  del("c"),
			remote: del("c"),
			want:   DetectionRedundant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compare(tt.local, tt.remote))
		})
	}
}

func TestDetect_DifferingValuesRecordOneConflict(t *testing.T) {
	r, repo, _ := newTestResolver(t)

	detection, err := r.Detect(context.Background(), pendingUpdate("cat", models.Fields{"name": "Local"}), categoryUpdate("cat", models.Fields{"name": "Remote"}))

	require.NoError(t, err)
	assert.Equal(t, DetectionConflict, detection)
	active := r.Active()
	require.NotNil(t, active)
	assert.Equal(t, "Fasteners", active.Name)
	assert.Equal(t, models.EntityCategory, active.EntityKind)
	assert.Equal(t, models.OperationUpdate, active.LocalOperation)
	assert.Empty(t, r.Backlog())
	assert.Len(t, repo.rows, 1)
}

func TestDetect_IdenticalValuesRecordNothing(t *testing.T) {
	r, repo, _ := newTestResolver(t)

	detection, err := r.Detect(context.Background(), pendingUpdate("cat", models.Fields{"name": "Same"}), categoryUpdate("cat", models.Fields{"name": "Same"}))

	require.NoError(t, err)
	assert.Equal(t, DetectionRedundant, detection)
	assert.Nil(t, r.Active())
	assert.Empty(t, repo.rows)
}

func TestDetect_UnknownEntityFallsBackToID(t *testing.T) {
	r, _, _ := newTestResolver(t)

	_, err := r.Detect(context.Background(), pendingUpdate("ghost", models.Fields{"name": "a"}), categoryUpdate("ghost", models.Fields{"name": "b"}))

	require.NoError(t, err)
	assert.Equal(t, "ghost", r.Active().Name)
}

func TestDetect_PersistFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockConflictRepository(ctrl)
	repo.EXPECT().SaveConflict(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	r := NewConflictResolver(repo, &spyReissuer{}, inventory.NewState(logger.Nop()), nil, logger.Nop())

	_, err := r.Detect(context.Background(), pendingUpdate("cat", models.Fields{"name": "a"}), categoryUpdate("cat", models.Fields{"name": "b"}))

	require.Error(t, err)
	assert.Nil(t, r.Active())
}

func TestResolve_LocalReissuesIntendedFieldsAndPromotesNext(t *testing.T) {
	r, repo, reissuer := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Detect(ctx, pendingUpdate("cat", models.Fields{"name": "Local"}), categoryUpdate("cat", models.Fields{"name": "Remote"}))
	require.NoError(t, err)
	_, err = r.Detect(ctx, pendingUpdate("other", models.Fields{"color": "#000"}), categoryUpdate("other", models.Fields{"color": "#fff"}))
	require.NoError(t, err)

	first := r.Active()
	require.NotNil(t, first)
	require.Len(t, r.Backlog(), 1)
	second := r.Backlog()[0]

	require.NoError(t, r.Resolve(ctx, first.ID, ChoiceLocal))

	require.Len(t, reissuer.mutations, 1)
	assert.Equal(t, categoryUpdate("cat", models.Fields{"name": "Local"}), reissuer.mutations[0])
	require.NotNil(t, r.Active())
	assert.Equal(t, second.ID, r.Active().ID)
	assert.Empty(t, r.Backlog())
	assert.Len(t, repo.rows, 1)
}

func TestResolve_RemoteLeavesStateAlone(t *testing.T) {
	r, repo, reissuer := newTestResolver(t)
	ctx := context.Background()

	_, err := r.Detect(ctx, pendingUpdate("cat", models.Fields{"name": "Local"}), categoryUpdate("cat", models.Fields{"name": "Remote"}))
	require.NoError(t, err)

	require.NoError(t, r.Resolve(ctx, r.Active().ID, ChoiceRemote))

	assert.Empty(t, reissuer.mutations)
	assert.Nil(t, r.Active())
	assert.Empty(t, repo.rows)
}

func TestResolve_ReissueFailureKeepsConflict(t *testing.T) {
	r, _, reissuer := newTestResolver(t)
	ctx := context.Background()
	reissuer.err = errors.New("authority down")

	_, err := r.Detect(ctx, pendingUpdate("cat", models.Fields{"name": "Local"}), categoryUpdate("cat", models.Fields{"name": "Remote"}))
	require.NoError(t, err)
	id := r.Active().ID

	require.Error(t, r.Resolve(ctx, id, ChoiceLocal))
	require.NotNil(t, r.Active())
	assert.Equal(t, id, r.Active().ID)
}

func TestResolve_Errors(t *testing.T) {
	r, _, _ := newTestResolver(t)
	ctx := context.Background()

	assert.ErrorIs(t, r.Resolve(ctx, "missing", ChoiceRemote), ErrConflictNotFound)
	assert.ErrorIs(t, r.Resolve(ctx, "missing", Choice("both")), ErrUnknownChoice)
	assert.ErrorIs(t, r.Dismiss(ctx, "missing"), ErrConflictNotFound)
}

func TestDismiss_PromotesNext(t *testing.T) {
	r, _, reissuer := newTestResolver(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := r.Detect(ctx, pendingUpdate(id, models.Fields{"name": "x"}), categoryUpdate(id, models.Fields{"name": "y"}))
		require.NoError(t, err)
	}
	require.Len(t, r.Backlog(), 2)

	require.NoError(t, r.Dismiss(ctx, r.Active().ID))

	assert.Equal(t, "b", r.Active().EntityID)
	assert.Len(t, r.Backlog(), 1)
	assert.Empty(t, reissuer.mutations)
}

func TestLoad_RestoresOrderAndNotifies(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockConflictRepository(ctrl)
	repo.EXPECT().ListConflicts(gomock.Any()).Return([]models.Conflict{
		{ID: "1", EntityKind: models.EntityDrawer, EntityID: "d1"},
		{ID: "2", EntityKind: models.EntityDrawer, EntityID: "d2"},
	}, nil)

	r := NewConflictResolver(repo, &spyReissuer{}, inventory.NewState(logger.Nop()), nil, logger.Nop())

	var (
		gotActive  *models.Conflict
		gotBacklog []models.Conflict
	)
	r.OnChange(func(active *models.Conflict, backlog []models.Conflict) {
		gotActive, gotBacklog = active, backlog
	})

	require.NoError(t, r.Load(context.Background()))

	require.NotNil(t, gotActive)
	assert.Equal(t, "1", gotActive.ID)
	require.Len(t, gotBacklog, 1)
	assert.Equal(t, "2", gotBacklog[0].ID)
}

func TestOnChange_PanickingObserverDoesNotStarveOthers(t *testing.T) {
	r, _, _ := newTestResolver(t)

	calls := 0
	r.OnChange(func(*models.Conflict, []models.Conflict) { panic("boom") })
	r.OnChange(func(*models.Conflict, []models.Conflict) { calls++ })

	_, err := r.Detect(context.Background(), pendingUpdate("cat", models.Fields{"name": "a"}), categoryUpdate("cat", models.Fields{"name": "b"}))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
