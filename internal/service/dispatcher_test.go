// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/mock"
	"github.com/MKhiriev/drawer-sync/models"
)

func newTestDispatcher(t *testing.T) (MutationDispatcher, *mock.MockAuthorityAdapter, *countingTokens) {
	t.Helper()
	ctrl := gomock.NewController(t)
	authority := mock.NewMockAuthorityAdapter(ctrl)
	tokens := &countingTokens{}
	return NewMutationDispatcher(authority, tokens, logger.Nop()), authority, tokens
}

func TestDispatch_RoutesLeafMutations(t *testing.T) {
	hint := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("drawer create", func(t *testing.T) {
		d, authority, _ := newTestDispatcher(t)
		authority.EXPECT().
			CreateDrawer(gomock.Any(), models.Drawer{ID: "d1", Name: "Screws", Rows: 2, Cols: 3}, &hint).
			Return(models.Drawer{ID: "d1"}, nil)

		m := models.Mutation{
			Operation:  models.OperationCreate,
			EntityKind: models.EntityDrawer,
			EntityID:   "d1",
			Fields:     models.Fields{"name": "Screws", "rows": 2, "cols": 3},
		}
		require.NoError(t, d.Dispatch(ctx, m, &hint))
	})

	t.Run("compartment update", func(t *testing.T) {
		d, authority, _ := newTestDispatcher(t)
		authority.EXPECT().UpdateCompartment(gomock.Any(), "d1", "c1", models.Fields{"name": "Top"}, &hint).Return(nil)

		m := models.Mutation{
			Operation:  models.OperationUpdate,
			EntityKind: models.EntityCompartment,
			EntityID:   "c1",
			Path:       models.EntityPath{DrawerID: "d1"},
			Fields:     models.Fields{"name": "Top"},
		}
		require.NoError(t, d.Dispatch(ctx, m, &hint))
	})

	t.Run("item update", func(t *testing.T) {
		d, authority, _ := newTestDispatcher(t)
		authority.EXPECT().UpdateSubCompartment(gomock.Any(), models.SubCompartmentUpdated{
			DrawerID:         "d1",
			CompartmentID:    "c1",
			SubCompartmentID: "s1",
			Fields:           models.Fields{"quantity": 4},
		}, (*time.Time)(nil)).Return(nil)

		m := models.Mutation{
			Operation:  models.OperationUpdate,
			EntityKind: models.EntitySubCompartment,
			EntityID:   "s1",
			Path:       models.EntityPath{DrawerID: "d1", CompartmentID: "c1"},
			Fields:     models.Fields{"quantity": 4},
		}
		require.NoError(t, d.Dispatch(ctx, m, nil))
	})

	t.Run("category delete", func(t *testing.T) {
		d, authority, _ := newTestDispatcher(t)
		authority.EXPECT().DeleteCategory(gomock.Any(), "cat", &hint).Return(nil)

		m := models.Mutation{Operation: models.OperationDelete, EntityKind: models.EntityCategory, EntityID: "cat"}
		require.NoError(t, d.Dispatch(ctx, m, &hint))
	})
}

func TestDispatch_UnsupportedMutation(t *testing.T) {
	d, _, _ := newTestDispatcher(t)

	m := models.Mutation{Operation: models.OperationDelete, EntityKind: models.EntityCompartment, EntityID: "c1"}
	assert.ErrorIs(t, d.Dispatch(context.Background(), m, nil), ErrUnsupportedMutation)
}

func TestDispatch_RetriesOnceWithFreshToken(t *testing.T) {
	d, authority, tokens := newTestDispatcher(t)
	gomock.InOrder(
		authority.EXPECT().UpdateDrawer(gomock.Any(), "d1", gomock.Any(), gomock.Any()).Return(adapter.ErrUnauthorized),
		authority.EXPECT().UpdateDrawer(gomock.Any(), "d1", gomock.Any(), gomock.Any()).Return(nil),
	)

	require.NoError(t, d.Dispatch(context.Background(), drawerUpdate("d1", models.Fields{"name": "x"}), nil))
	assert.Equal(t, 1, tokens.invalidated)
	assert.Equal(t, 2, tokens.tokenCalls)
}

func TestDispatch_SecondUnauthorizedIsReturned(t *testing.T) {
	d, authority, tokens := newTestDispatcher(t)
	authority.EXPECT().UpdateDrawer(gomock.Any(), "d1", gomock.Any(), gomock.Any()).Return(adapter.ErrUnauthorized).Times(2)

	err := d.Dispatch(context.Background(), drawerUpdate("d1", models.Fields{"name": "x"}), nil)

	assert.ErrorIs(t, err, ErrTokenIsExpired)
	assert.Equal(t, 1, tokens.invalidated)
}

func TestDispatch_TokenFailureSkipsCall(t *testing.T) {
	d, _, tokens := newTestDispatcher(t)
	tokens.err = ErrNoCredential

	err := d.Dispatch(context.Background(), drawerUpdate("d1", models.Fields{"name": "x"}), nil)
	assert.ErrorIs(t, err, ErrNoCredential)
}

func TestDispatch_MapsAuthorityErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      error
		retryable bool
	}{
		{"not found", adapter.ErrNotFound, ErrEntityGone, false},
		{"conflict", adapter.ErrConflict, ErrStaleWrite, false},
		{"bad request", fmt.Errorf("%w: name too long", adapter.ErrBadRequest), ErrRejected, false},
		{"forbidden", adapter.ErrForbidden, ErrAccessDenied, false},
		{"unavailable", adapter.ErrServiceUnavailable, ErrAuthorityDown, true},
		{"transport", fmt.Errorf("%w: connection refused", adapter.ErrTransport), ErrAuthorityDown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, authority, _ := newTestDispatcher(t)
			authority.EXPECT().DeleteDrawer(gomock.Any(), "d1", gomock.Any()).Return(tt.err)

			err := d.Dispatch(context.Background(), models.Mutation{Operation: models.OperationDelete, EntityKind: models.EntityDrawer, EntityID: "d1"}, nil)

			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.retryable, adapter.IsRetryable(err))
		})
	}
}

func TestDispatchBatch(t *testing.T) {
	d, authority, _ := newTestDispatcher(t)
	updates := []models.SubCompartmentUpdated{{DrawerID: "d1", SubCompartmentID: "s1", Fields: models.Fields{"name": "M3"}}}
	authority.EXPECT().BatchUpdateSubCompartments(gomock.Any(), "d1", updates, gomock.Any()).Return(nil)

	require.NoError(t, d.DispatchBatch(context.Background(), "d1", updates, nil))
}

// ── structural ───────────────────────────────────────────────────────────────

func TestSetDividerCount_ReturnsAuthoritativeMessage(t *testing.T) {
	d, authority, _ := newTestDispatcher(t)
	subs := []models.SubCompartment{{ID: "s1", Position: 0}, {ID: "s2", Position: 1}}
	authority.EXPECT().SetDividerCount(gomock.Any(), "d1", "c1", 1, "vertical", gomock.Not(gomock.Nil())).Return(subs, nil)

	msg, err := d.SetDividerCount(context.Background(), "d1", "c1", 1, "vertical")

	require.NoError(t, err)
	assert.Equal(t, models.DividersChanged{DrawerID: "d1", CompartmentID: "c1", SubCompartments: subs}, msg)
}

func TestMergeCompartments_ReturnsAuthoritativeMessage(t *testing.T) {
	d, authority, _ := newTestDispatcher(t)
	merged := []models.Compartment{{ID: "m1", RowSpan: 1, ColSpan: 2}}
	authority.EXPECT().MergeCompartments(gomock.Any(), "d1", []string{"a", "b"}, gomock.Any()).Return(merged, nil)

	msg, err := d.MergeCompartments(context.Background(), "d1", []string{"a", "b"})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, msg.RemovedIDs)
	assert.Equal(t, merged, msg.Compartments)
}

func TestSplitCompartment_ReturnsAuthoritativeMessage(t *testing.T) {
	d, authority, _ := newTestDispatcher(t)
	parts := []models.Compartment{{ID: "p1"}, {ID: "p2", Col: 1}}
	authority.EXPECT().SplitCompartment(gomock.Any(), "d1", "m1", gomock.Any()).Return(parts, nil)

	msg, err := d.SplitCompartment(context.Background(), "d1", "m1")

	require.NoError(t, err)
	assert.Equal(t, "m1", msg.RemovedID)
	assert.Equal(t, parts, msg.Compartments)
}

func TestResizeDrawer_PropagatesFailure(t *testing.T) {
	d, authority, _ := newTestDispatcher(t)
	authority.EXPECT().ResizeDrawer(gomock.Any(), "d1", 3, 3, gomock.Any()).Return(nil, adapter.ErrBadGateway)

	_, err := d.ResizeDrawer(context.Background(), "d1", 3, 3)

	assert.ErrorIs(t, err, ErrAuthorityDown)
}
