// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/models"
)

type mutationDispatcher struct {
	adapter adapter.AuthorityAdapter
	tokens  TokenManager
	logger  *logger.Logger
}

// NewMutationDispatcher creates a MutationDispatcher that makes sure a fresh
// token is installed before every call. A call rejected as unauthorized is
// retried once with a newly refreshed token.
func NewMutationDispatcher(authority adapter.AuthorityAdapter, tokens TokenManager, log *logger.Logger) MutationDispatcher {
	return &mutationDispatcher{
		adapter: authority,
		tokens:  tokens,
		logger:  log.WithComponent("dispatcher"),
	}
}

func (d *mutationDispatcher) Dispatch(ctx context.Context, m models.Mutation, updatedAt *time.Time) error {
	return d.withToken(ctx, func() error {
		return d.send(ctx, m, updatedAt)
	})
}

func (d *mutationDispatcher) send(ctx context.Context, m models.Mutation, updatedAt *time.Time) error {
	switch m.EntityKind {
	case models.EntityDrawer:
		switch m.Operation {
		case models.OperationCreate:
			var drawer models.Drawer
			if err := m.Fields.Decode(&drawer); err != nil {
				return fmt.Errorf("decode drawer: %w", err)
			}
			drawer.ID = m.EntityID
			_, err := d.adapter.CreateDrawer(ctx, drawer, updatedAt)
			return err
		case models.OperationUpdate:
			return d.adapter.UpdateDrawer(ctx, m.EntityID, m.Fields, updatedAt)
		case models.OperationDelete:
			return d.adapter.DeleteDrawer(ctx, m.EntityID, updatedAt)
		}
	case models.EntityCompartment:
		if m.Operation == models.OperationUpdate {
			return d.adapter.UpdateCompartment(ctx, m.Path.DrawerID, m.EntityID, m.Fields, updatedAt)
		}
	case models.EntitySubCompartment:
		if m.Operation == models.OperationUpdate {
			return d.adapter.UpdateSubCompartment(ctx, models.SubCompartmentUpdated{
				DrawerID:         m.Path.DrawerID,
				CompartmentID:    m.Path.CompartmentID,
				SubCompartmentID: m.EntityID,
				Fields:           m.Fields,
			}, updatedAt)
		}
	case models.EntityCategory:
		switch m.Operation {
		case models.OperationCreate:
			var category models.Category
			if err := m.Fields.Decode(&category); err != nil {
				return fmt.Errorf("decode category: %w", err)
			}
			category.ID = m.EntityID
			_, err := d.adapter.CreateCategory(ctx, category, updatedAt)
			return err
		case models.OperationUpdate:
			return d.adapter.UpdateCategory(ctx, m.EntityID, m.Fields, updatedAt)
		case models.OperationDelete:
			return d.adapter.DeleteCategory(ctx, m.EntityID, updatedAt)
		}
	}

	return fmt.Errorf("%w: %s %s", ErrUnsupportedMutation, m.Operation, m.EntityKind)
}

func (d *mutationDispatcher) DispatchBatch(ctx context.Context, drawerID string, updates []models.SubCompartmentUpdated, updatedAt *time.Time) error {
	return d.withToken(ctx, func() error {
		return d.adapter.BatchUpdateSubCompartments(ctx, drawerID, updates, updatedAt)
	})
}

func (d *mutationDispatcher) SetDividerCount(ctx context.Context, drawerID, compartmentID string, count int, orientation string) (models.DividersChanged, error) {
	var subs []models.SubCompartment
	err := d.withToken(ctx, func() (err error) {
		subs, err = d.adapter.SetDividerCount(ctx, drawerID, compartmentID, count, orientation, now())
		return err
	})
	if err != nil {
		return models.DividersChanged{}, err
	}

	return models.DividersChanged{DrawerID: drawerID, CompartmentID: compartmentID, SubCompartments: subs}, nil
}

func (d *mutationDispatcher) MergeCompartments(ctx context.Context, drawerID string, compartmentIDs []string) (models.CompartmentsMerged, error) {
	var compartments []models.Compartment
	err := d.withToken(ctx, func() (err error) {
		compartments, err = d.adapter.MergeCompartments(ctx, drawerID, compartmentIDs, now())
		return err
	})
	if err != nil {
		return models.CompartmentsMerged{}, err
	}

	return models.CompartmentsMerged{DrawerID: drawerID, RemovedIDs: compartmentIDs, Compartments: compartments}, nil
}

func (d *mutationDispatcher) SplitCompartment(ctx context.Context, drawerID, compartmentID string) (models.CompartmentSplit, error) {
	var compartments []models.Compartment
	err := d.withToken(ctx, func() (err error) {
		compartments, err = d.adapter.SplitCompartment(ctx, drawerID, compartmentID, now())
		return err
	})
	if err != nil {
		return models.CompartmentSplit{}, err
	}

	return models.CompartmentSplit{DrawerID: drawerID, RemovedID: compartmentID, Compartments: compartments}, nil
}

func (d *mutationDispatcher) ResizeDrawer(ctx context.Context, drawerID string, rows, cols int) (models.DrawerResized, error) {
	var compartments []models.Compartment
	err := d.withToken(ctx, func() (err error) {
		compartments, err = d.adapter.ResizeDrawer(ctx, drawerID, rows, cols, now())
		return err
	})
	if err != nil {
		return models.DrawerResized{}, err
	}

	return models.DrawerResized{DrawerID: drawerID, Rows: rows, Cols: cols, Compartments: compartments}, nil
}

// withToken runs call with a fresh token installed. An unauthorized answer
// invalidates the token and retries once.
func (d *mutationDispatcher) withToken(ctx context.Context, call func() error) error {
	if _, err := d.tokens.Token(ctx); err != nil {
		return err
	}

	err := call()
	if errors.Is(err, adapter.ErrUnauthorized) {
		d.logger.Info().Msg("authority rejected the token, refreshing")
		d.tokens.Invalidate()
		if _, tokenErr := d.tokens.Token(ctx); tokenErr != nil {
			return tokenErr
		}
		err = call()
	}

	return mapAdapterError(err)
}

func now() *time.Time {
	t := time.Now().UTC()
	return &t
}
