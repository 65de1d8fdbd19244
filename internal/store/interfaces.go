// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"

	"github.com/MKhiriev/drawer-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// PendingOperationRepository persists the offline mutation queue. At most one
// row exists per (entity_kind, entity_id); saving an operation for an entity
// that already has one replaces it in place.
type PendingOperationRepository interface {
	SavePendingOperation(ctx context.Context, op models.PendingOperation) error
	DeletePendingOperation(ctx context.Context, id string) error
	// ListPendingOperations returns all operations oldest-first.
	ListPendingOperations(ctx context.Context) ([]models.PendingOperation, error)
}

// ConflictRepository persists unresolved conflicts so they survive restarts.
type ConflictRepository interface {
	SaveConflict(ctx context.Context, conflict models.Conflict) error
	DeleteConflict(ctx context.Context, id string) error
	// ListConflicts returns all conflicts in detection order.
	ListConflicts(ctx context.Context) ([]models.Conflict, error)
}

// ErrorClassificator decides whether a failed database call is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
