// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for communicating with
// the room authority's REST endpoints.
//
// The primary abstraction is [AuthorityAdapter], which decouples the service
// layer from the underlying protocol. The package ships an HTTP/REST
// implementation ([NewHTTPAuthorityAdapter]) built on resty.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic error
// handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/drawer-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/authority_adapter_mock.go -package=mock

// AuthorityAdapter defines communication with the room authority.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
//
// Every mutation accepts an updatedAt hint: the time the local user made the
// change. The authority uses it to order late replays; nil means "now".
type AuthorityAdapter interface {
	// SetToken stores the bearer token attached to all subsequent
	// authenticated requests.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// SetRoom selects the room every mutation endpoint is scoped to.
	SetRoom(roomID string)

	// RefreshToken exchanges refreshToken for a room token. The returned
	// token is not stored; callers decide via SetToken.
	RefreshToken(ctx context.Context, refreshToken string) (models.Token, error)

	CreateDrawer(ctx context.Context, drawer models.Drawer, updatedAt *time.Time) (models.Drawer, error)
	UpdateDrawer(ctx context.Context, drawerID string, fields models.Fields, updatedAt *time.Time) error
	DeleteDrawer(ctx context.Context, drawerID string, updatedAt *time.Time) error

	// ResizeDrawer returns the authoritative compartment layout after the
	// grid changed to rows x cols.
	ResizeDrawer(ctx context.Context, drawerID string, rows, cols int, updatedAt *time.Time) ([]models.Compartment, error)

	UpdateCompartment(ctx context.Context, drawerID, compartmentID string, fields models.Fields, updatedAt *time.Time) error

	// SetDividerCount returns the authoritative sub-compartments of the
	// compartment after its divider count changed.
	SetDividerCount(ctx context.Context, drawerID, compartmentID string, count int, orientation string, updatedAt *time.Time) ([]models.SubCompartment, error)

	UpdateSubCompartment(ctx context.Context, update models.SubCompartmentUpdated, updatedAt *time.Time) error

	// BatchUpdateSubCompartments applies several item edits of one drawer in
	// a single request.
	BatchUpdateSubCompartments(ctx context.Context, drawerID string, updates []models.SubCompartmentUpdated, updatedAt *time.Time) error

	CreateCategory(ctx context.Context, category models.Category, updatedAt *time.Time) (models.Category, error)
	UpdateCategory(ctx context.Context, categoryID string, fields models.Fields, updatedAt *time.Time) error
	DeleteCategory(ctx context.Context, categoryID string, updatedAt *time.Time) error

	// MergeCompartments returns the authoritative compartments that replace
	// compartmentIDs.
	MergeCompartments(ctx context.Context, drawerID string, compartmentIDs []string, updatedAt *time.Time) ([]models.Compartment, error)

	// SplitCompartment returns the authoritative compartments that replace
	// compartmentID.
	SplitCompartment(ctx context.Context, drawerID, compartmentID string, updatedAt *time.Time) ([]models.Compartment, error)
}
