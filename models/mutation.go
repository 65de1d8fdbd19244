// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotQueueable is returned when a message has no [Mutation] form, i.e. it
// is structural, presence or signaling.
var ErrNotQueueable = errors.New("message cannot be expressed as a queueable mutation")

// EntityKey identifies an entity across kinds.
type EntityKey struct {
	Kind EntityKind
	ID   string
}

func (k EntityKey) String() string {
	return string(k.Kind) + "/" + k.ID
}

// Mutation is the replayable form of a leaf message: what the local user
// intended to write to one entity.
type Mutation struct {
	Operation  OperationKind `json:"operation"`
	EntityKind EntityKind    `json:"entity_kind"`
	EntityID   string        `json:"entity_id"`
	Path       EntityPath    `json:"path"`
	Fields     Fields        `json:"fields,omitempty"`
}

// Key returns the entity the mutation targets.
func (m Mutation) Key() EntityKey {
	return EntityKey{Kind: m.EntityKind, ID: m.EntityID}
}

// MutationFromMessage converts a leaf message into its [Mutation] form.
// Creates carry the full entity as Fields; deletes carry none.
func MutationFromMessage(msg SyncMessage) (Mutation, error) {
	switch m := msg.(type) {
	case DrawerCreated:
		fields, err := FieldsOf(m.Drawer)
		if err != nil {
			return Mutation{}, fmt.Errorf("drawer fields: %w", err)
		}
		return Mutation{Operation: OperationCreate, EntityKind: EntityDrawer, EntityID: m.Drawer.ID, Fields: fields}, nil
	case DrawerUpdated:
		return Mutation{Operation: OperationUpdate, EntityKind: EntityDrawer, EntityID: m.DrawerID, Fields: m.Fields}, nil
	case DrawerDeleted:
		return Mutation{Operation: OperationDelete, EntityKind: EntityDrawer, EntityID: m.DrawerID}, nil
	case CompartmentUpdated:
		return Mutation{
			Operation:  OperationUpdate,
			EntityKind: EntityCompartment,
			EntityID:   m.CompartmentID,
			Path:       EntityPath{DrawerID: m.DrawerID},
			Fields:     m.Fields,
		}, nil
	case SubCompartmentUpdated:
		return Mutation{
			Operation:  OperationUpdate,
			EntityKind: EntitySubCompartment,
			EntityID:   m.SubCompartmentID,
			Path:       EntityPath{DrawerID: m.DrawerID, CompartmentID: m.CompartmentID},
			Fields:     m.Fields,
		}, nil
	case CategoryCreated:
		fields, err := FieldsOf(m.Category)
		if err != nil {
			return Mutation{}, fmt.Errorf("category fields: %w", err)
		}
		return Mutation{Operation: OperationCreate, EntityKind: EntityCategory, EntityID: m.Category.ID, Fields: fields}, nil
	case CategoryUpdated:
		return Mutation{Operation: OperationUpdate, EntityKind: EntityCategory, EntityID: m.CategoryID, Fields: m.Fields}, nil
	case CategoryDeleted:
		return Mutation{Operation: OperationDelete, EntityKind: EntityCategory, EntityID: m.CategoryID}, nil
	default:
		return Mutation{}, fmt.Errorf("%w: %s", ErrNotQueueable, msg.MessageType())
	}
}

// Message converts the mutation back into its leaf message.
func (m Mutation) Message() (SyncMessage, error) {
	switch {
	case m.EntityKind == EntityDrawer && m.Operation == OperationCreate:
		var d Drawer
		if err := m.Fields.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode drawer: %w", err)
		}
		d.ID = m.EntityID
		return DrawerCreated{Drawer: d}, nil
	case m.EntityKind == EntityDrawer && m.Operation == OperationUpdate:
		return DrawerUpdated{DrawerID: m.EntityID, Fields: m.Fields}, nil
	case m.EntityKind == EntityDrawer && m.Operation == OperationDelete:
		return DrawerDeleted{DrawerID: m.EntityID}, nil
	case m.EntityKind == EntityCompartment && m.Operation == OperationUpdate:
		return CompartmentUpdated{DrawerID: m.Path.DrawerID, CompartmentID: m.EntityID, Fields: m.Fields}, nil
	case m.EntityKind == EntitySubCompartment && m.Operation == OperationUpdate:
		return SubCompartmentUpdated{
			DrawerID:         m.Path.DrawerID,
			CompartmentID:    m.Path.CompartmentID,
			SubCompartmentID: m.EntityID,
			Fields:           m.Fields,
		}, nil
	case m.EntityKind == EntityCategory && m.Operation == OperationCreate:
		var c Category
		if err := m.Fields.Decode(&c); err != nil {
			return nil, fmt.Errorf("decode category: %w", err)
		}
		c.ID = m.EntityID
		return CategoryCreated{Category: c}, nil
	case m.EntityKind == EntityCategory && m.Operation == OperationUpdate:
		return CategoryUpdated{CategoryID: m.EntityID, Fields: m.Fields}, nil
	case m.EntityKind == EntityCategory && m.Operation == OperationDelete:
		return CategoryDeleted{CategoryID: m.EntityID}, nil
	default:
		return nil, fmt.Errorf("%w: %s %s", ErrNotQueueable, m.Operation, m.EntityKind)
	}
}

// PendingOperation is a mutation made while disconnected and not yet
// accepted by the authority.
type PendingOperation struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Mutation   Mutation  `json:"mutation"`
	RetryCount int       `json:"retry_count"`
	// Revision counts the edits coalesced into the operation since it was
	// loaded. It is not persisted.
	Revision uint64 `json:"-"`
}

// Conflict records a queued local write that raced a remote write to the
// same entity.
type Conflict struct {
	ID         string     `json:"id"`
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   string     `json:"entity_id"`
	Path       EntityPath `json:"path"`
	// Name is a human-readable label of the entity, when known.
	Name string `json:"name,omitempty"`
	// LocalOperation is the verb the local pending operation carried.
	LocalOperation OperationKind `json:"local_operation"`
	// Local holds the fields the local operation intended to write.
	Local Fields `json:"local"`
	// RemoteOperation is the verb of the concurrent remote write.
	RemoteOperation OperationKind `json:"remote_operation"`
	// Remote holds the authority's concurrent write.
	Remote    Fields    `json:"remote"`
	CreatedAt time.Time `json:"created_at"`
}

// LocalMutation rebuilds the mutation the local user intended.
func (c Conflict) LocalMutation() Mutation {
	return Mutation{
		Operation:  c.LocalOperation,
		EntityKind: c.EntityKind,
		EntityID:   c.EntityID,
		Path:       c.Path,
		Fields:     c.Local,
	}
}
