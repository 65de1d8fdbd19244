package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/drawer-sync/models"
)

// pendingOperationRow is the column layout of pending_operations. Path and
// Fields are JSON text.
type pendingOperationRow struct {
	ID         string
	EntityKind string
	EntityID   string
	Operation  string
	Path       string
	Fields     string
	RetryCount int
	CreatedAt  time.Time
}

func newPendingOperationRow(op models.PendingOperation) (pendingOperationRow, error) {
	path, err := json.Marshal(op.Mutation.Path)
	if err != nil {
		return pendingOperationRow{}, fmt.Errorf("%w: path: %w", ErrEncodingColumn, err)
	}
	fields, err := json.Marshal(op.Mutation.Fields)
	if err != nil {
		return pendingOperationRow{}, fmt.Errorf("%w: fields: %w", ErrEncodingColumn, err)
	}

	return pendingOperationRow{
		ID:         op.ID,
		EntityKind: string(op.Mutation.EntityKind),
		EntityID:   op.Mutation.EntityID,
		Operation:  string(op.Mutation.Operation),
		Path:       string(path),
		Fields:     string(fields),
		RetryCount: op.RetryCount,
		CreatedAt:  op.CreatedAt.UTC(),
	}, nil
}

func (r pendingOperationRow) model() (models.PendingOperation, error) {
	op := models.PendingOperation{
		ID:         r.ID,
		CreatedAt:  r.CreatedAt,
		RetryCount: r.RetryCount,
		Mutation: models.Mutation{
			Operation:  models.OperationKind(r.Operation),
			EntityKind: models.EntityKind(r.EntityKind),
			EntityID:   r.EntityID,
		},
	}
	if err := decodeColumn(r.Path, &op.Mutation.Path); err != nil {
		return models.PendingOperation{}, fmt.Errorf("%w: path: %w", ErrEncodingColumn, err)
	}
	if err := decodeColumn(r.Fields, &op.Mutation.Fields); err != nil {
		return models.PendingOperation{}, fmt.Errorf("%w: fields: %w", ErrEncodingColumn, err)
	}
	return op, nil
}

// conflictRow is the column layout of conflicts.
type conflictRow struct {
	ID              string
	EntityKind      string
	EntityID        string
	Path            string
	Name            string
	LocalOperation  string
	LocalFields     string
	RemoteOperation string
	RemoteFields    string
	CreatedAt       time.Time
}

func newConflictRow(c models.Conflict) (conflictRow, error) {
	path, err := json.Marshal(c.Path)
	if err != nil {
		return conflictRow{}, fmt.Errorf("%w: path: %w", ErrEncodingColumn, err)
	}
	local, err := json.Marshal(c.Local)
	if err != nil {
		return conflictRow{}, fmt.Errorf("%w: local: %w", ErrEncodingColumn, err)
	}
	remote, err := json.Marshal(c.Remote)
	if err != nil {
		return conflictRow{}, fmt.Errorf("%w: remote: %w", ErrEncodingColumn, err)
	}

	return conflictRow{
		ID:              c.ID,
		EntityKind:      string(c.EntityKind),
		EntityID:        c.EntityID,
		Path:            string(path),
		Name:            c.Name,
		LocalOperation:  string(c.LocalOperation),
		LocalFields:     string(local),
		RemoteOperation: string(c.RemoteOperation),
		RemoteFields:    string(remote),
		CreatedAt:       c.CreatedAt.UTC(),
	}, nil
}

func (r conflictRow) model() (models.Conflict, error) {
	c := models.Conflict{
		ID:              r.ID,
		EntityKind:      models.EntityKind(r.EntityKind),
		EntityID:        r.EntityID,
		Name:            r.Name,
		LocalOperation:  models.OperationKind(r.LocalOperation),
		RemoteOperation: models.OperationKind(r.RemoteOperation),
		CreatedAt:       r.CreatedAt,
	}
	if err := decodeColumn(r.Path, &c.Path); err != nil {
		return models.Conflict{}, fmt.Errorf("%w: path: %w", ErrEncodingColumn, err)
	}
	if err := decodeColumn(r.LocalFields, &c.Local); err != nil {
		return models.Conflict{}, fmt.Errorf("%w: local: %w", ErrEncodingColumn, err)
	}
	if err := decodeColumn(r.RemoteFields, &c.Remote); err != nil {
		return models.Conflict{}, fmt.Errorf("%w: remote: %w", ErrEncodingColumn, err)
	}
	return c, nil
}

func decodeColumn(raw string, dst any) error {
	if raw == "" || raw == "null" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
