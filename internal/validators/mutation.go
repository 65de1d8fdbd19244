// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/MKhiriev/drawer-sync/models"
)

// Field names accepted by [MutationValidator.Validate] for scoping.
const (
	FieldEntityKind = "entity_kind"
	FieldOperation  = "operation"
	FieldEntityID   = "entity_id"
	FieldPath       = "path"
	FieldFields     = "fields"
)

var allMutationFields = []string{FieldEntityKind, FieldOperation, FieldEntityID, FieldPath, FieldFields}

type MutationValidator struct{}

func NewMutationValidator() Validator {
	return &MutationValidator{}
}

func (v *MutationValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.Mutation:
		return v.validateMutation(ctx, value, fields...)
	case *models.Mutation:
		return v.validateMutation(ctx, *value, fields...)

	case models.PendingOperation:
		return v.validatePendingOperation(ctx, value, fields...)
	case *models.PendingOperation:
		return v.validatePendingOperation(ctx, *value, fields...)

	default:
		return ErrUnsupportedType
	}
}

func (v *MutationValidator) validatePendingOperation(ctx context.Context, op models.PendingOperation, fields ...string) error {
	if op.ID == "" {
		return fmt.Errorf("pending operation: %w", ErrInvalidEntityID)
	}
	return v.validateMutation(ctx, op.Mutation, fields...)
}

func (v *MutationValidator) validateMutation(_ context.Context, m models.Mutation, fields ...string) error {
	if len(fields) == 0 {
		fields = allMutationFields
	}

	for _, f := range fields {
		switch f {
		case FieldEntityKind:
			switch m.EntityKind {
			case models.EntityDrawer, models.EntityCompartment, models.EntitySubCompartment, models.EntityCategory:
			default:
				return fmt.Errorf("%w: %q", ErrInvalidEntityKind, m.EntityKind)
			}
		case FieldOperation:
			switch m.Operation {
			case models.OperationCreate, models.OperationUpdate, models.OperationDelete:
			default:
				return fmt.Errorf("%w: %q", ErrInvalidOperation, m.Operation)
			}
		case FieldEntityID:
			if strings.TrimSpace(m.EntityID) == "" {
				return ErrInvalidEntityID
			}
		case FieldPath:
			if (m.EntityKind == models.EntityCompartment || m.EntityKind == models.EntitySubCompartment) && m.Path.DrawerID == "" {
				return fmt.Errorf("%w: %s %s has no drawer", ErrIncompletePath, m.EntityKind, m.EntityID)
			}
		case FieldFields:
			if m.Operation == models.OperationUpdate && len(m.Fields) == 0 {
				return ErrNoFieldsToUpdate
			}
			if err := validateFieldValues(m.Fields); err != nil {
				return err
			}
		default:
			return ErrUnknownField
		}
	}

	return nil
}

// validateFieldValues checks the well-known fields present in fields. Other
// keys are passed through to the authority unchecked.
func validateFieldValues(fields models.Fields) error {
	for name, value := range fields {
		switch name {
		case "rows", "cols":
			if n, ok := number(value); !ok || n < 1 {
				return fmt.Errorf("%w: %s must be a positive number", ErrInvalidFieldValue, name)
			}
		case "quantity":
			if n, ok := number(value); !ok || n < 0 {
				return fmt.Errorf("%w: quantity must not be negative", ErrInvalidFieldValue)
			}
		case "name":
			if _, ok := value.(string); !ok && value != nil {
				return fmt.Errorf("%w: name must be text", ErrInvalidFieldValue)
			}
		case "color":
			s, ok := value.(string)
			if !ok && value != nil {
				return fmt.Errorf("%w: color must be text", ErrInvalidFieldValue)
			}
			if s == "" {
				continue
			}
			if _, err := colorful.Hex(s); err != nil {
				return fmt.Errorf("%w: color %q is not a hex colour", ErrInvalidFieldValue, s)
			}
		}
	}
	return nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
