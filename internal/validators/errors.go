// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidEntityKind = errors.New("invalid entity kind")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInvalidEntityID   = errors.New("invalid entity id")
	ErrIncompletePath    = errors.New("entity path is incomplete")
	ErrNoFieldsToUpdate  = errors.New("at least one field must be provided for update")
	ErrInvalidFieldValue = errors.New("invalid field value")
)
