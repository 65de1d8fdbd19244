// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package inventory

import "errors"

var (
	ErrDrawerNotFound         = errors.New("drawer not found")
	ErrCompartmentNotFound    = errors.New("compartment not found")
	ErrSubCompartmentNotFound = errors.New("sub-compartment not found")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrInvalidGrid            = errors.New("grid size must be positive")
	ErrPatchingEntity         = errors.New("error patching entity fields")
)
