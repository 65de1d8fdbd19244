// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	// ErrNoAddress is returned by NewStatusServer when the status address
	// is empty. The caller treats it as "status server disabled".
	ErrNoAddress = errors.New("status server address is empty")
)
