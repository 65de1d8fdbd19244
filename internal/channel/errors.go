// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package channel

import "errors"

var (
	ErrNoRoom       = errors.New("no room requested")
	ErrAuthRejected = errors.New("room rejected the credential")
	ErrDial         = errors.New("room channel dial failed")
	ErrWaitTimeout  = errors.New("timed out waiting for the room channel")

	errCredential = errors.New("credential refused")
)
