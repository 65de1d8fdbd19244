// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package presence

import "errors"

var (
	ErrNotInitialized = errors.New("presence mesh is not initialized")
	ErrNoLocalUser    = errors.New("local user id is empty")
	ErrChannelClosed  = errors.New("presence data channel is not open")
	ErrNoRemote       = errors.New("remote description is not set")
)
