// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrInvalidBody is returned when a request body is not the expected JSON.
	ErrInvalidBody = errors.New("invalid request body")

	// ErrEmptyChoice is returned when a resolve request names no choice.
	ErrEmptyChoice = errors.New("empty conflict resolution choice")
)
