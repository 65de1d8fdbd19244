// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"errors"
	"strings"

	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/service"
)

var errNoConflict = errors.New("no conflict to settle")

func humanizeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrSyncInProgress):
		return "A sync is already running"
	case errors.Is(err, service.ErrNotConnected):
		return "The room channel is offline"
	case errors.Is(err, service.ErrConflictNotFound):
		return "The conflict was already settled"
	case errors.Is(err, service.ErrTokenIsExpired), errors.Is(err, service.ErrNoCredential),
		errors.Is(err, channel.ErrAuthRejected):
		return "Sign in again to keep syncing"
	case errors.Is(err, channel.ErrNoRoom):
		return "No room to join"
	}

	s := strings.ToLower(err.Error())
	if strings.Contains(s, "connection refused") ||
		strings.Contains(s, "dial tcp") ||
		strings.Contains(s, "no such host") ||
		strings.Contains(s, "network is unreachable") ||
		strings.Contains(s, "i/o timeout") ||
		strings.Contains(s, "context deadline exceeded") {
		return "No network or the server is unavailable"
	}

	return err.Error()
}
