// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/service"
	"github.com/MKhiriev/drawer-sync/internal/store"
)

var errorStatusMap = map[error]int{
	ErrInvalidBody: http.StatusBadRequest,
	ErrEmptyChoice: http.StatusBadRequest,

	service.ErrUnknownChoice:     http.StatusBadRequest,
	service.ErrConflictNotFound:  http.StatusNotFound,
	service.ErrSyncInProgress:    http.StatusConflict,
	service.ErrNotConnected:      http.StatusConflict,
	service.ErrStructuralOffline: http.StatusConflict,
	service.ErrRejected:          http.StatusUnprocessableEntity,
	service.ErrInvalidEdit:       http.StatusUnprocessableEntity,
	service.ErrEntityGone:        http.StatusGone,
	service.ErrStaleWrite:        http.StatusConflict,
	service.ErrAccessDenied:      http.StatusForbidden,
	service.ErrTokenIsExpired:    http.StatusUnauthorized,
	service.ErrNoCredential:      http.StatusUnauthorized,
	service.ErrAuthorityDown:     http.StatusBadGateway,

	channel.ErrNoRoom:       http.StatusConflict,
	channel.ErrAuthRejected: http.StatusUnauthorized,
	channel.ErrDial:         http.StatusBadGateway,

	store.ErrConflictNotFound:         http.StatusNotFound,
	store.ErrPendingOperationNotFound: http.StatusNotFound,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}
