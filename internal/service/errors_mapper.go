// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MKhiriev/drawer-sync/internal/adapter"
	"github.com/MKhiriev/drawer-sync/internal/app"
)

// mapAdapterError translates the adapter's transport error into a service
// error. Retryable errors keep their adapter sentinel so callers can still
// use adapter.IsRetryable.
func mapAdapterError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, adapter.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrEntityGone, err)
	case errors.Is(err, adapter.ErrConflict):
		return fmt.Errorf("%w: %w", ErrStaleWrite, err)
	case errors.Is(err, adapter.ErrBadRequest):
		return fmt.Errorf("%w: %s", ErrRejected, extractBody(err))
	case errors.Is(err, adapter.ErrForbidden):
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	case errors.Is(err, adapter.ErrUnauthorized):
		return fmt.Errorf("%w: %w", ErrTokenIsExpired, err)
	case adapter.IsRetryable(err):
		return fmt.Errorf("%w: %w", ErrAuthorityDown, err)
	}

	return err
}

// describeError returns the user-visible reason of a failed replay.
func describeError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEntityGone):
		return app.MsgEntityGone
	case errors.Is(err, ErrStaleWrite):
		return app.MsgStaleWrite
	case errors.Is(err, ErrRejected):
		if body := extractBody(err); body != "" && body != err.Error() {
			return app.MsgRejected + " (" + body + ")"
		}
		return app.MsgRejected
	case errors.Is(err, ErrAccessDenied):
		return app.MsgAccessDenied
	case errors.Is(err, ErrTokenIsExpired), errors.Is(err, ErrNoCredential):
		return app.MsgTokenIsExpired
	case errors.Is(err, ErrAuthorityDown):
		return app.MsgAuthorityUnavailable
	}
	return app.MsgUnknownError
}

// extractBody extracts the body from a message of the form "bad request: <body>"
func extractBody(err error) string {
	msg := err.Error()
	if idx := strings.LastIndex(msg, ": "); idx != -1 {
		return msg[idx+2:]
	}
	return msg
}
