// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains the user-visible message strings of the drawer-sync
// client.
//
// Sync errors and conflict descriptions end up in the terminal UI and in the
// status API, so the wording is kept in one place.
package app

const (
	// MsgEntityGone explains a replay that failed because the entity was
	// deleted in the room.
	MsgEntityGone = "it no longer exists in the room"

	// MsgStaleWrite explains a replay the room refused because the entity
	// changed after the edit was made.
	MsgStaleWrite = "it was changed by someone else in the meantime"

	// MsgRejected explains a replay the room refused as invalid.
	MsgRejected = "the room rejected the edit"

	// MsgAccessDenied is used when the local user lost access to the room.
	MsgAccessDenied = "you no longer have access to this room"

	// MsgAuthorityUnavailable is used when the room could not be reached.
	MsgAuthorityUnavailable = "the room could not be reached"

	// MsgTokenIsExpired is used when the room token could not be renewed.
	MsgTokenIsExpired = "your session expired, sign in again"

	// MsgSyncFailed is the format of the error recorded when a queued edit is
	// dropped: entity kind, entity label, attempts, reason.
	MsgSyncFailed = "could not sync %s %q after %d attempts: %s"

	// MsgConflict is the format of a conflict title: entity kind and label.
	MsgConflict = "%s %q was edited here and in the room"

	// MsgUnknownError is used when no better description exists.
	MsgUnknownError = "unexpected error"
)
