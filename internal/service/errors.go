package service

import "errors"

var (
	ErrSyncInProgress    = errors.New("pending operations are already being synced")
	ErrStructuralOffline = errors.New("structural edits are unavailable while offline")
	ErrNotLeafMessage    = errors.New("message is not a leaf mutation")
	ErrNotConnected      = errors.New("room channel is not connected")
	ErrInvalidEdit       = errors.New("edit is invalid")

	ErrConflictNotFound = errors.New("conflict not found")
	ErrUnknownChoice    = errors.New("unknown conflict resolution choice")

	ErrNoCredential        = errors.New("no refresh credential to obtain a room token")
	ErrUnsupportedMutation = errors.New("mutation has no authority endpoint")

	ErrEntityGone     = errors.New("entity no longer exists in the room")
	ErrStaleWrite     = errors.New("entity changed in the room since the edit was made")
	ErrRejected       = errors.New("edit rejected by the room")
	ErrAccessDenied   = errors.New("access to the room denied")
	ErrAuthorityDown  = errors.New("room authority unavailable")
	ErrTokenIsExpired = errors.New("room token is expired or invalid")
)
