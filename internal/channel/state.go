// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package channel

// State is the connection state of a [Channel].
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	// StateReconnecting waits for a backoff timer to fire.
	StateReconnecting
	// StateAuthFailed is terminal for the current room until a different
	// room is requested or the credential is reset.
	StateAuthFailed
	// StateUnreachable is reached after the reconnect attempts are exhausted.
	StateUnreachable
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateAuthFailed:
		return "auth_failed"
	case StateUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}
