// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Vec3 is a position in scene (world) coordinates.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec2 is a position in screen coordinates.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Presence is the payload broadcast over peer data channels.
type Presence struct {
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	Active        bool      `json:"active"`
	World         Vec3      `json:"world"`
	DrawerID      string    `json:"drawer_id,omitempty"`
	CompartmentID string    `json:"compartment_id,omitempty"`
	Selection     []string  `json:"selection,omitempty"`
	SentAt        time.Time `json:"sent_at"`
}

// RemoteCursor is the last known presence of one remote user.
type RemoteCursor struct {
	UserID        string    `json:"user_id"`
	DisplayName   string    `json:"display_name"`
	World         Vec3      `json:"world"`
	Screen        *Vec2     `json:"screen,omitempty"`
	DrawerID      string    `json:"drawer_id,omitempty"`
	CompartmentID string    `json:"compartment_id,omitempty"`
	Selection     []string  `json:"selection,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
	// Color is a stable "#rrggbb" derived from UserID.
	Color string `json:"color"`
}

// PeerState is the negotiation state of one presence-mesh session.
type PeerState int

const (
	PeerIdle PeerState = iota
	PeerOffering
	PeerNegotiating
	PeerConnected
	PeerDisconnected
	PeerFailed
	PeerReconnecting
	PeerClosed
)

func (s PeerState) String() string {
	switch s {
	case PeerIdle:
		return "idle"
	case PeerOffering:
		return "offering"
	case PeerNegotiating:
		return "negotiating"
	case PeerConnected:
		return "connected"
	case PeerDisconnected:
		return "disconnected"
	case PeerFailed:
		return "failed"
	case PeerReconnecting:
		return "reconnecting"
	case PeerClosed:
		return "closed"
	default:
		return "unknown"
	}
}
