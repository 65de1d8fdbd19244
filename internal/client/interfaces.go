// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "github.com/MKhiriev/drawer-sync/models"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run starts the client application and blocks until exit.
	Run() error
}

// SignalHandler consumes presence-mesh signaling relayed by the room.
type SignalHandler interface {
	HandleSignal(senderID string, msg models.SyncMessage)
}
