// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package presence

import (
	"context"

	"github.com/MKhiriev/drawer-sync/models"
)

// TransportState is the connection state a transport reports.
type TransportState int

const (
	TransportNew TransportState = iota
	TransportConnecting
	TransportConnected
	TransportDisconnected
	TransportFailed
	TransportClosed
)

func (s TransportState) String() string {
	switch s {
	case TransportNew:
		return "new"
	case TransportConnecting:
		return "connecting"
	case TransportConnected:
		return "connected"
	case TransportDisconnected:
		return "disconnected"
	case TransportFailed:
		return "failed"
	case TransportClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TransportEvents are the callbacks a transport fires. They may run on any
// goroutine.
type TransportEvents struct {
	OnCandidate   func(models.ICECandidate)
	OnStateChange func(TransportState)
	OnOpen        func()
	OnMessage     func([]byte)
}

// Transport is one peer connection carrying the presence data channel.
type Transport interface {
	// CreateOffer creates a local offer and installs it as the local
	// description.
	CreateOffer(ctx context.Context) (models.SessionDescription, error)
	// AcceptOffer installs a remote offer and returns the local answer.
	AcceptOffer(ctx context.Context, offer models.SessionDescription) (models.SessionDescription, error)
	// AcceptAnswer installs the remote answer to our offer.
	AcceptAnswer(ctx context.Context, answer models.SessionDescription) error
	AddCandidate(candidate models.ICECandidate) error
	HasRemoteDescription() bool
	Send(data []byte) error
	Close() error
}

// TransportFactory opens a transport. The offering side creates the
// presence data channel; the answering side receives it.
type TransportFactory func(offering bool, events TransportEvents) (Transport, error)
