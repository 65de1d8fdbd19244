// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/models"
)

type conflictsChangedMsg struct {
	active  *models.Conflict
	backlog int
}

type channelStateMsg struct {
	state channel.State
}

type refreshMsg struct{}

type resolveDoneMsg struct {
	action string
	err    error
}

type syncDoneMsg struct {
	err error
}

type reconnectDoneMsg struct {
	err error
}

type clearStatusMsg struct{}
