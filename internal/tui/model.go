// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/presence"
	"github.com/MKhiriev/drawer-sync/internal/service"
	"github.com/MKhiriev/drawer-sync/models"
)

const (
	refreshInterval = time.Second
	statusTTL       = 3 * time.Second
)

// writeClipboard is replaced in tests.
var writeClipboard = clipboard.WriteAll

// snapshot is what the view renders; it is refreshed on every tick.
type snapshot struct {
	room       string
	channel    channel.State
	members    []models.Member
	online     bool
	pending    int
	syncErrors []string
	peers      []presence.PeerStatus
	active     *models.Conflict
	backlog    int
}

type model struct {
	ctx      context.Context
	services *service.ClientServices
	room     Room
	peers    Peers
	build    models.AppBuildInfo

	help    help.Model
	spinner spinner.Model

	snap     snapshot
	busy     bool
	syncing  bool
	dialing  bool
	showInfo bool
	status   string
	errMsg   string
	width    int
}

func newModel(ctx context.Context, services *service.ClientServices, room Room, peers Peers, build models.AppBuildInfo) model {
	m := model{
		ctx:      ctx,
		services: services,
		room:     room,
		peers:    peers,
		build:    build,
		help:     help.New(),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
	m.snap = m.takeSnapshot()
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(refreshTick(), m.spinner.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil
	case refreshMsg:
		m.snap = m.takeSnapshot()
		return m, refreshTick()
	case conflictsChangedMsg:
		m.snap.active = msg.active
		m.snap.backlog = msg.backlog
		return m, nil
	case channelStateMsg:
		m.snap.channel = msg.state
		return m, nil
	case resolveDoneMsg:
		m.busy = false
		m.snap = m.takeSnapshot()
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		return m.flash(msg.action)
	case syncDoneMsg:
		m.syncing = false
		m.snap = m.takeSnapshot()
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		return m.flash("Sync finished")
	case reconnectDoneMsg:
		m.dialing = false
		m.snap = m.takeSnapshot()
		if msg.err != nil {
			m.errMsg = humanizeError(msg.err)
			return m, nil
		}
		m.errMsg = ""
		return m.flash("Reconnected")
	case clearStatusMsg:
		m.status = ""
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.quit) {
		return m, tea.Quit
	}

	if m.showInfo {
		if key.Matches(msg, keys.esc, keys.info) {
			m.showInfo = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.info):
		m.showInfo = true
	case key.Matches(msg, keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, keys.esc):
		m.errMsg = ""
	case key.Matches(msg, keys.keepLocal):
		return m.settle(service.ChoiceLocal)
	case key.Matches(msg, keys.keepRemote):
		return m.settle(service.ChoiceRemote)
	case key.Matches(msg, keys.dismiss):
		return m.dismiss()
	case key.Matches(msg, keys.copy):
		return m.copyConflict()
	case key.Matches(msg, keys.sync):
		if m.syncing {
			return m, nil
		}
		m.syncing = true
		m.errMsg = ""
		return m, m.cmdSync()
	case key.Matches(msg, keys.reconnect):
		if m.dialing {
			return m, nil
		}
		m.dialing = true
		m.errMsg = ""
		return m, m.cmdReconnect()
	case key.Matches(msg, keys.clearErrors):
		m.services.Queue.ClearSyncErrors()
		m.snap.syncErrors = nil
		return m.flash("Sync errors cleared")
	}
	return m, nil
}

func (m model) settle(choice service.Choice) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.snap.active == nil {
		m.errMsg = humanizeError(errNoConflict)
		return m, nil
	}

	id := m.snap.active.ID
	action := "Kept the local version"
	if choice == service.ChoiceRemote {
		action = "Kept the remote version"
	}

	m.busy = true
	return m, func() tea.Msg {
		return resolveDoneMsg{action: action, err: m.services.Conflicts.Resolve(m.ctx, id, choice)}
	}
}

func (m model) dismiss() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if m.snap.active == nil {
		m.errMsg = humanizeError(errNoConflict)
		return m, nil
	}

	id := m.snap.active.ID
	m.busy = true
	return m, func() tea.Msg {
		return resolveDoneMsg{action: "Conflict dismissed", err: m.services.Conflicts.Dismiss(m.ctx, id)}
	}
}

func (m model) copyConflict() (tea.Model, tea.Cmd) {
	if m.snap.active == nil {
		m.status = "Nothing to copy"
		return m, clearStatusAfter()
	}

	data, err := json.MarshalIndent(m.snap.active, "", "  ")
	if err != nil {
		m.errMsg = fmt.Sprintf("Copy failed: %v", err)
		return m, nil
	}
	if err := writeClipboard(string(data)); err != nil {
		m.errMsg = fmt.Sprintf("Copy failed: %v", err)
		return m, nil
	}
	return m.flash("Copied")
}

func (m model) cmdSync() tea.Cmd {
	return func() tea.Msg {
		return syncDoneMsg{err: m.services.Queue.SyncPendingOperations(m.ctx)}
	}
}

func (m model) cmdReconnect() tea.Cmd {
	return func() tea.Msg {
		return reconnectDoneMsg{err: m.room.Retry(m.ctx)}
	}
}

func (m model) flash(status string) (tea.Model, tea.Cmd) {
	m.status = status
	return m, clearStatusAfter()
}

func (m model) takeSnapshot() snapshot {
	s := snapshot{
		room:       m.room.Room(),
		channel:    m.room.State(),
		members:    m.room.Roster(),
		online:     m.services.Queue.Online(),
		pending:    len(m.services.Queue.Pending()),
		syncErrors: m.services.Queue.SyncErrors(),
		active:     m.services.Conflicts.Active(),
		backlog:    len(m.services.Conflicts.Backlog()),
	}
	if m.peers != nil {
		s.peers = m.peers.Peers()
	}
	return s
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func clearStatusAfter() tea.Cmd {
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{} })
}
