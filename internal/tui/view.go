// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/drawer-sync/internal/presence"
	"github.com/MKhiriev/drawer-sync/models"
)

const uiDivider = "──────────────────────────────────────────────────────"

func (m model) View() string {
	if m.showInfo {
		return appStyle.Render(overlayBoxStyle.Render(renderBuildInfo(m.build)))
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n\n")

	if m.snap.active != nil {
		b.WriteString(renderConflict(*m.snap.active, m.snap.backlog))
	} else {
		b.WriteString("No conflicts.\n")
	}

	if len(m.snap.syncErrors) > 0 {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render("Sync errors"))
		b.WriteString("\n")
		for _, e := range m.snap.syncErrors {
			b.WriteString("  • ")
			b.WriteString(e)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(uiDivider)
	b.WriteString("\n")
	switch {
	case m.errMsg != "":
		b.WriteString(errorStyle.Render(m.errMsg))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(keys)))

	return appStyle.Render(b.String())
}

func (m model) renderHeader() string {
	state := m.snap.channel.String()
	room := m.snap.room
	if room == "" {
		room = "-"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Room " + room))
	b.WriteString("  ")
	b.WriteString(channelStyle(state).Render(state))
	if m.syncing {
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
		b.WriteString(" syncing")
	}
	if m.dialing {
		b.WriteString("  ")
		b.WriteString(m.spinner.View())
		b.WriteString(" reconnecting")
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Members: %s\n", memberNames(m.snap.members))
	fmt.Fprintf(&b, "Pending changes: %d", m.snap.pending)
	if !m.snap.online {
		b.WriteString(" (offline)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Presence: %s", peerSummary(m.snap.peers))
	return b.String()
}

// renderConflict shows both versions side by side. Fields whose values
// differ are highlighted.
func renderConflict(c models.Conflict, backlog int) string {
	var b strings.Builder

	name := c.Name
	if name == "" {
		name = c.EntityID
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Conflict on %s %q", c.EntityKind, name)))
	if backlog > 0 {
		fmt.Fprintf(&b, "  (+%d waiting)", backlog)
	}
	b.WriteString("\n\n")

	fields := unionKeys(c.Local, c.Remote)
	local := renderSide("Yours", c.LocalOperation, c.Local, c.Remote, fields)
	remote := renderSide("Theirs", c.RemoteOperation, c.Remote, c.Local, fields)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columnStyle.Render(local), " ", columnStyle.Render(remote)))
	b.WriteString("\n")
	return b.String()
}

func renderSide(title string, op models.OperationKind, fields, other models.Fields, names []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	if op != "" {
		fmt.Fprintf(&b, " (%s)", op)
	}
	b.WriteString("\n")

	if op == models.OperationDelete {
		b.WriteString("deleted")
		return b.String()
	}

	for _, k := range names {
		v, ok := fields[k]
		line := fmt.Sprintf("%s: %s", k, formatValue(v, ok))
		if ov, ook := other[k]; ok != ook || formatValue(v, ok) != formatValue(ov, ook) {
			line = changedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func unionKeys(a, b models.Fields) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(v any, ok bool) string {
	if !ok || v == nil {
		return "-"
	}
	return fitText(fmt.Sprint(v), 28)
}

func memberNames(members []models.Member) string {
	if len(members) == 0 {
		return "-"
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		name := m.DisplayName
		if name == "" {
			name = m.UserID
		}
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}

func peerSummary(peers []presence.PeerStatus) string {
	if len(peers) == 0 {
		return "no peers"
	}
	connected := 0
	for _, p := range peers {
		if p.State == models.PeerConnected.String() {
			connected++
		}
	}
	return fmt.Sprintf("%d/%d peers connected", connected, len(peers))
}

func fitText(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	if max <= 3 {
		return v[:max]
	}
	return v[:max-3] + "..."
}
