// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui renders the terminal view of the drawer-sync client.
//
// The view shows the room channel state, the offline queue and the active
// conflict. Conflicts are settled from the keyboard: keep the local version,
// keep the remote one, or dismiss. Conflicts waiting behind the active one
// are shown only as a count.
package tui
