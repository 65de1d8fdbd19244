// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the drawer-sync client runtime.
//
// It wires the room channel, the offline queue, conflict handling, the
// presence mesh, the status server and the terminal view into a single
// process lifecycle.
package client
