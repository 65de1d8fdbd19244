// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package inventory holds the client's in-memory copy of a room's drawers
// and categories and applies mutation messages to it.
//
// Every application names its [Origin]. Local changes are the user's own
// optimistic edits and are forwarded to the room by whoever listens with
// [State.OnChange]; remote changes came from the room and must never be sent
// back. Structural messages (resize, dividers, merge, split) replace the
// affected sub-tree wholesale, leaf messages patch only the named fields.
// Applying the same message twice leaves the state unchanged.
package inventory
