// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package channel keeps one websocket connection to a room of the authority.
//
// The connection is re-established with exponential backoff after an
// abnormal close, unless the room never accepted the client: a close before
// the first successful open, or one carrying an authorization close code, is
// treated as an authentication rejection and is never retried automatically.
// Inbound frames are decoded into [models.SyncMessage] values, de-duplicated
// by frame id and delivered in arrival order. The channel also keeps the room
// roster from member presence messages.
package channel
