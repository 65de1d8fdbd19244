// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package models holds the data types shared by every layer of the client:
// the inventory entities, the closed [SyncMessage] vocabulary exchanged over
// the room channel and its JSON [Envelope], queued [PendingOperation] records,
// [Conflict] records, and presence payloads.
package models
