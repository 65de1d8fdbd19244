// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package presence runs the peer-to-peer presence mesh of a room.
//
// Every other member of the room gets one session, negotiated through the
// room channel with offer, answer and ICE candidate signals. Simultaneous
// offers are settled by a politeness rule: the side whose user id sorts
// lower keeps its own offer, the other side drops its offer and answers.
// Once connected, cursor and selection presence travels over an unordered
// data channel without retransmits. Sessions that drop are rebuilt with
// exponential backoff; a session that keeps failing is torn down and its
// cursor is removed.
package presence
