// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/drawer-sync/internal/presence"
	"github.com/MKhiriev/drawer-sync/models"
)

type statusResponse struct {
	Room              string                `json:"room"`
	Channel           string                `json:"channel"`
	Online            bool                  `json:"online"`
	Members           []models.Member       `json:"members"`
	PendingOperations int                   `json:"pending_operations"`
	SyncErrors        []string              `json:"sync_errors"`
	ActiveConflict    *models.Conflict      `json:"active_conflict,omitempty"`
	ConflictBacklog   int                   `json:"conflict_backlog"`
	Peers             []presence.PeerStatus `json:"peers"`
}

type reconnectResponse struct {
	Room    string `json:"room"`
	Channel string `json:"channel"`
}

type peersResponse struct {
	Peers   []presence.PeerStatus `json:"peers"`
	Cursors []models.RemoteCursor `json:"cursors"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Room:              h.room.Room(),
		Channel:           h.room.State().String(),
		Online:            h.services.Queue.Online(),
		Members:           nonNil(h.room.Roster()),
		PendingOperations: len(h.services.Queue.Pending()),
		SyncErrors:        nonNil(h.services.Queue.SyncErrors()),
		ActiveConflict:    h.services.Conflicts.Active(),
		ConflictBacklog:   len(h.services.Conflicts.Backlog()),
		Peers:             []presence.PeerStatus{},
	}
	if h.mesh != nil {
		resp.Peers = nonNil(h.mesh.Peers())
	}

	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) getPeers(w http.ResponseWriter, r *http.Request) {
	resp := peersResponse{Peers: []presence.PeerStatus{}, Cursors: []models.RemoteCursor{}}
	if h.mesh != nil {
		resp.Peers = nonNil(h.mesh.Peers())
		resp.Cursors = nonNil(h.mesh.Cursors())
	}
	writeJSON(w, r, http.StatusOK, resp)
}

// reconnect retries the room channel and reports the resulting state. A
// failed attempt is reported as an error; transport failures stay scheduled
// for backoff reconnects.
func (h *Handler) reconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.room.Retry(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, reconnectResponse{Room: h.room.Room(), Channel: h.room.State().String()})
}

// nonNil keeps empty lists as [] in responses.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
