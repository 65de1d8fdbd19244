// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/MKhiriev/drawer-sync/models"
)

type pendingResponse struct {
	Online     bool                      `json:"online"`
	Operations []models.PendingOperation `json:"operations"`
	SyncErrors []string                  `json:"sync_errors"`
}

func (h *Handler) getPending(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, pendingResponse{
		Online:     h.services.Queue.Online(),
		Operations: nonNil(h.services.Queue.Pending()),
		SyncErrors: nonNil(h.services.Queue.SyncErrors()),
	})
}

// syncPending drains the queue now instead of waiting for the sync job.
func (h *Handler) syncPending(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Queue.SyncPendingOperations(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	h.getPending(w, r)
}

func (h *Handler) clearSyncErrors(w http.ResponseWriter, _ *http.Request) {
	h.services.Queue.ClearSyncErrors()
	w.WriteHeader(http.StatusNoContent)
}
