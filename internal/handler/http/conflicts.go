// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/drawer-sync/internal/service"
	"github.com/MKhiriev/drawer-sync/models"
)

type conflictsResponse struct {
	Active  *models.Conflict  `json:"active"`
	Backlog []models.Conflict `json:"backlog"`
}

type resolveRequest struct {
	Choice service.Choice `json:"choice"`
}

func (h *Handler) getConflicts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, conflictsResponse{
		Active:  h.services.Conflicts.Active(),
		Backlog: nonNil(h.services.Conflicts.Backlog()),
	})
}

func (h *Handler) resolveConflict(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, ErrEmptyChoice)
			return
		}
		writeError(w, r, errors.Join(ErrInvalidBody, err))
		return
	}
	if req.Choice == "" {
		writeError(w, r, ErrEmptyChoice)
		return
	}

	if err := h.services.Conflicts.Resolve(r.Context(), chi.URLParam(r, "id"), req.Choice); err != nil {
		writeError(w, r, err)
		return
	}
	h.getConflicts(w, r)
}

func (h *Handler) dismissConflict(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Conflicts.Dismiss(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	h.getConflicts(w, r)
}
