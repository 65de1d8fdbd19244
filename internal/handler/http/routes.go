// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)

	router.Get("/healthz", h.healthz)
	router.Handle("/metrics", h.metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Use(h.withTraceID, h.withLogging)

		r.Get("/version", h.getVersion)
		r.Get("/status", h.getStatus)
		r.Get("/peers", h.getPeers)
		r.Post("/reconnect", h.reconnect)

		r.Route("/pending", func(r chi.Router) {
			r.Get("/", h.getPending)
			r.Post("/sync", h.syncPending)
			r.Delete("/errors", h.clearSyncErrors)
		})

		r.Route("/conflicts", func(r chi.Router) {
			r.Get("/", h.getConflicts)
			r.Post("/{id}/resolve", h.resolveConflict)
			r.Post("/{id}/dismiss", h.dismissConflict)
		})
	})

	return router
}
