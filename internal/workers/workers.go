// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/server"
	"github.com/MKhiriev/drawer-sync/internal/service"
)

type Workers struct {
	workers []Worker
	logger  *logger.Logger
}

func New(log *logger.Logger, workers ...Worker) *Workers {
	return &Workers{workers: workers, logger: log.WithComponent("workers")}
}

// Add appends w; it is started by the next Start call.
func (w *Workers) Add(worker Worker) {
	w.workers = append(w.workers, worker)
}

// Start starts every worker in registration order.
func (w *Workers) Start(ctx context.Context) {
	w.logger.Info().Int("count", len(w.workers)).Msg("starting workers")
	for _, worker := range w.workers {
		worker.Start(ctx)
	}
}

// Stop stops the workers in reverse registration order.
func (w *Workers) Stop() {
	for i := len(w.workers) - 1; i >= 0; i-- {
		w.workers[i].Stop()
	}
	w.logger.Info().Msg("workers stopped")
}

type syncJobWorker struct {
	job      service.SyncJob
	interval time.Duration
}

// SyncJob runs job at interval while started.
func SyncJob(job service.SyncJob, interval time.Duration) Worker {
	return &syncJobWorker{job: job, interval: interval}
}

func (s *syncJobWorker) Start(ctx context.Context) { s.job.Start(ctx, s.interval) }
func (s *syncJobWorker) Stop()                     { s.job.Stop() }

type serverWorker struct {
	srv  server.Server
	done chan struct{}
	once sync.Once
}

// Server runs srv in its own goroutine. Stop shuts it down and waits for
// RunServer to return.
func Server(srv server.Server) Worker {
	return &serverWorker{srv: srv}
}

func (s *serverWorker) Start(context.Context) {
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		s.srv.RunServer()
	}()
}

func (s *serverWorker) Stop() {
	if s.done == nil {
		return
	}
	s.once.Do(s.srv.Shutdown)
	<-s.done
}
