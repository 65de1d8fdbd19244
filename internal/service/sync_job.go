// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/drawer-sync/internal/logger"
)

const defaultSyncInterval = 30 * time.Second

type pendingSyncJob struct {
	queue  OfflineQueue
	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates a SyncJob that drains queue on a ticker while it is
// online. It catches operations whose replay failed and is still under the
// retry ceiling. The job is idle until Start is called.
func NewSyncJob(queue OfflineQueue, log *logger.Logger) SyncJob {
	return &pendingSyncJob{
		queue:  queue,
		logger: log.WithComponent("sync-job"),
	}
}

// Start implements SyncJob. It stops any previously running job, then
// launches a background goroutine that drains the queue every interval. The
// goroutine exits when ctx is cancelled or Stop is called.
func (j *pendingSyncJob) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultSyncInterval
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				j.tick(jobCtx)
			}
		}
	}()
}

func (j *pendingSyncJob) tick(ctx context.Context) {
	if !j.queue.Online() || len(j.queue.Pending()) == 0 {
		return
	}

	err := j.queue.SyncPendingOperations(ctx)
	if err != nil && !errors.Is(err, ErrSyncInProgress) && !errors.Is(err, context.Canceled) {
		j.logger.Err(err).Msg("periodic drain failed")
	}
}

// Stop implements SyncJob. It cancels the background goroutine's context
// and blocks until the goroutine has fully exited. Safe to call when the job
// is not running.
func (j *pendingSyncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
