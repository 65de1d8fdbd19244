// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/models"
)

// spyQueue counts drains. Methods the job does not use panic through the
// nil embedded interface.
type spyQueue struct {
	OfflineQueue
	online  atomic.Bool
	empty   atomic.Bool
	calls   atomic.Int64
	syncErr error
}

func newSpyQueue() *spyQueue {
	q := &spyQueue{}
	q.online.Store(true)
	return q
}

func (q *spyQueue) Online() bool { return q.online.Load() }

func (q *spyQueue) Pending() []models.PendingOperation {
	if q.empty.Load() {
		return nil
	}
	return []models.PendingOperation{{ID: "op"}}
}

func (q *spyQueue) SyncPendingOperations(context.Context) error {
	q.calls.Add(1)
	return q.syncErr
}

func TestNewSyncJob_ReturnsInterface(t *testing.T) {
	job := NewSyncJob(newSpyQueue(), logger.Nop())
	require.NotNil(t, job)
}

func TestSyncJob_Start_DrainsWhileOnline(t *testing.T) {
	q := newSpyQueue()
	job := NewSyncJob(q, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	assert.GreaterOrEqual(t, q.calls.Load(), int64(3))
}

func TestSyncJob_SkipsWhileOffline(t *testing.T) {
	q := newSpyQueue()
	q.online.Store(false)
	job := NewSyncJob(q, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	job.Stop()

	assert.Zero(t, q.calls.Load())
}

func TestSyncJob_SkipsEmptyQueue(t *testing.T) {
	q := newSpyQueue()
	q.empty.Store(true)
	job := NewSyncJob(q, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	job.Stop()

	assert.Zero(t, q.calls.Load())
}

func TestSyncJob_Stop_StopsGoroutine(t *testing.T) {
	q := newSpyQueue()
	job := NewSyncJob(q, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	callsAfterStop := q.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, callsAfterStop, q.calls.Load())
}

func TestSyncJob_Stop_BeforeStart_NoPanic(t *testing.T) {
	job := NewSyncJob(newSpyQueue(), logger.Nop())
	assert.NotPanics(t, func() { job.Stop() })
}

func TestSyncJob_DoubleStop_NoPanic(t *testing.T) {
	job := NewSyncJob(newSpyQueue(), logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	job.Stop()
	assert.NotPanics(t, func() { job.Stop() })
}

func TestSyncJob_Start_DefaultInterval(t *testing.T) {
	q := newSpyQueue()
	job := NewSyncJob(q, logger.Nop())

	job.Start(context.Background(), 0)
	time.Sleep(20 * time.Millisecond)
	job.Stop()

	assert.Zero(t, q.calls.Load(), "the default interval is far longer than the test")
}

func TestSyncJob_Restart_KeepsDraining(t *testing.T) {
	q := newSpyQueue()
	job := NewSyncJob(q, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	before := q.calls.Load()
	require.Positive(t, before)

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	job.Stop()

	assert.Greater(t, q.calls.Load(), before)
}

func TestSyncJob_ContextCancel_StopsJob(t *testing.T) {
	job := NewSyncJob(newSpyQueue(), logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	job.Start(ctx, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		job.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop hung after the context was cancelled")
	}
}

func TestSyncJob_DrainErrorDoesNotStopJob(t *testing.T) {
	q := newSpyQueue()
	q.syncErr = assert.AnError
	job := NewSyncJob(q, logger.Nop())

	job.Start(context.Background(), 10*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	job.Stop()

	assert.GreaterOrEqual(t, q.calls.Load(), int64(3))
}
