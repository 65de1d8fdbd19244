// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/drawer-sync/internal/logger"
)

// recordingWorker appends "start:<id>" and "stop:<id>" to a shared log.
type recordingWorker struct {
	id  string
	log *[]string
}

func (r *recordingWorker) Start(context.Context) { *r.log = append(*r.log, "start:"+r.id) }
func (r *recordingWorker) Stop()                 { *r.log = append(*r.log, "stop:"+r.id) }

func TestWorkers_StartInOrderStopInReverse(t *testing.T) {
	var log []string
	ws := New(logger.Nop(),
		&recordingWorker{id: "1", log: &log},
		&recordingWorker{id: "2", log: &log},
	)
	ws.Add(&recordingWorker{id: "3", log: &log})

	ws.Start(context.Background())
	ws.Stop()

	assert.Equal(t, []string{"start:1", "start:2", "start:3", "stop:3", "stop:2", "stop:1"}, log)
}

func TestWorkers_Empty(t *testing.T) {
	ws := New(logger.Nop())

	assert.NotPanics(t, func() {
		ws.Start(context.Background())
		ws.Stop()
	})
}

type fakeJob struct {
	interval time.Duration
	started  atomic.Int32
	stopped  atomic.Int32
}

func (f *fakeJob) Start(_ context.Context, interval time.Duration) {
	f.interval = interval
	f.started.Add(1)
}

func (f *fakeJob) Stop() { f.stopped.Add(1) }

func TestSyncJobWorker_PassesInterval(t *testing.T) {
	job := &fakeJob{}
	w := SyncJob(job, 42*time.Second)

	w.Start(context.Background())
	w.Stop()

	assert.Equal(t, 42*time.Second, job.interval)
	assert.Equal(t, int32(1), job.started.Load())
	assert.Equal(t, int32(1), job.stopped.Load())
}

// blockingServer blocks in RunServer until Shutdown.
type blockingServer struct {
	stop      chan struct{}
	shutdowns atomic.Int32
}

func newBlockingServer() *blockingServer { return &blockingServer{stop: make(chan struct{})} }

func (b *blockingServer) RunServer() { <-b.stop }
func (b *blockingServer) Shutdown() {
	b.shutdowns.Add(1)
	close(b.stop)
}

func TestServerWorker_StopWaitsForRunServer(t *testing.T) {
	srv := newBlockingServer()
	w := Server(srv)

	w.Start(context.Background())

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, int32(1), srv.shutdowns.Load())
}

func TestServerWorker_StopTwice(t *testing.T) {
	srv := newBlockingServer()
	w := Server(srv)
	w.Start(context.Background())

	w.Stop()
	assert.NotPanics(t, w.Stop)
	assert.Equal(t, int32(1), srv.shutdowns.Load())
}

func TestServerWorker_StopBeforeStart(t *testing.T) {
	srv := newBlockingServer()
	assert.NotPanics(t, Server(srv).Stop)
	assert.Zero(t, srv.shutdowns.Load())
}
