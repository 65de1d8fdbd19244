// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"sync"

	"github.com/MKhiriev/drawer-sync/internal/channel"
	"github.com/MKhiriev/drawer-sync/internal/logger"
	"github.com/MKhiriev/drawer-sync/internal/service"
)

// connectivity forwards channel state changes to the offline queue on its
// own goroutine. Going online drains the queue, which must not block the
// channel. Only the latest state is delivered; intermediate flips coalesce.
type connectivity struct {
	queue  service.OfflineQueue
	logger *logger.Logger

	mu      sync.Mutex
	latest  bool
	pending chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc
}

func newConnectivity(queue service.OfflineQueue, log *logger.Logger) *connectivity {
	return &connectivity{
		queue:   queue,
		logger:  log.WithComponent("connectivity"),
		pending: make(chan struct{}, 1),
	}
}

// observe is registered with the channel's OnStateChange.
func (c *connectivity) observe(s channel.State) {
	c.set(s == channel.StateConnected)
}

func (c *connectivity) set(online bool) {
	c.mu.Lock()
	c.latest = online
	c.mu.Unlock()

	select {
	case c.pending <- struct{}{}:
	default:
	}
}

func (c *connectivity) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})

	go func() {
		defer close(c.done)
		for {
			select {
			case <-runCtx.Done():
				return
			case <-c.pending:
			}

			c.mu.Lock()
			online := c.latest
			c.mu.Unlock()

			if err := c.queue.SetOnline(runCtx, online); err != nil {
				c.logger.Warn().Err(err).Bool("online", online).Msg("connectivity change not applied")
			}
		}
	}()
}

func (c *connectivity) Stop() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	<-c.done
}
