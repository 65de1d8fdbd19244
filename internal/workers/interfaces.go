// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the background jobs of the client as one unit.
//
// It defines the Worker interface and a Workers aggregate that starts every
// worker in order and stops them in reverse.
package workers

import "context"

// Worker is a background job owned by the client app.
//
// Start must not block; long-running work belongs in a goroutine the worker
// owns. Stop waits for that goroutine to finish.
//
// Example implementation:
//
//	type MyWorker struct{ done chan struct{} }
//
//	func (w *MyWorker) Start(ctx context.Context) {
//	    w.done = make(chan struct{})
//	    go func() { defer close(w.done); <-ctx.Done() }()
//	}
//
//	func (w *MyWorker) Stop() { <-w.done }
type Worker interface {
	Start(ctx context.Context)
	Stop()
}
